// Package signals selects tokens that pass fixed quality thresholds.
package signals

import "github.com/rovshanmuradov/tokenboard/internal/types"

// Buy signal thresholds.
const (
	MinHealthScore = 60.0
	MaxSlippage    = 2.0
	MinLiquidity   = 5_000_000.0
	MaxVolatility  = 50.0

	MaxBuySignals = 10
)

// IsBuySignal reports whether t passes all four thresholds.
func IsBuySignal(t types.Token) bool {
	return t.HealthScore >= MinHealthScore &&
		t.Slippage < MaxSlippage &&
		t.Liquidity > MinLiquidity &&
		t.Volatility < MaxVolatility
}

// BuySignals returns the first MaxBuySignals qualifying tokens in input order.
// The result is never nil.
func BuySignals(tokens []types.Token) []types.Token {
	out := make([]types.Token, 0, MaxBuySignals)
	for _, t := range tokens {
		if !IsBuySignal(t) {
			continue
		}
		out = append(out, t)
		if len(out) == MaxBuySignals {
			break
		}
	}
	return out
}
