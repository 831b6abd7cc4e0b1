// Package swap computes simulated swap quotes between two tokens.
package swap

import (
	"math"
	"strconv"
	"strings"

	"github.com/rovshanmuradov/tokenboard/internal/types"
)

// FeePercent is the fixed protocol fee charged in units of the input token.
const FeePercent = 0.3

// Calculate parses input and quotes from -> to. It returns nil when no quote
// can be produced: a missing token, a non-positive price, or an amount that
// is not a finite number greater than zero.
func Calculate(from, to *types.Token, input string) *types.SwapQuote {
	amount, ok := ParseAmount(input)
	if !ok {
		return nil
	}
	return CalculateAmount(from, to, amount)
}

// CalculateAmount is Calculate for an already parsed amount.
func CalculateAmount(from, to *types.Token, amount float64) *types.SwapQuote {
	if from == nil || to == nil {
		return nil
	}
	if !positive(from.Price) || !positive(to.Price) || !positive(amount) {
		return nil
	}

	rate := to.Price / from.Price
	slippageAmount := amount * (from.Slippage / 100)
	feeAmount := amount * (FeePercent / 100)
	output := (amount - slippageAmount - feeAmount) * rate

	return &types.SwapQuote{
		InputAmount:  amount,
		OutputAmount: output,
		Rate:         rate,
		Slippage:     from.Slippage,
		Fee:          feeAmount,
		PriceImpact:  (slippageAmount / amount) * 100,
	}
}

// ParseAmount parses a user supplied amount. ok is false unless the value is
// a finite number greater than zero.
func ParseAmount(input string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(input), 64)
	if err != nil || !positive(v) {
		return 0, false
	}
	return v, true
}

func positive(v float64) bool {
	return v > 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}
