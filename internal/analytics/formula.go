// internal/analytics/formula.go
package analytics

import (
	"math"
	"time"

	"github.com/rovshanmuradov/tokenboard/internal/types"
)

const (
	MinSlippage = 0.1
	MaxSlippage = 5.0

	MaxVolatility  = 100.0
	MaxHealthScore = 100.0

	// missingRankFactor is the volatility penalty applied when the rank is unknown.
	missingRankFactor = 10.0
	baseHealthScore   = 50.0
)

// Formula derives metrics deterministically from market data.
type Formula struct{}

// Name implements Strategy.
func (Formula) Name() string { return StrategyFormula }

// Derive implements Strategy.
func (Formula) Derive(raw types.RawRecord, now time.Time) types.Token {
	tok := identity(raw, now)
	tok.Price = nonNegative(raw.Price)
	tok.Change24h = finite(raw.Change24h)
	tok.Volume24h = nonNegative(raw.Volume24h)
	tok.MarketCap = nonNegative(raw.MarketCap)

	tok.Liquidity = Liquidity(tok.Volume24h, tok.MarketCap)
	tok.Volatility = Volatility(tok.Change24h, tok.MarketCapRank)
	tok.Slippage = Slippage(tok.Volume24h, tok.MarketCap)
	tok.HealthScore = HealthScore(tok.Change24h, tok.Volume24h, tok.MarketCap, tok.MarketCapRank)
	return tok
}

// Liquidity estimates order book depth as the smaller of twice the daily
// volume and a tenth of the market cap.
func Liquidity(volume, marketCap float64) float64 {
	return math.Min(2*volume, 0.1*marketCap)
}

// RankFactor is the rank-based volatility boost. rank <= 0 means unknown.
func RankFactor(rank int) float64 {
	if rank <= 0 {
		return missingRankFactor
	}
	return math.Min(float64(rank)/10, 10)
}

// Volatility is 2*|change| plus the rank factor, capped at 100.
func Volatility(change24h float64, rank int) float64 {
	return math.Min(2*math.Abs(change24h)+RankFactor(rank), MaxVolatility)
}

// Slippage maps the turnover ratio onto [MinSlippage, MaxSlippage].
// Zero volume or market cap are replaced by 1 to keep the ratio defined.
func Slippage(volume, marketCap float64) float64 {
	if volume == 0 {
		volume = 1
	}
	if marketCap == 0 {
		marketCap = 1
	}
	return clamp((1-volume/marketCap)*3, MinSlippage, MaxSlippage)
}

// HealthScore combines rank, turnover and price stability into [0, 100].
func HealthScore(change24h, volume, marketCap float64, rank int) float64 {
	score := baseHealthScore
	if rank > 0 {
		score += math.Max(0, 20-float64(rank)/5)
	}
	if volume > 0 && marketCap > 0 {
		score += math.Min(20, volume/marketCap*100)
	}
	score += math.Max(0, 10-math.Abs(change24h)/2)
	return clamp(score, 0, MaxHealthScore)
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(v, hi))
}
