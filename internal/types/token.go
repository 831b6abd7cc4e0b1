// internal/types/token.go
package types

import "time"

// RawRecord is a single market record as produced by a data provider.
// Numeric fields are pointers so a missing value can be told apart from zero.
type RawRecord struct {
	ID            string
	Name          string
	Symbol        string
	Price         *float64
	Change24h     *float64
	Volume24h     *float64
	MarketCap     *float64
	MarketCapRank *int
}

// Token is a normalized token snapshot with derived metrics.
type Token struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Symbol        string    `json:"symbol"`
	Price         float64   `json:"price"`
	Change24h     float64   `json:"change_24h"`
	Volume24h     float64   `json:"volume_24h"`
	MarketCap     float64   `json:"market_cap"`
	Liquidity     float64   `json:"liquidity"`
	Volatility    float64   `json:"volatility"`
	Slippage      float64   `json:"slippage"`
	HealthScore   float64   `json:"health_score"`
	MarketCapRank int       `json:"market_cap_rank,omitempty"` // 0 when unknown
	LastUpdated   time.Time `json:"last_updated"`
}

// HasRank reports whether the source provided a market cap rank.
func (t Token) HasRank() bool {
	return t.MarketCapRank > 0
}

// Float returns a pointer to v. Handy for building RawRecord literals.
func Float(v float64) *float64 {
	return &v
}

// Int returns a pointer to v.
func Int(v int) *int {
	return &v
}
