// internal/analytics/normalize.go
package analytics

import (
	"math"
	"strings"
	"time"

	"github.com/rovshanmuradov/tokenboard/internal/types"
)

// UnknownSymbol labels a record that carries no id, symbol or name.
const UnknownSymbol = "UNKNOWN"

// identity copies the non-metric fields of raw into a new token.
func identity(raw types.RawRecord, now time.Time) types.Token {
	id := strings.TrimSpace(raw.ID)
	symbol := strings.ToUpper(strings.TrimSpace(raw.Symbol))
	if symbol == "" {
		symbol = strings.ToUpper(id)
	}
	if symbol == "" {
		symbol = UnknownSymbol
	}
	name := strings.TrimSpace(raw.Name)
	if name == "" {
		name = symbol
	}

	rank := 0
	if raw.MarketCapRank != nil && *raw.MarketCapRank > 0 {
		rank = *raw.MarketCapRank
	}

	return types.Token{
		ID:            id,
		Name:          name,
		Symbol:        symbol,
		MarketCapRank: rank,
		LastUpdated:   now,
	}
}

// finite returns *v, or 0 when v is nil, NaN or infinite.
func finite(v *float64) float64 {
	if v == nil || math.IsNaN(*v) || math.IsInf(*v, 0) {
		return 0
	}
	return *v
}

// nonNegative is finite with negatives mapped to 0.
func nonNegative(v *float64) float64 {
	f := finite(v)
	if f < 0 {
		return 0
	}
	return f
}
