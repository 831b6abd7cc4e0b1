package board

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/rovshanmuradov/tokenboard/internal/types"
)

// Sort keys accepted by Query.SortBy.
const (
	SortPrice       = "price"
	SortChange24h   = "change24h"
	SortVolume24h   = "volume24h"
	SortMarketCap   = "marketCap"
	SortHealthScore = "healthScore"
	SortRank        = "rank"
)

var ErrUnknownSortKey = errors.New("unknown sort key")

// Query narrows and orders a token list. Zero values disable each filter.
type Query struct {
	Search      string
	MinHealth   float64
	MaxSlippage float64
	SortBy      string
	Descending  bool
	Limit       int
}

var sortKeys = map[string]func(types.Token) float64{
	SortPrice:       func(t types.Token) float64 { return t.Price },
	SortChange24h:   func(t types.Token) float64 { return t.Change24h },
	SortVolume24h:   func(t types.Token) float64 { return t.Volume24h },
	SortMarketCap:   func(t types.Token) float64 { return t.MarketCap },
	SortHealthScore: func(t types.Token) float64 { return t.HealthScore },
	SortRank: func(t types.Token) float64 {
		if !t.HasRank() {
			return math.Inf(1)
		}
		return float64(t.MarketCapRank)
	},
}

// Filter applies q to tokens and returns a new slice. The input is not
// modified. Without a sort key the input order is kept.
func Filter(tokens []types.Token, q Query) ([]types.Token, error) {
	var key func(types.Token) float64
	if q.SortBy != "" {
		var ok bool
		if key, ok = sortKeys[q.SortBy]; !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownSortKey, q.SortBy)
		}
	}

	needle := strings.ToLower(strings.TrimSpace(q.Search))
	out := make([]types.Token, 0, len(tokens))
	for _, t := range tokens {
		if needle != "" &&
			!strings.Contains(strings.ToLower(t.Name), needle) &&
			!strings.Contains(strings.ToLower(t.Symbol), needle) {
			continue
		}
		if q.MinHealth > 0 && t.HealthScore < q.MinHealth {
			continue
		}
		if q.MaxSlippage > 0 && t.Slippage > q.MaxSlippage {
			continue
		}
		out = append(out, t)
	}

	if key != nil {
		sort.SliceStable(out, func(i, j int) bool {
			if q.Descending {
				return key(out[i]) > key(out[j])
			}
			return key(out[i]) < key(out[j])
		})
	}

	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}
