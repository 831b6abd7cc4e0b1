package board

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rovshanmuradov/tokenboard/internal/types"
)

func filterFixture() []types.Token {
	return []types.Token{
		{ID: "bitcoin", Name: "Bitcoin", Symbol: "BTC", Price: 50000, HealthScore: 90, Slippage: 0.5, MarketCapRank: 1},
		{ID: "ethereum", Name: "Ethereum", Symbol: "ETH", Price: 2500, HealthScore: 85, Slippage: 1.0, MarketCapRank: 2},
		{ID: "pepe", Name: "Pepe", Symbol: "PEPE", Price: 0.00001, HealthScore: 40, Slippage: 4.5},
		{ID: "wrapped-bitcoin", Name: "Wrapped Bitcoin", Symbol: "WBTC", Price: 50000, HealthScore: 70, Slippage: 1.5, MarketCapRank: 15},
	}
}

func ids(tokens []types.Token) []string {
	out := make([]string, len(tokens))
	for i, t := range tokens {
		out[i] = t.ID
	}
	return out
}

func TestFilter(t *testing.T) {
	tests := []struct {
		name string
		q    Query
		want []string
	}{
		{"empty query keeps order", Query{}, []string{"bitcoin", "ethereum", "pepe", "wrapped-bitcoin"}},
		{"search name case-insensitive", Query{Search: "BITCOIN"}, []string{"bitcoin", "wrapped-bitcoin"}},
		{"search symbol", Query{Search: "eth"}, []string{"ethereum"}},
		{"min health", Query{MinHealth: 80}, []string{"bitcoin", "ethereum"}},
		{"max slippage", Query{MaxSlippage: 1.5}, []string{"bitcoin", "ethereum", "wrapped-bitcoin"}},
		{"sort by price is stable", Query{SortBy: SortPrice}, []string{"pepe", "ethereum", "bitcoin", "wrapped-bitcoin"}},
		{"sort by price descending is stable", Query{SortBy: SortPrice, Descending: true}, []string{"bitcoin", "wrapped-bitcoin", "ethereum", "pepe"}},
		{"unranked sorts last", Query{SortBy: SortRank}, []string{"bitcoin", "ethereum", "wrapped-bitcoin", "pepe"}},
		{"limit", Query{SortBy: SortHealthScore, Descending: true, Limit: 2}, []string{"bitcoin", "ethereum"}},
		{"no match", Query{Search: "doge"}, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Filter(filterFixture(), tt.q)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ids(got))
		})
	}
}

func TestFilterUnknownSortKey(t *testing.T) {
	_, err := Filter(filterFixture(), Query{SortBy: "volume"})
	assert.ErrorIs(t, err, ErrUnknownSortKey)
}

func TestFilterDoesNotModifyInput(t *testing.T) {
	in := filterFixture()
	_, err := Filter(in, Query{SortBy: SortPrice, Limit: 1})
	require.NoError(t, err)
	assert.Equal(t, filterFixture(), in)
}
