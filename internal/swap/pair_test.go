package swap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rovshanmuradov/tokenboard/internal/types"
)

func snapshotLookup(tokens ...types.Token) Lookup {
	byID := make(map[string]types.Token, len(tokens))
	for _, tok := range tokens {
		byID[tok.ID] = tok
	}
	return func(id string) (types.Token, bool) {
		tok, ok := byID[id]
		return tok, ok
	}
}

func TestPairQuoteAndReverse(t *testing.T) {
	lookup := snapshotLookup(
		types.Token{ID: "btc", Price: 100, Slippage: 2.7},
		types.Token{ID: "eth", Price: 50, Slippage: 1},
	)

	p := Pair{FromID: "btc", ToID: "eth", Amount: "100"}
	q := p.Quote(lookup)
	require.NotNil(t, q)
	assert.InDelta(t, 48.5, q.OutputAmount, 1e-9)

	r := p.Reverse()
	assert.Equal(t, Pair{FromID: "eth", ToID: "btc", Amount: "100"}, r)

	q = r.Quote(lookup)
	require.NotNil(t, q)
	assert.InDelta(t, 2, q.Rate, 1e-12)
	assert.InDelta(t, (100-1-0.3)*2, q.OutputAmount, 1e-9)
	assert.InDelta(t, 1, q.PriceImpact, 1e-9)

	assert.Equal(t, p, r.Reverse())
}

func TestPairQuoteMissing(t *testing.T) {
	lookup := snapshotLookup(types.Token{ID: "btc", Price: 1})

	assert.Nil(t, Pair{FromID: "btc", Amount: "1"}.Quote(lookup))
	assert.Nil(t, Pair{FromID: "btc", ToID: "doge", Amount: "1"}.Quote(lookup))
	assert.Nil(t, Pair{FromID: "btc", ToID: "btc", Amount: "1"}.Quote(nil))
	assert.True(t, Pair{}.Empty())
}
