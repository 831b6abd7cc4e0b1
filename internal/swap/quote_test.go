package swap

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rovshanmuradov/tokenboard/internal/types"
)

func TestCalculateExample(t *testing.T) {
	from := &types.Token{ID: "a", Price: 100, Slippage: 2.7}
	to := &types.Token{ID: "b", Price: 50}

	q := Calculate(from, to, "100")
	require.NotNil(t, q)

	assert.InDelta(t, 100, q.InputAmount, 1e-12)
	assert.InDelta(t, 0.5, q.Rate, 1e-12)
	assert.InDelta(t, 0.3, q.Fee, 1e-12)
	assert.InDelta(t, 48.5, q.OutputAmount, 1e-9)
	assert.InDelta(t, 2.7, q.Slippage, 1e-12)
	assert.InDelta(t, 2.7, q.PriceImpact, 1e-9)
}

func TestCalculateSameToken(t *testing.T) {
	tok := &types.Token{ID: "a", Price: 3.5, Slippage: 1.2}

	for _, amount := range []float64{0.001, 1, 42, 1e6} {
		q := CalculateAmount(tok, tok, amount)
		require.NotNil(t, q)
		assert.InDelta(t, 1, q.Rate, 1e-12)
		assert.InDelta(t, amount*(1-1.2/100-0.003), q.OutputAmount, 1e-9*amount)
	}
}

func TestPriceImpactEqualsSlippage(t *testing.T) {
	from := &types.Token{Price: 7, Slippage: 0.1}
	to := &types.Token{Price: 0.02}

	for _, s := range []float64{0, 0.1, 1.5, 4.99, 5} {
		from.Slippage = s
		q := CalculateAmount(from, to, 123.456)
		require.NotNil(t, q)
		assert.InDelta(t, s, q.PriceImpact, 1e-9)
	}
}

func TestCalculateNoQuote(t *testing.T) {
	good := &types.Token{Price: 10, Slippage: 1}

	tests := []struct {
		name     string
		from, to *types.Token
		input    string
	}{
		{name: "zero amount", from: good, to: good, input: "0"},
		{name: "negative amount", from: good, to: good, input: "-5"},
		{name: "not a number", from: good, to: good, input: "abc"},
		{name: "empty amount", from: good, to: good, input: ""},
		{name: "NaN amount", from: good, to: good, input: "NaN"},
		{name: "infinite amount", from: good, to: good, input: "+Inf"},
		{name: "missing from", from: nil, to: good, input: "1"},
		{name: "missing to", from: good, to: nil, input: "1"},
		{name: "zero from price", from: &types.Token{}, to: good, input: "1"},
		{name: "zero to price", from: good, to: &types.Token{}, input: "1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Nil(t, Calculate(tt.from, tt.to, tt.input))
		})
	}
}

func TestParseAmount(t *testing.T) {
	v, ok := ParseAmount("  2.5 ")
	assert.True(t, ok)
	assert.Equal(t, 2.5, v)

	_, ok = ParseAmount("1e400")
	assert.False(t, ok, "overflow parses to Inf and must be rejected")

	_, ok = ParseAmount(".")
	assert.False(t, ok)

	v, ok = ParseAmount("1e-9")
	assert.True(t, ok)
	assert.False(t, math.IsInf(v, 0))
}

func TestCalculateDoesNotMutateTokens(t *testing.T) {
	from := types.Token{ID: "a", Price: 100, Slippage: 2}
	to := types.Token{ID: "b", Price: 4}
	fromCopy, toCopy := from, to

	_ = CalculateAmount(&from, &to, 10)

	assert.Equal(t, fromCopy, from)
	assert.Equal(t, toCopy, to)
}
