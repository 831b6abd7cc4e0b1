// Package analytics turns raw market records into normalized tokens with
// derived liquidity, volatility, slippage and health score estimates.
package analytics

import (
	"fmt"
	"time"

	"github.com/rovshanmuradov/tokenboard/internal/types"
)

// Strategy derives a normalized token from a raw market record.
// Implementations must never fail: bad input degrades to defaults.
type Strategy interface {
	Name() string
	Derive(raw types.RawRecord, now time.Time) types.Token
}

// Strategy names, also used as config modes.
const (
	StrategyFormula = "formula"
	StrategyRandom  = "random"
)

// DeriveAll applies s to every record, preserving input order.
func DeriveAll(s Strategy, records []types.RawRecord, now time.Time) []types.Token {
	tokens := make([]types.Token, 0, len(records))
	for _, raw := range records {
		tokens = append(tokens, s.Derive(raw, now))
	}
	return tokens
}

// New returns the strategy registered under name. seed only matters for the
// random strategy.
func New(name string, seed uint64) (Strategy, error) {
	switch name {
	case StrategyFormula:
		return Formula{}, nil
	case StrategyRandom:
		return NewRandom(seed), nil
	default:
		return nil, fmt.Errorf("unknown derivation strategy: %s", name)
	}
}
