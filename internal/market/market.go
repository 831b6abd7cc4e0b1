// Package market defines the data source abstraction for raw market records.
package market

import (
	"context"
	"errors"

	"github.com/rovshanmuradov/tokenboard/internal/types"
)

// ErrFetch wraps every failure to obtain records from a provider.
var ErrFetch = errors.New("market data fetch failed")

// Provider produces the current set of raw market records.
type Provider interface {
	Fetch(ctx context.Context) ([]types.RawRecord, error)
}

// NameOf returns the provider's name when it exposes one.
func NameOf(p Provider) string {
	if n, ok := p.(interface{ Name() string }); ok {
		return n.Name()
	}
	return "unknown"
}
