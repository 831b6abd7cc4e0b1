// internal/types/swap.go
package types

// SwapQuote is a simulated quote for exchanging one token for another.
// It is never persisted and carries no execution semantics.
type SwapQuote struct {
	InputAmount  float64 `json:"input_amount"`
	OutputAmount float64 `json:"output_amount"`
	Rate         float64 `json:"rate"`
	Slippage     float64 `json:"slippage"`     // percent, copied from the source token
	Fee          float64 `json:"fee"`          // in units of the source token
	PriceImpact  float64 `json:"price_impact"` // percent
}
