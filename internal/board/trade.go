package board

import (
	"fmt"

	"github.com/rovshanmuradov/tokenboard/internal/events"
	"github.com/rovshanmuradov/tokenboard/internal/portfolio"
	"github.com/rovshanmuradov/tokenboard/internal/swap"
	"github.com/rovshanmuradov/tokenboard/internal/types"
)

// SetSwap replaces the swap selection and returns its quote against the
// current snapshot. Unknown ids are kept and simply produce no quote.
func (b *Board) SetSwap(fromID, toID, amount string) *types.SwapQuote {
	b.mu.Lock()
	b.pair = swap.Pair{FromID: fromID, ToID: toID, Amount: amount}
	b.mu.Unlock()
	_, q := b.SwapQuote()
	return q
}

// ReverseSwap exchanges the sides of the swap selection.
func (b *Board) ReverseSwap() *types.SwapQuote {
	b.mu.Lock()
	b.pair = b.pair.Reverse()
	b.mu.Unlock()
	_, q := b.SwapQuote()
	return q
}

// SwapQuote returns the selection and its quote. The quote is recomputed
// from the latest snapshot on every call.
func (b *Board) SwapQuote() (swap.Pair, *types.SwapQuote) {
	b.mu.RLock()
	pair := b.pair
	b.mu.RUnlock()
	q := pair.Quote(b.lookup)
	b.recordQuote(q)
	return pair, q
}

// QuoteFor quotes an arbitrary pair without touching the selection.
func (b *Board) QuoteFor(fromID, toID, amount string) *types.SwapQuote {
	q := swap.Pair{FromID: fromID, ToID: toID, Amount: amount}.Quote(b.lookup)
	b.recordQuote(q)
	return q
}

func (b *Board) recordQuote(q *types.SwapQuote) {
	if b.metrics != nil {
		b.metrics.RecordQuote(q != nil)
	}
}

// Portfolio returns the holdings in insertion order.
func (b *Board) Portfolio() []types.Holding {
	return b.portfolio.Holdings()
}

// AddHolding buys amount units of the token with the given id. A zero
// purchasePrice uses the token's current price.
func (b *Board) AddHolding(tokenID string, amount, purchasePrice float64) (types.Holding, error) {
	token, err := b.Token(tokenID)
	if err != nil {
		return types.Holding{}, err
	}
	h, err := b.portfolio.Add(token, amount, purchasePrice)
	if err != nil {
		return types.Holding{}, fmt.Errorf("add holding: %w", err)
	}
	b.publish(events.HoldingAddedEvent{BaseEvent: events.NewBase(events.HoldingAdded), Holding: h})
	b.updatePortfolioGauge()
	return h, nil
}

func (b *Board) RemoveHolding(id string) (types.Holding, error) {
	h, err := b.portfolio.Remove(id)
	if err != nil {
		return types.Holding{}, err
	}
	b.publish(events.HoldingRemovedEvent{BaseEvent: events.NewBase(events.HoldingRemoved), Holding: h})
	b.updatePortfolioGauge()
	return h, nil
}

// Valuation values every holding against the current snapshot.
func (b *Board) Valuation() portfolio.Summary {
	return b.portfolio.Valuate(b.lookup)
}

func (b *Board) updatePortfolioGauge() {
	if b.metrics != nil {
		b.metrics.UpdatePortfolioValue(b.Valuation().Total.CurrentValue)
	}
}
