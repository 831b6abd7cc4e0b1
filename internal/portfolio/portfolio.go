// Package portfolio tracks simulated token holdings and their profit/loss.
package portfolio

import (
	"errors"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/tokenboard/internal/types"
)

var (
	ErrInvalidAmount   = errors.New("holding amount must be a finite number greater than zero")
	ErrInvalidPrice    = errors.New("purchase price must be a finite number greater than zero")
	ErrHoldingNotFound = errors.New("holding not found")
)

// PriceSource tells which price a valuation used.
type PriceSource string

const (
	// PriceLive is the price from the latest snapshot.
	PriceLive PriceSource = "live"
	// PriceSnapshot is the price embedded in the holding when it was added;
	// used when the token is missing from the latest snapshot.
	PriceSnapshot PriceSource = "snapshot"
)

// Lookup resolves a token id against the latest snapshot.
type Lookup func(id string) (types.Token, bool)

// Valuation is one holding valued against a price.
type Valuation struct {
	Holding      types.Holding `json:"holding"`
	CurrentPrice float64       `json:"current_price"`
	PriceSource  PriceSource   `json:"price_source"`
	PnLResult
}

// Summary is the valuation of every holding plus the aggregate.
type Summary struct {
	Holdings []Valuation `json:"holdings"`
	Total    PnLResult   `json:"total"`
}

// Portfolio is a thread-safe list of holdings in insertion order.
type Portfolio struct {
	mu       sync.RWMutex
	holdings []types.Holding
	logger   *zap.Logger
	now      func() time.Time
}

// New creates an empty portfolio.
func New(logger *zap.Logger) *Portfolio {
	return &Portfolio{
		logger: logger.Named("portfolio"),
		now:    time.Now,
	}
}

// Add records a holding of amount units of token. A zero purchasePrice means
// "bought at the snapshot price".
func (p *Portfolio) Add(token types.Token, amount, purchasePrice float64) (types.Holding, error) {
	if !finitePositive(amount) {
		return types.Holding{}, ErrInvalidAmount
	}
	if purchasePrice == 0 {
		purchasePrice = token.Price
	}
	if !finitePositive(purchasePrice) {
		return types.Holding{}, ErrInvalidPrice
	}

	h := types.Holding{
		ID:            uuid.New().String(),
		Token:         token,
		Amount:        amount,
		PurchasePrice: purchasePrice,
		PurchaseDate:  p.now().UTC(),
	}

	p.mu.Lock()
	p.holdings = append(p.holdings, h)
	p.mu.Unlock()

	p.logger.Info("Holding added",
		zap.String("id", h.ID),
		zap.String("token", token.ID),
		zap.Float64("amount", amount),
		zap.Float64("purchase_price", purchasePrice))

	return h, nil
}

// Remove deletes the holding with the given id and returns it.
func (p *Portfolio) Remove(id string) (types.Holding, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for i, h := range p.holdings {
		if h.ID != id {
			continue
		}
		p.holdings = append(p.holdings[:i:i], p.holdings[i+1:]...)
		p.logger.Info("Holding removed", zap.String("id", id), zap.String("token", h.Token.ID))
		return h, nil
	}
	return types.Holding{}, ErrHoldingNotFound
}

// Holdings returns a copy of all holdings.
func (p *Portfolio) Holdings() []types.Holding {
	p.mu.RLock()
	defer p.mu.RUnlock()

	out := make([]types.Holding, len(p.holdings))
	copy(out, p.holdings)
	return out
}

// Valuate values every holding. The cost basis is always the frozen purchase
// price; the current price comes from lookup, falling back to the holding's
// embedded snapshot when the token is not listed any more.
func (p *Portfolio) Valuate(lookup Lookup) Summary {
	holdings := p.Holdings()

	sum := Summary{Holdings: make([]Valuation, 0, len(holdings))}
	for _, h := range holdings {
		v := valuate(h, lookup)
		sum.Total.add(v.PnLResult)
		sum.Holdings = append(sum.Holdings, v)
	}
	return sum
}

func valuate(h types.Holding, lookup Lookup) Valuation {
	price, source := h.Token.Price, PriceSnapshot
	if lookup != nil {
		if tok, ok := lookup(h.Token.ID); ok {
			price, source = tok.Price, PriceLive
		}
	}
	return Valuation{
		Holding:      h,
		CurrentPrice: price,
		PriceSource:  source,
		PnLResult:    CalculatePnL(h.Amount, h.PurchasePrice, price),
	}
}

func finitePositive(v float64) bool {
	return v > 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}
