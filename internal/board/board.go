// Package board owns the dashboard state: the latest token snapshot, the
// refresh status, the swap selection and the portfolio.
package board

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/rovshanmuradov/tokenboard/internal/analytics"
	"github.com/rovshanmuradov/tokenboard/internal/events"
	"github.com/rovshanmuradov/tokenboard/internal/market"
	"github.com/rovshanmuradov/tokenboard/internal/portfolio"
	"github.com/rovshanmuradov/tokenboard/internal/signals"
	"github.com/rovshanmuradov/tokenboard/internal/swap"
	"github.com/rovshanmuradov/tokenboard/internal/types"
	"github.com/rovshanmuradov/tokenboard/internal/utils/metrics"
)

const (
	DefaultInterval       = 5 * time.Minute
	DefaultRequestTimeout = 30 * time.Second
)

var ErrTokenNotFound = errors.New("token not found")

// Options configures a Board. Bus and Metrics are optional.
type Options struct {
	Provider       market.Provider
	Strategy       analytics.Strategy
	Bus            *events.Bus
	Metrics        *metrics.Collector
	Interval       time.Duration
	RequestTimeout time.Duration
}

// Status describes the outcome of the most recent refreshes.
type Status struct {
	Provider    string        `json:"provider"`
	Strategy    string        `json:"strategy"`
	Tokens      int           `json:"tokens"`
	Interval    time.Duration `json:"interval"`
	LastRefresh time.Time     `json:"last_refresh"`
	LastError   string        `json:"last_error,omitempty"`
	// Ready is false until the first successful refresh.
	Ready bool `json:"ready"`
	// Stale is true when the last refresh failed and an older snapshot is served.
	Stale bool `json:"stale"`
}

type Board struct {
	provider market.Provider
	strategy analytics.Strategy
	bus      *events.Bus
	metrics  *metrics.Collector
	logger   *zap.Logger
	interval time.Duration
	timeout  time.Duration
	now      func() time.Time

	group     singleflight.Group
	portfolio *portfolio.Portfolio

	mu          sync.RWMutex
	tokens      []types.Token
	index       map[string]int
	lastRefresh time.Time
	lastErr     error
	pair        swap.Pair
}

// New creates a board with an empty snapshot. Provider and Strategy are
// required.
func New(opts Options, logger *zap.Logger) (*Board, error) {
	if opts.Provider == nil {
		return nil, errors.New("board: provider is required")
	}
	if opts.Strategy == nil {
		return nil, errors.New("board: strategy is required")
	}
	if opts.Interval <= 0 {
		opts.Interval = DefaultInterval
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = DefaultRequestTimeout
	}
	return &Board{
		provider:  opts.Provider,
		strategy:  opts.Strategy,
		bus:       opts.Bus,
		metrics:   opts.Metrics,
		logger:    logger.Named("board"),
		interval:  opts.Interval,
		timeout:   opts.RequestTimeout,
		now:       time.Now,
		portfolio: portfolio.New(logger),
		index:     map[string]int{},
	}, nil
}

// Run refreshes once immediately and then every interval until ctx is done.
// Refresh failures are logged and retried on the next tick only.
func (b *Board) Run(ctx context.Context) error {
	b.logger.Info("Starting refresh loop",
		zap.String("provider", market.NameOf(b.provider)),
		zap.Duration("interval", b.interval))

	_ = b.Refresh(ctx)

	ticker := time.NewTicker(b.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			_ = b.Refresh(ctx)
		case <-ctx.Done():
			b.logger.Debug("Refresh loop stopped")
			return nil
		}
	}
}

// Refresh fetches a new snapshot. Calls made while a refresh is in flight
// wait for it and share its result. The fetch itself is detached from ctx and
// bounded only by the request timeout; cancelling ctx stops this caller from
// waiting without failing the shared fetch.
func (b *Board) Refresh(ctx context.Context) error {
	ch := b.group.DoChan("refresh", func() (interface{}, error) {
		return nil, b.refresh(context.WithoutCancel(ctx))
	})
	select {
	case res := <-ch:
		if res.Shared {
			b.logger.Debug("Joined in-flight refresh")
		}
		return res.Err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (b *Board) refresh(ctx context.Context) error {
	provider := market.NameOf(b.provider)
	start := b.now()

	fetchCtx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	records, err := b.provider.Fetch(fetchCtx)
	elapsed := b.now().Sub(start)
	if b.metrics != nil {
		b.metrics.RecordRefresh(provider, elapsed, err)
	}
	if err != nil {
		b.mu.Lock()
		b.lastErr = err
		b.mu.Unlock()

		b.logger.Error("Failed to refresh token snapshot",
			zap.String("provider", provider),
			zap.Error(err))
		b.publish(events.RefreshFailedEvent{
			BaseEvent: events.NewBase(events.RefreshFailed),
			Provider:  provider,
			Error:     err.Error(),
		})
		return err
	}

	tokens := analytics.DeriveAll(b.strategy, records, b.now())
	index := make(map[string]int, len(tokens))
	for i, t := range tokens {
		if _, dup := index[t.ID]; !dup {
			index[t.ID] = i
		}
	}
	buy := signals.BuySignals(tokens)

	b.mu.Lock()
	b.tokens = tokens
	b.index = index
	b.lastRefresh = b.now()
	b.lastErr = nil
	b.mu.Unlock()

	if b.metrics != nil {
		b.metrics.UpdateSnapshot(len(tokens), len(buy))
		b.metrics.UpdatePortfolioValue(b.Valuation().Total.CurrentValue)
	}
	b.logger.Info("Token snapshot refreshed",
		zap.String("provider", provider),
		zap.Int("tokens", len(tokens)),
		zap.Int("buy_signals", len(buy)),
		zap.Duration("duration", elapsed))
	b.publish(events.SnapshotRefreshedEvent{
		BaseEvent: events.NewBase(events.SnapshotRefreshed),
		Provider:  provider,
		Tokens:    append([]types.Token(nil), tokens...),
		Duration:  elapsed,
	})
	return nil
}

func (b *Board) publish(e events.Event) {
	if b.bus == nil {
		return
	}
	if err := b.bus.Publish(e); err != nil {
		b.logger.Warn("Event dropped", zap.String("type", string(e.Type())), zap.Error(err))
	}
}

// Tokens returns a copy of the current snapshot in provider order.
func (b *Board) Tokens() []types.Token {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return append([]types.Token(nil), b.tokens...)
}

// Token returns the snapshot entry with the given id.
func (b *Board) Token(id string) (types.Token, error) {
	if t, ok := b.lookup(id); ok {
		return t, nil
	}
	return types.Token{}, fmt.Errorf("%w: %s", ErrTokenNotFound, id)
}

func (b *Board) lookup(id string) (types.Token, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	i, ok := b.index[id]
	if !ok {
		return types.Token{}, false
	}
	return b.tokens[i], true
}

// Search filters the current snapshot.
func (b *Board) Search(q Query) ([]types.Token, error) {
	return Filter(b.Tokens(), q)
}

// BuySignals returns the qualifying tokens of the current snapshot.
func (b *Board) BuySignals() []types.Token {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return signals.BuySignals(b.tokens)
}

func (b *Board) Status() Status {
	b.mu.RLock()
	defer b.mu.RUnlock()
	s := Status{
		Provider:    market.NameOf(b.provider),
		Strategy:    b.strategy.Name(),
		Tokens:      len(b.tokens),
		Interval:    b.interval,
		LastRefresh: b.lastRefresh,
		Ready:       !b.lastRefresh.IsZero(),
	}
	if b.lastErr != nil {
		s.LastError = b.lastErr.Error()
		s.Stale = s.Ready
	}
	return s
}
