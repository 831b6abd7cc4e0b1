// internal/analytics/random.go
package analytics

import (
	"math/rand/v2"
	"sync"
	"time"

	"github.com/rovshanmuradov/tokenboard/internal/types"
)

// Random assigns every market and metric field independently from a uniform
// distribution. It backs the mock data mode.
type Random struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewRandom creates a random strategy with a reproducible PCG source.
func NewRandom(seed uint64) *Random {
	return &Random{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// Name implements Strategy.
func (r *Random) Name() string { return StrategyRandom }

// Derive implements Strategy. Only the identity fields of raw are used.
func (r *Random) Derive(raw types.RawRecord, now time.Time) types.Token {
	tok := identity(raw, now)

	r.mu.Lock()
	defer r.mu.Unlock()

	tok.Price = r.uniform(0.01, 1000.01)
	tok.Change24h = r.uniform(-10, 10)
	tok.Volume24h = r.uniform(0, 1e9)
	tok.MarketCap = r.uniform(0, 1e11)
	tok.Liquidity = r.uniform(0, 5e7)
	tok.Volatility = r.uniform(0, 100)
	tok.Slippage = r.uniform(0, 5)
	tok.HealthScore = r.uniform(0, 100)
	return tok
}

// uniform returns a value in [lo, hi).
func (r *Random) uniform(lo, hi float64) float64 {
	return lo + r.rng.Float64()*(hi-lo)
}
