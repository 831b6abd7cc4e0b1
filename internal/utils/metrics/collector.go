// internal/utils/metrics/collector.go
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "tokenboard"

// Refresh outcomes.
const (
	StatusSuccess = "success"
	StatusFailed  = "failed"
)

// Collector owns the service's Prometheus metrics.
type Collector struct {
	refreshTotal    *prometheus.CounterVec
	refreshDuration *prometheus.HistogramVec
	snapshotTokens  prometheus.Gauge
	buySignals      prometheus.Gauge
	portfolioValue  prometheus.Gauge
	quotesTotal     *prometheus.CounterVec
}

// NewCollector creates the metrics and registers them on reg.
// A nil reg leaves them unregistered, which is what tests want.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		refreshTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "refresh_total",
				Help:      "Number of market data refreshes by provider and status",
			},
			[]string{"provider", "status"},
		),
		refreshDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "refresh_duration_seconds",
				Help:      "Duration of market data refreshes",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"provider"},
		),
		snapshotTokens: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "snapshot_tokens",
			Help:      "Number of tokens in the current snapshot",
		}),
		buySignals: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "buy_signals",
			Help:      "Number of tokens currently flagged as buy signals",
		}),
		portfolioValue: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "portfolio_value",
			Help:      "Current value of the simulated portfolio",
		}),
		quotesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "swap_quotes_total",
				Help:      "Swap quote requests by result",
			},
			[]string{"result"},
		),
	}

	if reg != nil {
		reg.MustRegister(
			c.refreshTotal,
			c.refreshDuration,
			c.snapshotTokens,
			c.buySignals,
			c.portfolioValue,
			c.quotesTotal,
		)
	}
	return c
}

// RecordRefresh records one refresh attempt.
func (c *Collector) RecordRefresh(provider string, duration time.Duration, err error) {
	status := StatusSuccess
	if err != nil {
		status = StatusFailed
	}
	c.refreshTotal.WithLabelValues(provider, status).Inc()
	c.refreshDuration.WithLabelValues(provider).Observe(duration.Seconds())
}

// UpdateSnapshot sets the snapshot gauges.
func (c *Collector) UpdateSnapshot(tokens, buySignals int) {
	c.snapshotTokens.Set(float64(tokens))
	c.buySignals.Set(float64(buySignals))
}

// UpdatePortfolioValue sets the portfolio value gauge.
func (c *Collector) UpdatePortfolioValue(value float64) {
	c.portfolioValue.Set(value)
}

// RecordQuote counts a quote request; ok is false for "no quote".
func (c *Collector) RecordQuote(ok bool) {
	result := "quoted"
	if !ok {
		result = "no_quote"
	}
	c.quotesTotal.WithLabelValues(result).Inc()
}
