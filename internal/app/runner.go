// Package app assembles the dashboard from configuration and runs it.
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/rovshanmuradov/tokenboard/internal/analytics"
	"github.com/rovshanmuradov/tokenboard/internal/api"
	"github.com/rovshanmuradov/tokenboard/internal/board"
	"github.com/rovshanmuradov/tokenboard/internal/config"
	"github.com/rovshanmuradov/tokenboard/internal/events"
	"github.com/rovshanmuradov/tokenboard/internal/export"
	"github.com/rovshanmuradov/tokenboard/internal/market"
	"github.com/rovshanmuradov/tokenboard/internal/market/coingecko"
	"github.com/rovshanmuradov/tokenboard/internal/market/mock"
	"github.com/rovshanmuradov/tokenboard/internal/utils/logger"
	"github.com/rovshanmuradov/tokenboard/internal/utils/metrics"
)

const shutdownTimeout = 10 * time.Second

type Runner struct {
	logger   *zap.Logger
	config   *config.Config
	wsFeed   *events.Subscription
	board    *board.Board
	exporter *export.Exporter
	server   *api.Server
	shutdown *ShutdownHandler
}

// NewRunner builds every component for cfg. Live mode pairs the CoinGecko
// client with the formula strategy; mock mode pairs the generator with the
// random strategy. Each component gets its own tagged logger; the log
// buffer, when enabled, backs /api/logs.
func NewRunner(cfg *config.Config, log *logger.Logger) (*Runner, error) {
	provider, strategy, err := buildSource(cfg, log.WithComponent("market"))
	if err != nil {
		return nil, err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	bus := events.NewBus(log.WithComponent("events"), cfg.EventBuffer)
	b, err := board.New(board.Options{
		Provider:       provider,
		Strategy:       strategy,
		Bus:            bus,
		Metrics:        metrics.NewCollector(registry),
		Interval:       cfg.RefreshInterval,
		RequestTimeout: cfg.RequestTimeout,
	}, log.WithComponent("board"))
	if err != nil {
		return nil, err
	}

	apiLog := log.WithComponent("api")
	exporter := export.NewExporter(log.WithComponent("export"))
	broadcaster := api.NewBroadcaster(apiLog)
	wsFeed := bus.Subscribe("websocket", broadcaster.HandleSnapshot, events.SnapshotRefreshed)

	server := api.NewServer(cfg.HTTPAddr, b, exporter, broadcaster, registry, apiLog).WithEvents(bus)
	if logs := log.Buffer(); logs != nil {
		server.WithLogs(logs)
	}

	r := &Runner{
		logger:   log.WithComponent("runner"),
		config:   cfg,
		wsFeed:   wsFeed,
		board:    b,
		exporter: exporter,
		server:   server,
		shutdown: NewShutdownHandler(log.WithComponent("shutdown")),
	}
	r.shutdown.AddFunc("event_bus", func() error {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return bus.Shutdown(ctx)
	})
	r.shutdown.AddFunc("websocket_feed", func() error {
		r.wsFeed.Cancel()
		return nil
	})
	return r, nil
}

func buildSource(cfg *config.Config, log *zap.Logger) (market.Provider, analytics.Strategy, error) {
	switch cfg.Mode {
	case config.ModeLive:
		client := coingecko.NewClient(coingecko.Config{
			BaseURL:           cfg.APIBaseURL,
			APIKey:            cfg.APIKey,
			VsCurrency:        cfg.VsCurrency,
			PerPage:           cfg.PageSize,
			Timeout:           cfg.RequestTimeout,
			RequestsPerMinute: cfg.RateLimitPerMinute,
		}, log)
		return client, analytics.Formula{}, nil
	case config.ModeMock:
		seed := cfg.MockSeed
		if seed == 0 {
			seed = uint64(time.Now().UnixNano())
		}
		strategy, err := analytics.New(analytics.StrategyRandom, seed)
		if err != nil {
			return nil, nil, err
		}
		return mock.NewGenerator(cfg.MockCount), strategy, nil
	default:
		return nil, nil, fmt.Errorf("unknown mode %q", cfg.Mode)
	}
}

// Board returns the board being served.
func (r *Runner) Board() *board.Board {
	return r.board
}

// Run starts the refresh loop and the HTTP server and blocks until ctx is
// cancelled or either of them fails. With portfolio_export_dir set, the
// session portfolio is written there as JSON on the way out.
func (r *Runner) Run(ctx context.Context) error {
	r.logger.Info("Starting tokenboard",
		zap.String("mode", r.config.Mode),
		zap.String("addr", r.config.HTTPAddr),
		zap.Duration("refresh_interval", r.config.RefreshInterval))

	if dir := r.config.PortfolioExportDir; dir != "" {
		r.shutdown.AddFunc("portfolio_export", func() error {
			path, err := r.exporter.ExportHoldingsToFile(dir, r.board.Valuation(), export.FormatJSON)
			if err != nil {
				return err
			}
			r.logger.Info("Portfolio saved", zap.String("file", path))
			return nil
		})
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return r.board.Run(gctx) })
	g.Go(func() error { return r.server.Run(gctx) })

	runErr := g.Wait()
	if errors.Is(runErr, context.Canceled) {
		runErr = nil
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return errors.Join(runErr, r.shutdown.Shutdown(shutdownCtx))
}

// Export fetches one snapshot and writes it to dir. The bus is shut down
// afterwards.
func (r *Runner) Export(ctx context.Context, dir string, format export.Format) (string, error) {
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = r.shutdown.Shutdown(shutdownCtx)
	}()

	if err := r.board.Refresh(ctx); err != nil {
		return "", fmt.Errorf("refresh: %w", err)
	}
	return r.exporter.ExportTokensToFile(dir, r.board.Tokens(), format)
}
