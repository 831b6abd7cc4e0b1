// Package api exposes the board over HTTP: a JSON API, a CSV/JSON export
// endpoint, Prometheus metrics and a WebSocket snapshot stream.
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/tokenboard/internal/board"
	"github.com/rovshanmuradov/tokenboard/internal/events"
	"github.com/rovshanmuradov/tokenboard/internal/export"
	"github.com/rovshanmuradov/tokenboard/internal/utils/logger"
)

const DefaultShutdownTimeout = 5 * time.Second

// Server hosts the gin router.
type Server struct {
	addr        string
	board       *board.Board
	exporter    *export.Exporter
	broadcaster *Broadcaster
	gatherer    prometheus.Gatherer
	logs        *logger.Buffer
	bus         *events.Bus
	logger      *zap.Logger
	httpServer  *http.Server
}

// NewServer wires the handlers. A nil gatherer disables /metrics.
func NewServer(addr string, b *board.Board, exp *export.Exporter, bc *Broadcaster,
	gatherer prometheus.Gatherer, logger *zap.Logger) *Server {
	return &Server{
		addr:        addr,
		board:       b,
		exporter:    exp,
		broadcaster: bc,
		gatherer:    gatherer,
		logger:      logger.Named("api"),
	}
}

// WithLogs enables /api/logs backed by buf.
func (s *Server) WithLogs(buf *logger.Buffer) *Server {
	s.logs = buf
	return s
}

// WithEvents adds the bus counters to /health.
func (s *Server) WithEvents(bus *events.Bus) *Server {
	s.bus = bus
	return s
}

// Run serves until ctx is cancelled or the listener fails.
func (s *Server) Run(ctx context.Context) error {
	s.httpServer = &http.Server{
		Addr:              s.addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("HTTP server listening", zap.String("addr", s.addr))
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		if s.broadcaster != nil {
			s.broadcaster.Close()
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), DefaultShutdownTimeout)
		defer cancel()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		<-errCh
		s.logger.Info("HTTP server stopped")
		return nil
	case err := <-errCh:
		return err
	}
}

// Router builds the gin engine with every route.
func (s *Server) Router() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(s.logger))

	router.GET("/health", s.handleHealth)

	api := router.Group("/api")
	api.GET("/tokens", s.handleTokens)
	api.GET("/tokens/:id", s.handleToken)
	api.GET("/signals", s.handleSignals)
	api.GET("/quote", s.handleQuote)
	api.GET("/swap", s.handleGetSwap)
	api.PUT("/swap", s.handleSetSwap)
	api.POST("/swap/reverse", s.handleReverseSwap)
	api.GET("/portfolio", s.handlePortfolio)
	api.POST("/portfolio", s.handleAddHolding)
	api.DELETE("/portfolio/:id", s.handleRemoveHolding)
	api.POST("/refresh", s.handleRefresh)
	api.GET("/export", s.handleExport)
	if s.logs != nil {
		api.GET("/logs", s.handleLogs)
	}

	if s.gatherer != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{})))
	}
	if s.broadcaster != nil {
		router.GET("/ws", gin.WrapF(s.broadcaster.Handler(s.snapshotMessage)))
	}
	return router
}

// snapshotMessage is the first frame a WebSocket client receives; it has
// the same shape as a snapshot.refreshed event.
func (s *Server) snapshotMessage() interface{} {
	st := s.board.Status()
	return events.SnapshotRefreshedEvent{
		BaseEvent: events.BaseEvent{EventType: events.SnapshotRefreshed, EventTime: st.LastRefresh},
		Provider:  st.Provider,
		Tokens:    s.board.Tokens(),
	}
}

func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Debug("HTTP request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)))
	}
}
