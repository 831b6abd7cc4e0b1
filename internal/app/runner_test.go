package app

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/tokenboard/internal/config"
	"github.com/rovshanmuradov/tokenboard/internal/export"
	"github.com/rovshanmuradov/tokenboard/internal/utils/logger"
)

func nopLogger() *logger.Logger {
	return &logger.Logger{Logger: zap.NewNop()}
}

func mockConfig() *config.Config {
	return &config.Config{
		Mode:            config.ModeMock,
		MockCount:       30,
		MockSeed:        42,
		PageSize:        config.DefaultPageSize,
		RefreshInterval: time.Hour,
		RequestTimeout:  time.Second,
		HTTPAddr:        "127.0.0.1:0",
		EventBuffer:     10,
	}
}

func TestNewRunnerRejectsUnknownMode(t *testing.T) {
	cfg := mockConfig()
	cfg.Mode = "paper"
	_, err := NewRunner(cfg, nopLogger())
	assert.Error(t, err)
}

func TestRunnerExport(t *testing.T) {
	r, err := NewRunner(mockConfig(), nopLogger())
	require.NoError(t, err)

	path, err := r.Export(context.Background(), t.TempDir(), export.FormatCSV)
	require.NoError(t, err)

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	assert.Len(t, records, 31)
	assert.Equal(t, "bitcoin", records[1][0])
}

func TestRunnerRunStopsOnCancel(t *testing.T) {
	r, err := NewRunner(mockConfig(), nopLogger())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- r.Run(ctx) }()

	require.Eventually(t, func() bool { return r.Board().Status().Ready }, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, 30, r.Board().Status().Tokens)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("runner did not stop")
	}
}

func TestRunnerSavesPortfolioOnStop(t *testing.T) {
	cfg := mockConfig()
	cfg.PortfolioExportDir = t.TempDir()
	r, err := NewRunner(cfg, nopLogger())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- r.Run(ctx) }()

	require.Eventually(t, func() bool { return r.Board().Status().Ready }, 2*time.Second, 10*time.Millisecond)
	_, err = r.Board().AddHolding("bitcoin", 0.5, 30000)
	require.NoError(t, err)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("runner did not stop")
	}

	files, err := filepath.Glob(filepath.Join(cfg.PortfolioExportDir, "portfolio_*.json"))
	require.NoError(t, err)
	require.Len(t, files, 1)

	data, err := os.ReadFile(files[0])
	require.NoError(t, err)
	var saved struct {
		HoldingCount int `json:"holding_count"`
	}
	require.NoError(t, json.Unmarshal(data, &saved))
	assert.Equal(t, 1, saved.HoldingCount)
}

func TestExportDoesNotSavePortfolio(t *testing.T) {
	cfg := mockConfig()
	cfg.PortfolioExportDir = t.TempDir()
	r, err := NewRunner(cfg, nopLogger())
	require.NoError(t, err)

	_, err = r.Export(context.Background(), t.TempDir(), export.FormatJSON)
	require.NoError(t, err)

	files, err := os.ReadDir(cfg.PortfolioExportDir)
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestShutdownHandlerOrder(t *testing.T) {
	sh := NewShutdownHandler(zap.NewNop())
	var order []string
	sh.AddFunc("first", func() error { order = append(order, "first"); return nil })
	sh.AddFunc("second", func() error { order = append(order, "second"); return errors.New("boom") })

	err := sh.Shutdown(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "second: boom")
	assert.Equal(t, []string{"second", "first"}, order)

	assert.NoError(t, sh.Shutdown(context.Background()), "services are closed once")
}

func TestShutdownHandlerTimeout(t *testing.T) {
	sh := NewShutdownHandler(zap.NewNop())
	block := make(chan struct{})
	defer close(block)
	sh.AddFunc("stuck", func() error { <-block; return nil })

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := sh.Shutdown(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "shutdown timeout")
}
