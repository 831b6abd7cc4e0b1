// internal/config/config_test.go
package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var validConfigJSON = `{
    "mode": "live",
    "api_base_url": "https://api.coingecko.com/api/v3",
    "vs_currency": "eur",
    "page_size": 50,
    "refresh_interval": "2m",
    "request_timeout": "10s",
    "http_addr": "127.0.0.1:9090",
    "debug_logging": true
}`

var mockConfigYAML = `
mode: MOCK
mock_count: 12
mock_seed: 7
`

func setupTestConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}
	return path
}

func TestLoadConfig(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
		wantErr bool
		check   func(t *testing.T, cfg *Config)
	}{
		{
			name:    "valid live config",
			file:    "config.json",
			content: validConfigJSON,
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, ModeLive, cfg.Mode)
				assert.Equal(t, "eur", cfg.VsCurrency)
				assert.Equal(t, 50, cfg.PageSize)
				assert.Equal(t, 2*time.Minute, cfg.RefreshInterval)
				assert.Equal(t, 10*time.Second, cfg.RequestTimeout)
				assert.Equal(t, "127.0.0.1:9090", cfg.HTTPAddr)
				assert.True(t, cfg.DebugLogging)
				assert.Equal(t, DefaultRateLimitPerMinute, cfg.RateLimitPerMinute)
			},
		},
		{
			name:    "mock yaml config",
			file:    "config.yaml",
			content: mockConfigYAML,
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, ModeMock, cfg.Mode)
				assert.Equal(t, 12, cfg.MockCount)
				assert.Equal(t, uint64(7), cfg.MockSeed)
				assert.Equal(t, DefaultRefreshInterval, cfg.RefreshInterval)
			},
		},
		{
			name:    "unknown mode",
			file:    "config.json",
			content: `{"mode": "paper"}`,
			wantErr: true,
		},
		{
			name:    "page size too large",
			file:    "config.json",
			content: `{"page_size": 500}`,
			wantErr: true,
		},
		{
			name:    "bad base url",
			file:    "config.json",
			content: `{"api_base_url": "ftp://example.com"}`,
			wantErr: true,
		},
		{
			name:    "negative refresh interval",
			file:    "config.json",
			content: `{"refresh_interval": "-1m"}`,
			wantErr: true,
		},
		{
			name:    "invalid JSON syntax",
			file:    "config.json",
			content: "{invalid json",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := LoadConfig(setupTestConfig(t, tt.file, tt.content))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			tt.check(t, cfg)
		})
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, DefaultMode, cfg.Mode)
	assert.Equal(t, DefaultPageSize, cfg.PageSize)
	assert.Equal(t, DefaultRefreshInterval, cfg.RefreshInterval)
	assert.Equal(t, DefaultHTTPAddr, cfg.HTTPAddr)
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	t.Setenv("TOKENBOARD_MODE", "mock")
	t.Setenv("TOKENBOARD_HTTP_ADDR", ":7000")
	t.Setenv("TOKENBOARD_PORTFOLIO_EXPORT_DIR", "exports")

	cfg, err := LoadConfig(setupTestConfig(t, "config.json", validConfigJSON))
	require.NoError(t, err)
	assert.Equal(t, ModeMock, cfg.Mode)
	assert.Equal(t, ":7000", cfg.HTTPAddr)
	assert.Equal(t, "exports", cfg.PortfolioExportDir)
}

func TestLoadConfigDotEnv(t *testing.T) {
	path := setupTestConfig(t, "config.json", validConfigJSON)
	envFile := filepath.Join(filepath.Dir(path), ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("TOKENBOARD_API_KEY=from-dotenv\n"), 0600))
	t.Cleanup(func() { os.Unsetenv("TOKENBOARD_API_KEY") })

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "from-dotenv", cfg.APIKey)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)
}
