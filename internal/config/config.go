// =================================
// File: internal/config/config.go
// =================================
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Data modes.
const (
	ModeLive = "live"
	ModeMock = "mock"
)

type Config struct {
	Mode               string        `mapstructure:"mode"`
	APIBaseURL         string        `mapstructure:"api_base_url"`
	APIKey             string        `mapstructure:"api_key"`
	VsCurrency         string        `mapstructure:"vs_currency"`
	PageSize           int           `mapstructure:"page_size"`
	RefreshInterval    time.Duration `mapstructure:"refresh_interval"`
	RequestTimeout     time.Duration `mapstructure:"request_timeout"`
	RateLimitPerMinute int           `mapstructure:"rate_limit_per_minute"`
	MockCount          int           `mapstructure:"mock_count"`
	MockSeed           uint64        `mapstructure:"mock_seed"`
	HTTPAddr           string        `mapstructure:"http_addr"`
	EventBuffer        int           `mapstructure:"event_buffer"`
	DebugLogging       bool          `mapstructure:"debug_logging"`
	LogFile            string        `mapstructure:"log_file"`
	LogMaxSizeMB       int           `mapstructure:"log_max_size_mb"`
	LogMaxBackups      int           `mapstructure:"log_max_backups"`
	LogMaxAgeDays      int           `mapstructure:"log_max_age_days"`
	LogCompress        bool          `mapstructure:"log_compress"`
	LogBufferSize      int           `mapstructure:"log_buffer_size"`
	PortfolioExportDir string        `mapstructure:"portfolio_export_dir"`
}

const (
	EnvPrefix = "TOKENBOARD"

	DefaultMode               = ModeLive
	DefaultAPIBaseURL         = "https://api.coingecko.com/api/v3"
	DefaultVsCurrency         = "usd"
	DefaultPageSize           = 100
	MaxPageSize               = 250
	DefaultRefreshInterval    = 5 * time.Minute
	DefaultRequestTimeout     = 30 * time.Second
	DefaultRateLimitPerMinute = 30
	DefaultMockCount          = 50
	DefaultHTTPAddr           = ":8080"
	DefaultEventBuffer        = 100
	DefaultLogFile            = "logs/tokenboard.log"
)

func defaults() map[string]interface{} {
	return map[string]interface{}{
		"mode":                  DefaultMode,
		"api_base_url":          DefaultAPIBaseURL,
		"api_key":               "",
		"vs_currency":           DefaultVsCurrency,
		"page_size":             DefaultPageSize,
		"refresh_interval":      DefaultRefreshInterval,
		"request_timeout":       DefaultRequestTimeout,
		"rate_limit_per_minute": DefaultRateLimitPerMinute,
		"mock_count":            DefaultMockCount,
		"mock_seed":             0,
		"http_addr":             DefaultHTTPAddr,
		"event_buffer":          DefaultEventBuffer,
		"debug_logging":         false,
		"log_file":              DefaultLogFile,
		"log_max_size_mb":       100,
		"log_max_backups":       3,
		"log_max_age_days":      7,
		"log_compress":          true,
		"log_buffer_size":       200,
		"portfolio_export_dir":  "",
	}
}

// LoadConfig reads the file at path (JSON or YAML), a sibling .env file if
// present, and TOKENBOARD_* environment variables, in increasing precedence.
// An empty path skips the file and uses defaults plus environment.
func LoadConfig(path string) (*Config, error) {
	envDir := "."
	if path != "" {
		envDir = filepath.Dir(path)
	}
	if err := godotenv.Load(filepath.Join(envDir, ".env")); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	for key, value := range defaults() {
		v.SetDefault(key, value)
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.Mode = strings.ToLower(strings.TrimSpace(cfg.Mode))

	return &cfg, validateConfig(&cfg)
}

func validateConfig(cfg *Config) error {
	switch cfg.Mode {
	case ModeLive:
		if err := validateURL(cfg.APIBaseURL, "http"); err != nil {
			return fmt.Errorf("invalid api_base_url: %w", err)
		}
		if cfg.VsCurrency == "" {
			return errors.New("vs_currency is empty")
		}
	case ModeMock:
		if cfg.MockCount <= 0 {
			return errors.New("invalid mock_count")
		}
	default:
		return fmt.Errorf("unknown mode %q (want %s or %s)", cfg.Mode, ModeLive, ModeMock)
	}
	if cfg.HTTPAddr == "" {
		return errors.New("http_addr is empty")
	}
	return validateNumericParams(cfg)
}

func validateNumericParams(cfg *Config) error {
	if cfg.PageSize <= 0 || cfg.PageSize > MaxPageSize {
		return fmt.Errorf("invalid page_size: must be in 1..%d", MaxPageSize)
	}
	if cfg.RefreshInterval <= 0 {
		return errors.New("invalid refresh_interval")
	}
	if cfg.RequestTimeout <= 0 {
		return errors.New("invalid request_timeout")
	}
	if cfg.RateLimitPerMinute <= 0 {
		return errors.New("invalid rate_limit_per_minute")
	}
	if cfg.EventBuffer <= 0 {
		return errors.New("invalid event_buffer")
	}
	if cfg.LogBufferSize < 0 {
		return errors.New("invalid log_buffer_size")
	}
	return nil
}

func validateURL(rawURL, scheme string) error {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return errors.New("invalid URL format")
	}
	if !strings.HasPrefix(parsed.Scheme, scheme) || parsed.Host == "" {
		return errors.New("invalid URL protocol")
	}
	return nil
}
