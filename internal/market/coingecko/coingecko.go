// Package coingecko fetches the top-N market list from the CoinGecko REST API.
package coingecko

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/rovshanmuradov/tokenboard/internal/market"
	"github.com/rovshanmuradov/tokenboard/internal/types"
)

const (
	DefaultBaseURL    = "https://api.coingecko.com/api/v3"
	DefaultVsCurrency = "usd"
	DefaultPerPage    = 100
	MaxPerPage        = 250
	DefaultTimeout    = 30 * time.Second
	// DefaultRequestsPerMinute matches the public tier limit.
	DefaultRequestsPerMinute = 30

	apiKeyHeader = "x-cg-demo-api-key"
	maxErrorBody = 512
)

// Config configures the client.
type Config struct {
	BaseURL           string
	APIKey            string
	VsCurrency        string
	PerPage           int
	Timeout           time.Duration
	RequestsPerMinute int
}

// StatusError is returned for non-200 responses.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("unexpected status %d", e.Code)
	}
	return fmt.Sprintf("unexpected status %d: %s", e.Code, e.Body)
}

// marketCoin is one element of the /coins/markets response.
type marketCoin struct {
	ID                       string   `json:"id"`
	Symbol                   string   `json:"symbol"`
	Name                     string   `json:"name"`
	CurrentPrice             *float64 `json:"current_price"`
	MarketCap                *float64 `json:"market_cap"`
	MarketCapRank            *int     `json:"market_cap_rank"`
	TotalVolume              *float64 `json:"total_volume"`
	PriceChangePercentage24h *float64 `json:"price_change_percentage_24h"`
}

// Client is a market.Provider backed by CoinGecko.
type Client struct {
	cfg        Config
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *zap.Logger
}

// NewClient creates a client, filling zero config values with defaults.
func NewClient(cfg Config, logger *zap.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.VsCurrency == "" {
		cfg.VsCurrency = DefaultVsCurrency
	}
	if cfg.PerPage <= 0 {
		cfg.PerPage = DefaultPerPage
	}
	if cfg.PerPage > MaxPerPage {
		cfg.PerPage = MaxPerPage
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.RequestsPerMinute <= 0 {
		cfg.RequestsPerMinute = DefaultRequestsPerMinute
	}

	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		limiter:    rate.NewLimiter(rate.Every(time.Minute/time.Duration(cfg.RequestsPerMinute)), 1),
		logger:     logger.Named("coingecko"),
	}
}

// Name implements the optional provider name.
func (c *Client) Name() string { return "coingecko" }

// Fetch implements market.Provider. Failures are not retried; the caller's
// next scheduled refresh is the recovery path.
func (c *Client) Fetch(ctx context.Context) ([]types.RawRecord, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: rate limiter: %w", market.ErrFetch, err)
	}

	endpoint := c.marketsURL()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %w", market.ErrFetch, err)
	}
	req.Header.Set("Accept", "application/json")
	if c.cfg.APIKey != "" {
		req.Header.Set(apiKeyHeader, c.cfg.APIKey)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", market.ErrFetch, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, fmt.Errorf("%w: %w", market.ErrFetch, &StatusError{Code: resp.StatusCode, Body: string(body)})
	}

	var coins []marketCoin
	if err := json.NewDecoder(resp.Body).Decode(&coins); err != nil {
		return nil, fmt.Errorf("%w: decode markets: %w", market.ErrFetch, err)
	}

	c.logger.Debug("Fetched market list",
		zap.Int("count", len(coins)),
		zap.Duration("latency", time.Since(start)))

	records := make([]types.RawRecord, 0, len(coins))
	for _, coin := range coins {
		records = append(records, coin.record())
	}
	return records, nil
}

func (c *Client) marketsURL() string {
	q := url.Values{}
	q.Set("vs_currency", c.cfg.VsCurrency)
	q.Set("order", "market_cap_desc")
	q.Set("per_page", strconv.Itoa(c.cfg.PerPage))
	q.Set("page", "1")
	q.Set("sparkline", "false")
	return c.cfg.BaseURL + "/coins/markets?" + q.Encode()
}

func (m marketCoin) record() types.RawRecord {
	return types.RawRecord{
		ID:            m.ID,
		Name:          m.Name,
		Symbol:        m.Symbol,
		Price:         m.CurrentPrice,
		Change24h:     m.PriceChangePercentage24h,
		Volume24h:     m.TotalVolume,
		MarketCap:     m.MarketCap,
		MarketCapRank: m.MarketCapRank,
	}
}
