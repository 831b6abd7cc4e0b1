// Package export writes token snapshots and portfolio valuations as CSV or
// JSON, to any writer or to timestamped files.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/rovshanmuradov/tokenboard/internal/portfolio"
	"github.com/rovshanmuradov/tokenboard/internal/types"
)

// Format represents the export file format
type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
)

// ParseFormat accepts "csv" or "json" in any case. Empty means CSV.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case "", FormatCSV:
		return FormatCSV, nil
	case FormatJSON:
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("unsupported format: %s", s)
	}
}

// ContentType returns the MIME type for the format.
func (f Format) ContentType() string {
	if f == FormatJSON {
		return "application/json"
	}
	return "text/csv"
}

var tokenHeaders = []string{
	"id", "name", "symbol", "price", "change_24h", "volume_24h", "market_cap",
	"market_cap_rank", "liquidity", "volatility", "slippage", "health_score", "last_updated",
}

var holdingHeaders = []string{
	"id", "token_id", "symbol", "amount", "purchase_price", "purchase_date",
	"current_price", "price_source", "initial_investment", "current_value", "net_pnl", "pnl_percentage",
}

type Exporter struct {
	logger *zap.Logger
	now    func() time.Time
}

func NewExporter(logger *zap.Logger) *Exporter {
	return &Exporter{
		logger: logger.Named("export"),
		now:    time.Now,
	}
}

// ExportTokens writes tokens to w in the given format.
func (e *Exporter) ExportTokens(w io.Writer, tokens []types.Token, format Format) error {
	switch format {
	case FormatCSV:
		rows := make([][]string, 0, len(tokens))
		for _, t := range tokens {
			rows = append(rows, tokenRow(t))
		}
		return writeCSV(w, tokenHeaders, rows)
	case FormatJSON:
		return writeJSON(w, struct {
			ExportTime time.Time     `json:"export_time"`
			TokenCount int           `json:"token_count"`
			Tokens     []types.Token `json:"tokens"`
		}{
			ExportTime: e.now().UTC(),
			TokenCount: len(tokens),
			Tokens:     nonNil(tokens),
		})
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
}

// ExportHoldings writes a portfolio valuation to w. The CSV form ends with a
// TOTAL row.
func (e *Exporter) ExportHoldings(w io.Writer, summary portfolio.Summary, format Format) error {
	switch format {
	case FormatCSV:
		rows := make([][]string, 0, len(summary.Holdings)+1)
		for _, v := range summary.Holdings {
			rows = append(rows, holdingRow(v))
		}
		total := summary.Total
		rows = append(rows, []string{
			"TOTAL", "", "", "", "", "", "", "",
			formatFloat(total.InitialInvestment), formatFloat(total.CurrentValue),
			formatFloat(total.NetPnL), formatFloat(total.PnLPercentage),
		})
		return writeCSV(w, holdingHeaders, rows)
	case FormatJSON:
		if summary.Holdings == nil {
			summary.Holdings = []portfolio.Valuation{}
		}
		return writeJSON(w, struct {
			ExportTime   time.Time `json:"export_time"`
			HoldingCount int       `json:"holding_count"`
			portfolio.Summary
		}{
			ExportTime:   e.now().UTC(),
			HoldingCount: len(summary.Holdings),
			Summary:      summary,
		})
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
}

// ExportTokensToFile writes tokens_<timestamp>.<format> under dir and
// returns its path.
func (e *Exporter) ExportTokensToFile(dir string, tokens []types.Token, format Format) (string, error) {
	return e.toFile(dir, "tokens", format, len(tokens), func(w io.Writer) error {
		return e.ExportTokens(w, tokens, format)
	})
}

// ExportHoldingsToFile writes portfolio_<timestamp>.<format> under dir and
// returns its path.
func (e *Exporter) ExportHoldingsToFile(dir string, summary portfolio.Summary, format Format) (string, error) {
	return e.toFile(dir, "portfolio", format, len(summary.Holdings), func(w io.Writer) error {
		return e.ExportHoldings(w, summary, format)
	})
}

func (e *Exporter) toFile(dir, prefix string, format Format, count int, write func(io.Writer) error) (string, error) {
	if format != FormatCSV && format != FormatJSON {
		return "", fmt.Errorf("unsupported format: %s", format)
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	filename := fmt.Sprintf("%s_%s.%s", prefix, e.now().Format("20060102_150405"), format)
	outputPath := filepath.Join(dir, filename)

	file, err := os.Create(outputPath)
	if err != nil {
		return "", fmt.Errorf("failed to create export file: %w", err)
	}
	if err := write(file); err != nil {
		file.Close()
		return "", err
	}
	if err := file.Close(); err != nil {
		return "", fmt.Errorf("failed to close export file: %w", err)
	}

	e.logger.Info("Export written",
		zap.String("file", outputPath),
		zap.Int("count", count),
		zap.String("format", string(format)))

	return outputPath, nil
}

func tokenRow(t types.Token) []string {
	rank := ""
	if t.HasRank() {
		rank = strconv.Itoa(t.MarketCapRank)
	}
	return []string{
		t.ID, t.Name, t.Symbol,
		formatFloat(t.Price), formatFloat(t.Change24h), formatFloat(t.Volume24h), formatFloat(t.MarketCap),
		rank,
		formatFloat(t.Liquidity), formatFloat(t.Volatility), formatFloat(t.Slippage), formatFloat(t.HealthScore),
		t.LastUpdated.UTC().Format(time.RFC3339),
	}
}

func holdingRow(v portfolio.Valuation) []string {
	h := v.Holding
	return []string{
		h.ID, h.Token.ID, h.Token.Symbol,
		formatFloat(h.Amount), formatFloat(h.PurchasePrice), h.PurchaseDate.UTC().Format(time.RFC3339),
		formatFloat(v.CurrentPrice), string(v.PriceSource),
		formatFloat(v.InitialInvestment), formatFloat(v.CurrentValue), formatFloat(v.NetPnL), formatFloat(v.PnLPercentage),
	}
}

func writeCSV(w io.Writer, headers []string, rows [][]string) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(headers); err != nil {
		return fmt.Errorf("failed to write CSV headers: %w", err)
	}
	if err := writer.WriteAll(rows); err != nil {
		return fmt.Errorf("failed to write CSV rows: %w", err)
	}
	return nil
}

func writeJSON(w io.Writer, v interface{}) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(v); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func nonNil(tokens []types.Token) []types.Token {
	if tokens == nil {
		return []types.Token{}
	}
	return tokens
}
