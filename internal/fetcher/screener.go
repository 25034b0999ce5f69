package fetcher

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/gurudayal37/indian-stock-ai-chatbot/pkg/config"
	"github.com/gurudayal37/indian-stock-ai-chatbot/pkg/models"
)

// ScreenerClient fetches quarterly results from the Screener.in company API.
// Values arrive as display strings in crores and are stored as-is, without
// derived calculations.
type ScreenerClient struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string
	logger     *logrus.Entry
}

// NewScreenerClient creates a new Screener.in client
func NewScreenerClient(cfg *config.ProviderConfig, logger *logrus.Logger) *ScreenerClient {
	return &ScreenerClient{
		httpClient: &http.Client{Timeout: cfg.RequestTimeout},
		baseURL:    cfg.ScreenerBaseURL,
		userAgent:  cfg.UserAgent,
		logger:     logger.WithField("component", "screener"),
	}
}

type screenerQuartersResponse struct {
	// Quarter labels in display order, e.g. "Jun 2024".
	Quarters []string `json:"quarters"`
	// Row label -> per-quarter display values, e.g. "Sales" -> ["52,788", ...].
	Rows map[string][]string `json:"rows"`
}

// QuarterlyResults fetches consolidated quarterly results for a symbol
func (c *ScreenerClient) QuarterlyResults(ctx context.Context, symbol string) ([]*models.QuarterlyResult, error) {
	endpoint := fmt.Sprintf("%s/api/company/%s/quarters/", c.baseURL, url.PathEscape(symbol))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d from screener for %s", resp.StatusCode, symbol)
	}

	var payload screenerQuartersResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode screener response: %w", err)
	}

	results := make([]*models.QuarterlyResult, 0, len(payload.Quarters))
	for i, label := range payload.Quarters {
		quarter, year, ok := parseQuarterLabel(label)
		if !ok {
			c.logger.WithField("label", label).Debug("Skipping unparseable quarter label")
			continue
		}

		qr := &models.QuarterlyResult{
			Quarter:        quarter,
			Year:           year,
			QuarterNumber:  quarterNumber(quarter),
			IsConsolidated: true,
			Source:         "screener",
		}
		qr.Sales = screenerValue(payload.Rows, "Sales", i)
		qr.Expenses = screenerValue(payload.Rows, "Expenses", i)
		qr.OperatingProfit = screenerValue(payload.Rows, "Operating Profit", i)
		qr.OPMPercent = screenerValue(payload.Rows, "OPM %", i)
		qr.OtherIncome = screenerValue(payload.Rows, "Other Income", i)
		qr.Interest = screenerValue(payload.Rows, "Interest", i)
		qr.Depreciation = screenerValue(payload.Rows, "Depreciation", i)
		qr.ProfitBeforeTax = screenerValue(payload.Rows, "Profit before tax", i)
		qr.TaxPercent = screenerValue(payload.Rows, "Tax %", i)
		qr.NetProfit = screenerValue(payload.Rows, "Net Profit", i)
		qr.EPS = screenerValue(payload.Rows, "EPS in Rs", i)

		results = append(results, qr)
	}

	return results, nil
}

// parseQuarterLabel converts a display label like "Jun 2024" into a quarter
// label ("Q1 2024" on the Indian fiscal calendar) and a calendar year.
func parseQuarterLabel(label string) (string, int, bool) {
	parts := strings.Fields(strings.TrimSpace(label))
	if len(parts) != 2 {
		return "", 0, false
	}

	year, err := strconv.Atoi(parts[1])
	if err != nil {
		return "", 0, false
	}

	month, err := time.Parse("Jan", parts[0])
	if err != nil {
		return "", 0, false
	}

	// Indian fiscal quarters: Q1 = Apr-Jun, Q2 = Jul-Sep, Q3 = Oct-Dec, Q4 = Jan-Mar.
	var q int
	switch month.Month() {
	case time.April, time.May, time.June:
		q = 1
	case time.July, time.August, time.September:
		q = 2
	case time.October, time.November, time.December:
		q = 3
	default:
		q = 4
	}

	return fmt.Sprintf("Q%d %d", q, year), year, true
}

func quarterNumber(quarter string) int {
	if len(quarter) >= 2 {
		if n, err := strconv.Atoi(quarter[1:2]); err == nil {
			return n
		}
	}
	return 0
}

// screenerValue parses a display value like "52,788" or "12.5%" from a row.
// Missing or unparseable values become 0.
func screenerValue(rows map[string][]string, label string, idx int) float64 {
	values, ok := rows[label]
	if !ok || idx >= len(values) {
		return 0
	}

	cleaned := strings.TrimSpace(values[idx])
	cleaned = strings.ReplaceAll(cleaned, ",", "")
	cleaned = strings.TrimSuffix(cleaned, "%")
	if cleaned == "" || cleaned == "-" {
		return 0
	}

	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0
	}
	return v
}
