package fetcher

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/gurudayal37/indian-stock-ai-chatbot/pkg/config"
	"github.com/gurudayal37/indian-stock-ai-chatbot/pkg/models"
)

// YahooClient fetches OHLCV history, news, financial statements and earnings
// dates from the Yahoo Finance JSON endpoints. NSE symbols are suffixed with
// ".NS" as Yahoo expects.
type YahooClient struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string
	logger     *logrus.Entry
}

// NewYahooClient creates a new Yahoo Finance client
func NewYahooClient(cfg *config.ProviderConfig, logger *logrus.Logger) *YahooClient {
	return &YahooClient{
		httpClient: &http.Client{Timeout: cfg.RequestTimeout},
		baseURL:    cfg.YahooBaseURL,
		userAgent:  cfg.UserAgent,
		logger:     logger.WithField("component", "yahoo"),
	}
}

type chartResponse struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []*float64 `json:"open"`
					High   []*float64 `json:"high"`
					Low    []*float64 `json:"low"`
					Close  []*float64 `json:"close"`
					Volume []*int64   `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// DailyBars fetches daily OHLCV bars for a symbol between from and to.
// Incomplete points (provider nulls) are dropped.
func (c *YahooClient) DailyBars(ctx context.Context, symbol string, from, to time.Time) ([]*models.DailyPrice, error) {
	endpoint := fmt.Sprintf("%s/v8/finance/chart/%s", c.baseURL, url.PathEscape(yahooSymbol(symbol)))
	params := url.Values{
		"period1":  {fmt.Sprintf("%d", from.Unix())},
		"period2":  {fmt.Sprintf("%d", to.Unix())},
		"interval": {"1d"},
		"events":   {"history"},
	}

	var resp chartResponse
	if err := c.getJSON(ctx, endpoint+"?"+params.Encode(), &resp); err != nil {
		return nil, err
	}
	if resp.Chart.Error != nil {
		return nil, fmt.Errorf("yahoo chart error for %s: %s", symbol, resp.Chart.Error.Description)
	}
	if len(resp.Chart.Result) == 0 || len(resp.Chart.Result[0].Indicators.Quote) == 0 {
		return nil, nil
	}

	result := resp.Chart.Result[0]
	quote := result.Indicators.Quote[0]

	bars := make([]*models.DailyPrice, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		if i >= len(quote.Open) || quote.Open[i] == nil || quote.High[i] == nil ||
			quote.Low[i] == nil || quote.Close[i] == nil {
			continue
		}
		bar := &models.DailyPrice{
			Date:  time.Unix(ts, 0).UTC().Truncate(24 * time.Hour),
			Open:  *quote.Open[i],
			High:  *quote.High[i],
			Low:   *quote.Low[i],
			Close: *quote.Close[i],
		}
		if i < len(quote.Volume) && quote.Volume[i] != nil {
			bar.Volume = *quote.Volume[i]
			bar.Turnover = bar.Open * float64(bar.Volume)
		}
		bars = append(bars, bar)
	}

	c.logger.WithFields(logrus.Fields{
		"symbol": symbol,
		"bars":   len(bars),
	}).Debug("Fetched daily bars")

	return bars, nil
}

// LatestBar fetches the most recent daily bar for a symbol
func (c *YahooClient) LatestBar(ctx context.Context, symbol string) (*models.DailyPrice, error) {
	to := time.Now()
	from := to.AddDate(0, 0, -7)

	bars, err := c.DailyBars(ctx, symbol, from, to)
	if err != nil {
		return nil, err
	}
	if len(bars) == 0 {
		return nil, nil
	}
	return bars[len(bars)-1], nil
}

type searchResponse struct {
	News []struct {
		Title               string `json:"title"`
		Publisher           string `json:"publisher"`
		Link                string `json:"link"`
		ProviderPublishTime int64  `json:"providerPublishTime"`
		Summary             string `json:"summary"`
	} `json:"news"`
}

// News fetches recent news articles mentioning a symbol
func (c *YahooClient) News(ctx context.Context, symbol string) ([]*models.NewsItem, error) {
	endpoint := fmt.Sprintf("%s/v1/finance/search", c.baseURL)
	params := url.Values{
		"q":           {yahooSymbol(symbol)},
		"newsCount":   {"20"},
		"quotesCount": {"0"},
	}

	var resp searchResponse
	if err := c.getJSON(ctx, endpoint+"?"+params.Encode(), &resp); err != nil {
		return nil, err
	}

	items := make([]*models.NewsItem, 0, len(resp.News))
	for _, n := range resp.News {
		if n.Title == "" {
			continue
		}
		published := time.Now().UTC()
		if n.ProviderPublishTime > 0 {
			published = time.Unix(n.ProviderPublishTime, 0).UTC()
		}
		items = append(items, &models.NewsItem{
			Title:         n.Title,
			Content:       n.Summary,
			Source:        n.Publisher,
			URL:           n.Link,
			PublishedDate: published,
		})
	}

	return items, nil
}

type quoteSummaryResponse struct {
	QuoteSummary struct {
		Result []map[string]json.RawMessage `json:"result"`
		Error  *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"quoteSummary"`
}

type statementHistory struct {
	Statements []struct {
		EndDate struct {
			Raw int64  `json:"raw"`
			Fmt string `json:"fmt"`
		} `json:"endDate"`
	} `json:"statements"`
}

// FinancialStatements fetches quarterly income statements and annual cash
// flow statements, storing each period's raw JSON payload.
func (c *YahooClient) FinancialStatements(ctx context.Context, symbol string) ([]*models.FinancialStatement, error) {
	raw, err := c.quoteSummary(ctx, symbol, "incomeStatementHistoryQuarterly,cashflowStatementHistory")
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, nil
	}

	var statements []*models.FinancialStatement
	statements = append(statements, parseStatements(raw["incomeStatementHistoryQuarterly"], "incomeStatementHistory", "quarterly_financials", "Quarterly")...)
	statements = append(statements, parseStatements(raw["cashflowStatementHistory"], "cashflowStatements", "cash_flow", "Annual")...)

	return statements, nil
}

type calendarEvents struct {
	Earnings struct {
		EarningsDate []struct {
			Raw int64  `json:"raw"`
			Fmt string `json:"fmt"`
		} `json:"earningsDate"`
	} `json:"earnings"`
}

// EarningsEvents fetches scheduled earnings announcement dates
func (c *YahooClient) EarningsEvents(ctx context.Context, symbol string) ([]*models.EarningsEvent, error) {
	raw, err := c.quoteSummary(ctx, symbol, "calendarEvents")
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, nil
	}

	var cal calendarEvents
	if err := json.Unmarshal(raw["calendarEvents"], &cal); err != nil {
		return nil, fmt.Errorf("failed to decode calendar events for %s: %w", symbol, err)
	}

	var events []*models.EarningsEvent
	for _, d := range cal.Earnings.EarningsDate {
		if d.Raw == 0 {
			continue
		}
		eventDate := time.Unix(d.Raw, 0).UTC()
		events = append(events, &models.EarningsEvent{
			Title:     fmt.Sprintf("Earnings Announcement - %s", eventDate.Format("January 2006")),
			EventDate: eventDate,
		})
	}

	return events, nil
}

func (c *YahooClient) quoteSummary(ctx context.Context, symbol, modules string) (map[string]json.RawMessage, error) {
	endpoint := fmt.Sprintf("%s/v10/finance/quoteSummary/%s", c.baseURL, url.PathEscape(yahooSymbol(symbol)))
	params := url.Values{"modules": {modules}}

	var resp quoteSummaryResponse
	if err := c.getJSON(ctx, endpoint+"?"+params.Encode(), &resp); err != nil {
		return nil, err
	}
	if resp.QuoteSummary.Error != nil {
		return nil, fmt.Errorf("yahoo quoteSummary error for %s: %s", symbol, resp.QuoteSummary.Error.Description)
	}
	if len(resp.QuoteSummary.Result) == 0 {
		return nil, nil
	}
	return resp.QuoteSummary.Result[0], nil
}

func (c *YahooClient) getJSON(ctx context.Context, rawURL string, dest interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d from %s", resp.StatusCode, req.URL.Host)
	}

	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// parseStatements converts a raw statement-history module into per-period
// records, keeping the untouched JSON for each period.
func parseStatements(raw json.RawMessage, listKey, statementType, period string) []*models.FinancialStatement {
	if raw == nil {
		return nil
	}

	var wrapper map[string][]json.RawMessage
	if err := json.Unmarshal(raw, &wrapper); err != nil {
		return nil
	}

	var statements []*models.FinancialStatement
	for _, stmtRaw := range wrapper[listKey] {
		var stmt struct {
			EndDate struct {
				Raw int64 `json:"raw"`
			} `json:"endDate"`
		}
		if err := json.Unmarshal(stmtRaw, &stmt); err != nil || stmt.EndDate.Raw == 0 {
			continue
		}

		endDate := time.Unix(stmt.EndDate.Raw, 0).UTC()
		fs := &models.FinancialStatement{
			StatementType: statementType,
			Period:        period,
			Year:          endDate.Year(),
			Data:          string(stmtRaw),
			FilingDate:    &endDate,
		}
		if period == "Quarterly" {
			fs.Quarter = (int(endDate.Month())-1)/3 + 1
		}
		statements = append(statements, fs)
	}

	return statements
}

func yahooSymbol(symbol string) string {
	return symbol + ".NS"
}
