package fetcher

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/gurudayal37/indian-stock-ai-chatbot/pkg/config"
	"github.com/gurudayal37/indian-stock-ai-chatbot/pkg/models"
)

// Provider returns structured records for a stock and data type. The sync
// engine neither knows nor cares which upstream each record came from.
type Provider interface {
	FetchIncremental(ctx context.Context, stock *models.Stock, dataType models.DataType, since time.Time) ([]models.Record, error)
	FetchFull(ctx context.Context, stock *models.Stock, dataType models.DataType, window time.Duration) ([]models.Record, error)
	FetchLatest(ctx context.Context, stock *models.Stock, dataType models.DataType) (models.Record, error)
}

// Source routes each data type to the provider responsible for it: OHLCV,
// news, financials and earnings come from Yahoo; quarterly results from
// Screener.in.
type Source struct {
	yahoo    *YahooClient
	screener *ScreenerClient
	logger   *logrus.Entry
}

// NewSource creates the default provider routing
func NewSource(cfg *config.ProviderConfig, logger *logrus.Logger) *Source {
	return &Source{
		yahoo:    NewYahooClient(cfg, logger),
		screener: NewScreenerClient(cfg, logger),
		logger:   logger.WithField("component", "fetcher"),
	}
}

// FetchIncremental returns records from since (inclusive) onward. The
// window deliberately overlaps the caller's last stored date so the shared
// bar can be validated; deduplication at upsert drops the overlap again.
// Snapshot-style types (news, financials, earnings, quarterly results)
// always return the current provider snapshot.
func (s *Source) FetchIncremental(ctx context.Context, stock *models.Stock, dataType models.DataType, since time.Time) ([]models.Record, error) {
	if dataType == models.DataTypeOHLCV {
		bars, err := s.yahoo.DailyBars(ctx, stock.Symbol(), since, time.Now())
		return priceRecords(bars), err
	}
	return s.snapshot(ctx, stock, dataType)
}

// FetchFull returns records for the entire retention window
func (s *Source) FetchFull(ctx context.Context, stock *models.Stock, dataType models.DataType, window time.Duration) ([]models.Record, error) {
	if dataType == models.DataTypeOHLCV {
		to := time.Now()
		bars, err := s.yahoo.DailyBars(ctx, stock.Symbol(), to.Add(-window), to)
		return priceRecords(bars), err
	}
	return s.snapshot(ctx, stock, dataType)
}

// FetchLatest returns the single most recent record, or nil when the
// provider has none. Only OHLCV supports a cheap latest lookup.
func (s *Source) FetchLatest(ctx context.Context, stock *models.Stock, dataType models.DataType) (models.Record, error) {
	if dataType != models.DataTypeOHLCV {
		return nil, nil
	}
	bar, err := s.yahoo.LatestBar(ctx, stock.Symbol())
	if err != nil || bar == nil {
		return nil, err
	}
	return bar, nil
}

func (s *Source) snapshot(ctx context.Context, stock *models.Stock, dataType models.DataType) ([]models.Record, error) {
	switch dataType {
	case models.DataTypeNews:
		items, err := s.yahoo.News(ctx, stock.Symbol())
		return newsRecords(items), err
	case models.DataTypeFinancials:
		statements, err := s.yahoo.FinancialStatements(ctx, stock.Symbol())
		return financialRecords(statements), err
	case models.DataTypeEarnings:
		events, err := s.yahoo.EarningsEvents(ctx, stock.Symbol())
		return earningsRecords(events), err
	case models.DataTypeQuarterlyResults:
		results, err := s.screener.QuarterlyResults(ctx, stock.Symbol())
		return quarterlyRecords(results), err
	default:
		return nil, fmt.Errorf("unknown data type: %s", dataType)
	}
}

func priceRecords(bars []*models.DailyPrice) []models.Record {
	records := make([]models.Record, 0, len(bars))
	for _, b := range bars {
		records = append(records, b)
	}
	return records
}

func newsRecords(items []*models.NewsItem) []models.Record {
	records := make([]models.Record, 0, len(items))
	for _, n := range items {
		records = append(records, n)
	}
	return records
}

func financialRecords(statements []*models.FinancialStatement) []models.Record {
	records := make([]models.Record, 0, len(statements))
	for _, f := range statements {
		records = append(records, f)
	}
	return records
}

func earningsRecords(events []*models.EarningsEvent) []models.Record {
	records := make([]models.Record, 0, len(events))
	for _, e := range events {
		records = append(records, e)
	}
	return records
}

func quarterlyRecords(results []*models.QuarterlyResult) []models.Record {
	records := make([]models.Record, 0, len(results))
	for _, q := range results {
		records = append(records, q)
	}
	return records
}
