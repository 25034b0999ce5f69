package services

import (
	"context"
	"time"

	"github.com/gurudayal37/indian-stock-ai-chatbot/pkg/models"
)

// Store is the persistence surface the sync engine depends on. The MySQL
// client satisfies it; tests substitute in-memory fakes.
type Store interface {
	GetActiveStocks(ctx context.Context) ([]*models.Stock, error)
	GetStockBySymbol(ctx context.Context, symbol string) (*models.Stock, error)

	GetCheckpoint(ctx context.Context, stockID int64, dataType models.DataType) (*models.SyncCheckpoint, error)
	UpsertCheckpoint(ctx context.Context, cp *models.SyncCheckpoint) error

	GetLatestDailyPrice(ctx context.Context, stockID int64) (*models.DailyPrice, error)
	CountRecords(ctx context.Context, stockID int64, dataType models.DataType) (int64, error)
	ExistingKeys(ctx context.Context, stockID int64, dataType models.DataType, keys []string) (map[string]struct{}, error)
	InsertRecords(ctx context.Context, stockID int64, dataType models.DataType, records []models.Record) (int, error)
	DeleteAllRecords(ctx context.Context, stockID int64, dataType models.DataType) (int64, error)
}

// Fetcher returns structured records for a stock and data type, regardless
// of whether they came from an API, a scrape or a file.
type Fetcher interface {
	FetchIncremental(ctx context.Context, stock *models.Stock, dataType models.DataType, since time.Time) ([]models.Record, error)
	FetchFull(ctx context.Context, stock *models.Stock, dataType models.DataType, window time.Duration) ([]models.Record, error)
	FetchLatest(ctx context.Context, stock *models.Stock, dataType models.DataType) (models.Record, error)
}
