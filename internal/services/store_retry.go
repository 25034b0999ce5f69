package services

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/gurudayal37/indian-stock-ai-chatbot/internal/database"
	"github.com/gurudayal37/indian-stock-ai-chatbot/pkg/models"
)

// retryingStore wraps every Store call in the retry policy so transient
// connection failures are absorbed in one place instead of at every call
// site. Non-transient errors pass through on the first attempt.
type retryingStore struct {
	inner  Store
	policy database.RetryPolicy
	logger *logrus.Entry
}

// NewRetryingStore wraps store so each operation is retried on transient
// storage errors per policy.
func NewRetryingStore(store Store, policy database.RetryPolicy, logger *logrus.Logger) Store {
	return &retryingStore{
		inner:  store,
		policy: policy,
		logger: logger.WithField("component", "storage"),
	}
}

func (r *retryingStore) GetActiveStocks(ctx context.Context) ([]*models.Stock, error) {
	var stocks []*models.Stock
	err := r.policy.Do(ctx, r.logger, "get_active_stocks", func() error {
		var err error
		stocks, err = r.inner.GetActiveStocks(ctx)
		return err
	})
	return stocks, err
}

func (r *retryingStore) GetStockBySymbol(ctx context.Context, symbol string) (*models.Stock, error) {
	var stock *models.Stock
	err := r.policy.Do(ctx, r.logger, "get_stock_by_symbol", func() error {
		var err error
		stock, err = r.inner.GetStockBySymbol(ctx, symbol)
		return err
	})
	return stock, err
}

func (r *retryingStore) GetCheckpoint(ctx context.Context, stockID int64, dataType models.DataType) (*models.SyncCheckpoint, error) {
	var cp *models.SyncCheckpoint
	err := r.policy.Do(ctx, r.logger, "get_checkpoint", func() error {
		var err error
		cp, err = r.inner.GetCheckpoint(ctx, stockID, dataType)
		return err
	})
	return cp, err
}

func (r *retryingStore) UpsertCheckpoint(ctx context.Context, cp *models.SyncCheckpoint) error {
	return r.policy.Do(ctx, r.logger, "upsert_checkpoint", func() error {
		return r.inner.UpsertCheckpoint(ctx, cp)
	})
}

func (r *retryingStore) GetLatestDailyPrice(ctx context.Context, stockID int64) (*models.DailyPrice, error) {
	var price *models.DailyPrice
	err := r.policy.Do(ctx, r.logger, "get_latest_daily_price", func() error {
		var err error
		price, err = r.inner.GetLatestDailyPrice(ctx, stockID)
		return err
	})
	return price, err
}

func (r *retryingStore) CountRecords(ctx context.Context, stockID int64, dataType models.DataType) (int64, error) {
	var count int64
	err := r.policy.Do(ctx, r.logger, "count_records", func() error {
		var err error
		count, err = r.inner.CountRecords(ctx, stockID, dataType)
		return err
	})
	return count, err
}

func (r *retryingStore) ExistingKeys(ctx context.Context, stockID int64, dataType models.DataType, keys []string) (map[string]struct{}, error) {
	var existing map[string]struct{}
	err := r.policy.Do(ctx, r.logger, "existing_keys", func() error {
		var err error
		existing, err = r.inner.ExistingKeys(ctx, stockID, dataType, keys)
		return err
	})
	return existing, err
}

func (r *retryingStore) InsertRecords(ctx context.Context, stockID int64, dataType models.DataType, records []models.Record) (int, error) {
	var inserted int
	err := r.policy.Do(ctx, r.logger, "insert_records", func() error {
		var err error
		inserted, err = r.inner.InsertRecords(ctx, stockID, dataType, records)
		return err
	})
	return inserted, err
}

func (r *retryingStore) DeleteAllRecords(ctx context.Context, stockID int64, dataType models.DataType) (int64, error) {
	var deleted int64
	err := r.policy.Do(ctx, r.logger, "delete_all_records", func() error {
		var err error
		deleted, err = r.inner.DeleteAllRecords(ctx, stockID, dataType)
		return err
	})
	return deleted, err
}
