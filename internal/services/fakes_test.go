package services

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/gurudayal37/indian-stock-ai-chatbot/pkg/models"
)

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func pairKey(stockID int64, dt models.DataType) string {
	return fmt.Sprintf("%d|%s", stockID, dt)
}

// fakeStore is an in-memory Store. Errors queued per operation name are
// returned once each before the real behavior resumes.
type fakeStore struct {
	stocks      []*models.Stock
	checkpoints map[string]*models.SyncCheckpoint
	rows        map[string][]models.Record
	errs        map[string][]error

	insertCalls int
	deleteCalls int
}

func newFakeStore(stocks ...*models.Stock) *fakeStore {
	return &fakeStore{
		stocks:      stocks,
		checkpoints: make(map[string]*models.SyncCheckpoint),
		rows:        make(map[string][]models.Record),
		errs:        make(map[string][]error),
	}
}

func (f *fakeStore) failWith(op string, errs ...error) {
	f.errs[op] = append(f.errs[op], errs...)
}

func (f *fakeStore) popErr(op string) error {
	queue := f.errs[op]
	if len(queue) == 0 {
		return nil
	}
	f.errs[op] = queue[1:]
	return queue[0]
}

func (f *fakeStore) GetActiveStocks(ctx context.Context) ([]*models.Stock, error) {
	if err := f.popErr("get_active_stocks"); err != nil {
		return nil, err
	}
	return f.stocks, nil
}

func (f *fakeStore) GetStockBySymbol(ctx context.Context, symbol string) (*models.Stock, error) {
	if err := f.popErr("get_stock_by_symbol"); err != nil {
		return nil, err
	}
	for _, s := range f.stocks {
		if s.Symbol() == symbol {
			return s, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) GetCheckpoint(ctx context.Context, stockID int64, dataType models.DataType) (*models.SyncCheckpoint, error) {
	if err := f.popErr("get_checkpoint"); err != nil {
		return nil, err
	}
	return f.checkpoints[pairKey(stockID, dataType)], nil
}

func (f *fakeStore) UpsertCheckpoint(ctx context.Context, cp *models.SyncCheckpoint) error {
	if err := f.popErr("upsert_checkpoint"); err != nil {
		return err
	}
	f.checkpoints[pairKey(cp.StockID, cp.DataType)] = cp
	return nil
}

func (f *fakeStore) GetLatestDailyPrice(ctx context.Context, stockID int64) (*models.DailyPrice, error) {
	if err := f.popErr("get_latest_daily_price"); err != nil {
		return nil, err
	}
	var latest *models.DailyPrice
	for _, r := range f.rows[pairKey(stockID, models.DataTypeOHLCV)] {
		bar := r.(*models.DailyPrice)
		if latest == nil || bar.Date.After(latest.Date) {
			latest = bar
		}
	}
	return latest, nil
}

func (f *fakeStore) CountRecords(ctx context.Context, stockID int64, dataType models.DataType) (int64, error) {
	if err := f.popErr("count_records"); err != nil {
		return 0, err
	}
	return int64(len(f.rows[pairKey(stockID, dataType)])), nil
}

func (f *fakeStore) ExistingKeys(ctx context.Context, stockID int64, dataType models.DataType, keys []string) (map[string]struct{}, error) {
	if err := f.popErr("existing_keys"); err != nil {
		return nil, err
	}
	stored := make(map[string]struct{})
	for _, r := range f.rows[pairKey(stockID, dataType)] {
		stored[r.NaturalKey()] = struct{}{}
	}
	existing := make(map[string]struct{})
	for _, key := range keys {
		if _, ok := stored[key]; ok {
			existing[key] = struct{}{}
		}
	}
	return existing, nil
}

func (f *fakeStore) InsertRecords(ctx context.Context, stockID int64, dataType models.DataType, records []models.Record) (int, error) {
	f.insertCalls++
	if err := f.popErr("insert_records"); err != nil {
		return 0, err
	}
	key := pairKey(stockID, dataType)
	f.rows[key] = append(f.rows[key], records...)
	return len(records), nil
}

func (f *fakeStore) DeleteAllRecords(ctx context.Context, stockID int64, dataType models.DataType) (int64, error) {
	f.deleteCalls++
	if err := f.popErr("delete_all_records"); err != nil {
		return 0, err
	}
	key := pairKey(stockID, dataType)
	deleted := int64(len(f.rows[key]))
	delete(f.rows, key)
	return deleted, nil
}

// fakeFetcher serves canned records per data type and counts calls.
type fakeFetcher struct {
	incremental map[models.DataType][]models.Record
	full        map[models.DataType][]models.Record
	latest      map[models.DataType]models.Record

	incrementalErr error
	fullErr        error

	incrementalCalls int
	fullCalls        int
	latestCalls      int
}

func newFakeFetcher() *fakeFetcher {
	return &fakeFetcher{
		incremental: make(map[models.DataType][]models.Record),
		full:        make(map[models.DataType][]models.Record),
		latest:      make(map[models.DataType]models.Record),
	}
}

func (f *fakeFetcher) FetchIncremental(ctx context.Context, stock *models.Stock, dataType models.DataType, since time.Time) ([]models.Record, error) {
	f.incrementalCalls++
	if f.incrementalErr != nil {
		return nil, f.incrementalErr
	}
	return f.incremental[dataType], nil
}

func (f *fakeFetcher) FetchFull(ctx context.Context, stock *models.Stock, dataType models.DataType, window time.Duration) ([]models.Record, error) {
	f.fullCalls++
	if f.fullErr != nil {
		return nil, f.fullErr
	}
	return f.full[dataType], nil
}

func (f *fakeFetcher) FetchLatest(ctx context.Context, stock *models.Stock, dataType models.DataType) (models.Record, error) {
	f.latestCalls++
	return f.latest[dataType], nil
}

func bar(day string, close float64) *models.DailyPrice {
	date, err := time.Parse("2006-01-02", day)
	if err != nil {
		panic(err)
	}
	return &models.DailyPrice{
		Date:   date,
		Open:   close,
		High:   close,
		Low:    close,
		Close:  close,
		Volume: 1000,
	}
}
