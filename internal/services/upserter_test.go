package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gurudayal37/indian-stock-ai-chatbot/pkg/models"
)

func TestUpsertInsertsOnlyMissingRows(t *testing.T) {
	store := newFakeStore()
	upserter := NewUpserter(store, testLogger())
	ctx := context.Background()

	// Five rows already stored.
	existing := []models.Record{
		bar("2024-01-01", 100), bar("2024-01-02", 101), bar("2024-01-03", 102),
		bar("2024-01-04", 103), bar("2024-01-05", 104),
	}
	_, err := store.InsertRecords(ctx, 1, models.DataTypeOHLCV, existing)
	require.NoError(t, err)

	// A batch of ten: the five above plus five new days.
	batch := append([]models.Record{}, existing...)
	batch = append(batch,
		bar("2024-01-08", 105), bar("2024-01-09", 106), bar("2024-01-10", 107),
		bar("2024-01-11", 108), bar("2024-01-12", 109),
	)

	result, err := upserter.Upsert(ctx, 1, models.DataTypeOHLCV, batch)
	require.NoError(t, err)

	assert.Equal(t, 5, result.Inserted)
	assert.Equal(t, 5, result.Duplicates)
	assert.Equal(t, 0, result.Rejected)

	count, err := store.CountRecords(ctx, 1, models.DataTypeOHLCV)
	require.NoError(t, err)
	assert.Equal(t, int64(10), count)

	require.NotNil(t, result.LastDataDate)
	assert.Equal(t, "2024-01-12", result.LastDataDate.Format("2006-01-02"))
}

func TestUpsertDropsInBatchDuplicates(t *testing.T) {
	store := newFakeStore()
	upserter := NewUpserter(store, testLogger())

	batch := []models.Record{
		bar("2024-01-01", 100),
		bar("2024-01-01", 100), // same day twice in one response
		bar("2024-01-02", 101),
	}

	result, err := upserter.Upsert(context.Background(), 1, models.DataTypeOHLCV, batch)
	require.NoError(t, err)

	assert.Equal(t, 2, result.Inserted)
	assert.Equal(t, 1, result.Duplicates)
}

func TestUpsertRejectsBadRows(t *testing.T) {
	store := newFakeStore()
	upserter := NewUpserter(store, testLogger())

	zeroPriced := bar("2024-01-02", 0)
	noTitle := &models.NewsItem{PublishedDate: time.Now()}

	result, err := upserter.Upsert(context.Background(), 1, models.DataTypeOHLCV, []models.Record{
		bar("2024-01-01", 100), zeroPriced,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Inserted)
	assert.Equal(t, 1, result.Rejected)

	result, err = upserter.Upsert(context.Background(), 1, models.DataTypeNews, []models.Record{noTitle})
	require.NoError(t, err)
	assert.Equal(t, 0, result.Inserted)
	assert.Equal(t, 1, result.Rejected)
}

func TestUpsertRejectsEmptyQuarterlyRows(t *testing.T) {
	store := newFakeStore()
	upserter := NewUpserter(store, testLogger())

	// A parse miss leaves every figure at zero; such rows carry no signal.
	empty := &models.QuarterlyResult{Quarter: "Q2 2024", Year: 2024, Source: "screener"}
	lossMaking := &models.QuarterlyResult{Quarter: "Q1 2024", Year: 2024, Source: "screener", NetProfit: -120}
	normal := &models.QuarterlyResult{Quarter: "Q3 2023", Year: 2023, Source: "screener", Sales: 52788}

	result, err := upserter.Upsert(context.Background(), 1, models.DataTypeQuarterlyResults,
		[]models.Record{empty, lossMaking, normal})
	require.NoError(t, err)

	assert.Equal(t, 2, result.Inserted, "a zero-profit quarter with sales, or a loss, still counts")
	assert.Equal(t, 1, result.Rejected)
}

func TestUpsertEmptyBatchTouchesNothing(t *testing.T) {
	store := newFakeStore()
	upserter := NewUpserter(store, testLogger())

	result, err := upserter.Upsert(context.Background(), 1, models.DataTypeOHLCV, nil)
	require.NoError(t, err)

	assert.Zero(t, result.Inserted)
	assert.Zero(t, store.insertCalls)
}
