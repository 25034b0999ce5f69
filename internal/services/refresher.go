package services

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/gurudayal37/indian-stock-ai-chatbot/pkg/models"
)

// RefreshResult summarizes a destructive rebuild of one series.
type RefreshResult struct {
	Deleted int64
	Upsert  UpsertResult
}

// Refresher rebuilds a stock's series from scratch after validation
// detects drift: delete every stored row, refetch the full retention
// window, reinsert. Partial repair is deliberately not attempted since a
// corporate action restates the entire history.
type Refresher struct {
	store    Store
	fetcher  Fetcher
	upserter *Upserter
	window   time.Duration
	logger   *logrus.Entry
}

// NewRefresher creates a refresher that backfills the given window
func NewRefresher(store Store, fetcher Fetcher, upserter *Upserter, window time.Duration, logger *logrus.Logger) *Refresher {
	return &Refresher{
		store:    store,
		fetcher:  fetcher,
		upserter: upserter,
		window:   window,
		logger:   logger.WithField("component", "refresher"),
	}
}

// Refresh deletes all stored rows for (stock, dataType) and rebuilds them
// from a full fetch. If the refetch fails after the delete, the series is
// left empty and the error propagates so the caller records a failed
// checkpoint; the next run's zero-row state forces a fresh backfill.
func (r *Refresher) Refresh(ctx context.Context, stock *models.Stock, dataType models.DataType) (RefreshResult, error) {
	var result RefreshResult

	log := r.logger.WithFields(logrus.Fields{
		"symbol":    stock.Symbol(),
		"data_type": dataType,
	})

	deleted, err := r.store.DeleteAllRecords(ctx, stock.ID, dataType)
	if err != nil {
		return result, err
	}
	result.Deleted = deleted
	log.WithField("deleted", deleted).Warn("Deleted stored rows for full refresh")

	records, err := r.fetcher.FetchFull(ctx, stock, dataType, r.window)
	if err != nil {
		log.WithError(err).Error("Refetch failed after delete, series left empty")
		return result, err
	}

	result.Upsert, err = r.upserter.Upsert(ctx, stock.ID, dataType, records)
	if err != nil {
		log.WithError(err).Error("Reinsert failed after delete, series left incomplete")
		return result, err
	}

	log.WithFields(logrus.Fields{
		"deleted":  result.Deleted,
		"inserted": result.Upsert.Inserted,
	}).Info("Full refresh complete")

	return result, nil
}
