package services

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/gurudayal37/indian-stock-ai-chatbot/internal/cache"
	"github.com/gurudayal37/indian-stock-ai-chatbot/internal/database"
	"github.com/gurudayal37/indian-stock-ai-chatbot/internal/messaging"
	"github.com/gurudayal37/indian-stock-ai-chatbot/pkg/config"
	"github.com/gurudayal37/indian-stock-ai-chatbot/pkg/models"
)

// SyncState labels where a (stock, data type) pair is in its lifecycle.
// Terminal states are skipped, succeeded and failed.
type SyncState string

const (
	StateNotDue     SyncState = "not_due"
	StateDue        SyncState = "due"
	StateFetching   SyncState = "fetching"
	StateValidating SyncState = "validating"
	StateRefreshing SyncState = "refreshing"
	StateUpserting  SyncState = "upserting"
	StateSkipped    SyncState = "skipped"
	StateSucceeded  SyncState = "succeeded"
	StateFailed     SyncState = "failed"
)

// Orchestrator drives sync runs: it decides which (stock, data type) pairs
// are due, moves each due pair through fetch, validation, optional refresh
// and upsert, and records a checkpoint for every attempt. One pair failing
// never aborts the run.
type Orchestrator struct {
	store     Store
	fetcher   Fetcher
	validator *Validator
	upserter  *Upserter
	refresher *Refresher
	cfg       *config.SyncConfig
	logger    *logrus.Entry

	nats   *messaging.NATSClient
	quotes *cache.RedisClient

	now func() time.Time
}

// NewOrchestrator wires the sync pipeline. Storage calls go through a
// retry layer so transient connection errors are absorbed per attempt.
func NewOrchestrator(store Store, fetcher Fetcher, cfg *config.SyncConfig, logger *logrus.Logger) *Orchestrator {
	policy := database.RetryPolicy{Attempts: cfg.RetryAttempts, BaseDelay: cfg.RetryBaseDelay}
	retrying := NewRetryingStore(store, policy, logger)
	upserter := NewUpserter(retrying, logger)

	return &Orchestrator{
		store:     retrying,
		fetcher:   fetcher,
		validator: NewValidator(cfg.Tolerance, cfg.VolumeToleranceFactor, logger),
		upserter:  upserter,
		refresher: NewRefresher(retrying, fetcher, upserter, cfg.RetentionWindow(), logger),
		cfg:       cfg,
		logger:    logger.WithField("component", "orchestrator"),
		now:       time.Now,
	}
}

// WithMessaging enables sync lifecycle events on NATS
func (o *Orchestrator) WithMessaging(nc *messaging.NATSClient) *Orchestrator {
	o.nats = nc
	return o
}

// WithQuoteCache enables latest-close and run-summary caching on Redis
func (o *Orchestrator) WithQuoteCache(rc *cache.RedisClient) *Orchestrator {
	o.quotes = rc
	return o
}

// SyncAll syncs every active stock for the given data types, in batches.
// The returned summary holds per-type stats and every failure; the error
// is non-nil only when the run itself could not proceed.
func (o *Orchestrator) SyncAll(ctx context.Context, dataTypes []models.DataType, validateOnly bool) (*RunSummary, error) {
	stocks, err := o.store.GetActiveStocks(ctx)
	if err != nil {
		return nil, err
	}
	return o.syncStocks(ctx, stocks, dataTypes, validateOnly)
}

// SyncSymbols syncs the named symbols only. Unknown symbols are recorded
// as failures rather than aborting the run.
func (o *Orchestrator) SyncSymbols(ctx context.Context, symbols []string, dataTypes []models.DataType, validateOnly bool) (*RunSummary, error) {
	var stocks []*models.Stock
	summary := NewRunSummary()

	for _, symbol := range symbols {
		stock, err := o.store.GetStockBySymbol(ctx, symbol)
		if err != nil {
			return nil, err
		}
		if stock == nil {
			o.logger.WithField("symbol", symbol).Error("Unknown symbol")
			for _, dt := range dataTypes {
				summary.addFailure(symbol, dt, errUnknownSymbol)
			}
			continue
		}
		stocks = append(stocks, stock)
	}

	return o.syncStocksInto(ctx, summary, stocks, dataTypes, validateOnly)
}

func (o *Orchestrator) syncStocks(ctx context.Context, stocks []*models.Stock, dataTypes []models.DataType, validateOnly bool) (*RunSummary, error) {
	return o.syncStocksInto(ctx, NewRunSummary(), stocks, dataTypes, validateOnly)
}

func (o *Orchestrator) syncStocksInto(ctx context.Context, summary *RunSummary, stocks []*models.Stock, dataTypes []models.DataType, validateOnly bool) (*RunSummary, error) {
	summary.Stocks = len(stocks)
	log := o.logger.WithField("run_id", summary.RunID)

	log.WithFields(logrus.Fields{
		"stocks":        len(stocks),
		"data_types":    dataTypes,
		"validate_only": validateOnly,
	}).Info("Starting sync run")

	batchSize := o.cfg.BatchSize
	if batchSize <= 0 {
		batchSize = len(stocks)
	}

	for start := 0; start < len(stocks); start += batchSize {
		if err := ctx.Err(); err != nil {
			break
		}

		end := start + batchSize
		if end > len(stocks) {
			end = len(stocks)
		}

		log.WithFields(logrus.Fields{
			"batch": start/batchSize + 1,
			"from":  start,
			"to":    end,
		}).Info("Processing batch")

		for _, stock := range stocks[start:end] {
			if err := ctx.Err(); err != nil {
				break
			}
			o.syncStock(ctx, summary, stock, dataTypes, validateOnly)
		}

		// Snapshot after every batch so progress survives an aborted run.
		if o.quotes != nil {
			if err := o.quotes.SetLastRunSummary(ctx, summary); err != nil {
				log.WithError(err).Warn("Failed to cache run summary")
			}
		}
	}

	summary.FinishedAt = o.now()
	summary.Log(log)

	if o.quotes != nil {
		if err := o.quotes.SetLastRunSummary(ctx, summary); err != nil {
			log.WithError(err).Warn("Failed to cache run summary")
		}
	}
	if o.nats != nil && o.nats.IsConnected() {
		if err := o.nats.PublishSyncComplete(summary); err != nil {
			log.WithError(err).Warn("Failed to publish run summary")
		}
	}

	return summary, nil
}

func (o *Orchestrator) syncStock(ctx context.Context, summary *RunSummary, stock *models.Stock, dataTypes []models.DataType, validateOnly bool) {
	for _, dt := range dataTypes {
		if err := ctx.Err(); err != nil {
			return
		}
		state := o.syncOne(ctx, summary, stock, dt, validateOnly)
		if state != StateSkipped {
			o.sleep(ctx, o.cfg.RequestDelay)
		}
	}
}

// syncOne moves a single (stock, data type) pair through the lifecycle
// and returns its terminal state.
func (o *Orchestrator) syncOne(ctx context.Context, summary *RunSummary, stock *models.Stock, dt models.DataType, validateOnly bool) SyncState {
	log := o.logger.WithFields(logrus.Fields{
		"run_id":    summary.RunID,
		"symbol":    stock.Symbol(),
		"data_type": dt,
	})
	st := summary.stats(dt)

	cp, err := o.store.GetCheckpoint(ctx, stock.ID, dt)
	if err != nil {
		return o.fail(ctx, log, summary, stock, dt, nil, err)
	}

	due, reason, err := o.isDue(ctx, stock, dt, cp)
	if err != nil {
		return o.fail(ctx, log, summary, stock, dt, cp, err)
	}
	if !due {
		st.Skipped++
		log.WithField("state", StateNotDue).Debug("Skipping, not due")
		return StateSkipped
	}
	st.Due++
	log.WithField("reason", reason).Debug("Pair due for sync")

	if dt == models.DataTypeOHLCV {
		return o.syncPrices(ctx, log, summary, stock, cp, validateOnly)
	}
	if validateOnly {
		st.Due--
		st.Skipped++
		return StateSkipped
	}
	return o.syncSnapshot(ctx, log, summary, stock, dt, cp)
}

// syncPrices handles the OHLCV lifecycle including validation and refresh.
func (o *Orchestrator) syncPrices(ctx context.Context, log *logrus.Entry, summary *RunSummary, stock *models.Stock, cp *models.SyncCheckpoint, validateOnly bool) SyncState {
	dt := models.DataTypeOHLCV
	st := summary.stats(dt)

	local, err := o.store.GetLatestDailyPrice(ctx, stock.ID)
	if err != nil {
		return o.fail(ctx, log, summary, stock, dt, cp, err)
	}

	if validateOnly {
		return o.validateOnly(ctx, log, summary, stock, local)
	}

	log.WithField("state", StateFetching).Debug("Fetching")
	var records []models.Record
	if local == nil {
		records, err = o.fetcher.FetchFull(ctx, stock, dt, o.cfg.RetentionWindow())
	} else {
		records, err = o.fetcher.FetchIncremental(ctx, stock, dt, local.Date)
	}
	if err != nil {
		return o.fail(ctx, log, summary, stock, dt, cp, err)
	}

	if local != nil {
		log.WithField("state", StateValidating).Debug("Validating")
		result := o.validator.Validate(local, matchingBar(records, local))
		if !result.OK {
			log.WithFields(logrus.Fields{
				"state":  StateRefreshing,
				"field":  result.Field,
				"local":  result.Local,
				"remote": result.Remote,
				"delta":  result.Delta,
			}).Warn("Validation failed, refreshing full history")

			refresh, err := o.refresher.Refresh(ctx, stock, dt)
			if err != nil {
				return o.fail(ctx, log, summary, stock, dt, cp, err)
			}

			st.Refreshed++
			return o.succeed(ctx, log, summary, stock, dt, cp, refresh.Upsert, true)
		}
	}

	log.WithField("state", StateUpserting).Debug("Upserting")
	result, err := o.upserter.Upsert(ctx, stock.ID, dt, records)
	if err != nil {
		return o.fail(ctx, log, summary, stock, dt, cp, err)
	}
	return o.succeed(ctx, log, summary, stock, dt, cp, result, false)
}

// syncSnapshot handles the snapshot types: fetch the current snapshot and
// insert whatever is new. No validation step applies.
func (o *Orchestrator) syncSnapshot(ctx context.Context, log *logrus.Entry, summary *RunSummary, stock *models.Stock, dt models.DataType, cp *models.SyncCheckpoint) SyncState {
	log.WithField("state", StateFetching).Debug("Fetching")

	var since time.Time
	if cp != nil {
		since = cp.LastSyncTime
	}
	records, err := o.fetcher.FetchIncremental(ctx, stock, dt, since)
	if err != nil {
		return o.fail(ctx, log, summary, stock, dt, cp, err)
	}

	log.WithField("state", StateUpserting).Debug("Upserting")
	result, err := o.upserter.Upsert(ctx, stock.ID, dt, records)
	if err != nil {
		return o.fail(ctx, log, summary, stock, dt, cp, err)
	}
	return o.succeed(ctx, log, summary, stock, dt, cp, result, false)
}

// validateOnly checks the latest stored bar against the provider without
// writing anything. Detected drift is reported as a failure so callers
// exit non-zero.
func (o *Orchestrator) validateOnly(ctx context.Context, log *logrus.Entry, summary *RunSummary, stock *models.Stock, local *models.DailyPrice) SyncState {
	st := summary.stats(models.DataTypeOHLCV)

	if local == nil {
		st.Succeeded++
		log.Debug("No stored bars, nothing to validate")
		return StateSucceeded
	}

	latest, err := o.fetcher.FetchLatest(ctx, stock, models.DataTypeOHLCV)
	if err != nil {
		summary.addFailure(stock.Symbol(), models.DataTypeOHLCV, err)
		return StateFailed
	}

	remote, _ := latest.(*models.DailyPrice)
	if remote != nil && remote.NaturalKey() != local.NaturalKey() {
		remote = nil
	}

	result := o.validator.Validate(local, remote)
	if !result.OK {
		log.WithFields(logrus.Fields{
			"field":  result.Field,
			"local":  result.Local,
			"remote": result.Remote,
			"delta":  result.Delta,
		}).Warn("Validation drift detected")
		summary.addFailure(stock.Symbol(), models.DataTypeOHLCV, errValidationDrift)
		return StateFailed
	}

	st.Succeeded++
	log.Debug("Validation passed")
	return StateSucceeded
}

func (o *Orchestrator) succeed(ctx context.Context, log *logrus.Entry, summary *RunSummary, stock *models.Stock, dt models.DataType, prev *models.SyncCheckpoint, result UpsertResult, refreshed bool) SyncState {
	st := summary.stats(dt)

	if err := o.writeCheckpoint(ctx, stock, dt, prev, result, nil); err != nil {
		return o.fail(ctx, log, summary, stock, dt, prev, err)
	}

	st.Succeeded++
	st.RowsWritten += result.Inserted
	st.RowsRejected += result.Rejected

	log.WithFields(logrus.Fields{
		"state":      StateSucceeded,
		"inserted":   result.Inserted,
		"duplicates": result.Duplicates,
		"refreshed":  refreshed,
	}).Info("Sync complete")

	if dt == models.DataTypeOHLCV {
		o.cacheLatestClose(ctx, log, stock)
	}
	if o.nats != nil && o.nats.IsConnected() {
		event := &messaging.SyncProgressEvent{
			RunID:     summary.RunID,
			Symbol:    stock.Symbol(),
			DataType:  dt,
			Written:   result.Inserted,
			Refreshed: refreshed,
		}
		if err := o.nats.PublishSyncProgress(event); err != nil {
			log.WithError(err).Warn("Failed to publish progress event")
		}
	}

	return StateSucceeded
}

// fail records a failed checkpoint and run failure. The sync loop always
// continues to the next pair.
func (o *Orchestrator) fail(ctx context.Context, log *logrus.Entry, summary *RunSummary, stock *models.Stock, dt models.DataType, prev *models.SyncCheckpoint, cause error) SyncState {
	log.WithError(cause).WithField("state", StateFailed).Error("Sync failed")
	summary.addFailure(stock.Symbol(), dt, cause)

	if err := o.writeCheckpoint(ctx, stock, dt, prev, UpsertResult{}, cause); err != nil {
		log.WithError(err).Error("Failed to record failed checkpoint")
	}

	if o.nats != nil && o.nats.IsConnected() {
		event := &messaging.SyncErrorEvent{
			RunID:    summary.RunID,
			Symbol:   stock.Symbol(),
			DataType: dt,
			Error:    cause.Error(),
		}
		if err := o.nats.PublishSyncError(event); err != nil {
			log.WithError(err).Warn("Failed to publish error event")
		}
	}

	return StateFailed
}

// writeCheckpoint records the attempt. LastSyncTime always advances so
// staleness is measured from the last attempt, success or not.
func (o *Orchestrator) writeCheckpoint(ctx context.Context, stock *models.Stock, dt models.DataType, prev *models.SyncCheckpoint, result UpsertResult, syncErr error) error {
	cp := &models.SyncCheckpoint{
		StockID:      stock.ID,
		DataType:     dt,
		LastSyncTime: o.now(),
		RecordsCount: result.Inserted,
		Status:       models.SyncStatusSuccess,
	}

	cp.LastDataDate = result.LastDataDate
	if cp.LastDataDate == nil && prev != nil {
		cp.LastDataDate = prev.LastDataDate
	}

	switch {
	case syncErr != nil:
		cp.Status = models.SyncStatusFailed
		cp.ErrorMessage = truncate(syncErr.Error(), 1000)
	case result.Rejected > 0:
		cp.Status = models.SyncStatusPartial
	}

	return o.store.UpsertCheckpoint(ctx, cp)
}

// isDue applies the per-type staleness policy. A pair with no checkpoint
// is always due; quarterly results are also forced whenever zero rows are
// stored, so a wiped table recovers on the next run.
func (o *Orchestrator) isDue(ctx context.Context, stock *models.Stock, dt models.DataType, cp *models.SyncCheckpoint) (bool, string, error) {
	if cp == nil {
		return true, "never synced", nil
	}

	if dt == models.DataTypeQuarterlyResults {
		count, err := o.store.CountRecords(ctx, stock.ID, dt)
		if err != nil {
			return false, "", err
		}
		if count == 0 {
			return true, "no stored rows", nil
		}
	}

	if o.now().Sub(cp.LastSyncTime) >= o.cfg.Interval(dt) {
		return true, "interval elapsed", nil
	}
	return false, "", nil
}

func (o *Orchestrator) cacheLatestClose(ctx context.Context, log *logrus.Entry, stock *models.Stock) {
	if o.quotes == nil {
		return
	}
	bar, err := o.store.GetLatestDailyPrice(ctx, stock.ID)
	if err != nil || bar == nil {
		return
	}
	if err := o.quotes.SetLatestClose(ctx, stock.Symbol(), bar); err != nil {
		log.WithError(err).Warn("Failed to cache latest close")
	}
}

func (o *Orchestrator) sleep(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	select {
	case <-ctx.Done():
	case <-time.After(d):
	}
}

// matchingBar finds the fetched bar sharing the stored bar's date, if the
// fetch window included it.
func matchingBar(records []models.Record, local *models.DailyPrice) *models.DailyPrice {
	want := local.NaturalKey()
	for _, r := range records {
		bar, ok := r.(*models.DailyPrice)
		if ok && bar.NaturalKey() == want {
			return bar
		}
	}
	return nil
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
