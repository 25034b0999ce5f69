package services

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/gurudayal37/indian-stock-ai-chatbot/pkg/models"
)

// UpsertResult summarizes one bulk upsert.
type UpsertResult struct {
	Inserted   int
	Duplicates int // fetched rows already stored
	Rejected   int // fetched rows that failed quality checks
	// LastDataDate is the newest record date among inserted rows, nil when
	// nothing was inserted or the type has no meaningful record date.
	LastDataDate *time.Time
}

// Upserter writes fetched records that are not already stored. It never
// updates existing rows: dedup happens on natural keys via batched
// existence lookups, and anything already present is dropped.
type Upserter struct {
	store  Store
	logger *logrus.Entry
}

// NewUpserter creates a bulk upserter backed by store
func NewUpserter(store Store, logger *logrus.Logger) *Upserter {
	return &Upserter{
		store:  store,
		logger: logger.WithField("component", "upserter"),
	}
}

// Upsert inserts the records not yet present for (stockID, dataType).
// Rows failing quality checks and rows duplicated within the batch are
// dropped before the existence lookup.
func (u *Upserter) Upsert(ctx context.Context, stockID int64, dataType models.DataType, records []models.Record) (UpsertResult, error) {
	var result UpsertResult
	if len(records) == 0 {
		return result, nil
	}

	seen := make(map[string]struct{}, len(records))
	candidates := make([]models.Record, 0, len(records))
	for _, r := range records {
		if !acceptable(r) {
			result.Rejected++
			continue
		}
		key := r.NaturalKey()
		if _, dup := seen[key]; dup {
			result.Duplicates++
			continue
		}
		seen[key] = struct{}{}
		candidates = append(candidates, r)
	}

	if result.Rejected > 0 {
		u.logger.WithFields(logrus.Fields{
			"stock_id":  stockID,
			"data_type": dataType,
			"rejected":  result.Rejected,
		}).Warn("Dropped records failing quality checks")
	}

	if len(candidates) == 0 {
		return result, nil
	}

	keys := make([]string, 0, len(candidates))
	for _, r := range candidates {
		keys = append(keys, r.NaturalKey())
	}

	existing, err := u.store.ExistingKeys(ctx, stockID, dataType, keys)
	if err != nil {
		return result, err
	}

	fresh := make([]models.Record, 0, len(candidates))
	for _, r := range candidates {
		if _, ok := existing[r.NaturalKey()]; ok {
			result.Duplicates++
			continue
		}
		fresh = append(fresh, r)
	}

	if len(fresh) == 0 {
		return result, nil
	}

	inserted, err := u.store.InsertRecords(ctx, stockID, dataType, fresh)
	result.Inserted = inserted
	if err != nil {
		return result, err
	}

	for _, r := range fresh {
		if d, ok := recordDate(r); ok {
			if result.LastDataDate == nil || d.After(*result.LastDataDate) {
				day := d
				result.LastDataDate = &day
			}
		}
	}

	u.logger.WithFields(logrus.Fields{
		"stock_id":   stockID,
		"data_type":  dataType,
		"inserted":   result.Inserted,
		"duplicates": result.Duplicates,
	}).Debug("Bulk upsert complete")

	return result, nil
}

// acceptable rejects rows that would poison the series: zero-priced bars,
// untitled articles, empty statement payloads.
func acceptable(r models.Record) bool {
	switch rec := r.(type) {
	case *models.DailyPrice:
		return !rec.Date.IsZero() && rec.Open > 0 && rec.High > 0 && rec.Low > 0 && rec.Close > 0
	case *models.NewsItem:
		return rec.Title != "" && !rec.PublishedDate.IsZero()
	case *models.FinancialStatement:
		return rec.StatementType != "" && rec.Year > 0 && rec.Data != ""
	case *models.EarningsEvent:
		return rec.Title != "" && !rec.EventDate.IsZero()
	case *models.QuarterlyResult:
		return rec.Quarter != "" && rec.Year > 0 && (rec.Sales != 0 || rec.NetProfit != 0)
	default:
		return false
	}
}

// recordDate extracts the domain date of a record for checkpoint tracking.
func recordDate(r models.Record) (time.Time, bool) {
	switch rec := r.(type) {
	case *models.DailyPrice:
		return rec.Date, true
	case *models.NewsItem:
		return rec.PublishedDate, true
	case *models.FinancialStatement:
		if rec.FilingDate != nil {
			return *rec.FilingDate, true
		}
		return time.Time{}, false
	case *models.EarningsEvent:
		return rec.EventDate, true
	case *models.QuarterlyResult:
		if rec.FilingDate != nil {
			return *rec.FilingDate, true
		}
		return time.Time{}, false
	default:
		return time.Time{}, false
	}
}
