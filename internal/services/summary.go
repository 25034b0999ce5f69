package services

import (
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/gurudayal37/indian-stock-ai-chatbot/pkg/models"
)

// TypeStats aggregates per-data-type outcomes for one run.
type TypeStats struct {
	Due          int `json:"due"`
	Skipped      int `json:"skipped"`
	Succeeded    int `json:"succeeded"`
	Refreshed    int `json:"refreshed"`
	Failed       int `json:"failed"`
	RowsWritten  int `json:"rows_written"`
	RowsRejected int `json:"rows_rejected"`
}

// Failure records one (stock, data type) pair that could not be synced.
type Failure struct {
	Symbol   string          `json:"symbol"`
	DataType models.DataType `json:"data_type"`
	Error    string          `json:"error"`
}

// RunSummary aggregates the outcome of one sync run. Each run starts from
// a fresh summary; nothing carries over between runs except the persisted
// checkpoints.
type RunSummary struct {
	RunID      string                         `json:"run_id"`
	StartedAt  time.Time                      `json:"started_at"`
	FinishedAt time.Time                      `json:"finished_at"`
	Stocks     int                            `json:"stocks"`
	ByType     map[models.DataType]*TypeStats `json:"by_type"`
	Failures   []Failure                      `json:"failures,omitempty"`
}

// NewRunSummary creates an empty summary with a fresh run ID
func NewRunSummary() *RunSummary {
	return &RunSummary{
		RunID:     uuid.NewString(),
		StartedAt: time.Now(),
		ByType:    make(map[models.DataType]*TypeStats),
	}
}

func (s *RunSummary) stats(dt models.DataType) *TypeStats {
	st, ok := s.ByType[dt]
	if !ok {
		st = &TypeStats{}
		s.ByType[dt] = st
	}
	return st
}

func (s *RunSummary) addFailure(symbol string, dt models.DataType, err error) {
	s.stats(dt).Failed++
	s.Failures = append(s.Failures, Failure{Symbol: symbol, DataType: dt, Error: err.Error()})
}

// HasFailures reports whether any pair failed during the run
func (s *RunSummary) HasFailures() bool {
	return len(s.Failures) > 0
}

// Log writes one line per data type plus a run total
func (s *RunSummary) Log(log *logrus.Entry) {
	for _, dt := range models.AllDataTypes {
		st, ok := s.ByType[dt]
		if !ok {
			continue
		}
		log.WithFields(logrus.Fields{
			"data_type":     dt,
			"due":           st.Due,
			"skipped":       st.Skipped,
			"succeeded":     st.Succeeded,
			"refreshed":     st.Refreshed,
			"failed":        st.Failed,
			"rows_written":  st.RowsWritten,
			"rows_rejected": st.RowsRejected,
		}).Info("Data type summary")
	}

	log.WithFields(logrus.Fields{
		"run_id":   s.RunID,
		"stocks":   s.Stocks,
		"failures": len(s.Failures),
		"duration": s.FinishedAt.Sub(s.StartedAt).Round(time.Millisecond),
	}).Info("Sync run complete")
}
