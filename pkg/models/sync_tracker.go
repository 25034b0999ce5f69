package models

import "time"

// DataType is a category of data collected per stock. Each type has an
// independent staleness policy and checkpoint row.
type DataType string

const (
	DataTypeOHLCV            DataType = "ohlcv"
	DataTypeNews             DataType = "news"
	DataTypeFinancials       DataType = "financials"
	DataTypeEarnings         DataType = "earnings"
	DataTypeQuarterlyResults DataType = "quarterly_results"
)

// AllDataTypes lists every data type in sync order. OHLCV runs first so
// the freshest prices land before the slower periodic types.
var AllDataTypes = []DataType{
	DataTypeOHLCV,
	DataTypeNews,
	DataTypeFinancials,
	DataTypeEarnings,
	DataTypeQuarterlyResults,
}

// Sync checkpoint statuses.
const (
	SyncStatusSuccess = "success"
	SyncStatusPartial = "partial"
	SyncStatusFailed  = "failed"
)

// SyncCheckpoint is the persisted per-(stock, data type) sync state.
// Exactly one row exists per pair; absence means the pair was never synced.
type SyncCheckpoint struct {
	ID           int64      `json:"id"`
	StockID      int64      `json:"stock_id"`
	DataType     DataType   `json:"data_type"`
	LastSyncTime time.Time  `json:"last_sync_time"`
	LastDataDate *time.Time `json:"last_data_date,omitempty"`
	RecordsCount int        `json:"records_count"` // written by the most recent run, not cumulative
	Status       string     `json:"status"`
	ErrorMessage string     `json:"error_message,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}
