package models

import "time"

// DailyPrice represents one day of OHLCV data for a stock.
// Rows are unique on (stock_id, date) and immutable once written; a
// validation-triggered refresh replaces the whole series instead of
// patching individual rows.
type DailyPrice struct {
	ID        int64     `json:"id"`
	StockID   int64     `json:"stock_id"`
	Date      time.Time `json:"date"`
	Open      float64   `json:"open"`
	High      float64   `json:"high"`
	Low       float64   `json:"low"`
	Close     float64   `json:"close"`
	Volume    int64     `json:"volume"`
	Turnover  float64   `json:"turnover,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// NaturalKey identifies a daily bar by its trading date.
func (p *DailyPrice) NaturalKey() string {
	return p.Date.Format("2006-01-02")
}
