package models

import (
	"fmt"
	"time"
)

// FinancialStatement holds one reported statement (P&L, balance sheet,
// cash flow) as the raw provider payload. Quarter is 0 for annual periods.
type FinancialStatement struct {
	ID            int64      `json:"id"`
	StockID       int64      `json:"stock_id"`
	StatementType string     `json:"statement_type"` // e.g. "quarterly_financials", "cash_flow"
	Period        string     `json:"period"`         // "Annual" or "Quarterly"
	Year          int        `json:"year"`
	Quarter       int        `json:"quarter,omitempty"`
	Data          string     `json:"data"` // provider JSON, stored as-is
	FilingDate    *time.Time `json:"filing_date,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

// NaturalKey identifies a statement by type, year and quarter.
func (f *FinancialStatement) NaturalKey() string {
	return fmt.Sprintf("%s|%d|%d", f.StatementType, f.Year, f.Quarter)
}

// EarningsEvent is a scheduled or historical earnings announcement.
type EarningsEvent struct {
	ID        int64     `json:"id"`
	StockID   int64     `json:"stock_id"`
	Title     string    `json:"title"`
	EventDate time.Time `json:"event_date"`
	CreatedAt time.Time `json:"created_at"`
}

// NaturalKey identifies an announcement by title and date.
func (e *EarningsEvent) NaturalKey() string {
	return fmt.Sprintf("%s|%s", e.Title, e.EventDate.UTC().Format("2006-01-02"))
}
