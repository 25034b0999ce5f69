package models

import (
	"fmt"
	"time"
)

// QuarterlyResult holds one quarter of reported financials for a stock.
// Rows are unique on (stock_id, quarter, year, source); different sources
// keep independent rows for the same period and are never merged.
type QuarterlyResult struct {
	ID            int64  `json:"id"`
	StockID       int64  `json:"stock_id"`
	Quarter       string `json:"quarter"` // e.g. "Q1 2024"
	Year          int    `json:"year"`
	QuarterNumber int    `json:"quarter_number"` // 1-4

	Sales           float64 `json:"sales"`
	Expenses        float64 `json:"expenses"`
	OperatingProfit float64 `json:"operating_profit"`
	OPMPercent      float64 `json:"opm_percent"`
	OtherIncome     float64 `json:"other_income"`
	Interest        float64 `json:"interest"`
	Depreciation    float64 `json:"depreciation"`
	ProfitBeforeTax float64 `json:"profit_before_tax"`
	TaxPercent      float64 `json:"tax_percent"`
	NetProfit       float64 `json:"net_profit"`
	EPS             float64 `json:"eps"`

	IsConsolidated bool       `json:"is_consolidated"`
	Source         string     `json:"source"` // e.g. "screener", "bse"
	FilingDate     *time.Time `json:"filing_date,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

// NaturalKey identifies a quarterly row by period, year and source.
func (q *QuarterlyResult) NaturalKey() string {
	return fmt.Sprintf("%s|%d|%s", q.Quarter, q.Year, q.Source)
}
