package commands

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ddlFor(t *testing.T, table string) string {
	t.Helper()
	for _, stmt := range migrations {
		if strings.Contains(stmt, "CREATE TABLE IF NOT EXISTS "+table+" ") {
			return stmt
		}
	}
	t.Fatalf("no migration creates table %s", table)
	return ""
}

// The store addresses columns by name; the DDL must create every one of
// them or a freshly migrated database cannot serve a single sync.
func TestMigrationsCreateColumnsTheStoreUses(t *testing.T) {
	columns := map[string][]string{
		"stocks": {
			"name", "isin", "bse_symbol", "nse_symbol", "industry", "sector", "is_active",
		},
		"daily_prices": {
			"stock_id", "date", "open_price", "high_price", "low_price", "close_price", "volume", "turnover",
		},
		"news": {
			"stock_id", "title", "content", "source", "url", "published_date",
		},
		"financial_statements": {
			"stock_id", "statement_type", "period", "year", "quarter", "data", "filing_date",
		},
		"earnings_events": {
			"stock_id", "title", "event_date",
		},
		"quarterly_results": {
			"stock_id", "quarter", "year", "quarter_number", "sales", "expenses",
			"operating_profit", "opm_percent", "other_income", "interest", "depreciation",
			"profit_before_tax", "tax_percent", "net_profit", "eps", "is_consolidated",
			"source", "filing_date",
		},
		"sync_tracker": {
			"stock_id", "data_type", "last_sync_time", "last_data_date",
			"records_count", "sync_status", "error_message",
		},
	}

	for table, cols := range columns {
		ddl := ddlFor(t, table)
		for _, col := range cols {
			assert.Contains(t, ddl, "\n\t\t"+col+" ", "%s.%s", table, col)
		}
	}
}

func TestSyncTrackerUniquePerStockAndDataType(t *testing.T) {
	ddl := ddlFor(t, "sync_tracker")
	require.Contains(t, ddl, "UNIQUE KEY uniq_stock_data_type (stock_id, data_type)")
}

func TestEveryRecordTableKeepsNaturalKeyUnique(t *testing.T) {
	assert.Contains(t, ddlFor(t, "daily_prices"), "UNIQUE KEY uniq_stock_date (stock_id, date)")
	assert.Contains(t, ddlFor(t, "quarterly_results"), "UNIQUE KEY uniq_stock_quarter_source (stock_id, quarter, year, source)")
	assert.Contains(t, ddlFor(t, "financial_statements"), "UNIQUE KEY uniq_stock_statement (stock_id, statement_type, year, quarter)")
}
