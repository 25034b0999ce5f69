package commands

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/gurudayal37/indian-stock-ai-chatbot/internal/services"
	"github.com/gurudayal37/indian-stock-ai-chatbot/pkg/models"
)

func TestWriteRunSummary(t *testing.T) {
	started := time.Date(2024, 1, 15, 6, 0, 0, 0, time.UTC)
	summary := &services.RunSummary{
		RunID:      "0f2e1f9c-5a1b-4c2d-9e3f-abcdef012345",
		StartedAt:  started,
		FinishedAt: started.Add(3 * time.Minute),
		Stocks:     20,
		ByType: map[models.DataType]*services.TypeStats{
			models.DataTypeOHLCV: {Due: 20, Succeeded: 19, Refreshed: 1, Failed: 1, RowsWritten: 42},
			models.DataTypeNews:  {Skipped: 20},
		},
		Failures: []services.Failure{
			{Symbol: "INFY", DataType: models.DataTypeOHLCV, Error: "provider unavailable"},
		},
	}

	var sb strings.Builder
	writeRunSummary(&sb, summary)
	out := sb.String()

	assert.Contains(t, out, "Last run 0f2e1f9c-5a1b-4c2d-9e3f-abcdef012345")
	assert.Contains(t, out, "20 stocks, 1 failures")
	assert.Contains(t, out, "due=20 skipped=0 succeeded=19 refreshed=1 failed=1 rows=42 rejected=0")
	assert.Contains(t, out, "skipped=20")
	assert.Contains(t, out, "FAILED INFY ohlcv: provider unavailable")

	// Data types with no activity this run stay out of the report.
	assert.NotContains(t, out, string(models.DataTypeEarnings))
}
