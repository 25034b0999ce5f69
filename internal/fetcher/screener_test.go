package fetcher

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseQuarterLabel(t *testing.T) {
	cases := []struct {
		label   string
		quarter string
		year    int
		ok      bool
	}{
		{"Jun 2024", "Q1 2024", 2024, true},
		{"Sep 2024", "Q2 2024", 2024, true},
		{"Dec 2024", "Q3 2024", 2024, true},
		{"Mar 2024", "Q4 2024", 2024, true},
		{"  Jun 2024 ", "Q1 2024", 2024, true},
		{"Jun", "", 0, false},
		{"Foo 2024", "", 0, false},
		{"Jun 20x4", "", 0, false},
	}

	for _, tc := range cases {
		quarter, year, ok := parseQuarterLabel(tc.label)
		assert.Equal(t, tc.ok, ok, tc.label)
		assert.Equal(t, tc.quarter, quarter, tc.label)
		assert.Equal(t, tc.year, year, tc.label)
	}
}

func TestScreenerValueParsesDisplayStrings(t *testing.T) {
	rows := map[string][]string{
		"Sales":      {"52,788", "48,005"},
		"OPM %":      {"17%", "16%"},
		"Net Profit": {"-1,250", ""},
	}

	assert.Equal(t, 52788.0, screenerValue(rows, "Sales", 0))
	assert.Equal(t, 48005.0, screenerValue(rows, "Sales", 1))
	assert.Equal(t, 17.0, screenerValue(rows, "OPM %", 0))
	assert.Equal(t, -1250.0, screenerValue(rows, "Net Profit", 0))

	// Missing rows, out-of-range columns and blanks all read as zero.
	assert.Zero(t, screenerValue(rows, "Net Profit", 1))
	assert.Zero(t, screenerValue(rows, "EPS in Rs", 0))
	assert.Zero(t, screenerValue(rows, "Sales", 5))
}

func TestQuarterNumber(t *testing.T) {
	assert.Equal(t, 1, quarterNumber("Q1 2024"))
	assert.Equal(t, 4, quarterNumber("Q4 2023"))
	assert.Equal(t, 0, quarterNumber(""))
}
