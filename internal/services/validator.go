package services

import (
	"math"

	"github.com/sirupsen/logrus"

	"github.com/gurudayal37/indian-stock-ai-chatbot/pkg/models"
)

// ValidationResult is the outcome of comparing a stored bar against the
// freshly fetched bar for the same date.
type ValidationResult struct {
	OK     bool
	Field  string  // first field whose delta exceeded tolerance
	Local  float64 // stored value of that field
	Remote float64 // fetched value of that field
	Delta  float64 // relative delta of that field
}

// Validator detects drift between stored OHLCV bars and what the provider
// currently reports, typically caused by corporate actions restating
// history. Deltas are relative to the stored value; volume gets a looser
// tolerance because providers routinely restate it.
type Validator struct {
	tolerance       float64
	volumeTolerance float64
	logger          *logrus.Entry
}

// NewValidator creates a validator with the given relative tolerance.
// The volume tolerance is tolerance scaled by volumeFactor.
func NewValidator(tolerance, volumeFactor float64, logger *logrus.Logger) *Validator {
	return &Validator{
		tolerance:       tolerance,
		volumeTolerance: tolerance * volumeFactor,
		logger:          logger.WithField("component", "validator"),
	}
}

// Validate compares local against remote field by field. A missing side
// passes trivially: no stored bar means a first sync, no remote bar means
// there is nothing to compare. A delta exactly at tolerance passes.
func (v *Validator) Validate(local, remote *models.DailyPrice) ValidationResult {
	if local == nil || remote == nil {
		return ValidationResult{OK: true}
	}

	checks := []struct {
		field  string
		local  float64
		remote float64
	}{
		{"open", local.Open, remote.Open},
		{"high", local.High, remote.High},
		{"low", local.Low, remote.Low},
		{"close", local.Close, remote.Close},
	}

	for _, c := range checks {
		if c.local == 0 {
			continue
		}
		delta := math.Abs(c.local-c.remote) / math.Abs(c.local)
		if delta > v.tolerance {
			return ValidationResult{OK: false, Field: c.field, Local: c.local, Remote: c.remote, Delta: delta}
		}
	}

	if local.Volume != 0 && remote.Volume != 0 {
		lv, rv := float64(local.Volume), float64(remote.Volume)
		delta := math.Abs(lv-rv) / math.Abs(lv)
		if delta > v.volumeTolerance {
			return ValidationResult{OK: false, Field: "volume", Local: lv, Remote: rv, Delta: delta}
		}
	}

	return ValidationResult{OK: true}
}
