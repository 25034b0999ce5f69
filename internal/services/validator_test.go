package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/gurudayal37/indian-stock-ai-chatbot/pkg/models"
)

func newTestValidator() *Validator {
	return NewValidator(0.01, 10, testLogger())
}

func TestValidatePassesWithoutLocalOrRemote(t *testing.T) {
	v := newTestValidator()

	assert.True(t, v.Validate(nil, bar("2024-01-02", 100)).OK, "first sync has nothing to compare")
	assert.True(t, v.Validate(bar("2024-01-02", 100), nil).OK, "missing remote bar passes")
	assert.True(t, v.Validate(nil, nil).OK)
}

func TestValidateToleranceBoundary(t *testing.T) {
	v := newTestValidator()
	local := bar("2024-01-02", 100.0)

	// Exactly 1% off passes, anything beyond fails.
	result := v.Validate(local, bar("2024-01-02", 101.0))
	assert.True(t, result.OK)

	result = v.Validate(local, bar("2024-01-02", 101.01))
	assert.False(t, result.OK)
	assert.Equal(t, "open", result.Field)
	assert.InDelta(t, 0.0101, result.Delta, 1e-9)
}

func TestValidateSingleFieldDrift(t *testing.T) {
	v := newTestValidator()
	local := bar("2024-01-02", 100.0)

	remote := bar("2024-01-02", 100.0)
	remote.Close = 103.0

	result := v.Validate(local, remote)
	assert.False(t, result.OK)
	assert.Equal(t, "close", result.Field)
	assert.Equal(t, 100.0, result.Local)
	assert.Equal(t, 103.0, result.Remote)
}

func TestValidateVolumeUsesLooserTolerance(t *testing.T) {
	v := newTestValidator()
	local := bar("2024-01-02", 100.0)
	local.Volume = 1000

	// 9% volume drift is within the 10x tolerance.
	remote := bar("2024-01-02", 100.0)
	remote.Volume = 1090
	assert.True(t, v.Validate(local, remote).OK)

	// 11% is not.
	remote.Volume = 1110
	result := v.Validate(local, remote)
	assert.False(t, result.OK)
	assert.Equal(t, "volume", result.Field)
}

func TestValidateSkipsZeroFields(t *testing.T) {
	v := newTestValidator()

	local := &models.DailyPrice{Close: 100}
	remote := &models.DailyPrice{Open: 50, High: 60, Low: 40, Close: 100}

	assert.True(t, v.Validate(local, remote).OK, "zero local fields are not comparable")
}
