package metering

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMeterReading(t *testing.T) {
	orgID := uuid.New()
	meterID := uuid.New()

	t.Run("creates reading with date truncated to midnight UTC", func(t *testing.T) {
		at := time.Date(2024, 3, 15, 14, 22, 5, 0, time.UTC)
		reading, err := NewMeterReading(orgID, meterID, at, decimal.RequireFromString("150.5"), false, "monthly sheet")
		require.NoError(t, err)

		assert.Equal(t, meterID, reading.MeterID)
		assert.True(t, reading.ReadingDate.Equal(time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)))
		assert.True(t, reading.ReadingValue.Equal(decimal.RequireFromString("150.5")))
		assert.False(t, reading.IsEstimated)
		assert.Equal(t, "monthly sheet", reading.Notes)
	})

	t.Run("fails without meter", func(t *testing.T) {
		_, err := NewMeterReading(orgID, uuid.Nil, time.Now(), decimal.NewFromInt(10), false, "")
		assert.Error(t, err)
	})

	t.Run("fails with negative value", func(t *testing.T) {
		_, err := NewMeterReading(orgID, meterID, time.Now(), decimal.RequireFromString("-0.1"), false, "")
		assert.Error(t, err)
	})

	t.Run("fails with zero date", func(t *testing.T) {
		_, err := NewMeterReading(orgID, meterID, time.Time{}, decimal.NewFromInt(10), false, "")
		assert.Error(t, err)
	})

	t.Run("zero value is allowed", func(t *testing.T) {
		reading, err := NewMeterReading(orgID, meterID, time.Now(), decimal.Zero, true, "")
		require.NoError(t, err)
		assert.True(t, reading.IsEstimated)
	})
}

func TestTruncateToDate(t *testing.T) {
	loc := time.FixedZone("CET", 3600)
	at := time.Date(2024, 3, 15, 23, 59, 0, 0, loc)

	got := TruncateToDate(at)
	assert.Equal(t, time.UTC, got.Location())
	assert.True(t, got.Equal(time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)))
}
