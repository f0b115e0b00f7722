package metering

import (
	"context"
	"time"

	"github.com/estateops/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// ReadingRepository defines the interface for meter reading persistence
type ReadingRepository interface {
	// UpsertByDate stores a reading, replacing any existing reading for the
	// same meter and date (corrected reading sheets are re-submitted whole).
	UpsertByDate(ctx context.Context, reading *MeterReading) error

	// LatestOnOrBefore returns the most recent reading with a date at or
	// before the given date, or shared.ErrNotFound when the meter has none.
	// Callers treat the absence as a first-class outcome, not a failure.
	LatestOnOrBefore(ctx context.Context, meterID uuid.UUID, date time.Time) (*MeterReading, error)

	// FindByMeter returns the reading series for a meter, newest first
	FindByMeter(ctx context.Context, orgID, meterID uuid.UUID, filter shared.Filter) ([]MeterReading, error)

	// CountByMeter counts the stored readings for a meter
	CountByMeter(ctx context.Context, orgID, meterID uuid.UUID) (int64, error)
}
