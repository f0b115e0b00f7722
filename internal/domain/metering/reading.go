package metering

import (
	"time"

	"github.com/estateops/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MeterReading is a point-in-time snapshot of a meter's cumulative register.
// Readings are addressed by (meter, date): re-submitting the same date
// replaces the stored value (a corrected reading sheet), everything else is
// append-only. Monotonicity is not enforced at write time - an estimated
// reading may legitimately correct downward. The billing engine treats a
// negative delta between two readings as an anomaly, not the store.
type MeterReading struct {
	shared.BaseEntity
	OrgID        uuid.UUID       `gorm:"type:uuid;not null;index"`
	MeterID      uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_readings_meter_date,priority:1"`
	ReadingDate  time.Time       `gorm:"type:date;not null;uniqueIndex:idx_readings_meter_date,priority:2"`
	ReadingValue decimal.Decimal `gorm:"type:numeric(14,3);not null"`
	IsEstimated  bool            `gorm:"not null;default:false"`
	Notes        string          `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (MeterReading) TableName() string {
	return "meter_readings"
}

// NewMeterReading creates a new meter reading with validation
func NewMeterReading(orgID, meterID uuid.UUID, readingDate time.Time, value decimal.Decimal, isEstimated bool, notes string) (*MeterReading, error) {
	if meterID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_METER", "Reading must reference a meter")
	}
	if value.IsNegative() {
		return nil, shared.NewDomainError("INVALID_READING_VALUE", "Reading value cannot be negative")
	}
	if readingDate.IsZero() {
		return nil, shared.NewDomainError("INVALID_READING_DATE", "Reading date is required")
	}

	return &MeterReading{
		BaseEntity:   shared.NewBaseEntity(),
		OrgID:        orgID,
		MeterID:      meterID,
		ReadingDate:  TruncateToDate(readingDate),
		ReadingValue: value,
		IsEstimated:  isEstimated,
		Notes:        notes,
	}, nil
}

// TruncateToDate drops the time-of-day portion, keeping a UTC calendar date.
// All metering dates (readings, tariff windows, billing periods) compare at
// day granularity.
func TruncateToDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
