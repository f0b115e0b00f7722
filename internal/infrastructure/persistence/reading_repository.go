package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/estateops/backend/internal/domain/metering"
	"github.com/estateops/backend/internal/domain/shared"
)

// GormReadingRepository implements ReadingRepository using GORM
type GormReadingRepository struct {
	db *gorm.DB
}

// NewGormReadingRepository creates a new GormReadingRepository
func NewGormReadingRepository(db *gorm.DB) *GormReadingRepository {
	return &GormReadingRepository{db: db}
}

var _ metering.ReadingRepository = (*GormReadingRepository)(nil)

// UpsertByDate stores a reading, replacing any existing reading for the same
// meter and date
func (r *GormReadingRepository) UpsertByDate(ctx context.Context, reading *metering.MeterReading) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "meter_id"}, {Name: "reading_date"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"reading_value",
			"is_estimated",
			"notes",
			"updated_at",
		}),
	}).Create(reading).Error
}

// LatestOnOrBefore returns the most recent reading with a date at or before
// the given date
func (r *GormReadingRepository) LatestOnOrBefore(ctx context.Context, meterID uuid.UUID, date time.Time) (*metering.MeterReading, error) {
	var reading metering.MeterReading
	if err := r.db.WithContext(ctx).
		Where("meter_id = ? AND reading_date <= ?", meterID, metering.TruncateToDate(date)).
		Order("reading_date DESC").
		First(&reading).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &reading, nil
}

// FindByMeter returns the reading series for a meter, newest first
func (r *GormReadingRepository) FindByMeter(ctx context.Context, orgID, meterID uuid.UUID, filter shared.Filter) ([]metering.MeterReading, error) {
	query := r.db.WithContext(ctx).
		Where("org_id = ? AND meter_id = ?", orgID, meterID)

	if from, ok := filter.Filters["from"]; ok {
		query = query.Where("reading_date >= ?", from)
	}
	if to, ok := filter.Filters["to"]; ok {
		query = query.Where("reading_date <= ?", to)
	}
	if filter.Page > 0 && filter.PageSize > 0 {
		query = query.Offset((filter.Page - 1) * filter.PageSize).Limit(filter.PageSize)
	}

	var readings []metering.MeterReading
	if err := query.Order("reading_date DESC").Find(&readings).Error; err != nil {
		return nil, err
	}
	return readings, nil
}

// CountByMeter counts the stored readings for a meter
func (r *GormReadingRepository) CountByMeter(ctx context.Context, orgID, meterID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&metering.MeterReading{}).
		Where("org_id = ? AND meter_id = ?", orgID, meterID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
