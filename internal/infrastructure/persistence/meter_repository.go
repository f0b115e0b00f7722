package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/estateops/backend/internal/domain/metering"
	"github.com/estateops/backend/internal/domain/shared"
)

// GormMeterRepository implements MeterRepository using GORM
type GormMeterRepository struct {
	db *gorm.DB
}

// NewGormMeterRepository creates a new GormMeterRepository
func NewGormMeterRepository(db *gorm.DB) *GormMeterRepository {
	return &GormMeterRepository{db: db}
}

var _ metering.MeterRepository = (*GormMeterRepository)(nil)

// FindByIDForOrg finds a meter by ID within an organization
func (r *GormMeterRepository) FindByIDForOrg(ctx context.Context, orgID, id uuid.UUID) (*metering.Meter, error) {
	var meter metering.Meter
	if err := r.db.WithContext(ctx).
		Preload("Assignments").
		Where("org_id = ? AND id = ?", orgID, id).
		First(&meter).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &meter, nil
}

// FindAllForOrg finds all meters for an organization matching the filter
func (r *GormMeterRepository) FindAllForOrg(ctx context.Context, orgID uuid.UUID, filter shared.Filter) ([]metering.Meter, error) {
	var meters []metering.Meter
	query := r.applyFilter(r.db.WithContext(ctx).Model(&metering.Meter{}).Where("org_id = ?", orgID), filter)

	if err := query.Preload("Assignments").Find(&meters).Error; err != nil {
		return nil, err
	}
	return meters, nil
}

// CountForOrg counts meters for an organization matching the filter
func (r *GormMeterRepository) CountForOrg(ctx context.Context, orgID uuid.UUID, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilterWithoutPagination(r.db.WithContext(ctx).Model(&metering.Meter{}).Where("org_id = ?", orgID), filter)

	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// FindCovering finds the meters of a utility type that currently hold unit
// allocation within a property. Inactive meters have released theirs.
func (r *GormMeterRepository) FindCovering(ctx context.Context, orgID, propertyID uuid.UUID, utilityType metering.UtilityType) ([]metering.Meter, error) {
	var meters []metering.Meter
	if err := r.db.WithContext(ctx).
		Preload("Assignments").
		Where("org_id = ? AND property_id = ? AND utility_type = ? AND status <> ?",
			orgID, propertyID, utilityType, metering.MeterStatusInactive).
		Find(&meters).Error; err != nil {
		return nil, err
	}
	return meters, nil
}

// FindBillable finds active meters matching the optional property and utility
// type filters
func (r *GormMeterRepository) FindBillable(ctx context.Context, orgID uuid.UUID, propertyID *uuid.UUID, utilityType *metering.UtilityType) ([]metering.Meter, error) {
	query := r.db.WithContext(ctx).
		Preload("Assignments").
		Where("org_id = ? AND status = ?", orgID, metering.MeterStatusActive)
	if propertyID != nil {
		query = query.Where("property_id = ?", *propertyID)
	}
	if utilityType != nil {
		query = query.Where("utility_type = ?", *utilityType)
	}

	var meters []metering.Meter
	if err := query.Order("created_at ASC").Find(&meters).Error; err != nil {
		return nil, err
	}
	return meters, nil
}

// Save creates or updates a meter together with its assignments. Assignments
// are replaced wholesale so a reallocation cannot leave stale rows behind.
func (r *GormMeterRepository) Save(ctx context.Context, meter *metering.Meter) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("meter_id = ?", meter.ID).Delete(&metering.MeterAssignment{}).Error; err != nil {
			return err
		}
		return tx.Save(meter).Error
	})
}

func (r *GormMeterRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	if filter.OrderBy != "" {
		orderDir := "ASC"
		if strings.ToLower(filter.OrderDir) == "desc" {
			orderDir = "DESC"
		}
		query = query.Order(filter.OrderBy + " " + orderDir)
	} else {
		query = query.Order("created_at DESC")
	}

	return query
}

func (r *GormMeterRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	for key, value := range filter.Filters {
		switch key {
		case "property_id":
			query = query.Where("property_id = ?", value)
		case "utility_type":
			query = query.Where("utility_type = ?", value)
		case "status":
			query = query.Where("status = ?", value)
		}
	}
	return query
}
