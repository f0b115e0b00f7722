package persistence

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/estateops/backend/internal/domain/metering"
	"github.com/estateops/backend/internal/domain/shared"
)

// GormTariffRepository implements TariffRepository using GORM
type GormTariffRepository struct {
	db *gorm.DB
}

// NewGormTariffRepository creates a new GormTariffRepository
func NewGormTariffRepository(db *gorm.DB) *GormTariffRepository {
	return &GormTariffRepository{db: db}
}

var _ metering.TariffRepository = (*GormTariffRepository)(nil)

// Save creates or updates a tariff row
func (r *GormTariffRepository) Save(ctx context.Context, tariff *metering.UtilityTariff) error {
	return r.db.WithContext(ctx).Save(tariff).Error
}

// FindAllForOrg finds all tariffs for an organization matching the filter
func (r *GormTariffRepository) FindAllForOrg(ctx context.Context, orgID uuid.UUID, filter shared.Filter) ([]metering.UtilityTariff, error) {
	var tariffs []metering.UtilityTariff
	query := r.applyFilter(r.db.WithContext(ctx).Model(&metering.UtilityTariff{}).Where("org_id = ?", orgID), filter)

	if err := query.Find(&tariffs).Error; err != nil {
		return nil, err
	}
	return tariffs, nil
}

// CountForOrg counts tariffs for an organization matching the filter
func (r *GormTariffRepository) CountForOrg(ctx context.Context, orgID uuid.UUID, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilterWithoutPagination(r.db.WithContext(ctx).Model(&metering.UtilityTariff{}).Where("org_id = ?", orgID), filter)

	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// FindCandidates returns all tariff rows whose windows cover the as-of date
func (r *GormTariffRepository) FindCandidates(ctx context.Context, orgID, propertyID uuid.UUID, utilityType metering.UtilityType, asOf time.Time) ([]metering.UtilityTariff, error) {
	day := metering.TruncateToDate(asOf)

	var tariffs []metering.UtilityTariff
	if err := r.db.WithContext(ctx).
		Where("org_id = ? AND property_id = ? AND utility_type = ?", orgID, propertyID, utilityType).
		Where("effective_from <= ?", day).
		Where("effective_to IS NULL OR effective_to >= ?", day).
		Find(&tariffs).Error; err != nil {
		return nil, err
	}
	return tariffs, nil
}

func (r *GormTariffRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	if filter.Page > 0 && filter.PageSize > 0 {
		query = query.Offset((filter.Page - 1) * filter.PageSize).Limit(filter.PageSize)
	}

	if filter.OrderBy != "" {
		orderDir := "ASC"
		if strings.ToLower(filter.OrderDir) == "desc" {
			orderDir = "DESC"
		}
		query = query.Order(filter.OrderBy + " " + orderDir)
	} else {
		query = query.Order("effective_from DESC")
	}

	return query
}

func (r *GormTariffRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	for key, value := range filter.Filters {
		switch key {
		case "property_id":
			query = query.Where("property_id = ?", value)
		case "utility_type":
			query = query.Where("utility_type = ?", value)
		}
	}
	return query
}
