package persistence

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/estateops/backend/internal/domain/billing"
	"github.com/estateops/backend/internal/domain/metering"
	"github.com/estateops/backend/internal/domain/shared"
)

// GormBillRepository implements BillRepository using GORM
type GormBillRepository struct {
	db *gorm.DB
}

// NewGormBillRepository creates a new GormBillRepository
func NewGormBillRepository(db *gorm.DB) *GormBillRepository {
	return &GormBillRepository{db: db}
}

var _ billing.BillRepository = (*GormBillRepository)(nil)

// FindByPeriodKey finds the bill with the given idempotency key
func (r *GormBillRepository) FindByPeriodKey(ctx context.Context, orgID, unitID uuid.UUID, utilityType metering.UtilityType, periodStart, periodEnd time.Time) (*billing.UtilityBill, error) {
	var bill billing.UtilityBill
	if err := r.db.WithContext(ctx).
		Where("org_id = ? AND unit_id = ? AND utility_type = ? AND period_start = ? AND period_end = ?",
			orgID, unitID, utilityType, metering.TruncateToDate(periodStart), metering.TruncateToDate(periodEnd)).
		First(&bill).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &bill, nil
}

// Upsert creates the bill or overwrites the computed figures of the existing
// bill with the same period key. The unique index serializes concurrent runs
// writing the same key.
func (r *GormBillRepository) Upsert(ctx context.Context, bill *billing.UtilityBill) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "unit_id"},
			{Name: "utility_type"},
			{Name: "period_start"},
			{Name: "period_end"},
		},
		DoUpdates: clause.AssignmentColumns([]string{
			"consumption",
			"rate_applied",
			"fixed_charge_applied",
			"amount",
			"currency",
			"source_meter_id",
			"version",
			"updated_at",
		}),
	}).Create(bill).Error
}

// FindAllForOrg finds bills for an organization matching the filter
func (r *GormBillRepository) FindAllForOrg(ctx context.Context, orgID uuid.UUID, filter shared.Filter) ([]billing.UtilityBill, error) {
	var bills []billing.UtilityBill
	query := r.applyFilter(r.db.WithContext(ctx).Model(&billing.UtilityBill{}).Where("org_id = ?", orgID), filter)

	if err := query.Find(&bills).Error; err != nil {
		return nil, err
	}
	return bills, nil
}

// CountForOrg counts bills for an organization matching the filter
func (r *GormBillRepository) CountForOrg(ctx context.Context, orgID uuid.UUID, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilterWithoutPagination(r.db.WithContext(ctx).Model(&billing.UtilityBill{}).Where("org_id = ?", orgID), filter)

	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Save persists changes to an existing bill
func (r *GormBillRepository) Save(ctx context.Context, bill *billing.UtilityBill) error {
	return r.db.WithContext(ctx).Save(bill).Error
}

func (r *GormBillRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
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
		query = query.Order("period_start DESC")
	}

	return query
}

func (r *GormBillRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	for key, value := range filter.Filters {
		switch key {
		case "unit_id":
			query = query.Where("unit_id = ?", value)
		case "utility_type":
			query = query.Where("utility_type = ?", value)
		case "period_start":
			query = query.Where("period_start >= ?", value)
		case "period_end":
			query = query.Where("period_end <= ?", value)
		}
	}
	return query
}
