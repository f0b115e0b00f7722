package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/estateops/backend/internal/domain/billing"
	"github.com/estateops/backend/internal/domain/metering"
	"github.com/estateops/backend/internal/domain/shared"
)

func setupBillTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(&billing.UtilityBill{})
	require.NoError(t, err)

	return db
}

func mustBill(t *testing.T, orgID, unitID uuid.UUID, periodStart, periodEnd time.Time, amount string) *billing.UtilityBill {
	bill, err := billing.NewUtilityBill(orgID, unitID, metering.UtilityTypeWater, periodStart, periodEnd,
		billing.UnitCharge{
			UnitID:      unitID,
			Consumption: decimal.NewFromInt(50),
			Rate:        decimal.NewFromInt(20),
			Amount:      decimal.RequireFromString(amount),
		}, "EUR", uuid.New())
	require.NoError(t, err)
	return bill
}

func TestGormBillRepository_Upsert(t *testing.T) {
	db := setupBillTestDB(t)
	repo := NewGormBillRepository(db)
	ctx := context.Background()

	orgID := uuid.New()
	unitID := uuid.New()
	periodStart := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	periodEnd := time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC)

	t.Run("creates the bill", func(t *testing.T) {
		require.NoError(t, repo.Upsert(ctx, mustBill(t, orgID, unitID, periodStart, periodEnd, "1500")))

		found, err := repo.FindByPeriodKey(ctx, orgID, unitID, metering.UtilityTypeWater, periodStart, periodEnd)
		require.NoError(t, err)
		assert.True(t, found.Amount.Equal(decimal.RequireFromString("1500")))
	})

	t.Run("same period key overwrites instead of duplicating", func(t *testing.T) {
		require.NoError(t, repo.Upsert(ctx, mustBill(t, orgID, unitID, periodStart, periodEnd, "1700")))

		var count int64
		require.NoError(t, db.Model(&billing.UtilityBill{}).Where("unit_id = ?", unitID).Count(&count).Error)
		assert.Equal(t, int64(1), count)

		found, err := repo.FindByPeriodKey(ctx, orgID, unitID, metering.UtilityTypeWater, periodStart, periodEnd)
		require.NoError(t, err)
		assert.True(t, found.Amount.Equal(decimal.RequireFromString("1700")))
	})

	t.Run("adjacent period is a separate bill", func(t *testing.T) {
		nextStart := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)
		nextEnd := time.Date(2024, 4, 30, 0, 0, 0, 0, time.UTC)
		require.NoError(t, repo.Upsert(ctx, mustBill(t, orgID, unitID, nextStart, nextEnd, "900")))

		var count int64
		require.NoError(t, db.Model(&billing.UtilityBill{}).Where("unit_id = ?", unitID).Count(&count).Error)
		assert.Equal(t, int64(2), count)
	})
}

func TestGormBillRepository_FindByPeriodKey(t *testing.T) {
	db := setupBillTestDB(t)
	repo := NewGormBillRepository(db)
	ctx := context.Background()

	orgID := uuid.New()

	t.Run("missing key yields not found", func(t *testing.T) {
		_, err := repo.FindByPeriodKey(ctx, orgID, uuid.New(), metering.UtilityTypeWater,
			time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC))
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestGormBillRepository_FindAllForOrg(t *testing.T) {
	db := setupBillTestDB(t)
	repo := NewGormBillRepository(db)
	ctx := context.Background()

	orgID := uuid.New()
	unitA := uuid.New()
	unitB := uuid.New()
	periodStart := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	periodEnd := time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC)

	require.NoError(t, repo.Upsert(ctx, mustBill(t, orgID, unitA, periodStart, periodEnd, "1500")))
	require.NoError(t, repo.Upsert(ctx, mustBill(t, orgID, unitB, periodStart, periodEnd, "900")))

	t.Run("unit filter", func(t *testing.T) {
		f := shared.DefaultFilter()
		f.Filters["unit_id"] = unitA

		bills, err := repo.FindAllForOrg(ctx, orgID, f)
		require.NoError(t, err)
		require.Len(t, bills, 1)
		assert.Equal(t, unitA, bills[0].UnitID)
	})

	t.Run("org scoping", func(t *testing.T) {
		bills, err := repo.FindAllForOrg(ctx, uuid.New(), shared.DefaultFilter())
		require.NoError(t, err)
		assert.Empty(t, bills)
	})
}
