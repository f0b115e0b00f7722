package persistence

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/estateops/backend/internal/domain/metering"
	"github.com/estateops/backend/internal/domain/shared"
)

func setupMeterTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(&metering.Meter{}, &metering.MeterAssignment{})
	require.NoError(t, err)

	return db
}

func TestGormMeterRepository_SaveAndFind(t *testing.T) {
	db := setupMeterTestDB(t)
	repo := NewGormMeterRepository(db)
	ctx := context.Background()

	orgID := uuid.New()
	propertyID := uuid.New()
	unitID := uuid.New()

	meter, err := metering.NewExclusiveMeter(orgID, propertyID, unitID, metering.UtilityTypeWater)
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, meter))

	t.Run("loads assignments with the meter", func(t *testing.T) {
		found, err := repo.FindByIDForOrg(ctx, orgID, meter.ID)
		require.NoError(t, err)

		assert.Equal(t, meter.ID, found.ID)
		require.Len(t, found.Assignments, 1)
		assert.Equal(t, unitID, found.Assignments[0].UnitID)
	})

	t.Run("other org cannot see the meter", func(t *testing.T) {
		_, err := repo.FindByIDForOrg(ctx, uuid.New(), meter.ID)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("reallocation replaces assignments wholesale", func(t *testing.T) {
		loaded, err := repo.FindByIDForOrg(ctx, orgID, meter.ID)
		require.NoError(t, err)

		newUnit := uuid.New()
		require.NoError(t, loaded.ReplaceAssignments([]metering.UnitShare{
			{UnitID: newUnit, Ratio: decimal.NewFromInt(1)},
		}))
		require.NoError(t, repo.Save(ctx, loaded))

		found, err := repo.FindByIDForOrg(ctx, orgID, meter.ID)
		require.NoError(t, err)
		require.Len(t, found.Assignments, 1)
		assert.Equal(t, newUnit, found.Assignments[0].UnitID)

		var orphans int64
		require.NoError(t, db.Model(&metering.MeterAssignment{}).Where("unit_id = ?", unitID).Count(&orphans).Error)
		assert.Zero(t, orphans)
	})
}

func TestGormMeterRepository_FindCovering(t *testing.T) {
	db := setupMeterTestDB(t)
	repo := NewGormMeterRepository(db)
	ctx := context.Background()

	orgID := uuid.New()
	propertyID := uuid.New()

	active, err := metering.NewExclusiveMeter(orgID, propertyID, uuid.New(), metering.UtilityTypeWater)
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, active))

	faulty, err := metering.NewExclusiveMeter(orgID, propertyID, uuid.New(), metering.UtilityTypeWater)
	require.NoError(t, err)
	require.NoError(t, faulty.MarkFaulty())
	require.NoError(t, repo.Save(ctx, faulty))

	inactive, err := metering.NewExclusiveMeter(orgID, propertyID, uuid.New(), metering.UtilityTypeWater)
	require.NoError(t, err)
	require.NoError(t, inactive.Deactivate())
	require.NoError(t, repo.Save(ctx, inactive))

	otherUtility, err := metering.NewExclusiveMeter(orgID, propertyID, uuid.New(), metering.UtilityTypeElectricity)
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, otherUtility))

	covering, err := repo.FindCovering(ctx, orgID, propertyID, metering.UtilityTypeWater)
	require.NoError(t, err)

	ids := make([]uuid.UUID, 0, len(covering))
	for _, m := range covering {
		ids = append(ids, m.ID)
	}
	assert.ElementsMatch(t, []uuid.UUID{active.ID, faulty.ID}, ids)
}

func TestGormMeterRepository_FindBillable(t *testing.T) {
	db := setupMeterTestDB(t)
	repo := NewGormMeterRepository(db)
	ctx := context.Background()

	orgID := uuid.New()
	propertyA := uuid.New()
	propertyB := uuid.New()

	waterA, err := metering.NewExclusiveMeter(orgID, propertyA, uuid.New(), metering.UtilityTypeWater)
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, waterA))

	elecB, err := metering.NewExclusiveMeter(orgID, propertyB, uuid.New(), metering.UtilityTypeElectricity)
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, elecB))

	faulty, err := metering.NewExclusiveMeter(orgID, propertyA, uuid.New(), metering.UtilityTypeElectricity)
	require.NoError(t, err)
	require.NoError(t, faulty.MarkFaulty())
	require.NoError(t, repo.Save(ctx, faulty))

	t.Run("no filters returns every active meter", func(t *testing.T) {
		meters, err := repo.FindBillable(ctx, orgID, nil, nil)
		require.NoError(t, err)
		assert.Len(t, meters, 2)
	})

	t.Run("property filter", func(t *testing.T) {
		meters, err := repo.FindBillable(ctx, orgID, &propertyA, nil)
		require.NoError(t, err)
		require.Len(t, meters, 1)
		assert.Equal(t, waterA.ID, meters[0].ID)
	})

	t.Run("utility type filter", func(t *testing.T) {
		ut := metering.UtilityTypeElectricity
		meters, err := repo.FindBillable(ctx, orgID, nil, &ut)
		require.NoError(t, err)
		require.Len(t, meters, 1)
		assert.Equal(t, elecB.ID, meters[0].ID)
	})

	t.Run("faulty meters are not billable", func(t *testing.T) {
		meters, err := repo.FindBillable(ctx, orgID, &propertyA, nil)
		require.NoError(t, err)
		for _, m := range meters {
			assert.NotEqual(t, faulty.ID, m.ID)
		}
	})
}

func TestGormMeterRepository_FindAllForOrg(t *testing.T) {
	db := setupMeterTestDB(t)
	repo := NewGormMeterRepository(db)
	ctx := context.Background()

	orgID := uuid.New()
	propertyID := uuid.New()

	for i := 0; i < 3; i++ {
		meter, err := metering.NewExclusiveMeter(orgID, propertyID, uuid.New(), metering.UtilityTypeWater)
		require.NoError(t, err)
		require.NoError(t, repo.Save(ctx, meter))
	}

	f := shared.DefaultFilter()
	f.Filters["utility_type"] = "water"

	meters, err := repo.FindAllForOrg(ctx, orgID, f)
	require.NoError(t, err)
	assert.Len(t, meters, 3)

	count, err := repo.CountForOrg(ctx, orgID, f)
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)
}
