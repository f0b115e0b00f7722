package metering

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewExclusiveMeter(t *testing.T) {
	orgID := uuid.New()
	propertyID := uuid.New()
	unitID := uuid.New()

	t.Run("creates active meter with single full-ratio assignment", func(t *testing.T) {
		meter, err := NewExclusiveMeter(orgID, propertyID, unitID, UtilityTypeWater)
		require.NoError(t, err)
		require.NotNil(t, meter)

		assert.NotEqual(t, uuid.Nil, meter.ID)
		assert.Equal(t, orgID, meter.OrgID)
		assert.Equal(t, propertyID, meter.PropertyID)
		assert.Equal(t, UtilityTypeWater, meter.UtilityType)
		assert.False(t, meter.IsShared)
		assert.Equal(t, MeterStatusActive, meter.Status)

		require.Len(t, meter.Assignments, 1)
		assert.Equal(t, unitID, meter.Assignments[0].UnitID)
		assert.True(t, meter.Assignments[0].AllocationRatio.Equal(decimal.NewFromInt(1)))

		events := meter.GetDomainEvents()
		require.Len(t, events, 1)
		assert.Equal(t, EventTypeMeterRegistered, events[0].EventType())
	})

	t.Run("fails with invalid utility type", func(t *testing.T) {
		meter, err := NewExclusiveMeter(orgID, propertyID, unitID, UtilityType("gas"))
		assert.Nil(t, meter)
		assert.Error(t, err)
	})

	t.Run("fails without owning unit", func(t *testing.T) {
		meter, err := NewExclusiveMeter(orgID, propertyID, uuid.Nil, UtilityTypeWater)
		assert.Nil(t, meter)
		assert.Error(t, err)
	})
}

func TestNewSharedMeter(t *testing.T) {
	orgID := uuid.New()
	propertyID := uuid.New()

	shares := []UnitShare{
		{UnitID: uuid.New(), Ratio: decimal.RequireFromString("0.6")},
		{UnitID: uuid.New(), Ratio: decimal.RequireFromString("0.4")},
	}

	t.Run("creates shared meter with assignments", func(t *testing.T) {
		meter, err := NewSharedMeter(orgID, propertyID, UtilityTypeElectricity, shares)
		require.NoError(t, err)

		assert.True(t, meter.IsShared)
		require.Len(t, meter.Assignments, 2)
		assert.ElementsMatch(t, []uuid.UUID{shares[0].UnitID, shares[1].UnitID}, meter.AllocatedUnits())
	})

	t.Run("fails with no assignments", func(t *testing.T) {
		meter, err := NewSharedMeter(orgID, propertyID, UtilityTypeElectricity, nil)
		assert.Nil(t, meter)
		assert.Error(t, err)
	})

	t.Run("fails with duplicate unit", func(t *testing.T) {
		unitID := uuid.New()
		dup := []UnitShare{
			{UnitID: unitID, Ratio: decimal.RequireFromString("0.5")},
			{UnitID: unitID, Ratio: decimal.RequireFromString("0.5")},
		}
		meter, err := NewSharedMeter(orgID, propertyID, UtilityTypeElectricity, dup)
		assert.Nil(t, meter)
		assert.Error(t, err)
	})

	t.Run("fails with ratio above 1", func(t *testing.T) {
		bad := []UnitShare{{UnitID: uuid.New(), Ratio: decimal.RequireFromString("1.5")}}
		meter, err := NewSharedMeter(orgID, propertyID, UtilityTypeElectricity, bad)
		assert.Nil(t, meter)
		assert.Error(t, err)
	})

	t.Run("accepts ratios that do not sum to 1", func(t *testing.T) {
		// The engine falls back to an equal split at billing time; the
		// registry does not reject the allocation.
		uneven := []UnitShare{
			{UnitID: uuid.New(), Ratio: decimal.RequireFromString("0.3")},
			{UnitID: uuid.New(), Ratio: decimal.RequireFromString("0.3")},
		}
		meter, err := NewSharedMeter(orgID, propertyID, UtilityTypeWater, uneven)
		require.NoError(t, err)
		assert.True(t, meter.IsShared)
	})
}

func TestMeterLifecycle(t *testing.T) {
	newMeter := func(t *testing.T) *Meter {
		meter, err := NewExclusiveMeter(uuid.New(), uuid.New(), uuid.New(), UtilityTypeWater)
		require.NoError(t, err)
		meter.ClearDomainEvents()
		return meter
	}

	t.Run("deactivate releases allocation", func(t *testing.T) {
		meter := newMeter(t)
		require.NoError(t, meter.Deactivate())

		assert.Equal(t, MeterStatusInactive, meter.Status)
		assert.False(t, meter.IsActive())
		assert.False(t, meter.CoversUnits())

		events := meter.GetDomainEvents()
		require.Len(t, events, 1)
		assert.Equal(t, EventTypeMeterDeactivated, events[0].EventType())
	})

	t.Run("deactivate twice fails", func(t *testing.T) {
		meter := newMeter(t)
		require.NoError(t, meter.Deactivate())
		assert.Error(t, meter.Deactivate())
	})

	t.Run("faulty meter keeps allocation and can be restored", func(t *testing.T) {
		meter := newMeter(t)
		require.NoError(t, meter.MarkFaulty())

		assert.Equal(t, MeterStatusFaulty, meter.Status)
		assert.False(t, meter.IsActive())
		assert.True(t, meter.CoversUnits())

		require.NoError(t, meter.Restore())
		assert.Equal(t, MeterStatusActive, meter.Status)
	})

	t.Run("cannot mark inactive meter faulty", func(t *testing.T) {
		meter := newMeter(t)
		require.NoError(t, meter.Deactivate())
		assert.Error(t, meter.MarkFaulty())
	})

	t.Run("cannot restore active meter", func(t *testing.T) {
		meter := newMeter(t)
		assert.Error(t, meter.Restore())
	})
}

func TestMeterReplaceAssignments(t *testing.T) {
	orgID := uuid.New()
	propertyID := uuid.New()

	t.Run("shared meter reallocation", func(t *testing.T) {
		meter, err := NewSharedMeter(orgID, propertyID, UtilityTypeWater, []UnitShare{
			{UnitID: uuid.New(), Ratio: decimal.RequireFromString("1")},
		})
		require.NoError(t, err)

		next := []UnitShare{
			{UnitID: uuid.New(), Ratio: decimal.RequireFromString("0.5")},
			{UnitID: uuid.New(), Ratio: decimal.RequireFromString("0.5")},
		}
		require.NoError(t, meter.ReplaceAssignments(next))
		assert.Len(t, meter.Assignments, 2)
	})

	t.Run("exclusive meter stays single-unit", func(t *testing.T) {
		meter, err := NewExclusiveMeter(orgID, propertyID, uuid.New(), UtilityTypeWater)
		require.NoError(t, err)

		err = meter.ReplaceAssignments([]UnitShare{
			{UnitID: uuid.New(), Ratio: decimal.RequireFromString("0.5")},
			{UnitID: uuid.New(), Ratio: decimal.RequireFromString("0.5")},
		})
		assert.Error(t, err)
	})

	t.Run("inactive meter cannot be reallocated", func(t *testing.T) {
		meter, err := NewExclusiveMeter(orgID, propertyID, uuid.New(), UtilityTypeWater)
		require.NoError(t, err)
		require.NoError(t, meter.Deactivate())

		err = meter.ReplaceAssignments([]UnitShare{{UnitID: uuid.New(), Ratio: decimal.NewFromInt(1)}})
		assert.Error(t, err)
	})
}

func TestMeterSetDetails(t *testing.T) {
	meter, err := NewExclusiveMeter(uuid.New(), uuid.New(), uuid.New(), UtilityTypeElectricity)
	require.NoError(t, err)

	require.NoError(t, meter.SetDetails("EM-1042", "Hallway meter", "Basement"))
	assert.Equal(t, "EM-1042", meter.MeterNumber)
	assert.Equal(t, "Hallway meter", meter.Name)
	assert.Equal(t, "Basement", meter.Location)

	installed := time.Date(2023, 5, 1, 0, 0, 0, 0, time.UTC)
	meter.SetInstalledOn(installed)
	require.NotNil(t, meter.InstalledOn)
	assert.True(t, meter.InstalledOn.Equal(installed))
}
