package metering

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUtilityType(t *testing.T) {
	t.Run("valid types", func(t *testing.T) {
		assert.True(t, UtilityTypeWater.Valid())
		assert.True(t, UtilityTypeElectricity.Valid())
		assert.False(t, UtilityType("gas").Valid())
		assert.False(t, UtilityType("").Valid())
	})

	t.Run("units of measure", func(t *testing.T) {
		assert.Equal(t, "m3", UtilityTypeWater.Unit())
		assert.Equal(t, "kWh", UtilityTypeElectricity.Unit())
	})

	t.Run("parse", func(t *testing.T) {
		ut, err := ParseUtilityType("water")
		require.NoError(t, err)
		assert.Equal(t, UtilityTypeWater, ut)

		_, err = ParseUtilityType("steam")
		assert.Error(t, err)
	})
}

func TestAllocationConflictError(t *testing.T) {
	err := NewAllocationConflictError([]UnitConflict{
		{UtilityType: UtilityTypeWater},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 unit(s) already covered")
}
