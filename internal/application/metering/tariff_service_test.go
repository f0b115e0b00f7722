package metering

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/estateops/backend/internal/domain/metering"
	"github.com/estateops/backend/internal/domain/shared"
)

func TestTariffServiceAdd(t *testing.T) {
	orgID := uuid.New()

	t.Run("adds a tariff row", func(t *testing.T) {
		repo := new(MockTariffRepository)
		repo.On("Save", mock.Anything, mock.AnythingOfType("*metering.UtilityTariff")).Return(nil)

		service := NewTariffService(repo)
		resp, err := service.Add(context.Background(), orgID, AddTariffRequest{
			PropertyID:    uuid.New(),
			UtilityType:   "water",
			RatePerUnit:   decimal.RequireFromString("20"),
			FixedCharge:   decimal.RequireFromString("500"),
			Currency:      "EUR",
			EffectiveFrom: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		})
		require.NoError(t, err)

		assert.Equal(t, "water", resp.UtilityType)
		assert.True(t, resp.RatePerUnit.Equal(decimal.RequireFromString("20")))
		repo.AssertExpectations(t)
	})

	t.Run("rejects invalid rate", func(t *testing.T) {
		service := NewTariffService(new(MockTariffRepository))
		_, err := service.Add(context.Background(), orgID, AddTariffRequest{
			PropertyID:    uuid.New(),
			UtilityType:   "water",
			RatePerUnit:   decimal.RequireFromString("-1"),
			Currency:      "EUR",
			EffectiveFrom: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		})
		assert.Error(t, err)
	})
}

func TestTariffServiceResolveAt(t *testing.T) {
	orgID := uuid.New()
	propertyID := uuid.New()
	asOf := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)

	t.Run("returns the applicable row", func(t *testing.T) {
		older, err := metering.NewUtilityTariff(orgID, propertyID, metering.UtilityTypeWater,
			decimal.NewFromInt(10), decimal.Zero, "EUR", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), nil)
		require.NoError(t, err)
		newer, err := metering.NewUtilityTariff(orgID, propertyID, metering.UtilityTypeWater,
			decimal.NewFromInt(15), decimal.Zero, "EUR", time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), nil)
		require.NoError(t, err)

		repo := new(MockTariffRepository)
		repo.On("FindCandidates", mock.Anything, orgID, propertyID, metering.UtilityTypeWater, mock.AnythingOfType("time.Time")).
			Return([]metering.UtilityTariff{*older, *newer}, nil)

		service := NewTariffService(repo)
		resp, err := service.ResolveAt(context.Background(), orgID, ResolveTariffQuery{
			PropertyID:  propertyID,
			UtilityType: "water",
			AsOf:        asOf,
		})
		require.NoError(t, err)
		assert.True(t, resp.RatePerUnit.Equal(decimal.NewFromInt(15)))
	})

	t.Run("no covering row yields not found", func(t *testing.T) {
		repo := new(MockTariffRepository)
		repo.On("FindCandidates", mock.Anything, orgID, propertyID, metering.UtilityTypeWater, mock.AnythingOfType("time.Time")).
			Return([]metering.UtilityTariff{}, nil)

		service := NewTariffService(repo)
		_, err := service.ResolveAt(context.Background(), orgID, ResolveTariffQuery{
			PropertyID:  propertyID,
			UtilityType: "water",
			AsOf:        asOf,
		})
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}
