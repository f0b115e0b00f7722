package metering

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/estateops/backend/internal/domain/metering"
	"github.com/estateops/backend/internal/domain/shared"
)

// MockMeterRepository is a mock implementation of metering.MeterRepository
type MockMeterRepository struct {
	mock.Mock
}

func (m *MockMeterRepository) FindByIDForOrg(ctx context.Context, orgID, id uuid.UUID) (*metering.Meter, error) {
	args := m.Called(ctx, orgID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*metering.Meter), args.Error(1)
}

func (m *MockMeterRepository) FindAllForOrg(ctx context.Context, orgID uuid.UUID, filter shared.Filter) ([]metering.Meter, error) {
	args := m.Called(ctx, orgID, filter)
	return args.Get(0).([]metering.Meter), args.Error(1)
}

func (m *MockMeterRepository) CountForOrg(ctx context.Context, orgID uuid.UUID, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, orgID, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockMeterRepository) FindCovering(ctx context.Context, orgID, propertyID uuid.UUID, utilityType metering.UtilityType) ([]metering.Meter, error) {
	args := m.Called(ctx, orgID, propertyID, utilityType)
	return args.Get(0).([]metering.Meter), args.Error(1)
}

func (m *MockMeterRepository) FindBillable(ctx context.Context, orgID uuid.UUID, propertyID *uuid.UUID, utilityType *metering.UtilityType) ([]metering.Meter, error) {
	args := m.Called(ctx, orgID, propertyID, utilityType)
	return args.Get(0).([]metering.Meter), args.Error(1)
}

func (m *MockMeterRepository) Save(ctx context.Context, meter *metering.Meter) error {
	args := m.Called(ctx, meter)
	return args.Error(0)
}

// MockReadingRepository is a mock implementation of metering.ReadingRepository
type MockReadingRepository struct {
	mock.Mock
}

func (m *MockReadingRepository) UpsertByDate(ctx context.Context, reading *metering.MeterReading) error {
	args := m.Called(ctx, reading)
	return args.Error(0)
}

func (m *MockReadingRepository) LatestOnOrBefore(ctx context.Context, meterID uuid.UUID, date time.Time) (*metering.MeterReading, error) {
	args := m.Called(ctx, meterID, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*metering.MeterReading), args.Error(1)
}

func (m *MockReadingRepository) FindByMeter(ctx context.Context, orgID, meterID uuid.UUID, filter shared.Filter) ([]metering.MeterReading, error) {
	args := m.Called(ctx, orgID, meterID, filter)
	return args.Get(0).([]metering.MeterReading), args.Error(1)
}

func (m *MockReadingRepository) CountByMeter(ctx context.Context, orgID, meterID uuid.UUID) (int64, error) {
	args := m.Called(ctx, orgID, meterID)
	return args.Get(0).(int64), args.Error(1)
}

// MockTariffRepository is a mock implementation of metering.TariffRepository
type MockTariffRepository struct {
	mock.Mock
}

func (m *MockTariffRepository) Save(ctx context.Context, tariff *metering.UtilityTariff) error {
	args := m.Called(ctx, tariff)
	return args.Error(0)
}

func (m *MockTariffRepository) FindAllForOrg(ctx context.Context, orgID uuid.UUID, filter shared.Filter) ([]metering.UtilityTariff, error) {
	args := m.Called(ctx, orgID, filter)
	return args.Get(0).([]metering.UtilityTariff), args.Error(1)
}

func (m *MockTariffRepository) CountForOrg(ctx context.Context, orgID uuid.UUID, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, orgID, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockTariffRepository) FindCandidates(ctx context.Context, orgID, propertyID uuid.UUID, utilityType metering.UtilityType, asOf time.Time) ([]metering.UtilityTariff, error) {
	args := m.Called(ctx, orgID, propertyID, utilityType, asOf)
	return args.Get(0).([]metering.UtilityTariff), args.Error(1)
}
