package metering

import (
	"github.com/estateops/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Aggregate type constant for Meter
const AggregateTypeMeter = "Meter"

// Event type constants for Meter
const (
	EventTypeMeterRegistered   = "MeterRegistered"
	EventTypeMeterUpdated      = "MeterUpdated"
	EventTypeMeterDeactivated  = "MeterDeactivated"
	EventTypeMeterMarkedFaulty = "MeterMarkedFaulty"
	EventTypeMeterRestored     = "MeterRestored"
)

// MeterRegisteredEvent is published when a new meter is registered
type MeterRegisteredEvent struct {
	shared.BaseDomainEvent
	MeterID     uuid.UUID   `json:"meter_id"`
	PropertyID  uuid.UUID   `json:"property_id"`
	UtilityType UtilityType `json:"utility_type"`
	IsShared    bool        `json:"is_shared"`
	UnitIDs     []uuid.UUID `json:"unit_ids"`
}

// NewMeterRegisteredEvent creates a new MeterRegisteredEvent
func NewMeterRegisteredEvent(meter *Meter) *MeterRegisteredEvent {
	return &MeterRegisteredEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeMeterRegistered, AggregateTypeMeter, meter.ID, meter.OrgID),
		MeterID:         meter.ID,
		PropertyID:      meter.PropertyID,
		UtilityType:     meter.UtilityType,
		IsShared:        meter.IsShared,
		UnitIDs:         meter.AllocatedUnits(),
	}
}

// MeterUpdatedEvent is published when a meter's allocation or details change
type MeterUpdatedEvent struct {
	shared.BaseDomainEvent
	MeterID uuid.UUID   `json:"meter_id"`
	UnitIDs []uuid.UUID `json:"unit_ids"`
}

// NewMeterUpdatedEvent creates a new MeterUpdatedEvent
func NewMeterUpdatedEvent(meter *Meter) *MeterUpdatedEvent {
	return &MeterUpdatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeMeterUpdated, AggregateTypeMeter, meter.ID, meter.OrgID),
		MeterID:         meter.ID,
		UnitIDs:         meter.AllocatedUnits(),
	}
}

// MeterDeactivatedEvent is published when a meter is retired
type MeterDeactivatedEvent struct {
	shared.BaseDomainEvent
	MeterID uuid.UUID   `json:"meter_id"`
	UnitIDs []uuid.UUID `json:"unit_ids"`
}

// NewMeterDeactivatedEvent creates a new MeterDeactivatedEvent
func NewMeterDeactivatedEvent(meter *Meter) *MeterDeactivatedEvent {
	return &MeterDeactivatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeMeterDeactivated, AggregateTypeMeter, meter.ID, meter.OrgID),
		MeterID:         meter.ID,
		UnitIDs:         meter.AllocatedUnits(),
	}
}

// MeterMarkedFaultyEvent is published when a meter is flagged as faulty
type MeterMarkedFaultyEvent struct {
	shared.BaseDomainEvent
	MeterID uuid.UUID `json:"meter_id"`
}

// NewMeterMarkedFaultyEvent creates a new MeterMarkedFaultyEvent
func NewMeterMarkedFaultyEvent(meter *Meter) *MeterMarkedFaultyEvent {
	return &MeterMarkedFaultyEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeMeterMarkedFaulty, AggregateTypeMeter, meter.ID, meter.OrgID),
		MeterID:         meter.ID,
	}
}

// MeterRestoredEvent is published when a faulty meter returns to service
type MeterRestoredEvent struct {
	shared.BaseDomainEvent
	MeterID uuid.UUID `json:"meter_id"`
}

// NewMeterRestoredEvent creates a new MeterRestoredEvent
func NewMeterRestoredEvent(meter *Meter) *MeterRestoredEvent {
	return &MeterRestoredEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeMeterRestored, AggregateTypeMeter, meter.ID, meter.OrgID),
		MeterID:         meter.ID,
	}
}
