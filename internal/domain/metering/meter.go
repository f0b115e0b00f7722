package metering

import (
	"time"

	"github.com/estateops/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MeterStatus represents the operational status of a meter
type MeterStatus string

const (
	MeterStatusActive   MeterStatus = "active"
	MeterStatusInactive MeterStatus = "inactive"
	MeterStatusFaulty   MeterStatus = "faulty"
)

// UnitShare describes one unit's share of a meter's consumption.
// A zero ratio means "not specified"; the billing engine decides how to
// split in that case.
type UnitShare struct {
	UnitID uuid.UUID
	Ratio  decimal.Decimal
}

// MeterAssignment links a meter to a unit it serves. An exclusive meter has
// exactly one assignment with ratio 1; a shared meter has one per covered
// unit.
type MeterAssignment struct {
	ID              uuid.UUID       `gorm:"type:uuid;primaryKey"`
	MeterID         uuid.UUID       `gorm:"type:uuid;not null;index"`
	UnitID          uuid.UUID       `gorm:"type:uuid;not null;index"`
	AllocationRatio decimal.Decimal `gorm:"type:numeric(9,6);not null;default:0"`
	CreatedAt       time.Time
}

// TableName returns the table name for GORM
func (MeterAssignment) TableName() string {
	return "meter_assignments"
}

// Meter is the aggregate root of the meter registry. It owns meter identity,
// utility type and unit allocation (exclusive or shared).
//
// Invariant: across all active meters of the same utility type within a
// property, allocated unit sets are disjoint. The registry enforces this at
// registration/update time inside the same transaction as the write.
type Meter struct {
	shared.OrgAggregateRoot
	PropertyID  uuid.UUID         `gorm:"type:uuid;not null;index:idx_meters_property_utility"`
	UtilityType UtilityType       `gorm:"type:varchar(20);not null;index:idx_meters_property_utility"`
	MeterNumber string            `gorm:"type:varchar(100)"`
	Name        string            `gorm:"type:varchar(200)"`
	Location    string            `gorm:"type:varchar(200)"`
	IsShared    bool              `gorm:"not null;default:false"`
	Status      MeterStatus       `gorm:"type:varchar(20);not null;default:'active'"`
	InstalledOn *time.Time        `gorm:"type:date"`
	Assignments []MeterAssignment `gorm:"foreignKey:MeterID;constraint:OnDelete:CASCADE"`
}

// TableName returns the table name for GORM
func (Meter) TableName() string {
	return "meters"
}

// NewExclusiveMeter creates a meter serving a single unit
func NewExclusiveMeter(orgID, propertyID, unitID uuid.UUID, utilityType UtilityType) (*Meter, error) {
	if !utilityType.Valid() {
		return nil, shared.NewDomainError("INVALID_UTILITY_TYPE", "Unknown utility type")
	}
	if unitID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_UNIT", "Exclusive meter requires an owning unit")
	}

	meter := &Meter{
		OrgAggregateRoot: shared.NewOrgAggregateRoot(orgID),
		PropertyID:       propertyID,
		UtilityType:      utilityType,
		IsShared:         false,
		Status:           MeterStatusActive,
	}
	meter.Assignments = []MeterAssignment{{
		ID:              uuid.New(),
		MeterID:         meter.ID,
		UnitID:          unitID,
		AllocationRatio: decimal.NewFromInt(1),
	}}

	meter.AddDomainEvent(NewMeterRegisteredEvent(meter))

	return meter, nil
}

// NewSharedMeter creates a meter whose consumption is split across units
func NewSharedMeter(orgID, propertyID uuid.UUID, utilityType UtilityType, shares []UnitShare) (*Meter, error) {
	if !utilityType.Valid() {
		return nil, shared.NewDomainError("INVALID_UTILITY_TYPE", "Unknown utility type")
	}
	if err := validateShares(shares); err != nil {
		return nil, err
	}

	meter := &Meter{
		OrgAggregateRoot: shared.NewOrgAggregateRoot(orgID),
		PropertyID:       propertyID,
		UtilityType:      utilityType,
		IsShared:         true,
		Status:           MeterStatusActive,
	}
	meter.Assignments = assignmentsFromShares(meter.ID, shares)

	meter.AddDomainEvent(NewMeterRegisteredEvent(meter))

	return meter, nil
}

// SetDetails updates the meter's descriptive fields
func (m *Meter) SetDetails(meterNumber, name, location string) error {
	if len(meterNumber) > 100 {
		return shared.NewDomainError("INVALID_METER_NUMBER", "Meter number cannot exceed 100 characters")
	}
	if len(name) > 200 {
		return shared.NewDomainError("INVALID_NAME", "Meter name cannot exceed 200 characters")
	}
	if len(location) > 200 {
		return shared.NewDomainError("INVALID_LOCATION", "Meter location cannot exceed 200 characters")
	}

	m.MeterNumber = meterNumber
	m.Name = name
	m.Location = location
	m.UpdatedAt = time.Now()
	m.IncrementVersion()

	return nil
}

// SetInstalledOn records the installation date
func (m *Meter) SetInstalledOn(installedOn time.Time) {
	d := installedOn
	m.InstalledOn = &d
	m.UpdatedAt = time.Now()
	m.IncrementVersion()
}

// ReplaceAssignments swaps the meter's unit allocation wholesale. The caller
// is responsible for re-running the exclusivity check against the registry.
func (m *Meter) ReplaceAssignments(shares []UnitShare) error {
	if m.Status == MeterStatusInactive {
		return shared.NewDomainError("INVALID_STATE", "Cannot reallocate an inactive meter")
	}
	if !m.IsShared && len(shares) != 1 {
		return shared.NewDomainError("INVALID_ALLOCATION", "Exclusive meter must have exactly one unit")
	}
	if err := validateShares(shares); err != nil {
		return err
	}

	m.Assignments = assignmentsFromShares(m.ID, shares)
	m.UpdatedAt = time.Now()
	m.IncrementVersion()

	m.AddDomainEvent(NewMeterUpdatedEvent(m))

	return nil
}

// Deactivate retires the meter. Readings are retained; the covered units
// become available for new meter allocation.
func (m *Meter) Deactivate() error {
	if m.Status == MeterStatusInactive {
		return shared.NewDomainError("INVALID_STATE", "Meter is already inactive")
	}

	m.Status = MeterStatusInactive
	m.UpdatedAt = time.Now()
	m.IncrementVersion()

	m.AddDomainEvent(NewMeterDeactivatedEvent(m))

	return nil
}

// MarkFaulty flags an active meter as faulty. A faulty meter keeps its unit
// allocation (the physical meter is still installed) but is skipped by
// billing runs.
func (m *Meter) MarkFaulty() error {
	if m.Status != MeterStatusActive {
		return shared.NewDomainError("INVALID_STATE", "Only an active meter can be marked faulty")
	}

	m.Status = MeterStatusFaulty
	m.UpdatedAt = time.Now()
	m.IncrementVersion()

	m.AddDomainEvent(NewMeterMarkedFaultyEvent(m))

	return nil
}

// Restore returns a faulty meter to service
func (m *Meter) Restore() error {
	if m.Status != MeterStatusFaulty {
		return shared.NewDomainError("INVALID_STATE", "Only a faulty meter can be restored")
	}

	m.Status = MeterStatusActive
	m.UpdatedAt = time.Now()
	m.IncrementVersion()

	m.AddDomainEvent(NewMeterRestoredEvent(m))

	return nil
}

// IsActive returns true if the meter is in service
func (m *Meter) IsActive() bool {
	return m.Status == MeterStatusActive
}

// CoversUnits returns true if the meter still holds unit allocation that
// blocks other meters of the same utility type. Faulty meters keep their
// allocation; inactive meters release it.
func (m *Meter) CoversUnits() bool {
	return m.Status != MeterStatusInactive
}

// AllocatedUnits returns the set of units this meter covers, whether
// directly (exclusive) or via shared assignment.
func (m *Meter) AllocatedUnits() []uuid.UUID {
	units := make([]uuid.UUID, 0, len(m.Assignments))
	for _, a := range m.Assignments {
		units = append(units, a.UnitID)
	}
	return units
}

// Shares returns the meter's allocation as unit shares
func (m *Meter) Shares() []UnitShare {
	shares := make([]UnitShare, 0, len(m.Assignments))
	for _, a := range m.Assignments {
		shares = append(shares, UnitShare{UnitID: a.UnitID, Ratio: a.AllocationRatio})
	}
	return shares
}

func validateShares(shares []UnitShare) error {
	if len(shares) == 0 {
		return shared.NewDomainError("INVALID_ALLOCATION", "Meter must serve at least one unit")
	}

	seen := make(map[uuid.UUID]bool, len(shares))
	one := decimal.NewFromInt(1)
	for _, s := range shares {
		if s.UnitID == uuid.Nil {
			return shared.NewDomainError("INVALID_ALLOCATION", "Assignment unit cannot be empty")
		}
		if seen[s.UnitID] {
			return shared.NewDomainError("INVALID_ALLOCATION", "Duplicate unit in meter allocation")
		}
		seen[s.UnitID] = true
		if s.Ratio.IsNegative() || s.Ratio.GreaterThan(one) {
			return shared.NewDomainError("INVALID_ALLOCATION", "Allocation ratio must be between 0 and 1")
		}
	}
	return nil
}

func assignmentsFromShares(meterID uuid.UUID, shares []UnitShare) []MeterAssignment {
	assignments := make([]MeterAssignment, 0, len(shares))
	for _, s := range shares {
		assignments = append(assignments, MeterAssignment{
			ID:              uuid.New(),
			MeterID:         meterID,
			UnitID:          s.UnitID,
			AllocationRatio: s.Ratio,
		})
	}
	return assignments
}
