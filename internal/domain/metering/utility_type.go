package metering

import "github.com/estateops/backend/internal/domain/shared"

// UtilityType identifies the metered utility. It is a closed enum: the set
// of supported utilities drives meter registration, tariff resolution and
// billing, so every switch over it must handle all members and reject
// anything else at the boundary.
type UtilityType string

const (
	UtilityTypeWater       UtilityType = "water"
	UtilityTypeElectricity UtilityType = "electricity"
)

// AllUtilityTypes returns all supported utility types
func AllUtilityTypes() []UtilityType {
	return []UtilityType{UtilityTypeWater, UtilityTypeElectricity}
}

// Valid returns true if the utility type is a known member of the enum
func (t UtilityType) Valid() bool {
	switch t {
	case UtilityTypeWater, UtilityTypeElectricity:
		return true
	default:
		return false
	}
}

// Unit returns the measurement unit the meter register counts in
func (t UtilityType) Unit() string {
	switch t {
	case UtilityTypeWater:
		return "m3"
	case UtilityTypeElectricity:
		return "kWh"
	default:
		return ""
	}
}

// ParseUtilityType converts a string into a UtilityType, rejecting unknown values
func ParseUtilityType(s string) (UtilityType, error) {
	t := UtilityType(s)
	if !t.Valid() {
		return "", shared.NewDomainError("INVALID_UTILITY_TYPE", "Unknown utility type: "+s)
	}
	return t, nil
}
