package billing

import (
	"github.com/google/uuid"
)

// Warning messages emitted by a billing run. A warning skips the meter or
// unit it concerns; it never aborts the run.
const (
	WarnMissingReading      = "missing reading for period"
	WarnNegativeConsumption = "negative consumption - possible meter reset"
	WarnNoTariff            = "no tariff configured"
	WarnRatioFallback       = "allocation ratios do not sum to 1; applied equal split"
	WarnRunIncomplete       = "run cancelled before all meters were processed"
)

// RunWarning reports a per-meter or per-unit problem found during a billing
// run
type RunWarning struct {
	UnitID  *uuid.UUID `json:"unit_id,omitempty"`
	MeterID *uuid.UUID `json:"meter_id,omitempty"`
	Message string     `json:"message"`
}

// MeterWarning builds a warning scoped to a meter
func MeterWarning(meterID uuid.UUID, message string) RunWarning {
	id := meterID
	return RunWarning{MeterID: &id, Message: message}
}

// UnitWarning builds a warning scoped to a unit of a meter
func UnitWarning(meterID, unitID uuid.UUID, message string) RunWarning {
	mid := meterID
	uid := unitID
	return RunWarning{MeterID: &mid, UnitID: &uid, Message: message}
}

// RunResult summarizes a billing run. It is ephemeral - returned to the
// caller, never persisted.
type RunResult struct {
	CreatedBills    int          `json:"created_bills"`
	UpdatedBills    int          `json:"updated_bills"`
	CreatedInvoices int          `json:"created_invoices"`
	UpdatedInvoices int          `json:"updated_invoices"`
	Warnings        []RunWarning `json:"warnings"`
	// Incomplete is true when the run's context expired before every
	// matching meter was processed; the counts cover the processed subset.
	Incomplete bool `json:"incomplete,omitempty"`
}
