package billing

import (
	"time"

	"github.com/estateops/backend/internal/domain/metering"
	"github.com/estateops/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// UtilityBill is one unit's charge for a utility over a billing period.
//
// Identity for idempotency is (unit_id, utility_type, period_start,
// period_end), backed by a unique constraint. Re-running a billing run for
// the same key recalculates the existing bill instead of duplicating it; a
// bill is never locked against recalculation.
type UtilityBill struct {
	shared.OrgAggregateRoot
	UnitID             uuid.UUID            `gorm:"type:uuid;not null;uniqueIndex:idx_bills_period_key,priority:1"`
	UtilityType        metering.UtilityType `gorm:"type:varchar(20);not null;uniqueIndex:idx_bills_period_key,priority:2"`
	PeriodStart        time.Time            `gorm:"type:date;not null;uniqueIndex:idx_bills_period_key,priority:3"`
	PeriodEnd          time.Time            `gorm:"type:date;not null;uniqueIndex:idx_bills_period_key,priority:4"`
	Consumption        decimal.Decimal      `gorm:"type:numeric(14,3);not null"`
	RateApplied        decimal.Decimal      `gorm:"type:numeric(12,4);not null"`
	FixedChargeApplied decimal.Decimal      `gorm:"type:numeric(12,2);not null"`
	Amount             decimal.Decimal      `gorm:"type:numeric(14,2);not null"`
	Currency           string               `gorm:"type:varchar(3);not null"`
	SourceMeterID      uuid.UUID            `gorm:"type:uuid;not null;index"`
	InvoiceID          *uuid.UUID           `gorm:"type:uuid;index"`
}

// TableName returns the table name for GORM
func (UtilityBill) TableName() string {
	return "utility_bills"
}

// NewUtilityBill creates a bill for a unit and period
func NewUtilityBill(orgID, unitID uuid.UUID, utilityType metering.UtilityType, periodStart, periodEnd time.Time, charge UnitCharge, currency string, sourceMeterID uuid.UUID) (*UtilityBill, error) {
	if unitID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_UNIT", "Bill must belong to a unit")
	}
	if !utilityType.Valid() {
		return nil, shared.NewDomainError("INVALID_UTILITY_TYPE", "Unknown utility type")
	}
	if periodEnd.Before(periodStart) {
		return nil, shared.NewDomainError("INVALID_PERIOD", "Period end cannot precede period start")
	}

	return &UtilityBill{
		OrgAggregateRoot:   shared.NewOrgAggregateRoot(orgID),
		UnitID:             unitID,
		UtilityType:        utilityType,
		PeriodStart:        metering.TruncateToDate(periodStart),
		PeriodEnd:          metering.TruncateToDate(periodEnd),
		Consumption:        charge.Consumption,
		RateApplied:        charge.Rate,
		FixedChargeApplied: charge.FixedCharge,
		Amount:             charge.Amount,
		Currency:           currency,
		SourceMeterID:      sourceMeterID,
	}, nil
}

// Recalculate replaces the bill's computed figures from a re-run over the
// same period
func (b *UtilityBill) Recalculate(charge UnitCharge, currency string, sourceMeterID uuid.UUID) {
	b.Consumption = charge.Consumption
	b.RateApplied = charge.Rate
	b.FixedChargeApplied = charge.FixedCharge
	b.Amount = charge.Amount
	b.Currency = currency
	b.SourceMeterID = sourceMeterID
	b.UpdatedAt = time.Now()
	b.IncrementVersion()
}

// AttachInvoice records the downstream invoice the bill was materialized into
func (b *UtilityBill) AttachInvoice(invoiceID uuid.UUID) {
	b.InvoiceID = &invoiceID
	b.UpdatedAt = time.Now()
	b.IncrementVersion()
}
