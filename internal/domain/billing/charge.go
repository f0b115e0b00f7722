package billing

import (
	"github.com/estateops/backend/internal/domain/metering"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// UnitCharge is the computed charge attached to one unit for a period
type UnitCharge struct {
	UnitID      uuid.UUID
	Consumption decimal.Decimal
	Rate        decimal.Decimal
	FixedCharge decimal.Decimal
	Amount      decimal.Decimal
}

// Consumption computes the register delta between two readings. A negative
// result signals a possible meter reset; the caller decides how to report
// it.
func Consumption(baseline, ending *metering.MeterReading) decimal.Decimal {
	return ending.ReadingValue.Sub(baseline.ReadingValue)
}

// ComputeCharge prices a consumption figure under a tariff:
// consumption * rate_per_unit + fixed_charge.
func ComputeCharge(consumption decimal.Decimal, tariff *metering.UtilityTariff) decimal.Decimal {
	return consumption.Mul(tariff.RatePerUnit).Add(tariff.FixedCharge)
}

// Allocation is the result of splitting a meter's charge across its units
type Allocation struct {
	Charges []UnitCharge
	// FellBack is true when the stored ratios were unusable (absent or not
	// summing to 1 within tolerance) and an equal split was applied instead.
	// The caller must surface this: silently renormalizing ratios would
	// change tenant-facing amounts without a trace.
	FellBack bool
}

// AllocateShared splits a meter's total consumption and raw charge across
// the assigned units by allocation ratio. The fixed charge follows the same
// split as the consumption charge - each unit's amount is rawCharge * ratio.
//
// Ratios must sum to 1 within the tolerance; otherwise every unit gets an
// equal share and FellBack is set.
func AllocateShared(consumption, rawCharge decimal.Decimal, tariff *metering.UtilityTariff, shares []metering.UnitShare, tolerance decimal.Decimal) Allocation {
	useEqual := !ratiosUsable(shares, tolerance)

	n := decimal.NewFromInt(int64(len(shares)))
	charges := make([]UnitCharge, 0, len(shares))
	for _, s := range shares {
		ratio := s.Ratio
		if useEqual {
			ratio = decimal.NewFromInt(1).Div(n)
		}
		charges = append(charges, UnitCharge{
			UnitID:      s.UnitID,
			Consumption: consumption.Mul(ratio),
			Rate:        tariff.RatePerUnit,
			FixedCharge: tariff.FixedCharge.Mul(ratio),
			Amount:      rawCharge.Mul(ratio),
		})
	}

	return Allocation{Charges: charges, FellBack: useEqual}
}

// AllocateExclusive attaches the full consumption and charge to the meter's
// single unit.
func AllocateExclusive(consumption, rawCharge decimal.Decimal, tariff *metering.UtilityTariff, unitID uuid.UUID) UnitCharge {
	return UnitCharge{
		UnitID:      unitID,
		Consumption: consumption,
		Rate:        tariff.RatePerUnit,
		FixedCharge: tariff.FixedCharge,
		Amount:      rawCharge,
	}
}

func ratiosUsable(shares []metering.UnitShare, tolerance decimal.Decimal) bool {
	sum := decimal.Zero
	for _, s := range shares {
		if s.Ratio.IsZero() {
			return false
		}
		sum = sum.Add(s.Ratio)
	}
	return sum.Sub(decimal.NewFromInt(1)).Abs().LessThanOrEqual(tolerance)
}
