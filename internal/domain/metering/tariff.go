package metering

import (
	"sort"
	"time"

	"github.com/estateops/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// UtilityTariff is an effective-dated rate row for one property and utility
// type. A nil EffectiveTo means the row is open-ended.
//
// Windows for the same (property, utility type) should not overlap; when
// they do (a data error), selection applies the deterministic tie-break in
// SelectTariff rather than failing.
type UtilityTariff struct {
	shared.OrgAggregateRoot
	PropertyID    uuid.UUID       `gorm:"type:uuid;not null;index:idx_tariffs_property_utility"`
	UtilityType   UtilityType     `gorm:"type:varchar(20);not null;index:idx_tariffs_property_utility"`
	RatePerUnit   decimal.Decimal `gorm:"type:numeric(12,4);not null"`
	FixedCharge   decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0"`
	Currency      string          `gorm:"type:varchar(3);not null"`
	EffectiveFrom time.Time       `gorm:"type:date;not null"`
	EffectiveTo   *time.Time      `gorm:"type:date"`
}

// TableName returns the table name for GORM
func (UtilityTariff) TableName() string {
	return "utility_tariffs"
}

// NewUtilityTariff creates a new effective-dated tariff row.
// It does not close a previous open-ended row for the same property and
// utility type; that remains the caller's responsibility.
func NewUtilityTariff(orgID, propertyID uuid.UUID, utilityType UtilityType, rate, fixed decimal.Decimal, currency string, effectiveFrom time.Time, effectiveTo *time.Time) (*UtilityTariff, error) {
	if !utilityType.Valid() {
		return nil, shared.NewDomainError("INVALID_UTILITY_TYPE", "Unknown utility type")
	}
	if rate.IsNegative() {
		return nil, shared.NewDomainError("INVALID_RATE", "Rate per unit cannot be negative")
	}
	if fixed.IsNegative() {
		return nil, shared.NewDomainError("INVALID_FIXED_CHARGE", "Fixed charge cannot be negative")
	}
	if len(currency) != 3 {
		return nil, shared.NewDomainError("INVALID_CURRENCY", "Currency must be a 3-letter ISO code")
	}
	if effectiveFrom.IsZero() {
		return nil, shared.NewDomainError("INVALID_EFFECTIVE_FROM", "Effective-from date is required")
	}

	from := TruncateToDate(effectiveFrom)
	var to *time.Time
	if effectiveTo != nil {
		d := TruncateToDate(*effectiveTo)
		if d.Before(from) {
			return nil, shared.NewDomainError("INVALID_EFFECTIVE_TO", "Effective-to date cannot precede effective-from")
		}
		to = &d
	}

	return &UtilityTariff{
		OrgAggregateRoot: shared.NewOrgAggregateRoot(orgID),
		PropertyID:       propertyID,
		UtilityType:      utilityType,
		RatePerUnit:      rate,
		FixedCharge:      fixed,
		Currency:         currency,
		EffectiveFrom:    from,
		EffectiveTo:      to,
	}, nil
}

// Covers returns true if the tariff window contains the given date
func (t *UtilityTariff) Covers(asOf time.Time) bool {
	d := TruncateToDate(asOf)
	if d.Before(t.EffectiveFrom) {
		return false
	}
	return t.EffectiveTo == nil || !t.EffectiveTo.Before(d)
}

// SelectTariff picks the tariff applicable on the as-of date out of the
// candidate rows. When overlapping windows match, the row with the latest
// effective-from wins; if still tied, the most recently created row wins.
// Returns nil when no row covers the date.
func SelectTariff(candidates []UtilityTariff, asOf time.Time) *UtilityTariff {
	matching := make([]UtilityTariff, 0, len(candidates))
	for _, t := range candidates {
		if t.Covers(asOf) {
			matching = append(matching, t)
		}
	}
	if len(matching) == 0 {
		return nil
	}

	sort.SliceStable(matching, func(i, j int) bool {
		if !matching[i].EffectiveFrom.Equal(matching[j].EffectiveFrom) {
			return matching[i].EffectiveFrom.After(matching[j].EffectiveFrom)
		}
		return matching[i].CreatedAt.After(matching[j].CreatedAt)
	})

	return &matching[0]
}
