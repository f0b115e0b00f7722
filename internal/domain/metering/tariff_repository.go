package metering

import (
	"context"
	"time"

	"github.com/estateops/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// TariffRepository defines the interface for utility tariff persistence
type TariffRepository interface {
	// Save creates or updates a tariff row
	Save(ctx context.Context, tariff *UtilityTariff) error

	// FindAllForOrg finds all tariffs for an organization matching the filter
	FindAllForOrg(ctx context.Context, orgID uuid.UUID, filter shared.Filter) ([]UtilityTariff, error)

	// CountForOrg counts tariffs for an organization matching the filter
	CountForOrg(ctx context.Context, orgID uuid.UUID, filter shared.Filter) (int64, error)

	// FindCandidates returns all tariff rows for the property and utility
	// type whose windows cover the as-of date. Overlap resolution is the
	// domain's job (SelectTariff), not the query's.
	FindCandidates(ctx context.Context, orgID, propertyID uuid.UUID, utilityType UtilityType, asOf time.Time) ([]UtilityTariff, error)
}
