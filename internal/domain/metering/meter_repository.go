package metering

import (
	"context"

	"github.com/estateops/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// MeterRepository defines the interface for meter persistence.
// Implementations must load assignments together with the meter.
type MeterRepository interface {
	// FindByIDForOrg finds a meter by ID within an organization
	FindByIDForOrg(ctx context.Context, orgID, id uuid.UUID) (*Meter, error)

	// FindAllForOrg finds all meters for an organization matching the filter
	FindAllForOrg(ctx context.Context, orgID uuid.UUID, filter shared.Filter) ([]Meter, error)

	// CountForOrg counts meters for an organization matching the filter
	CountForOrg(ctx context.Context, orgID uuid.UUID, filter shared.Filter) (int64, error)

	// FindCovering finds the meters of a utility type that currently hold
	// unit allocation within a property (active and faulty meters; inactive
	// meters have released theirs). Used by the exclusivity check.
	FindCovering(ctx context.Context, orgID, propertyID uuid.UUID, utilityType UtilityType) ([]Meter, error)

	// FindBillable finds active meters matching the optional property and
	// utility type filters. Used by the billing run engine.
	FindBillable(ctx context.Context, orgID uuid.UUID, propertyID *uuid.UUID, utilityType *UtilityType) ([]Meter, error)

	// Save creates or updates a meter together with its assignments
	Save(ctx context.Context, meter *Meter) error
}
