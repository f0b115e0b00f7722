package billing

import (
	"context"
	"time"

	"github.com/estateops/backend/internal/domain/metering"
	"github.com/estateops/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// BillRepository defines the interface for utility bill persistence
type BillRepository interface {
	// FindByPeriodKey finds the bill with the given idempotency key, or
	// shared.ErrNotFound
	FindByPeriodKey(ctx context.Context, orgID, unitID uuid.UUID, utilityType metering.UtilityType, periodStart, periodEnd time.Time) (*UtilityBill, error)

	// Upsert creates the bill or, when a bill with the same period key
	// already exists, overwrites its computed figures. The underlying store
	// must serialize concurrent upserts on the key (unique constraint plus
	// conflict-update).
	Upsert(ctx context.Context, bill *UtilityBill) error

	// FindAllForOrg finds bills for an organization matching the filter
	FindAllForOrg(ctx context.Context, orgID uuid.UUID, filter shared.Filter) ([]UtilityBill, error)

	// CountForOrg counts bills for an organization matching the filter
	CountForOrg(ctx context.Context, orgID uuid.UUID, filter shared.Filter) (int64, error)

	// Save persists changes to an existing bill (invoice linkage)
	Save(ctx context.Context, bill *UtilityBill) error
}
