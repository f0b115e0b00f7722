// Package invoicing provides gateway implementations that turn utility
// bills into tenant-facing invoices.
package invoicing

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/estateops/backend/internal/application/billing"
)

// Invoice is an in-memory invoice record
type Invoice struct {
	ID          uuid.UUID
	OrgID       uuid.UUID
	UnitID      uuid.UUID
	PeriodStart time.Time
	PeriodEnd   time.Time
	Lines       []billing.InvoiceLine
	Total       decimal.Decimal
	DueDate     time.Time
	IssuedAt    time.Time
	UpdatedAt   time.Time
}

// MemoryGateway is an in-process invoicing gateway. It keeps invoices keyed
// by (org, unit, period) so repeated billing runs replace the invoice's
// lines instead of issuing duplicates. It stands in until an external
// invoicing system is connected.
type MemoryGateway struct {
	mu       sync.RWMutex
	invoices map[string]*Invoice
	dueDays  int
	logger   *zap.Logger
}

var _ billing.InvoicingGateway = (*MemoryGateway)(nil)

// NewMemoryGateway creates a new MemoryGateway
func NewMemoryGateway(dueDays int, logger *zap.Logger) *MemoryGateway {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MemoryGateway{
		invoices: make(map[string]*Invoice),
		dueDays:  dueDays,
		logger:   logger,
	}
}

// UpsertInvoiceForUnitPeriod creates or updates the invoice for a unit and
// billing period. A zero dueDate falls back to the configured payment term.
func (g *MemoryGateway) UpsertInvoiceForUnitPeriod(ctx context.Context, orgID, unitID uuid.UUID, periodStart, periodEnd, dueDate time.Time, lines []billing.InvoiceLine) (uuid.UUID, bool, error) {
	if err := ctx.Err(); err != nil {
		return uuid.Nil, false, err
	}
	if len(lines) == 0 {
		return uuid.Nil, false, fmt.Errorf("invoice requires at least one line")
	}

	total := decimal.Zero
	for _, line := range lines {
		total = total.Add(line.Amount)
	}

	key := invoiceKey(orgID, unitID, periodStart, periodEnd)
	now := time.Now()
	if dueDate.IsZero() {
		dueDate = now.AddDate(0, 0, g.dueDays)
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if existing, ok := g.invoices[key]; ok {
		existing.Lines = lines
		existing.Total = total
		existing.DueDate = dueDate
		existing.UpdatedAt = now

		g.logger.Debug("Invoice updated",
			zap.String("invoice_id", existing.ID.String()),
			zap.String("unit_id", unitID.String()),
		)
		return existing.ID, false, nil
	}

	inv := &Invoice{
		ID:          uuid.New(),
		OrgID:       orgID,
		UnitID:      unitID,
		PeriodStart: periodStart,
		PeriodEnd:   periodEnd,
		Lines:       lines,
		Total:       total,
		DueDate:     dueDate,
		IssuedAt:    now,
		UpdatedAt:   now,
	}
	g.invoices[key] = inv

	g.logger.Debug("Invoice created",
		zap.String("invoice_id", inv.ID.String()),
		zap.String("unit_id", unitID.String()),
	)
	return inv.ID, true, nil
}

// Get returns the invoice for a unit and period, if one exists
func (g *MemoryGateway) Get(orgID, unitID uuid.UUID, periodStart, periodEnd time.Time) (*Invoice, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	inv, ok := g.invoices[invoiceKey(orgID, unitID, periodStart, periodEnd)]
	return inv, ok
}

func invoiceKey(orgID, unitID uuid.UUID, periodStart, periodEnd time.Time) string {
	return fmt.Sprintf("%s/%s/%s/%s",
		orgID, unitID,
		periodStart.Format("2006-01-02"),
		periodEnd.Format("2006-01-02"),
	)
}
