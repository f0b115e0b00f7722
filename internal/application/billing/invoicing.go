package billing

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InvoiceLine is one billed charge inside an invoice
type InvoiceLine struct {
	BillID      uuid.UUID
	Description string
	Amount      decimal.Decimal
	Currency    string
}

// InvoicingGateway materializes utility bills into tenant-facing invoices.
// Implementations must be idempotent on (unit, period): a re-run replaces the
// invoice's lines instead of issuing a second invoice.
type InvoicingGateway interface {
	// UpsertInvoiceForUnitPeriod creates or updates the invoice for a unit
	// and billing period, due on dueDate. Returns the invoice ID and whether
	// it was newly created.
	UpsertInvoiceForUnitPeriod(ctx context.Context, orgID, unitID uuid.UUID, periodStart, periodEnd, dueDate time.Time, lines []InvoiceLine) (uuid.UUID, bool, error)
}
