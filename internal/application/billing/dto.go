package billing

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/estateops/backend/internal/domain/billing"
)

// RunBillingRequest represents a request to run billing over a period.
// Property and utility type narrow the run; omitted they mean "everything".
// DueDate stamps the generated invoices; omitted it defaults to the period
// end plus the configured payment term.
type RunBillingRequest struct {
	PeriodStart    time.Time  `json:"period_start" binding:"required" time_format:"2006-01-02"`
	PeriodEnd      time.Time  `json:"period_end" binding:"required" time_format:"2006-01-02"`
	DueDate        time.Time  `json:"due_date" time_format:"2006-01-02"`
	PropertyID     *uuid.UUID `json:"property_id"`
	UtilityType    string     `json:"utility_type" binding:"omitempty,oneof=water electricity"`
	CreateInvoices bool       `json:"create_invoices"`
}

// BillListFilter represents filter options for the bill list
type BillListFilter struct {
	UnitID      *uuid.UUID `form:"unit_id"`
	UtilityType string     `form:"utility_type" binding:"omitempty,oneof=water electricity"`
	PeriodStart *time.Time `form:"period_start" time_format:"2006-01-02"`
	PeriodEnd   *time.Time `form:"period_end" time_format:"2006-01-02"`
	Page        int        `form:"page" binding:"omitempty,min=1"`
	PageSize    int        `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// BillResponse represents a utility bill in API responses
type BillResponse struct {
	ID            uuid.UUID       `json:"id"`
	UnitID        uuid.UUID       `json:"unit_id"`
	UtilityType   string          `json:"utility_type"`
	PeriodStart   time.Time       `json:"period_start"`
	PeriodEnd     time.Time       `json:"period_end"`
	Consumption   decimal.Decimal `json:"consumption"`
	RateApplied   decimal.Decimal `json:"rate_applied"`
	FixedCharge   decimal.Decimal `json:"fixed_charge"`
	Amount        decimal.Decimal `json:"amount"`
	Currency      string          `json:"currency"`
	SourceMeterID uuid.UUID       `json:"source_meter_id"`
	InvoiceID     *uuid.UUID      `json:"invoice_id,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// ToBillResponse converts a bill to its API representation
func ToBillResponse(b *billing.UtilityBill) BillResponse {
	return BillResponse{
		ID:            b.ID,
		UnitID:        b.UnitID,
		UtilityType:   string(b.UtilityType),
		PeriodStart:   b.PeriodStart,
		PeriodEnd:     b.PeriodEnd,
		Consumption:   b.Consumption,
		RateApplied:   b.RateApplied,
		FixedCharge:   b.FixedChargeApplied,
		Amount:        b.Amount,
		Currency:      b.Currency,
		SourceMeterID: b.SourceMeterID,
		InvoiceID:     b.InvoiceID,
		CreatedAt:     b.CreatedAt,
		UpdatedAt:     b.UpdatedAt,
	}
}
