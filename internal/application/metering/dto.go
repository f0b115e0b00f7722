package metering

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/estateops/backend/internal/domain/metering"
)

// UnitShareRequest is one unit's slice of a shared meter's consumption
type UnitShareRequest struct {
	UnitID uuid.UUID       `json:"unit_id" binding:"required"`
	Ratio  decimal.Decimal `json:"ratio"`
}

// RegisterMeterRequest represents a request to register a meter.
// An exclusive meter names its single unit via UnitID; a shared meter lists
// its covered units via Shares.
type RegisterMeterRequest struct {
	PropertyID  uuid.UUID          `json:"property_id" binding:"required"`
	UtilityType string             `json:"utility_type" binding:"required,oneof=water electricity"`
	MeterNumber string             `json:"meter_number" binding:"max=100"`
	Name        string             `json:"name" binding:"max=200"`
	Location    string             `json:"location" binding:"max=200"`
	InstalledOn *time.Time         `json:"installed_on"`
	IsShared    bool               `json:"is_shared"`
	UnitID      *uuid.UUID         `json:"unit_id"`
	Shares      []UnitShareRequest `json:"shares" binding:"omitempty,dive"`
}

// UpdateMeterRequest represents a request to update a meter. A nil Shares
// leaves the unit allocation untouched.
type UpdateMeterRequest struct {
	MeterNumber string             `json:"meter_number" binding:"max=100"`
	Name        string             `json:"name" binding:"max=200"`
	Location    string             `json:"location" binding:"max=200"`
	InstalledOn *time.Time         `json:"installed_on"`
	Shares      []UnitShareRequest `json:"shares" binding:"omitempty,dive"`
}

// MeterListFilter represents filter options for the meter list
type MeterListFilter struct {
	PropertyID  *uuid.UUID `form:"property_id"`
	UtilityType string     `form:"utility_type" binding:"omitempty,oneof=water electricity"`
	Status      string     `form:"status" binding:"omitempty,oneof=active inactive faulty"`
	Page        int        `form:"page" binding:"omitempty,min=1"`
	PageSize    int        `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy     string     `form:"order_by"`
	OrderDir    string     `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// UnitShareResponse is one assignment in a meter response
type UnitShareResponse struct {
	UnitID uuid.UUID       `json:"unit_id"`
	Ratio  decimal.Decimal `json:"ratio"`
}

// MeterResponse represents a meter in API responses
type MeterResponse struct {
	ID          uuid.UUID           `json:"id"`
	PropertyID  uuid.UUID           `json:"property_id"`
	UtilityType string              `json:"utility_type"`
	Unit        string              `json:"unit"`
	MeterNumber string              `json:"meter_number"`
	Name        string              `json:"name"`
	Location    string              `json:"location"`
	IsShared    bool                `json:"is_shared"`
	Status      string              `json:"status"`
	InstalledOn *time.Time          `json:"installed_on,omitempty"`
	Shares      []UnitShareResponse `json:"shares"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`
	Version     int                 `json:"version"`
}

// ToMeterResponse converts a meter aggregate to its API representation
func ToMeterResponse(m *metering.Meter) MeterResponse {
	shares := make([]UnitShareResponse, 0, len(m.Assignments))
	for _, a := range m.Assignments {
		shares = append(shares, UnitShareResponse{UnitID: a.UnitID, Ratio: a.AllocationRatio})
	}
	return MeterResponse{
		ID:          m.ID,
		PropertyID:  m.PropertyID,
		UtilityType: string(m.UtilityType),
		Unit:        m.UtilityType.Unit(),
		MeterNumber: m.MeterNumber,
		Name:        m.Name,
		Location:    m.Location,
		IsShared:    m.IsShared,
		Status:      string(m.Status),
		InstalledOn: m.InstalledOn,
		Shares:      shares,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
		Version:     m.Version,
	}
}

// BulkReadingItem is one reading inside a bulk submission
type BulkReadingItem struct {
	MeterID     uuid.UUID       `json:"meter_id" binding:"required"`
	ReadingDate time.Time       `json:"reading_date" binding:"required"`
	Value       decimal.Decimal `json:"value"`
	IsEstimated bool            `json:"is_estimated"`
	Notes       string          `json:"notes" binding:"max=500"`
}

// BulkReadingsRequest represents a bulk reading-sheet submission. The sheet
// is scoped to one property; every reading must target a meter of that
// property.
type BulkReadingsRequest struct {
	PropertyID uuid.UUID         `json:"property_id" binding:"required"`
	Readings   []BulkReadingItem `json:"readings" binding:"required,min=1,max=1000,dive"`
}

// BulkReadingError reports one rejected item of a bulk submission
type BulkReadingError struct {
	Index       int        `json:"index"`
	MeterID     *uuid.UUID `json:"meter_id,omitempty"`
	ReadingDate *time.Time `json:"reading_date,omitempty"`
	Message     string     `json:"message"`
}

// BulkReadingsResponse summarizes a bulk submission. Count is the number of
// stored readings; Errors lists the rejected items by position.
type BulkReadingsResponse struct {
	Count  int                `json:"count"`
	Errors []BulkReadingError `json:"errors"`
}

// ReadingListFilter represents filter options for a meter's reading series
type ReadingListFilter struct {
	From     *time.Time `form:"from" time_format:"2006-01-02"`
	To       *time.Time `form:"to" time_format:"2006-01-02"`
	Page     int        `form:"page" binding:"omitempty,min=1"`
	PageSize int        `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// ReadingResponse represents a meter reading in API responses
type ReadingResponse struct {
	ID          uuid.UUID       `json:"id"`
	MeterID     uuid.UUID       `json:"meter_id"`
	ReadingDate time.Time       `json:"reading_date"`
	Value       decimal.Decimal `json:"value"`
	IsEstimated bool            `json:"is_estimated"`
	Notes       string          `json:"notes,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

// ToReadingResponse converts a reading to its API representation
func ToReadingResponse(r *metering.MeterReading) ReadingResponse {
	return ReadingResponse{
		ID:          r.ID,
		MeterID:     r.MeterID,
		ReadingDate: r.ReadingDate,
		Value:       r.ReadingValue,
		IsEstimated: r.IsEstimated,
		Notes:       r.Notes,
		CreatedAt:   r.CreatedAt,
	}
}

// AddTariffRequest represents a request to add an effective-dated tariff row
type AddTariffRequest struct {
	PropertyID    uuid.UUID       `json:"property_id" binding:"required"`
	UtilityType   string          `json:"utility_type" binding:"required,oneof=water electricity"`
	RatePerUnit   decimal.Decimal `json:"rate_per_unit" binding:"required"`
	FixedCharge   decimal.Decimal `json:"fixed_charge"`
	Currency      string          `json:"currency" binding:"required,len=3"`
	EffectiveFrom time.Time       `json:"effective_from" binding:"required"`
	EffectiveTo   *time.Time      `json:"effective_to"`
}

// TariffListFilter represents filter options for the tariff list
type TariffListFilter struct {
	PropertyID  *uuid.UUID `form:"property_id"`
	UtilityType string     `form:"utility_type" binding:"omitempty,oneof=water electricity"`
	Page        int        `form:"page" binding:"omitempty,min=1"`
	PageSize    int        `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// ResolveTariffQuery asks which tariff applies on a date
type ResolveTariffQuery struct {
	PropertyID  uuid.UUID `form:"property_id" binding:"required"`
	UtilityType string    `form:"utility_type" binding:"required,oneof=water electricity"`
	AsOf        time.Time `form:"as_of" binding:"required" time_format:"2006-01-02"`
}

// TariffResponse represents a tariff row in API responses
type TariffResponse struct {
	ID            uuid.UUID       `json:"id"`
	PropertyID    uuid.UUID       `json:"property_id"`
	UtilityType   string          `json:"utility_type"`
	RatePerUnit   decimal.Decimal `json:"rate_per_unit"`
	FixedCharge   decimal.Decimal `json:"fixed_charge"`
	Currency      string          `json:"currency"`
	EffectiveFrom time.Time       `json:"effective_from"`
	EffectiveTo   *time.Time      `json:"effective_to,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}

// ToTariffResponse converts a tariff to its API representation
func ToTariffResponse(t *metering.UtilityTariff) TariffResponse {
	return TariffResponse{
		ID:            t.ID,
		PropertyID:    t.PropertyID,
		UtilityType:   string(t.UtilityType),
		RatePerUnit:   t.RatePerUnit,
		FixedCharge:   t.FixedCharge,
		Currency:      t.Currency,
		EffectiveFrom: t.EffectiveFrom,
		EffectiveTo:   t.EffectiveTo,
		CreatedAt:     t.CreatedAt,
	}
}
