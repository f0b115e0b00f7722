package billing

import (
	"context"

	"github.com/google/uuid"

	"github.com/estateops/backend/internal/domain/billing"
	"github.com/estateops/backend/internal/domain/metering"
	"github.com/estateops/backend/internal/domain/shared"
)

// BillService handles utility bill queries
type BillService struct {
	billRepo billing.BillRepository
}

// NewBillService creates a new BillService
func NewBillService(billRepo billing.BillRepository) *BillService {
	return &BillService{billRepo: billRepo}
}

// List retrieves bills with filtering and pagination
func (s *BillService) List(ctx context.Context, orgID uuid.UUID, filter BillListFilter) (*shared.Paginated[BillResponse], error) {
	f := shared.DefaultFilter()
	f.OrderBy = "period_start"
	if filter.Page > 0 {
		f.Page = filter.Page
	}
	if filter.PageSize > 0 {
		f.PageSize = filter.PageSize
	}
	if filter.UnitID != nil {
		f.Filters["unit_id"] = *filter.UnitID
	}
	if filter.UtilityType != "" {
		f.Filters["utility_type"] = filter.UtilityType
	}
	if filter.PeriodStart != nil {
		f.Filters["period_start"] = metering.TruncateToDate(*filter.PeriodStart)
	}
	if filter.PeriodEnd != nil {
		f.Filters["period_end"] = metering.TruncateToDate(*filter.PeriodEnd)
	}

	bills, err := s.billRepo.FindAllForOrg(ctx, orgID, f)
	if err != nil {
		return nil, err
	}
	total, err := s.billRepo.CountForOrg(ctx, orgID, f)
	if err != nil {
		return nil, err
	}

	responses := make([]BillResponse, 0, len(bills))
	for i := range bills {
		responses = append(responses, ToBillResponse(&bills[i]))
	}
	result := shared.NewPaginated(responses, total, f.Page, f.PageSize)
	return &result, nil
}
