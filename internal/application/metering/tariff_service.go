package metering

import (
	"context"

	"github.com/google/uuid"

	"github.com/estateops/backend/internal/domain/metering"
	"github.com/estateops/backend/internal/domain/shared"
)

// TariffService handles the effective-dated tariff table
type TariffService struct {
	tariffRepo metering.TariffRepository
}

// NewTariffService creates a new TariffService
func NewTariffService(tariffRepo metering.TariffRepository) *TariffService {
	return &TariffService{tariffRepo: tariffRepo}
}

// Add inserts a new tariff row. Existing rows are never mutated; a rate
// change is a new row with a later effective-from date.
func (s *TariffService) Add(ctx context.Context, orgID uuid.UUID, req AddTariffRequest) (*TariffResponse, error) {
	utilityType, err := metering.ParseUtilityType(req.UtilityType)
	if err != nil {
		return nil, err
	}

	tariff, err := metering.NewUtilityTariff(orgID, req.PropertyID, utilityType,
		req.RatePerUnit, req.FixedCharge, req.Currency, req.EffectiveFrom, req.EffectiveTo)
	if err != nil {
		return nil, err
	}

	if err := s.tariffRepo.Save(ctx, tariff); err != nil {
		return nil, err
	}

	response := ToTariffResponse(tariff)
	return &response, nil
}

// List retrieves tariff rows with filtering and pagination
func (s *TariffService) List(ctx context.Context, orgID uuid.UUID, filter TariffListFilter) (*shared.Paginated[TariffResponse], error) {
	f := shared.DefaultFilter()
	f.OrderBy = "effective_from"
	if filter.Page > 0 {
		f.Page = filter.Page
	}
	if filter.PageSize > 0 {
		f.PageSize = filter.PageSize
	}
	if filter.PropertyID != nil {
		f.Filters["property_id"] = *filter.PropertyID
	}
	if filter.UtilityType != "" {
		f.Filters["utility_type"] = filter.UtilityType
	}

	tariffs, err := s.tariffRepo.FindAllForOrg(ctx, orgID, f)
	if err != nil {
		return nil, err
	}
	total, err := s.tariffRepo.CountForOrg(ctx, orgID, f)
	if err != nil {
		return nil, err
	}

	responses := make([]TariffResponse, 0, len(tariffs))
	for i := range tariffs {
		responses = append(responses, ToTariffResponse(&tariffs[i]))
	}
	result := shared.NewPaginated(responses, total, f.Page, f.PageSize)
	return &result, nil
}

// ResolveAt returns the tariff applicable to a property and utility type on a
// date, or shared.ErrNotFound when no window covers it.
func (s *TariffService) ResolveAt(ctx context.Context, orgID uuid.UUID, query ResolveTariffQuery) (*TariffResponse, error) {
	utilityType, err := metering.ParseUtilityType(query.UtilityType)
	if err != nil {
		return nil, err
	}

	candidates, err := s.tariffRepo.FindCandidates(ctx, orgID, query.PropertyID, utilityType, query.AsOf)
	if err != nil {
		return nil, err
	}

	tariff := metering.SelectTariff(candidates, query.AsOf)
	if tariff == nil {
		return nil, shared.ErrNotFound
	}

	response := ToTariffResponse(tariff)
	return &response, nil
}
