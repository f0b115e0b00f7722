package metering

import (
	"context"

	"github.com/google/uuid"

	"github.com/estateops/backend/internal/domain/metering"
	"github.com/estateops/backend/internal/domain/shared"
)

// MeterService handles meter registry operations
type MeterService struct {
	meterRepo metering.MeterRepository
	txScope   TransactionScope
}

// NewMeterService creates a new MeterService
func NewMeterService(meterRepo metering.MeterRepository, txScope TransactionScope) *MeterService {
	return &MeterService{
		meterRepo: meterRepo,
		txScope:   txScope,
	}
}

// Register registers a new meter. The exclusivity check and the insert run in
// one transaction; on overlap the request fails whole with an
// AllocationConflictError listing every contested unit.
func (s *MeterService) Register(ctx context.Context, orgID uuid.UUID, req RegisterMeterRequest) (*MeterResponse, error) {
	utilityType, err := metering.ParseUtilityType(req.UtilityType)
	if err != nil {
		return nil, err
	}

	var meter *metering.Meter
	if req.IsShared {
		if len(req.Shares) == 0 {
			return nil, shared.NewDomainError("INVALID_ALLOCATION", "Shared meter requires unit shares")
		}
		meter, err = metering.NewSharedMeter(orgID, req.PropertyID, utilityType, toUnitShares(req.Shares))
	} else {
		if req.UnitID == nil {
			return nil, shared.NewDomainError("INVALID_UNIT", "Exclusive meter requires a unit_id")
		}
		meter, err = metering.NewExclusiveMeter(orgID, req.PropertyID, *req.UnitID, utilityType)
	}
	if err != nil {
		return nil, err
	}

	if err := meter.SetDetails(req.MeterNumber, req.Name, req.Location); err != nil {
		return nil, err
	}
	if req.InstalledOn != nil {
		meter.SetInstalledOn(*req.InstalledOn)
	}

	err = s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		if err := checkExclusivity(ctx, repos.MeterRepo(), meter); err != nil {
			return err
		}
		return repos.MeterRepo().Save(ctx, meter)
	})
	if err != nil {
		return nil, err
	}

	response := ToMeterResponse(meter)
	return &response, nil
}

// Update updates a meter's details and, when shares are given, its unit
// allocation. Reallocation re-runs the exclusivity check in the same
// transaction as the write.
func (s *MeterService) Update(ctx context.Context, orgID, meterID uuid.UUID, req UpdateMeterRequest) (*MeterResponse, error) {
	var response MeterResponse
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		meter, err := repos.MeterRepo().FindByIDForOrg(ctx, orgID, meterID)
		if err != nil {
			return err
		}

		if err := meter.SetDetails(req.MeterNumber, req.Name, req.Location); err != nil {
			return err
		}
		if req.InstalledOn != nil {
			meter.SetInstalledOn(*req.InstalledOn)
		}

		if req.Shares != nil {
			if err := meter.ReplaceAssignments(toUnitShares(req.Shares)); err != nil {
				return err
			}
			if err := checkExclusivity(ctx, repos.MeterRepo(), meter); err != nil {
				return err
			}
		}

		if err := repos.MeterRepo().Save(ctx, meter); err != nil {
			return err
		}
		response = ToMeterResponse(meter)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &response, nil
}

// Deactivate retires a meter, releasing its unit allocation
func (s *MeterService) Deactivate(ctx context.Context, orgID, meterID uuid.UUID) error {
	meter, err := s.meterRepo.FindByIDForOrg(ctx, orgID, meterID)
	if err != nil {
		return err
	}
	if err := meter.Deactivate(); err != nil {
		return err
	}
	return s.meterRepo.Save(ctx, meter)
}

// MarkFaulty flags a meter as faulty. The meter keeps its unit allocation and
// is skipped by billing runs until restored.
func (s *MeterService) MarkFaulty(ctx context.Context, orgID, meterID uuid.UUID) (*MeterResponse, error) {
	meter, err := s.meterRepo.FindByIDForOrg(ctx, orgID, meterID)
	if err != nil {
		return nil, err
	}
	if err := meter.MarkFaulty(); err != nil {
		return nil, err
	}
	if err := s.meterRepo.Save(ctx, meter); err != nil {
		return nil, err
	}
	response := ToMeterResponse(meter)
	return &response, nil
}

// Restore returns a faulty meter to service
func (s *MeterService) Restore(ctx context.Context, orgID, meterID uuid.UUID) (*MeterResponse, error) {
	meter, err := s.meterRepo.FindByIDForOrg(ctx, orgID, meterID)
	if err != nil {
		return nil, err
	}
	if err := meter.Restore(); err != nil {
		return nil, err
	}
	if err := s.meterRepo.Save(ctx, meter); err != nil {
		return nil, err
	}
	response := ToMeterResponse(meter)
	return &response, nil
}

// GetByID retrieves a meter by ID
func (s *MeterService) GetByID(ctx context.Context, orgID, meterID uuid.UUID) (*MeterResponse, error) {
	meter, err := s.meterRepo.FindByIDForOrg(ctx, orgID, meterID)
	if err != nil {
		return nil, err
	}
	response := ToMeterResponse(meter)
	return &response, nil
}

// List retrieves meters with filtering and pagination
func (s *MeterService) List(ctx context.Context, orgID uuid.UUID, filter MeterListFilter) (*shared.Paginated[MeterResponse], error) {
	f := shared.DefaultFilter()
	if filter.Page > 0 {
		f.Page = filter.Page
	}
	if filter.PageSize > 0 {
		f.PageSize = filter.PageSize
	}
	if filter.OrderBy != "" {
		f.OrderBy = filter.OrderBy
	}
	if filter.OrderDir != "" {
		f.OrderDir = filter.OrderDir
	}
	if filter.PropertyID != nil {
		f.Filters["property_id"] = *filter.PropertyID
	}
	if filter.UtilityType != "" {
		f.Filters["utility_type"] = filter.UtilityType
	}
	if filter.Status != "" {
		f.Filters["status"] = filter.Status
	}

	meters, err := s.meterRepo.FindAllForOrg(ctx, orgID, f)
	if err != nil {
		return nil, err
	}
	total, err := s.meterRepo.CountForOrg(ctx, orgID, f)
	if err != nil {
		return nil, err
	}

	responses := make([]MeterResponse, 0, len(meters))
	for i := range meters {
		responses = append(responses, ToMeterResponse(&meters[i]))
	}
	result := shared.NewPaginated(responses, total, f.Page, f.PageSize)
	return &result, nil
}

// checkExclusivity verifies that no other allocation-holding meter of the
// same utility type within the property covers any of the meter's units.
// Inactive meters have released their allocation and are ignored; faulty
// meters still hold theirs.
func checkExclusivity(ctx context.Context, repo metering.MeterRepository, meter *metering.Meter) error {
	if !meter.CoversUnits() {
		return nil
	}

	existing, err := repo.FindCovering(ctx, meter.OrgID, meter.PropertyID, meter.UtilityType)
	if err != nil {
		return err
	}

	claimed := make(map[uuid.UUID]bool)
	for i := range existing {
		if existing[i].ID == meter.ID {
			continue
		}
		for _, unitID := range existing[i].AllocatedUnits() {
			claimed[unitID] = true
		}
	}

	var conflicts []metering.UnitConflict
	for _, unitID := range meter.AllocatedUnits() {
		if claimed[unitID] {
			conflicts = append(conflicts, metering.UnitConflict{
				UnitID:      unitID,
				UtilityType: meter.UtilityType,
			})
		}
	}
	if len(conflicts) > 0 {
		return metering.NewAllocationConflictError(conflicts)
	}
	return nil
}

func toUnitShares(reqs []UnitShareRequest) []metering.UnitShare {
	shares := make([]metering.UnitShare, 0, len(reqs))
	for _, r := range reqs {
		shares = append(shares, metering.UnitShare{UnitID: r.UnitID, Ratio: r.Ratio})
	}
	return shares
}
