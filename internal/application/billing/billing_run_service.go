package billing

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/estateops/backend/internal/domain/billing"
	"github.com/estateops/backend/internal/domain/metering"
	"github.com/estateops/backend/internal/domain/shared"
)

// RunConfig tunes the billing run engine
type RunConfig struct {
	// Workers is the number of meters processed concurrently
	Workers int
	// RatioTolerance bounds how far allocation ratios may stray from summing
	// to 1 before the engine falls back to an equal split
	RatioTolerance decimal.Decimal
	// InvoiceDueDays is the payment term applied to generated invoices
	InvoiceDueDays int
}

// DefaultRunConfig returns the engine defaults
func DefaultRunConfig() RunConfig {
	return RunConfig{
		Workers:        4,
		RatioTolerance: decimal.RequireFromString("0.001"),
		InvoiceDueDays: 14,
	}
}

// BillingRunService computes utility bills from meter readings and tariffs
// over a billing period.
//
// A run is idempotent: bills are keyed by (unit, utility type, period) and a
// re-run recalculates them in place. Data problems (missing readings,
// negative deltas, absent tariffs) skip the meter concerned and surface as
// warnings; storage failures abort the run and surface as the run's error.
type BillingRunService struct {
	meterRepo   metering.MeterRepository
	readingRepo metering.ReadingRepository
	tariffRepo  metering.TariffRepository
	billRepo    billing.BillRepository
	invoicer    InvoicingGateway
	config      RunConfig
	logger      *zap.Logger
}

// NewBillingRunService creates a new BillingRunService. The invoicing gateway
// is optional; without one, runs with create_invoices are rejected.
func NewBillingRunService(
	meterRepo metering.MeterRepository,
	readingRepo metering.ReadingRepository,
	tariffRepo metering.TariffRepository,
	billRepo billing.BillRepository,
	invoicer InvoicingGateway,
	config RunConfig,
	logger *zap.Logger,
) *BillingRunService {
	if config.Workers <= 0 {
		config.Workers = DefaultRunConfig().Workers
	}
	if config.RatioTolerance.IsZero() {
		config.RatioTolerance = DefaultRunConfig().RatioTolerance
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BillingRunService{
		meterRepo:   meterRepo,
		readingRepo: readingRepo,
		tariffRepo:  tariffRepo,
		billRepo:    billRepo,
		invoicer:    invoicer,
		config:      config,
		logger:      logger,
	}
}

// meterOutcome is what one worker produced for one meter
type meterOutcome struct {
	createdBills int
	updatedBills int
	warnings     []billing.RunWarning
	bills        []*billing.UtilityBill
}

// Run executes a billing run for the period. Meters are processed by a
// worker pool; when the context expires mid-run the processed subset is kept
// and the result is flagged incomplete.
func (s *BillingRunService) Run(ctx context.Context, orgID uuid.UUID, req RunBillingRequest) (*billing.RunResult, error) {
	periodStart := metering.TruncateToDate(req.PeriodStart)
	periodEnd := metering.TruncateToDate(req.PeriodEnd)
	if !periodEnd.After(periodStart) {
		return nil, shared.NewDomainError("INVALID_PERIOD", "Period end must be after period start")
	}
	if req.CreateInvoices && s.invoicer == nil {
		return nil, shared.NewDomainError("INVOICING_UNAVAILABLE", "No invoicing gateway is configured")
	}

	var utilityType *metering.UtilityType
	if req.UtilityType != "" {
		ut, err := metering.ParseUtilityType(req.UtilityType)
		if err != nil {
			return nil, err
		}
		utilityType = &ut
	}

	meters, err := s.meterRepo.FindBillable(ctx, orgID, req.PropertyID, utilityType)
	if err != nil {
		return nil, err
	}

	s.logger.Info("billing run started",
		zap.String("org_id", orgID.String()),
		zap.Time("period_start", periodStart),
		zap.Time("period_end", periodEnd),
		zap.Int("meters", len(meters)),
		zap.Int("workers", s.config.Workers))

	result := &billing.RunResult{Warnings: make([]billing.RunWarning, 0)}

	jobs := make(chan *metering.Meter)
	var mu sync.Mutex
	var wg sync.WaitGroup
	var bills []*billing.UtilityBill
	var runErr error
	processed := 0

	for w := 0; w < s.config.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for meter := range jobs {
				mu.Lock()
				aborted := runErr != nil
				mu.Unlock()
				if aborted {
					continue
				}

				outcome, err := s.processMeter(ctx, orgID, meter, periodStart, periodEnd)
				mu.Lock()
				if err != nil {
					if runErr == nil {
						runErr = err
					}
					mu.Unlock()
					continue
				}
				processed++
				result.CreatedBills += outcome.createdBills
				result.UpdatedBills += outcome.updatedBills
				result.Warnings = append(result.Warnings, outcome.warnings...)
				bills = append(bills, outcome.bills...)
				mu.Unlock()
			}
		}()
	}

feed:
	for i := range meters {
		select {
		case jobs <- &meters[i]:
		case <-ctx.Done():
			break feed
		}
	}
	close(jobs)
	wg.Wait()

	if runErr != nil {
		s.logger.Error("billing run aborted",
			zap.String("org_id", orgID.String()),
			zap.Error(runErr))
		return nil, runErr
	}

	if processed < len(meters) {
		result.Incomplete = true
		result.Warnings = append(result.Warnings, billing.RunWarning{Message: billing.WarnRunIncomplete})
	}

	if req.CreateInvoices && !result.Incomplete {
		dueDate := metering.TruncateToDate(req.DueDate)
		if req.DueDate.IsZero() {
			dueDate = periodEnd.AddDate(0, 0, s.config.InvoiceDueDays)
		}
		s.generateInvoices(ctx, orgID, periodStart, periodEnd, dueDate, bills, result)
	}

	s.logger.Info("billing run finished",
		zap.String("org_id", orgID.String()),
		zap.Int("created_bills", result.CreatedBills),
		zap.Int("updated_bills", result.UpdatedBills),
		zap.Int("warnings", len(result.Warnings)),
		zap.Bool("incomplete", result.Incomplete))

	return result, nil
}

// processMeter bills one meter over the period. Data problems (absent
// readings, negative deltas, missing tariffs) turn into warnings and skip
// the meter; storage failures are returned and abort the run.
func (s *BillingRunService) processMeter(ctx context.Context, orgID uuid.UUID, meter *metering.Meter, periodStart, periodEnd time.Time) (meterOutcome, error) {
	var outcome meterOutcome

	baseline, err := s.readingRepo.LatestOnOrBefore(ctx, meter.ID, periodStart)
	if err != nil {
		if !errors.Is(err, shared.ErrNotFound) {
			return outcome, err
		}
		outcome.warnings = append(outcome.warnings, billing.MeterWarning(meter.ID, billing.WarnMissingReading))
		return outcome, nil
	}
	ending, err := s.readingRepo.LatestOnOrBefore(ctx, meter.ID, periodEnd)
	if err != nil {
		if !errors.Is(err, shared.ErrNotFound) {
			return outcome, err
		}
		outcome.warnings = append(outcome.warnings, billing.MeterWarning(meter.ID, billing.WarnMissingReading))
		return outcome, nil
	}
	if !ending.ReadingDate.After(baseline.ReadingDate) {
		outcome.warnings = append(outcome.warnings, billing.MeterWarning(meter.ID, billing.WarnMissingReading))
		return outcome, nil
	}

	consumption := billing.Consumption(baseline, ending)
	if consumption.IsNegative() {
		outcome.warnings = append(outcome.warnings, billing.MeterWarning(meter.ID, billing.WarnNegativeConsumption))
		return outcome, nil
	}

	candidates, err := s.tariffRepo.FindCandidates(ctx, orgID, meter.PropertyID, meter.UtilityType, periodEnd)
	if err != nil {
		return outcome, err
	}
	tariff := metering.SelectTariff(candidates, periodEnd)
	if tariff == nil {
		outcome.warnings = append(outcome.warnings, billing.MeterWarning(meter.ID, billing.WarnNoTariff))
		return outcome, nil
	}

	rawCharge := billing.ComputeCharge(consumption, tariff)

	var charges []billing.UnitCharge
	if meter.IsShared {
		alloc := billing.AllocateShared(consumption, rawCharge, tariff, meter.Shares(), s.config.RatioTolerance)
		if alloc.FellBack {
			outcome.warnings = append(outcome.warnings, billing.MeterWarning(meter.ID, billing.WarnRatioFallback))
		}
		charges = alloc.Charges
	} else {
		units := meter.AllocatedUnits()
		if len(units) != 1 {
			outcome.warnings = append(outcome.warnings, billing.MeterWarning(meter.ID, "exclusive meter has no unit allocation"))
			return outcome, nil
		}
		charges = []billing.UnitCharge{billing.AllocateExclusive(consumption, rawCharge, tariff, units[0])}
	}

	for _, charge := range charges {
		created, bill, err := s.upsertBill(ctx, orgID, meter, charge, tariff.Currency, periodStart, periodEnd)
		if err != nil {
			return outcome, err
		}
		if created {
			outcome.createdBills++
		} else {
			outcome.updatedBills++
		}
		outcome.bills = append(outcome.bills, bill)
	}

	return outcome, nil
}

// upsertBill creates or recalculates the bill for the charge's unit and
// period. Returns whether a new bill was created.
func (s *BillingRunService) upsertBill(ctx context.Context, orgID uuid.UUID, meter *metering.Meter, charge billing.UnitCharge, currency string, periodStart, periodEnd time.Time) (bool, *billing.UtilityBill, error) {
	existing, err := s.billRepo.FindByPeriodKey(ctx, orgID, charge.UnitID, meter.UtilityType, periodStart, periodEnd)
	if err == nil {
		existing.Recalculate(charge, currency, meter.ID)
		if err := s.billRepo.Upsert(ctx, existing); err != nil {
			return false, nil, err
		}
		return false, existing, nil
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return false, nil, err
	}

	bill, err := billing.NewUtilityBill(orgID, charge.UnitID, meter.UtilityType, periodStart, periodEnd, charge, currency, meter.ID)
	if err != nil {
		return false, nil, err
	}
	if err := s.billRepo.Upsert(ctx, bill); err != nil {
		return false, nil, err
	}
	return true, bill, nil
}

// generateInvoices groups the run's bills by unit and materializes one
// invoice per unit and period through the gateway.
func (s *BillingRunService) generateInvoices(ctx context.Context, orgID uuid.UUID, periodStart, periodEnd, dueDate time.Time, bills []*billing.UtilityBill, result *billing.RunResult) {
	byUnit := make(map[uuid.UUID][]*billing.UtilityBill)
	for _, b := range bills {
		byUnit[b.UnitID] = append(byUnit[b.UnitID], b)
	}

	unitIDs := make([]uuid.UUID, 0, len(byUnit))
	for unitID := range byUnit {
		unitIDs = append(unitIDs, unitID)
	}
	sort.Slice(unitIDs, func(i, j int) bool { return unitIDs[i].String() < unitIDs[j].String() })

	for _, unitID := range unitIDs {
		unitBills := byUnit[unitID]
		lines := make([]InvoiceLine, 0, len(unitBills))
		for _, b := range unitBills {
			lines = append(lines, InvoiceLine{
				BillID:      b.ID,
				Description: fmt.Sprintf("%s %s to %s", b.UtilityType, b.PeriodStart.Format("2006-01-02"), b.PeriodEnd.Format("2006-01-02")),
				Amount:      b.Amount,
				Currency:    b.Currency,
			})
		}

		invoiceID, created, err := s.invoicer.UpsertInvoiceForUnitPeriod(ctx, orgID, unitID, periodStart, periodEnd, dueDate, lines)
		if err != nil {
			id := unitID
			result.Warnings = append(result.Warnings, billing.RunWarning{UnitID: &id, Message: "invoicing failed: " + err.Error()})
			continue
		}
		if created {
			result.CreatedInvoices++
		} else {
			result.UpdatedInvoices++
		}

		for _, b := range unitBills {
			b.AttachInvoice(invoiceID)
			if err := s.billRepo.Save(ctx, b); err != nil {
				id := unitID
				result.Warnings = append(result.Warnings, billing.RunWarning{UnitID: &id, Message: "invoice linkage failed: " + err.Error()})
			}
		}
	}
}
