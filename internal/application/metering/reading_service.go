package metering

import (
	"context"

	"github.com/google/uuid"

	"github.com/estateops/backend/internal/domain/metering"
	"github.com/estateops/backend/internal/domain/shared"
)

// ReadingService handles meter reading ingestion and queries
type ReadingService struct {
	meterRepo   metering.MeterRepository
	readingRepo metering.ReadingRepository
}

// NewReadingService creates a new ReadingService
func NewReadingService(meterRepo metering.MeterRepository, readingRepo metering.ReadingRepository) *ReadingService {
	return &ReadingService{
		meterRepo:   meterRepo,
		readingRepo: readingRepo,
	}
}

// RecordBulk ingests a reading sheet for one property. Items are processed
// independently: a bad item (unknown meter, wrong property, inactive meter,
// negative value) is reported by position and the rest of the sheet still
// lands. A reading for an existing (meter, date) pair replaces the stored
// value.
func (s *ReadingService) RecordBulk(ctx context.Context, orgID uuid.UUID, req BulkReadingsRequest) (*BulkReadingsResponse, error) {
	response := &BulkReadingsResponse{Errors: make([]BulkReadingError, 0)}

	reject := func(i int, item BulkReadingItem, message string) {
		id := item.MeterID
		date := item.ReadingDate
		response.Errors = append(response.Errors, BulkReadingError{
			Index:       i,
			MeterID:     &id,
			ReadingDate: &date,
			Message:     message,
		})
	}

	// Meters repeat across sheet rows; resolve each once.
	meters := make(map[uuid.UUID]*metering.Meter)

	for i, item := range req.Readings {
		meter, ok := meters[item.MeterID]
		if !ok {
			var err error
			meter, err = s.meterRepo.FindByIDForOrg(ctx, orgID, item.MeterID)
			if err != nil {
				reject(i, item, "unknown meter")
				continue
			}
			meters[item.MeterID] = meter
		}

		if meter.PropertyID != req.PropertyID {
			reject(i, item, "meter does not belong to the property")
			continue
		}
		if !meter.IsActive() {
			reject(i, item, "meter is not active")
			continue
		}

		reading, err := metering.NewMeterReading(orgID, meter.ID, item.ReadingDate, item.Value, item.IsEstimated, item.Notes)
		if err != nil {
			reject(i, item, err.Error())
			continue
		}

		if err := s.readingRepo.UpsertByDate(ctx, reading); err != nil {
			reject(i, item, err.Error())
			continue
		}

		response.Count++
	}

	return response, nil
}

// ListForMeter retrieves a meter's reading series, newest first
func (s *ReadingService) ListForMeter(ctx context.Context, orgID, meterID uuid.UUID, filter ReadingListFilter) (*shared.Paginated[ReadingResponse], error) {
	if _, err := s.meterRepo.FindByIDForOrg(ctx, orgID, meterID); err != nil {
		return nil, err
	}

	f := shared.DefaultFilter()
	f.OrderBy = "reading_date"
	if filter.Page > 0 {
		f.Page = filter.Page
	}
	if filter.PageSize > 0 {
		f.PageSize = filter.PageSize
	}
	if filter.From != nil {
		f.Filters["from"] = metering.TruncateToDate(*filter.From)
	}
	if filter.To != nil {
		f.Filters["to"] = metering.TruncateToDate(*filter.To)
	}

	readings, err := s.readingRepo.FindByMeter(ctx, orgID, meterID, f)
	if err != nil {
		return nil, err
	}
	total, err := s.readingRepo.CountByMeter(ctx, orgID, meterID)
	if err != nil {
		return nil, err
	}

	responses := make([]ReadingResponse, 0, len(readings))
	for i := range readings {
		responses = append(responses, ToReadingResponse(&readings[i]))
	}
	result := shared.NewPaginated(responses, total, f.Page, f.PageSize)
	return &result, nil
}
