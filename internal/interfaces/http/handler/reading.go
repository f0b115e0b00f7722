package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	meteringapp "github.com/estateops/backend/internal/application/metering"
)

// ReadingHandler handles meter reading API endpoints
type ReadingHandler struct {
	BaseHandler
	readingService *meteringapp.ReadingService
}

// NewReadingHandler creates a new ReadingHandler
func NewReadingHandler(readingService *meteringapp.ReadingService) *ReadingHandler {
	return &ReadingHandler{readingService: readingService}
}

// RegisterRoutes registers reading routes on the given group
func (h *ReadingHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/metering/readings/bulk", h.RecordBulk)
	rg.GET("/metering/meters/:id/readings", h.ListForMeter)
}

// RecordBulk ingests a reading sheet. The response reports how many rows
// were stored and lists rejected rows by position; a bad row never sinks the
// sheet.
func (h *ReadingHandler) RecordBulk(c *gin.Context) {
	orgID, err := getOrgID(c)
	if err != nil {
		h.BadRequest(c, "Invalid organization ID")
		return
	}

	var req meteringapp.BulkReadingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	result, err := h.readingService.RecordBulk(c.Request.Context(), orgID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// ListForMeter returns a meter's reading series, newest first
func (h *ReadingHandler) ListForMeter(c *gin.Context) {
	orgID, err := getOrgID(c)
	if err != nil {
		h.BadRequest(c, "Invalid organization ID")
		return
	}

	meterID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid meter ID")
		return
	}

	var filter meteringapp.ReadingListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	result, err := h.readingService.ListForMeter(c.Request.Context(), orgID, meterID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, result.Items, result.Total, result.Page, result.PageSize)
}
