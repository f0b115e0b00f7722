package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	meteringapp "github.com/estateops/backend/internal/application/metering"
)

// MeterHandler handles meter registry API endpoints
type MeterHandler struct {
	BaseHandler
	meterService *meteringapp.MeterService
}

// NewMeterHandler creates a new MeterHandler
func NewMeterHandler(meterService *meteringapp.MeterService) *MeterHandler {
	return &MeterHandler{meterService: meterService}
}

// RegisterRoutes registers meter routes on the given group
func (h *MeterHandler) RegisterRoutes(rg *gin.RouterGroup) {
	meters := rg.Group("/metering/meters")
	{
		meters.POST("", h.Register)
		meters.GET("", h.List)
		meters.GET("/:id", h.GetByID)
		meters.PUT("/:id", h.Update)
		meters.DELETE("/:id", h.Deactivate)
		meters.POST("/:id/fault", h.MarkFaulty)
		meters.POST("/:id/restore", h.Restore)
	}
}

// Register registers a new meter. The request fails whole with a 422 when
// any of the requested units is already covered by another meter of the same
// utility type.
func (h *MeterHandler) Register(c *gin.Context) {
	orgID, err := getOrgID(c)
	if err != nil {
		h.BadRequest(c, "Invalid organization ID")
		return
	}

	var req meteringapp.RegisterMeterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	meter, err := h.meterService.Register(c.Request.Context(), orgID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, meter)
}

// List returns meters filtered by property, utility type and status
func (h *MeterHandler) List(c *gin.Context) {
	orgID, err := getOrgID(c)
	if err != nil {
		h.BadRequest(c, "Invalid organization ID")
		return
	}

	var filter meteringapp.MeterListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	result, err := h.meterService.List(c.Request.Context(), orgID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, result.Items, result.Total, result.Page, result.PageSize)
}

// GetByID returns a single meter with its unit allocation
func (h *MeterHandler) GetByID(c *gin.Context) {
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

	meter, err := h.meterService.GetByID(c.Request.Context(), orgID, meterID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, meter)
}

// Update updates a meter's details and, when shares are given, its unit
// allocation
func (h *MeterHandler) Update(c *gin.Context) {
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

	var req meteringapp.UpdateMeterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	meter, err := h.meterService.Update(c.Request.Context(), orgID, meterID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, meter)
}

// Deactivate retires a meter, releasing its unit allocation. Readings are
// retained.
func (h *MeterHandler) Deactivate(c *gin.Context) {
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

	if err := h.meterService.Deactivate(c.Request.Context(), orgID, meterID); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// MarkFaulty flags a meter as faulty; billing runs skip it until restored
func (h *MeterHandler) MarkFaulty(c *gin.Context) {
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

	meter, err := h.meterService.MarkFaulty(c.Request.Context(), orgID, meterID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, meter)
}

// Restore returns a faulty meter to service
func (h *MeterHandler) Restore(c *gin.Context) {
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

	meter, err := h.meterService.Restore(c.Request.Context(), orgID, meterID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, meter)
}
