package handler

import (
	"github.com/gin-gonic/gin"

	meteringapp "github.com/estateops/backend/internal/application/metering"
)

// TariffHandler handles tariff table API endpoints
type TariffHandler struct {
	BaseHandler
	tariffService *meteringapp.TariffService
}

// NewTariffHandler creates a new TariffHandler
func NewTariffHandler(tariffService *meteringapp.TariffService) *TariffHandler {
	return &TariffHandler{tariffService: tariffService}
}

// RegisterRoutes registers tariff routes on the given group
func (h *TariffHandler) RegisterRoutes(rg *gin.RouterGroup) {
	tariffs := rg.Group("/metering/tariffs")
	{
		tariffs.POST("", h.Add)
		tariffs.GET("", h.List)
		tariffs.GET("/resolve", h.Resolve)
	}
}

// Add inserts a new effective-dated tariff row. Rate changes are new rows;
// existing rows are never mutated.
func (h *TariffHandler) Add(c *gin.Context) {
	orgID, err := getOrgID(c)
	if err != nil {
		h.BadRequest(c, "Invalid organization ID")
		return
	}

	var req meteringapp.AddTariffRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	tariff, err := h.tariffService.Add(c.Request.Context(), orgID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, tariff)
}

// List returns tariff rows filtered by property and utility type
func (h *TariffHandler) List(c *gin.Context) {
	orgID, err := getOrgID(c)
	if err != nil {
		h.BadRequest(c, "Invalid organization ID")
		return
	}

	var filter meteringapp.TariffListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	result, err := h.tariffService.List(c.Request.Context(), orgID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, result.Items, result.Total, result.Page, result.PageSize)
}

// Resolve answers which tariff applies to a property and utility type on a
// given date
func (h *TariffHandler) Resolve(c *gin.Context) {
	orgID, err := getOrgID(c)
	if err != nil {
		h.BadRequest(c, "Invalid organization ID")
		return
	}

	var query meteringapp.ResolveTariffQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	tariff, err := h.tariffService.ResolveAt(c.Request.Context(), orgID, query)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, tariff)
}
