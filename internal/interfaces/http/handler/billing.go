package handler

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"

	billingapp "github.com/estateops/backend/internal/application/billing"
)

// BillingHandler handles billing run and bill query API endpoints
type BillingHandler struct {
	BaseHandler
	runService  *billingapp.BillingRunService
	billService *billingapp.BillService
	runTimeout  time.Duration
}

// NewBillingHandler creates a new BillingHandler. The run timeout bounds the
// wall-clock time of one billing run; an expired run returns its processed
// subset flagged incomplete.
func NewBillingHandler(runService *billingapp.BillingRunService, billService *billingapp.BillService, runTimeout time.Duration) *BillingHandler {
	return &BillingHandler{
		runService:  runService,
		billService: billService,
		runTimeout:  runTimeout,
	}
}

// RegisterRoutes registers billing routes on the given group
func (h *BillingHandler) RegisterRoutes(rg *gin.RouterGroup) {
	billing := rg.Group("/billing")
	{
		billing.POST("/run", h.Run)
		billing.GET("/bills", h.ListBills)
	}
}

// Run executes a billing run over a period. The run is idempotent; re-runs
// recalculate existing bills instead of duplicating them.
func (h *BillingHandler) Run(c *gin.Context) {
	orgID, err := getOrgID(c)
	if err != nil {
		h.BadRequest(c, "Invalid organization ID")
		return
	}

	var req billingapp.RunBillingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	ctx := c.Request.Context()
	if h.runTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.runTimeout)
		defer cancel()
	}

	result, err := h.runService.Run(ctx, orgID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// ListBills returns bills filtered by unit, utility type and period
func (h *BillingHandler) ListBills(c *gin.Context) {
	orgID, err := getOrgID(c)
	if err != nil {
		h.BadRequest(c, "Invalid organization ID")
		return
	}

	var filter billingapp.BillListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	result, err := h.billService.List(c.Request.Context(), orgID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, result.Items, result.Total, result.Page, result.PageSize)
}
