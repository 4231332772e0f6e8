package handler

import (
	"github.com/gin-gonic/gin"

	ledgerapp "github.com/ardash/backend/internal/application/ledger"
)

// DashboardHandler serves the aggregate views backing the dashboard
type DashboardHandler struct {
	BaseHandler
	dashboardService *ledgerapp.DashboardService
}

// NewDashboardHandler creates a new DashboardHandler
func NewDashboardHandler(dashboardService *ledgerapp.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboardService: dashboardService}
}

// RegisterRoutes registers dashboard routes
func (h *DashboardHandler) RegisterRoutes(rg *gin.RouterGroup) {
	dashboard := rg.Group("/dashboard")
	{
		dashboard.GET("/summary", h.Summary)
		dashboard.GET("/breakdown", h.Breakdown)
		dashboard.GET("/filters", h.FilterValues)
	}
}

// Summary returns per-bucket counts and totals, optionally region-scoped
func (h *DashboardHandler) Summary(c *gin.Context) {
	summary, err := h.dashboardService.Summary(c.Request.Context(), c.Query("region"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, summary)
}

// Breakdown returns the per-company or per-property breakdown table
func (h *DashboardHandler) Breakdown(c *gin.Context) {
	rows, err := h.dashboardService.Breakdown(
		c.Request.Context(),
		c.Query("region"),
		c.DefaultQuery("group_by", "company"),
		c.Query("sort"),
	)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, rows)
}

// FilterValues returns the distinct values for the dashboard filter controls
func (h *DashboardHandler) FilterValues(c *gin.Context) {
	values, err := h.dashboardService.FilterValues(c.Request.Context(), c.Query("region"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, values)
}
