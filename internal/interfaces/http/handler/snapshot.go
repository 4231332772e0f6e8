package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	ledgerapp "github.com/ardash/backend/internal/application/ledger"
)

// snapshotDateLayout is the wire format for snapshot dates
const snapshotDateLayout = "2006-01-02"

// SnapshotHandler serves monthly snapshot creation and retrieval
type SnapshotHandler struct {
	BaseHandler
	dashboardService *ledgerapp.DashboardService
}

// NewSnapshotHandler creates a new SnapshotHandler
func NewSnapshotHandler(dashboardService *ledgerapp.DashboardService) *SnapshotHandler {
	return &SnapshotHandler{dashboardService: dashboardService}
}

// RegisterRoutes registers snapshot routes
func (h *SnapshotHandler) RegisterRoutes(rg *gin.RouterGroup) {
	snapshots := rg.Group("/snapshots")
	{
		snapshots.POST("", h.Create)
		snapshots.GET("", h.List)
		snapshots.GET("/:date", h.Get)
	}
}

// CreateSnapshotRequest asks for a snapshot of the current record set
type CreateSnapshotRequest struct {
	Region string `json:"region"`
	// Date defaults to today when omitted
	Date string `json:"date"`
}

// Create aggregates the current record set into a snapshot and stores it,
// overwriting any snapshot for the same date and region.
func (h *SnapshotHandler) Create(c *gin.Context) {
	var req CreateSnapshotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}

	date := time.Now().UTC()
	if req.Date != "" {
		parsed, err := time.Parse(snapshotDateLayout, req.Date)
		if err != nil {
			h.BadRequest(c, "Date must use the YYYY-MM-DD format")
			return
		}
		date = parsed
	}

	createdBy, err := getUsername(c)
	if err != nil {
		h.Unauthorized(c, "Caller identity is required")
		return
	}

	snapshot, err := h.dashboardService.CreateSnapshot(c.Request.Context(), req.Region, date, createdBy)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, snapshot)
}

// List returns the stored snapshots for a region
func (h *SnapshotHandler) List(c *gin.Context) {
	snapshots, err := h.dashboardService.ListSnapshots(c.Request.Context(), c.Query("region"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, snapshots)
}

// Get returns the snapshot for one date and region
func (h *SnapshotHandler) Get(c *gin.Context) {
	date, err := time.Parse(snapshotDateLayout, c.Param("date"))
	if err != nil {
		h.BadRequest(c, "Date must use the YYYY-MM-DD format")
		return
	}

	snapshot, err := h.dashboardService.GetSnapshot(c.Request.Context(), date, c.Query("region"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, snapshot)
}
