package handler

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	ledgerapp "github.com/ardash/backend/internal/application/ledger"
	"github.com/ardash/backend/internal/infrastructure/logger"
	"github.com/ardash/backend/internal/interfaces/http/middleware"
)

// SyncHandler exposes the sync pipeline over HTTP
type SyncHandler struct {
	BaseHandler
	syncService *ledgerapp.SyncService
}

// NewSyncHandler creates a new SyncHandler
func NewSyncHandler(syncService *ledgerapp.SyncService) *SyncHandler {
	return &SyncHandler{syncService: syncService}
}

// RegisterRoutes registers sync routes
func (h *SyncHandler) RegisterRoutes(rg *gin.RouterGroup) {
	sync := rg.Group("/sync")
	{
		sync.POST("/run", h.Run)
		sync.GET("/status", h.Status)
	}
}

// Run triggers a sync run, attributed to the caller. A run already in
// progress yields 409.
func (h *SyncHandler) Run(c *gin.Context) {
	logger.GetGinLogger(c).Info("Sync run requested",
		zap.String("triggered_by", middleware.GetJWTUsername(c)))

	result, err := h.syncService.Sync(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// Status returns the last completed sync time
func (h *SyncHandler) Status(c *gin.Context) {
	status, err := h.syncService.Status(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, status)
}
