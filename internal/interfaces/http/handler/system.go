package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/ardash/backend/internal/infrastructure/persistence"
)

// SystemHandler serves health and readiness endpoints
type SystemHandler struct {
	BaseHandler
	db *persistence.Database
}

// NewSystemHandler creates a new SystemHandler
func NewSystemHandler(db *persistence.Database) *SystemHandler {
	return &SystemHandler{db: db}
}

// RegisterRoutes registers system routes
func (h *SystemHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/health", h.Health)
}

// Health reports liveness and database connectivity
func (h *SystemHandler) Health(c *gin.Context) {
	status := gin.H{"status": "ok"}
	if h.db != nil {
		if err := h.db.Ping(); err != nil {
			status["status"] = "degraded"
			status["database"] = "unreachable"
			h.Success(c, status)
			return
		}
		status["database"] = "ok"
	}
	h.Success(c, status)
}
