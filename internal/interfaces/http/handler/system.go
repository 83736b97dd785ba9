package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// HealthChecker reports whether the database connection is alive.
type HealthChecker interface {
	Ping() error
}

// ReferenceInvalidator drops cached item and branch masters.
type ReferenceInvalidator interface {
	Invalidate(ctx context.Context) error
}

// SystemHandler handles health and operational endpoints
type SystemHandler struct {
	BaseHandler
	db      HealthChecker
	refresh ReferenceInvalidator // nil when the cache is disabled
	version string
	logger  *zap.Logger
}

// NewSystemHandler creates a new system handler
func NewSystemHandler(db HealthChecker, refresh ReferenceInvalidator, version string, logger *zap.Logger) *SystemHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SystemHandler{
		db:      db,
		refresh: refresh,
		version: version,
		logger:  logger,
	}
}

// RegisterRoutes registers system routes
func (h *SystemHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/health", h.Health)
	rg.POST("/reference/refresh", h.RefreshReferenceData)
}

// Health reports service and database health.
func (h *SystemHandler) Health(c *gin.Context) {
	status := "ok"
	if h.db != nil {
		if err := h.db.Ping(); err != nil {
			h.logger.Warn("Health check database ping failed", zap.Error(err))
			status = "degraded"
		}
	}
	h.Success(c, gin.H{
		"status":  status,
		"version": h.version,
	})
}

// RefreshReferenceData drops the cached item and branch masters so the
// next lookups reload them from the POS system.
func (h *SystemHandler) RefreshReferenceData(c *gin.Context) {
	if h.refresh == nil {
		h.Success(c, gin.H{"refreshed": false, "reason": "cache disabled"})
		return
	}
	if err := h.refresh.Invalidate(c.Request.Context()); err != nil {
		h.logger.Error("Reference cache refresh failed", zap.Error(err))
		h.InternalError(c, "Failed to refresh reference cache")
		return
	}
	h.Success(c, gin.H{"refreshed": true})
}
