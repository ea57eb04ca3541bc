package handlers

import (
	"net/http"
	"time"

	"github.com/AtRiskMedia/edify/internal/application/services"
	"github.com/gin-gonic/gin"
)

// HealthHandlers reports liveness and storage state
type HealthHandlers struct {
	progressService *services.ProgressService
	catalogService  *services.CatalogService
	startedAt       time.Time
}

// NewHealthHandlers creates health handlers
func NewHealthHandlers(progressService *services.ProgressService, catalogService *services.CatalogService) *HealthHandlers {
	return &HealthHandlers{
		progressService: progressService,
		catalogService:  catalogService,
		startedAt:       time.Now(),
	}
}

// Healthz handles GET /healthz. A failing storage backend degrades the
// status but the server stays usable.
func (h *HealthHandlers) Healthz(c *gin.Context) {
	status := h.progressService.Status()
	state := "ok"
	if status.LastSaveError != "" || status.LoadError != "" {
		state = "degraded"
	}
	c.JSON(http.StatusOK, gin.H{
		"status":   state,
		"uptime":   time.Since(h.startedAt).Round(time.Second).String(),
		"roadmaps": len(h.catalogService.Roadmaps()),
		"storage":  status,
	})
}
