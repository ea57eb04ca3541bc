package handlers

import (
	"net/http"
	"time"

	"github.com/AtRiskMedia/edify/internal/application/services"
	"github.com/AtRiskMedia/edify/internal/infrastructure/observability/logging"
	"github.com/gin-gonic/gin"
)

// CatalogHandlers serves the read-only roadmap, resource and app hub content
type CatalogHandlers struct {
	catalogService *services.CatalogService
	logger         *logging.ChanneledLogger
}

// NewCatalogHandlers creates catalog handlers with injected dependencies
func NewCatalogHandlers(catalogService *services.CatalogService, logger *logging.ChanneledLogger) *CatalogHandlers {
	return &CatalogHandlers{
		catalogService: catalogService,
		logger:         logger,
	}
}

// GetRoadmaps handles GET /api/v1/roadmaps
func (h *CatalogHandlers) GetRoadmaps(c *gin.Context) {
	start := time.Now()
	roadmaps := h.catalogService.Roadmaps()
	h.logger.Content().Debug("Get roadmaps request completed", "count", len(roadmaps), "duration", time.Since(start))
	c.JSON(http.StatusOK, gin.H{
		"roadmaps": roadmaps,
		"count":    len(roadmaps),
	})
}

// GetRoadmap handles GET /api/v1/roadmaps/:id
func (h *CatalogHandlers) GetRoadmap(c *gin.Context) {
	roadmap, err := h.catalogService.Roadmap(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"roadmap":    roadmap,
		"totalSteps": roadmap.TotalSteps(),
	})
}

// GetResources handles GET /api/v1/resources
func (h *CatalogHandlers) GetResources(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"resources": h.catalogService.Resources()})
}

// GetAppHub handles GET /api/v1/app-hub
func (h *CatalogHandlers) GetAppHub(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"appHub": h.catalogService.AppHub()})
}
