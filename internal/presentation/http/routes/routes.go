// Package routes wires HTTP handlers to the gin router.
package routes

import (
	"net/http"
	"strings"

	"github.com/AtRiskMedia/edify/internal/application/container"
	"github.com/AtRiskMedia/edify/internal/presentation/http/handlers"
	"github.com/AtRiskMedia/edify/internal/presentation/http/middleware"
	"github.com/AtRiskMedia/edify/internal/presentation/templates"
	"github.com/gin-gonic/gin"
)

// SetupRoutes builds the router. It panics if the page templates do not
// parse, which can only happen with a broken build.
func SetupRoutes(container *container.Container) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID(container.Logger))
	r.Use(middleware.CORSMiddleware(container.Config.CORS.AllowedOrigins))

	renderer, err := templates.NewRenderer()
	if err != nil {
		panic(err)
	}
	r.HTMLRender = renderer

	catalogHandlers := handlers.NewCatalogHandlers(container.CatalogService, container.Logger)
	progressHandlers := handlers.NewProgressHandlers(
		container.ProgressService,
		container.ProgressSSE,
		container.ProgressHub,
		container.Config.CORS.AllowedOrigins,
		container.Config.SSE.HeartbeatInterval,
		container.Logger,
		container.PerfTracker,
	)
	contactHandlers := handlers.NewContactHandlers(container.ContactService, container.Logger)
	sysopHandlers := handlers.NewSysOpHandlers(
		container.SysOpService,
		container.CatalogService,
		container.ProgressSSE,
		container.ProgressHub,
		container.Logger,
	)
	healthHandlers := handlers.NewHealthHandlers(container.ProgressService, container.CatalogService)
	pageHandlers := handlers.NewPageHandlers(
		container.CatalogService,
		container.ProgressService,
		container.ContactService,
		container.Logger,
	)

	r.GET("/healthz", healthHandlers.Healthz)

	// Pages
	r.GET("/", pageHandlers.Home)
	r.GET("/about", pageHandlers.About)
	r.GET("/roadmaps", pageHandlers.Roadmaps)
	r.GET("/roadmaps/:id", pageHandlers.Roadmap)
	r.POST("/roadmaps/:id/phases/:phase/steps/:step/toggle", pageHandlers.ToggleStep)
	r.POST("/roadmaps/:id/reset", pageHandlers.ResetRoadmap)
	r.GET("/resources", pageHandlers.Resources)
	r.GET("/app-hub", pageHandlers.AppHub)
	r.GET("/contact", pageHandlers.Contact)
	r.POST("/contact", pageHandlers.SubmitContact)

	api := r.Group("/api/v1")
	{
		api.GET("/roadmaps", catalogHandlers.GetRoadmaps)
		api.GET("/roadmaps/:id", catalogHandlers.GetRoadmap)
		api.GET("/resources", catalogHandlers.GetResources)
		api.GET("/app-hub", catalogHandlers.GetAppHub)

		progressAPI := api.Group("/progress")
		{
			progressAPI.GET("", progressHandlers.GetOverview)
			progressAPI.GET("/status", progressHandlers.GetStatus)
			progressAPI.GET("/events", progressHandlers.StreamEvents)
			progressAPI.GET("/ws", progressHandlers.ServeWebSocket)
			progressAPI.GET("/:roadmapId", progressHandlers.GetRoadmapProgress)
			progressAPI.DELETE("/:roadmapId", progressHandlers.ResetRoadmap)
			progressAPI.GET("/:roadmapId/phases/:phase/steps/:step", progressHandlers.GetStep)
			progressAPI.POST("/:roadmapId/phases/:phase/steps/:step/toggle", progressHandlers.ToggleStep)
		}

		api.POST("/contact", contactHandlers.Submit)
	}

	sysopAPI := r.Group("/api/sysop")
	{
		sysopAPI.POST("/login", sysopHandlers.Login)

		sysopAPI.Use(sysopHandlers.SysOpAuthMiddleware())
		sysopAPI.GET("/logs/levels", sysopHandlers.GetLogLevels)
		sysopAPI.POST("/logs/levels", sysopHandlers.SetLogLevel)
		sysopAPI.GET("/logs/stream", sysopHandlers.StreamLogs)
		sysopAPI.GET("/performance", sysopHandlers.GetPerformance)
		sysopAPI.POST("/catalog/reload", sysopHandlers.ReloadCatalog)
	}

	r.NoRoute(func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/api/") {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		pageHandlers.NotFound(c)
	})

	return r
}
