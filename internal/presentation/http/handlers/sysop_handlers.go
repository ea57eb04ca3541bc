package handlers

import (
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/AtRiskMedia/edify/internal/application/services"
	"github.com/AtRiskMedia/edify/internal/infrastructure/messaging"
	"github.com/AtRiskMedia/edify/internal/infrastructure/observability/logging"
	"github.com/gin-gonic/gin"
)

// SysOpHandlers handles operator authentication, runtime log levels and
// diagnostics
type SysOpHandlers struct {
	sysopService   *services.SysOpService
	catalogService *services.CatalogService
	sse            *messaging.SSEBroadcaster
	hub            *messaging.Hub
	logger         *logging.ChanneledLogger
}

// NewSysOpHandlers creates new SysOp handlers
func NewSysOpHandlers(
	sysopService *services.SysOpService,
	catalogService *services.CatalogService,
	sse *messaging.SSEBroadcaster,
	hub *messaging.Hub,
	logger *logging.ChanneledLogger,
) *SysOpHandlers {
	return &SysOpHandlers{
		sysopService:   sysopService,
		catalogService: catalogService,
		sse:            sse,
		hub:            hub,
		logger:         logger,
	}
}

// Login handles POST /api/sysop/login
func (h *SysOpHandlers) Login(c *gin.Context) {
	var request struct {
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	result, err := h.sysopService.Login(request.Password)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"token":     result.Token,
		"expiresAt": result.ExpiresAt,
	})
}

// SysOpAuthMiddleware protects SysOp-specific endpoints with a bearer token.
// The log stream cannot set headers from EventSource, so a token query
// parameter is accepted as well.
func (h *SysOpHandlers) SysOpAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := ""
		authHeader := c.GetHeader("Authorization")
		if len(authHeader) > 7 && strings.HasPrefix(authHeader, "Bearer ") {
			token = authHeader[7:]
		} else {
			token = c.Query("token")
		}

		if err := h.sysopService.ValidateToken(token); err != nil {
			h.logger.Auth().Warn("Rejected sysop request", "path", c.Request.URL.Path, "error", err.Error())
			c.AbortWithStatusJSON(statusFor(err), gin.H{"error": "Unauthorized"})
			return
		}
		c.Next()
	}
}

// GetLogLevels handles GET /api/sysop/logs/levels
func (h *SysOpHandlers) GetLogLevels(c *gin.Context) {
	c.JSON(http.StatusOK, h.sysopService.LogLevels())
}

// SetLogLevel handles POST /api/sysop/logs/levels
func (h *SysOpHandlers) SetLogLevel(c *gin.Context) {
	var req struct {
		Channel string `json:"channel" binding:"required"`
		Level   string `json:"level" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	if err := h.sysopService.SetLogLevel(req.Channel, req.Level); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to set log level", "details": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "message": fmt.Sprintf("Log level for channel '%s' set to '%s'", req.Channel, req.Level)})
}

// GetPerformance handles GET /api/sysop/performance
func (h *SysOpHandlers) GetPerformance(c *gin.Context) {
	logStreams := 0
	if broadcaster := h.logger.Broadcaster(); broadcaster != nil {
		logStreams = broadcaster.ClientCount()
	}
	c.JSON(http.StatusOK, gin.H{
		"performance": h.sysopService.Performance(),
		"connections": gin.H{
			"sse":       h.sse.ConnectionCount(),
			"websocket": h.hub.ConnectionCount(),
			"logStream": logStreams,
		},
	})
}

// ReloadCatalog handles POST /api/sysop/catalog/reload
func (h *SysOpHandlers) ReloadCatalog(c *gin.Context) {
	if err := h.catalogService.Reload(); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":   "ok",
		"roadmaps": len(h.catalogService.Roadmaps()),
	})
}

// StreamLogs handles the SSE connection for live log streaming.
func (h *SysOpHandlers) StreamLogs(c *gin.Context) {
	broadcaster := h.logger.Broadcaster()
	if broadcaster == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Log broadcaster not available"})
		return
	}

	level, err := logging.ParseLevel(c.DefaultQuery("level", "INFO"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	filters := logging.AppliedFilters{
		Channel: logging.Channel(c.DefaultQuery("channel", "all")),
		Level:   level,
	}

	openEventStream(c, h.logger.SSE())

	client := broadcaster.NewClient(filters)
	broadcaster.RegisterClient(client)
	defer broadcaster.UnregisterClient(client)

	fmt.Fprintf(c.Writer, ": connection established\n\n")
	c.Writer.Flush()

	c.Stream(func(w io.Writer) bool {
		select {
		case message, ok := <-client.Channel:
			if !ok {
				return false
			}
			fmt.Fprintf(w, "data: %s\n\n", message)
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}
