package handlers

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"slices"
	"time"

	"github.com/AtRiskMedia/edify/internal/application/services"
	"github.com/AtRiskMedia/edify/internal/infrastructure/messaging"
	"github.com/AtRiskMedia/edify/internal/infrastructure/observability/logging"
	"github.com/AtRiskMedia/edify/internal/infrastructure/observability/performance"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// ProgressHandlers exposes the progress store over JSON, SSE and websockets
type ProgressHandlers struct {
	progressService *services.ProgressService
	sse             *messaging.SSEBroadcaster
	hub             *messaging.Hub
	upgrader        websocket.Upgrader
	heartbeat       time.Duration
	logger          *logging.ChanneledLogger
	perfTracker     *performance.Tracker
}

// NewProgressHandlers creates progress handlers with injected dependencies.
// Websocket upgrades are accepted from same-host pages and allowedOrigins.
func NewProgressHandlers(
	progressService *services.ProgressService,
	sse *messaging.SSEBroadcaster,
	hub *messaging.Hub,
	allowedOrigins []string,
	heartbeat time.Duration,
	logger *logging.ChanneledLogger,
	perfTracker *performance.Tracker,
) *ProgressHandlers {
	if heartbeat <= 0 {
		heartbeat = 30 * time.Second
	}
	return &ProgressHandlers{
		progressService: progressService,
		sse:             sse,
		hub:             hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(allowedOrigins),
		},
		heartbeat:   heartbeat,
		logger:      logger,
		perfTracker: perfTracker,
	}
}

func originChecker(allowed []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		if slices.Contains(allowed, origin) {
			return true
		}
		u, err := url.Parse(origin)
		return err == nil && u.Host == r.Host
	}
}

// GetOverview handles GET /api/v1/progress
func (h *ProgressHandlers) GetOverview(c *gin.Context) {
	overview := h.progressService.Overview()
	c.JSON(http.StatusOK, gin.H{
		"roadmaps": overview,
		"count":    len(overview),
	})
}

// GetStatus handles GET /api/v1/progress/status
func (h *ProgressHandlers) GetStatus(c *gin.Context) {
	c.JSON(http.StatusOK, h.progressService.Status())
}

// GetRoadmapProgress handles GET /api/v1/progress/:roadmapId
func (h *ProgressHandlers) GetRoadmapProgress(c *gin.Context) {
	summary, err := h.progressService.RoadmapSummary(c.Param("roadmapId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// GetStep handles GET /api/v1/progress/:roadmapId/phases/:phase/steps/:step
func (h *ProgressHandlers) GetStep(c *gin.Context) {
	phaseIndex, stepIndex, ok := position(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "phase and step must be integers"})
		return
	}
	state, err := h.progressService.Step(c.Param("roadmapId"), phaseIndex, stepIndex)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, state)
}

// ToggleStep handles POST /api/v1/progress/:roadmapId/phases/:phase/steps/:step/toggle
func (h *ProgressHandlers) ToggleStep(c *gin.Context) {
	marker := h.perfTracker.StartOperation("api:progress:toggle")
	defer h.perfTracker.CompleteOperation(marker)

	phaseIndex, stepIndex, ok := position(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "phase and step must be integers"})
		return
	}
	roadmapID := c.Param("roadmapId")
	state, err := h.progressService.Toggle(roadmapID, phaseIndex, stepIndex)
	if err != nil {
		marker.SetError(err)
		respondError(c, err)
		return
	}
	summary, err := h.progressService.RoadmapSummary(roadmapID)
	if err != nil {
		marker.SetError(err)
		respondError(c, err)
		return
	}

	marker.SetSuccess(true)
	c.JSON(http.StatusOK, gin.H{
		"step":    state,
		"summary": summary,
	})
}

// ResetRoadmap handles DELETE /api/v1/progress/:roadmapId
func (h *ProgressHandlers) ResetRoadmap(c *gin.Context) {
	roadmapID := c.Param("roadmapId")
	removed, err := h.progressService.Reset(roadmapID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"roadmapId": roadmapID,
		"removed":   removed,
	})
}

// StreamEvents handles GET /api/v1/progress/events. An optional roadmapId
// query parameter limits the stream to one roadmap.
func (h *ProgressHandlers) StreamEvents(c *gin.Context) {
	roadmapID := c.Query("roadmapId")

	var snapshot any
	if roadmapID != "" {
		summary, err := h.progressService.RoadmapSummary(roadmapID)
		if err != nil {
			respondError(c, err)
			return
		}
		snapshot = summary
	} else {
		snapshot = h.progressService.Overview()
	}
	initial, err := messaging.FormatEvent("snapshot", snapshot)
	if err != nil {
		respondError(c, err)
		return
	}

	openEventStream(c, h.logger.SSE())

	clientID, events := h.sse.AddClient(roadmapID)
	defer h.sse.RemoveClient(clientID)

	h.logger.SSE().Info("Progress stream opened",
		"clientId", clientID,
		"roadmapId", roadmapID,
		"totalConnections", h.sse.ConnectionCount())

	fmt.Fprint(c.Writer, initial)
	c.Writer.Flush()

	heartbeat := time.NewTicker(h.heartbeat)
	defer heartbeat.Stop()

	c.Stream(func(w io.Writer) bool {
		select {
		case message, ok := <-events:
			if !ok {
				return false
			}
			fmt.Fprint(w, message)
			return true
		case <-heartbeat.C:
			fmt.Fprintf(w, ": heartbeat %d\n\n", time.Now().Unix())
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})

	h.logger.SSE().Info("Progress stream closed", "clientId", clientID)
}

// ServeWebSocket handles GET /api/v1/progress/ws
func (h *ProgressHandlers) ServeWebSocket(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.SSE().Warn("Websocket upgrade failed", "error", err.Error())
		return
	}
	h.logger.SSE().Info("Websocket client connected", "remoteAddr", c.ClientIP())
	h.hub.Serve(conn)
}
