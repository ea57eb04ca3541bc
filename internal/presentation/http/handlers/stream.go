package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// openEventStream writes the SSE headers and clears the server's write
// deadline for this connection. Streams outlive Server.WriteTimeout.
func openEventStream(c *gin.Context, logger *slog.Logger) {
	if err := http.NewResponseController(c.Writer).SetWriteDeadline(time.Time{}); err != nil {
		logger.Debug("Write deadline not cleared", "path", c.Request.URL.Path, "error", err.Error())
	}
	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
}
