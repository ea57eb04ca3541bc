package middleware

import (
	"time"

	"github.com/AtRiskMedia/edify/internal/infrastructure/observability/logging"
	"github.com/AtRiskMedia/edify/internal/infrastructure/security"
	"github.com/gin-gonic/gin"
)

// RequestIDHeader carries the per-request ULID.
const RequestIDHeader = "X-Request-ID"

const requestIDKey = "requestId"

// RequestID assigns each request a ULID (or keeps a well-formed incoming
// one) and logs the outcome on the system channel at debug level.
func RequestID(logger *logging.ChanneledLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		id := c.GetHeader(RequestIDHeader)
		if id == "" || len(id) > 64 {
			id = security.GenerateULID()
		}
		c.Set(requestIDKey, id)
		c.Header(RequestIDHeader, id)

		c.Next()

		logger.System().Debug("Request handled",
			"requestId", id,
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"duration", time.Since(start))
	}
}

// GetRequestID returns the id assigned by RequestID.
func GetRequestID(c *gin.Context) string {
	return c.GetString(requestIDKey)
}
