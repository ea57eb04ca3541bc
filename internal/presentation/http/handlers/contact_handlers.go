package handlers

import (
	"net/http"

	"github.com/AtRiskMedia/edify/internal/application/services"
	"github.com/AtRiskMedia/edify/internal/infrastructure/observability/logging"
	"github.com/gin-gonic/gin"
)

// ContactHandlers accepts contact form submissions
type ContactHandlers struct {
	contactService *services.ContactService
	logger         *logging.ChanneledLogger
}

// NewContactHandlers creates contact handlers with injected dependencies
func NewContactHandlers(contactService *services.ContactService, logger *logging.ChanneledLogger) *ContactHandlers {
	return &ContactHandlers{
		contactService: contactService,
		logger:         logger,
	}
}

// Submit handles POST /api/v1/contact
func (h *ContactHandlers) Submit(c *gin.Context) {
	var req services.ContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	submission, err := h.contactService.Submit(req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, submission)
}
