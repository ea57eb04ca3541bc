package handlers

import (
	"fmt"
	"net/http"

	"github.com/AtRiskMedia/edify/internal/application/services"
	"github.com/AtRiskMedia/edify/internal/infrastructure/observability/logging"
	"github.com/AtRiskMedia/edify/internal/presentation/http/middleware"
	"github.com/AtRiskMedia/edify/internal/presentation/templates"
	"github.com/gin-gonic/gin"
)

// PageHandlers renders the server-side pages. Toggles and resets are plain
// form posts answered with a redirect back to the roadmap.
type PageHandlers struct {
	catalogService  *services.CatalogService
	progressService *services.ProgressService
	contactService  *services.ContactService
	logger          *logging.ChanneledLogger
}

// NewPageHandlers creates page handlers with injected dependencies
func NewPageHandlers(
	catalogService *services.CatalogService,
	progressService *services.ProgressService,
	contactService *services.ContactService,
	logger *logging.ChanneledLogger,
) *PageHandlers {
	return &PageHandlers{
		catalogService:  catalogService,
		progressService: progressService,
		contactService:  contactService,
		logger:          logger,
	}
}

func (h *PageHandlers) render(c *gin.Context, code int, page, title string, data templates.PageData) {
	data.Title = title
	data.Active = page
	if page == templates.PageRoadmap {
		data.Active = templates.PageRoadmaps
	}
	data.RequestID = middleware.GetRequestID(c)
	c.HTML(code, page, data)
}

func (h *PageHandlers) cards() []templates.RoadmapCard {
	summaries := make(map[string]*services.RoadmapSummary)
	overview := h.progressService.Overview()
	for i := range overview {
		summaries[overview[i].RoadmapID] = &overview[i]
	}

	roadmaps := h.catalogService.Roadmaps()
	cards := make([]templates.RoadmapCard, 0, len(roadmaps))
	for i := range roadmaps {
		summary, ok := summaries[roadmaps[i].ID]
		if !ok {
			continue
		}
		cards = append(cards, templates.RoadmapCard{Roadmap: &roadmaps[i], Summary: summary})
	}
	return cards
}

// Home handles GET /
func (h *PageHandlers) Home(c *gin.Context) {
	var body templates.HomeBody
	for _, card := range h.cards() {
		if card.Summary.Started && !card.Summary.IsComplete {
			body.InProgress = append(body.InProgress, card)
		} else {
			body.Available = append(body.Available, card)
		}
	}
	h.render(c, http.StatusOK, templates.PageHome, "Home", templates.PageData{Body: body})
}

// About handles GET /about
func (h *PageHandlers) About(c *gin.Context) {
	h.render(c, http.StatusOK, templates.PageAbout, "About", templates.PageData{})
}

// Roadmaps handles GET /roadmaps
func (h *PageHandlers) Roadmaps(c *gin.Context) {
	h.render(c, http.StatusOK, templates.PageRoadmaps, "Roadmaps", templates.PageData{
		Body: templates.RoadmapsBody{Cards: h.cards()},
	})
}

// Roadmap handles GET /roadmaps/:id
func (h *PageHandlers) Roadmap(c *gin.Context) {
	roadmap, err := h.catalogService.Roadmap(c.Param("id"))
	if err != nil {
		h.NotFound(c)
		return
	}
	summary, err := h.progressService.RoadmapSummary(roadmap.ID)
	if err != nil {
		h.NotFound(c)
		return
	}

	data := templates.PageData{
		Body: templates.RoadmapBody{RoadmapCard: templates.RoadmapCard{Roadmap: roadmap, Summary: summary}},
	}
	if c.Query("reset") == "1" {
		data.Flash = "Progress for this roadmap has been reset."
	}
	h.render(c, http.StatusOK, templates.PageRoadmap, roadmap.Title, data)
}

// ToggleStep handles POST /roadmaps/:id/phases/:phase/steps/:step/toggle
func (h *PageHandlers) ToggleStep(c *gin.Context) {
	roadmapID := c.Param("id")
	phaseIndex, stepIndex, ok := position(c)
	if !ok {
		h.NotFound(c)
		return
	}
	if _, err := h.progressService.Toggle(roadmapID, phaseIndex, stepIndex); err != nil {
		h.logger.Progress().Warn("Rejected toggle from page", "roadmapId", roadmapID, "error", err.Error())
		h.NotFound(c)
		return
	}
	c.Redirect(http.StatusSeeOther, fmt.Sprintf("/roadmaps/%s#step-%d-%d", roadmapID, phaseIndex, stepIndex))
}

// ResetRoadmap handles POST /roadmaps/:id/reset
func (h *PageHandlers) ResetRoadmap(c *gin.Context) {
	roadmapID := c.Param("id")
	if _, err := h.progressService.Reset(roadmapID); err != nil {
		h.NotFound(c)
		return
	}
	c.Redirect(http.StatusSeeOther, "/roadmaps/"+roadmapID+"?reset=1")
}

// Resources handles GET /resources
func (h *PageHandlers) Resources(c *gin.Context) {
	h.render(c, http.StatusOK, templates.PageResources, "Resources", templates.PageData{
		Body: templates.ResourcesBody{Categories: h.catalogService.Resources()},
	})
}

// AppHub handles GET /app-hub
func (h *PageHandlers) AppHub(c *gin.Context) {
	h.render(c, http.StatusOK, templates.PageAppHub, "App Hub", templates.PageData{
		Body: templates.AppHubBody{Categories: h.catalogService.AppHub()},
	})
}

// Contact handles GET /contact
func (h *PageHandlers) Contact(c *gin.Context) {
	h.render(c, http.StatusOK, templates.PageContact, "Contact", templates.PageData{
		Body: templates.ContactBody{},
	})
}

// SubmitContact handles POST /contact
func (h *PageHandlers) SubmitContact(c *gin.Context) {
	var form services.ContactRequest
	if err := c.ShouldBind(&form); err != nil {
		h.render(c, http.StatusBadRequest, templates.PageContact, "Contact", templates.PageData{
			Error: "The form could not be read. Please try again.",
			Body:  templates.ContactBody{Form: form},
		})
		return
	}

	submission, err := h.contactService.Submit(form)
	if err != nil {
		h.render(c, statusFor(err), templates.PageContact, "Contact", templates.PageData{
			Error: err.Error(),
			Body:  templates.ContactBody{Form: form},
		})
		return
	}
	h.render(c, http.StatusOK, templates.PageContact, "Contact", templates.PageData{
		Flash: "Message sent.",
		Body:  templates.ContactBody{Submission: submission},
	})
}

// NotFound renders the 404 page.
func (h *PageHandlers) NotFound(c *gin.Context) {
	h.render(c, http.StatusNotFound, templates.PageNotFound, "Not found", templates.PageData{})
}
