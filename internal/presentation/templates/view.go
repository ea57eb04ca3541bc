package templates

import (
	"github.com/AtRiskMedia/edify/internal/application/services"
	"github.com/AtRiskMedia/edify/internal/domain/entities/content"
)

// Page names understood by the renderer.
const (
	PageHome      = "home"
	PageAbout     = "about"
	PageRoadmaps  = "roadmaps"
	PageRoadmap   = "roadmap"
	PageResources = "resources"
	PageAppHub    = "app-hub"
	PageContact   = "contact"
	PageNotFound  = "not-found"
)

// PageData is passed to every page; Body holds the page specific view.
type PageData struct {
	Title     string
	Active    string
	RequestID string
	Flash     string
	Error     string
	Body      any
}

// RoadmapCard pairs a roadmap with its progress.
type RoadmapCard struct {
	Roadmap *content.Roadmap
	Summary *services.RoadmapSummary
}

// HomeBody lists roadmaps already under way ahead of the rest.
type HomeBody struct {
	InProgress []RoadmapCard
	Available  []RoadmapCard
}

// RoadmapsBody is the roadmap index.
type RoadmapsBody struct {
	Cards []RoadmapCard
}

// RoadmapBody is a single roadmap with per-step completion.
type RoadmapBody struct {
	RoadmapCard
}

// ResourcesBody lists the resource library.
type ResourcesBody struct {
	Categories []content.ResourceCategory
}

// AppHubBody lists the app guides.
type AppHubBody struct {
	Categories []content.AppHubCategory
}

// ContactBody re-fills the form after a rejected submission.
type ContactBody struct {
	Form       services.ContactRequest
	Submission *services.ContactSubmission
}
