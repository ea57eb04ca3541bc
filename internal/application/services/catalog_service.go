package services

import (
	"fmt"
	"time"

	"github.com/AtRiskMedia/edify/internal/domain/entities/content"
	"github.com/AtRiskMedia/edify/internal/domain/repositories"
	"github.com/AtRiskMedia/edify/internal/infrastructure/observability/logging"
	"github.com/AtRiskMedia/edify/internal/infrastructure/observability/performance"
)

// CatalogService exposes the read-only catalog to handlers and the CLI.
type CatalogService struct {
	repo        repositories.CatalogRepository
	logger      *logging.ChanneledLogger
	perfTracker *performance.Tracker
}

// NewCatalogService creates a new catalog application service
func NewCatalogService(repo repositories.CatalogRepository, logger *logging.ChanneledLogger, perfTracker *performance.Tracker) *CatalogService {
	return &CatalogService{repo: repo, logger: logger, perfTracker: perfTracker}
}

func (s *CatalogService) Roadmaps() []content.Roadmap {
	return s.repo.Catalog().Roadmaps
}

// Roadmap returns a roadmap by id or ErrRoadmapNotFound.
func (s *CatalogService) Roadmap(id string) (*content.Roadmap, error) {
	roadmap, ok := s.repo.FindRoadmap(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrRoadmapNotFound, id)
	}
	return roadmap, nil
}

func (s *CatalogService) Resources() []content.ResourceCategory {
	return s.repo.Catalog().Resources
}

func (s *CatalogService) AppHub() []content.AppHubCategory {
	return s.repo.Catalog().AppHub
}

// TotalSteps returns the roadmap's step count, or ErrRoadmapNotFound.
func (s *CatalogService) TotalSteps(id string) (int, error) {
	roadmap, err := s.Roadmap(id)
	if err != nil {
		return 0, err
	}
	return roadmap.TotalSteps(), nil
}

// PhaseStepCount returns the step count of one phase, validating both indices.
func (s *CatalogService) PhaseStepCount(id string, phaseIndex int) (int, error) {
	roadmap, err := s.Roadmap(id)
	if err != nil {
		return 0, err
	}
	if phaseIndex < 0 || phaseIndex >= len(roadmap.Phases) {
		return 0, fmt.Errorf("%w: %d", ErrPhaseOutOfRange, phaseIndex)
	}
	return roadmap.PhaseStepCount(phaseIndex), nil
}

// Reload re-reads the catalog source.
func (s *CatalogService) Reload() error {
	start := time.Now()
	marker := s.perfTracker.StartOperation("catalog:reload")
	defer s.perfTracker.CompleteOperation(marker)

	if err := s.repo.Reload(); err != nil {
		marker.SetError(err)
		return fmt.Errorf("failed to reload catalog: %w", err)
	}
	s.logger.Content().Info("Catalog reload requested", "duration", time.Since(start))
	return nil
}
