package services

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/AtRiskMedia/edify/internal/domain/entities/content"
	"github.com/AtRiskMedia/edify/internal/domain/entities/progress"
	"github.com/AtRiskMedia/edify/internal/domain/repositories"
	domainservices "github.com/AtRiskMedia/edify/internal/domain/services"
	"github.com/AtRiskMedia/edify/internal/infrastructure/observability/logging"
	"github.com/AtRiskMedia/edify/internal/infrastructure/observability/performance"
)

// StepState is the completion state of one step.
type StepState struct {
	RoadmapID  string `json:"roadmapId"`
	PhaseIndex int    `json:"phaseIndex"`
	StepIndex  int    `json:"stepIndex"`
	Completed  bool   `json:"completed"`
}

// PhaseSummary is the progress of one phase.
type PhaseSummary struct {
	Index          int    `json:"index"`
	Name           string `json:"name"`
	Percentage     int    `json:"percentage"`
	CompletedSteps int    `json:"completedSteps"`
	TotalSteps     int    `json:"totalSteps"`
	Steps          []bool `json:"steps"`
	Complete       bool   `json:"complete"`
}

// RoadmapSummary is everything a roadmap page shows about progress.
type RoadmapSummary struct {
	RoadmapID      string         `json:"roadmapId"`
	Title          string         `json:"title"`
	Icon           string         `json:"icon"`
	Percentage     int            `json:"percentage"`
	CompletedSteps int            `json:"completedSteps"`
	TotalSteps     int            `json:"totalSteps"`
	Phases         []PhaseSummary `json:"phases"`
	Started        bool           `json:"started"`
	StartedAt      *time.Time     `json:"startedAt,omitempty"`
	LastActivityAt *time.Time     `json:"lastActivityAt,omitempty"`
	IsComplete     bool           `json:"isComplete"`
}

// ProgressStatus reports where progress lives and whether writes succeed.
type ProgressStatus struct {
	Driver string `json:"driver"`
	Key    string `json:"key"`
	domainservices.StoreHealth
}

// ProgressService joins the catalog and the progress store. It validates
// positions against the catalog; the store itself accepts any key.
type ProgressService struct {
	store       *domainservices.ProgressStore
	catalog     repositories.CatalogRepository
	driver      string
	key         string
	logger      *logging.ChanneledLogger
	perfTracker *performance.Tracker
}

// NewProgressService creates a new progress application service
func NewProgressService(
	store *domainservices.ProgressStore,
	catalog repositories.CatalogRepository,
	driver, key string,
	logger *logging.ChanneledLogger,
	perfTracker *performance.Tracker,
) *ProgressService {
	return &ProgressService{
		store:       store,
		catalog:     catalog,
		driver:      driver,
		key:         key,
		logger:      logger,
		perfTracker: perfTracker,
	}
}

func (s *ProgressService) locate(roadmapID string, phaseIndex, stepIndex int) (*content.Roadmap, error) {
	roadmap, ok := s.catalog.FindRoadmap(roadmapID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrRoadmapNotFound, roadmapID)
	}
	if phaseIndex < 0 || phaseIndex >= len(roadmap.Phases) {
		return nil, fmt.Errorf("%w: %d", ErrPhaseOutOfRange, phaseIndex)
	}
	if !roadmap.HasStep(phaseIndex, stepIndex) {
		return nil, fmt.Errorf("%w: %d", ErrStepOutOfRange, stepIndex)
	}
	return roadmap, nil
}

// Toggle validates the position and flips its completion state.
func (s *ProgressService) Toggle(roadmapID string, phaseIndex, stepIndex int) (*StepState, error) {
	marker := s.perfTracker.StartOperation("progress:toggle")
	defer s.perfTracker.CompleteOperation(marker)

	if _, err := s.locate(roadmapID, phaseIndex, stepIndex); err != nil {
		marker.SetError(err)
		return nil, err
	}

	completed := s.store.ToggleStepComplete(roadmapID, phaseIndex, stepIndex)
	s.logger.Progress().Info("Step toggled",
		"roadmapId", roadmapID,
		"phaseIndex", phaseIndex,
		"stepIndex", stepIndex,
		"completed", completed)

	return &StepState{RoadmapID: roadmapID, PhaseIndex: phaseIndex, StepIndex: stepIndex, Completed: completed}, nil
}

// Step reports the completion state of a validated position.
func (s *ProgressService) Step(roadmapID string, phaseIndex, stepIndex int) (*StepState, error) {
	if _, err := s.locate(roadmapID, phaseIndex, stepIndex); err != nil {
		return nil, err
	}
	return &StepState{
		RoadmapID:  roadmapID,
		PhaseIndex: phaseIndex,
		StepIndex:  stepIndex,
		Completed:  s.store.IsStepComplete(roadmapID, phaseIndex, stepIndex),
	}, nil
}

// RoadmapSummary computes overall and per-phase progress for one roadmap.
func (s *ProgressService) RoadmapSummary(roadmapID string) (*RoadmapSummary, error) {
	roadmap, ok := s.catalog.FindRoadmap(roadmapID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrRoadmapNotFound, roadmapID)
	}
	return s.summarize(roadmap), nil
}

// summarize works from one snapshot of the record so the figures agree
// with each other under concurrent toggles.
func (s *ProgressService) summarize(roadmap *content.Roadmap) *RoadmapSummary {
	total := roadmap.TotalSteps()
	summary := &RoadmapSummary{
		RoadmapID:  roadmap.ID,
		Title:      roadmap.Title,
		Icon:       roadmap.Icon,
		TotalSteps: total,
		Phases:     make([]PhaseSummary, len(roadmap.Phases)),
	}

	type position struct{ phase, step int }
	done := make(map[position]bool)
	record, started := s.store.GetRoadmapProgress(roadmap.ID)
	if started {
		summary.Started = true
		summary.StartedAt = &record.StartedAt
		summary.LastActivityAt = &record.LastActivityAt
		for _, step := range record.CompletedSteps {
			done[position{step.PhaseIndex, step.StepIndex}] = true
		}
	}

	for p, phase := range roadmap.Phases {
		ps := PhaseSummary{
			Index:      p,
			Name:       phase.Name,
			TotalSteps: len(phase.Steps),
			Steps:      make([]bool, len(phase.Steps)),
		}
		for i := range phase.Steps {
			if done[position{p, i}] {
				ps.Steps[i] = true
				ps.CompletedSteps++
			}
		}
		ps.Percentage = domainservices.Percentage(ps.CompletedSteps, ps.TotalSteps)
		ps.Complete = ps.TotalSteps > 0 && ps.CompletedSteps == ps.TotalSteps
		summary.CompletedSteps += ps.CompletedSteps
		summary.Phases[p] = ps
	}
	// Completions at positions the catalog no longer has are not counted.
	summary.Percentage = domainservices.Percentage(summary.CompletedSteps, total)
	summary.IsComplete = total > 0 && summary.CompletedSteps == total
	return summary
}

// Overview summarizes every roadmap in catalog order.
func (s *ProgressService) Overview() []RoadmapSummary {
	roadmaps := s.catalog.Catalog().Roadmaps
	out := make([]RoadmapSummary, 0, len(roadmaps))
	for i := range roadmaps {
		out = append(out, *s.summarize(&roadmaps[i]))
	}
	return out
}

// Reset clears a roadmap's progress. Unknown roadmaps are rejected; a
// roadmap without progress is a no-op and reports false.
func (s *ProgressService) Reset(roadmapID string) (bool, error) {
	marker := s.perfTracker.StartOperation("progress:reset")
	defer s.perfTracker.CompleteOperation(marker)

	if _, ok := s.catalog.FindRoadmap(roadmapID); !ok {
		err := fmt.Errorf("%w: %s", ErrRoadmapNotFound, roadmapID)
		marker.SetError(err)
		return false, err
	}
	removed := s.store.ResetRoadmapProgress(roadmapID)
	s.logger.Progress().Info("Roadmap reset requested", "roadmapId", roadmapID, "removed", removed)
	return removed, nil
}

// Records returns the raw collection, including records for roadmaps no
// longer in the catalog.
func (s *ProgressService) Records() progress.Collection {
	return s.store.All()
}

// Export renders the collection in its persisted layout.
func (s *ProgressService) Export() ([]byte, error) {
	data, err := json.MarshalIndent(s.store.All(), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to export progress: %w", err)
	}
	return data, nil
}

// Status reports the storage backend and the last write outcome.
func (s *ProgressService) Status() ProgressStatus {
	return ProgressStatus{Driver: s.driver, Key: s.key, StoreHealth: s.store.Health()}
}
