// Package services holds domain services that own state and invariants
// independent of any transport or storage technology.
package services

import (
	"errors"
	"io"
	"log/slog"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/AtRiskMedia/edify/internal/domain/entities/progress"
	"github.com/AtRiskMedia/edify/internal/domain/events"
	"github.com/AtRiskMedia/edify/internal/domain/repositories"
)

// ProgressListener receives an event after every mutation has been applied
// and written. It runs on the mutating goroutine and must not block.
type ProgressListener = func(events.ProgressEvent)

// StoreHealth describes the persistence state of a store.
type StoreHealth struct {
	Storage       string    `json:"storage"`
	Roadmaps      int       `json:"roadmaps"`
	LastSavedAt   time.Time `json:"lastSavedAt,omitzero"`
	LastSaveError string    `json:"lastSaveError,omitempty"`
	LoadError     string    `json:"loadError,omitempty"`
}

// ProgressStore is the single source of truth for what the local user has
// completed. Steps are addressed by (roadmapID, phaseIndex, stepIndex) and
// never validated against the catalog.
type ProgressStore struct {
	mu        sync.Mutex
	storage   repositories.ProgressStorage
	progress  progress.Collection
	now       func() time.Time
	logger    *slog.Logger
	listeners map[int]ProgressListener
	nextID    int

	lastSavedAt time.Time
	lastSaveErr error
	loadErr     error
}

// StoreOption configures a ProgressStore.
type StoreOption func(*ProgressStore)

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) StoreOption {
	return func(s *ProgressStore) { s.now = now }
}

// WithLogger sets the diagnostic logger.
func WithLogger(logger *slog.Logger) StoreOption {
	return func(s *ProgressStore) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewProgressStore rehydrates a store from storage. Missing data yields an
// empty store; unreadable data is logged and also yields an empty store.
func NewProgressStore(storage repositories.ProgressStorage, opts ...StoreOption) *ProgressStore {
	s := &ProgressStore{
		storage:   storage,
		progress:  progress.Collection{},
		now:       time.Now,
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		listeners: make(map[int]ProgressListener),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.load()
	return s
}

func (s *ProgressStore) load() {
	loaded, err := s.storage.Load()
	switch {
	case errors.Is(err, repositories.ErrNotFound):
		s.logger.Info("No stored progress, starting empty", "storage", s.storage.Describe())
		return
	case err != nil:
		s.loadErr = err
		s.logger.Error("Failed to load stored progress, starting empty", "storage", s.storage.Describe(), "error", err.Error())
		return
	}

	s.progress = normalize(loaded, s.logger)
	s.logger.Info("Progress loaded", "storage", s.storage.Describe(), "roadmaps", len(s.progress))
}

// normalize drops duplicate roadmap records and duplicate step triples so a
// hand-edited or older document cannot break the uniqueness invariants.
func normalize(in progress.Collection, logger *slog.Logger) progress.Collection {
	out := make(progress.Collection, 0, len(in))
	seenRoadmaps := make(map[string]bool, len(in))
	for _, record := range in {
		if seenRoadmaps[record.RoadmapID] {
			logger.Warn("Dropping duplicate roadmap record", "roadmapId", record.RoadmapID)
			continue
		}
		seenRoadmaps[record.RoadmapID] = true

		type key struct{ phase, step int }
		seenSteps := make(map[key]bool, len(record.CompletedSteps))
		steps := make([]progress.StepProgress, 0, len(record.CompletedSteps))
		for _, step := range record.CompletedSteps {
			k := key{step.PhaseIndex, step.StepIndex}
			if seenSteps[k] {
				logger.Warn("Dropping duplicate step entry", "roadmapId", record.RoadmapID, "phaseIndex", step.PhaseIndex, "stepIndex", step.StepIndex)
				continue
			}
			seenSteps[k] = true
			step.RoadmapID = record.RoadmapID
			steps = append(steps, step)
		}
		record.CompletedSteps = steps
		out = append(out, record)
	}
	return out
}

func (s *ProgressStore) indexOf(roadmapID string) int {
	for i := range s.progress {
		if s.progress[i].RoadmapID == roadmapID {
			return i
		}
	}
	return -1
}

// ToggleStepComplete flips a step between complete and incomplete and
// returns the new state. The record is created on first use, its
// lastActivityAt always advances, and the whole collection is written
// before returning.
func (s *ProgressStore) ToggleStepComplete(roadmapID string, phaseIndex, stepIndex int) bool {
	s.mu.Lock()

	now := s.now().UTC()
	var record progress.RoadmapProgress
	if i := s.indexOf(roadmapID); i >= 0 {
		record = s.progress[i]
		s.progress = append(s.progress[:i:i], s.progress[i+1:]...)
	} else {
		record = progress.RoadmapProgress{
			RoadmapID:      roadmapID,
			CompletedSteps: []progress.StepProgress{},
			StartedAt:      now,
			LastActivityAt: now,
		}
	}

	completed := true
	steps := make([]progress.StepProgress, 0, len(record.CompletedSteps)+1)
	for _, step := range record.CompletedSteps {
		if step.Matches(phaseIndex, stepIndex) {
			completed = false
			continue
		}
		steps = append(steps, step)
	}
	if completed {
		steps = append(steps, progress.StepProgress{
			RoadmapID:   roadmapID,
			PhaseIndex:  phaseIndex,
			StepIndex:   stepIndex,
			CompletedAt: now,
		})
	}
	record.CompletedSteps = steps
	record.LastActivityAt = now

	// The touched record moves to the end of the collection.
	s.progress = append(s.progress, record)
	persisted := s.persistLocked()
	s.mu.Unlock()

	eventType := events.StepCompleted
	if !completed {
		eventType = events.StepUncompleted
	}
	s.logger.Debug("Step toggled", "roadmapId", roadmapID, "phaseIndex", phaseIndex, "stepIndex", stepIndex, "completed", completed)
	s.notify(events.ProgressEvent{
		Type:       eventType,
		RoadmapID:  roadmapID,
		PhaseIndex: phaseIndex,
		StepIndex:  stepIndex,
		OccurredAt: now,
		Persisted:  persisted,
	})
	return completed
}

// IsStepComplete reports whether the step has a completion entry.
func (s *ProgressStore) IsStepComplete(roadmapID string, phaseIndex, stepIndex int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(roadmapID)
	if i < 0 {
		return false
	}
	for _, step := range s.progress[i].CompletedSteps {
		if step.Matches(phaseIndex, stepIndex) {
			return true
		}
	}
	return false
}

// GetRoadmapProgress returns a copy of the record, or false when the
// roadmap has never been touched.
func (s *ProgressStore) GetRoadmapProgress(roadmapID string) (*progress.RoadmapProgress, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(roadmapID)
	if i < 0 {
		return nil, false
	}
	return s.progress[i].Clone(), true
}

// GetCompletionPercentage is round(completed/totalSteps*100) clamped to
// [0, 100]; 0 when totalSteps is not positive or nothing is recorded.
func (s *ProgressStore) GetCompletionPercentage(roadmapID string, totalSteps int) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(roadmapID)
	if i < 0 {
		return 0
	}
	return Percentage(len(s.progress[i].CompletedSteps), totalSteps)
}

// GetPhaseCompletionPercentage is GetCompletionPercentage restricted to one phase.
func (s *ProgressStore) GetPhaseCompletionPercentage(roadmapID string, phaseIndex, phaseStepCount int) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(roadmapID)
	if i < 0 {
		return 0
	}
	return Percentage(s.progress[i].CompletedInPhase(phaseIndex), phaseStepCount)
}

// ResetRoadmapProgress deletes the roadmap's record. It reports whether a
// record existed; resetting an untouched roadmap writes nothing.
func (s *ProgressStore) ResetRoadmapProgress(roadmapID string) bool {
	s.mu.Lock()
	i := s.indexOf(roadmapID)
	if i < 0 {
		s.mu.Unlock()
		return false
	}
	s.progress = append(s.progress[:i:i], s.progress[i+1:]...)
	persisted := s.persistLocked()
	now := s.now().UTC()
	s.mu.Unlock()

	s.logger.Info("Roadmap progress reset", "roadmapId", roadmapID)
	s.notify(events.ProgressEvent{
		Type:       events.RoadmapReset,
		RoadmapID:  roadmapID,
		PhaseIndex: -1,
		StepIndex:  -1,
		OccurredAt: now,
		Persisted:  persisted,
	})
	return true
}

// All returns a copy of the whole collection in stored order.
func (s *ProgressStore) All() progress.Collection {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.progress.Clone()
}

// RoadmapIDs returns the ids of every tracked roadmap, sorted.
func (s *ProgressStore) RoadmapIDs() []string {
	s.mu.Lock()
	ids := make([]string, len(s.progress))
	for i := range s.progress {
		ids[i] = s.progress[i].RoadmapID
	}
	s.mu.Unlock()
	sort.Strings(ids)
	return ids
}

// Subscribe registers a listener and returns a function that removes it.
func (s *ProgressStore) Subscribe(listener ProgressListener) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = listener
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.listeners, id)
			s.mu.Unlock()
		})
	}
}

// Health reports the storage backend and the outcome of the last write.
func (s *ProgressStore) Health() StoreHealth {
	s.mu.Lock()
	defer s.mu.Unlock()

	h := StoreHealth{
		Storage:     s.storage.Describe(),
		Roadmaps:    len(s.progress),
		LastSavedAt: s.lastSavedAt,
	}
	if s.lastSaveErr != nil {
		h.LastSaveError = s.lastSaveErr.Error()
	}
	if s.loadErr != nil {
		h.LoadError = s.loadErr.Error()
	}
	return h
}

// persistLocked writes the whole collection. A failed write is logged and
// remembered; the in-memory state stays authoritative.
func (s *ProgressStore) persistLocked() bool {
	if err := s.storage.Save(s.progress); err != nil {
		s.lastSaveErr = err
		s.logger.Error("Failed to persist progress", "storage", s.storage.Describe(), "error", err.Error())
		return false
	}
	s.lastSaveErr = nil
	s.lastSavedAt = s.now().UTC()
	return true
}

func (s *ProgressStore) notify(event events.ProgressEvent) {
	s.mu.Lock()
	ids := make([]int, 0, len(s.listeners))
	for id := range s.listeners {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	listeners := make([]ProgressListener, 0, len(ids))
	for _, id := range ids {
		listeners = append(listeners, s.listeners[id])
	}
	s.mu.Unlock()

	for _, listener := range listeners {
		listener(event)
	}
}

// Percentage is round(done/total*100) clamped to [0, 100]; 0 when total <= 0.
func Percentage(done, total int) int {
	if total <= 0 || done <= 0 {
		return 0
	}
	p := int(math.Round(float64(done) / float64(total) * 100))
	if p > 100 {
		return 100
	}
	return p
}
