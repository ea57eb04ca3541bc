// Package progress defines the completion-tracking entities owned by the progress store.
package progress

import "time"

// StepProgress records one completed step, addressed by catalog position.
type StepProgress struct {
	RoadmapID   string    `json:"roadmapId"`
	PhaseIndex  int       `json:"phaseIndex"`
	StepIndex   int       `json:"stepIndex"`
	CompletedAt time.Time `json:"completedAt"`
}

// Matches reports whether the entry addresses (phaseIndex, stepIndex).
func (s StepProgress) Matches(phaseIndex, stepIndex int) bool {
	return s.PhaseIndex == phaseIndex && s.StepIndex == stepIndex
}

// RoadmapProgress is everything recorded for a single roadmap.
type RoadmapProgress struct {
	RoadmapID      string         `json:"roadmapId"`
	CompletedSteps []StepProgress `json:"completedSteps"`
	StartedAt      time.Time      `json:"startedAt"`
	LastActivityAt time.Time      `json:"lastActivityAt"`
}

// CompletedInPhase counts completed entries for one phase.
func (r *RoadmapProgress) CompletedInPhase(phaseIndex int) int {
	n := 0
	for _, s := range r.CompletedSteps {
		if s.PhaseIndex == phaseIndex {
			n++
		}
	}
	return n
}

// Clone returns a deep copy so callers cannot mutate store state.
func (r *RoadmapProgress) Clone() *RoadmapProgress {
	if r == nil {
		return nil
	}
	out := *r
	out.CompletedSteps = make([]StepProgress, len(r.CompletedSteps))
	copy(out.CompletedSteps, r.CompletedSteps)
	return &out
}

// Collection is the ordered set of records persisted under the storage key.
type Collection []RoadmapProgress

// Clone deep-copies the collection.
func (c Collection) Clone() Collection {
	out := make(Collection, len(c))
	for i := range c {
		out[i] = *c[i].Clone()
	}
	return out
}
