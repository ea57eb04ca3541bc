// Package events provides event types
package events

import "time"

// ProgressEventType names what happened to a roadmap's progress.
type ProgressEventType string

const (
	StepCompleted   ProgressEventType = "step_completed"
	StepUncompleted ProgressEventType = "step_uncompleted"
	RoadmapReset    ProgressEventType = "roadmap_reset"
)

// ProgressEvent is emitted by the progress store after every mutation.
// PhaseIndex and StepIndex are -1 for resets.
type ProgressEvent struct {
	Type       ProgressEventType `json:"type"`
	RoadmapID  string            `json:"roadmapId"`
	PhaseIndex int               `json:"phaseIndex"`
	StepIndex  int               `json:"stepIndex"`
	OccurredAt time.Time         `json:"occurredAt"`
	Persisted  bool              `json:"persisted"`
}
