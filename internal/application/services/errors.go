// Package services provides application-level services that orchestrate
// business logic and coordinate between repositories and domain services.
package services

import "errors"

// Boundary errors. Handlers map them to HTTP status codes with errors.Is.
var (
	ErrRoadmapNotFound    = errors.New("roadmap not found")
	ErrPhaseOutOfRange    = errors.New("phase index out of range")
	ErrStepOutOfRange     = errors.New("step index out of range")
	ErrMessageRequired    = errors.New("message is required")
	ErrInvalidEmail       = errors.New("email address is invalid")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrSysopDisabled      = errors.New("sysop access is not configured")
)
