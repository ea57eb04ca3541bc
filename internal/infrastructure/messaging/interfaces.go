// Package messaging defines interfaces for real-time communication.
package messaging

import "github.com/AtRiskMedia/edify/internal/domain/events"

// Publisher fans a progress event out to connected clients. Publish must not block.
type Publisher interface {
	Publish(event events.ProgressEvent)
	ConnectionCount() int
}

// Subscribable is satisfied by the progress store.
type Subscribable interface {
	Subscribe(listener func(events.ProgressEvent)) (unsubscribe func())
}
