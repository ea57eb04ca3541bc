package messaging

import "github.com/AtRiskMedia/edify/internal/domain/events"

// Attach subscribes every publisher to the store and returns a function that
// detaches them all.
func Attach(store Subscribable, publishers ...Publisher) (detach func()) {
	unsubscribe := store.Subscribe(func(event events.ProgressEvent) {
		for _, p := range publishers {
			p.Publish(event)
		}
	})
	return unsubscribe
}
