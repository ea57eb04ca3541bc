// Package messaging provides the concrete implementation of the SSE broadcaster.
package messaging

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/AtRiskMedia/edify/internal/domain/events"
	"github.com/AtRiskMedia/edify/internal/infrastructure/observability/logging"
	"github.com/AtRiskMedia/edify/internal/infrastructure/security"
)

// SSEBroadcaster manages server-sent event connections for progress updates.
// Clients may ask for a single roadmap or for everything.
type SSEBroadcaster struct {
	clients map[string]*sseClient
	buffer  int
	closed  bool
	mu      sync.Mutex
	logger  *logging.ChanneledLogger
}

type sseClient struct {
	ch        chan string
	roadmapID string
}

// NewSSEBroadcaster creates a broadcaster whose client channels hold buffer messages.
func NewSSEBroadcaster(buffer int, logger *logging.ChanneledLogger) *SSEBroadcaster {
	if buffer <= 0 {
		buffer = 10
	}
	return &SSEBroadcaster{
		clients: make(map[string]*sseClient),
		buffer:  buffer,
		logger:  logger,
	}
}

// AddClient registers a new SSE client. An empty roadmapID receives every event.
// The returned channel is closed by RemoveClient or Close.
func (b *SSEBroadcaster) AddClient(roadmapID string) (string, <-chan string) {
	id := security.GenerateULID()
	ch := make(chan string, b.buffer)

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		close(ch)
		return id, ch
	}
	b.clients[id] = &sseClient{ch: ch, roadmapID: roadmapID}

	b.logger.SSE().Debug("SSE client registered", "clientId", id, "roadmapId", roadmapID)
	return id, ch
}

// RemoveClient removes an SSE client and closes its channel.
func (b *SSEBroadcaster) RemoveClient(id string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if client, ok := b.clients[id]; ok {
		delete(b.clients, id)
		close(client.ch)
		b.logger.SSE().Debug("SSE client unregistered", "clientId", id)
	}
}

func (b *SSEBroadcaster) ConnectionCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.clients)
}

// FormatEvent renders an SSE frame.
func FormatEvent(name string, payload any) (string, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("event: %s\ndata: %s\n\n", name, data), nil
}

// Publish sends the event to every interested client, dropping it for
// clients whose buffer is full.
func (b *SSEBroadcaster) Publish(event events.ProgressEvent) {
	message, err := FormatEvent("progress", event)
	if err != nil {
		b.logger.SSE().Error("Failed to encode progress event", "error", err.Error())
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	for id, client := range b.clients {
		if client.roadmapID != "" && client.roadmapID != event.RoadmapID {
			continue
		}
		select {
		case client.ch <- message:
		default:
			b.logger.SSE().Warn("SSE channel full, message dropped", "clientId", id, "roadmapId", event.RoadmapID)
		}
	}
}

// Close disconnects every client. Later AddClient calls get a closed channel.
func (b *SSEBroadcaster) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	for id, client := range b.clients {
		delete(b.clients, id)
		close(client.ch)
	}
	b.closed = true
}
