package messaging

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/AtRiskMedia/edify/internal/domain/events"
	"github.com/AtRiskMedia/edify/internal/infrastructure/observability/logging"
	"github.com/AtRiskMedia/edify/internal/infrastructure/security"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

// HubMessage is what websocket clients receive: either a single progress
// event or a periodic snapshot.
type HubMessage struct {
	Type     string                `json:"type"`
	Event    *events.ProgressEvent `json:"event,omitempty"`
	Snapshot any                   `json:"snapshot,omitempty"`
}

// HubClient represents a single connected websocket client.
type HubClient struct {
	ID   string
	Conn *websocket.Conn
	Send chan []byte
}

// Hub manages websocket clients, relays progress events and pushes a
// snapshot on every tick.
type Hub struct {
	clients    map[*HubClient]bool
	register   chan *HubClient
	unregister chan *HubClient
	broadcast  chan []byte
	done       chan struct{}
	snapshot   func() any
	interval   time.Duration
	mu         sync.RWMutex
	logger     *logging.ChanneledLogger
}

// NewHub creates a hub. snapshot may be nil, in which case no ticks are sent.
func NewHub(snapshot func() any, interval time.Duration, logger *logging.ChanneledLogger) *Hub {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &Hub{
		clients:    make(map[*HubClient]bool),
		register:   make(chan *HubClient),
		unregister: make(chan *HubClient),
		broadcast:  make(chan []byte, 64),
		done:       make(chan struct{}),
		snapshot:   snapshot,
		interval:   interval,
		logger:     logger,
	}
}

// Run starts the hub's main loop and returns when ctx is cancelled. All
// client send channels are closed on exit.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)

	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for client := range h.clients {
				delete(h.clients, client)
				close(client.Send)
			}
			h.mu.Unlock()
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
			h.logger.SSE().Debug("Websocket client registered", "clientId", client.ID)
			if h.snapshot != nil {
				h.sendTo(client, h.encodeSnapshot())
			}

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.Send)
			}
			h.mu.Unlock()
			h.logger.SSE().Debug("Websocket client unregistered", "clientId", client.ID)

		case message := <-h.broadcast:
			h.sendAll(message)

		case <-ticker.C:
			if h.snapshot != nil && h.ConnectionCount() > 0 {
				h.sendAll(h.encodeSnapshot())
			}
		}
	}
}

func (h *Hub) encodeSnapshot() []byte {
	message, err := json.Marshal(HubMessage{Type: "snapshot", Snapshot: h.snapshot()})
	if err != nil {
		h.logger.SSE().Error("Failed to encode snapshot", "error", err.Error())
		return nil
	}
	return message
}

func (h *Hub) sendTo(client *HubClient, message []byte) {
	if message == nil {
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	if _, ok := h.clients[client]; !ok {
		return
	}
	select {
	case client.Send <- message:
	default:
	}
}

func (h *Hub) sendAll(message []byte) {
	if message == nil {
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.clients {
		select {
		case client.Send <- message:
		default:
			h.logger.SSE().Warn("Websocket client too slow, message dropped", "clientId", client.ID)
		}
	}
}

// Publish queues a progress event for every client without blocking.
func (h *Hub) Publish(event events.ProgressEvent) {
	message, err := json.Marshal(HubMessage{Type: "progress", Event: &event})
	if err != nil {
		h.logger.SSE().Error("Failed to encode progress event", "error", err.Error())
		return
	}
	select {
	case h.broadcast <- message:
	default:
		h.logger.SSE().Warn("Websocket broadcast queue full, event dropped", "roadmapId", event.RoadmapID)
	}
}

func (h *Hub) ConnectionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Register queues a client for registration. It reports false once the hub
// has stopped.
func (h *Hub) Register(client *HubClient) bool {
	select {
	case h.register <- client:
		return true
	case <-h.done:
		return false
	}
}

// Unregister queues a client for unregistration.
func (h *Hub) Unregister(client *HubClient) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// Serve attaches an upgraded connection to the hub and blocks until it closes.
func (h *Hub) Serve(conn *websocket.Conn) {
	client := &HubClient{
		ID:   security.GenerateULID(),
		Conn: conn,
		Send: make(chan []byte, 16),
	}
	if !h.Register(client) {
		conn.Close()
		return
	}

	go h.readPump(client)
	h.writePump(client)
}

// readPump discards inbound messages and notices disconnects.
func (h *Hub) readPump(client *HubClient) {
	defer h.Unregister(client)

	client.Conn.SetReadLimit(512)
	client.Conn.SetReadDeadline(time.Now().Add(pongWait))
	client.Conn.SetPongHandler(func(string) error {
		return client.Conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := client.Conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) writePump(client *HubClient) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		client.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-client.Send:
			client.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				client.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := client.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			client.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := client.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
