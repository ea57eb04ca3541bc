// Package logging provides the log broadcaster for real-time log streaming.
package logging

import (
	"encoding/json"
	"log/slog"
	"strings"
	"sync"

	"github.com/oklog/ulid/v2"
)

// LogEntry represents a single log entry to be sent to the client.
type LogEntry struct {
	Timestamp string `json:"timestamp"`
	Channel   string `json:"channel"`
	Level     string `json:"level"`
	Message   string `json:"message"`
	Operation string `json:"operation,omitempty"`
}

// Client represents a single connected client listening for logs.
type Client struct {
	ID      string
	Channel chan []byte
	filters AppliedFilters
}

// AppliedFilters defines the filtering criteria for a client.
type AppliedFilters struct {
	Channel Channel    // "all" or a specific channel
	Level   slog.Level // minimum level
}

// Matches reports whether the entry passes the filters.
func (f AppliedFilters) Matches(entry LogEntry) bool {
	if f.Channel != "all" && f.Channel != "" && f.Channel != Channel(entry.Channel) {
		return false
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(entry.Level))); err != nil {
		return true
	}
	return level >= f.Level
}

// LogBroadcaster manages clients and broadcasts log messages.
type LogBroadcaster struct {
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	broadcast  chan LogEntry
	stop       chan struct{}
	done       chan struct{}
	stopOnce   sync.Once
	mu         sync.RWMutex
}

// NewLogBroadcaster creates a broadcaster and starts its loop.
func NewLogBroadcaster() *LogBroadcaster {
	b := &LogBroadcaster{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan LogEntry, 1000),
		stop:       make(chan struct{}),
		done:       make(chan struct{}),
	}
	go b.run()
	return b
}

func (b *LogBroadcaster) run() {
	defer close(b.done)
	for {
		select {
		case <-b.stop:
			b.mu.Lock()
			for client := range b.clients {
				delete(b.clients, client)
				close(client.Channel)
			}
			b.mu.Unlock()
			return
		case client := <-b.register:
			b.mu.Lock()
			b.clients[client] = true
			b.mu.Unlock()
		case client := <-b.unregister:
			b.mu.Lock()
			if _, ok := b.clients[client]; ok {
				delete(b.clients, client)
				close(client.Channel)
			}
			b.mu.Unlock()
		case entry := <-b.broadcast:
			b.distribute(entry)
		}
	}
}

func (b *LogBroadcaster) distribute(entry LogEntry) {
	message, err := json.Marshal(entry)
	if err != nil {
		return
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	for client := range b.clients {
		if !client.filters.Matches(entry) {
			continue
		}
		select {
		case client.Channel <- message:
		default:
			// slow client, drop
		}
	}
}

// SubmitLog queues an entry without blocking; entries are dropped under load.
func (b *LogBroadcaster) SubmitLog(entry LogEntry) {
	select {
	case b.broadcast <- entry:
	default:
	}
}

// NewClient creates a new client for the broadcaster.
func (b *LogBroadcaster) NewClient(filters AppliedFilters) *Client {
	return &Client{
		ID:      ulid.Make().String(),
		Channel: make(chan []byte, 100),
		filters: filters,
	}
}

// RegisterClient adds a client. It is a no-op after Shutdown.
func (b *LogBroadcaster) RegisterClient(client *Client) {
	select {
	case b.register <- client:
	case <-b.done:
		close(client.Channel)
	}
}

// UnregisterClient removes a client and closes its channel.
func (b *LogBroadcaster) UnregisterClient(client *Client) {
	select {
	case b.unregister <- client:
	case <-b.done:
	}
}

// ClientCount returns the number of connected log stream clients.
func (b *LogBroadcaster) ClientCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.clients)
}

// Shutdown stops the broadcaster and waits for its loop to exit.
func (b *LogBroadcaster) Shutdown() {
	b.stopOnce.Do(func() { close(b.stop) })
	<-b.done
}
