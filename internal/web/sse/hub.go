package sse

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/mcoot/chefgenie/internal/model"
)

// Hub fans events out to every open stream of one client
type Hub struct {
	client  model.ClientID
	streams map[*Client]bool
	mu      sync.RWMutex
	logger  *slog.Logger

	register   chan *Client
	unregister chan *Client
	broadcast  chan []byte
	done       chan struct{}
	closeOnce  sync.Once
}

// NewHub creates a new Hub for a client
func NewHub(client model.ClientID, logger *slog.Logger) *Hub {
	return &Hub{
		client:     client,
		streams:    make(map[*Client]bool),
		logger:     logger.With(slog.String("client", string(client))),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan []byte, 256),
		done:       make(chan struct{}),
	}
}

// Run starts the hub's event loop
func (h *Hub) Run() {
	h.logger.Debug("sse hub started")
	for {
		select {
		case c := <-h.register:
			h.mu.Lock()
			h.streams[c] = true
			count := len(h.streams)
			h.mu.Unlock()
			h.logger.Info("sse stream registered", slog.Int("total_streams", count))

		case c := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.streams[c]; ok {
				delete(h.streams, c)
				close(c.send)
				count := len(h.streams)
				h.mu.Unlock()
				h.logger.Info("sse stream unregistered",
					slog.Duration("connection_duration", time.Since(c.connectedAt)),
					slog.Int("total_streams", count))
			} else {
				h.mu.Unlock()
			}

		case message := <-h.broadcast:
			h.mu.RLock()
			dropped := 0
			for c := range h.streams {
				select {
				case c.send <- message:
				default:
					dropped++
				}
			}
			h.mu.RUnlock()
			if dropped > 0 {
				h.logger.Warn("sse message dropped - stream buffer full", slog.Int("dropped", dropped))
			}

		case <-h.done:
			h.mu.Lock()
			count := len(h.streams)
			for c := range h.streams {
				close(c.send)
				delete(h.streams, c)
			}
			h.mu.Unlock()
			h.logger.Debug("sse hub stopped", slog.Int("disconnected_streams", count))
			return
		}
	}
}

// Register adds a stream to the hub. It returns false if the hub is closed.
func (h *Hub) Register(c *Client) bool {
	select {
	case h.register <- c:
		return true
	case <-h.done:
		return false
	}
}

// Unregister removes a stream from the hub
func (h *Hub) Unregister(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

// Broadcast sends a message to all streams
func (h *Hub) Broadcast(message []byte) {
	select {
	case h.broadcast <- message:
	default:
		h.logger.Warn("sse broadcast dropped - hub buffer full")
	}
}

// BroadcastEvent sends an SSE event with a name and data
func (h *Hub) BroadcastEvent(eventName, data string) {
	h.Broadcast(formatSSEMessage(eventName, data))
}

// Close shuts down the hub
func (h *Hub) Close() {
	h.closeOnce.Do(func() { close(h.done) })
}

// StreamCount returns the number of connected streams
func (h *Hub) StreamCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.streams)
}

// formatSSEMessage formats an SSE message with event name and data.
// Each line of data gets its own "data: " prefix.
func formatSSEMessage(eventName, data string) []byte {
	var b strings.Builder
	b.WriteString("event: ")
	b.WriteString(eventName)
	b.WriteString("\n")
	for _, line := range splitLines(data) {
		b.WriteString("data: ")
		b.WriteString(line)
		b.WriteString("\n")
	}
	b.WriteString("\n")
	return []byte(b.String())
}

// splitLines splits a string into lines, handling various line endings
func splitLines(s string) []string {
	s = strings.ReplaceAll(s, "\r", "")
	s = strings.TrimSuffix(s, "\n")
	return strings.Split(s, "\n")
}

// HubManager manages hubs for all clients
type HubManager struct {
	hubs   map[model.ClientID]*Hub
	mu     sync.RWMutex
	logger *slog.Logger
}

// NewHubManager creates a new HubManager
func NewHubManager(logger *slog.Logger) *HubManager {
	return &HubManager{
		hubs:   make(map[model.ClientID]*Hub),
		logger: logger.With(slog.String("component", "sse")),
	}
}

// GetOrCreateHub returns the hub for a client, creating one if it doesn't exist
func (m *HubManager) GetOrCreateHub(client model.ClientID) *Hub {
	m.mu.Lock()
	defer m.mu.Unlock()

	if hub, ok := m.hubs[client]; ok {
		return hub
	}

	hub := NewHub(client, m.logger)
	m.hubs[client] = hub
	go hub.Run()
	return hub
}

// GetHub returns the hub for a client, or nil if it doesn't exist
func (m *HubManager) GetHub(client model.ClientID) *Hub {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.hubs[client]
}

// RemoveHub removes and closes a hub
func (m *HubManager) RemoveHub(client model.ClientID) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if hub, ok := m.hubs[client]; ok {
		hub.Close()
		delete(m.hubs, client)
	}
}

// Len returns the number of live hubs
func (m *HubManager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.hubs)
}

// CleanupEmptyHubs removes hubs with no streams and returns their clients
func (m *HubManager) CleanupEmptyHubs() []model.ClientID {
	m.mu.Lock()
	defer m.mu.Unlock()

	var removed []model.ClientID
	for client, hub := range m.hubs {
		if hub.StreamCount() == 0 {
			hub.Close()
			delete(m.hubs, client)
			removed = append(removed, client)
		}
	}
	if len(removed) > 0 {
		m.logger.Info("sse empty hubs cleaned up", slog.Int("removed", len(removed)))
	}
	return removed
}

// Run cleans up empty hubs every interval until ctx is done, calling idle
// for each client whose last stream went away.
func (m *HubManager) Run(ctx context.Context, interval time.Duration, idle func(model.ClientID)) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			m.closeAll()
			return nil
		case <-ticker.C:
			for _, client := range m.CleanupEmptyHubs() {
				if idle != nil {
					idle(client)
				}
			}
		}
	}
}

func (m *HubManager) closeAll() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for client, hub := range m.hubs {
		hub.Close()
		delete(m.hubs, client)
	}
}
