package sse

import (
	"errors"
	"net/http"
	"time"

	"github.com/mcoot/chefgenie/internal/model"
)

const (
	pingPeriod     = 30 * time.Second
	writeWait      = 10 * time.Second
	sendBufferSize = 256

	// reconnectDelay is the retry hint sent to EventSource, in milliseconds
	reconnectDelay = "2000"
)

var connectedEvent = formatSSEMessage("connected", `{"status":"connected"}`)

// Client is one open event stream, usually one browser tab
type Client struct {
	hub         *Hub
	client      model.ClientID
	send        chan []byte
	connectedAt time.Time
}

// NewClient creates a stream for client that hub can register
func NewClient(hub *Hub, client model.ClientID) *Client {
	return &Client{
		hub:         hub,
		client:      client,
		send:        make(chan []byte, sendBufferSize),
		connectedAt: time.Now(),
	}
}

// ServeSSE streams hub events to the response until the request ends or
// the hub closes the stream. Events queued by onConnect follow the
// connected event. A write that stalls past writeWait ends the stream.
func ServeSSE(w http.ResponseWriter, r *http.Request, hub *Hub, client model.ClientID, onConnect func()) {
	rc := http.NewResponseController(w)

	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")

	stream := NewClient(hub, client)
	if !hub.Register(stream) {
		http.Error(w, "Stream closed", http.StatusServiceUnavailable)
		return
	}
	defer hub.Unregister(stream)
	// The connection may be reused once the stream ends
	defer func() { _ = rc.SetWriteDeadline(time.Time{}) }()

	write := func(msg []byte) bool {
		if err := rc.SetWriteDeadline(time.Now().Add(writeWait)); err != nil && !errors.Is(err, http.ErrNotSupported) {
			return false
		}
		if _, err := w.Write(msg); err != nil {
			return false
		}
		return rc.Flush() == nil
	}

	if !write([]byte("retry: " + reconnectDelay + "\n")) || !write(connectedEvent) {
		return
	}
	if onConnect != nil {
		onConnect()
	}

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case msg, ok := <-stream.send:
			if !ok || !write(msg) {
				return
			}
		case <-ticker.C:
			if !write([]byte(": keepalive\n\n")) {
				return
			}
		case <-r.Context().Done():
			return
		}
	}
}
