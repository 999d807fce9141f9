package handler

import (
	"net/http"

	"github.com/mcoot/chefgenie/internal/services/game"
	"github.com/mcoot/chefgenie/internal/web/middleware"
	"github.com/mcoot/chefgenie/internal/web/sse"
)

// EventsHandler streams a client's game and audio events
type EventsHandler struct {
	gameController *game.Controller
	hubManager     *sse.HubManager
	broadcaster    *sse.Broadcaster
}

// NewEventsHandler creates a new EventsHandler
func NewEventsHandler(gameController *game.Controller, hubManager *sse.HubManager, broadcaster *sse.Broadcaster) *EventsHandler {
	return &EventsHandler{
		gameController: gameController,
		hubManager:     hubManager,
		broadcaster:    broadcaster,
	}
}

// Events serves the SSE stream. The current game is sent right after connecting.
func (h *EventsHandler) Events(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	client := middleware.GetClient(ctx)
	hub := h.hubManager.GetOrCreateHub(client)

	sse.ServeSSE(w, r, hub, client, func() {
		h.broadcaster.Publish(client, h.gameController.Snapshot(ctx, client))
	})
}
