package sse

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/mcoot/chefgenie/internal/model"
	"github.com/mcoot/chefgenie/internal/web/templates/components"
)

// SSE event names
const (
	EventGameUpdate = "game-update"
	EventAudio      = "audio"
)

// Broadcaster pushes game views and audio cues to a client's open streams.
// It implements game.Notifier and audio.Sink.
type Broadcaster struct {
	hubManager *HubManager
	logger     *slog.Logger
}

// NewBroadcaster creates a new Broadcaster
func NewBroadcaster(hubManager *HubManager, logger *slog.Logger) *Broadcaster {
	return &Broadcaster{
		hubManager: hubManager,
		logger:     logger.With(slog.String("component", "sse-broadcaster")),
	}
}

// Publish renders g and sends it as a game-update event
func (b *Broadcaster) Publish(client model.ClientID, g *model.Game) {
	hub := b.hubManager.GetHub(client)
	if hub == nil {
		return
	}

	html, err := renderFragment(context.Background(), components.Game(g, ""))
	if err != nil {
		b.logger.Error("sse failed to render game",
			slog.String("client", string(client)),
			slog.Any("error", err))
		return
	}
	hub.BroadcastEvent(EventGameUpdate, html)
}

// SendCue sends cue as an audio event
func (b *Broadcaster) SendCue(client model.ClientID, cue model.AudioCue) {
	hub := b.hubManager.GetHub(client)
	if hub == nil {
		return
	}

	data, err := json.Marshal(cue)
	if err != nil {
		b.logger.Error("sse failed to encode cue",
			slog.String("client", string(client)),
			slog.Any("error", err))
		return
	}
	hub.BroadcastEvent(EventAudio, string(data))
}
