package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/mcoot/chefgenie/internal/services/audio"
	"github.com/mcoot/chefgenie/internal/web/middleware"
	"github.com/mcoot/chefgenie/internal/web/templates/components"
)

// AudioHandler handles the volume and mute controls
type AudioHandler struct {
	audioManager *audio.Manager
	logger       *slog.Logger
}

// NewAudioHandler creates a new AudioHandler
func NewAudioHandler(audioManager *audio.Manager, logger *slog.Logger) *AudioHandler {
	return &AudioHandler{
		audioManager: audioManager,
		logger:       logger,
	}
}

// Volume sets the master volume from a 0-100 slider value
func (h *AudioHandler) Volume(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	volume, err := strconv.Atoi(r.FormValue("volume"))
	if err != nil {
		http.Error(w, "volume must be a number", http.StatusBadRequest)
		return
	}

	engine := h.audioManager.Engine(ctx, middleware.GetClient(ctx))
	if err := engine.SetVolume(ctx, volume); err != nil {
		// The level still applies for this session
		h.logger.Warn("failed to persist volume", slog.Any("error", err))
	}
	h.respond(w, r, engine.State())
}

// Mute toggles the master mute
func (h *AudioHandler) Mute(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	engine := h.audioManager.Engine(ctx, middleware.GetClient(ctx))
	engine.ToggleMute(r.FormValue("muted") == "true")
	h.respond(w, r, engine.State())
}

func (h *AudioHandler) respond(w http.ResponseWriter, r *http.Request, state audio.EngineState) {
	if !isHTMX(r) {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	render(w, r, http.StatusOK, components.AudioControls(state))
}
