package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/mcoot/chefgenie/internal/api/middleware"
	"github.com/mcoot/chefgenie/internal/api/request"
	"github.com/mcoot/chefgenie/internal/api/response"
	"github.com/mcoot/chefgenie/internal/model"
	"github.com/mcoot/chefgenie/internal/services/audio"
)

// AudioHandler exposes a client's audio engine
type AudioHandler struct {
	audioManager *audio.Manager
	logger       *slog.Logger
}

// NewAudioHandler creates a new audio handler
func NewAudioHandler(audioManager *audio.Manager, logger *slog.Logger) *AudioHandler {
	return &AudioHandler{
		audioManager: audioManager,
		logger:       logger,
	}
}

// Get handles GET /api/v1/audio
func (h *AudioHandler) Get(w http.ResponseWriter, r *http.Request) {
	engine := h.engine(r)
	response.OK(w, response.AudioFromEngine(engine.State()))
}

// Volume handles PUT /api/v1/audio/volume
func (h *AudioHandler) Volume(w http.ResponseWriter, r *http.Request) {
	var req request.VolumeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}

	engine := h.engine(r)
	if err := engine.SetVolume(r.Context(), req.Volume); err != nil {
		// The level still applies until the engine is released
		h.logger.Warn("failed to persist volume", slog.Any("error", err))
	}
	response.OK(w, response.AudioFromEngine(engine.State()))
}

// Mute handles PUT /api/v1/audio/mute
func (h *AudioHandler) Mute(w http.ResponseWriter, r *http.Request) {
	var req request.MuteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}

	engine := h.engine(r)
	engine.ToggleMute(req.Muted)
	response.OK(w, response.AudioFromEngine(engine.State()))
}

// Music handles PUT /api/v1/audio/music. An empty track stops the music.
func (h *AudioHandler) Music(w http.ResponseWriter, r *http.Request) {
	var req request.MusicRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}

	engine := h.engine(r)
	if req.Track == "" {
		engine.StopMusic()
	} else if err := engine.PlayMusic(model.Track(req.Track)); err != nil {
		WriteError(w, err)
		return
	}
	response.OK(w, response.AudioFromEngine(engine.State()))
}

// Sound handles POST /api/v1/audio/sound
func (h *AudioHandler) Sound(w http.ResponseWriter, r *http.Request) {
	var req request.SoundRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}

	if err := h.engine(r).PlaySound(model.SoundKind(req.Sound)); err != nil {
		WriteError(w, err)
		return
	}
	response.NoContent(w)
}

func (h *AudioHandler) engine(r *http.Request) *audio.Engine {
	ctx := r.Context()
	return h.audioManager.Engine(ctx, middleware.GetClient(ctx))
}
