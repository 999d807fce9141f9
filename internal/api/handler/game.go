package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/mcoot/chefgenie/internal/api/middleware"
	"github.com/mcoot/chefgenie/internal/api/request"
	"github.com/mcoot/chefgenie/internal/api/response"
	"github.com/mcoot/chefgenie/internal/model"
	"github.com/mcoot/chefgenie/internal/services/game"
)

// GameHandler handles a client's round
type GameHandler struct {
	gameController *game.Controller
	logger         *slog.Logger
}

// NewGameHandler creates a new game handler
func NewGameHandler(gameController *game.Controller, logger *slog.Logger) *GameHandler {
	return &GameHandler{
		gameController: gameController,
		logger:         logger,
	}
}

// Get handles GET /api/v1/game
func (h *GameHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	g := h.gameController.Snapshot(ctx, middleware.GetClient(ctx))
	response.OK(w, response.GameFromModel(g))
}

// Start handles POST /api/v1/game/start. The reply is the state after the
// genie's first question arrives.
func (h *GameHandler) Start(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	g, err := h.gameController.Start(ctx, middleware.GetClient(ctx))
	h.respond(w, g, err)
}

// Answer handles POST /api/v1/game/answer
func (h *GameHandler) Answer(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	client := middleware.GetClient(ctx)

	var req request.AnswerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}

	var (
		g   *model.Game
		err error
	)
	if req.Free {
		g, err = h.gameController.AnswerFreeText(ctx, client, req.Answer)
	} else {
		g, err = h.gameController.Answer(ctx, client, req.Answer)
	}
	h.respond(w, g, err)
}

// Undo handles POST /api/v1/game/undo
func (h *GameHandler) Undo(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	g, err := h.gameController.Undo(ctx, middleware.GetClient(ctx))
	h.respond(w, g, err)
}

// Verify handles POST /api/v1/game/verify
func (h *GameHandler) Verify(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req request.VerifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}

	g, err := h.gameController.Verify(ctx, middleware.GetClient(ctx), req.Correct)
	h.respond(w, g, err)
}

// Reveal handles POST /api/v1/game/reveal
func (h *GameHandler) Reveal(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req request.RevealRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}

	g, err := h.gameController.Reveal(ctx, middleware.GetClient(ctx), req.Answer)
	h.respond(w, g, err)
}

// Restart handles POST /api/v1/game/restart
func (h *GameHandler) Restart(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	g := h.gameController.Restart(ctx, middleware.GetClient(ctx))
	response.OK(w, response.GameFromModel(g))
}

func (h *GameHandler) respond(w http.ResponseWriter, g *model.Game, err error) {
	if err != nil {
		h.logger.Debug("game action rejected", slog.Any("error", err))
		WriteError(w, err)
		return
	}
	response.OK(w, response.GameFromModel(g))
}
