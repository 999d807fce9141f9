package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/mcoot/chefgenie/internal/api/apierr"
	"github.com/mcoot/chefgenie/internal/model"
	"github.com/mcoot/chefgenie/internal/services/game"
	"github.com/mcoot/chefgenie/internal/web/middleware"
	"github.com/mcoot/chefgenie/internal/web/templates/components"
)

// GameHandler handles the game form posts
type GameHandler struct {
	gameController *game.Controller
	logger         *slog.Logger
}

// NewGameHandler creates a new GameHandler
func NewGameHandler(gameController *game.Controller, logger *slog.Logger) *GameHandler {
	return &GameHandler{
		gameController: gameController,
		logger:         logger,
	}
}

type gameAction func(ctx context.Context, client model.ClientID) (*model.Game, error)

// Start begins a round
func (h *GameHandler) Start(w http.ResponseWriter, r *http.Request) {
	h.act(w, r, h.gameController.Start)
}

// Answer sends the chosen option, or free text when free=1
func (h *GameHandler) Answer(w http.ResponseWriter, r *http.Request) {
	answer := strings.TrimSpace(r.FormValue("answer"))
	free := r.FormValue("free") == "1"

	h.act(w, r, func(ctx context.Context, client model.ClientID) (*model.Game, error) {
		if free {
			return h.gameController.AnswerFreeText(ctx, client, answer)
		}
		return h.gameController.Answer(ctx, client, answer)
	})
}

// Undo reverts the last answer
func (h *GameHandler) Undo(w http.ResponseWriter, r *http.Request) {
	h.act(w, r, h.gameController.Undo)
}

// Verify accepts or rejects the genie's guess
func (h *GameHandler) Verify(w http.ResponseWriter, r *http.Request) {
	correct := r.FormValue("correct") == "yes"
	h.act(w, r, func(ctx context.Context, client model.ClientID) (*model.Game, error) {
		return h.gameController.Verify(ctx, client, correct)
	})
}

// Reveal tells the genie what the dish really was
func (h *GameHandler) Reveal(w http.ResponseWriter, r *http.Request) {
	answer := strings.TrimSpace(r.FormValue("answer"))
	h.act(w, r, func(ctx context.Context, client model.ClientID) (*model.Game, error) {
		return h.gameController.Reveal(ctx, client, answer)
	})
}

// Restart abandons the round and returns to the start screen
func (h *GameHandler) Restart(w http.ResponseWriter, r *http.Request) {
	h.act(w, r, func(ctx context.Context, client model.ClientID) (*model.Game, error) {
		return h.gameController.Restart(ctx, client), nil
	})
}

// act runs action and answers with the game fragment for htmx, or a redirect home
func (h *GameHandler) act(w http.ResponseWriter, r *http.Request, action gameAction) {
	ctx := r.Context()
	client := middleware.GetClient(ctx)

	g, err := action(ctx, client)
	errMsg := ""
	if err != nil {
		errMsg = apierr.Message(err)
		h.logger.Debug("game action rejected",
			slog.String("client", string(client)),
			slog.String("path", r.URL.Path),
			slog.Any("error", err))
		g = h.gameController.Snapshot(ctx, client)
	}

	if !isHTMX(r) {
		if errMsg != "" {
			middleware.SetFlash(w, middleware.FlashError, errMsg)
		}
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	// htmx only swaps 2xx responses, so rejections render inline with 200
	render(w, r, http.StatusOK, components.Game(g, errMsg))
}
