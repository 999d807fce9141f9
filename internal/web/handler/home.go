package handler

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/mcoot/chefgenie/internal/services/audio"
	"github.com/mcoot/chefgenie/internal/services/auth"
	"github.com/mcoot/chefgenie/internal/services/game"
	"github.com/mcoot/chefgenie/internal/services/knowledge"
	"github.com/mcoot/chefgenie/internal/web/middleware"
	"github.com/mcoot/chefgenie/internal/web/templates/pages"
)

// leaderboardSize is how many players the leaderboard page shows
const leaderboardSize = 20

// HomeHandler serves the game page and the read-only listings
type HomeHandler struct {
	gameController *game.Controller
	audioManager   *audio.Manager
	authService    *auth.Service
	knowledge      *knowledge.Base
	logger         *slog.Logger
}

// NewHomeHandler creates a new HomeHandler
func NewHomeHandler(gameController *game.Controller, audioManager *audio.Manager, authService *auth.Service, kb *knowledge.Base, logger *slog.Logger) *HomeHandler {
	return &HomeHandler{
		gameController: gameController,
		audioManager:   audioManager,
		authService:    authService,
		knowledge:      kb,
		logger:         logger,
	}
}

// Home renders the game page
func (h *HomeHandler) Home(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	client := middleware.GetClient(ctx)

	data := pages.PlayData{
		PageData: pageData(r, "Play"),
		Game:     h.gameController.Snapshot(ctx, client),
		Audio:    h.audioManager.Engine(ctx, client).State(),
	}
	render(w, r, http.StatusOK, pages.Play(data))
}

// Leaderboard renders the top players by score
func (h *HomeHandler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	users, err := h.authService.Leaderboard(r.Context(), leaderboardSize)
	if err != nil {
		h.logger.Error("failed to load leaderboard", slog.Any("error", err))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	render(w, r, http.StatusOK, pages.Leaderboard(pages.LeaderboardData{
		PageData: pageData(r, "Leaderboard"),
		Users:    users,
	}))
}

// Dishes renders the dish catalogue, filtered by the q parameter
func (h *HomeHandler) Dishes(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))

	data := pages.DishesData{
		PageData:   pageData(r, "Dishes"),
		Query:      query,
		Categories: h.knowledge.Categories(),
	}
	if query != "" {
		data.Results = h.knowledge.Search(query)
	}
	render(w, r, http.StatusOK, pages.Dishes(data))
}
