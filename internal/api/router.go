package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/chefgenie/internal/api/handler"
	"github.com/mcoot/chefgenie/internal/api/middleware"
	"github.com/mcoot/chefgenie/internal/services/audio"
	"github.com/mcoot/chefgenie/internal/services/auth"
	"github.com/mcoot/chefgenie/internal/services/game"
	"github.com/mcoot/chefgenie/internal/services/knowledge"
	"github.com/mcoot/chefgenie/internal/services/system"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger         *slog.Logger
	AuthService    *auth.Service
	GameController *game.Controller
	AudioManager   *audio.Manager
	Knowledge      *knowledge.Base
	Reporter       *system.Reporter
}

// NewRouter creates a new API router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	// Create handlers
	playerHandler := handler.NewPlayerHandler(cfg.AuthService)
	ownerHandler := handler.NewOwnerHandler(cfg.AuthService, cfg.Reporter)
	gameHandler := handler.NewGameHandler(cfg.GameController, cfg.Logger)
	audioHandler := handler.NewAudioHandler(cfg.AudioManager, cfg.Logger)
	knowledgeHandler := handler.NewKnowledgeHandler(cfg.Knowledge)

	// Create middleware
	clientMiddleware := middleware.Client(cfg.AuthService)
	loggingMiddleware := middleware.Logging(cfg.Logger)
	recoveryMiddleware := middleware.Recovery(cfg.Logger)

	// API subrouter with common middleware
	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(recoveryMiddleware)
	api.Use(loggingMiddleware)

	// Routes that need no client token
	api.HandleFunc("/clients", playerHandler.CreateClient).Methods(http.MethodPost)
	api.HandleFunc("/leaderboard", playerHandler.Leaderboard).Methods(http.MethodGet)
	api.HandleFunc("/knowledge", knowledgeHandler.List).Methods(http.MethodGet)
	api.HandleFunc("/knowledge/match", knowledgeHandler.Match).Methods(http.MethodPost)
	api.HandleFunc("/health", healthHandler).Methods(http.MethodGet)

	// Account routes (login required)
	account := api.PathPrefix("/players/me").Subrouter()
	account.Use(clientMiddleware)
	account.Use(middleware.RequireUser)
	account.HandleFunc("", playerHandler.Delete).Methods(http.MethodDelete)
	account.HandleFunc("/password", playerHandler.ChangePassword).Methods(http.MethodPost)

	// Player routes (client token required)
	players := api.PathPrefix("/players").Subrouter()
	players.Use(clientMiddleware)
	players.HandleFunc("/signup", playerHandler.Signup).Methods(http.MethodPost)
	players.HandleFunc("/login", playerHandler.Login).Methods(http.MethodPost)
	players.HandleFunc("/logout", playerHandler.Logout).Methods(http.MethodPost)
	players.HandleFunc("/me", playerHandler.GetMe).Methods(http.MethodGet)

	// Owner routes
	owner := api.PathPrefix("/owner").Subrouter()
	owner.Use(clientMiddleware)
	owner.Use(middleware.RequireOwner)
	owner.HandleFunc("/users", ownerHandler.Users).Methods(http.MethodGet)
	owner.HandleFunc("/users/{username}/ban", ownerHandler.Ban).Methods(http.MethodPost)
	owner.HandleFunc("/report", ownerHandler.Report).Methods(http.MethodGet)

	// Game routes
	games := api.PathPrefix("/game").Subrouter()
	games.Use(clientMiddleware)
	games.HandleFunc("", gameHandler.Get).Methods(http.MethodGet)
	games.HandleFunc("/start", gameHandler.Start).Methods(http.MethodPost)
	games.HandleFunc("/answer", gameHandler.Answer).Methods(http.MethodPost)
	games.HandleFunc("/undo", gameHandler.Undo).Methods(http.MethodPost)
	games.HandleFunc("/verify", gameHandler.Verify).Methods(http.MethodPost)
	games.HandleFunc("/reveal", gameHandler.Reveal).Methods(http.MethodPost)
	games.HandleFunc("/restart", gameHandler.Restart).Methods(http.MethodPost)

	// Audio routes
	sounds := api.PathPrefix("/audio").Subrouter()
	sounds.Use(clientMiddleware)
	sounds.HandleFunc("", audioHandler.Get).Methods(http.MethodGet)
	sounds.HandleFunc("/volume", audioHandler.Volume).Methods(http.MethodPut)
	sounds.HandleFunc("/mute", audioHandler.Mute).Methods(http.MethodPut)
	sounds.HandleFunc("/music", audioHandler.Music).Methods(http.MethodPut)
	sounds.HandleFunc("/sound", audioHandler.Sound).Methods(http.MethodPost)

	return r
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
