package web

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/chefgenie/internal/services/audio"
	"github.com/mcoot/chefgenie/internal/services/auth"
	"github.com/mcoot/chefgenie/internal/services/game"
	"github.com/mcoot/chefgenie/internal/services/knowledge"
	"github.com/mcoot/chefgenie/internal/services/system"
	"github.com/mcoot/chefgenie/internal/web/embed"
	"github.com/mcoot/chefgenie/internal/web/handler"
	"github.com/mcoot/chefgenie/internal/web/middleware"
	"github.com/mcoot/chefgenie/internal/web/sse"
)

// RouterConfig holds configuration for the web router
type RouterConfig struct {
	Logger         *slog.Logger
	AuthService    *auth.Service
	GameController *game.Controller
	AudioManager   *audio.Manager
	Knowledge      *knowledge.Base
	Reporter       *system.Reporter
	HubManager     *sse.HubManager
	Broadcaster    *sse.Broadcaster
	Bridge         *embed.Bridge
	StaticDir      string // Path to static files directory
}

// NewRouter creates a new web router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	// Create middleware
	loggingMiddleware := middleware.Logging(cfg.Logger)
	recoveryMiddleware := middleware.Recovery(cfg.Logger)
	flashMiddleware := middleware.Flash()
	clientMiddleware := middleware.Client(cfg.AuthService, cfg.Logger)

	// Apply global middleware to all routes
	r.Use(recoveryMiddleware)
	r.Use(loggingMiddleware)

	// Create handlers
	homeHandler := handler.NewHomeHandler(cfg.GameController, cfg.AudioManager, cfg.AuthService, cfg.Knowledge, cfg.Logger)
	gameHandler := handler.NewGameHandler(cfg.GameController, cfg.Logger)
	authHandler := handler.NewAuthHandler(cfg.AuthService, cfg.Logger)
	ownerHandler := handler.NewOwnerHandler(cfg.AuthService, cfg.Reporter, cfg.Logger)
	audioHandler := handler.NewAudioHandler(cfg.AudioManager, cfg.Logger)
	eventsHandler := handler.NewEventsHandler(cfg.GameController, cfg.HubManager, cfg.Broadcaster)

	// Static files
	if cfg.StaticDir != "" {
		staticHandler := http.StripPrefix("/static/", http.FileServer(http.Dir(cfg.StaticDir)))
		r.PathPrefix("/static/").Handler(staticHandler)
	}

	// Streams carry no flash and must not consume one
	streams := r.NewRoute().Subrouter()
	streams.Use(clientMiddleware)
	streams.HandleFunc("/events", eventsHandler.Events).Methods(http.MethodGet)
	if cfg.Bridge != nil {
		streams.Handle("/embed/ws", cfg.Bridge).Methods(http.MethodGet)
	}

	// Public pages and actions
	public := r.NewRoute().Subrouter()
	public.Use(flashMiddleware)
	public.Use(clientMiddleware)
	public.HandleFunc("/", homeHandler.Home).Methods(http.MethodGet)
	public.HandleFunc("/leaderboard", homeHandler.Leaderboard).Methods(http.MethodGet)
	public.HandleFunc("/dishes", homeHandler.Dishes).Methods(http.MethodGet)

	public.HandleFunc("/login", authHandler.LoginPage).Methods(http.MethodGet)
	public.HandleFunc("/login", authHandler.Login).Methods(http.MethodPost)
	public.HandleFunc("/signup", authHandler.SignupPage).Methods(http.MethodGet)
	public.HandleFunc("/signup", authHandler.Signup).Methods(http.MethodPost)
	public.HandleFunc("/logout", authHandler.Logout).Methods(http.MethodPost)

	// Game routes
	public.HandleFunc("/game/start", gameHandler.Start).Methods(http.MethodPost)
	public.HandleFunc("/game/answer", gameHandler.Answer).Methods(http.MethodPost)
	public.HandleFunc("/game/undo", gameHandler.Undo).Methods(http.MethodPost)
	public.HandleFunc("/game/verify", gameHandler.Verify).Methods(http.MethodPost)
	public.HandleFunc("/game/reveal", gameHandler.Reveal).Methods(http.MethodPost)
	public.HandleFunc("/game/restart", gameHandler.Restart).Methods(http.MethodPost)

	// Audio routes
	public.HandleFunc("/audio/volume", audioHandler.Volume).Methods(http.MethodPost)
	public.HandleFunc("/audio/mute", audioHandler.Mute).Methods(http.MethodPost)

	// Account routes (require login)
	account := r.PathPrefix("/account").Subrouter()
	account.Use(flashMiddleware)
	account.Use(clientMiddleware)
	account.Use(middleware.RequireUser)
	account.HandleFunc("", authHandler.AccountPage).Methods(http.MethodGet)
	account.HandleFunc("/password", authHandler.ChangePassword).Methods(http.MethodPost)
	account.HandleFunc("/delete", authHandler.DeleteAccount).Methods(http.MethodPost)

	// Owner routes
	owner := r.PathPrefix("/owner").Subrouter()
	owner.Use(flashMiddleware)
	owner.Use(clientMiddleware)
	owner.Use(middleware.RequireOwner)
	owner.HandleFunc("", ownerHandler.Dashboard).Methods(http.MethodGet)
	owner.HandleFunc("/ban", ownerHandler.Ban).Methods(http.MethodPost)

	return r
}
