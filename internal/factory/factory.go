package factory

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/mcoot/chefgenie/internal/dependencies/clock"
	"github.com/mcoot/chefgenie/internal/dependencies/idgen"
	"github.com/mcoot/chefgenie/internal/model"
	"github.com/mcoot/chefgenie/internal/services/audio"
	"github.com/mcoot/chefgenie/internal/services/auth"
	"github.com/mcoot/chefgenie/internal/services/conversation"
	"github.com/mcoot/chefgenie/internal/services/conversation/llm"
	"github.com/mcoot/chefgenie/internal/services/game"
	"github.com/mcoot/chefgenie/internal/services/knowledge"
	"github.com/mcoot/chefgenie/internal/services/system"
	"github.com/mcoot/chefgenie/internal/storage"
	"github.com/mcoot/chefgenie/internal/storage/memory"
	redisstorage "github.com/mcoot/chefgenie/internal/storage/redis"
	"github.com/mcoot/chefgenie/internal/storage/sqlite"
	"github.com/mcoot/chefgenie/internal/web/embed"
	webmiddleware "github.com/mcoot/chefgenie/internal/web/middleware"
	"github.com/mcoot/chefgenie/internal/web/sse"
)

// Storage type constants
const (
	StorageTypeMemory = "memory"
	StorageTypeRedis  = "redis"
	StorageTypeSQLite = "sqlite"
)

// App contains all wired application components
type App struct {
	// Storage
	Storage     storage.Storage
	StorageType string

	// External dependencies
	Clock clock.Clock
	IDs   idgen.Generator

	// Services
	Knowledge      *knowledge.Base
	Conversation   *conversation.Client
	AuthService    *auth.Service
	AudioManager   *audio.Manager
	GameController *game.Controller
	Reporter       *system.Reporter

	// Push channels
	HubManager  *sse.HubManager
	Broadcaster *sse.Broadcaster
	Bridge      *embed.Bridge

	closers []io.Closer
}

// Config holds configuration for the application factory
type Config struct {
	// Model answers the genie's chat turns (required)
	Model llm.Model
	// AuthConfig holds configuration for the auth service (optional).
	// If zero value, defaults to auth.DefaultConfig()
	AuthConfig auth.Config
	// Logger is the application logger (optional).
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// StorageType selects the storage backend ("memory", "redis" or "sqlite").
	// If empty, defaults to "memory"
	StorageType string
	// RedisConfig holds Redis connection settings (required if StorageType is "redis")
	RedisConfig *redisstorage.Config
	// SQLitePath is the database file (required if StorageType is "sqlite")
	SQLitePath string
	// EmbedOrigins are the origin patterns allowed to open the embedding websocket
	EmbedOrigins []string
}

// New creates a new application with all dependencies wired
func New(cfg Config) (*App, error) {
	if cfg.Model == nil {
		return nil, errors.New("Model is required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	storageType := cfg.StorageType
	if storageType == "" {
		storageType = StorageTypeMemory
	}

	var (
		store   storage.Storage
		closers []io.Closer
	)
	switch storageType {
	case StorageTypeMemory:
		store = memory.New()
	case StorageTypeRedis:
		if cfg.RedisConfig == nil {
			return nil, errors.New("RedisConfig required when StorageType is redis")
		}
		redisStore, err := redisstorage.New(*cfg.RedisConfig)
		if err != nil {
			return nil, fmt.Errorf("connect to redis: %w", err)
		}
		store = redisStore
		closers = append(closers, redisStore)
	case StorageTypeSQLite:
		if cfg.SQLitePath == "" {
			return nil, errors.New("SQLitePath required when StorageType is sqlite")
		}
		sqliteStore, err := sqlite.New(cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		store = sqliteStore
		closers = append(closers, sqliteStore)
	default:
		return nil, errors.New("invalid StorageType: must be 'memory', 'redis' or 'sqlite'")
	}

	authCfg := cfg.AuthConfig
	if authCfg.BcryptCost == 0 {
		authCfg.BcryptCost = auth.DefaultConfig().BcryptCost
	}

	app := newWithDependencies(store, storageType, clock.New(), idgen.New(), cfg.Model, authCfg, cfg.EmbedOrigins, logger)
	app.closers = closers
	return app, nil
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(
	store storage.Storage,
	storageType string,
	clk clock.Clock,
	ids idgen.Generator,
	m llm.Model,
	authCfg auth.Config,
	embedOrigins []string,
	logger *slog.Logger,
) *App {
	kb := knowledge.Default()
	hubManager := sse.NewHubManager(logger)
	broadcaster := sse.NewBroadcaster(hubManager, logger)

	conversationClient := conversation.NewClient(m, kb.PromptFragment(), logger)
	authService := auth.New(store, clk, ids, logger, authCfg)
	audioManager := audio.NewManager(broadcaster, clk, store, logger)
	gameController := game.NewController(store, conversationClient, authService, audioManager, kb, clk, logger)
	reporter := system.NewReporter(storageType, store, authService, gameController, audioManager, clk)

	bridge := embed.NewBridge(gameController, func(r *http.Request) model.ClientID {
		if client := webmiddleware.GetClient(r.Context()); client != "" {
			return client
		}
		return authService.NewClient()
	}, embedOrigins, logger)

	gameController.AddNotifier(broadcaster)
	gameController.AddNotifier(bridge)

	return &App{
		Storage:        store,
		StorageType:    storageType,
		Clock:          clk,
		IDs:            ids,
		Knowledge:      kb,
		Conversation:   conversationClient,
		AuthService:    authService,
		AudioManager:   audioManager,
		GameController: gameController,
		Reporter:       reporter,
		HubManager:     hubManager,
		Broadcaster:    broadcaster,
		Bridge:         bridge,
	}
}

// ReleaseClient frees what a client holds once its last event stream is gone.
// The game itself is kept so the client can reconnect to it; EvictIdleGames
// drops it later.
func (a *App) ReleaseClient(client model.ClientID) {
	a.AudioManager.Dispose(client)
}

// Connected reports whether client has an event stream hub or an embedding
// websocket open
func (a *App) Connected(client model.ClientID) bool {
	return a.HubManager.GetHub(client) != nil || a.Bridge.HasConnections(client)
}

// EvictIdleGames drops the games of disconnected clients untouched for maxIdle
func (a *App) EvictIdleGames(maxIdle time.Duration) []model.ClientID {
	return a.GameController.EvictIdle(maxIdle, a.Connected)
}

// Close stops audio engines and closes the storage backend
func (a *App) Close() error {
	a.AudioManager.Close()
	var errs []error
	for _, c := range a.closers {
		errs = append(errs, c.Close())
	}
	return errors.Join(errs...)
}
