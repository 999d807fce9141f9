package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/mcoot/chefgenie/internal/api"
	"github.com/mcoot/chefgenie/internal/config"
	"github.com/mcoot/chefgenie/internal/factory"
	"github.com/mcoot/chefgenie/internal/services/auth"
	"github.com/mcoot/chefgenie/internal/services/conversation/llm"
	redisstorage "github.com/mcoot/chefgenie/internal/storage/redis"
	"github.com/mcoot/chefgenie/internal/web"
)

// How often idle event hubs and games are swept
const (
	hubSweepInterval  = time.Minute
	gameSweepInterval = 5 * time.Minute
)

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Info("no .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger := newLogger(cfg)
	slog.SetDefault(logger)

	model, err := llm.New(cfg.LLM.Model())
	if err != nil {
		logger.Error("failed to create model client", slog.String("error", err.Error()))
		os.Exit(1)
	}

	factoryCfg := factory.Config{
		Model:        model,
		Logger:       logger,
		StorageType:  cfg.StorageType,
		SQLitePath:   cfg.SQLitePath,
		EmbedOrigins: cfg.EmbedAllowedOrigins,
		AuthConfig: auth.Config{
			BcryptCost: cfg.BcryptCost,
			Latency:    cfg.AuthLatency,
		},
	}
	if cfg.StorageType == factory.StorageTypeRedis {
		redisCfg := redisstorage.DefaultConfig()
		redisCfg.URL = cfg.RedisURL
		factoryCfg.RedisConfig = &redisCfg
	}

	app, err := factory.New(factoryCfg)
	if err != nil {
		logger.Error("failed to create application", slog.String("error", err.Error()))
		os.Exit(1)
	}

	staticDir := cfg.StaticDir
	if staticDir == "" {
		staticDir = findStaticDir()
	}

	apiRouter := api.NewRouter(api.RouterConfig{
		Logger:         logger,
		AuthService:    app.AuthService,
		GameController: app.GameController,
		AudioManager:   app.AudioManager,
		Knowledge:      app.Knowledge,
		Reporter:       app.Reporter,
	})

	webRouter := web.NewRouter(web.RouterConfig{
		Logger:         logger,
		AuthService:    app.AuthService,
		GameController: app.GameController,
		AudioManager:   app.AudioManager,
		Knowledge:      app.Knowledge,
		Reporter:       app.Reporter,
		HubManager:     app.HubManager,
		Broadcaster:    app.Broadcaster,
		Bridge:         app.Bridge,
		StaticDir:      staticDir,
	})

	// Combine routers
	mux := http.NewServeMux()
	mux.Handle("/api/", apiRouter)
	mux.Handle("/", webRouter)

	serverConfig := api.DefaultServerConfig()
	serverConfig.Port = cfg.Port
	server := api.NewServer(mux, serverConfig, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(server.Start)
	g.Go(func() error {
		return app.HubManager.Run(gctx, hubSweepInterval, app.ReleaseClient)
	})
	g.Go(func() error {
		return app.GameController.RunEviction(gctx, gameSweepInterval, cfg.GameIdleTTL, app.Connected)
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutdown signal received")
		return server.Shutdown(context.Background())
	})

	logger.Info("server started",
		slog.String("addr", server.Addr()),
		slog.String("storage", app.StorageType),
		slog.String("llm_provider", cfg.LLM.Provider),
	)

	err = g.Wait()
	stop()
	if closeErr := app.Close(); closeErr != nil {
		logger.Error("failed to close application", slog.String("error", closeErr.Error()))
	}
	if err != nil {
		logger.Error("server error", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.Info("server stopped")
}

func newLogger(cfg *config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.LogLevel}
	if cfg.LogJSON {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}

// findStaticDir looks for the static files directory
func findStaticDir() string {
	// Try common locations
	candidates := []string{
		"internal/web/static",
		"./internal/web/static",
		filepath.Join(os.Getenv("PWD"), "internal/web/static"),
	}

	for _, dir := range candidates {
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			return dir
		}
	}

	// Default to relative path
	return "internal/web/static"
}
