// Package system builds the owner's system report.
package system

import (
	"context"
	"fmt"
	"runtime"
	"runtime/debug"
	"sort"
	"time"

	"github.com/mcoot/chefgenie/internal/dependencies/clock"
	"github.com/mcoot/chefgenie/internal/services/audio"
	"github.com/mcoot/chefgenie/internal/services/auth"
	"github.com/mcoot/chefgenie/internal/services/game"
	"github.com/mcoot/chefgenie/internal/storage"
)

// Module is one entry of the build's module graph
type Module struct {
	Path    string `json:"path"`
	Version string `json:"version"`
}

// StorageStats is reported by backends that can size themselves
type StorageStats struct {
	Keys  int   `json:"keys"`
	Bytes int64 `json:"bytes"`
}

// Report describes the running server
type Report struct {
	GeneratedAt    time.Time     `json:"generated_at"`
	UptimeSeconds  int64         `json:"uptime_seconds"`
	Storage        string        `json:"storage"`
	StorageStats   *StorageStats `json:"storage_stats,omitempty"`
	Users          int           `json:"users"`
	UsersBlobBytes int           `json:"users_blob_bytes"`
	ActiveGames    int           `json:"active_games"`
	AudioEngines   int           `json:"audio_engines"`
	GoVersion      string        `json:"go_version"`
	MainModule     Module        `json:"main_module"`
	Dependencies   []Module      `json:"dependencies"`
}

// statser is implemented by backends that can size themselves
type statser interface {
	Stats(ctx context.Context) (rows int, bytes int64, err error)
}

// Reporter gathers a Report from the running services
type Reporter struct {
	storageName string
	storage     storage.Storage
	auth        *auth.Service
	games       *game.Controller
	audio       *audio.Manager
	clock       clock.Clock
	started     time.Time
}

// NewReporter creates a Reporter. storageName is the configured backend.
func NewReporter(
	storageName string,
	store storage.Storage,
	authService *auth.Service,
	games *game.Controller,
	audioManager *audio.Manager,
	clk clock.Clock,
) *Reporter {
	return &Reporter{
		storageName: storageName,
		storage:     store,
		auth:        authService,
		games:       games,
		audio:       audioManager,
		clock:       clk,
		started:     clk.Now(),
	}
}

// Report builds a fresh report
func (r *Reporter) Report(ctx context.Context) (*Report, error) {
	users, err := r.auth.GetAllUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	blob, err := r.auth.UsersBlobSize(ctx)
	if err != nil {
		return nil, fmt.Errorf("users blob: %w", err)
	}

	report := &Report{
		GeneratedAt:    r.clock.Now(),
		UptimeSeconds:  int64(r.clock.Since(r.started) / time.Second),
		Storage:        r.storageName,
		Users:          len(users),
		UsersBlobBytes: blob,
		ActiveGames:    r.games.ActiveGames(),
		AudioEngines:   r.audio.Len(),
		GoVersion:      runtime.Version(),
		Dependencies:   []Module{},
	}

	if s, ok := r.storage.(statser); ok {
		keys, bytes, err := s.Stats(ctx)
		if err != nil {
			return nil, fmt.Errorf("storage stats: %w", err)
		}
		report.StorageStats = &StorageStats{Keys: keys, Bytes: bytes}
	}

	if info, ok := debug.ReadBuildInfo(); ok {
		report.MainModule = Module{Path: info.Main.Path, Version: info.Main.Version}
		for _, dep := range info.Deps {
			m := Module{Path: dep.Path, Version: dep.Version}
			if dep.Replace != nil {
				m.Version = dep.Replace.Version
			}
			report.Dependencies = append(report.Dependencies, m)
		}
		sort.Slice(report.Dependencies, func(i, j int) bool {
			return report.Dependencies[i].Path < report.Dependencies[j].Path
		})
	}

	return report, nil
}
