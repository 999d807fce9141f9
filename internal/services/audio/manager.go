// Package audio drives per-client sound: one-shot effects and a look-ahead
// step sequencer for music. Engines emit cues; clients synthesize them.
package audio

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/mcoot/chefgenie/internal/dependencies/clock"
	"github.com/mcoot/chefgenie/internal/model"
	"github.com/mcoot/chefgenie/internal/storage"
)

// Manager owns one Engine per client
type Manager struct {
	sink    Sink
	clock   clock.Clock
	storage storage.Storage
	logger  *slog.Logger

	mu      sync.Mutex
	engines map[model.ClientID]*Engine
}

// NewManager creates an audio manager that delivers cues to sink
func NewManager(sink Sink, clk clock.Clock, store storage.Storage, logger *slog.Logger) *Manager {
	return &Manager{
		sink:    sink,
		clock:   clk,
		storage: store,
		logger:  logger.With(slog.String("component", "audio")),
		engines: make(map[model.ClientID]*Engine),
	}
}

// Engine returns client's engine, creating it with the persisted volume on first use
func (m *Manager) Engine(ctx context.Context, client model.ClientID) *Engine {
	m.mu.Lock()
	defer m.mu.Unlock()

	if e, ok := m.engines[client]; ok {
		return e
	}

	e := newEngine(client, m.sink, m.clock, m.storage, m.logger)

	var stored int
	err := storage.GetJSON(ctx, m.storage, storage.VolumeKey(client), &stored)
	switch {
	case err == nil:
		e.volume = float64(clampPercent(stored)) / 100
	case errors.Is(err, model.ErrKeyNotFound):
	default:
		m.logger.Warn("could not load volume, using default",
			slog.String("client", string(client)),
			slog.String("error", err.Error()),
		)
	}

	m.engines[client] = e
	return e
}

// Dispose stops and forgets client's engine
func (m *Manager) Dispose(client model.ClientID) {
	m.mu.Lock()
	e, ok := m.engines[client]
	delete(m.engines, client)
	m.mu.Unlock()

	if ok {
		e.Close()
	}
}

// Close disposes every engine
func (m *Manager) Close() {
	m.mu.Lock()
	engines := m.engines
	m.engines = make(map[model.ClientID]*Engine)
	m.mu.Unlock()

	for _, e := range engines {
		e.Close()
	}
}

// Len returns the number of live engines
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.engines)
}

func clampPercent(v int) int {
	switch {
	case v < 0:
		return 0
	case v > 100:
		return 100
	default:
		return v
	}
}
