// Package embed lets a parent page drive the game over a websocket: the
// server pushes GAME_STATE_UPDATE messages and accepts CMD_* commands.
package embed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"

	"github.com/mcoot/chefgenie/internal/api/apierr"
	"github.com/mcoot/chefgenie/internal/dependencies/idgen"
	"github.com/mcoot/chefgenie/internal/model"
	"github.com/mcoot/chefgenie/internal/services/game"
)

// Message types
const (
	TypeGameStateUpdate = "GAME_STATE_UPDATE"
	TypeError           = "ERROR"

	CmdStart      = "CMD_START"
	CmdAnswer     = "CMD_ANSWER"
	CmdUndo       = "CMD_UNDO"
	CmdRestart    = "CMD_RESTART"
	CmdRealAnswer = "CMD_REAL_ANSWER"
)

const writeTimeout = 5 * time.Second

// Command is an inbound message from the parent page
type Command struct {
	Type   string `json:"type"`
	Answer string `json:"answer,omitempty"`
}

// Message is an outbound message to the parent page
type Message struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

// ErrorPayload is the payload of an ERROR message
type ErrorPayload struct {
	Message string `json:"message"`
}

// ClientResolver picks the client a connection plays as
type ClientResolver func(r *http.Request) model.ClientID

// Bridge serves embedding websockets. It implements game.Notifier.
type Bridge struct {
	gameController *game.Controller
	resolveClient  ClientResolver
	originPatterns []string
	logger         *slog.Logger

	mu    sync.Mutex
	conns map[model.ClientID]map[*conn]struct{}
}

// conn serializes writes to one websocket
type conn struct {
	ws *websocket.Conn
	mu sync.Mutex
}

func (c *conn) writeJSON(ctx context.Context, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	return c.ws.Write(ctx, websocket.MessageText, data)
}

// NewBridge creates a bridge. A "client" query parameter holding a valid
// token takes precedence over resolveClient.
func NewBridge(gameController *game.Controller, resolveClient ClientResolver, originPatterns []string, logger *slog.Logger) *Bridge {
	return &Bridge{
		gameController: gameController,
		resolveClient:  resolveClient,
		originPatterns: originPatterns,
		logger:         logger.With(slog.String("component", "embed")),
		conns:          make(map[model.ClientID]map[*conn]struct{}),
	}
}

// Publish sends g to every connection of client
func (b *Bridge) Publish(client model.ClientID, g *model.Game) {
	msg := Message{Type: TypeGameStateUpdate, Payload: g.Update()}
	for _, c := range b.connections(client) {
		if err := c.writeJSON(context.Background(), msg); err != nil {
			b.logger.Debug("embed write failed",
				slog.String("client", string(client)),
				slog.Any("error", err))
		}
	}
}

// HasConnections reports whether client has an open websocket
func (b *Bridge) HasConnections(client model.ClientID) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.conns[client]) > 0
}

// Connections returns the number of open websockets
func (b *Bridge) Connections() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := 0
	for _, set := range b.conns {
		n += len(set)
	}
	return n
}

// ServeHTTP upgrades the request and runs the command loop
func (b *Bridge) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	client := b.client(r)

	ws, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: b.originPatterns,
	})
	if err != nil {
		b.logger.Warn("failed to accept websocket", slog.Any("error", err))
		return
	}
	defer func() {
		_ = ws.Close(websocket.StatusNormalClosure, "session ended")
	}()

	c := &conn{ws: ws}
	b.register(client, c)
	defer b.unregister(client, c)

	// Commands run alongside the read loop so a second action while the
	// genie is thinking is refused by the controller and a restart lands at
	// once. The socket stays open until they finish.
	ctx, cancel := context.WithCancel(r.Context())
	var inflight sync.WaitGroup
	defer func() {
		cancel()
		inflight.Wait()
	}()

	logger := b.logger.With(slog.String("client", string(client)))
	logger.Info("embed connected")

	if err := c.writeJSON(ctx, Message{Type: TypeGameStateUpdate, Payload: b.gameController.Snapshot(ctx, client).Update()}); err != nil {
		logger.Debug("embed initial write failed", slog.Any("error", err))
		return
	}

	for {
		_, data, err := ws.Read(ctx)
		if err != nil {
			if websocket.CloseStatus(err) != -1 {
				logger.Info("embed closed by client")
			} else {
				logger.Debug("embed read error", slog.Any("error", err))
			}
			return
		}

		var cmd Command
		if err := json.Unmarshal(data, &cmd); err != nil {
			b.writeError(ctx, c, "invalid message")
			continue
		}
		inflight.Go(func() {
			if err := b.dispatch(ctx, client, cmd); err != nil {
				b.writeError(ctx, c, err.Error())
			}
		})
	}
}

// dispatch runs cmd. The resulting state reaches the socket through Publish.
func (b *Bridge) dispatch(ctx context.Context, client model.ClientID, cmd Command) error {
	var err error
	switch cmd.Type {
	case CmdStart:
		_, err = b.gameController.Start(ctx, client)
	case CmdAnswer:
		_, err = b.gameController.Answer(ctx, client, cmd.Answer)
	case CmdUndo:
		_, err = b.gameController.Undo(ctx, client)
	case CmdRestart:
		b.gameController.Restart(ctx, client)
	case CmdRealAnswer:
		_, err = b.gameController.Reveal(ctx, client, cmd.Answer)
	default:
		return fmt.Errorf("unknown command %q", cmd.Type)
	}
	if err != nil {
		return errors.New(apierr.Message(err))
	}
	return nil
}

func (b *Bridge) writeError(ctx context.Context, c *conn, message string) {
	if err := c.writeJSON(ctx, Message{Type: TypeError, Payload: ErrorPayload{Message: message}}); err != nil {
		b.logger.Debug("embed error write failed", slog.Any("error", err))
	}
}

func (b *Bridge) client(r *http.Request) model.ClientID {
	if token := r.URL.Query().Get("client"); idgen.Valid(token) {
		return model.ClientID(token)
	}
	return b.resolveClient(r)
}

func (b *Bridge) connections(client model.ClientID) []*conn {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]*conn, 0, len(b.conns[client]))
	for c := range b.conns[client] {
		out = append(out, c)
	}
	return out
}

func (b *Bridge) register(client model.ClientID, c *conn) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.conns[client] == nil {
		b.conns[client] = make(map[*conn]struct{})
	}
	b.conns[client][c] = struct{}{}
}

func (b *Bridge) unregister(client model.ClientID, c *conn) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.conns[client], c)
	if len(b.conns[client]) == 0 {
		delete(b.conns, client)
	}
}
