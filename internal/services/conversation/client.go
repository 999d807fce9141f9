// Package conversation runs the question-and-guess chat with the language model.
package conversation

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/mcoot/chefgenie/internal/model"
	"github.com/mcoot/chefgenie/internal/services/conversation/llm"
)

// Client creates chat sessions against one model with a fixed character brief
type Client struct {
	model  llm.Model
	system string
	schema map[string]any
	logger *slog.Logger
}

// NewClient creates a conversation client. knowledgeFragment is embedded in the
// system instruction.
func NewClient(m llm.Model, knowledgeFragment string, logger *slog.Logger) *Client {
	return &Client{
		model:  m,
		system: SystemInstruction(knowledgeFragment),
		schema: ResponseSchema(),
		logger: logger.With(slog.String("component", "conversation")),
	}
}

// NewSession returns an unstarted session
func (c *Client) NewSession() *Session {
	return &Session{client: c}
}

// Session is one game's chat. Sends are serialized.
type Session struct {
	client *Client

	mu      sync.Mutex
	history []llm.Message
	started bool
	closed  atomic.Bool
}

// StartGame opens the chat and asks for the first question.
// Calling it again restarts the chat from scratch.
func (s *Session) StartGame(ctx context.Context) (*model.GameResponse, error) {
	if s.closed.Load() {
		return nil, model.ErrGameNotStarted
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.history = nil
	s.started = true
	return s.sendLocked(ctx, "start", openingMessage)
}

// SendAnswer forwards the player's chosen option
func (s *Session) SendAnswer(ctx context.Context, answer string) (*model.GameResponse, error) {
	return s.send(ctx, "answer", answer)
}

// SendCorrection forwards a free-text answer
func (s *Session) SendCorrection(ctx context.Context, correction string) (*model.GameResponse, error) {
	return s.send(ctx, "correction", correctionMessage(correction))
}

// UndoLastTurn asks the model to repeat the previous question
func (s *Session) UndoLastTurn(ctx context.Context) (*model.GameResponse, error) {
	return s.send(ctx, "undo", undoMessage)
}

// SendRealAnswer tells the model what the dish actually was
func (s *Session) SendRealAnswer(ctx context.Context, realAnswer string) (*model.GameResponse, error) {
	return s.send(ctx, "real_answer", realAnswerMessage(realAnswer))
}

// Close drops the chat. Calls made afterwards fail with ErrGameNotStarted.
func (s *Session) Close() {
	s.closed.Store(true)
}

// Turns returns the number of completed exchanges
func (s *Session) Turns() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.history) / 2
}

func (s *Session) send(ctx context.Context, kind, text string) (*model.GameResponse, error) {
	if s.closed.Load() {
		return nil, model.ErrGameNotStarted
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return nil, model.ErrGameNotStarted
	}
	return s.sendLocked(ctx, kind, text)
}

func (s *Session) sendLocked(ctx context.Context, kind, text string) (*model.GameResponse, error) {
	c := s.client
	history := make([]llm.Message, 0, len(s.history)+1)
	history = append(history, s.history...)
	history = append(history, llm.Message{Role: llm.RoleUser, Text: text})

	start := time.Now()
	reply, err := c.model.Generate(ctx, llm.Request{
		SystemInstruction: c.system,
		History:           history,
		Schema:            c.schema,
	})
	if err != nil {
		c.logger.Error("model call failed",
			slog.String("kind", kind),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("%s: %w", kind, err)
	}

	resp, err := ParseResponse(reply)
	if err != nil {
		c.logger.Warn("rejected model reply",
			slog.String("kind", kind),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("%s: %w", kind, err)
	}

	s.history = append(history, llm.Message{Role: llm.RoleModel, Text: reply})

	c.logger.Debug("model replied",
		slog.String("kind", kind),
		slog.String("type", string(resp.Type)),
		slog.Int("confidence", resp.Confidence),
		slog.Duration("latency", time.Since(start)),
	)
	return resp, nil
}
