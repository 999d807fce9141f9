package mocks

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/mcoot/chefgenie/internal/services/conversation/llm"
)

type scriptedReply struct {
	text string
	err  error
}

// ScriptedModel is a fake llm.Model that replays queued replies in order.
// When the queue is empty it asks a generic Yes/No question.
type ScriptedModel struct {
	mu       sync.Mutex
	replies  []scriptedReply
	requests []llm.Request
	gate     chan struct{}
	pending  int
}

// Ensure ScriptedModel implements Model
var _ llm.Model = (*ScriptedModel)(nil)

// NewScriptedModel creates an empty ScriptedModel
func NewScriptedModel() *ScriptedModel {
	return &ScriptedModel{}
}

// Generate returns the next queued reply, waiting first if the model is held
func (m *ScriptedModel) Generate(ctx context.Context, req llm.Request) (string, error) {
	m.mu.Lock()
	m.requests = append(m.requests, req)
	gate := m.gate
	m.pending++
	m.mu.Unlock()

	defer func() {
		m.mu.Lock()
		m.pending--
		m.mu.Unlock()
	}()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.replies) == 0 {
		return questionJSON("Is it a main dish?", "Yes", "No"), nil
	}
	next := m.replies[0]
	m.replies = m.replies[1:]
	return next.text, next.err
}

// Queue adds raw reply texts
func (m *ScriptedModel) Queue(texts ...string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range texts {
		m.replies = append(m.replies, scriptedReply{text: t})
	}
}

// QueueQuestion adds a question reply
func (m *ScriptedModel) QueueQuestion(content string, options ...string) {
	m.Queue(questionJSON(content, options...))
}

// QueueGuess adds a guess reply
func (m *ScriptedModel) QueueGuess(dish string) {
	m.Queue(mustJSON(map[string]any{
		"type":       "guess",
		"content":    dish,
		"emotion":    "confident",
		"thinking":   "It has to be this",
		"confidence": 90,
		"options":    []string{},
	}))
}

// QueueReaction adds a final reaction reply with the given emotion
func (m *ScriptedModel) QueueReaction(content, emotion string) {
	m.Queue(mustJSON(map[string]any{
		"type":       "question",
		"content":    content,
		"emotion":    emotion,
		"thinking":   "",
		"confidence": 0,
		"options":    []string{},
	}))
}

// QueueError makes the next call fail with err
func (m *ScriptedModel) QueueError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.replies = append(m.replies, scriptedReply{err: err})
}

// Hold makes subsequent calls block until Release
func (m *ScriptedModel) Hold() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.gate == nil {
		m.gate = make(chan struct{})
	}
}

// Release unblocks held calls
func (m *ScriptedModel) Release() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.gate != nil {
		close(m.gate)
		m.gate = nil
	}
}

// Pending returns the number of calls currently in flight
func (m *ScriptedModel) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pending
}

// Requests returns a copy of every request received
func (m *ScriptedModel) Requests() []llm.Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]llm.Request(nil), m.requests...)
}

// LastUserText returns the final user turn of the most recent request
func (m *ScriptedModel) LastUserText() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.requests) == 0 {
		return ""
	}
	history := m.requests[len(m.requests)-1].History
	if len(history) == 0 {
		return ""
	}
	return history[len(history)-1].Text
}

func questionJSON(content string, options ...string) string {
	if options == nil {
		options = []string{}
	}
	return mustJSON(map[string]any{
		"type":       "question",
		"content":    content,
		"emotion":    "thinking",
		"thinking":   "Narrowing it down",
		"confidence": 20,
		"options":    options,
	})
}

func mustJSON(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return string(data)
}
