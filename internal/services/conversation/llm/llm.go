// Package llm talks to hosted chat models over their REST APIs.
package llm

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Role identifies who authored a turn of the conversation
type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

// Message is one turn of a chat
type Message struct {
	Role Role
	Text string
}

// Request is a full chat exchange to complete. History ends with the
// user turn the model should answer.
type Request struct {
	SystemInstruction string
	History           []Message

	// Schema constrains the JSON reply where the provider supports it
	Schema map[string]any
}

// Model produces the next model turn for a conversation
type Model interface {
	Generate(ctx context.Context, req Request) (string, error)
}

// Provider names
const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
)

// Config selects and configures a provider
type Config struct {
	Provider string
	APIKey   string
	Model    string
	BaseURL  string
	Timeout  time.Duration
}

// DefaultConfig returns the defaults for the Gemini provider
func DefaultConfig() Config {
	return Config{
		Provider: ProviderGemini,
		Model:    "gemini-2.5-flash",
		Timeout:  60 * time.Second,
	}
}

// New creates the Model named by cfg.Provider
func New(cfg Config) (Model, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("missing %s API key", cfg.Provider)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultConfig().Timeout
	}

	switch cfg.Provider {
	case ProviderGemini, "":
		return NewGemini(cfg), nil
	case ProviderOpenAI:
		return NewOpenAI(cfg), nil
	default:
		return nil, fmt.Errorf("unknown LLM provider %q", cfg.Provider)
	}
}
