package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/mcoot/chefgenie/internal/model"
)

const defaultOpenAIBaseURL = "https://api.openai.com/v1"

// OpenAI calls the chat completions endpoint in JSON mode
type OpenAI struct {
	apiKey  string
	model   string
	baseURL string
	client  *http.Client
}

// NewOpenAI creates an OpenAI-compatible model client
func NewOpenAI(cfg Config) *OpenAI {
	baseURL := strings.TrimSpace(cfg.BaseURL)
	if baseURL == "" {
		baseURL = defaultOpenAIBaseURL
	}
	name := cfg.Model
	if name == "" || strings.HasPrefix(name, "gemini") {
		name = "gpt-4o-mini"
	}
	return &OpenAI{
		apiKey:  cfg.APIKey,
		model:   name,
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: cfg.Timeout},
	}
}

type openAIMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openAIResponseFormat struct {
	Type string `json:"type"`
}

type openAIRequest struct {
	Model          string               `json:"model"`
	Messages       []openAIMessage      `json:"messages"`
	ResponseFormat openAIResponseFormat `json:"response_format"`
}

type openAIResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

var _ Model = (*OpenAI)(nil)

func (o *OpenAI) Generate(ctx context.Context, req Request) (string, error) {
	body := openAIRequest{
		Model:          o.model,
		ResponseFormat: openAIResponseFormat{Type: "json_object"},
	}
	if req.SystemInstruction != "" {
		body.Messages = append(body.Messages, openAIMessage{Role: "system", Content: req.SystemInstruction})
	}
	for _, m := range req.History {
		role := "user"
		if m.Role == RoleModel {
			role = "assistant"
		}
		body.Messages = append(body.Messages, openAIMessage{Role: role, Content: m.Text})
	}

	raw, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	url := o.baseURL + "/chat/completions"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(raw))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+o.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := o.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("%w: openai request failed: %v", model.ErrModelUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	respRaw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: read response: %v", model.ErrModelUnavailable, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("%w: openai http %d: %s", model.ErrModelUnavailable, resp.StatusCode, string(respRaw))
	}

	var decoded openAIResponse
	if err := json.Unmarshal(respRaw, &decoded); err != nil {
		return "", fmt.Errorf("%w: unmarshal response: %v", model.ErrMalformedResponse, err)
	}
	if len(decoded.Choices) == 0 {
		return "", fmt.Errorf("%w: openai response missing choices", model.ErrMalformedResponse)
	}
	return decoded.Choices[0].Message.Content, nil
}
