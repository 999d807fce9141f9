package conversation

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/mcoot/chefgenie/internal/model"
)

// rawResponse mirrors the reply schema with every field optional so that
// missing values can be told apart from zero values
type rawResponse struct {
	Type       *string  `json:"type"`
	Content    *string  `json:"content"`
	Emotion    *string  `json:"emotion"`
	Thinking   *string  `json:"thinking"`
	Confidence *float64 `json:"confidence"`
	Options    []string `json:"options"`
}

// ParseResponse validates a model reply field by field.
// Rejections wrap model.ErrMalformedResponse.
func ParseResponse(text string) (*model.GameResponse, error) {
	content := cleanJSONContent(text)
	if content == "" {
		return nil, fmt.Errorf("%w: empty reply", model.ErrMalformedResponse)
	}

	var raw rawResponse
	if err := json.Unmarshal([]byte(content), &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrMalformedResponse, err)
	}

	if raw.Type == nil {
		return nil, fmt.Errorf("%w: missing type", model.ErrMalformedResponse)
	}
	kind := model.ResponseType(strings.ToLower(strings.TrimSpace(*raw.Type)))
	if kind != model.ResponseQuestion && kind != model.ResponseGuess {
		return nil, fmt.Errorf("%w: unknown type %q", model.ErrMalformedResponse, *raw.Type)
	}

	if raw.Content == nil || strings.TrimSpace(*raw.Content) == "" {
		return nil, fmt.Errorf("%w: empty content", model.ErrMalformedResponse)
	}

	resp := &model.GameResponse{
		Type:    kind,
		Content: strings.TrimSpace(*raw.Content),
		Emotion: model.EmotionThinking,
		Options: []string{},
	}

	if raw.Emotion != nil {
		if e := model.Emotion(strings.ToLower(strings.TrimSpace(*raw.Emotion))); model.ValidEmotion(e) {
			resp.Emotion = e
		}
	}
	if raw.Thinking != nil {
		resp.Thinking = strings.TrimSpace(*raw.Thinking)
	}
	if raw.Confidence != nil {
		resp.Confidence = clampConfidence(*raw.Confidence)
	}

	// Guesses never carry options
	if kind == model.ResponseQuestion {
		for _, opt := range raw.Options {
			if opt = strings.TrimSpace(opt); opt != "" {
				resp.Options = append(resp.Options, opt)
			}
		}
	}

	return resp, nil
}

func clampConfidence(v float64) int {
	if math.IsNaN(v) {
		return 0
	}
	return int(math.Round(math.Max(0, math.Min(100, v))))
}

// cleanJSONContent removes markdown code fences and any chatter around the JSON object
func cleanJSONContent(content string) string {
	content = strings.TrimSpace(content)

	if strings.HasPrefix(content, "```") {
		content = strings.TrimPrefix(content, "```json")
		content = strings.TrimPrefix(content, "```JSON")
		content = strings.TrimPrefix(content, "```")
		content = strings.TrimSuffix(strings.TrimSpace(content), "```")
		content = strings.TrimSpace(content)
	}

	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start >= 0 && end > start {
		content = content[start : end+1]
	}
	return content
}
