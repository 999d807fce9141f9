package model

// ResponseType distinguishes a follow-up question from a final guess
type ResponseType string

const (
	ResponseQuestion ResponseType = "question"
	ResponseGuess    ResponseType = "guess"
)

// GameResponse is one validated reply from the language model
type GameResponse struct {
	Type       ResponseType `json:"type"`
	Content    string       `json:"content"`
	Emotion    Emotion      `json:"emotion"`
	Thinking   string       `json:"thinking"`
	Confidence int          `json:"confidence"`
	Options    []string     `json:"options"`
}

// IsGuess reports whether the model committed to a dish
func (r *GameResponse) IsGuess() bool {
	return r.Type == ResponseGuess
}
