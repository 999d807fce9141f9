package model

// GameState represents which screen the game is on
type GameState string

const (
	GameStateStart   GameState = "start"   // Waiting for the player to begin
	GameStatePlaying GameState = "playing" // Question rounds in progress
	GameStateWon     GameState = "won"     // The genie produced a guess awaiting verification
	GameStateLost    GameState = "lost"    // Round over
	GameStateError   GameState = "error"   // Model call failed, restart required
	GameStateReveal  GameState = "reveal"  // Guess rejected, waiting for the real answer
)

// Emotion drives the genie's avatar
type Emotion string

const (
	EmotionIdle      Emotion = "idle"
	EmotionThinking  Emotion = "thinking"
	EmotionHappy     Emotion = "happy"
	EmotionConfused  Emotion = "confused"
	EmotionConfident Emotion = "confident"
	EmotionCelebrate Emotion = "celebrate"
)

// ValidEmotion reports whether e is one of the known emotions
func ValidEmotion(e Emotion) bool {
	switch e {
	case EmotionIdle, EmotionThinking, EmotionHappy, EmotionConfused, EmotionConfident, EmotionCelebrate:
		return true
	}
	return false
}

// Fixed lines shown by the game outside of model responses
const (
	StartText        = "Think of a food item you ate recently..."
	ErrorText        = "My psychic powers are foggy (API Error). Try again?"
	DefaultThinking  = "I'm meditating on your food waves..."
	GuessCorrectText = "Aha! I knew it! My culinary senses never fail!"
	GuessWrongText   = "What?! Impossible! I must have tasted the wrong spiritual curry. What was it actually?"
)

// FallbackOptions are offered when a question arrives without options
var FallbackOptions = []string{"Yes", "No"}

// Scores is the running tally between the player and the genie
type Scores struct {
	User int `json:"user"`
	AI   int `json:"ai"`
}

// Game is one client's view of the current round
type Game struct {
	ClientID      ClientID
	State         GameState
	CurrentText   string
	Emotion       Emotion
	Thinking      string
	Confidence    int
	Options       []string
	QuestionCount int
	Loading       bool
	Scores        Scores

	// Guess is the dish the genie guessed, set on entering won
	Guess string
	// RealAnswer is what the player revealed after rejecting a guess
	RealAnswer string
	// MatchedDish is the knowledge base entry closest to RealAnswer, if any
	MatchedDish string
}

// CanUndo reports whether an undo request is currently allowed
func (g *Game) CanUndo() bool {
	return g.State == GameStatePlaying && !g.Loading && g.QuestionCount >= 2
}

// Update returns the payload broadcast to embedding frames
func (g *Game) Update() GameStateUpdate {
	options := g.Options
	if options == nil {
		options = []string{}
	}
	return GameStateUpdate{
		GameState:     g.State,
		CurrentText:   g.CurrentText,
		Emotion:       g.Emotion,
		Options:       options,
		QuestionCount: g.QuestionCount,
		Scores:        g.Scores,
	}
}

// Clone returns a copy that does not share the options slice
func (g *Game) Clone() *Game {
	c := *g
	if g.Options != nil {
		c.Options = append([]string(nil), g.Options...)
	}
	return &c
}

// GameStateUpdate is the payload of a GAME_STATE_UPDATE message
type GameStateUpdate struct {
	GameState     GameState `json:"gameState"`
	CurrentText   string    `json:"currentText"`
	Emotion       Emotion   `json:"emotion"`
	Options       []string  `json:"options"`
	QuestionCount int       `json:"questionCount"`
	Scores        Scores    `json:"scores"`
}
