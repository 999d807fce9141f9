package response

import (
	"time"

	"github.com/mcoot/chefgenie/internal/model"
	"github.com/mcoot/chefgenie/internal/services/audio"
	"github.com/mcoot/chefgenie/internal/services/knowledge"
)

// Client is the response for issuing a client token
type Client struct {
	ClientToken string `json:"client_token"`
}

// User represents a user in API responses
type User struct {
	Username    string    `json:"username"`
	Role        string    `json:"role"`
	Score       int       `json:"score"`
	GamesPlayed int       `json:"games_played"`
	IsBanned    bool      `json:"is_banned"`
	CreatedAt   time.Time `json:"created_at"`
}

// UserFromModel converts a model.User to a response User
func UserFromModel(u *model.User) User {
	return User{
		Username:    u.Username,
		Role:        string(u.Role),
		Score:       u.Score,
		GamesPlayed: u.GamesPlayed,
		IsBanned:    u.IsBanned,
		CreatedAt:   u.CreatedAt,
	}
}

// UsersFromModel converts a slice of users, never returning nil
func UsersFromModel(users []model.User) []User {
	out := make([]User, len(users))
	for i := range users {
		out[i] = UserFromModel(&users[i])
	}
	return out
}

// Me is the response for the current session
type Me struct {
	LoggedIn bool  `json:"logged_in"`
	User     *User `json:"user"`
}

// MeFromModel builds a Me response; u may be nil
func MeFromModel(u *model.User) Me {
	if u == nil {
		return Me{}
	}
	user := UserFromModel(u)
	return Me{LoggedIn: true, User: &user}
}

// Scores is the running tally between the player and the genie
type Scores struct {
	User int `json:"user"`
	AI   int `json:"ai"`
}

// Game represents a client's round in API responses
type Game struct {
	State         string   `json:"state"`
	CurrentText   string   `json:"current_text"`
	Emotion       string   `json:"emotion"`
	Thinking      string   `json:"thinking,omitempty"`
	Confidence    int      `json:"confidence"`
	Options       []string `json:"options"`
	QuestionCount int      `json:"question_count"`
	Loading       bool     `json:"loading"`
	CanUndo       bool     `json:"can_undo"`
	Scores        Scores   `json:"scores"`
	Guess         string   `json:"guess,omitempty"`
	RealAnswer    string   `json:"real_answer,omitempty"`
	MatchedDish   string   `json:"matched_dish,omitempty"`
}

// GameFromModel converts model.Game to a response Game
func GameFromModel(g *model.Game) Game {
	options := make([]string, len(g.Options))
	copy(options, g.Options)
	return Game{
		State:         string(g.State),
		CurrentText:   g.CurrentText,
		Emotion:       string(g.Emotion),
		Thinking:      g.Thinking,
		Confidence:    g.Confidence,
		Options:       options,
		QuestionCount: g.QuestionCount,
		Loading:       g.Loading,
		CanUndo:       g.CanUndo(),
		Scores:        Scores{User: g.Scores.User, AI: g.Scores.AI},
		Guess:         g.Guess,
		RealAnswer:    g.RealAnswer,
		MatchedDish:   g.MatchedDish,
	}
}

// Audio is a client's audio engine state
type Audio struct {
	Volume int    `json:"volume"`
	Muted  bool   `json:"muted"`
	Track  string `json:"track"`
}

// AudioFromEngine converts an engine snapshot
func AudioFromEngine(s audio.EngineState) Audio {
	return Audio{
		Volume: s.Volume,
		Muted:  s.Muted,
		Track:  string(s.Track),
	}
}

// Dishes is the response for a knowledge base listing
type Dishes struct {
	Total      int                  `json:"total"`
	Categories []knowledge.Category `json:"categories,omitempty"`
	Results    []knowledge.Dish     `json:"results,omitempty"`
}

// Match is the response for resolving free text to a dish
type Match struct {
	Matched  bool   `json:"matched"`
	Dish     string `json:"dish,omitempty"`
	Category string `json:"category,omitempty"`
	Distance int    `json:"distance"`
	Exact    bool   `json:"exact"`
}

// MatchFromResult converts a knowledge match
func MatchFromResult(m knowledge.MatchResult, ok bool) Match {
	if !ok {
		return Match{}
	}
	return Match{
		Matched:  true,
		Dish:     m.Dish.Name,
		Category: m.Dish.Category,
		Distance: m.Distance,
		Exact:    m.Exact,
	}
}
