package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
}

// NewOutput creates a new Output formatter
func NewOutput(format string) *Output {
	return &Output{format: format}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintError outputs an error
func (o *Output) PrintError(err error) {
	if o.format == "json" {
		errData := map[string]any{
			"error": map[string]string{
				"message": err.Error(),
			},
		}
		data, _ := json.Marshal(errData)
		fmt.Fprintln(os.Stderr, string(data))
	} else {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == "json" {
		data, _ := json.Marshal(map[string]string{"message": msg})
		fmt.Println(string(data))
	} else {
		fmt.Println(msg)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case ClientToken:
		fmt.Printf("Client token: %s\n", v.ClientToken)
	case Me:
		o.printMe(v)
	case Leaderboard:
		o.printUsers(v)
	case Game:
		o.printGame(v)
	case Audio:
		o.printAudio(v)
	case Dishes:
		o.printDishes(v)
	case Match:
		o.printMatch(v)
	case Report:
		o.printReport(v)
	case HealthResult:
		o.printHealthResult(v)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

// ClientToken response type (matches API)
type ClientToken struct {
	ClientToken string `json:"client_token"`
}

// User response type
type User struct {
	Username    string    `json:"username"`
	Role        string    `json:"role"`
	Score       int       `json:"score"`
	GamesPlayed int       `json:"games_played"`
	IsBanned    bool      `json:"is_banned"`
	CreatedAt   time.Time `json:"created_at"`
}

// Leaderboard is a ranked list of users
type Leaderboard []User

// Me response type
type Me struct {
	LoggedIn bool  `json:"logged_in"`
	User     *User `json:"user"`
}

// Scores response type
type Scores struct {
	User int `json:"user"`
	AI   int `json:"ai"`
}

// Game response type
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

// Audio response type
type Audio struct {
	Volume int    `json:"volume"`
	Muted  bool   `json:"muted"`
	Track  string `json:"track"`
}

// Category response type
type Category struct {
	Name   string   `json:"name"`
	Dishes []string `json:"dishes"`
}

// Dish response type
type Dish struct {
	Name     string `json:"name"`
	Category string `json:"category"`
}

// Dishes response type
type Dishes struct {
	Total      int        `json:"total"`
	Categories []Category `json:"categories,omitempty"`
	Results    []Dish     `json:"results,omitempty"`
}

// Match response type
type Match struct {
	Matched  bool   `json:"matched"`
	Dish     string `json:"dish,omitempty"`
	Category string `json:"category,omitempty"`
	Distance int    `json:"distance"`
	Exact    bool   `json:"exact"`
}

// Module response type
type Module struct {
	Path    string `json:"path"`
	Version string `json:"version"`
}

// Report response type
type Report struct {
	GeneratedAt  time.Time `json:"generated_at"`
	Uptime       int64     `json:"uptime_seconds"`
	Storage      string    `json:"storage"`
	StorageStats *struct {
		Keys  int   `json:"keys"`
		Bytes int64 `json:"bytes"`
	} `json:"storage_stats,omitempty"`
	Users          int      `json:"users"`
	UsersBlobBytes int      `json:"users_blob_bytes"`
	ActiveGames    int      `json:"active_games"`
	AudioEngines   int      `json:"audio_engines"`
	GoVersion      string   `json:"go_version"`
	MainModule     Module   `json:"main_module"`
	Dependencies   []Module `json:"dependencies"`
}

// HealthResult response type
type HealthResult struct {
	Status    string `json:"status"`
	Server    string `json:"server,omitempty"`
	LatencyMS int64  `json:"latency_ms"`
}

func (o *Output) printMe(m Me) {
	if !m.LoggedIn || m.User == nil {
		fmt.Println("Not logged in")
		return
	}
	o.printUser(*m.User)
}

func (o *Output) printUser(u User) {
	fmt.Printf("User: %s (%s)\n", u.Username, u.Role)
	fmt.Printf("Score: %d\n", u.Score)
	fmt.Printf("Games played: %d\n", u.GamesPlayed)
	if u.IsBanned {
		fmt.Println("BANNED")
	}
}

func (o *Output) printUsers(users Leaderboard) {
	if len(users) == 0 {
		fmt.Println("No users")
		return
	}
	for i, u := range users {
		banned := ""
		if u.IsBanned {
			banned = " [banned]"
		}
		fmt.Printf("%3d. %-20s %6d pts %4d games%s\n", i+1, u.Username, u.Score, u.GamesPlayed, banned)
	}
}

func (o *Output) printGame(g Game) {
	fmt.Printf("State: %s\n", g.State)
	if g.QuestionCount > 0 {
		fmt.Printf("Question #%d\n", g.QuestionCount)
	}
	fmt.Printf("Genie (%s): %s\n", g.Emotion, g.CurrentText)
	if g.Confidence > 0 {
		fmt.Printf("Confidence: %d%%\n", g.Confidence)
	}
	if g.Thinking != "" {
		fmt.Printf("Thinking: %s\n", g.Thinking)
	}

	if len(g.Options) > 0 {
		fmt.Println("\nOptions:")
		for _, opt := range g.Options {
			fmt.Printf("  - %s\n", opt)
		}
	}

	if g.Guess != "" {
		fmt.Printf("\nGuess: %s\n", g.Guess)
	}
	if g.RealAnswer != "" {
		answer := g.RealAnswer
		if g.MatchedDish != "" && !strings.EqualFold(g.MatchedDish, g.RealAnswer) {
			answer = fmt.Sprintf("%s (%s)", g.RealAnswer, g.MatchedDish)
		}
		fmt.Printf("Real answer: %s\n", answer)
	}

	var hints []string
	if g.Loading {
		hints = append(hints, "the genie is thinking")
	}
	if g.CanUndo {
		hints = append(hints, "undo available")
	}
	if len(hints) > 0 {
		fmt.Printf("\n(%s)\n", strings.Join(hints, ", "))
	}

	fmt.Printf("\nScore: you %d, genie %d\n", g.Scores.User, g.Scores.AI)
}

func (o *Output) printAudio(a Audio) {
	muted := "no"
	if a.Muted {
		muted = "yes"
	}
	track := a.Track
	if track == "" {
		track = "none"
	}
	fmt.Printf("Volume: %d\n", a.Volume)
	fmt.Printf("Muted: %s\n", muted)
	fmt.Printf("Music: %s\n", track)
}

func (o *Output) printDishes(d Dishes) {
	if d.Results == nil && len(d.Categories) > 0 {
		for _, c := range d.Categories {
			fmt.Printf("%s (%d)\n", c.Name, len(c.Dishes))
			for _, dish := range c.Dishes {
				fmt.Printf("  - %s\n", dish)
			}
		}
		fmt.Printf("\n%d dishes\n", d.Total)
		return
	}

	if len(d.Results) == 0 {
		fmt.Println("No dishes found")
		return
	}
	for _, dish := range d.Results {
		fmt.Printf("%s (%s)\n", dish.Name, dish.Category)
	}
}

func (o *Output) printMatch(m Match) {
	if !m.Matched {
		fmt.Println("No match")
		return
	}
	kind := "close"
	if m.Exact {
		kind = "exact"
	}
	fmt.Printf("%s (%s), %s match\n", m.Dish, m.Category, kind)
}

func (o *Output) printReport(r Report) {
	fmt.Printf("Generated: %s\n", r.GeneratedAt.Format(time.RFC3339))
	fmt.Printf("Uptime: %s\n", time.Duration(r.Uptime)*time.Second)
	fmt.Printf("Storage: %s\n", r.Storage)
	if r.StorageStats != nil {
		fmt.Printf("  %d keys, %d bytes\n", r.StorageStats.Keys, r.StorageStats.Bytes)
	}
	fmt.Printf("Users: %d (%d bytes)\n", r.Users, r.UsersBlobBytes)
	fmt.Printf("Active games: %d\n", r.ActiveGames)
	fmt.Printf("Audio engines: %d\n", r.AudioEngines)
	fmt.Printf("Go: %s\n", r.GoVersion)
	fmt.Printf("Module: %s %s\n", r.MainModule.Path, r.MainModule.Version)
	if len(r.Dependencies) > 0 {
		fmt.Println("Dependencies:")
		for _, m := range r.Dependencies {
			fmt.Printf("  %s %s\n", m.Path, m.Version)
		}
	}
}

func (o *Output) printHealthResult(h HealthResult) {
	fmt.Printf("Status: %s\n", h.Status)
	if h.Server != "" {
		fmt.Printf("Server: %s (%dms)\n", h.Server, h.LatencyMS)
	}
}
