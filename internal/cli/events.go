package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/spf13/cobra"
)

// clientCookieName matches the cookie the web pages issue
const clientCookieName = "client"

const (
	eventConnected  = "connected"
	eventGameUpdate = "game-update"
	eventAudio      = "audio"
)

func newEventsCmd() *cobra.Command {
	var (
		jsonOutput bool
		notes      bool
	)

	cmd := &cobra.Command{
		Use:   "events",
		Short: "Stream live events for this client",
		Long: `Open this client's event stream and print events as they arrive.

  connected    the stream is open
  game-update  the round changed; text mode prints the genie's line and score
  audio        a sound effect, music or volume cue

Sequencer note cues are hidden unless --notes is given. Press Ctrl+C to stop.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := ensureClient(); err != nil {
				return err
			}
			return streamEvents(cmd.Context(), jsonOutput, notes)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print events as JSON lines")
	cmd.Flags().BoolVar(&notes, "notes", false, "Include music note cues")

	return cmd
}

// SSEEvent is one event read off the stream
type SSEEvent struct {
	Time  time.Time `json:"time"`
	Event string    `json:"event"`
	Data  string    `json:"data"`
}

// streamCue is the part of an audio cue worth printing
type streamCue struct {
	Kind   string  `json:"kind"`
	Sound  string  `json:"sound"`
	Track  string  `json:"track"`
	Voice  string  `json:"voice"`
	Step   int     `json:"step"`
	Volume float64 `json:"volume"`
	Muted  bool    `json:"muted"`
}

func streamEvents(parent context.Context, jsonOutput, notes bool) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// The stream lives on the web router, which knows clients by cookie
	url := strings.TrimSuffix(cfg.ServerURL, "/") + "/events"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")
	req.Header.Set("User-Agent", userAgent)
	req.AddCookie(&http.Cookie{Name: clientCookieName, Value: cfg.Token})

	resp, err := (&http.Client{}).Do(req)
	if err != nil {
		return fmt.Errorf("connection failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var (
		name string
		data []string
	)
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case strings.HasPrefix(line, "event: "):
			name = strings.TrimPrefix(line, "event: ")
		case strings.HasPrefix(line, "data: "):
			data = append(data, strings.TrimPrefix(line, "data: "))
		case line == "":
			if name != "" {
				printEvent(SSEEvent{Time: time.Now(), Event: name, Data: strings.Join(data, "\n")}, jsonOutput, notes)
			}
			name, data = "", nil
		}
	}

	if err := scanner.Err(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("stream error: %w", err)
	}
	if !jsonOutput {
		fmt.Println("Disconnected")
	}
	return nil
}

func printEvent(evt SSEEvent, jsonOutput, notes bool) {
	if evt.Event == eventAudio && !notes && isNoteCue(evt.Data) {
		return
	}

	if jsonOutput {
		line, _ := json.Marshal(evt)
		fmt.Println(string(line))
		return
	}

	var summary string
	switch evt.Event {
	case eventConnected:
		summary = "stream open"
	case eventGameUpdate:
		summary = summarizeGame(evt.Data)
	case eventAudio:
		summary = summarizeCue(evt.Data)
	default:
		summary = strings.ReplaceAll(evt.Data, "\n", " ")
	}
	fmt.Printf("[%s] %s: %s\n", evt.Time.Format("15:04:05"), evt.Event, summary)
}

func isNoteCue(data string) bool {
	var cue streamCue
	return json.Unmarshal([]byte(data), &cue) == nil && cue.Kind == "note"
}

// summarizeGame pulls the round state, the genie's line and the score out
// of a rendered game fragment
func summarizeGame(fragment string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return "(unreadable game view)"
	}

	state := "?"
	if class, ok := doc.Find("div.game").First().Attr("class"); ok {
		for _, c := range strings.Fields(class) {
			if s, found := strings.CutPrefix(c, "state-"); found {
				state = s
			}
		}
	}

	text := strings.Join(strings.Fields(doc.Find("#current-text").Text()), " ")
	summary := fmt.Sprintf("%s | %s", state, text)

	if doc.Find(".loading").Length() > 0 {
		summary += " (thinking)"
	}
	if user, ai := doc.Find(".score-user").Text(), doc.Find(".score-ai").Text(); user != "" || ai != "" {
		summary += fmt.Sprintf(" | you %s, genie %s", strings.TrimSpace(user), strings.TrimSpace(ai))
	}
	return summary
}

func summarizeCue(data string) string {
	var cue streamCue
	if err := json.Unmarshal([]byte(data), &cue); err != nil {
		return data
	}

	switch cue.Kind {
	case "sfx":
		return "sound " + cue.Sound
	case "music":
		if cue.Track == "" {
			return "music stopped"
		}
		return "music " + cue.Track
	case "master":
		if cue.Muted {
			return "muted"
		}
		return fmt.Sprintf("volume %.0f%%", cue.Volume*100)
	case "note":
		return fmt.Sprintf("note %s step %d (%s)", cue.Track, cue.Step, cue.Voice)
	default:
		return cue.Kind
	}
}
