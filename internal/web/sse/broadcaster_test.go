package sse

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/mcoot/chefgenie/internal/model"
	"github.com/mcoot/chefgenie/internal/testutil"
)

func receive(t *testing.T, stream *Client) string {
	t.Helper()
	select {
	case msg := <-stream.send:
		return string(msg)
	case <-time.After(time.Second):
		t.Fatal("stream did not receive message")
		return ""
	}
}

func TestBroadcaster_PublishRendersGame(t *testing.T) {
	manager := NewHubManager(testutil.NopLogger())
	broadcaster := NewBroadcaster(manager, testutil.NopLogger())

	hub := manager.GetOrCreateHub("client-1")
	stream := NewClient(hub, "client-1")
	hub.Register(stream)
	waitForStreams(t, hub, 1)
	defer manager.RemoveHub("client-1")

	broadcaster.Publish("client-1", &model.Game{
		State:         model.GameStatePlaying,
		CurrentText:   "Is it <spicy>?",
		Emotion:       model.EmotionThinking,
		Options:       []string{"Yes", "No"},
		QuestionCount: 2,
		Scores:        model.Scores{User: 1, AI: 3},
	})

	msg := receive(t, stream)
	if !strings.HasPrefix(msg, "event: game-update\n") {
		t.Errorf("unexpected event header in %q", msg)
	}
	for _, want := range []string{`id="game"`, `data-state="playing"`, "Is it &lt;spicy&gt;?", "Question #2", ">Yes<", ">No<"} {
		if !strings.Contains(msg, want) {
			t.Errorf("game-update missing %q:\n%s", want, msg)
		}
	}
}

func TestBroadcaster_SendCueEncodesJSON(t *testing.T) {
	manager := NewHubManager(testutil.NopLogger())
	broadcaster := NewBroadcaster(manager, testutil.NopLogger())

	hub := manager.GetOrCreateHub("client-1")
	stream := NewClient(hub, "client-1")
	hub.Register(stream)
	waitForStreams(t, hub, 1)
	defer manager.RemoveHub("client-1")

	broadcaster.SendCue("client-1", model.AudioCue{Kind: model.CueSFX, Sound: model.SoundClick})

	msg := receive(t, stream)
	lines := strings.Split(strings.TrimSpace(msg), "\n")
	if len(lines) != 2 || lines[0] != "event: audio" {
		t.Fatalf("unexpected audio event %q", msg)
	}
	var cue model.AudioCue
	if err := json.Unmarshal([]byte(strings.TrimPrefix(lines[1], "data: ")), &cue); err != nil {
		t.Fatalf("audio data is not JSON: %v", err)
	}
	if cue.Kind != model.CueSFX || cue.Sound != model.SoundClick {
		t.Errorf("cue = %+v", cue)
	}
}

func TestBroadcaster_NoHubIsNoop(t *testing.T) {
	manager := NewHubManager(testutil.NopLogger())
	broadcaster := NewBroadcaster(manager, testutil.NopLogger())

	broadcaster.Publish("nobody", &model.Game{State: model.GameStateStart})
	broadcaster.SendCue("nobody", model.AudioCue{Kind: model.CueMaster})

	if manager.Len() != 0 {
		t.Errorf("broadcasting created a hub")
	}
}
