package components_test

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/a-h/templ"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/chefgenie/internal/model"
	"github.com/mcoot/chefgenie/internal/web/templates/components"
)

func render(t *testing.T, c templ.Component) (string, *goquery.Document) {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, c.Render(context.Background(), &buf))
	html := buf.String()
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	return html, doc
}

func TestGamePlaying(t *testing.T) {
	g := &model.Game{
		State:         model.GameStatePlaying,
		CurrentText:   "Is it baked?",
		Emotion:       model.EmotionThinking,
		Thinking:      "Probably a pastry",
		Confidence:    40,
		Options:       []string{"Yes", "No", "Maybe"},
		QuestionCount: 2,
		Scores:        model.Scores{User: 3, AI: 1},
	}
	_, doc := render(t, components.Game(g, ""))

	game := doc.Find("#game.state-playing")
	require.Equal(t, 1, game.Length())
	state, _ := game.Attr("data-state")
	assert.Equal(t, "playing", state)

	assert.Equal(t, 1, doc.Find(".genie.emotion-thinking").Length())
	assert.Equal(t, "Question #2", doc.Find(".question-count").Text())
	assert.Equal(t, "Is it baked?", doc.Find("#current-text").Text())
	assert.Equal(t, "Confidence: 40%", doc.Find(".confidence").Text())
	assert.Equal(t, "3", doc.Find(".score-user").Text())
	assert.Equal(t, "1", doc.Find(".score-ai").Text())

	options := doc.Find("form.action.option")
	require.Equal(t, 3, options.Length())
	answer, _ := options.Eq(2).Find(`input[name="answer"]`).Attr("value")
	assert.Equal(t, "Maybe", answer)
	action, _ := options.Eq(0).Attr("action")
	assert.Equal(t, "/game/answer", action)
	target, _ := options.Eq(0).Attr("hx-target")
	assert.Equal(t, "#game", target)

	assert.Equal(t, 1, doc.Find("form.free-text").Length())
	assert.Equal(t, 1, doc.Find("form.undo").Length())
	assert.Equal(t, 1, doc.Find("form.restart").Length())
	assert.Zero(t, doc.Find(".loading").Length())
}

func TestGameLoadingHidesControls(t *testing.T) {
	g := &model.Game{State: model.GameStatePlaying, Loading: true, QuestionCount: 3, Options: []string{"Yes"}}
	_, doc := render(t, components.Game(g, ""))

	assert.Equal(t, 1, doc.Find(".loading").Length())
	assert.Zero(t, doc.Find("form.option").Length())
	assert.Zero(t, doc.Find("form.undo").Length())
	assert.Equal(t, 1, doc.Find("form.restart").Length())
}

func TestGameStartHasNoRestart(t *testing.T) {
	g := &model.Game{State: model.GameStateStart, CurrentText: "Think of a dish"}
	_, doc := render(t, components.Game(g, "The genie is still thinking."))

	assert.Equal(t, 1, doc.Find("form.start").Length())
	assert.Zero(t, doc.Find("form.restart").Length())
	assert.Equal(t, "The genie is still thinking.", doc.Find(`.error[role="alert"]`).Text())
}

func TestGameWonOffersVerdict(t *testing.T) {
	g := &model.Game{State: model.GameStateWon, Guess: "Tiramisu"}
	_, doc := render(t, components.Game(g, ""))

	assert.Equal(t, "Is it Tiramisu?", doc.Find(".guess").Text())
	yes, _ := doc.Find(`form.verify-yes input[name="correct"]`).Attr("value")
	no, _ := doc.Find(`form.verify-no input[name="correct"]`).Attr("value")
	assert.Equal(t, "yes", yes)
	assert.Equal(t, "no", no)
}

func TestGameLostShowsMatchedDish(t *testing.T) {
	g := &model.Game{State: model.GameStateLost, RealAnswer: "paneer tikka", MatchedDish: "Paneer Tikka"}
	_, doc := render(t, components.Game(g, ""))
	assert.Equal(t, "You were thinking of paneer tikka (Paneer Tikka)", doc.Find(".real-answer").Text())

	g.MatchedDish = g.RealAnswer
	_, doc = render(t, components.Game(g, ""))
	assert.Equal(t, "You were thinking of paneer tikka", strings.TrimSpace(doc.Find(".real-answer").Text()))
}

func TestGameEscapesText(t *testing.T) {
	g := &model.Game{State: model.GameStatePlaying, CurrentText: "<script>alert(1)</script>", Options: []string{`"><b>x</b>`}}
	html, doc := render(t, components.Game(g, ""))

	assert.NotContains(t, html, "<script>alert(1)</script>")
	assert.NotContains(t, html, "<b>x</b>")
	assert.Equal(t, "<script>alert(1)</script>", doc.Find("#current-text").Text())
	answer, _ := doc.Find(`form.option input[name="answer"]`).Attr("value")
	assert.Equal(t, `"><b>x</b>`, answer)
}
