package game

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/mcoot/chefgenie/internal/dependencies/clock"
	"github.com/mcoot/chefgenie/internal/model"
	"github.com/mcoot/chefgenie/internal/services/audio"
	"github.com/mcoot/chefgenie/internal/services/auth"
	"github.com/mcoot/chefgenie/internal/services/conversation"
	"github.com/mcoot/chefgenie/internal/services/knowledge"
	"github.com/mcoot/chefgenie/internal/storage"
)

// Notifier receives a client's game after every change. The game is a
// snapshot shared between notifiers and must not be modified.
type Notifier interface {
	Publish(client model.ClientID, g *model.Game)
}

// Controller runs each client's game state machine
type Controller struct {
	storage      storage.Storage
	conversation *conversation.Client
	auth         *auth.Service
	audio        *audio.Manager
	knowledge    *knowledge.Base
	clock        clock.Clock
	logger       *slog.Logger

	mu     sync.Mutex
	rounds map[model.ClientID]*round

	notifyMu  sync.RWMutex
	notifiers []Notifier
}

// round is one client's game plus its chat session
type round struct {
	mu      sync.Mutex
	game    model.Game
	session *conversation.Session
	// epoch changes on every restart; replies for an older epoch are dropped
	epoch uint64

	// publishMu is held from the end of a state change until its sounds
	// and notifications are out
	publishMu sync.Mutex
	// touched is guarded by Controller.mu
	touched time.Time
}

// handoff releases r.mu but keeps the round's publish turn, so sounds and
// notifications go out in the order the state changed. The caller must call
// the returned func once they have.
func (r *round) handoff() (done func()) {
	r.publishMu.Lock()
	r.mu.Unlock()
	return r.publishMu.Unlock
}

// NewController creates a new game Controller
func NewController(
	storage storage.Storage,
	conversationClient *conversation.Client,
	authService *auth.Service,
	audioManager *audio.Manager,
	kb *knowledge.Base,
	clk clock.Clock,
	logger *slog.Logger,
) *Controller {
	return &Controller{
		storage:      storage,
		conversation: conversationClient,
		auth:         authService,
		audio:        audioManager,
		knowledge:    kb,
		clock:        clk,
		logger:       logger.With(slog.String("component", "game")),
		rounds:       make(map[model.ClientID]*round),
	}
}

// AddNotifier registers n for every client's updates
func (c *Controller) AddNotifier(n Notifier) {
	c.notifyMu.Lock()
	defer c.notifyMu.Unlock()
	c.notifiers = append(c.notifiers, n)
}

// Snapshot returns client's current game, creating it on first access
func (c *Controller) Snapshot(ctx context.Context, client model.ClientID) *model.Game {
	r := c.round(ctx, client)
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.game.Clone()
}

// Start begins a new round from the start screen
func (c *Controller) Start(ctx context.Context, client model.ClientID) (*model.Game, error) {
	r := c.round(ctx, client)

	r.mu.Lock()
	if r.game.Loading {
		r.mu.Unlock()
		return nil, model.ErrBusy
	}
	if r.game.State != model.GameStateStart {
		r.mu.Unlock()
		return nil, model.ErrInvalidTransition
	}

	if r.session != nil {
		r.session.Close()
	}
	r.session = c.conversation.NewSession()
	session := r.session
	epoch := r.epoch

	g := &r.game
	g.Loading = true
	g.Emotion = model.EmotionThinking
	g.State = model.GameStatePlaying
	g.QuestionCount = 0
	g.Thinking = ""
	g.Confidence = 0
	g.Options = nil
	g.Guess = ""
	g.RealAnswer = ""
	g.MatchedDish = ""
	snapshot := g.Clone()
	done := r.handoff()

	engine := c.audio.Engine(ctx, client)
	c.playSound(engine, model.SoundClick)
	if err := engine.PlayMusic(model.TrackGameplay); err != nil {
		c.logger.Warn("could not start music", slog.String("error", err.Error()))
	}
	c.publish(client, snapshot)
	done()

	c.logger.Info("game started", slog.String("client", string(client)))

	resp, err := session.StartGame(context.WithoutCancel(ctx))
	return c.complete(ctx, client, r, epoch, turnStart, resp, err)
}

// Answer forwards one of the offered options
func (c *Controller) Answer(ctx context.Context, client model.ClientID, text string) (*model.Game, error) {
	return c.reply(ctx, client, text, turnAnswer)
}

// AnswerFreeText forwards an answer the player typed instead of picking an option
func (c *Controller) AnswerFreeText(ctx context.Context, client model.ClientID, text string) (*model.Game, error) {
	return c.reply(ctx, client, text, turnCorrection)
}

// Undo asks the genie to go back one question. It needs at least two questions asked.
func (c *Controller) Undo(ctx context.Context, client model.ClientID) (*model.Game, error) {
	return c.reply(ctx, client, "", turnUndo)
}

// Verify records whether the genie's guess was right
func (c *Controller) Verify(ctx context.Context, client model.ClientID, correct bool) (*model.Game, error) {
	r := c.round(ctx, client)

	r.mu.Lock()
	if r.game.Loading {
		r.mu.Unlock()
		return nil, model.ErrBusy
	}
	if r.game.State != model.GameStateWon {
		r.mu.Unlock()
		return nil, model.ErrInvalidTransition
	}

	g := &r.game
	if correct {
		g.Emotion = model.EmotionCelebrate
		g.CurrentText = model.GuessCorrectText
		g.Scores.AI++
		g.State = model.GameStateLost
	} else {
		g.Emotion = model.EmotionConfused
		g.CurrentText = model.GuessWrongText
		g.Scores.User++
		g.State = model.GameStateReveal
	}
	g.Options = nil
	scores := g.Scores
	snapshot := g.Clone()
	done := r.handoff()

	engine := c.audio.Engine(ctx, client)
	if !correct {
		c.playSound(engine, model.SoundLose)
	}
	c.emotionSound(engine, snapshot)
	c.publish(client, snapshot)
	done()

	if err := storage.SetJSON(ctx, c.storage, storage.ScoresKey(client), scores); err != nil {
		c.logger.Error("failed to save scores",
			slog.String("client", string(client)),
			slog.String("error", err.Error()),
		)
	}
	c.recordUserResult(ctx, client, !correct)

	c.logger.Info("guess verified",
		slog.String("client", string(client)),
		slog.String("guess", snapshot.Guess),
		slog.Bool("correct", correct),
	)
	return snapshot, nil
}

// Reveal tells the genie the real dish after a wrong guess and ends the round
func (c *Controller) Reveal(ctx context.Context, client model.ClientID, text string) (*model.Game, error) {
	text = strings.TrimSpace(text)
	r := c.round(ctx, client)

	r.mu.Lock()
	if r.game.Loading {
		r.mu.Unlock()
		return nil, model.ErrBusy
	}
	if r.game.State != model.GameStateReveal {
		r.mu.Unlock()
		return nil, model.ErrInvalidTransition
	}
	if text == "" {
		r.mu.Unlock()
		return nil, model.ErrEmptyAnswer
	}

	session := r.session
	epoch := r.epoch
	g := &r.game
	g.Loading = true
	g.RealAnswer = text
	if match, ok := c.knowledge.Match(text); ok {
		g.MatchedDish = match.Dish.Name
	}
	snapshot := g.Clone()
	done := r.handoff()

	c.playSound(c.audio.Engine(ctx, client), model.SoundClick)
	c.publish(client, snapshot)
	done()

	resp, err := session.SendRealAnswer(context.WithoutCancel(ctx), text)
	return c.complete(ctx, client, r, epoch, turnReveal, resp, err)
}

// Restart abandons the round and returns to the start screen. It is allowed
// at any time; a reply still in flight is discarded when it arrives.
func (c *Controller) Restart(ctx context.Context, client model.ClientID) *model.Game {
	r := c.round(ctx, client)

	r.mu.Lock()
	if r.session != nil {
		r.session.Close()
		r.session = nil
	}
	r.epoch++
	r.game = model.Game{
		ClientID:    client,
		State:       model.GameStateStart,
		CurrentText: model.StartText,
		Emotion:     model.EmotionIdle,
		Scores:      r.game.Scores,
	}
	snapshot := r.game.Clone()
	done := r.handoff()
	defer done()

	engine := c.audio.Engine(ctx, client)
	c.playSound(engine, model.SoundPop)
	engine.StopMusic()
	c.publish(client, snapshot)
	return snapshot
}

// Forget drops client's round, closing its chat session
func (c *Controller) Forget(client model.ClientID) {
	c.mu.Lock()
	r, ok := c.rounds[client]
	delete(c.rounds, client)
	c.mu.Unlock()

	if ok {
		r.retire()
	}
}

// EvictIdle forgets the rounds nobody has touched for maxIdle, except those
// of clients keep reports as still connected. A reply still in flight for an
// evicted round is discarded. It returns the evicted clients.
func (c *Controller) EvictIdle(maxIdle time.Duration, keep func(model.ClientID) bool) []model.ClientID {
	cutoff := c.clock.Now().Add(-maxIdle)

	c.mu.Lock()
	var candidates []model.ClientID
	for client, r := range c.rounds {
		if r.touched.Before(cutoff) {
			candidates = append(candidates, client)
		}
	}
	c.mu.Unlock()

	var evicted []*round
	var clients []model.ClientID
	for _, client := range candidates {
		if keep != nil && keep(client) {
			continue
		}
		c.mu.Lock()
		// Touched again since the scan
		if r, ok := c.rounds[client]; ok && r.touched.Before(cutoff) {
			delete(c.rounds, client)
			evicted = append(evicted, r)
			clients = append(clients, client)
		}
		c.mu.Unlock()
	}

	for _, r := range evicted {
		r.retire()
	}
	if len(clients) > 0 {
		c.logger.Info("evicted idle games", slog.Int("evicted", len(clients)))
	}
	return clients
}

// RunEviction calls EvictIdle every interval until ctx is done
func (c *Controller) RunEviction(ctx context.Context, interval, maxIdle time.Duration, keep func(model.ClientID) bool) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			c.EvictIdle(maxIdle, keep)
		}
	}
}

// retire invalidates r's epoch and closes its chat session
func (r *round) retire() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.epoch++
	if r.session != nil {
		r.session.Close()
		r.session = nil
	}
}

// ActiveGames returns the number of clients with a round in memory
func (c *Controller) ActiveGames() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.rounds)
}

// reply handles the in-round actions that forward something to the genie
func (c *Controller) reply(ctx context.Context, client model.ClientID, text string, kind turnKind) (*model.Game, error) {
	text = strings.TrimSpace(text)
	r := c.round(ctx, client)

	r.mu.Lock()
	if r.game.Loading {
		r.mu.Unlock()
		return nil, model.ErrBusy
	}
	if r.game.State != model.GameStatePlaying {
		r.mu.Unlock()
		return nil, model.ErrInvalidTransition
	}
	if kind == turnUndo && !r.game.CanUndo() {
		r.mu.Unlock()
		return nil, model.ErrUndoUnavailable
	}
	if kind != turnUndo && text == "" {
		r.mu.Unlock()
		return nil, model.ErrEmptyAnswer
	}

	session := r.session
	epoch := r.epoch
	r.game.Loading = true
	r.game.Emotion = model.EmotionThinking
	snapshot := r.game.Clone()
	done := r.handoff()

	c.playSound(c.audio.Engine(ctx, client), model.SoundClick)
	c.publish(client, snapshot)
	done()

	var (
		resp *model.GameResponse
		err  error
	)
	callCtx := context.WithoutCancel(ctx)
	switch kind {
	case turnAnswer:
		resp, err = session.SendAnswer(callCtx, text)
	case turnCorrection:
		resp, err = session.SendCorrection(callCtx, text)
	case turnUndo:
		resp, err = session.UndoLastTurn(callCtx)
	}
	return c.complete(ctx, client, r, epoch, kind, resp, err)
}

// complete applies a model reply, or the failure to get one, to the round
func (c *Controller) complete(
	ctx context.Context,
	client model.ClientID,
	r *round,
	epoch uint64,
	kind turnKind,
	resp *model.GameResponse,
	callErr error,
) (*model.Game, error) {
	r.mu.Lock()
	if r.epoch != epoch {
		snapshot := r.game.Clone()
		r.mu.Unlock()
		c.logger.Info("discarding reply that arrived after restart",
			slog.String("client", string(client)),
			slog.String("turn", string(kind)),
		)
		return snapshot, nil
	}

	g := &r.game
	g.Loading = false
	if callErr != nil {
		g.State = model.GameStateError
		g.CurrentText = model.ErrorText
		g.Options = nil
		snapshot := g.Clone()
		done := r.handoff()
		defer done()

		c.logger.Error("game round failed",
			slog.String("client", string(client)),
			slog.String("turn", string(kind)),
			slog.String("error", callErr.Error()),
		)
		c.audio.Engine(ctx, client).StopMusic()
		c.publish(client, snapshot)
		return snapshot, nil
	}

	if kind == turnReveal {
		g.CurrentText = resp.Content
		g.Emotion = resp.Emotion
		g.Options = nil
		g.State = model.GameStateLost
	} else {
		applyResponse(g, kind, resp)
	}
	snapshot := g.Clone()
	done := r.handoff()
	defer done()

	engine := c.audio.Engine(ctx, client)
	if snapshot.State != model.GameStatePlaying {
		engine.StopMusic()
	}
	c.emotionSound(engine, snapshot)
	c.publish(client, snapshot)
	return snapshot, nil
}

// applyResponse folds a question or guess into the game
func applyResponse(g *model.Game, kind turnKind, resp *model.GameResponse) {
	g.CurrentText = resp.Content
	g.Emotion = resp.Emotion
	g.Thinking = resp.Thinking
	if g.Thinking == "" {
		g.Thinking = model.DefaultThinking
	}
	g.Confidence = resp.Confidence
	g.Options = append([]string(nil), resp.Options...)

	if resp.IsGuess() {
		g.State = model.GameStateWon
		g.Guess = resp.Content
		g.Options = nil
		return
	}

	if len(g.Options) == 0 {
		g.Options = append([]string(nil), model.FallbackOptions...)
	}
	if kind == turnUndo {
		g.QuestionCount = max(1, g.QuestionCount-1)
	} else {
		g.QuestionCount++
	}
}

// emotionSound plays the cue that goes with the genie's mood
func (c *Controller) emotionSound(engine *audio.Engine, g *model.Game) {
	if g.Loading {
		return
	}
	switch {
	case g.Emotion == model.EmotionCelebrate:
		c.playSound(engine, model.SoundWin)
	case g.Emotion == model.EmotionConfused:
		c.playSound(engine, model.SoundConfused)
	case g.Emotion == model.EmotionThinking && g.State == model.GameStatePlaying:
		c.playSound(engine, model.SoundThinking)
	}
}

func (c *Controller) playSound(engine *audio.Engine, kind model.SoundKind) {
	if err := engine.PlaySound(kind); err != nil {
		c.logger.Warn("could not play sound",
			slog.String("sound", string(kind)),
			slog.String("error", err.Error()),
		)
	}
}

// recordUserResult adds a finished game to the logged-in user's record
func (c *Controller) recordUserResult(ctx context.Context, client model.ClientID, playerWon bool) {
	user, err := c.auth.CurrentSession(ctx, client)
	if err != nil {
		c.logger.Warn("could not load session for score update",
			slog.String("client", string(client)),
			slog.String("error", err.Error()),
		)
		return
	}
	if user == nil {
		return
	}

	score := user.Score
	if playerWon {
		score++
	}
	if err := c.auth.UpdateUserScore(ctx, user.Username, score); err != nil {
		c.logger.Error("failed to update user score",
			slog.String("username", user.Username),
			slog.String("error", err.Error()),
		)
	}
}

func (c *Controller) publish(client model.ClientID, g *model.Game) {
	c.notifyMu.RLock()
	notifiers := append([]Notifier(nil), c.notifiers...)
	c.notifyMu.RUnlock()

	for _, n := range notifiers {
		n.Publish(client, g)
	}
}

// round returns client's round, creating it with the persisted scores
func (c *Controller) round(ctx context.Context, client model.ClientID) *round {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.clock.Now()
	if r, ok := c.rounds[client]; ok {
		r.touched = now
		return r
	}

	r := &round{touched: now, game: model.Game{
		ClientID:    client,
		State:       model.GameStateStart,
		CurrentText: model.StartText,
		Emotion:     model.EmotionIdle,
		Scores:      c.loadScores(ctx, client),
	}}
	c.rounds[client] = r
	return r
}

func (c *Controller) loadScores(ctx context.Context, client model.ClientID) model.Scores {
	var scores model.Scores
	err := storage.GetJSON(ctx, c.storage, storage.ScoresKey(client), &scores)
	if err != nil && !errors.Is(err, model.ErrKeyNotFound) {
		c.logger.Warn("could not load scores, starting from zero",
			slog.String("client", string(client)),
			slog.String("error", err.Error()),
		)
		return model.Scores{}
	}
	return scores
}
