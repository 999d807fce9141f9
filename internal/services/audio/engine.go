package audio

import (
	"context"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/mcoot/chefgenie/internal/dependencies/clock"
	"github.com/mcoot/chefgenie/internal/model"
	"github.com/mcoot/chefgenie/internal/storage"
)

// Sink receives the cues an engine emits
type Sink interface {
	SendCue(client model.ClientID, cue model.AudioCue)
}

// Scheduler timing
const (
	defaultLookahead     = 25 * time.Millisecond
	defaultScheduleAhead = 100 * time.Millisecond
	defaultStartDelay    = 100 * time.Millisecond

	muteRampSeconds = 0.1
	defaultVolume   = 0.5
)

// EngineState is a snapshot of an engine's settings
type EngineState struct {
	Volume int         `json:"volume"`
	Muted  bool        `json:"muted"`
	Track  model.Track `json:"track"`
}

// Engine emits sound effects and music for one client
type Engine struct {
	client  model.ClientID
	sink    Sink
	clock   clock.Clock
	storage storage.Storage
	logger  *slog.Logger

	lookahead     time.Duration
	scheduleAhead time.Duration
	startDelay    time.Duration

	mu     sync.Mutex
	volume float64
	muted  bool
	closed bool

	// Sequencer state
	track    model.Track
	step     int
	nextNote time.Time
	cancel   context.CancelFunc
	done     chan struct{}
}

func newEngine(client model.ClientID, sink Sink, clk clock.Clock, store storage.Storage, logger *slog.Logger) *Engine {
	return &Engine{
		client:        client,
		sink:          sink,
		clock:         clk,
		storage:       store,
		logger:        logger,
		lookahead:     defaultLookahead,
		scheduleAhead: defaultScheduleAhead,
		startDelay:    defaultStartDelay,
		volume:        defaultVolume,
	}
}

// PlaySound emits a one-shot effect. Nothing is emitted while muted.
func (e *Engine) PlaySound(kind model.SoundKind) error {
	tone, ok := Preset(kind)
	if !ok {
		return model.ErrUnknownSound
	}

	e.mu.Lock()
	muted := e.muted || e.closed
	e.mu.Unlock()
	if muted {
		return nil
	}

	e.sink.SendCue(e.client, model.AudioCue{
		Kind:  model.CueSFX,
		Sound: kind,
		Tone:  &tone,
	})
	return nil
}

// PlayMusic starts looping a track. Asking for the track already playing does nothing.
func (e *Engine) PlayMusic(name model.Track) error {
	if _, ok := tracks[name]; !ok {
		return model.ErrUnknownTrack
	}

	e.mu.Lock()
	if e.closed || e.track == name {
		e.mu.Unlock()
		return nil
	}
	e.stopLocked()

	e.track = name
	e.step = 0
	e.nextNote = e.clock.Now().Add(e.startDelay)

	ctx, cancel := context.WithCancel(context.Background())
	e.cancel = cancel
	e.done = make(chan struct{})
	done := e.done
	e.mu.Unlock()

	e.sink.SendCue(e.client, model.AudioCue{Kind: model.CueMusic, Track: name})
	e.scheduleDue()

	go e.run(ctx, done)
	return nil
}

// StopMusic cancels the sequencer
func (e *Engine) StopMusic() {
	e.mu.Lock()
	wasPlaying := e.track != model.TrackNone
	done := e.stopLocked()
	e.mu.Unlock()

	if done != nil {
		<-done
	}
	if wasPlaying {
		e.sink.SendCue(e.client, model.AudioCue{Kind: model.CueMusic, Track: model.TrackNone})
	}
}

// SetVolume sets the master volume from a 0..100 value and persists it
func (e *Engine) SetVolume(ctx context.Context, value int) error {
	normalized := math.Max(0, math.Min(1, float64(value)/100))

	e.mu.Lock()
	e.volume = normalized
	muted := e.muted
	e.mu.Unlock()

	if !muted {
		e.sink.SendCue(e.client, model.AudioCue{Kind: model.CueMaster, Volume: normalized})
	}
	return storage.SetJSON(ctx, e.storage, storage.VolumeKey(e.client), percent(normalized))
}

// Volume returns the master volume as a rounded percentage
func (e *Engine) Volume() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return percent(e.volume)
}

// ToggleMute ramps the master gain to silence or back to the volume
func (e *Engine) ToggleMute(mute bool) {
	e.mu.Lock()
	e.muted = mute
	target := e.volume
	e.mu.Unlock()

	if mute {
		target = 0
	}
	e.sink.SendCue(e.client, model.AudioCue{
		Kind:     model.CueMaster,
		Volume:   target,
		Muted:    mute,
		RampTime: muteRampSeconds,
	})
}

// State returns the engine's current settings
func (e *Engine) State() EngineState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return EngineState{
		Volume: percent(e.volume),
		Muted:  e.muted,
		Track:  e.track,
	}
}

// Close stops the sequencer; later calls emit nothing
func (e *Engine) Close() {
	e.mu.Lock()
	e.closed = true
	done := e.stopLocked()
	e.mu.Unlock()

	if done != nil {
		<-done
	}
}

func (e *Engine) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(e.lookahead)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			e.scheduleDue()
		}
	}
}

// scheduleDue emits every step whose start falls inside the schedule-ahead window
func (e *Engine) scheduleDue() {
	e.mu.Lock()
	if e.track == model.TrackNone {
		e.mu.Unlock()
		return
	}
	t := tracks[e.track]
	now := e.clock.Now()
	horizon := now.Add(e.scheduleAhead)
	stepLength := time.Duration(stepBeats * t.secondsPerBeat() * float64(time.Second))

	var cues []model.AudioCue
	for e.nextNote.Before(horizon) {
		delay := math.Max(0, e.nextNote.Sub(now).Seconds())
		for _, vt := range t.stepTones(e.step) {
			tone := vt.tone
			cues = append(cues, model.AudioCue{
				Kind:  model.CueNote,
				Track: e.track,
				Voice: vt.voice,
				Step:  e.step,
				Delay: delay,
				Tone:  &tone,
			})
		}
		e.nextNote = e.nextNote.Add(stepLength)
		e.step++
	}
	e.mu.Unlock()

	for _, cue := range cues {
		e.sink.SendCue(e.client, cue)
	}
}

// stopLocked cancels the scheduler goroutine and returns its done channel.
// Callers hold e.mu and wait on the channel after releasing it.
func (e *Engine) stopLocked() chan struct{} {
	e.track = model.TrackNone
	if e.cancel == nil {
		return nil
	}
	e.cancel()
	done := e.done
	e.cancel = nil
	e.done = nil
	return done
}

func percent(v float64) int {
	return int(math.Round(v * 100))
}
