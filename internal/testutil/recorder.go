package testutil

import (
	"sync"

	"github.com/mcoot/chefgenie/internal/model"
)

// CueRecorder collects audio cues sent to it
type CueRecorder struct {
	mu   sync.Mutex
	cues []model.AudioCue
}

// SendCue records cue
func (r *CueRecorder) SendCue(_ model.ClientID, cue model.AudioCue) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cues = append(r.cues, cue)
}

// Cues returns a copy of every recorded cue
func (r *CueRecorder) Cues() []model.AudioCue {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]model.AudioCue(nil), r.cues...)
}

// OfKind returns the recorded cues of one kind
func (r *CueRecorder) OfKind(kind model.CueKind) []model.AudioCue {
	var out []model.AudioCue
	for _, c := range r.Cues() {
		if c.Kind == kind {
			out = append(out, c)
		}
	}
	return out
}

// Sounds returns the sound effects played, in order
func (r *CueRecorder) Sounds() []model.SoundKind {
	var out []model.SoundKind
	for _, c := range r.OfKind(model.CueSFX) {
		out = append(out, c.Sound)
	}
	return out
}

// Reset forgets everything recorded
func (r *CueRecorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cues = nil
}

// UpdateRecorder collects the games published to it as embedding updates
type UpdateRecorder struct {
	mu      sync.Mutex
	updates []model.GameStateUpdate
}

// Publish records g's update payload
func (r *UpdateRecorder) Publish(_ model.ClientID, g *model.Game) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.updates = append(r.updates, g.Update())
}

// Updates returns a copy of every recorded update
func (r *UpdateRecorder) Updates() []model.GameStateUpdate {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]model.GameStateUpdate(nil), r.updates...)
}

// Last returns the most recent update
func (r *UpdateRecorder) Last() (model.GameStateUpdate, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.updates) == 0 {
		return model.GameStateUpdate{}, false
	}
	return r.updates[len(r.updates)-1], true
}
