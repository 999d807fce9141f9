package model

// SoundKind names a one-shot sound effect
type SoundKind string

const (
	SoundClick    SoundKind = "click"
	SoundPop      SoundKind = "pop"
	SoundWin      SoundKind = "win"
	SoundLose     SoundKind = "lose"
	SoundThinking SoundKind = "thinking"
	SoundConfused SoundKind = "confused"
)

// Track names a looping background sequence
type Track string

const (
	TrackNone     Track = ""
	TrackGameplay Track = "gameplay"
	TrackWin      Track = "win"
)

// Waveform is an oscillator shape
type Waveform string

const (
	WaveSine     Waveform = "sine"
	WaveSquare   Waveform = "square"
	WaveSawtooth Waveform = "sawtooth"
	WaveTriangle Waveform = "triangle"
)

// Ramp describes how a parameter moves from its start to its end value
type Ramp string

const (
	RampNone        Ramp = ""
	RampLinear      Ramp = "linear"
	RampExponential Ramp = "exponential"
	RampStep        Ramp = "step" // jump to the end value at RampTime
)

// Tone is everything a client needs to synthesize one oscillator voice
type Tone struct {
	Waveform      Waveform `json:"waveform"`
	Frequency     float64  `json:"frequency"`
	EndFrequency  float64  `json:"endFrequency,omitempty"`
	FrequencyRamp Ramp     `json:"frequencyRamp,omitempty"`
	RampTime      float64  `json:"rampTime,omitempty"`
	Gain          float64  `json:"gain"`
	EndGain       float64  `json:"endGain"`
	GainRamp      Ramp     `json:"gainRamp,omitempty"`
	Duration      float64  `json:"duration"`
	Lowpass       float64  `json:"lowpass,omitempty"`
}

// CueKind identifies the type of audio cue
type CueKind string

const (
	CueSFX    CueKind = "sfx"    // one-shot effect
	CueNote   CueKind = "note"   // one sequencer step of one voice
	CueMaster CueKind = "master" // master gain change
	CueMusic  CueKind = "music"  // track started or stopped
)

// AudioCue is pushed to clients, which synthesize it locally
type AudioCue struct {
	Kind  CueKind   `json:"kind"`
	Sound SoundKind `json:"sound,omitempty"`
	Track Track     `json:"track,omitempty"`
	Voice string    `json:"voice,omitempty"`
	Step  int       `json:"step,omitempty"`
	// Delay is seconds after emission at which the cue should start
	Delay  float64 `json:"delay"`
	Tone   *Tone   `json:"tone,omitempty"`
	Volume float64 `json:"volume,omitempty"`
	Muted  bool    `json:"muted,omitempty"`
	// RampTime is the master gain transition length in seconds
	RampTime float64 `json:"rampTime,omitempty"`
}
