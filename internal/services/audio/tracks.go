package audio

import "github.com/mcoot/chefgenie/internal/model"

// Note frequencies in Hz
const (
	noteB1  = 61.74
	noteD2  = 73.42
	noteE2  = 82.41
	noteFs2 = 92.50
	noteA2  = 110.00
	noteB2  = 123.47
	noteB3  = 246.94
	noteCs4 = 277.18
	noteD4  = 293.66
	noteE4  = 329.63
	noteFs4 = 369.99
	noteA4  = 440.00

	rest = 0
)

// stepBeats is the sequencer resolution
const stepBeats = 0.25

// note is one sequence entry; Beats scales the note's sounding length
type note struct {
	Freq  float64
	Beats float64
}

type voice struct {
	Name     string
	Waveform model.Waveform
	Gain     float64
	Lowpass  float64
	Notes    []note
}

type track struct {
	Tempo float64
	Bass  voice
	Lead  voice
}

func (t track) secondsPerBeat() float64 {
	return 60.0 / t.Tempo
}

var tracks = map[model.Track]track{
	model.TrackGameplay: {
		Tempo: 100,
		Bass: voice{
			Name:     "bass",
			Waveform: model.WaveSine,
			Gain:     0.2,
			Lowpass:  400,
			Notes: []note{
				{noteE2, 0.5}, {rest, 0.5}, {noteE2, 0.5}, {rest, 0.5},
				{noteA2, 0.5}, {rest, 0.5}, {noteB2, 0.5}, {rest, 0.5},
			},
		},
		Lead: voice{
			Name:     "lead",
			Waveform: model.WaveTriangle,
			Gain:     0.05,
			Notes: []note{
				{noteB3, 0.1}, {rest, 0.9}, {noteE4, 0.1}, {rest, 1.9},
				{noteD4, 0.1}, {rest, 0.9},
			},
		},
	},
	model.TrackWin: {
		Tempo: 120,
		Bass: voice{
			Name:     "bass",
			Waveform: model.WaveSawtooth,
			Gain:     0.3,
			Lowpass:  800,
			Notes: []note{
				{noteB1, 0.25}, {noteB1, 0.25}, {noteD2, 0.25}, {noteE2, 0.25},
				{noteFs2, 0.25}, {noteE2, 0.25}, {noteD2, 0.25}, {noteB1, 0.25},
			},
		},
		Lead: voice{
			Name:     "lead",
			Waveform: model.WaveSquare,
			Gain:     0.15,
			Notes: []note{
				{noteFs4, 1.5}, {rest, 0.5}, {noteA4, 1.5}, {rest, 0.5},
				{noteFs4, 0.5}, {noteE4, 0.5}, {noteD4, 0.5}, {noteCs4, 0.5},
				{noteB3, 1.0}, {rest, 1.0},
			},
		},
	},
}

// Tracks lists the known music tracks
func Tracks() []model.Track {
	return []model.Track{model.TrackGameplay, model.TrackWin}
}

type voiceTone struct {
	voice string
	tone  model.Tone
}

// stepTones returns the tones step i of t sounds; rests produce nothing
func (t track) stepTones(i int) []voiceTone {
	var out []voiceTone
	for _, v := range []voice{t.Bass, t.Lead} {
		n := v.Notes[i%len(v.Notes)]
		if n.Freq <= 0 {
			continue
		}
		out = append(out, voiceTone{
			voice: v.Name,
			tone: model.Tone{
				Waveform:  v.Waveform,
				Frequency: n.Freq,
				Gain:      v.Gain,
				EndGain:   0.01,
				GainRamp:  model.RampExponential,
				Duration:  n.Beats * t.secondsPerBeat(),
				Lowpass:   v.Lowpass,
			},
		})
	}
	return out
}
