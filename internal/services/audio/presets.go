package audio

import "github.com/mcoot/chefgenie/internal/model"

var presets = map[model.SoundKind]model.Tone{
	model.SoundClick: {
		Waveform:      model.WaveSine,
		Frequency:     800,
		EndFrequency:  300,
		FrequencyRamp: model.RampExponential,
		RampTime:      0.1,
		Gain:          0.3,
		EndGain:       0.001,
		GainRamp:      model.RampExponential,
		Duration:      0.1,
	},
	model.SoundPop: {
		Waveform:      model.WaveSine,
		Frequency:     400,
		EndFrequency:  600,
		FrequencyRamp: model.RampLinear,
		RampTime:      0.1,
		Gain:          0.2,
		EndGain:       0.001,
		GainRamp:      model.RampExponential,
		Duration:      0.1,
	},
	// Two-note chime: the octave jump lands a third of the way through
	model.SoundWin: {
		Waveform:      model.WaveTriangle,
		Frequency:     523.25,
		EndFrequency:  1046.50,
		FrequencyRamp: model.RampStep,
		RampTime:      0.1,
		Gain:          0.3,
		EndGain:       0,
		GainRamp:      model.RampLinear,
		Duration:      0.3,
	},
	model.SoundLose: {
		Waveform:      model.WaveSawtooth,
		Frequency:     200,
		EndFrequency:  100,
		FrequencyRamp: model.RampLinear,
		RampTime:      0.5,
		Gain:          0.2,
		EndGain:       0.001,
		GainRamp:      model.RampLinear,
		Duration:      0.5,
	},
	model.SoundThinking: {
		Waveform:      model.WaveSine,
		Frequency:     600,
		EndFrequency:  1200,
		FrequencyRamp: model.RampExponential,
		RampTime:      0.3,
		Gain:          0.05,
		EndGain:       0,
		GainRamp:      model.RampLinear,
		Duration:      0.3,
	},
	model.SoundConfused: {
		Waveform:      model.WaveSquare,
		Frequency:     150,
		EndFrequency:  100,
		FrequencyRamp: model.RampLinear,
		RampTime:      0.1,
		Gain:          0.1,
		EndGain:       0.001,
		GainRamp:      model.RampExponential,
		Duration:      0.2,
	},
}

// Preset returns the oscillator parameters of a sound effect
func Preset(kind model.SoundKind) (model.Tone, bool) {
	tone, ok := presets[kind]
	return tone, ok
}

// Sounds lists the known sound effects
func Sounds() []model.SoundKind {
	return []model.SoundKind{
		model.SoundClick,
		model.SoundPop,
		model.SoundWin,
		model.SoundLose,
		model.SoundThinking,
		model.SoundConfused,
	}
}
