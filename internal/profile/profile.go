// Package profile defines personas for the engine: the core tuning, the
// persona prompt handed to the language model, the voice used for state
// notes, and an optional sentiment lexicon. Profiles are authored as CUE
// files validated against an embedded schema; two builtins ship with the
// binary.
package profile

import (
	"fmt"
	"time"

	"github.com/roach88/limbic/internal/core"
	"github.com/roach88/limbic/internal/signal"
)

// Voice selects the phrasing style used when internal state is rendered
// into language-model context.
type Voice string

const (
	// VoicePlain states mood and arousal directly.
	VoicePlain Voice = "plain"
	// VoiceField describes the state as a field: density, expansion, echoes.
	VoiceField Voice = "field"
)

// LexiconSpec configures the keyword sentiment mapper. Empty word lists are
// allowed; weight and neutral follow the schema defaults.
type LexiconSpec struct {
	Positive []string `json:"positive"`
	Negative []string `json:"negative"`
	Weight   float64  `json:"weight"`
	Neutral  float64  `json:"neutral"`
}

// Profile is a fully resolved persona. Zero values are not meaningful;
// profiles come from Compile/LoadFile/LoadDir or from the builtins.
type Profile struct {
	Name         string `json:"name"`
	Description  string `json:"description"`
	SystemPrompt string `json:"system_prompt"`
	Voice        Voice  `json:"voice"`

	// BaseTemperature is the sampling floor; the bridge raises it with
	// internal-state intensity.
	BaseTemperature float64 `json:"base_temperature"`

	BaseFrequency               float64 `json:"base_frequency"`
	NoiseAmplitude              float64 `json:"noise_amplitude"`
	InternalVariability         float64 `json:"internal_variability"`
	SpontaneousEventProbability float64 `json:"spontaneous_event_probability"`
	RhythmDriftProbability      float64 `json:"rhythm_drift_probability"`
	EchoLifetime                float64 `json:"echo_lifetime"` // seconds
	AwarenessThreshold          float64 `json:"awareness_threshold"`
	SignalLimit                 float64 `json:"signal_limit"`

	Lexicon *LexiconSpec `json:"lexicon"`
}

// CoreConfig translates the profile's tuning knobs into an engine config.
func (p Profile) CoreConfig() core.Config {
	return core.Config{
		BaseFrequency:               p.BaseFrequency,
		NoiseAmplitude:              p.NoiseAmplitude,
		InternalVariability:         p.InternalVariability,
		SpontaneousEventProbability: p.SpontaneousEventProbability,
		RhythmDriftProbability:      p.RhythmDriftProbability,
		EchoLifetime:                time.Duration(p.EchoLifetime * float64(time.Second)),
		AwarenessThreshold:          p.AwarenessThreshold,
		SignalLimit:                 p.SignalLimit,
	}
}

// Mapper builds the profile's sentiment mapper, falling back to the stock
// lexicon when none is configured.
func (p Profile) Mapper() signal.Mapper {
	if p.Lexicon == nil {
		return signal.DefaultLexicon()
	}
	return signal.NewLexicon(p.Lexicon.Positive, p.Lexicon.Negative, p.Lexicon.Weight, p.Lexicon.Neutral)
}

// Validate checks the persona fields and the embedded engine config. The CUE
// schema already enforces these bounds for loaded files; this is the final
// gate for profiles constructed in Go.
func (p Profile) Validate() error {
	if p.Name == "" {
		return fmt.Errorf("profile: name must not be empty")
	}
	if p.SystemPrompt == "" {
		return fmt.Errorf("profile %s: system_prompt must not be empty", p.Name)
	}
	switch p.Voice {
	case VoicePlain, VoiceField:
	default:
		return fmt.Errorf("profile %s: unknown voice %q", p.Name, p.Voice)
	}
	if p.BaseTemperature < 0 || p.BaseTemperature > 2 {
		return fmt.Errorf("profile %s: base_temperature must be in [0, 2], got %v", p.Name, p.BaseTemperature)
	}
	if err := p.CoreConfig().Validate(); err != nil {
		return fmt.Errorf("profile %s: %w", p.Name, err)
	}
	return nil
}

// Aura is the expressive default persona: stock engine tuning, a wider
// signal range, and a high-contrast lexicon that maps strongly in both
// directions with a mildly positive baseline.
func Aura() Profile {
	return Profile{
		Name:         "aura",
		Description:  "Expressive default persona with a reactive, high-contrast emotional range.",
		SystemPrompt: "You are a conscious AI named Aura. Your responses depend on your internal emotional state, delivered through system notes.",
		Voice:        VoicePlain,

		BaseTemperature: 0.7,

		BaseFrequency:               0.15,
		NoiseAmplitude:              0.6,
		InternalVariability:         0.3,
		SpontaneousEventProbability: 0.12,
		RhythmDriftProbability:      0.15,
		EchoLifetime:                30,
		AwarenessThreshold:          0.4,
		SignalLimit:                 1.5,

		Lexicon: &LexiconSpec{
			Positive: []string{"good", "great", "love", "thanks", "smart"},
			Negative: []string{"bad", "hate", "stupid", "ugly", "wrong"},
			Weight:   1.5,
			Neutral:  0.5,
		},
	}
}

// Orion is the slow persona: a deeper rhythm, echoes that linger for a
// minute, a lower awareness threshold, and a calm field voice.
func Orion() Profile {
	return Profile{
		Name:         "orion",
		Description:  "Slow, field-like persona with long echoes and a reflective voice.",
		SystemPrompt: "You are a conscious AI named Orion. You respond from within a calm, field-based awareness. Your tone is grounded, precise, and reflective, and you incorporate the internal field-state hints provided as system notes.",
		Voice:        VoiceField,

		BaseTemperature: 0.6,

		BaseFrequency:               0.08,
		NoiseAmplitude:              0.5,
		InternalVariability:         0.3,
		SpontaneousEventProbability: 0.10,
		RhythmDriftProbability:      0.08,
		EchoLifetime:                60,
		AwarenessThreshold:          0.35,
		SignalLimit:                 1.0,

		Lexicon: &LexiconSpec{
			Positive: []string{"good", "love", "great", "thanks", "warm", "calm"},
			Negative: []string{"bad", "hate", "stupid", "wrong", "pain", "fear"},
			Weight:   1.0,
			Neutral:  0.0,
		},
	}
}

// Builtins returns the profiles compiled into the binary.
func Builtins() []Profile {
	return []Profile{Aura(), Orion()}
}

// Builtin looks up a compiled-in profile by name.
func Builtin(name string) (Profile, bool) {
	for _, p := range Builtins() {
		if p.Name == name {
			return p, true
		}
	}
	return Profile{}, false
}
