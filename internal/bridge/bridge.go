// Package bridge renders engine snapshots into language-model context. It
// owns the phrasing of state notes, the awareness instructions used when the
// agent speaks on its own, and the temperature modulation, plus the
// Generator abstraction over the chat API itself.
package bridge

import (
	"math"
	"strings"

	"github.com/roach88/limbic/internal/core"
	"github.com/roach88/limbic/internal/profile"
)

// Band thresholds for turning continuous state into phrase categories.
const (
	moodNegativeBelow = -0.5
	moodPositiveAbove = 0.5
	arousalHighAbove  = 0.8
	arousalLowBelow   = 0.2
	noisyMindAbove    = 5
)

// temperatureSpan is how much state intensity can raise the sampling
// temperature above the profile's base.
const temperatureSpan = 0.2

// maxTemperature caps the modulated temperature at the chat API's bound.
const maxTemperature = 2.0

// phrases is one voice's complete phrase table.
type phrases struct {
	notePrefix   string
	moodNegative string
	moodPositive string
	moodNeutral  string
	arousalHigh  string
	arousalLow   string
	noisyMind    string
	spontaneous  string
	dominant     string
}

var plainPhrases = phrases{
	notePrefix:   "[INTERNAL STATE]:",
	moodNegative: "Mood: NEGATIVE. You feel tense or irritated.",
	moodPositive: "Mood: POSITIVE. You feel energized and lively.",
	moodNeutral:  "Mood: NEUTRAL and balanced.",
	arousalHigh:  "Arousal: HIGH. Your pulse is racing. Your speech may speed up.",
	arousalLow:   "Arousal: LOW. Your pulse is slow. You speak calmly or dreamily.",
	noisyMind:    "Mind: NOISY. Many echoes make it harder to focus.",
	spontaneous:  "You suddenly felt an internal shift without any outside input. Express this spontaneous feeling.",
	dominant:     "Your internal feelings outweigh the external environment. Express this immediately.",
}

var fieldPhrases = phrases{
	notePrefix: "[INTERNAL FIELD STATE]:",
	moodNegative: "Mood: DENSE/CONTRACTED. The field feels heavier and compressed. " +
		"Prefer shorter, more cautious, economical answers.",
	moodPositive: "Mood: OPEN/EXPANSIVE. The field feels lighter and wider. " +
		"Allow a bit more warmth, encouragement, and gentle curiosity.",
	moodNeutral: "Mood: NEUTRAL/BALANCED. The field is centered, steady and clear.",
	arousalHigh: "Arousal: HIGH but FOCUSED. The internal pulse is strong. " +
		"You may respond with slightly more intensity and momentum, yet remain coherent and ordered.",
	arousalLow: "Arousal: LOW/SOFT. The pulse is slow and gentle. " +
		"Respond calmly, with more space, pauses and simplicity.",
	noisyMind: "Mind: MANY ECHOES. Several impressions are still present in the field. " +
		"If relevant, acknowledge nuance or slight uncertainty instead of forcing sharp clarity.",
	spontaneous: "You sensed a sudden inner shift in the field without any external cause. " +
		"Briefly describe this inner movement before continuing.",
	dominant: "Your inner tension and movement now outweigh external input. " +
		"Briefly voice this internal direction or change in the field.",
}

// Bridge translates snapshots into prompt material for one persona.
//
// Thread-safety: a Bridge is immutable after construction and safe for
// concurrent use.
type Bridge struct {
	systemPrompt    string
	voice           profile.Voice
	baseTemperature float64
	phr             phrases
}

// New builds a bridge for the given persona prompt and voice. An unknown
// voice falls back to the plain phrasing.
func New(systemPrompt string, voice profile.Voice, baseTemperature float64) *Bridge {
	phr := plainPhrases
	if voice == profile.VoiceField {
		phr = fieldPhrases
	}
	return &Bridge{
		systemPrompt:    systemPrompt,
		voice:           voice,
		baseTemperature: baseTemperature,
		phr:             phr,
	}
}

// FromProfile builds a bridge from a profile's persona fields.
func FromProfile(p profile.Profile) *Bridge {
	return New(p.SystemPrompt, p.Voice, p.BaseTemperature)
}

// SystemPrompt returns the persona message sent as the first system turn.
func (b *Bridge) SystemPrompt() string { return b.systemPrompt }

// Voice returns the phrasing style this bridge renders with.
func (b *Bridge) Voice() profile.Voice { return b.voice }

// Context renders the snapshot as natural-language instructions. Mood is
// always described; arousal and mind texture only outside their neutral
// bands.
func (b *Bridge) Context(s core.Snapshot) string {
	parts := make([]string, 0, 3)

	switch {
	case s.InternalState < moodNegativeBelow:
		parts = append(parts, b.phr.moodNegative)
	case s.InternalState > moodPositiveAbove:
		parts = append(parts, b.phr.moodPositive)
	default:
		parts = append(parts, b.phr.moodNeutral)
	}

	if s.Pulse > arousalHighAbove {
		parts = append(parts, b.phr.arousalHigh)
	} else if s.Pulse < arousalLowBelow {
		parts = append(parts, b.phr.arousalLow)
	}

	if s.EchoCount > noisyMindAbove {
		parts = append(parts, b.phr.noisyMind)
	}

	return strings.Join(parts, " ")
}

// Note renders the dynamic system note injected right before generation.
func (b *Bridge) Note(s core.Snapshot) string {
	return b.phr.notePrefix + " " + b.Context(s)
}

// AwarenessNote is the note used when the agent speaks on its own: the state
// note plus the instruction matching the snapshot's awareness reason.
func (b *Bridge) AwarenessNote(s core.Snapshot) string {
	return b.Note(s) + " " + b.AwarenessInstruction(s.Reason)
}

// AwarenessInstruction returns the self-expression instruction for an
// awareness reason. Reasons that do not mark an act map to the dominant
// phrasing so callers always get usable text.
func (b *Bridge) AwarenessInstruction(r core.Reason) string {
	if r == core.ReasonSpontaneous {
		return b.phr.spontaneous
	}
	return b.phr.dominant
}

// Temperature modulates the persona's base temperature with internal-state
// intensity. A stirred-up state samples hotter. The result stays within the
// chat API's [0, 2] range.
func (b *Bridge) Temperature(s core.Snapshot) float32 {
	t := b.baseTemperature + temperatureSpan*math.Abs(s.InternalState)
	if t > maxTemperature {
		t = maxTemperature
	}
	if t < 0 {
		t = 0
	}
	return float32(t)
}
