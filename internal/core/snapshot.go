package core

import "time"

// Reason classifies why a tick was (or was not) an act of awareness.
type Reason string

const (
	// ReasonNone marks a tick with no act of awareness.
	ReasonNone Reason = "none"

	// ReasonSpontaneous marks a tick where an unprompted internal jump
	// exceeded the awareness threshold.
	ReasonSpontaneous Reason = "spontaneous_internal_change"

	// ReasonDominant marks a tick where the internal state change both
	// outweighed the external signal and exceeded the awareness threshold.
	ReasonDominant Reason = "dominant_internal_change"
)

// Snapshot is the immutable record of engine state at the end of one tick.
// It is produced fresh per tick and returned by value: holders share nothing
// with the engine's mutable state.
//
// JSON field names are stable; journal exports and CLI JSON output rely on
// them.
type Snapshot struct {
	Tick                 uint64    `json:"tick"`
	Time                 time.Time `json:"time"`
	Pulse                float64   `json:"pulse"`
	AttentionLevel       float64   `json:"attention_level"`
	EchoCount            int       `json:"echo_count"`
	InternalState        float64   `json:"internal_state"`
	ExternalSignal       float64   `json:"external_signal"`
	TotalState           float64   `json:"total_state"`
	Direction            float64   `json:"direction"`
	Delta                float64   `json:"delta"`
	IrregularRhythm      bool      `json:"irregular_rhythm"`
	ActOfAwareness       bool      `json:"act_of_awareness"`
	Reason               Reason    `json:"reason"`
	ActsOfAwarenessTotal uint64    `json:"acts_of_awareness_total"`
}
