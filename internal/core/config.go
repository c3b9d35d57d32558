package core

import (
	"fmt"
	"time"
)

// Config holds the tunable parameters of a Core. It is immutable per engine
// instance: New copies it and nothing mutates it afterwards.
type Config struct {
	// BaseFrequency is the angular rate of the rhythmic pulse in radians
	// per second of wall time. Must be > 0.
	BaseFrequency float64

	// NoiseAmplitude scales the zero-mean perturbation resampled into the
	// pulse each tick. Must be >= 0.
	NoiseAmplitude float64

	// InternalVariability scales the per-tick random drift of the internal
	// state. Must be >= 0.
	InternalVariability float64

	// SpontaneousEventProbability is the chance per tick of a large
	// unprompted internal jump. Must be in [0,1].
	SpontaneousEventProbability float64

	// RhythmDriftProbability is the chance per tick that the rhythm itself
	// wanders: the working frequency and intent bias take a small random
	// step. Must be in [0,1].
	RhythmDriftProbability float64

	// EchoLifetime is how long an echo trace lives after the attended tick
	// that created it. Must be > 0.
	EchoLifetime time.Duration

	// AwarenessThreshold is the magnitude an internal change must exceed to
	// be classified as an act of awareness. Must be > 0.
	AwarenessThreshold float64

	// SignalLimit bounds external input: signals are clamped to
	// [-SignalLimit, +SignalLimit] at tick time. Must be > 0.
	SignalLimit float64
}

// DefaultConfig returns the standard parameter set.
func DefaultConfig() Config {
	return Config{
		BaseFrequency:               0.15,
		NoiseAmplitude:              0.6,
		InternalVariability:         0.3,
		SpontaneousEventProbability: 0.12,
		RhythmDriftProbability:      0.15,
		EchoLifetime:                30 * time.Second,
		AwarenessThreshold:          0.4,
		SignalLimit:                 1.0,
	}
}

// InvalidConfigError reports a Config field that failed validation.
type InvalidConfigError struct {
	Field  string
	Reason string
}

func (e *InvalidConfigError) Error() string {
	return fmt.Sprintf("invalid config: %s %s", e.Field, e.Reason)
}

// Validate checks every field against its documented range. It returns the
// first violation as an *InvalidConfigError. Out-of-range configuration is
// never silently clamped; construction fails instead.
func (c Config) Validate() error {
	if !(c.BaseFrequency > 0) {
		return &InvalidConfigError{Field: "base_frequency", Reason: fmt.Sprintf("must be > 0, got %v", c.BaseFrequency)}
	}
	if !(c.NoiseAmplitude >= 0) {
		return &InvalidConfigError{Field: "noise_amplitude", Reason: fmt.Sprintf("must be >= 0, got %v", c.NoiseAmplitude)}
	}
	if !(c.InternalVariability >= 0) {
		return &InvalidConfigError{Field: "internal_variability", Reason: fmt.Sprintf("must be >= 0, got %v", c.InternalVariability)}
	}
	if !(c.SpontaneousEventProbability >= 0 && c.SpontaneousEventProbability <= 1) {
		return &InvalidConfigError{Field: "spontaneous_event_probability", Reason: fmt.Sprintf("must be in [0,1], got %v", c.SpontaneousEventProbability)}
	}
	if !(c.RhythmDriftProbability >= 0 && c.RhythmDriftProbability <= 1) {
		return &InvalidConfigError{Field: "rhythm_drift_probability", Reason: fmt.Sprintf("must be in [0,1], got %v", c.RhythmDriftProbability)}
	}
	if c.EchoLifetime <= 0 {
		return &InvalidConfigError{Field: "echo_lifetime", Reason: fmt.Sprintf("must be > 0, got %v", c.EchoLifetime)}
	}
	if !(c.AwarenessThreshold > 0) {
		return &InvalidConfigError{Field: "awareness_threshold", Reason: fmt.Sprintf("must be > 0, got %v", c.AwarenessThreshold)}
	}
	if !(c.SignalLimit > 0) {
		return &InvalidConfigError{Field: "signal_limit", Reason: fmt.Sprintf("must be > 0, got %v", c.SignalLimit)}
	}
	return nil
}
