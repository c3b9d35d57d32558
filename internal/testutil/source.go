package testutil

// ScriptedSource replays a fixed tape of values as a core.Source.
//
// The tape loops: once the last value is consumed the next draw starts over
// at the beginning. A tape sized to one tick's worth of draws therefore
// drives every tick identically, which is how scenario tests force branches
// (spontaneous events, rhythm wander) deterministically.
//
// Not safe for concurrent use; the engine only draws under its own mutex.
type ScriptedSource struct {
	tape []float64
	i    int
}

// NewScriptedSource creates a looping source over tape.
// Panics on an empty tape: that is a test misconfiguration, not a runtime
// condition to recover from.
func NewScriptedSource(tape ...float64) *ScriptedSource {
	if len(tape) == 0 {
		panic("testutil: scripted source needs at least one value")
	}
	s := &ScriptedSource{tape: make([]float64, len(tape))}
	copy(s.tape, tape)
	return s
}

// Float64 returns the next tape value, wrapping at the end.
func (s *ScriptedSource) Float64() float64 {
	v := s.tape[s.i]
	s.i = (s.i + 1) % len(s.tape)
	return v
}

// Reset rewinds the tape to the beginning for test reuse.
func (s *ScriptedSource) Reset() {
	s.i = 0
}

// ConstantSource returns the same value on every draw.
//
// A ConstantSource of 0.5 is the quiet engine: uniform draws land on their
// midpoint (zero noise, zero drift) and probability checks fire only when
// the configured probability exceeds 0.5.
type ConstantSource float64

// Float64 returns the constant value.
func (s ConstantSource) Float64() float64 {
	return float64(s)
}
