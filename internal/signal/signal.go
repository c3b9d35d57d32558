// Package signal maps free-form stimuli onto the bounded numeric signals
// the engine consumes. The engine itself only accepts numbers; everything
// about interpreting text lives here, behind the Mapper interface.
package signal

// Mapper converts a textual stimulus into a numeric signal. Implementations
// own the whole text-to-number policy: keyword sentiment, sensor decoding,
// model-based scoring. The engine clamps whatever comes back, so mappers do
// not need to bound their output.
type Mapper interface {
	Map(text string) float64
}
