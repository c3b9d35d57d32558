package core

// Source supplies the randomness a Core consumes. Implemented by
// *math/rand.Rand (production) and by the scripted sources in
// internal/testutil (tests).
//
// Float64 must return a value in [0,1). A Core only ever draws from its
// Source inside Tick, under the engine mutex, so implementations do not
// need to be safe for concurrent use.
type Source interface {
	Float64() float64
}
