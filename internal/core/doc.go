// Package core implements the tick-based internal-state engine.
//
// A Core advances a rhythmic, partially stochastic state once per Tick call
// and emits an immutable Snapshot of the result. It never produces language,
// never performs I/O, and never blocks: it is a state-transition function
// plus accumulated history behind a single mutex.
//
// Two callers drive a Core concurrently for the lifetime of a session: a
// periodic driver loop (no input, attention false) and an on-demand input
// path (normalized signal, attention true). The mutex serializes whole tick
// invocations, so ticks are totally ordered by lock acquisition and no
// caller ever observes a half-applied transition.
//
// All randomness flows through an injected Source, so tests can script
// every branch: drift, spontaneous jumps, rhythm wander, pulse noise.
package core
