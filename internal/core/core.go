package core

import (
	"math"
	"math/rand"
	"sync"
	"time"
)

// Transition constants. These shape the state transition and are fixed by
// design rather than configured: profiles tune Config, not the kernel.
const (
	// attentionGain is the fraction of the remaining gap to 1 that
	// attention_level gains on an attended tick.
	attentionGain = 0.4

	// attentionDecay is the per-second multiplicative decay of
	// attention_level on unattended ticks.
	attentionDecay = 0.9

	// directionSmoothing is the EMA weight of the newest delta; the
	// complement weights the running direction.
	directionSmoothing = 0.3

	// irregularNoiseFraction flags a tick as irregular when |noise| exceeds
	// this fraction of the unit rhythmic amplitude.
	irregularNoiseFraction = 0.5

	// pulseSpan is the nominal half-span of the raw pulse sum; the pulse
	// normalizes as (raw+pulseSpan)/(2*pulseSpan) before clamping to [0,1].
	pulseSpan = 3.0

	// Attention tilts the intent bias by a uniform draw in
	// [biasAttentionMin, biasAttentionMax].
	biasAttentionMin = 0.02
	biasAttentionMax = 0.07

	// Rhythm wander steps the intent bias within [-biasDriftSpan,
	// +biasDriftSpan] and the working frequency by a uniform fraction of
	// BaseFrequency/freqDriftDivisor, bounded to
	// [BaseFrequency/freqFloorDivisor, BaseFrequency*freqCeilFactor].
	biasDriftSpan    = 0.03
	freqDriftDivisor = 15.0
	freqFloorDivisor = 3.0
	freqCeilFactor   = 2.0
)

// Input is what one tick consumes from the outside world. A zero Input is
// valid: no signal, no attention (the driver loop's idle tick).
//
// Signal must already be numeric; text-to-number mapping is the stimulus
// producer's job (see internal/signal). Out-of-range signals are clamped to
// the configured limit, never rejected.
type Input struct {
	Signal    float64
	Attention bool
}

// echoTrace is one decaying memory record, created on an attended tick.
// Traces are purged once remaining reaches zero, never reused.
type echoTrace struct {
	tick      uint64
	strength  float64
	remaining float64 // seconds
}

// Core is the internal-state engine. One Core owns one mutable state; all
// mutation happens inside Tick, under the mutex.
//
// Thread-safety: Tick and Peek are safe to call from any goroutine. Whole
// tick invocations are serialized, so a tick appears atomic to every other
// caller and tick_count reflects lock acquisition order.
type Core struct {
	mu  sync.Mutex
	cfg Config
	src Source

	tickCount      uint64
	lastTime       time.Time
	phase          float64 // accumulated rhythm phase, radians
	freq           float64 // working frequency; wanders around cfg.BaseFrequency
	intentBias     float64
	attention      float64 // [0,1]
	echoes         []echoTrace
	internal       float64 // [-1,1]
	lastTotal      float64
	direction      float64
	awarenessTotal uint64
	last           Snapshot
}

// Option configures a Core at construction.
type Option func(*Core)

// WithSource injects the randomness source. Used by tests to script
// specific branches.
func WithSource(src Source) Option {
	return func(c *Core) {
		c.src = src
	}
}

// WithSeed seeds a dedicated source, making the whole run reproducible.
func WithSeed(seed int64) Option {
	return func(c *Core) {
		c.src = rand.New(rand.NewSource(seed))
	}
}

// New creates a Core with the given configuration. It fails fast on invalid
// configuration; nothing is clamped at construction time.
//
// Without options the Core draws from a time-seeded source.
func New(cfg Config, opts ...Option) (*Core, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	c := &Core{
		cfg:  cfg,
		src:  rand.New(rand.NewSource(time.Now().UnixNano())),
		freq: cfg.BaseFrequency,
		last: Snapshot{Reason: ReasonNone},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Config returns a copy of the engine's configuration.
func (c *Core) Config() Config {
	return c.cfg
}

// Tick advances the engine by one step and returns the resulting Snapshot.
//
// now should be non-decreasing across calls; a now earlier than the previous
// tick clamps elapsed time to zero rather than failing, so the engine stays
// available to callers with imperfect clocks. The first tick has dt = 0.
//
// Tick never blocks, never performs I/O, and mutates the engine state
// exactly once, fully, per call.
func (c *Core) Tick(now time.Time, in Input) Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	// Elapsed time clamps at zero and the reference never moves backwards:
	// a non-monotonic now contributes dt = 0 and leaves the reference where
	// it was, so later well-ordered ticks do not re-elapse time.
	var dt float64
	if c.lastTime.IsZero() {
		c.lastTime = now
	} else if d := now.Sub(c.lastTime); d > 0 {
		dt = d.Seconds()
		c.lastTime = now
	}
	c.tickCount++

	// Existing traces decay before any new trace is appended, so a trace
	// created this tick is never charged for time that elapsed before its
	// creation.
	live := c.echoes[:0]
	for _, e := range c.echoes {
		e.remaining -= dt
		if e.remaining > 0 {
			live = append(live, e)
		}
	}
	c.echoes = live

	if in.Attention {
		c.attention += attentionGain * (1 - c.attention)
		c.echoes = append(c.echoes, echoTrace{
			tick:      c.tickCount,
			strength:  c.attention,
			remaining: c.cfg.EchoLifetime.Seconds(),
		})
		c.intentBias += c.uniform(biasAttentionMin, biasAttentionMax)
	} else {
		c.attention *= math.Pow(attentionDecay, dt)
	}

	if c.chance(c.cfg.RhythmDriftProbability) {
		c.freq += c.uniform(-1, 1) * c.cfg.BaseFrequency / freqDriftDivisor
		c.freq = clamp(c.freq,
			c.cfg.BaseFrequency/freqFloorDivisor,
			c.cfg.BaseFrequency*freqCeilFactor)
		c.intentBias += c.uniform(-biasDriftSpan, biasDriftSpan)
	}
	c.phase += c.freq * dt

	noise := c.uniform(-1, 1) * c.cfg.NoiseAmplitude
	raw := math.Sin(c.phase+c.intentBias) + noise + c.attention
	pulse := clamp((raw+pulseSpan)/(2*pulseSpan), 0, 1)
	irregular := math.Abs(noise) > irregularNoiseFraction

	drift := c.uniform(-1, 1) * c.cfg.InternalVariability
	spontaneous := false
	var jump float64
	if c.chance(c.cfg.SpontaneousEventProbability) {
		jump = c.uniform(-1, 1)
		drift += jump
		spontaneous = true
	}
	prev := c.internal
	c.internal = clamp(c.internal+drift, -1, 1)
	// The internal contribution is the post-clamp actual change: a clamped
	// tick cannot claim a larger change than it made.
	internalDelta := c.internal - prev

	signal := clamp(in.Signal, -c.cfg.SignalLimit, c.cfg.SignalLimit)
	total := c.internal + signal
	delta := total - c.lastTotal
	c.lastTotal = total
	c.direction = (1-directionSmoothing)*c.direction + directionSmoothing*delta

	act := false
	reason := ReasonNone
	switch {
	case spontaneous && math.Abs(jump) > c.cfg.AwarenessThreshold:
		act = true
		reason = ReasonSpontaneous
	case math.Abs(internalDelta) > math.Abs(signal) && math.Abs(internalDelta) > c.cfg.AwarenessThreshold:
		act = true
		reason = ReasonDominant
	}
	if act {
		c.awarenessTotal++
	}

	c.last = Snapshot{
		Tick:                 c.tickCount,
		Time:                 now,
		Pulse:                pulse,
		AttentionLevel:       c.attention,
		EchoCount:            len(c.echoes),
		InternalState:        c.internal,
		ExternalSignal:       signal,
		TotalState:           total,
		Direction:            c.direction,
		Delta:                delta,
		IrregularRhythm:      irregular,
		ActOfAwareness:       act,
		Reason:               reason,
		ActsOfAwarenessTotal: c.awarenessTotal,
	}
	return c.last
}

// Peek returns the most recently emitted Snapshot without advancing state.
// Before the first tick it returns a zero Snapshot (Tick 0, Reason none).
func (c *Core) Peek() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.last
}

// uniform draws from [lo, hi).
func (c *Core) uniform(lo, hi float64) float64 {
	return lo + (hi-lo)*c.src.Float64()
}

// chance draws once and reports true with probability p.
func (c *Core) chance(p float64) bool {
	return c.src.Float64() < p
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
