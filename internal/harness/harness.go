package harness

import (
	"fmt"
	"math"
	"time"

	"github.com/roach88/limbic/internal/core"
	"github.com/roach88/limbic/internal/profile"
	"github.com/roach88/limbic/internal/signal"
	"github.com/roach88/limbic/internal/testutil"
)

// runEpoch is the synthetic start of every run. Scenario time is
// relative; only elapsed time feeds the engine.
var runEpoch = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

// defaultStepDt is the dt applied when a step does not set one.
const defaultStepDt = time.Second

// Run executes a scenario against a fresh engine and returns the
// collected trace and expectation outcomes.
//
// The returned error reports setup problems: an invalid scenario, an
// unloadable profile, or a configuration the engine rejects. Expectation
// and invariant failures land in Result.Errors with Pass false.
func Run(s *Scenario) (*Result, error) {
	if err := validateScenario(s); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	prof, err := resolveProfile(s.Profile)
	if err != nil {
		return nil, err
	}

	cfg := prof.CoreConfig()
	if s.Config != nil {
		cfg = s.Config.Apply(cfg)
	}

	eng, err := core.New(cfg, core.WithSource(noiseSource(s.Noise)))
	if err != nil {
		return nil, fmt.Errorf("configure engine: %w", err)
	}
	mapper := prof.Mapper()

	result := NewResult()
	now := runEpoch
	var prev core.Snapshot
	for i, step := range s.Steps {
		dt := defaultStepDt
		if step.Dt != "" {
			// Parse errors were rejected by validateScenario.
			dt, _ = time.ParseDuration(step.Dt)
		}
		repeats := step.Repeat
		if repeats == 0 {
			repeats = 1
		}

		var snap core.Snapshot
		for r := 0; r < repeats; r++ {
			now = now.Add(dt)
			snap = eng.Tick(now, stepInput(step, mapper))
			result.Trace = append(result.Trace, snap)
			checkInvariants(result, cfg, prev, snap)
			prev = snap
		}

		if step.Expect != nil {
			where := fmt.Sprintf("steps[%d].expect", i)
			for _, err := range evaluateExpect(where, step.Expect, snap, result.Trace) {
				result.AddError(err.Error())
			}
		}
	}

	result.Final = prev
	if s.Final != nil {
		for _, err := range evaluateExpect("final", s.Final, result.Final, result.Trace) {
			result.AddError(err.Error())
		}
	}

	return result, nil
}

// resolveProfile turns the scenario's profile reference into a Profile.
// A .cue suffix selects file loading; anything else must be a builtin.
func resolveProfile(ref string) (profile.Profile, error) {
	if isProfilePath(ref) {
		return profile.LoadFile(ref)
	}
	p, ok := profile.Builtin(ref)
	if !ok {
		return profile.Profile{}, fmt.Errorf("unknown builtin profile %q", ref)
	}
	return p, nil
}

// noiseSource builds the deterministic source a scenario requests.
// The default is the quiet midpoint.
func noiseSource(n NoiseSpec) core.Source {
	if len(n.Tape) > 0 {
		return testutil.NewScriptedSource(n.Tape...)
	}
	v := 0.5
	if n.Constant != nil {
		v = *n.Constant
	}
	return testutil.ConstantSource(v)
}

// stepInput converts a step to the engine input for one tick. A step
// carrying a stimulus is attended unless it says otherwise.
func stepInput(step Step, mapper signal.Mapper) core.Input {
	var in core.Input
	switch {
	case step.Text != "":
		in.Signal = mapper.Map(step.Text)
		in.Attention = true
	case step.Signal != nil:
		in.Signal = *step.Signal
		in.Attention = true
	}
	if step.Attention != nil {
		in.Attention = *step.Attention
	}
	return in
}

// checkInvariants validates the properties every snapshot must satisfy
// regardless of scenario. prev is the preceding snapshot of the run,
// zero before the first tick.
func checkInvariants(result *Result, cfg core.Config, prev, snap core.Snapshot) {
	fail := func(field, expected, actual string) {
		result.AddError((&AssertionError{
			Where:    fmt.Sprintf("invariant at tick %d", snap.Tick),
			Field:    field,
			Expected: expected,
			Actual:   actual,
		}).Error())
	}

	if snap.Tick != prev.Tick+1 {
		fail("tick", fmt.Sprintf("%d", prev.Tick+1), fmt.Sprintf("%d", snap.Tick))
	}
	if snap.Pulse < 0 || snap.Pulse > 1 {
		fail("pulse", "in [0, 1]", fmt.Sprintf("%v", snap.Pulse))
	}
	if snap.AttentionLevel < 0 || snap.AttentionLevel > 1 {
		fail("attention_level", "in [0, 1]", fmt.Sprintf("%v", snap.AttentionLevel))
	}
	if snap.InternalState < -1 || snap.InternalState > 1 {
		fail("internal_state", "in [-1, 1]", fmt.Sprintf("%v", snap.InternalState))
	}
	if math.Abs(snap.ExternalSignal) > cfg.SignalLimit {
		fail("external_signal", fmt.Sprintf("|signal| <= %v", cfg.SignalLimit), fmt.Sprintf("%v", snap.ExternalSignal))
	}
	if math.Abs(snap.TotalState-(snap.InternalState+snap.ExternalSignal)) > equalsTolerance {
		fail("total_state", fmt.Sprintf("internal + external = %v", snap.InternalState+snap.ExternalSignal), fmt.Sprintf("%v", snap.TotalState))
	}
	if snap.EchoCount < 0 {
		fail("echo_count", ">= 0", fmt.Sprintf("%d", snap.EchoCount))
	}

	wantActs := prev.ActsOfAwarenessTotal
	if snap.ActOfAwareness {
		wantActs++
	}
	if snap.ActsOfAwarenessTotal != wantActs {
		fail("acts_of_awareness_total", fmt.Sprintf("%d", wantActs), fmt.Sprintf("%d", snap.ActsOfAwarenessTotal))
	}
	if snap.ActOfAwareness && snap.Reason == core.ReasonNone {
		fail("reason", "a cause on an awareness tick", "none")
	}
	if !snap.ActOfAwareness && snap.Reason != core.ReasonNone {
		fail("reason", "none on a quiet tick", string(snap.Reason))
	}
}
