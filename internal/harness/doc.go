// Package harness provides conformance testing for the state engine.
//
// The harness drives a core.Core through a scripted sequence of ticks with
// a deterministic noise source and a synthetic clock, then validates the
// resulting trace against per-step and final expectations.
//
// # Scenario Format
//
// Scenarios are defined in YAML files with the following structure:
//
//	name: scenario_name
//	description: "What this scenario validates"
//	profile: aura            # builtin profile name, or a path to a .cue file
//	config:                  # optional knob overrides on the profile config
//	  spontaneous_event_probability: 0.0
//	noise:
//	  constant: 0.5          # every draw returns 0.5 (the quiet midpoint)
//	steps:
//	  - text: "thanks for the help"
//	    expect:
//	      equals: { attention_level: 0.4, echo_count: 1 }
//	  - dt: 1s
//	    repeat: 30
//	    expect:
//	      max: { attention_level: 0.02 }
//	final:
//	  equals: { acts_of_awareness_total: 0 }
//
// # Expectations
//
// Expect clauses address snapshot fields by their wire names (tick, pulse,
// attention_level, echo_count, internal_state, external_signal, total_state,
// direction, delta, irregular_rhythm, act_of_awareness, reason,
// acts_of_awareness_total). Three comparison maps are supported:
//
//   - equals: exact match; floats compare within a small tolerance
//   - min: inclusive lower bound, numeric fields only
//   - max: inclusive upper bound, numeric fields only
//
// A step's expect clause is evaluated against the snapshot of the step's
// last repeat. The final clause is evaluated against the last snapshot of
// the whole run.
//
// # Deterministic Execution
//
// All scenarios execute with a deterministic noise source and a synthetic
// clock that starts at a fixed epoch and advances by each step's dt:
//
//   - noise.constant pins every draw to one value; 0.5 is the quiet
//     midpoint where uniform spans return zero and no probability at or
//     below 0.5 fires
//   - noise.tape loops a scripted sequence of draws, selecting specific
//     stochastic branches
//
// This ensures identical traces across runs for golden file comparison.
//
// # Usage
//
// Load and run a scenario:
//
//	scenario, err := harness.LoadScenario("testdata/scenarios/attention_decay.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	result, err := harness.Run(scenario)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if !result.Pass {
//	    for _, msg := range result.Errors {
//	        log.Println(msg)
//	    }
//	}
package harness
