package harness

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/roach88/limbic/internal/core"
	"github.com/roach88/limbic/internal/render"
)

// equalsTolerance bounds the absolute difference an equals comparison
// accepts on float fields.
const equalsTolerance = 1e-9

// traceTail is how many trailing snapshots an AssertionError renders.
const traceTail = 8

// fieldKind classifies a snapshot field for expectation checking.
type fieldKind int

const (
	kindFloat fieldKind = iota
	kindCount
	kindBool
	kindString
)

// snapshotFields maps wire names to field kinds. Expect clauses may only
// address fields listed here.
var snapshotFields = map[string]fieldKind{
	"tick":                    kindCount,
	"pulse":                   kindFloat,
	"attention_level":         kindFloat,
	"echo_count":              kindCount,
	"internal_state":          kindFloat,
	"external_signal":         kindFloat,
	"total_state":             kindFloat,
	"direction":               kindFloat,
	"delta":                   kindFloat,
	"irregular_rhythm":        kindBool,
	"act_of_awareness":        kindBool,
	"reason":                  kindString,
	"acts_of_awareness_total": kindCount,
}

// AssertionError is returned when an expectation fails.
// It includes the trailing trace to make the failing run readable
// without re-running.
type AssertionError struct {
	Where    string // "steps[3].expect", "final", or "invariant at tick N"
	Field    string // snapshot field the check addressed
	Expected string // human-readable expected outcome
	Actual   string // human-readable actual outcome
	Trace    []core.Snapshot
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s: %s\n", e.Where, e.Field)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if len(e.Trace) > 0 {
		fmt.Fprintf(&buf, "\nTrace tail:\n")
		start := 0
		if len(e.Trace) > traceTail {
			start = len(e.Trace) - traceTail
			fmt.Fprintf(&buf, "  (%d earlier ticks elided)\n", start)
		}
		for _, s := range e.Trace[start:] {
			fmt.Fprintf(&buf, "  %s\n", render.ProcessLine(s))
		}
	}

	return buf.String()
}

// evaluateExpect checks one expect clause against a snapshot. Keys are
// checked in sorted order so a multi-failure run reports deterministically.
// Clause shape is validated at load time; eval failures are value
// mismatches, not schema problems.
func evaluateExpect(where string, c *ExpectClause, snap core.Snapshot, trace []core.Snapshot) []error {
	var errs []error

	for _, key := range sortedExpectKeys(c.Equals) {
		want := c.Equals[key]
		got, ok := snapshotField(snap, key)
		if !ok {
			errs = append(errs, fmt.Errorf("%s.equals: unknown snapshot field %q", where, key))
			continue
		}
		if !expectEqual(want, got) {
			errs = append(errs, &AssertionError{
				Where:    where,
				Field:    key,
				Expected: fmt.Sprintf("%v", want),
				Actual:   fmt.Sprintf("%v", got),
				Trace:    trace,
			})
		}
	}

	errs = append(errs, evaluateBounds(where, "min", c.Min, snap, trace)...)
	errs = append(errs, evaluateBounds(where, "max", c.Max, snap, trace)...)
	return errs
}

// evaluateBounds checks inclusive lower or upper bounds on numeric fields.
func evaluateBounds(where, label string, bounds map[string]float64, snap core.Snapshot, trace []core.Snapshot) []error {
	keys := make([]string, 0, len(bounds))
	for k := range bounds {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var errs []error
	for _, key := range keys {
		limit := bounds[key]
		got, ok := snapshotField(snap, key)
		if !ok {
			errs = append(errs, fmt.Errorf("%s.%s: unknown snapshot field %q", where, label, key))
			continue
		}
		val, ok := fieldAsFloat(got)
		if !ok {
			errs = append(errs, fmt.Errorf("%s.%s: field %q is not numeric", where, label, key))
			continue
		}

		var violated bool
		var rel string
		if label == "min" {
			violated = val < limit
			rel = ">="
		} else {
			violated = val > limit
			rel = "<="
		}
		if violated {
			errs = append(errs, &AssertionError{
				Where:    where,
				Field:    key,
				Expected: fmt.Sprintf("%s %v", rel, limit),
				Actual:   fmt.Sprintf("%v", val),
				Trace:    trace,
			})
		}
	}
	return errs
}

// snapshotField resolves a wire name to the snapshot's value.
func snapshotField(s core.Snapshot, name string) (interface{}, bool) {
	switch name {
	case "tick":
		return s.Tick, true
	case "pulse":
		return s.Pulse, true
	case "attention_level":
		return s.AttentionLevel, true
	case "echo_count":
		return s.EchoCount, true
	case "internal_state":
		return s.InternalState, true
	case "external_signal":
		return s.ExternalSignal, true
	case "total_state":
		return s.TotalState, true
	case "direction":
		return s.Direction, true
	case "delta":
		return s.Delta, true
	case "irregular_rhythm":
		return s.IrregularRhythm, true
	case "act_of_awareness":
		return s.ActOfAwareness, true
	case "reason":
		return string(s.Reason), true
	case "acts_of_awareness_total":
		return s.ActsOfAwarenessTotal, true
	}
	return nil, false
}

// expectEqual compares a YAML-decoded expected value against a snapshot
// field. Float fields compare within equalsTolerance; counts must match
// exactly.
func expectEqual(want, got interface{}) bool {
	switch g := got.(type) {
	case float64:
		w, ok := toFloat(want)
		return ok && math.Abs(w-g) <= equalsTolerance
	case uint64:
		w, ok := toFloat(want)
		return ok && w == float64(g)
	case int:
		w, ok := toFloat(want)
		return ok && w == float64(g)
	case bool:
		w, ok := want.(bool)
		return ok && w == g
	case string:
		w, ok := want.(string)
		return ok && w == g
	}
	return false
}

// toFloat widens a YAML numeric scalar.
func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}

// fieldAsFloat widens a numeric snapshot value for bound checks.
func fieldAsFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case uint64:
		return float64(n), true
	}
	return 0, false
}
