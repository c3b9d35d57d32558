// Package render formats snapshots as single-line terminal views for the
// simulator. Two views exist: the field line shows the rhythm (pulse,
// attention, echoes), the process line shows the awareness computation
// (signal vs internal state, direction momentum, classification).
package render

import (
	"fmt"
	"math"
	"strings"

	"github.com/roach88/limbic/internal/core"
)

const (
	// pulseBarWidth is the bar length at pulse 1.0.
	pulseBarWidth = 40

	// directionBarMax and directionBarScale bound the direction arrow bar.
	directionBarMax   = 20
	directionBarScale = 8
)

// FieldLine renders the rhythm-facing view. The two leading flags mark an
// irregular beat and live echoes; the trailing bar is proportional to pulse.
func FieldLine(s core.Snapshot) string {
	irregular := "."
	if s.IrregularRhythm {
		irregular = "~"
	}
	echo := "."
	if s.EchoCount > 0 {
		echo = "+"
	}
	bar := strings.Repeat("#", int(s.Pulse*pulseBarWidth))
	return fmt.Sprintf("%s%s t=%4d pulse=%.2f att=%.2f echo=%2d |%s",
		irregular, echo, s.Tick, s.Pulse, s.AttentionLevel, s.EchoCount, bar)
}

// ProcessLine renders the awareness-facing view: external and internal
// contributions, total state, per-tick delta, direction momentum with an
// arrow bar, and the awareness classification.
func ProcessLine(s core.Snapshot) string {
	flag := "."
	if s.ActOfAwareness {
		flag = "ACT!"
	}
	return fmt.Sprintf("%4s t=%4d ext=%+.2f int=%+.2f tot=%+.2f d=%+.2f dir=%+.2f %s [reason=%s acts=%d]",
		flag,
		s.Tick,
		s.ExternalSignal,
		s.InternalState,
		s.TotalState,
		s.Delta,
		s.Direction,
		directionBar(s.Direction),
		s.Reason,
		s.ActsOfAwarenessTotal,
	)
}

// directionBar draws momentum as repeated arrows, at least one, capped so
// extreme momentum stays on one line. Non-positive direction points left.
func directionBar(direction float64) string {
	n := int(math.Abs(direction) * directionBarScale)
	if n < 1 {
		n = 1
	}
	if n > directionBarMax {
		n = directionBarMax
	}
	glyph := "<"
	if direction > 0 {
		glyph = ">"
	}
	return strings.Repeat(glyph, n)
}
