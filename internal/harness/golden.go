package harness

import (
	"bytes"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/limbic/internal/render"
)

// RenderTrace formats a result's trace two lines per tick: the field view
// and the process view, in the shape the simulator prints them. The
// rendering rounds floats to two decimals, which keeps golden files
// stable across platforms.
func RenderTrace(result *Result) []byte {
	var buf bytes.Buffer
	for _, s := range result.Trace {
		buf.WriteString(render.FieldLine(s))
		buf.WriteByte('\n')
		buf.WriteString(render.ProcessLine(s))
		buf.WriteByte('\n')
	}
	return buf.Bytes()
}

// RunWithGolden executes a scenario and compares the rendered trace
// against a golden file. The golden file is stored in
// testdata/golden/{scenario.Name}.golden
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns error if scenario execution fails. Test failure (via goldie)
// occurs if the trace doesn't match the golden file.
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenario.Name, RenderTrace(result))

	return result, nil
}
