package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const passingScenario = `
name: quiet-pass
description: Five quiet ticks advance the counter and stay in range.
profile: aura
steps:
  - repeat: 5
    expect:
      equals:
        tick: 5
        acts_of_awareness_total: 0
final:
  min:
    pulse: 0.0
  max:
    pulse: 1.0
`

const failingScenario = `
name: quiet-fail
description: Asserts an act that never happens on the quiet midpoint.
profile: aura
steps:
  - repeat: 3
    expect:
      equals:
        act_of_awareness: true
`

// writeScenarios writes the given files into a fresh directory.
func writeScenarios(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, body := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
	}
	return dir
}

func TestVerifyCommand_AllPass(t *testing.T) {
	dir := writeScenarios(t, map[string]string{"quiet_pass.yaml": passingScenario})

	cmd := NewRootCommand()
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(out)
	cmd.SetArgs([]string{"verify", dir})

	err := cmd.Execute()
	require.NoError(t, err)

	assert.Contains(t, out.String(), "✓ quiet-pass")
	assert.Contains(t, out.String(), "Verify Summary: 1 passed, 0 failed, 1 total")
	assert.Contains(t, out.String(), "✓ All scenarios passed")
}

func TestVerifyCommand_Failure(t *testing.T) {
	dir := writeScenarios(t, map[string]string{
		"quiet_pass.yaml": passingScenario,
		"quiet_fail.yaml": failingScenario,
	})

	cmd := NewRootCommand()
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(out)
	cmd.SetArgs([]string{"verify", dir})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	assert.Contains(t, out.String(), "✗ quiet-fail")
	assert.Contains(t, out.String(), "✓ quiet-pass")
	assert.Contains(t, out.String(), "Verify Summary: 1 passed, 1 failed, 2 total")
}

func TestVerifyCommand_Filter(t *testing.T) {
	dir := writeScenarios(t, map[string]string{
		"quiet_pass.yaml": passingScenario,
		"quiet_fail.yaml": failingScenario,
	})

	cmd := NewRootCommand()
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(out)
	cmd.SetArgs([]string{"verify", dir, "--filter", "*pass"})

	err := cmd.Execute()
	require.NoError(t, err)
	assert.Contains(t, out.String(), "Verify Summary: 1 passed, 0 failed, 1 total")
}

func TestVerifyCommand_NoMatches(t *testing.T) {
	dir := writeScenarios(t, map[string]string{"quiet_pass.yaml": passingScenario})

	cmd := NewRootCommand()
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(out)
	cmd.SetArgs([]string{"verify", dir, "--filter", "zzz*"})

	err := cmd.Execute()
	require.NoError(t, err)
	assert.Contains(t, out.String(), "No scenarios found.")
}

func TestVerifyCommand_JSON(t *testing.T) {
	dir := writeScenarios(t, map[string]string{
		"quiet_pass.yaml": passingScenario,
		"quiet_fail.yaml": failingScenario,
	})

	cmd := NewRootCommand()
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(out)
	cmd.SetArgs([]string{"--format", "json", "verify", dir})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var resp struct {
		Status string       `json:"status"`
		Data   VerifyResult `json:"data"`
		Error  *CLIError    `json:"error"`
	}
	require.NoError(t, json.Unmarshal(out.Bytes(), &resp))
	assert.Equal(t, "error", resp.Status)
	assert.Equal(t, 1, resp.Data.Passed)
	assert.Equal(t, 1, resp.Data.Failed)
	assert.Equal(t, 2, resp.Data.Total)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeVerifyFailed, resp.Error.Code)
}

func TestVerifyCommand_LoadError(t *testing.T) {
	dir := writeScenarios(t, map[string]string{
		"broken.yaml": "name: broken\nsteps: []\nbogus_field: true\n",
	})

	cmd := NewRootCommand()
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(out)
	cmd.SetArgs([]string{"verify", dir})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out.String(), "✗ broken.yaml")
	assert.Contains(t, out.String(), "Load error:")
}

func TestVerifyCommand_MissingDir(t *testing.T) {
	cmd := NewRootCommand()
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(out)
	cmd.SetArgs([]string{"verify", filepath.Join(t.TempDir(), "nowhere")})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "scenarios directory not found")
}

func TestVerifyCommand_GoldenRoundTrip(t *testing.T) {
	dir := writeScenarios(t, map[string]string{"quiet_pass.yaml": passingScenario})
	scenarioFile := filepath.Join(dir, "quiet_pass.yaml")

	// First run records the golden trace
	cmd := NewRootCommand()
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(out)
	cmd.SetArgs([]string{"verify", dir, "--update"})
	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "✓ quiet-pass (golden updated)")

	goldenPath := goldenFilePath(scenarioFile)
	golden, err := os.ReadFile(goldenPath)
	require.NoError(t, err)
	assert.Contains(t, string(golden), "pulse=")

	// A deterministic scenario matches its own golden
	cmd = NewRootCommand()
	out.Reset()
	cmd.SetOut(out)
	cmd.SetErr(out)
	cmd.SetArgs([]string{"verify", dir})
	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "✓ quiet-pass")

	// Tampering with the golden is caught
	require.NoError(t, os.WriteFile(goldenPath, append(golden, 'x'), 0o644))
	cmd = NewRootCommand()
	out.Reset()
	cmd.SetOut(out)
	cmd.SetErr(out)
	cmd.SetArgs([]string{"verify", dir})
	err = cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out.String(), "Golden trace mismatch")
}
