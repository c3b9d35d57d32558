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

func TestProfilesCommand_Builtins(t *testing.T) {
	cmd := NewRootCommand()
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(out)
	cmd.SetArgs([]string{"profiles"})

	err := cmd.Execute()
	require.NoError(t, err)

	assert.Contains(t, out.String(), "aura")
	assert.Contains(t, out.String(), "orion")
}

func TestProfilesCommand_Dir(t *testing.T) {
	dir := t.TempDir()
	src := `
name: "calm"
description: "Barely moves."
system_prompt: "You are calm."
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "calm.cue"), []byte(src), 0o644))

	cmd := NewRootCommand()
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(out)
	cmd.SetArgs([]string{"profiles", "--dir", dir})

	err := cmd.Execute()
	require.NoError(t, err)

	assert.Contains(t, out.String(), "aura")
	assert.Contains(t, out.String(), "calm")
	assert.Contains(t, out.String(), "Barely moves.")
}

func TestProfilesCommand_JSON(t *testing.T) {
	cmd := NewRootCommand()
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(out)
	cmd.SetArgs([]string{"--format", "json", "profiles"})

	err := cmd.Execute()
	require.NoError(t, err)

	var resp struct {
		Status string        `json:"status"`
		Data   []ProfileInfo `json:"data"`
	}
	require.NoError(t, json.Unmarshal(out.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	require.Len(t, resp.Data, 2)
	assert.Equal(t, "aura", resp.Data[0].Name)
	assert.Equal(t, "builtin", resp.Data[0].Source)
	assert.Equal(t, "orion", resp.Data[1].Name)
}

func TestProfilesCommand_MissingDir(t *testing.T) {
	cmd := NewRootCommand()
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(out)
	cmd.SetArgs([]string{"profiles", "--dir", filepath.Join(t.TempDir(), "nowhere")})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitNotFound, GetExitCode(err))
	assert.Contains(t, err.Error(), "profile directory not found")
}

func TestProfilesCommand_InvalidDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.cue"), []byte(`name: 42`), 0o644))

	cmd := NewRootCommand()
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(out)
	cmd.SetArgs([]string{"profiles", "--dir", dir})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "failed to load profiles")
}
