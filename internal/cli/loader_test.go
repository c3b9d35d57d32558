package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/limbic/internal/bridge"
	"github.com/roach88/limbic/internal/journal"
)

func TestLoadProfile_Builtin(t *testing.T) {
	p, err := loadProfile("orion")
	require.NoError(t, err)
	assert.Equal(t, "orion", p.Name)
}

func TestLoadProfile_UnknownBuiltin(t *testing.T) {
	_, err := loadProfile("nonesuch")
	require.Error(t, err)
	assert.Equal(t, ExitNotFound, GetExitCode(err))
	assert.Contains(t, err.Error(), `unknown profile "nonesuch"`)
	assert.Contains(t, err.Error(), "aura")
}

func TestLoadProfile_MissingFile(t *testing.T) {
	_, err := loadProfile(filepath.Join(t.TempDir(), "ghost.cue"))
	require.Error(t, err)
	assert.Equal(t, ExitNotFound, GetExitCode(err))
	assert.Contains(t, err.Error(), "profile file not found")
}

func TestLoadProfile_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "calm.cue")
	src := `
name: "calm"
description: "Barely moves."
system_prompt: "You are calm."
noise_amplitude: 0.1
`
	require.NoError(t, os.WriteFile(path, []byte(src), 0o644))

	p, err := loadProfile(path)
	require.NoError(t, err)
	assert.Equal(t, "calm", p.Name)
	assert.Equal(t, 0.1, p.NoiseAmplitude)
	// Unset knobs pick up schema defaults
	assert.Equal(t, 0.15, p.BaseFrequency)
}

func TestLoadProfile_InvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.cue")
	src := `
name: "broken"
system_prompt: "x"
spontaneous_event_probability: 3.0
`
	require.NoError(t, os.WriteFile(path, []byte(src), 0o644))

	_, err := loadProfile(path)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "failed to load profile")
}

func TestBuildGenerator(t *testing.T) {
	assert.IsType(t, bridge.Simulated{}, buildGenerator("", "sk-test", "gpt-4o-mini", true))
	assert.IsType(t, bridge.Simulated{}, buildGenerator("", "", "gpt-4o-mini", false))
	assert.IsType(t, &bridge.OpenAIGenerator{}, buildGenerator("", "sk-test", "gpt-4o-mini", false))
}

func TestOpenJournal_Missing(t *testing.T) {
	_, err := openJournal(filepath.Join(t.TempDir(), "none.db"))
	require.Error(t, err)
	assert.Equal(t, ExitNotFound, GetExitCode(err))
	assert.Contains(t, err.Error(), "journal not found")
}

func TestOpenJournal_Existing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "limbic.db")
	j, err := journal.Open(path)
	require.NoError(t, err)
	require.NoError(t, j.Close())

	j, err = openJournal(path)
	require.NoError(t, err)
	assert.NoError(t, j.Close())
}
