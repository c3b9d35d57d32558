package cli

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/limbic/internal/journal"
)

func TestSessionsCommand_Text(t *testing.T) {
	path, sid := seedJournal(t)

	cmd := NewRootCommand()
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(out)
	cmd.SetArgs([]string{"sessions", "--db", path})

	err := cmd.Execute()
	require.NoError(t, err)

	assert.Contains(t, out.String(), sid)
	assert.Contains(t, out.String(), "aura")
	assert.Contains(t, out.String(), "3 ticks")
}

func TestSessionsCommand_JSON(t *testing.T) {
	path, sid := seedJournal(t)

	cmd := NewRootCommand()
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(out)
	cmd.SetArgs([]string{"--format", "json", "sessions", "--db", path})

	err := cmd.Execute()
	require.NoError(t, err)

	var resp struct {
		Status string        `json:"status"`
		Data   []SessionInfo `json:"data"`
	}
	require.NoError(t, json.Unmarshal(out.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	require.Len(t, resp.Data, 1)
	assert.Equal(t, sid, resp.Data[0].ID)
	assert.Equal(t, "aura", resp.Data[0].Profile)
	assert.Equal(t, 3, resp.Data[0].Ticks)
}

func TestSessionsCommand_Empty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "limbic.db")
	j, err := journal.Open(path)
	require.NoError(t, err)
	require.NoError(t, j.Close())

	cmd := NewRootCommand()
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(out)
	cmd.SetArgs([]string{"sessions", "--db", path})

	err = cmd.Execute()
	require.NoError(t, err)
	assert.Contains(t, out.String(), "No sessions recorded.")
}

func TestSessionsCommand_MissingJournal(t *testing.T) {
	cmd := NewRootCommand()
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(out)
	cmd.SetArgs([]string{"sessions", "--db", filepath.Join(t.TempDir(), "none.db")})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitNotFound, GetExitCode(err))
}
