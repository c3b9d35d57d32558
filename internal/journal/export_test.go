package journal

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJournal_Export_WritesJSONLines(t *testing.T) {
	j := openTestJournal(t)
	ctx := context.Background()

	id, err := j.BeginSession(ctx, "aura", journalTestBase)
	require.NoError(t, err)
	for tick := uint64(1); tick <= 3; tick++ {
		require.NoError(t, j.Append(ctx, id, sampleSnapshot(tick)))
	}

	var buf bytes.Buffer
	require.NoError(t, j.Export(ctx, &buf, id))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 3)

	var row map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &row))
	assert.Equal(t, id, row["session_id"])
	assert.Equal(t, float64(1), row["tick"])
	assert.Equal(t, 0.62, row["pulse"])
	assert.Equal(t, "none", row["reason"])
	assert.Contains(t, row, "acts_of_awareness_total")

	var last map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[2]), &last))
	assert.Equal(t, float64(3), last["tick"], "rows are in tick order")
}

func TestJournal_Export_DefaultsToLatestSession(t *testing.T) {
	j := openTestJournal(t)
	ctx := context.Background()

	first, err := j.BeginSession(ctx, "aura", journalTestBase)
	require.NoError(t, err)
	require.NoError(t, j.Append(ctx, first, sampleSnapshot(1)))

	second, err := j.BeginSession(ctx, "orion", journalTestBase.Add(time.Minute))
	require.NoError(t, err)
	require.NoError(t, j.Append(ctx, second, sampleSnapshot(7)))

	var buf bytes.Buffer
	require.NoError(t, j.Export(ctx, &buf, ""))

	var row map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &row))
	assert.Equal(t, second, row["session_id"])
	assert.Equal(t, float64(7), row["tick"])
}

func TestJournal_Export_UnknownSession(t *testing.T) {
	j := openTestJournal(t)

	var buf bytes.Buffer
	err := j.Export(context.Background(), &buf, "ffffffff-ffff-7fff-bfff-ffffffffffff")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSessionNotFound)
	assert.Contains(t, err.Error(), "not found")
}

func TestJournal_Export_EmptyJournal(t *testing.T) {
	j := openTestJournal(t)

	var buf bytes.Buffer
	err := j.Export(context.Background(), &buf, "")
	require.Error(t, err, "no sessions to export")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}
