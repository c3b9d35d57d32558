package journal

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/limbic/internal/core"
)

var journalTestBase = time.Date(2025, 3, 10, 9, 30, 0, 0, time.UTC)

func openTestJournal(t *testing.T) *Journal {
	t.Helper()
	j, err := Open(filepath.Join(t.TempDir(), "journal.db"))
	require.NoError(t, err)
	t.Cleanup(func() { j.Close() })
	return j
}

func sampleSnapshot(tick uint64) core.Snapshot {
	return core.Snapshot{
		Tick:            tick,
		Time:            journalTestBase.Add(time.Duration(tick) * time.Second),
		Pulse:           0.62,
		AttentionLevel:  0.4,
		EchoCount:       2,
		InternalState:   -0.31,
		ExternalSignal:  1.0,
		TotalState:      0.69,
		Direction:       0.12,
		Delta:           0.4,
		IrregularRhythm: true,
		Reason:          core.ReasonNone,
	}
}

func TestOpen_AppliesPragmasAndSchema(t *testing.T) {
	j := openTestJournal(t)

	var mode string
	require.NoError(t, j.db.QueryRow("PRAGMA journal_mode").Scan(&mode))
	assert.Equal(t, "wal", mode)

	var fk int
	require.NoError(t, j.db.QueryRow("PRAGMA foreign_keys").Scan(&fk))
	assert.Equal(t, 1, fk)

	var version int
	require.NoError(t, j.db.QueryRow("PRAGMA user_version").Scan(&version))
	assert.Equal(t, currentSchemaVersion, version)
}

func TestOpen_IsIdempotent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "journal.db")
	ctx := context.Background()

	j1, err := Open(path)
	require.NoError(t, err)
	id, err := j1.BeginSession(ctx, "aura", journalTestBase)
	require.NoError(t, err)
	require.NoError(t, j1.Append(ctx, id, sampleSnapshot(1)))
	require.NoError(t, j1.Close())

	j2, err := Open(path)
	require.NoError(t, err)
	defer j2.Close()

	sessions, err := j2.Sessions(ctx)
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, 1, sessions[0].Ticks, "data survives reopening")
}

func TestJournal_BeginSession_IDIsUUIDv7(t *testing.T) {
	j := openTestJournal(t)

	id, err := j.BeginSession(context.Background(), "orion", journalTestBase)
	require.NoError(t, err)

	parsed, err := uuid.Parse(id)
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(7), parsed.Version())
}

func TestJournal_AppendAndTicks_Roundtrip(t *testing.T) {
	j := openTestJournal(t)
	ctx := context.Background()

	id, err := j.BeginSession(ctx, "aura", journalTestBase)
	require.NoError(t, err)

	want := sampleSnapshot(1)
	want.ActOfAwareness = true
	want.Reason = core.ReasonSpontaneous
	want.ActsOfAwarenessTotal = 1

	require.NoError(t, j.Append(ctx, id, want))
	require.NoError(t, j.Append(ctx, id, sampleSnapshot(2)))
	require.NoError(t, j.Append(ctx, id, sampleSnapshot(3)))

	records, err := j.Ticks(ctx, id)
	require.NoError(t, err)
	require.Len(t, records, 3)

	got := records[0]
	assert.Equal(t, id, got.SessionID)
	assert.Equal(t, uint64(1), got.Tick)
	assert.True(t, got.Time.Equal(want.Time), "tick time must roundtrip")
	assert.Equal(t, want.Pulse, got.Pulse)
	assert.Equal(t, want.AttentionLevel, got.AttentionLevel)
	assert.Equal(t, want.EchoCount, got.EchoCount)
	assert.Equal(t, want.InternalState, got.InternalState)
	assert.Equal(t, want.ExternalSignal, got.ExternalSignal)
	assert.Equal(t, want.TotalState, got.TotalState)
	assert.Equal(t, want.Direction, got.Direction)
	assert.Equal(t, want.Delta, got.Delta)
	assert.True(t, got.IrregularRhythm)
	assert.True(t, got.ActOfAwareness)
	assert.Equal(t, core.ReasonSpontaneous, got.Reason)
	assert.Equal(t, uint64(1), got.ActsOfAwarenessTotal)

	_, err = ulid.Parse(got.ID)
	assert.NoError(t, err, "tick row ids are ULIDs")
}

func TestJournal_Append_DuplicateTickIsNoOp(t *testing.T) {
	j := openTestJournal(t)
	ctx := context.Background()

	id, err := j.BeginSession(ctx, "aura", journalTestBase)
	require.NoError(t, err)

	require.NoError(t, j.Append(ctx, id, sampleSnapshot(1)))
	require.NoError(t, j.Append(ctx, id, sampleSnapshot(1)), "replayed append must not error")

	records, err := j.Ticks(ctx, id)
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestJournal_Append_UnknownSessionFails(t *testing.T) {
	j := openTestJournal(t)

	err := j.Append(context.Background(), "no-such-session", sampleSnapshot(1))
	require.Error(t, err, "foreign key enforcement rejects orphan ticks")
}

func TestJournal_Sessions_OrderAndCounts(t *testing.T) {
	j := openTestJournal(t)
	ctx := context.Background()

	first, err := j.BeginSession(ctx, "aura", journalTestBase)
	require.NoError(t, err)
	second, err := j.BeginSession(ctx, "orion", journalTestBase.Add(time.Minute))
	require.NoError(t, err)

	require.NoError(t, j.Append(ctx, first, sampleSnapshot(1)))
	require.NoError(t, j.Append(ctx, first, sampleSnapshot(2)))
	require.NoError(t, j.Append(ctx, second, sampleSnapshot(1)))

	sessions, err := j.Sessions(ctx)
	require.NoError(t, err)
	require.Len(t, sessions, 2)

	assert.Equal(t, first, sessions[0].ID, "UUIDv7 ids sort by creation time")
	assert.Equal(t, "aura", sessions[0].Profile)
	assert.Equal(t, 2, sessions[0].Ticks)
	assert.True(t, sessions[0].StartedAt.Equal(journalTestBase))

	assert.Equal(t, second, sessions[1].ID)
	assert.Equal(t, "orion", sessions[1].Profile)
	assert.Equal(t, 1, sessions[1].Ticks)
}

func TestJournal_LatestSessionID(t *testing.T) {
	j := openTestJournal(t)
	ctx := context.Background()

	_, err := j.LatestSessionID(ctx)
	require.Error(t, err, "empty journal has no latest session")
	assert.ErrorIs(t, err, ErrSessionNotFound)

	_, err = j.BeginSession(ctx, "aura", journalTestBase)
	require.NoError(t, err)
	second, err := j.BeginSession(ctx, "orion", journalTestBase.Add(time.Minute))
	require.NoError(t, err)

	latest, err := j.LatestSessionID(ctx)
	require.NoError(t, err)
	assert.Equal(t, second, latest)
}
