package journal

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/oklog/ulid/v2"

	"github.com/roach88/limbic/internal/core"
)

// ErrSessionNotFound reports a session id with no row in the journal, or a
// latest-session lookup on a journal with no sessions at all. Callers branch
// on it with errors.Is.
var ErrSessionNotFound = errors.New("session not found")

//go:embed schema.sql
var schemaSQL string

// Schema version tracking:
// 1 - Initial schema (sessions + ticks)
const currentSchemaVersion = 1

// Journal stores sessions and tick snapshots in SQLite.
//
// Thread-safety: safe for concurrent use. database/sql serializes access to
// the single connection, and id generation is guarded by a mutex.
type Journal struct {
	db *sql.DB

	mu      sync.Mutex // guards entropy
	entropy *rand.Rand
}

// Session describes one recorded engine run.
type Session struct {
	ID        string
	Profile   string
	StartedAt time.Time
	Ticks     int
}

// Record is one exported tick row: the snapshot plus its row and session ids.
type Record struct {
	ID        string `json:"id"`
	SessionID string `json:"session_id"`
	core.Snapshot
}

// Open creates or opens a journal database at the given path. Applies
// required pragmas and the schema automatically; safe to call on an existing
// database.
//
// The database is configured with:
//   - WAL mode for concurrent reads during writes
//   - NORMAL synchronous mode
//   - 5-second busy timeout for lock contention
//   - Foreign key enforcement
func Open(path string) (*Journal, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect to journal: %w", err)
	}

	// SQLite only supports one writer at a time, so limit connections.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply pragmas: %w", err)
	}
	if err := applySchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &Journal{
		db:      db,
		entropy: rand.New(rand.NewSource(time.Now().UnixNano())),
	}, nil
}

// Close closes the database connection.
func (j *Journal) Close() error {
	if j.db == nil {
		return nil
	}
	return j.db.Close()
}

func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}
	return nil
}

func applySchema(db *sql.DB) error {
	if _, err := db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}
	if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentSchemaVersion)); err != nil {
		return fmt.Errorf("set user_version: %w", err)
	}
	return nil
}

// BeginSession creates a session row and returns its id.
func (j *Journal) BeginSession(ctx context.Context, profileName string, startedAt time.Time) (string, error) {
	id := uuid.Must(uuid.NewV7()).String()
	_, err := j.db.ExecContext(ctx, `
		INSERT INTO sessions (id, profile, started_at)
		VALUES (?, ?, ?)
	`, id, profileName, startedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return "", fmt.Errorf("begin session: %w", err)
	}
	return id, nil
}

// Append records one snapshot under a session. Appending the same tick twice
// is a no-op, so a crashed run can be replayed safely.
func (j *Journal) Append(ctx context.Context, sessionID string, s core.Snapshot) error {
	_, err := j.db.ExecContext(ctx, `
		INSERT INTO ticks
		(id, session_id, tick, time, pulse, attention_level, echo_count,
		 internal_state, external_signal, total_state, direction, delta,
		 irregular_rhythm, act_of_awareness, reason, acts_of_awareness_total)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(session_id, tick) DO NOTHING
	`,
		j.newTickID(s.Time),
		sessionID,
		int64(s.Tick),
		s.Time.UTC().Format(time.RFC3339Nano),
		s.Pulse,
		s.AttentionLevel,
		s.EchoCount,
		s.InternalState,
		s.ExternalSignal,
		s.TotalState,
		s.Direction,
		s.Delta,
		s.IrregularRhythm,
		s.ActOfAwareness,
		string(s.Reason),
		int64(s.ActsOfAwarenessTotal),
	)
	if err != nil {
		return fmt.Errorf("append tick: %w", err)
	}
	return nil
}

// Sessions lists all recorded sessions in creation order with their tick
// counts.
func (j *Journal) Sessions(ctx context.Context) ([]Session, error) {
	rows, err := j.db.QueryContext(ctx, `
		SELECT s.id, s.profile, s.started_at, COUNT(t.id)
		FROM sessions s
		LEFT JOIN ticks t ON t.session_id = s.id
		GROUP BY s.id
		ORDER BY s.id
	`)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []Session
	for rows.Next() {
		var (
			sess      Session
			startedAt string
		)
		if err := rows.Scan(&sess.ID, &sess.Profile, &startedAt, &sess.Ticks); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		sess.StartedAt, err = time.Parse(time.RFC3339Nano, startedAt)
		if err != nil {
			return nil, fmt.Errorf("parse session start time: %w", err)
		}
		sessions = append(sessions, sess)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	return sessions, nil
}

// LatestSessionID returns the id of the most recently created session.
// Returns ErrSessionNotFound wrapped when the journal is empty.
func (j *Journal) LatestSessionID(ctx context.Context) (string, error) {
	var id string
	err := j.db.QueryRowContext(ctx, `
		SELECT id FROM sessions ORDER BY id DESC LIMIT 1
	`).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("latest session: %w", ErrSessionNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("latest session: %w", err)
	}
	return id, nil
}

// Ticks returns every recorded snapshot of a session in tick order.
func (j *Journal) Ticks(ctx context.Context, sessionID string) ([]Record, error) {
	rows, err := j.db.QueryContext(ctx, `
		SELECT id, session_id, tick, time, pulse, attention_level, echo_count,
		       internal_state, external_signal, total_state, direction, delta,
		       irregular_rhythm, act_of_awareness, reason, acts_of_awareness_total
		FROM ticks
		WHERE session_id = ?
		ORDER BY tick
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("read ticks: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read ticks: %w", err)
	}
	return records, nil
}

func scanRecord(rows *sql.Rows) (Record, error) {
	var (
		rec       Record
		tick      int64
		tickTime  string
		reason    string
		actsTotal int64
	)
	err := rows.Scan(
		&rec.ID,
		&rec.SessionID,
		&tick,
		&tickTime,
		&rec.Pulse,
		&rec.AttentionLevel,
		&rec.EchoCount,
		&rec.InternalState,
		&rec.ExternalSignal,
		&rec.TotalState,
		&rec.Direction,
		&rec.Delta,
		&rec.IrregularRhythm,
		&rec.ActOfAwareness,
		&reason,
		&actsTotal,
	)
	if err != nil {
		return Record{}, fmt.Errorf("scan tick: %w", err)
	}

	rec.Tick = uint64(tick)
	rec.Reason = core.Reason(reason)
	rec.ActsOfAwarenessTotal = uint64(actsTotal)
	rec.Time, err = time.Parse(time.RFC3339Nano, tickTime)
	if err != nil {
		return Record{}, fmt.Errorf("parse tick time: %w", err)
	}
	return rec, nil
}

func (j *Journal) newTickID(at time.Time) string {
	j.mu.Lock()
	defer j.mu.Unlock()
	return ulid.MustNew(ulid.Timestamp(at), j.entropy).String()
}
