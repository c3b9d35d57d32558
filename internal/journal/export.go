package journal

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
)

// Export writes a session's ticks to w as JSON Lines, one snapshot per line
// in tick order. An empty sessionID exports the most recently created
// session.
func (j *Journal) Export(ctx context.Context, w io.Writer, sessionID string) error {
	if sessionID == "" {
		latest, err := j.LatestSessionID(ctx)
		if err != nil {
			return fmt.Errorf("export: %w", err)
		}
		sessionID = latest
	}

	var exists bool
	err := j.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM sessions WHERE id = ?)`, sessionID,
	).Scan(&exists)
	if err != nil {
		return fmt.Errorf("export: %w", err)
	}
	if !exists {
		return fmt.Errorf("export: session %q: %w", sessionID, ErrSessionNotFound)
	}

	records, err := j.Ticks(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("export: %w", err)
	}

	enc := json.NewEncoder(w)
	for _, rec := range records {
		if err := enc.Encode(rec); err != nil {
			return fmt.Errorf("export: encode tick %d: %w", rec.Tick, err)
		}
	}
	return nil
}
