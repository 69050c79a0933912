package transcript

import (
	"context"
	"fmt"
)

// WriteSession inserts a session record. Writing the same ID twice is a
// no-op.
func (s *Store) WriteSession(ctx context.Context, sess Session) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sessions (id, engine, created_seq)
		VALUES (?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`, sess.ID, sess.Engine, sess.CreatedSeq)
	if err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	return nil
}

// WriteLine appends a line to its session. The session must exist
// (foreign key). A duplicate (session, seq) is silently ignored.
func (s *Store) WriteLine(ctx context.Context, line Line) error {
	if line.Direction != DirectionIn && line.Direction != DirectionOut {
		return fmt.Errorf("write line: invalid direction %q", line.Direction)
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO lines (session_id, seq, direction, text)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(session_id, seq) DO NOTHING
	`, line.SessionID, line.Seq, string(line.Direction), line.Text)
	if err != nil {
		return fmt.Errorf("write line: %w", err)
	}
	return nil
}
