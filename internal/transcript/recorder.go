package transcript

import (
	"context"
	"log/slog"
)

// Recorder writes bridge traffic into a Store. It implements the bridge's
// Observer hook: ObserveCommand and ObserveReply may be called from
// different goroutines.
//
// Write failures are logged, not returned; a broken transcript must not
// stall the bridge.
type Recorder struct {
	store   *Store
	session Session
	clock   *Clock
	logger  *slog.Logger
}

// NewRecorder starts a new session for engineName. The clock resumes after
// the highest seq already in the store, keeping seq unique store-wide.
func NewRecorder(ctx context.Context, st *Store, engineName string, ids IDGenerator) (*Recorder, error) {
	if ids == nil {
		ids = UUIDv7Generator{}
	}

	start, err := st.MaxSeq(ctx)
	if err != nil {
		return nil, err
	}
	clock := NewClockAt(start)

	sess := Session{
		ID:         ids.Generate(),
		Engine:     engineName,
		CreatedSeq: clock.Next(),
	}
	if err := st.WriteSession(ctx, sess); err != nil {
		return nil, err
	}

	slog.Debug("transcript session started", "session", sess.ID, "engine", engineName)

	return &Recorder{
		store:   st,
		session: sess,
		clock:   clock,
		logger:  slog.Default(),
	}, nil
}

// Session returns the session being recorded.
func (r *Recorder) Session() Session {
	return r.session
}

// ObserveCommand records a submitted command.
func (r *Recorder) ObserveCommand(line string) {
	r.record(DirectionIn, line)
}

// ObserveReply records a fetched reply.
func (r *Recorder) ObserveReply(line string) {
	r.record(DirectionOut, line)
}

func (r *Recorder) record(dir Direction, text string) {
	line := Line{
		SessionID: r.session.ID,
		Seq:       r.clock.Next(),
		Direction: dir,
		Text:      text,
	}
	if err := r.store.WriteLine(context.Background(), line); err != nil {
		r.logger.Error("transcript write failed",
			"session", r.session.ID,
			"seq", line.Seq,
			"direction", string(dir),
			"error", err,
		)
	}
}
