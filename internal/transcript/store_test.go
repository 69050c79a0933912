package transcript

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	st, err := Open(filepath.Join(t.TempDir(), "transcript.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return st
}

func TestOpen_Pragmas(t *testing.T) {
	st := openTestStore(t)

	for name, want := range map[string]string{
		"journal_mode": "wal",
		"synchronous":  "1",
		"foreign_keys": "1",
		"busy_timeout": "5000",
		"user_version": "1",
	} {
		got, err := st.pragma(name)
		require.NoError(t, err)
		assert.Equal(t, want, got, name)
	}
}

func TestOpen_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "transcript.db")
	ctx := context.Background()

	st, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, st.WriteSession(ctx, Session{ID: "s1", Engine: "uci", CreatedSeq: 1}))
	require.NoError(t, st.Close())

	st, err = Open(path)
	require.NoError(t, err)
	defer st.Close()

	sess, err := st.ReadSession(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "uci", sess.Engine)
}

func TestSessionsAndLines(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, st.WriteSession(ctx, Session{ID: "b", Engine: "echo", CreatedSeq: 5}))
	require.NoError(t, st.WriteSession(ctx, Session{ID: "a", Engine: "uci", CreatedSeq: 1}))
	require.NoError(t, st.WriteSession(ctx, Session{ID: "a", Engine: "ignored", CreatedSeq: 9}))

	sessions, err := st.ListSessions(ctx)
	require.NoError(t, err)
	assert.Equal(t, []Session{
		{ID: "a", Engine: "uci", CreatedSeq: 1},
		{ID: "b", Engine: "echo", CreatedSeq: 5},
	}, sessions)

	require.NoError(t, st.WriteLine(ctx, Line{SessionID: "a", Seq: 3, Direction: DirectionOut, Text: "uciok"}))
	require.NoError(t, st.WriteLine(ctx, Line{SessionID: "a", Seq: 2, Direction: DirectionIn, Text: "uci"}))
	require.NoError(t, st.WriteLine(ctx, Line{SessionID: "a", Seq: 2, Direction: DirectionIn, Text: "dup"}))
	require.NoError(t, st.WriteLine(ctx, Line{SessionID: "a", Seq: 4, Direction: DirectionIn, Text: ""}))

	lines, err := st.ReadLines(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, []Line{
		{SessionID: "a", Seq: 2, Direction: DirectionIn, Text: "uci"},
		{SessionID: "a", Seq: 3, Direction: DirectionOut, Text: "uciok"},
		{SessionID: "a", Seq: 4, Direction: DirectionIn, Text: ""},
	}, lines)

	max, err := st.MaxSeq(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(5), max)
}

func TestWriteLine_Rejects(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	err := st.WriteLine(ctx, Line{SessionID: "nope", Seq: 1, Direction: DirectionIn, Text: "x"})
	assert.Error(t, err, "foreign key must reject lines without a session")

	require.NoError(t, st.WriteSession(ctx, Session{ID: "s", Engine: "echo", CreatedSeq: 1}))
	err = st.WriteLine(ctx, Line{SessionID: "s", Seq: 2, Direction: "sideways", Text: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid direction")
}

func TestReadSession_NotFound(t *testing.T) {
	st := openTestStore(t)

	_, err := st.ReadSession(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrSessionNotFound)

	_, err = st.ReadLines(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestMaxSeq_Empty(t *testing.T) {
	st := openTestStore(t)

	max, err := st.MaxSeq(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(0), max)
}
