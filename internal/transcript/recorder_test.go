package transcript_test

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/enginebridge/internal/testutil"
	"github.com/roach88/enginebridge/internal/transcript"
)

func TestRecorder_RecordsBothDirections(t *testing.T) {
	ctx := context.Background()
	st, err := transcript.Open(filepath.Join(t.TempDir(), "t.db"))
	require.NoError(t, err)
	defer st.Close()

	rec, err := transcript.NewRecorder(ctx, st, "uci", testutil.NewFixedIDGenerator("session-1"))
	require.NoError(t, err)
	assert.Equal(t, transcript.Session{ID: "session-1", Engine: "uci", CreatedSeq: 1}, rec.Session())

	rec.ObserveCommand("uci")
	rec.ObserveReply("uciok")
	rec.ObserveCommand("")

	lines, err := st.ReadLines(ctx, "session-1")
	require.NoError(t, err)
	assert.Equal(t, []transcript.Line{
		{SessionID: "session-1", Seq: 2, Direction: transcript.DirectionIn, Text: "uci"},
		{SessionID: "session-1", Seq: 3, Direction: transcript.DirectionOut, Text: "uciok"},
		{SessionID: "session-1", Seq: 4, Direction: transcript.DirectionIn, Text: ""},
	}, lines)
}

func TestRecorder_ResumesSeqAcrossSessions(t *testing.T) {
	ctx := context.Background()
	st, err := transcript.Open(filepath.Join(t.TempDir(), "t.db"))
	require.NoError(t, err)
	defer st.Close()

	ids := testutil.NewFixedIDGenerator("first", "second")

	first, err := transcript.NewRecorder(ctx, st, "echo", ids)
	require.NoError(t, err)
	first.ObserveCommand("a")
	first.ObserveReply("a")

	second, err := transcript.NewRecorder(ctx, st, "echo", ids)
	require.NoError(t, err)
	assert.Equal(t, int64(4), second.Session().CreatedSeq)

	sessions, err := st.ListSessions(ctx)
	require.NoError(t, err)
	require.Len(t, sessions, 2)
	assert.Equal(t, "first", sessions[0].ID)
	assert.Equal(t, "second", sessions[1].ID)
}

func TestRecorder_ConcurrentObservers(t *testing.T) {
	ctx := context.Background()
	st, err := transcript.Open(filepath.Join(t.TempDir(), "t.db"))
	require.NoError(t, err)
	defer st.Close()

	rec, err := transcript.NewRecorder(ctx, st, "echo", nil)
	require.NoError(t, err)

	const n = 50
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < n; i++ {
			rec.ObserveCommand("cmd")
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < n; i++ {
			rec.ObserveReply("reply")
		}
	}()
	wg.Wait()

	lines, err := st.ReadLines(ctx, rec.Session().ID)
	require.NoError(t, err)
	assert.Len(t, lines, 2*n)
	for i := 1; i < len(lines); i++ {
		assert.Greater(t, lines[i].Seq, lines[i-1].Seq)
	}
}

func TestUUIDv7Generator(t *testing.T) {
	g := transcript.UUIDv7Generator{}
	a, b := g.Generate(), g.Generate()
	assert.Len(t, a, 36)
	assert.NotEqual(t, a, b)
}

func TestClock(t *testing.T) {
	c := transcript.NewClockAt(10)
	assert.Equal(t, int64(11), c.Next())
	assert.Equal(t, int64(11), c.Current())
	assert.Equal(t, int64(1), transcript.NewClock().Next())
}
