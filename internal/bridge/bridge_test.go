package bridge

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/enginebridge/internal/engine"
	"github.com/roach88/enginebridge/internal/engine/echo"
	"github.com/roach88/enginebridge/internal/testutil"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// startBridge installs and starts a bridge that closes its reply queue when
// the engine stops, so tests never block forever on a missing reply.
func startBridge(t *testing.T, interp engine.Interpreter, opts ...Option) *Bridge {
	t.Helper()

	opts = append([]Option{WithLogger(quietLogger()), WithCloseOnExit(true)}, opts...)
	b := New(interp, opts...)
	require.NoError(t, b.Init())
	require.NoError(t, b.Start(context.Background()))

	t.Cleanup(func() {
		b.Shutdown()
		select {
		case <-b.Done():
		case <-time.After(2 * time.Second):
			t.Error("engine goroutine did not stop")
		}
	})
	return b
}

func fetch(t *testing.T, b *Bridge) string {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	line, err := b.FetchReplyContext(ctx)
	require.NoError(t, err)
	return line
}

func TestBridge_RepliesInSubmissionOrder(t *testing.T) {
	b := startBridge(t, echo.New())

	for _, cmd := range []string{"position startpos", "go depth 1", "isready"} {
		require.NoError(t, b.Submit(cmd))
	}

	assert.Equal(t, "position startpos\n", fetch(t, b))
	assert.Equal(t, "go depth 1\n", fetch(t, b))
	assert.Equal(t, "isready\n", fetch(t, b))
}

func TestBridge_EmptyCommandIsALine(t *testing.T) {
	b := startBridge(t, echo.New())

	require.NoError(t, b.Submit(""))
	assert.Equal(t, "\n", fetch(t, b))
}

func TestBridge_SubmitStripsOneTerminator(t *testing.T) {
	b := startBridge(t, echo.New())

	require.NoError(t, b.Submit("lf\n"))
	require.NoError(t, b.Submit("crlf\r\n"))
	require.NoError(t, b.Submit("double\n\n"))

	assert.Equal(t, "lf\n", fetch(t, b))
	assert.Equal(t, "crlf\n", fetch(t, b))
	// Only the framing newline is removed; the remaining one is an
	// embedded terminator the engine sees as a second, empty command.
	assert.Equal(t, "double\n", fetch(t, b))
	assert.Equal(t, "\n", fetch(t, b))
}

func TestBridge_PartialWritesRegroupedIntoLines(t *testing.T) {
	eng := testutil.NewScriptedEngine(map[string][]string{
		"go": {"a", "b", "c", "\n", "d"},
	})
	b := startBridge(t, eng)

	require.NoError(t, b.Submit("go"))
	assert.Equal(t, "abc\n", fetch(t, b))

	_, replies := b.Backlog()
	assert.Equal(t, 0, replies)
}

func TestBridge_ConcurrentFetchersEachGetOneLine(t *testing.T) {
	eng := testutil.NewScriptedEngine(map[string][]string{
		"two": {"L1\nL2\n"},
	})
	b := startBridge(t, eng)

	var (
		wg  sync.WaitGroup
		mu  sync.Mutex
		got []string
	)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			line, err := b.FetchReply()
			if err != nil {
				return
			}
			mu.Lock()
			got = append(got, line)
			mu.Unlock()
		}()
	}

	require.NoError(t, b.Submit("two"))
	wg.Wait()

	sort.Strings(got)
	assert.Equal(t, []string{"L1\n", "L2\n"}, got)
}

func TestBridge_InitRunsOnce(t *testing.T) {
	eng := testutil.NewScriptedEngine(map[string][]string{"ping": {"pong\n"}})
	b := New(eng, WithLogger(quietLogger()), WithCloseOnExit(true))

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, b.Init())
		}()
	}
	wg.Wait()
	require.NoError(t, b.Init())
	assert.Equal(t, 1, eng.Inits())

	require.NoError(t, b.Start(context.Background()))
	require.NoError(t, b.Submit("ping"))
	require.NoError(t, b.Submit("quit"))

	assert.Equal(t, "pong\n", fetch(t, b))
	_, err := b.FetchReply()
	assert.True(t, IsClosed(err), "expected exactly one reply, got err=%v", err)
}

func TestBridge_AccessorsBeforeInit(t *testing.T) {
	b := New(echo.New(), WithLogger(quietLogger()))

	err := b.Submit("uci")
	assert.True(t, IsNotInstalled(err))

	_, err = b.FetchReply()
	assert.True(t, IsNotInstalled(err))

	err = b.Start(context.Background())
	assert.ErrorIs(t, err, ErrNotInstalled)

	var be *BridgeError
	require.ErrorAs(t, err, &be)
	assert.Equal(t, "start", be.Op)
	assert.Equal(t, StateUninitialized, be.State)

	// Rejected submissions leave no trace in the queue.
	require.NoError(t, b.Init())
	commands, _ := b.Backlog()
	assert.Equal(t, 0, commands)
}

func TestBridge_StartTwice(t *testing.T) {
	b := startBridge(t, echo.New())

	assert.ErrorIs(t, b.Start(context.Background()), ErrAlreadyStarted)
	assert.ErrorIs(t, b.Run(context.Background()), ErrAlreadyStarted)
	assert.Equal(t, StateRunning, b.State())
}

func TestBridge_InitFailure(t *testing.T) {
	eng := testutil.NewScriptedEngine(nil)
	eng.InitErr = errors.New("no tablebases")
	b := New(eng, WithLogger(quietLogger()))

	err := b.Init()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no tablebases")
	assert.Equal(t, StateTerminated, b.State())

	// Same outcome every time, and no second attempt.
	assert.Equal(t, err, b.Init())
	assert.Equal(t, 1, eng.Inits())

	assert.Equal(t, err, b.Start(context.Background()))
	assert.Equal(t, err, b.Wait())
}

func TestBridge_QuitTerminates(t *testing.T) {
	b := startBridge(t, echo.New())

	require.NoError(t, b.Submit("quit"))
	require.NoError(t, b.Wait())
	assert.Equal(t, StateTerminated, b.State())

	assert.ErrorIs(t, b.Submit("uci"), ErrTerminated)
	_, err := b.FetchReply()
	assert.True(t, IsClosed(err))
}

func TestBridge_ContextCancelStopsEngine(t *testing.T) {
	b := New(echo.New(), WithLogger(quietLogger()))
	require.NoError(t, b.Init())

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, b.Start(ctx))
	cancel()

	select {
	case <-b.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("engine did not stop after cancel")
	}
	assert.NoError(t, b.Wait())
	assert.Equal(t, StateTerminated, b.State())
}

func TestBridge_ShutdownDrainsQueuedCommands(t *testing.T) {
	b := startBridge(t, echo.New())

	require.NoError(t, b.Submit("one"))
	require.NoError(t, b.Submit("two"))
	b.Shutdown()

	// Rejected either by the closed queue or, if the engine already hit
	// end of input, by the terminated state.
	err := b.Submit("three")
	assert.True(t, IsClosed(err) || errors.Is(err, ErrTerminated), "got %v", err)
	assert.Equal(t, "one\n", fetch(t, b))
	assert.Equal(t, "two\n", fetch(t, b))

	_, err = b.FetchReply()
	assert.True(t, IsClosed(err))
}

func TestBridge_TrailingPartialLine(t *testing.T) {
	script := map[string][]string{"go": {"complete\npartial"}}

	t.Run("discarded by default", func(t *testing.T) {
		b := startBridge(t, testutil.NewScriptedEngine(script))
		require.NoError(t, b.Submit("go"))
		require.NoError(t, b.Submit("quit"))

		assert.Equal(t, "complete\n", fetch(t, b))
		_, err := b.FetchReply()
		assert.True(t, IsClosed(err))
	})

	t.Run("flushed on exit", func(t *testing.T) {
		b := startBridge(t, testutil.NewScriptedEngine(script), WithFlushOnExit(true))
		require.NoError(t, b.Submit("go"))
		require.NoError(t, b.Submit("quit"))

		assert.Equal(t, "complete\n", fetch(t, b))
		assert.Equal(t, "partial\n", fetch(t, b))
	})
}

func TestBridge_EngineErrorBecomesReply(t *testing.T) {
	b := startBridge(t, testutil.NewScriptedEngine(nil))

	require.NoError(t, b.Submit("fail"))
	assert.Equal(t, "info string error: scripted failure\n", fetch(t, b))
	assert.Equal(t, StateRunning, b.State())
}

func TestBridge_TransferCapacity(t *testing.T) {
	b := startBridge(t, echo.New(), WithTransferCapacity(4))
	assert.Equal(t, 4, b.Capacity())

	require.NoError(t, b.Submit("abcdef"))
	require.NoError(t, b.Submit("xyz"))

	assert.Equal(t, "abc\n", fetch(t, b))
	assert.Equal(t, "xyz\n", fetch(t, b))
}

func TestBridge_CapacityClamped(t *testing.T) {
	assert.Equal(t, DefaultTransferCapacity, New(echo.New(), WithTransferCapacity(0)).Capacity())
	assert.Equal(t, 2, New(echo.New(), WithTransferCapacity(1)).Capacity())
}

type recordingObserver struct {
	mu       sync.Mutex
	commands []string
	replies  []string
}

func (o *recordingObserver) ObserveCommand(line string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.commands = append(o.commands, line)
}

func (o *recordingObserver) ObserveReply(line string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.replies = append(o.replies, line)
}

func TestBridge_ObserverSeesTraffic(t *testing.T) {
	obs := &recordingObserver{}
	b := startBridge(t, echo.New(), WithObserver(obs), WithTransferCapacity(3))

	require.NoError(t, b.Submit("hello\n"))
	assert.Equal(t, "he\n", fetch(t, b))

	obs.mu.Lock()
	defer obs.mu.Unlock()
	assert.Equal(t, []string{"hello"}, obs.commands)
	// Replies are observed before truncation.
	assert.Equal(t, []string{"hello"}, obs.replies)
}

func TestBridge_RunBlocksUntilQuit(t *testing.T) {
	b := New(echo.New(), WithLogger(quietLogger()), WithCloseOnExit(true))
	require.NoError(t, b.Init())

	errc := make(chan error, 1)
	go func() { errc <- b.Run(context.Background()) }()

	require.NoError(t, b.Submit("hi"))
	assert.Equal(t, "hi\n", fetch(t, b))
	require.NoError(t, b.Submit("quit"))

	select {
	case err := <-errc:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after quit")
	}
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "uninitialized", StateUninitialized.String())
	assert.Equal(t, "running", StateRunning.String())
	assert.Equal(t, "unknown", State(42).String())
}
