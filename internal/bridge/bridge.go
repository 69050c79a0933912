package bridge

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/roach88/enginebridge/internal/engine"
)

// Bridge runs a blocking line-protocol engine on its own goroutine and
// exposes it to callers through two line queues.
//
//	caller -> Submit -> commands -> inputShim -> engine loop
//	       <- FetchReply <- replies <- outputShim <-
//
// Thread-safety model:
//   - Submit, FetchReply, FetchReplyContext: safe from any goroutine
//   - Init: safe from any goroutine; the install step runs exactly once
//   - Start/Run: the first call wins, later calls get ErrAlreadyStarted
//
// The engine goroutine is the only reader of the input shim and the only
// writer of the output shim. The queues are the only shared mutable state.
type Bridge struct {
	interp engine.Interpreter
	logger *slog.Logger

	capacity    int
	flushOnExit bool
	closeOnExit bool
	observer    Observer

	commands *lineQueue
	replies  *lineQueue
	in       *inputShim
	out      *outputShim

	state   stateMachine
	once    sync.Once
	initErr error

	// Task handle for the engine goroutine.
	done    chan struct{}
	loopErr error
}

// New creates an uninstalled Bridge around interp.
//
// Passing a nil interpreter panics to surface wiring bugs immediately.
func New(interp engine.Interpreter, opts ...Option) *Bridge {
	if interp == nil {
		panic("bridge: interpreter must not be nil")
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.logger == nil {
		cfg.logger = slog.Default()
	}
	if cfg.capacity <= 0 {
		cfg.capacity = DefaultTransferCapacity
	}
	if cfg.capacity < minTransferCapacity {
		cfg.capacity = minTransferCapacity
	}

	return &Bridge{
		interp:      interp,
		logger:      cfg.logger,
		capacity:    cfg.capacity,
		flushOnExit: cfg.flushOnExit,
		closeOnExit: cfg.closeOnExit,
		observer:    cfg.observer,
		commands:    newLineQueue(),
		replies:     newLineQueue(),
		done:        make(chan struct{}),
	}
}

// Init installs the queue-backed shims in place of the engine's streams and
// runs the engine's own initialisation.
//
// The install step executes at most once. Concurrent callers block until it
// has finished; every call returns the outcome of that single execution.
func (b *Bridge) Init() error {
	b.once.Do(b.install)
	return b.initErr
}

func (b *Bridge) install() {
	if !b.state.Transition(StateUninitialized, StateInstalling) {
		return
	}

	b.logger.Info("bridge installing", "engine", b.interp.Name())

	b.in = newInputShim(b.commands)
	b.out = newOutputShim(b.replies)

	if err := b.interp.Init(); err != nil {
		b.logger.Error("engine init failed", "engine", b.interp.Name(), "error", err)
		b.initErr = newBridgeError("init", StateInstalling, err)
		b.state.Store(StateTerminated)
		close(b.done)
		return
	}

	b.state.Store(StateReady)
	b.logger.Info("bridge installed", "engine", b.interp.Name())
}

// Start launches the engine loop on a new goroutine and returns immediately.
// Use Done or Wait to observe termination.
//
// Cancelling ctx closes the command queue; the engine then sees end of input
// and its loop returns. With a context that is never cancelled the engine
// runs until it processes its own quit command.
func (b *Bridge) Start(ctx context.Context) error {
	if err := b.begin("start"); err != nil {
		return err
	}
	go b.loop(ctx)
	return nil
}

// Run is the blocking form of Start: it runs the engine loop on the calling
// goroutine and returns when the loop does.
func (b *Bridge) Run(ctx context.Context) error {
	if err := b.begin("run"); err != nil {
		return err
	}
	b.loop(ctx)
	return b.loopErr
}

func (b *Bridge) begin(op string) error {
	if b.state.Transition(StateReady, StateRunning) {
		return nil
	}
	s := b.state.Load()
	if !s.installed() {
		return newBridgeError(op, s, ErrNotInstalled)
	}
	if s == StateTerminated && b.initErr != nil {
		return b.initErr
	}
	return newBridgeError(op, s, ErrAlreadyStarted)
}

func (b *Bridge) loop(ctx context.Context) {
	defer close(b.done)

	stop := context.AfterFunc(ctx, func() {
		b.logger.Info("bridge stopping: context cancelled", "engine", b.interp.Name())
		b.commands.Close()
	})
	defer stop()

	b.logger.Info("engine loop starting", "engine", b.interp.Name())
	err := engine.Loop(b.in, b.out, b.interp)

	if b.flushOnExit {
		if flushErr := b.out.Flush(); flushErr != nil {
			b.logger.Warn("flush of trailing output failed", "error", flushErr)
		}
	} else if pending := b.out.Pending(); pending != "" {
		b.logger.Debug("discarding unterminated output", "bytes", len(pending))
	}

	b.loopErr = err
	b.state.Store(StateTerminated)
	if b.closeOnExit {
		b.replies.Close()
	}

	if err != nil {
		b.logger.Error("engine loop failed", "engine", b.interp.Name(), "error", err)
		return
	}
	b.logger.Info("engine loop stopped", "engine", b.interp.Name())
}

// Submit enqueues one command line for the engine. It never blocks.
//
// One trailing "\n" (or "\r\n") is treated as framing and removed; the rest
// of the text is passed through untouched. An empty string is a valid,
// empty command line.
func (b *Bridge) Submit(cmd string) error {
	s := b.state.Load()
	if !s.installed() {
		return newBridgeError("submit", s, ErrNotInstalled)
	}
	if s == StateTerminated {
		return newBridgeError("submit", s, ErrTerminated)
	}

	line := trimTerminator(cmd)
	if !b.commands.Enqueue(line) {
		b.logger.Debug("submission dropped: command queue closed")
		return newBridgeError("submit", s, ErrClosed)
	}
	if b.observer != nil {
		b.observer.ObserveCommand(line)
	}
	return nil
}

// FetchReply blocks until the engine has produced a reply line and returns
// it terminated by '\n'. Lines longer than the transfer capacity are cut to
// fit. If the engine never writes another line, FetchReply never returns;
// use FetchReplyContext to bound the wait.
func (b *Bridge) FetchReply() (string, error) {
	return b.FetchReplyContext(context.Background())
}

// FetchReplyContext is FetchReply with a caller-side deadline or
// cancellation.
func (b *Bridge) FetchReplyContext(ctx context.Context) (string, error) {
	s := b.state.Load()
	if !s.installed() {
		return "", newBridgeError("fetch", s, ErrNotInstalled)
	}

	line, err := b.replies.DequeueContext(ctx)
	if err != nil {
		return "", newBridgeError("fetch", b.state.Load(), err)
	}
	if b.observer != nil {
		b.observer.ObserveReply(line)
	}

	text, cut := frameReply(line, b.capacity)
	if cut {
		b.logger.Debug("reply truncated", "bytes", len(line), "capacity", b.capacity)
	}
	return text, nil
}

// Shutdown closes the command queue. The engine sees end of input once it
// has consumed the commands already queued, and its loop returns. Further
// submissions fail with ErrClosed.
func (b *Bridge) Shutdown() {
	b.commands.Close()
}

// State returns the current lifecycle state.
func (b *Bridge) State() State {
	return b.state.Load()
}

// Done is closed when the engine loop has returned, or when Init failed.
func (b *Bridge) Done() <-chan struct{} {
	return b.done
}

// Wait blocks until the engine loop has returned and reports its error.
func (b *Bridge) Wait() error {
	<-b.done
	if b.initErr != nil {
		return b.initErr
	}
	return b.loopErr
}

// Backlog reports the number of queued command and reply lines.
func (b *Bridge) Backlog() (commands, replies int) {
	return b.commands.Len(), b.replies.Len()
}

// Capacity returns the effective transfer capacity.
func (b *Bridge) Capacity() int {
	return b.capacity
}

// trimTerminator removes one trailing line terminator.
func trimTerminator(s string) string {
	if strings.HasSuffix(s, "\r\n") {
		return s[:len(s)-2]
	}
	return strings.TrimSuffix(s, "\n")
}
