package bridge

import "log/slog"

// Option configures a Bridge.
type Option func(*config)

type config struct {
	logger      *slog.Logger
	capacity    int
	flushOnExit bool
	closeOnExit bool
	observer    Observer
}

func defaultConfig() *config {
	return &config{
		logger:   slog.Default(),
		capacity: DefaultTransferCapacity,
	}
}

// WithLogger sets the logger for lifecycle and diagnostic messages.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

// WithTransferCapacity sets the maximum size of a fetched reply, newline
// included. Values below 2 are clamped to 2; zero or negative selects the
// default (8192).
func WithTransferCapacity(n int) Option {
	return func(c *config) {
		c.capacity = n
	}
}

// WithFlushOnExit makes the bridge push an unterminated trailing output line
// onto the reply queue when the engine loop returns. By default such a
// partial line is not a complete line and is discarded.
func WithFlushOnExit(flush bool) Option {
	return func(c *config) {
		c.flushOnExit = flush
	}
}

// WithCloseOnExit closes the reply queue after the engine loop returns, so
// fetchers drain the remaining replies and then receive ErrClosed instead of
// blocking forever.
func WithCloseOnExit(close bool) Option {
	return func(c *config) {
		c.closeOnExit = close
	}
}

// WithObserver registers a hook that sees every submitted command and every
// fetched reply.
func WithObserver(o Observer) Option {
	return func(c *config) {
		c.observer = o
	}
}

// Observer sees traffic crossing the bridge. ObserveCommand runs on the
// submitting goroutine and ObserveReply on the fetching goroutine, so
// implementations must be safe for concurrent use.
type Observer interface {
	ObserveCommand(line string)
	ObserveReply(line string)
}
