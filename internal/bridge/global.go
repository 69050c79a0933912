package bridge

import (
	"context"
	"sync"

	"github.com/roach88/enginebridge/internal/engine"
)

// Status codes returned by the process-wide Init.
const (
	StatusOK         = 0
	StatusInitFailed = 1
)

// The process-wide bridge backs the flat host surface below, for hosts that
// bind to a handful of free functions rather than an object.
var (
	defaultMu     sync.Mutex
	defaultBridge *Bridge
	defaultStatus int
)

// Init installs the process-wide bridge around interp. Only the first call
// has any effect; later calls return the first call's status and never
// create a second engine.
func Init(interp engine.Interpreter, opts ...Option) int {
	defaultMu.Lock()
	defer defaultMu.Unlock()

	if defaultBridge != nil {
		defaultBridge.logger.Debug("bridge init ignored: already installed")
		return defaultStatus
	}

	b := New(interp, opts...)
	defaultBridge = b
	if err := b.Init(); err != nil {
		defaultStatus = StatusInitFailed
	} else {
		defaultStatus = StatusOK
	}
	return defaultStatus
}

// Start runs the process-wide engine loop on the calling goroutine. It does
// not return until the engine processes its quit command, so hosts call it
// from a goroutine of their own.
func Start() error {
	return mustDefault().Run(context.Background())
}

// Submit enqueues a command on the process-wide bridge.
func Submit(cmd string) {
	// Rejections (closed, terminated) are silent at this boundary.
	_ = mustDefault().Submit(cmd)
}

// FetchReply blocks for the next reply of the process-wide bridge.
// It returns "" only if the reply queue was closed.
func FetchReply() string {
	line, err := mustDefault().FetchReply()
	if err != nil {
		return ""
	}
	return line
}

// Default returns the process-wide bridge, or nil before Init.
func Default() *Bridge {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	return defaultBridge
}

// mustDefault panics if Init has not been called: using the host surface
// before installation is a programming error.
func mustDefault() *Bridge {
	b := Default()
	if b == nil {
		panic(newBridgeError("access", StateUninitialized, ErrNotInstalled))
	}
	return b
}

// resetDefault clears the process-wide bridge. Tests only.
func resetDefault() {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	defaultBridge = nil
	defaultStatus = StatusOK
}
