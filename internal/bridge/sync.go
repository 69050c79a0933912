package bridge

import (
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/roach88/enginebridge/internal/engine"
)

// Sync is the alternate integration path for single-threaded cooperative
// hosts that cannot dedicate a goroutine to a blocking loop. Commands are
// executed directly on the caller's goroutine: no queues, no shims.
//
// Output is written straight to the sink given to NewSync.
type Sync struct {
	interp engine.Interpreter
	out    io.Writer

	once    sync.Once
	initErr error

	mu   sync.Mutex
	quit bool
}

// NewSync creates a synchronous driver for interp writing to out.
func NewSync(interp engine.Interpreter, out io.Writer) *Sync {
	if interp == nil {
		panic("bridge: interpreter must not be nil")
	}
	if out == nil {
		out = io.Discard
	}
	return &Sync{interp: interp, out: out}
}

// InitSync runs the engine initialisation once. Repeated calls are no-ops
// returning the first result.
func (s *Sync) InitSync() error {
	s.once.Do(func() {
		if err := s.interp.Init(); err != nil {
			s.initErr = newBridgeError("init", StateInstalling, err)
		}
	})
	return s.initErr
}

// ExecuteSync runs a single command to completion before returning.
// Engine errors other than quit are written to the sink as text, matching
// the threaded path.
func (s *Sync) ExecuteSync(cmd string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.InitSync(); err != nil {
		return err
	}
	if s.quit {
		return newBridgeError("execute", StateTerminated, ErrTerminated)
	}

	err := s.interp.Execute(trimTerminator(cmd), s.out)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, engine.ErrQuit):
		s.quit = true
		return nil
	default:
		_, werr := fmt.Fprintf(s.out, "info string error: %v\n", err)
		return werr
	}
}

// Terminated reports whether the engine has processed a quit command.
func (s *Sync) Terminated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.quit
}
