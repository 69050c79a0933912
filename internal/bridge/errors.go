package bridge

import (
	"errors"
	"fmt"
)

var (
	// ErrNotInstalled is returned by accessors called before Init completed.
	ErrNotInstalled = errors.New("bridge not installed")

	// ErrAlreadyStarted is returned by a second Start or Run.
	ErrAlreadyStarted = errors.New("bridge already started")

	// ErrClosed is returned when a queue has been shut down and drained.
	ErrClosed = errors.New("bridge queue closed")

	// ErrTerminated is returned once the engine has processed its quit command.
	ErrTerminated = errors.New("engine terminated")
)

// BridgeError annotates a failure with the operation and lifecycle state in
// which it happened.
type BridgeError struct {
	// Op is the operation that failed ("init", "start", "submit", "fetch").
	Op string

	// State is the bridge state observed when the error occurred.
	State State

	// Err is the underlying cause.
	Err error
}

// Error implements the error interface.
func (e *BridgeError) Error() string {
	return fmt.Sprintf("bridge %s (state=%s): %v", e.Op, e.State, e.Err)
}

// Unwrap returns the underlying cause.
func (e *BridgeError) Unwrap() error {
	return e.Err
}

func newBridgeError(op string, state State, err error) *BridgeError {
	return &BridgeError{Op: op, State: state, Err: err}
}

// IsNotInstalled reports whether err stems from an accessor used before Init.
func IsNotInstalled(err error) bool {
	return errors.Is(err, ErrNotInstalled)
}

// IsClosed reports whether err stems from a closed queue.
func IsClosed(err error) bool {
	return errors.Is(err, ErrClosed)
}
