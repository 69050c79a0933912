package bridge

import "sync/atomic"

// State is the lifecycle position of a Bridge.
//
//	Uninitialized -> Installing -> Ready -> Running -> Terminated
//
// Installing failing (engine init error) jumps straight to Terminated.
type State int32

const (
	// StateUninitialized is the zero state: nothing installed yet.
	StateUninitialized State = iota
	// StateInstalling means shims are being installed and the engine initialised.
	StateInstalling
	// StateReady means installation finished and the loop has not started.
	StateReady
	// StateRunning means the engine loop goroutine is active.
	StateRunning
	// StateTerminated means the engine loop returned (or init failed).
	StateTerminated
)

// String returns the lowercase state name.
func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateInstalling:
		return "installing"
	case StateReady:
		return "ready"
	case StateRunning:
		return "running"
	case StateTerminated:
		return "terminated"
	default:
		return "unknown"
	}
}

// stateMachine guards lifecycle transitions with compare-and-swap so a
// transition can only be taken once regardless of how many goroutines race.
type stateMachine struct {
	v atomic.Int32
}

func (m *stateMachine) Load() State {
	return State(m.v.Load())
}

// Transition moves from -> to. Returns false if the current state is not from.
func (m *stateMachine) Transition(from, to State) bool {
	return m.v.CompareAndSwap(int32(from), int32(to))
}

func (m *stateMachine) Store(s State) {
	m.v.Store(int32(s))
}

// installed reports whether accessors may be used.
func (s State) installed() bool {
	return s >= StateReady
}
