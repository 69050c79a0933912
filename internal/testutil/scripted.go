package testutil

import (
	"errors"
	"io"
	"sync/atomic"

	"github.com/roach88/enginebridge/internal/engine"
)

// ScriptedEngine is an engine.Interpreter whose replies are fixed in
// advance. Each entry in Writes is passed to out.Write as-is, so a test
// controls exactly how the engine chunks its output (partial lines, several
// lines per write, no trailing newline).
//
// Commands without an entry produce no output. "quit" stops the engine.
type ScriptedEngine struct {
	Writes  map[string][]string
	InitErr error

	inits    atomic.Int32
	executed atomic.Int32
}

// NewScriptedEngine returns an engine with the given write script.
func NewScriptedEngine(writes map[string][]string) *ScriptedEngine {
	if writes == nil {
		writes = map[string][]string{}
	}
	return &ScriptedEngine{Writes: writes}
}

// Name implements engine.Interpreter.
func (e *ScriptedEngine) Name() string { return "scripted" }

// Init implements engine.Interpreter.
func (e *ScriptedEngine) Init() error {
	e.inits.Add(1)
	return e.InitErr
}

// Execute implements engine.Interpreter.
func (e *ScriptedEngine) Execute(line string, out io.Writer) error {
	e.executed.Add(1)
	if line == "quit" {
		return engine.ErrQuit
	}
	if line == "fail" {
		return errors.New("scripted failure")
	}
	for _, w := range e.Writes[line] {
		if _, err := io.WriteString(out, w); err != nil {
			return err
		}
	}
	return nil
}

// Inits reports how many times Init ran.
func (e *ScriptedEngine) Inits() int { return int(e.inits.Load()) }

// Executed reports how many commands reached Execute.
func (e *ScriptedEngine) Executed() int { return int(e.executed.Load()) }
