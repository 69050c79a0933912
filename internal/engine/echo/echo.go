// Package echo provides a pass-through engine: every command line comes
// back as exactly one reply line. "quit" stops it.
package echo

import (
	"io"

	"github.com/roach88/enginebridge/internal/engine"
)

// Name is the registry name of the echo engine.
const Name = "echo"

func init() {
	engine.Register(Name, func(engine.Settings) (engine.Interpreter, error) {
		return New(), nil
	})
}

// Engine echoes its input.
type Engine struct {
	inits int
}

// New returns an echo engine.
func New() *Engine {
	return &Engine{}
}

// Name implements engine.Interpreter.
func (e *Engine) Name() string { return Name }

// Init implements engine.Interpreter.
func (e *Engine) Init() error {
	e.inits++
	return nil
}

// Inits reports how many times Init ran.
func (e *Engine) Inits() int { return e.inits }

// Execute writes line back unchanged.
func (e *Engine) Execute(line string, out io.Writer) error {
	if line == "quit" {
		return engine.ErrQuit
	}
	_, err := io.WriteString(out, line+"\n")
	return err
}
