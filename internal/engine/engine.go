package engine

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// ErrQuit is returned by Execute when the command asks the engine to stop.
var ErrQuit = errors.New("engine quit")

// Interpreter is a line-protocol command interpreter.
//
// Thread-safety: an Interpreter is driven from exactly one goroutine.
type Interpreter interface {
	// Name identifies the engine in logs and transcripts.
	Name() string

	// Init performs the engine's one-time initialisation.
	Init() error

	// Execute interprets one command line (without terminator) and writes
	// any replies to out, one '\n'-terminated line each. Returning ErrQuit
	// ends the protocol loop; any other error is reported as text and the
	// loop continues.
	Execute(line string, out io.Writer) error
}

// Loop runs the blocking protocol loop: read a line from in, execute it,
// repeat. It returns nil when the interpreter quits or in reaches EOF.
//
// Lines have no length limit. A trailing "\r" is stripped so CRLF hosts
// behave like LF hosts.
func Loop(in io.Reader, out io.Writer, interp Interpreter) error {
	r := bufio.NewReader(in)

	slog.Debug("engine loop starting", "engine", interp.Name())

	for {
		line, err := r.ReadString('\n')
		if err != nil && !(errors.Is(err, io.EOF) && line != "") {
			if errors.Is(err, io.EOF) {
				slog.Debug("engine loop stopping: input closed", "engine", interp.Name())
				return nil
			}
			return fmt.Errorf("read command: %w", err)
		}

		line = strings.TrimSuffix(line, "\n")
		line = strings.TrimSuffix(line, "\r")

		if execErr := interp.Execute(line, out); execErr != nil {
			if errors.Is(execErr, ErrQuit) {
				slog.Debug("engine loop stopping: quit", "engine", interp.Name())
				return nil
			}
			// Engine failures travel as ordinary reply text.
			fmt.Fprintf(out, "info string error: %v\n", execErr)
		}
	}
}
