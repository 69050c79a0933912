package harness

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/roach88/enginebridge/internal/bridge"
	"github.com/roach88/enginebridge/internal/engine"
	"github.com/roach88/enginebridge/internal/testutil"

	// Engines selectable by name from scenario files.
	_ "github.com/roach88/enginebridge/internal/engine/echo"
	_ "github.com/roach88/enginebridge/internal/engine/luaengine"
	_ "github.com/roach88/enginebridge/internal/engine/uci"
)

// Run executes a scenario against the engine it names.
//
// Execution flow:
//  1. Build the engine and a bridge that closes its reply queue on exit
//  2. Init and Start the bridge with the scenario timeout as context
//  3. Submit every command
//  4. Fetch replies until the queue closes or the timeout elapses
//  5. Evaluate assertions
//
// The returned error is reserved for setup failures (unknown engine, engine
// init); timeouts and assertion failures are reported in the Result.
func Run(scenario *Scenario) (*Result, error) {
	interp, err := engine.New(scenario.Engine, scenario.EngineSettings())
	if err != nil {
		return nil, fmt.Errorf("failed to create engine: %w", err)
	}
	return RunWith(scenario, interp)
}

// RunWith executes a scenario against a caller-supplied interpreter,
// ignoring scenario.Engine.
func RunWith(scenario *Scenario, interp engine.Interpreter) (*Result, error) {
	b := bridge.New(interp,
		bridge.WithCloseOnExit(true),
		bridge.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))), // Suppress logs in tests
	)
	if err := b.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialise engine: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), scenario.TimeoutDuration())
	defer cancel()

	if err := b.Start(ctx); err != nil {
		return nil, fmt.Errorf("failed to start bridge: %w", err)
	}

	clock := testutil.NewStepClock()
	result := NewResult()

	for _, cmd := range scenario.Commands {
		if err := b.Submit(cmd); err != nil {
			result.AddError(fmt.Sprintf("submit %q: %v", cmd, err))
			break
		}
		result.AddCommand(cmd, clock.Next())
	}

	for {
		line, err := b.FetchReplyContext(ctx)
		if err != nil {
			if !bridge.IsClosed(err) {
				result.AddError(fmt.Sprintf("engine did not terminate within %s: %v",
					scenario.TimeoutDuration(), err))
			}
			break
		}
		result.AddReply(strings.TrimSuffix(line, "\n"), clock.Next())
	}

	// Timeout or not, make sure the engine goroutine is gone before we
	// return: cancelling closes its input.
	cancel()
	select {
	case <-b.Done():
		if err := b.Wait(); err != nil && !errors.Is(err, context.Canceled) {
			result.AddError(fmt.Sprintf("engine loop failed: %v", err))
		}
	case <-time.After(scenario.TimeoutDuration()):
		// The bridge never cancels an engine stuck inside a command.
		result.AddError("engine goroutine still running after input was closed")
	}

	for _, msg := range EvaluateAssertions(result, scenario.Assertions) {
		result.AddError(msg)
	}
	return result, nil
}
