package cli

import (
	"bufio"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/enginebridge/internal/bridge"
)

// ExecOptions holds flags for the exec command.
type ExecOptions struct {
	*RootOptions
	EngineFlags
}

// NewExecCommand creates the exec command.
func NewExecCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ExecOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "exec [command...]",
		Short: "Execute commands synchronously, without the bridge goroutine",
		Long: `Run commands through the synchronous path: the engine is initialised once
and every command runs to completion on the calling goroutine before the
next one starts. No queues are involved.

Commands come from the arguments, one per argument, or from stdin one per
line when no arguments are given. Execution stops at the engine's quit
command.

Example:
  enginebridge exec --engine uci uci isready "go depth 1"
  printf 'uci\nquit\n' | enginebridge exec`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExec(opts, args, cmd)
		},
	}

	opts.EngineFlags.register(cmd)
	return cmd
}

func runExec(opts *ExecOptions, args []string, cmd *cobra.Command) error {
	cfg, err := opts.resolve()
	if err != nil {
		return err
	}
	logger := setupLogging(cmd.ErrOrStderr(), cfg.SlogLevel(), opts.Verbose)

	interp, err := buildEngine(cfg)
	if err != nil {
		return err
	}

	s := bridge.NewSync(interp, cmd.OutOrStdout())
	if err := s.InitSync(); err != nil {
		return WrapExitError(ExitFailure, "engine init failed", err)
	}

	next := argSource(args)
	if len(args) == 0 {
		next = lineSource(cmd.InOrStdin())
	}

	for {
		line, ok := next()
		if !ok {
			break
		}
		if err := s.ExecuteSync(line); err != nil {
			return WrapExitError(ExitFailure, "execute failed", err)
		}
		if s.Terminated() {
			logger.Debug("engine quit", "engine", interp.Name())
			break
		}
	}
	return nil
}

func argSource(args []string) func() (string, bool) {
	i := 0
	return func() (string, bool) {
		if i >= len(args) {
			return "", false
		}
		i++
		return args[i-1], true
	}
}

func lineSource(in io.Reader) func() (string, bool) {
	r := bufio.NewReader(in)
	return func() (string, bool) {
		line, err := r.ReadString('\n')
		if line == "" && err != nil {
			return "", false
		}
		// ExecuteSync strips the terminator.
		return line, true
	}
}
