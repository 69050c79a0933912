package cli

import (
	"bufio"
	"context"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/enginebridge/internal/bridge"
	"github.com/roach88/enginebridge/internal/transcript"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	EngineFlags
	Database string

	// IDs allows overriding the transcript session ID generator (for testing).
	// If nil, defaults to UUIDv7Generator.
	IDs transcript.IDGenerator
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	return newRunCommand(&RunOptions{RootOptions: rootOpts})
}

func newRunCommand(opts *RunOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run an engine behind the bridge, pumping stdin and stdout",
		Long: `Start the configured engine on its own goroutine behind the queue bridge.

Each line read from stdin is submitted as one command; each reply the engine
produces is written to stdout. Logs go to stderr. The command ends when the
engine processes its quit command, when stdin reaches end of file, or on
SIGINT/SIGTERM.

With --db (or transcript in the config) every command and reply is recorded
in a SQLite transcript.

Example:
  enginebridge run --engine uci
  enginebridge run --config bridge.cue --db session.db
  echo -e "uci\nquit" | enginebridge run`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBridge(opts, cmd)
		},
	}

	opts.EngineFlags.register(cmd)
	cmd.Flags().StringVar(&opts.Database, "db", "", "record a transcript in this SQLite database (overrides config)")

	return cmd
}

func runBridge(opts *RunOptions, cmd *cobra.Command) error {
	cfg, err := opts.resolve()
	if err != nil {
		return err
	}
	if opts.Database != "" {
		cfg.Transcript = opts.Database
	}

	logger := setupLogging(cmd.ErrOrStderr(), cfg.SlogLevel(), opts.Verbose)

	interp, err := buildEngine(cfg)
	if err != nil {
		return err
	}

	// Use command's context if available (for testing), otherwise create one
	parentCtx := cmd.Context()
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	ctx, cancel := context.WithCancel(parentCtx)
	defer cancel()

	bopts := []bridge.Option{
		bridge.WithLogger(logger),
		bridge.WithTransferCapacity(cfg.TransferCapacity),
		bridge.WithFlushOnExit(cfg.FlushOnExit),
		bridge.WithCloseOnExit(cfg.CloseOnExit),
	}

	if cfg.Transcript != "" {
		logger.Info("opening transcript", "path", cfg.Transcript)
		st, err := transcript.Open(cfg.Transcript)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to open transcript", err)
		}
		defer func() {
			if closeErr := st.Close(); closeErr != nil {
				logger.Error("error closing transcript", "error", closeErr)
			}
		}()

		rec, err := transcript.NewRecorder(ctx, st, interp.Name(), opts.IDs)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to start transcript session", err)
		}
		logger.Info("recording transcript", "session", rec.Session().ID)
		bopts = append(bopts, bridge.WithObserver(rec))
	}

	b := bridge.New(interp, bopts...)
	if err := b.Init(); err != nil {
		return WrapExitError(ExitFailure, "engine init failed", err)
	}

	// Setup signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan) // Prevent signal handler leak

	go func() {
		select {
		case sig := <-sigChan:
			logger.Info("received signal, shutting down", "signal", sig)
			cancel()
		case <-ctx.Done():
		}
	}()

	if err := b.Start(ctx); err != nil {
		return WrapExitError(ExitFailure, "failed to start bridge", err)
	}

	fetchCtx, stopFetch := context.WithCancel(context.Background())
	defer stopFetch()
	fetched := make(chan struct{})
	go func() {
		defer close(fetched)
		pumpReplies(fetchCtx, b, cmd.OutOrStdout(), logger)
	}()

	go pumpCommands(b, cmd.InOrStdin(), logger)

	<-b.Done()
	if !cfg.CloseOnExit {
		// Nothing will close the reply queue: let the fetcher drain what
		// is there, then stop it.
		for {
			if _, left := b.Backlog(); left == 0 {
				break
			}
			time.Sleep(time.Millisecond)
		}
		stopFetch()
	}
	<-fetched

	if err := b.Wait(); err != nil {
		return WrapExitError(ExitFailure, "engine error", err)
	}
	logger.Info("engine stopped")
	return nil
}

// pumpCommands submits each stdin line until end of input or until the
// bridge stops accepting commands. End of input closes the command queue.
func pumpCommands(b *bridge.Bridge, in io.Reader, logger *slog.Logger) {
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)

	for scanner.Scan() {
		if err := b.Submit(scanner.Text()); err != nil {
			logger.Debug("stdin pump stopping", "error", err)
			return
		}
	}
	if err := scanner.Err(); err != nil {
		logger.Error("reading stdin", "error", err)
	}
	b.Shutdown()
}

// pumpReplies writes every reply to out until the reply queue closes or ctx
// ends.
func pumpReplies(ctx context.Context, b *bridge.Bridge, out io.Writer, logger *slog.Logger) {
	for {
		line, err := b.FetchReplyContext(ctx)
		if err != nil {
			if !bridge.IsClosed(err) && ctx.Err() == nil {
				logger.Error("fetching reply", "error", err)
			}
			return
		}
		if _, err := io.WriteString(out, line); err != nil {
			logger.Error("writing reply", "error", err)
			return
		}
	}
}
