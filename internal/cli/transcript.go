package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/enginebridge/internal/transcript"
)

// TranscriptOptions holds flags for the transcript commands.
type TranscriptOptions struct {
	*RootOptions
	Database string
}

// NewTranscriptCommand creates the transcript command group.
func NewTranscriptCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TranscriptOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "transcript",
		Short: "Inspect recorded bridge sessions",
		Long: `Inspect sessions recorded by "enginebridge run --db".

Examples:
  enginebridge transcript list --db session.db
  enginebridge transcript show --db session.db 0190f1c2-...
  enginebridge transcript show --db session.db 0190f1c2-... --format json`,
	}

	cmd.PersistentFlags().StringVar(&opts.Database, "db", "", "path to transcript database (required)")
	_ = cmd.MarkPersistentFlagRequired("db")

	cmd.AddCommand(&cobra.Command{
		Use:           "list",
		Short:         "List recorded sessions",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return listSessions(opts, cmd)
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:           "show <session-id>",
		Short:         "Print the commands and replies of a session",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return showSession(opts, args[0], cmd)
		},
	})

	return cmd
}

func openTranscript(path string) (*transcript.Store, error) {
	st, err := transcript.Open(path)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open transcript", err)
	}
	return st, nil
}

func listSessions(opts *TranscriptOptions, cmd *cobra.Command) error {
	st, err := openTranscript(opts.Database)
	if err != nil {
		return err
	}
	defer st.Close()

	sessions, err := st.ListSessions(cmd.Context())
	if err != nil {
		return WrapExitError(ExitFailure, "failed to list sessions", err)
	}

	out := newFormatter(cmd, opts.RootOptions)
	if opts.Format == "json" {
		return out.Success(sessions)
	}

	var sb strings.Builder
	for _, s := range sessions {
		fmt.Fprintf(&sb, "%s  %-6s  seq=%d\n", s.ID, s.Engine, s.CreatedSeq)
	}
	fmt.Fprintf(&sb, "%d session(s)", len(sessions))
	return out.Success(sb.String())
}

// sessionView is the JSON shape of "transcript show".
type sessionView struct {
	Session transcript.Session `json:"session"`
	Lines   []transcript.Line  `json:"lines"`
}

func showSession(opts *TranscriptOptions, id string, cmd *cobra.Command) error {
	st, err := openTranscript(opts.Database)
	if err != nil {
		return err
	}
	defer st.Close()

	out := newFormatter(cmd, opts.RootOptions)

	sess, err := st.ReadSession(cmd.Context(), id)
	if errors.Is(err, transcript.ErrSessionNotFound) {
		_ = out.Error("E_SESSION_NOT_FOUND", fmt.Sprintf("session %s not found", id), nil)
		return WrapExitError(ExitCommandError, "session not found", err)
	}
	if err != nil {
		return WrapExitError(ExitFailure, "failed to read session", err)
	}

	lines, err := st.ReadLines(cmd.Context(), id)
	if err != nil {
		return WrapExitError(ExitFailure, "failed to read lines", err)
	}

	if opts.Format == "json" {
		return out.Success(sessionView{Session: sess, Lines: lines})
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "session: %s\nengine: %s", sess.ID, sess.Engine)
	for _, l := range lines {
		arrow := ">"
		if l.Direction == transcript.DirectionOut {
			arrow = "<"
		}
		fmt.Fprintf(&sb, "\n[%d] %s %q", l.Seq, arrow, l.Text)
	}
	return out.Success(sb.String())
}
