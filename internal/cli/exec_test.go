package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// execute runs the root command with args and stdin, returning stdout,
// stderr and the error.
func execute(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	out, errOut := &bytes.Buffer{}, &bytes.Buffer{}

	cmd := NewRootCommand()
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	cmd.SetArgs(args)

	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func TestExec_Args(t *testing.T) {
	out, _, err := execute(t, "", "exec", "--engine", "echo", "hello", "", "quit", "never")
	require.NoError(t, err)
	assert.Equal(t, "hello\n\n", out)
}

func TestExec_Stdin(t *testing.T) {
	out, _, err := execute(t, "isready\r\ngo\nquit\n", "exec", "--engine", "uci")
	require.NoError(t, err)
	assert.Equal(t, "readyok\nbestmove (none)\n", out)
}

func TestExec_StdinWithoutTrailingNewline(t *testing.T) {
	out, _, err := execute(t, "a\nb", "exec", "-e", "echo")
	require.NoError(t, err)
	assert.Equal(t, "a\nb\n", out)
}

func TestExec_LuaScript(t *testing.T) {
	script := filepath.Join(t.TempDir(), "up.lua")
	require.NoError(t, os.WriteFile(script, []byte(`
function handle(line)
  if line == "quit" then return "quit" end
  send(string.upper(line))
end
`), 0o644))

	out, _, err := execute(t, "", "exec", "--engine", "lua", "--script", script, "abc", "quit")
	require.NoError(t, err)
	assert.Equal(t, "ABC\n", out)
}

func TestExec_ConfigFile(t *testing.T) {
	cfg := filepath.Join(t.TempDir(), "bridge.cue")
	require.NoError(t, os.WriteFile(cfg, []byte(`
engine: "uci"
uci: variant: "atomic"
`), 0o644))

	out, _, err := execute(t, "", "exec", "--config", cfg, "setoption name Hash value 32", "isready")
	require.NoError(t, err)
	assert.Equal(t, "readyok\n", out)
}

func TestExec_Errors(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		wantCode int
		wantErr  string
	}{
		{"unknown engine", []string{"exec", "--engine", "nope", "x"}, ExitCommandError, "unknown engine"},
		{"lua without script", []string{"exec", "--engine", "lua", "x"}, ExitCommandError, "lua.script"},
		{"missing config", []string{"exec", "--config", "/does/not/exist.cue", "x"}, ExitCommandError, "failed to load config"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := execute(t, "", tt.args...)
			require.Error(t, err)
			assert.Equal(t, tt.wantCode, GetExitCode(err))
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestExec_InitFailure(t *testing.T) {
	cfg := filepath.Join(t.TempDir(), "bridge.cue")
	require.NoError(t, os.WriteFile(cfg, []byte(`uci: variant: "shogi"`+"\n"), 0o644))

	_, _, err := execute(t, "", "exec", "--config", cfg, "uci")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, err.Error(), "engine init failed")
}
