package engine_test

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/enginebridge/internal/engine"
)

// recorder records every line it is given and replies "ok <line>".
type recorder struct {
	lines []string
}

func (r *recorder) Name() string { return "recorder" }
func (r *recorder) Init() error  { return nil }

func (r *recorder) Execute(line string, out io.Writer) error {
	r.lines = append(r.lines, line)
	switch line {
	case "quit":
		return engine.ErrQuit
	case "boom":
		return errors.New("exploded")
	}
	_, err := io.WriteString(out, "ok "+line+"\n")
	return err
}

func TestLoop_StopsOnQuit(t *testing.T) {
	in := strings.NewReader("a\nquit\nnever\n")
	var out bytes.Buffer
	r := &recorder{}

	require.NoError(t, engine.Loop(in, &out, r))
	assert.Equal(t, []string{"a", "quit"}, r.lines)
	assert.Equal(t, "ok a\n", out.String())
}

func TestLoop_StopsOnEOF(t *testing.T) {
	in := strings.NewReader("a\n\nlast-without-newline")
	var out bytes.Buffer
	r := &recorder{}

	require.NoError(t, engine.Loop(in, &out, r))
	assert.Equal(t, []string{"a", "", "last-without-newline"}, r.lines)
}

func TestLoop_StripsCarriageReturn(t *testing.T) {
	r := &recorder{}
	require.NoError(t, engine.Loop(strings.NewReader("uci\r\n"), io.Discard, r))
	assert.Equal(t, []string{"uci"}, r.lines)
}

func TestLoop_ErrorsBecomeReplies(t *testing.T) {
	var out bytes.Buffer
	r := &recorder{}

	require.NoError(t, engine.Loop(strings.NewReader("boom\nafter\n"), &out, r))
	assert.Equal(t, "info string error: exploded\nok after\n", out.String())
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("pipe broken") }

func TestLoop_ReadError(t *testing.T) {
	err := engine.Loop(failingReader{}, io.Discard, &recorder{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "pipe broken")
}
