package testutil

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/enginebridge/internal/engine"
)

func TestScriptedEngine_WritesChunksVerbatim(t *testing.T) {
	e := NewScriptedEngine(map[string][]string{
		"go": {"a", "b\nc", "\n"},
	})
	require.NoError(t, e.Init())

	var out bytes.Buffer
	require.NoError(t, e.Execute("go", &out))
	require.NoError(t, e.Execute("unknown", &out))

	assert.Equal(t, "ab\nc\n", out.String())
	assert.Equal(t, 1, e.Inits())
	assert.Equal(t, 2, e.Executed())
}

func TestScriptedEngine_QuitAndFail(t *testing.T) {
	e := NewScriptedEngine(nil)

	assert.True(t, errors.Is(e.Execute("quit", &bytes.Buffer{}), engine.ErrQuit))
	assert.Error(t, e.Execute("fail", &bytes.Buffer{}))
}
