package bridge

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestFrameReply(t *testing.T) {
	tests := []struct {
		name     string
		line     string
		capacity int
		want     string
		cut      bool
	}{
		{"fits", "bestmove e2e4", 64, "bestmove e2e4\n", false},
		{"exact fit", "abc", 4, "abc\n", false},
		{"one over", "abcd", 4, "abc\n", true},
		{"empty", "", 8, "\n", false},
		{"minimum capacity", "abc", 2, "a\n", true},
		{"below minimum clamps", "abc", 0, "a\n", true},
		{"multibyte not split", "a\u00e9", 3, "a\n", true},
		{"combining mark kept with base", "ae\u0301x", 4, "a\n", true},
		{"only combining marks falls back", "\u0301\u0301\u0301", 5, "\u0301\u0301\n", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, cut := frameReply(tt.line, tt.capacity)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.cut, cut)
		})
	}
}

func TestFrameReply_NeverExceedsCapacity(t *testing.T) {
	line := strings.Repeat("ke\u0301\u0301o\u030b\u00e9", 500)
	for capacity := 2; capacity < 64; capacity++ {
		got, _ := frameReply(line, capacity)
		assert.LessOrEqual(t, len(got), capacity)
		assert.True(t, strings.HasSuffix(got, "\n"))
		assert.True(t, utf8.ValidString(got), "capacity %d produced invalid UTF-8", capacity)
	}
}
