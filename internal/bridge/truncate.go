package bridge

import (
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// DefaultTransferCapacity is the size of the reply transfer buffer, newline
// included.
const DefaultTransferCapacity = 8192

// minTransferCapacity leaves room for at least one byte plus the newline.
const minTransferCapacity = 2

// frameReply terminates line with '\n' so that the result, newline
// included, fits in capacity bytes. The second return value reports whether
// the line had to be cut.
func frameReply(line string, capacity int) (string, bool) {
	if capacity < minTransferCapacity {
		capacity = minTransferCapacity
	}
	limit := capacity - 1
	if len(line) <= limit {
		return line + "\n", false
	}
	return line[:cutPoint(line, limit)] + "\n", true
}

// cutPoint returns the largest index <= limit at which s can be cut without
// splitting a UTF-8 sequence and, when one exists, without separating a
// base character from the combining marks that follow it.
func cutPoint(s string, limit int) int {
	i := limit
	for i > 0 && !utf8.RuneStart(s[i]) {
		i--
	}
	runeSafe := i

	for i > 0 && !norm.NFC.PropertiesString(s[i:]).BoundaryBefore() {
		_, size := utf8.DecodeLastRuneInString(s[:i])
		i -= size
	}
	if i == 0 {
		// Nothing but combining marks up to limit: fall back to a rune cut.
		return runeSafe
	}
	return i
}
