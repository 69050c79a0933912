package bridge

import (
	"errors"
	"io"
)

// CharSource is a blocking character stream. NextChar suspends until a
// character is available.
type CharSource interface {
	NextChar() (byte, error)
}

// CharSink is a non-blocking character stream.
type CharSink interface {
	WriteChar(c byte) error
}

// inputShim stands in for the engine's standard input. It serves the bytes
// of one command line at a time and refills from the command queue on
// underflow, which is the only point where the engine goroutine blocks.
//
// Only the engine goroutine reads from the shim, so buf/pos need no lock.
type inputShim struct {
	queue *lineQueue
	buf   []byte
	pos   int
}

var (
	_ CharSource = (*inputShim)(nil)
	_ io.Reader  = (*inputShim)(nil)
)

func newInputShim(q *lineQueue) *inputShim {
	return &inputShim{queue: q}
}

// underflow blocks for the next command line and installs it, with its
// implicit terminator, as the current buffer.
func (s *inputShim) underflow() error {
	line, err := s.queue.Dequeue()
	if err != nil {
		if errors.Is(err, ErrClosed) {
			return io.EOF
		}
		return err
	}
	s.buf = append(append(s.buf[:0], line...), '\n')
	s.pos = 0
	return nil
}

// NextChar returns the next byte of the command stream.
func (s *inputShim) NextChar() (byte, error) {
	if s.pos >= len(s.buf) {
		if err := s.underflow(); err != nil {
			return 0, err
		}
	}
	c := s.buf[s.pos]
	s.pos++
	return c, nil
}

// Read implements io.Reader. It never spans two command lines in one call,
// so a line-oriented reader sees exactly the submitted boundaries.
func (s *inputShim) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	if s.pos >= len(s.buf) {
		if err := s.underflow(); err != nil {
			return 0, err
		}
	}
	n := copy(p, s.buf[s.pos:])
	s.pos += n
	return n, nil
}

// outputShim stands in for the engine's standard output. Bytes accumulate
// until a newline, at which point the accumulated line is pushed onto the
// reply queue and the accumulator is cleared.
//
// Only the engine goroutine writes, so the accumulator itself is unlocked;
// the reply queue has its own lock.
type outputShim struct {
	queue   *lineQueue
	pending []byte
}

var (
	_ CharSink  = (*outputShim)(nil)
	_ io.Writer = (*outputShim)(nil)
)

func newOutputShim(q *lineQueue) *outputShim {
	return &outputShim{queue: q}
}

// WriteChar appends c to the accumulator, or flushes a line on '\n'.
func (s *outputShim) WriteChar(c byte) error {
	if c != '\n' {
		s.pending = append(s.pending, c)
		return nil
	}
	return s.push()
}

// Write implements io.Writer by splitting p on newlines.
func (s *outputShim) Write(p []byte) (int, error) {
	for i, c := range p {
		if err := s.WriteChar(c); err != nil {
			return i, err
		}
	}
	return len(p), nil
}

// push copies the accumulator onto the reply queue and resets it.
func (s *outputShim) push() error {
	line := string(s.pending)
	s.pending = s.pending[:0]
	if !s.queue.Enqueue(line) {
		return ErrClosed
	}
	return nil
}

// Flush pushes an unterminated trailing line, if any.
func (s *outputShim) Flush() error {
	if len(s.pending) == 0 {
		return nil
	}
	return s.push()
}

// Pending returns the not-yet-terminated tail of the current output line.
func (s *outputShim) Pending() string {
	return string(s.pending)
}
