package scope

import (
	"errors"
	"fmt"
)

// ErrTapLength is returned for a display buffer too short to hold one
// sample pair.
var ErrTapLength = errors.New("scope: tap buffer too short")

// Tap writes I/Q pairs into a caller-owned buffer, Q first, then I. The
// cursor returns to zero once it reaches len(buf)-1, so a pair is never
// split across the end of the buffer.
type Tap struct {
	buf    []float32
	cursor int
	wraps  uint64
}

// NewTap wraps buf. The buffer is written in place and must hold at least
// one sample pair.
func NewTap(buf []float32) (*Tap, error) {
	if len(buf) < 2 {
		return nil, fmt.Errorf("%w: %d", ErrTapLength, len(buf))
	}

	return &Tap{buf: buf}, nil
}

// Write appends one block of I/Q samples.
func (t *Tap) Write(i, q []float64) {
	limit := len(t.buf) - 1

	for n := range i {
		t.buf[t.cursor] = float32(q[n])
		t.buf[t.cursor+1] = float32(i[n])
		t.cursor += 2

		if t.cursor >= limit {
			t.cursor = 0
			t.wraps++
		}
	}
}

// Buffer returns the underlying display buffer.
func (t *Tap) Buffer() []float32 { return t.buf }

// Cursor returns the next write position.
func (t *Tap) Cursor() int { return t.cursor }

// Wraps returns how often the cursor returned to zero.
func (t *Tap) Wraps() uint64 { return t.wraps }

// Pairs returns the number of I/Q pairs the buffer holds.
func (t *Tap) Pairs() int { return len(t.buf) / 2 }

// Reset rewinds the cursor and clears the buffer.
func (t *Tap) Reset() {
	clear(t.buf)
	t.cursor = 0
	t.wraps = 0
}
