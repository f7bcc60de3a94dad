// Package delay provides the sample history behind the LMS noise
// reduction and notch filters.
package delay

import (
	"errors"
	"fmt"
)

// ErrSize is returned for a non-positive delay line size.
var ErrSize = errors.New("delay: size must be positive")

// Line is a circular history whose capacity is a power of two. New samples
// are written downwards, so tap k of a window walks forward from the head.
type Line struct {
	buf  []float64
	mask int
	head int
}

// New returns a line holding at least size samples.
func New(size int) (*Line, error) {
	if size <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrSize, size)
	}

	n := 1
	for n < size {
		n *= 2
	}

	return &Line{buf: make([]float64, n), mask: n - 1}, nil
}

// Len returns the capacity.
func (l *Line) Len() int { return len(l.buf) }

// Write pushes x as the newest sample.
func (l *Line) Write(x float64) {
	l.head = (l.head - 1) & l.mask
	l.buf[l.head] = x
}

// Read returns the sample written k writes ago; Read(0) is the newest.
func (l *Line) Read(k int) float64 {
	return l.buf[(l.head+k)&l.mask]
}

// Window exposes the storage and the head index: element (head+k)&(Len()-1)
// is Read(k).
func (l *Line) Window() (buf []float64, head int) {
	return l.buf, l.head
}

// Reset zeroes the history.
func (l *Line) Reset() {
	clear(l.buf)
	l.head = 0
}
