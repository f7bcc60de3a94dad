package lattice

import (
	"errors"
	"fmt"
)

var (
	// ErrLadderLength is returned when len(v) != len(k)+1.
	ErrLadderLength = errors.New("lattice: ladder coefficients must have len(k)+1 entries")
	// ErrUnstable is returned when a reflection coefficient has magnitude >= 1.
	ErrUnstable = errors.New("lattice: reflection coefficient magnitude must be < 1")
)

// Filter is a lattice-ladder IIR filter.
type Filter struct {
	k     []float64
	v     []float64
	state []float64
}

// New creates a filter from reflection coefficients k (kN..k1) and ladder
// coefficients v (vN..v0). Empty k and v create a disabled filter. The
// slices are referenced, not copied, and must not be modified afterwards.
func New(k, v []float64) (*Filter, error) {
	f := &Filter{}
	if len(k) == 0 && len(v) == 0 {
		return f, nil
	}

	if err := f.Configure(k, v); err != nil {
		return nil, err
	}

	return f, nil
}

// Validate checks a coefficient set without building a filter.
func Validate(k, v []float64) error {
	if len(v) != len(k)+1 {
		return fmt.Errorf("%w: len(k)=%d len(v)=%d", ErrLadderLength, len(k), len(v))
	}

	for i, c := range k {
		if !(c > -1 && c < 1) {
			return fmt.Errorf("%w: k[%d]=%g", ErrUnstable, i, c)
		}
	}

	return nil
}

// Configure disables the filter, then points it at k and v and clears the
// state. On error the filter stays disabled.
func (f *Filter) Configure(k, v []float64) error {
	f.Disable()

	if err := Validate(k, v); err != nil {
		return err
	}

	if cap(f.state) < len(k) {
		f.state = make([]float64, len(k))
	}

	f.state = f.state[:len(k)]
	clear(f.state)
	f.v = v
	f.k = k

	return nil
}

// Reserve grows the state for up to stages lattice stages, so that a later
// Configure within that limit does not allocate.
func (f *Filter) Reserve(stages int) {
	if cap(f.state) < stages {
		f.state = append(make([]float64, 0, stages), f.state...)
	}
}

// Disable sets the stage count to zero, drops the coefficients and zeroes
// the state.
func (f *Filter) Disable() {
	f.k = nil
	f.v = nil
	clear(f.state[:cap(f.state)])
	f.state = f.state[:0]
}

// NumStages returns the number of lattice stages; zero means passthrough.
func (f *Filter) NumStages() int { return len(f.k) }

// ProcessSample filters one sample.
func (f *Filter) ProcessSample(x float64) float64 {
	n := len(f.k)
	if n == 0 {
		return x
	}

	k, v, s := f.k, f.v[:n+1], f.state[:n]
	fc := x

	var acc float64
	for j := range n {
		g := s[j]
		fn := fc - k[j]*g
		gn := fn*k[j] + g
		acc += gn * v[j]

		if j > 0 {
			s[j-1] = gn
		}

		fc = fn
	}

	acc += fc * v[n]
	s[n-1] = fc

	return acc
}

// ProcessBlock filters buf in place.
func (f *Filter) ProcessBlock(buf []float64) {
	if len(f.k) == 0 {
		return
	}

	for i, x := range buf {
		buf[i] = f.ProcessSample(x)
	}
}

// ProcessBlockTo filters src into dst. Both slices must have the same length.
func (f *Filter) ProcessBlockTo(dst, src []float64) {
	if len(src) == 0 {
		return
	}

	_ = dst[len(src)-1]

	if len(f.k) == 0 {
		copy(dst, src)
		return
	}

	for i, x := range src {
		dst[i] = f.ProcessSample(x)
	}
}

// Reset clears the state without touching the coefficients.
func (f *Filter) Reset() {
	clear(f.state)
}
