package spectrum

import (
	"errors"
	"fmt"
	"math"
)

var (
	ErrSampleRate = errors.New("spectrum: sample rate must be positive")
	ErrFrequency  = errors.New("spectrum: frequency outside [0, fs/2]")
	ErrBinCount   = errors.New("spectrum: frequency count mismatch")
)

// MultiGoertzel evaluates a fixed set of DFT bins over the samples fed
// since the last flush. The bins need not be integer multiples of the
// frame rate.
type MultiGoertzel struct {
	sampleRate float64
	coeff      []float64
	s1, s2     []float64
}

// NewMultiGoertzel returns a bank tuned to frequencies.
func NewMultiGoertzel(frequencies []float64, sampleRate float64) (*MultiGoertzel, error) {
	if !(sampleRate > 0) || math.IsInf(sampleRate, 0) {
		return nil, fmt.Errorf("%w: %v", ErrSampleRate, sampleRate)
	}

	n := len(frequencies)
	m := &MultiGoertzel{
		sampleRate: sampleRate,
		coeff:      make([]float64, n),
		s1:         make([]float64, n),
		s2:         make([]float64, n),
	}

	if err := m.SetFrequencies(frequencies); err != nil {
		return nil, err
	}

	return m, nil
}

// Len returns the number of bins.
func (m *MultiGoertzel) Len() int { return len(m.coeff) }

// SetFrequencies retunes every bin and clears the accumulators. On error
// the bank is left unchanged.
func (m *MultiGoertzel) SetFrequencies(frequencies []float64) error {
	if len(frequencies) != len(m.coeff) {
		return fmt.Errorf("%w: %d for %d bins", ErrBinCount, len(frequencies), len(m.coeff))
	}

	for _, f := range frequencies {
		if !(f >= 0 && f <= m.sampleRate/2) {
			return fmt.Errorf("%w: %v Hz at %v Hz", ErrFrequency, f, m.sampleRate)
		}
	}

	for i, f := range frequencies {
		m.coeff[i] = 2 * math.Cos(2*math.Pi*f/m.sampleRate)
	}

	m.Reset()

	return nil
}

// ProcessBlock feeds x to every bin.
func (m *MultiGoertzel) ProcessBlock(x []float64) {
	for i, c := range m.coeff {
		s1, s2 := m.s1[i], m.s2[i]
		for _, v := range x {
			s1, s2 = v+c*s1-s2, s1
		}

		m.s1[i], m.s2[i] = s1, s2
	}
}

// Powers writes |X|² of every bin to dst, which must hold Len() values.
func (m *MultiGoertzel) Powers(dst []float64) {
	for i, c := range m.coeff {
		s1, s2 := m.s1[i], m.s2[i]
		dst[i] = max(0, s1*s1+s2*s2-c*s1*s2)
	}
}

// Flush writes |X| of every bin to dst and starts a new frame.
func (m *MultiGoertzel) Flush(dst []float64) {
	m.Powers(dst)

	for i := range m.coeff {
		dst[i] = math.Sqrt(dst[i])
	}

	m.Reset()
}

// Reset clears the accumulators.
func (m *MultiGoertzel) Reset() {
	clear(m.s1)
	clear(m.s2)
}
