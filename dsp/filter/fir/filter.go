package fir

import (
	"math"
	"math/cmplx"
)

// Filter is a direct-form FIR filter for block processing. It keeps the
// last len(taps)-1 inputs as history and convolves each block against
// history plus block in a linear scratch buffer.
type Filter struct {
	taps []float64
	work []float64 // history followed by the current block
	one  [1]float64
}

// New returns a filter over a copy of taps. An empty tap set yields a
// filter that outputs zeros.
func New(taps []float64) *Filter {
	f := &Filter{}
	f.SetCoefficients(taps)

	return f
}

// Len returns the number of taps.
func (f *Filter) Len() int { return len(f.taps) }

// SetCoefficients replaces the taps. The history survives when the tap
// count is unchanged.
func (f *Filter) SetCoefficients(taps []float64) {
	if len(taps) != len(f.taps) {
		f.work = resize(f.work, max(len(taps)-1, 0))
	}

	f.taps = append(f.taps[:0], taps...)
}

// Reserve grows the buffers for up to taps coefficients and blocks of up to
// block samples. SetCoefficients and ProcessBlock within those limits do
// not allocate.
func (f *Filter) Reserve(taps, block int) {
	f.taps = reserve(f.taps, taps)
	f.work = reserve(f.work, max(taps-1, 0)+block)
}

// ProcessBlock filters buf in place.
//
//	y[n] = Σ h[k]·x[n-k]
func (f *Filter) ProcessBlock(buf []float64) {
	n := len(f.taps)
	if n == 0 {
		clear(buf)
		return
	}

	hist := n - 1
	f.work = append(f.work[:hist], buf...)

	for i := range buf {
		// x[i+hist] is the newest sample of output i.
		x := f.work[i : i+n]

		var y float64
		for k, h := range f.taps {
			y += h * x[hist-k]
		}

		buf[i] = y
	}

	copy(f.work, f.work[len(buf):len(buf)+hist])
	f.work = f.work[:hist]
}

// ProcessSample filters one sample.
func (f *Filter) ProcessSample(x float64) float64 {
	f.one[0] = x
	f.ProcessBlock(f.one[:])

	return f.one[0]
}

// Reset zeroes the history.
func (f *Filter) Reset() {
	clear(f.work)
}

// Response evaluates H(e^jω) of taps at freqHz.
func Response(taps []float64, freqHz, sampleRate float64) complex128 {
	w := -2 * math.Pi * freqHz / sampleRate

	var h complex128
	for k, c := range taps {
		h += complex(c, 0) * cmplx.Rect(1, w*float64(k))
	}

	return h
}

// MagnitudeDB returns |H| of taps at freqHz in dB.
func MagnitudeDB(taps []float64, freqHz, sampleRate float64) float64 {
	return 20 * math.Log10(cmplx.Abs(Response(taps, freqHz, sampleRate)))
}
