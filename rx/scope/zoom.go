package scope

import (
	"errors"
	"fmt"

	"github.com/cwbudde/algo-sdr/dsp/filter/biquad"
	"github.com/cwbudde/algo-sdr/dsp/filter/design"
	"github.com/cwbudde/algo-sdr/dsp/filter/fir"
)

// MaxMagnify is the largest zoom exponent; the zoom factor is 1<<magnify.
const MaxMagnify = 5

const zoomOrder = 8

// ErrMagnify is returned for a zoom exponent outside [0, MaxMagnify].
var ErrMagnify = errors.New("scope: magnify out of range")

// Zoom magnifies the center of the I/Q spectrum by lowpass filtering and
// decimating both channels.
type Zoom struct {
	sampleRate float64
	blockSize  int
	magnify    int

	lpI, lpQ   *biquad.Chain
	decI, decQ *fir.Decimator
	bufI, bufQ []float64
}

// NewZoom creates a zoom stage with factor 1<<magnify for blocks of
// blockSize samples at sampleRate.
func NewZoom(magnify int, sampleRate float64, blockSize int) (*Zoom, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("scope: sample rate %g", sampleRate)
	}

	z := &Zoom{
		sampleRate: sampleRate,
		blockSize:  blockSize,
		lpI:        biquad.NewPassthroughChain(zoomOrder / 2),
		lpQ:        biquad.NewPassthroughChain(zoomOrder / 2),
		bufI:       make([]float64, blockSize),
		bufQ:       make([]float64, blockSize),
	}

	var err error
	if z.decI, err = fir.NewDecimator([]float64{1}, 1, blockSize); err != nil {
		return nil, fmt.Errorf("scope: %w", err)
	}

	if z.decQ, err = fir.NewDecimator([]float64{1}, 1, blockSize); err != nil {
		return nil, fmt.Errorf("scope: %w", err)
	}

	if err := z.SetMagnify(magnify); err != nil {
		return nil, err
	}

	return z, nil
}

// SetMagnify changes the zoom exponent and clears the filter state.
func (z *Zoom) SetMagnify(magnify int) error {
	if magnify < 0 || magnify > MaxMagnify {
		return fmt.Errorf("%w: %d", ErrMagnify, magnify)
	}

	factor := 1 << magnify
	if z.blockSize%factor != 0 {
		return fmt.Errorf("scope: %w: block %d, zoom %d", fir.ErrBlockSize, z.blockSize, factor)
	}

	if magnify > 0 {
		coeffs := design.ButterworthLP(z.sampleRate/float64(2*factor), zoomOrder, z.sampleRate)
		z.lpI.UpdateCoefficients(coeffs, 1)
		z.lpQ.UpdateCoefficients(coeffs, 1)
	}

	if err := z.decI.Configure([]float64{1}, factor); err != nil {
		return fmt.Errorf("scope: %w", err)
	}

	if err := z.decQ.Configure([]float64{1}, factor); err != nil {
		return fmt.Errorf("scope: %w", err)
	}

	z.magnify = magnify
	z.Reset()

	return nil
}

// Magnify returns the zoom exponent.
func (z *Zoom) Magnify() int { return z.magnify }

// Factor returns the zoom factor 1<<Magnify.
func (z *Zoom) Factor() int { return 1 << z.magnify }

// SampleRate returns the rate of the zoomed output.
func (z *Zoom) SampleRate() float64 { return z.sampleRate / float64(z.Factor()) }

// Process filters and decimates one block. The returned slices alias
// internal buffers and stay valid until the next call. Without zoom the
// inputs are returned unchanged.
func (z *Zoom) Process(i, q []float64) (zi, zq []float64) {
	if z.magnify == 0 {
		return i, q
	}

	z.lpI.ProcessBlockTo(z.bufI[:len(i)], i)
	z.lpQ.ProcessBlockTo(z.bufQ[:len(q)], q)

	n := z.decI.Process(z.bufI, z.bufI[:len(i)])
	z.decQ.Process(z.bufQ, z.bufQ[:len(q)])

	return z.bufI[:n], z.bufQ[:n]
}

// Reset clears the filter state.
func (z *Zoom) Reset() {
	z.lpI.Reset()
	z.lpQ.Reset()
	z.decI.Reset()
	z.decQ.Reset()
}
