package fir

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-sdr/dsp/window"
	"github.com/cwbudde/algo-vecmath"
)

// Lowpass designs a linear-phase Kaiser-windowed sinc lowpass with unity DC
// gain.
func Lowpass(cutoffHz, sampleRate float64, taps int, beta float64) ([]float64, error) {
	if taps < 1 {
		return nil, fmt.Errorf("%w: taps=%d", ErrDesign, taps)
	}

	if sampleRate <= 0 || cutoffHz <= 0 || cutoffHz >= sampleRate/2 {
		return nil, fmt.Errorf("%w: cutoff %g Hz at %g Hz", ErrDesign, cutoffHz, sampleRate)
	}

	w, err := window.Kaiser(taps, beta)
	if err != nil {
		return nil, fmt.Errorf("fir: %w", err)
	}

	fc := cutoffHz / sampleRate
	mid := float64(taps-1) / 2
	h := make([]float64, taps)

	var sum float64
	for n := range h {
		h[n] = 2 * fc * sinc(2*fc*(float64(n)-mid)) * w[n]
		sum += h[n]
	}

	if sum == 0 {
		return nil, fmt.Errorf("%w: zero DC gain", ErrDesign)
	}

	vecmath.ScaleBlock(h, h, 1/sum)

	return h, nil
}

// InterpolationLowpass designs an anti-image lowpass for interpolation by
// rate. The passband gain is rate.
func InterpolationLowpass(cutoffHz, sampleRate float64, taps int, beta float64, rate int) ([]float64, error) {
	if rate < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrRate, rate)
	}

	h, err := Lowpass(cutoffHz, sampleRate, taps, beta)
	if err != nil {
		return nil, err
	}

	vecmath.ScaleBlock(h, h, float64(rate))

	return h, nil
}

// QuadraturePair designs the I and Q channel filters of a phasing sideband
// selector with passband [lowHz, highHz]. For a complex input I+jQ, the sum
// of the filtered channels keeps positive frequencies (upper sideband) and
// the difference keeps negative frequencies (lower sideband), each at unity
// gain.
func QuadraturePair(lowHz, highHz, sampleRate float64, taps int, beta float64) (i, q []float64, err error) {
	if lowHz < 0 || highHz <= lowHz {
		return nil, nil, fmt.Errorf("%w: passband [%g, %g] Hz", ErrDesign, lowHz, highHz)
	}

	proto, err := Lowpass((highHz-lowHz)/2, sampleRate, taps, beta)
	if err != nil {
		return nil, nil, err
	}

	w0 := 2 * math.Pi * (lowHz + highHz) / 2 / sampleRate
	mid := float64(taps-1) / 2

	i = make([]float64, taps)
	q = make([]float64, taps)

	for n, p := range proto {
		s, c := math.Sincos(w0 * (float64(n) - mid))
		i[n] = p * c
		q[n] = -p * s
	}

	return i, q, nil
}

// LowpassPair returns identical I and Q lowpass filters for paths that keep
// both sidebands (AM, SAM, FM).
func LowpassPair(cutoffHz, sampleRate float64, taps int, beta float64) (i, q []float64, err error) {
	i, err = Lowpass(cutoffHz, sampleRate, taps, beta)
	if err != nil {
		return nil, nil, err
	}

	q = make([]float64, len(i))
	copy(q, i)

	return i, q, nil
}

func sinc(x float64) float64 {
	if x == 0 {
		return 1
	}

	px := math.Pi * x

	return math.Sin(px) / px
}
