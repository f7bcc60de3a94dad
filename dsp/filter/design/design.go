package design

import (
	"math"

	"github.com/cwbudde/algo-sdr/dsp/filter/biquad"
)

const defaultQ = 1 / math.Sqrt2

// prewarp holds the cookbook intermediates for one design frequency.
type prewarp struct {
	w0, cos, sin float64
}

func newPrewarp(freq, sampleRate float64) (prewarp, bool) {
	valid := func(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }
	if !valid(freq) || !valid(sampleRate) || sampleRate <= 0 || freq <= 0 || freq >= sampleRate/2 {
		return prewarp{}, false
	}

	w0 := 2 * math.Pi * freq / sampleRate

	return prewarp{w0: w0, cos: math.Cos(w0), sin: math.Sin(w0)}, true
}

// alpha is sin(w0)/2Q; invalid Q falls back to Butterworth.
func (p prewarp) alpha(q float64) float64 {
	if !(q > 0) || math.IsInf(q, 0) {
		q = defaultQ
	}

	return p.sin / (2 * q)
}

// section divides through by a0.
func section(b0, b1, b2, a0, a1, a2 float64) biquad.Coefficients {
	if a0 == 0 || math.IsNaN(a0) || math.IsInf(a0, 0) {
		return biquad.Coefficients{}
	}

	return biquad.Coefficients{B0: b0 / a0, B1: b1 / a0, B2: b2 / a0, A1: a1 / a0, A2: a2 / a0}
}

// Lowpass is the cookbook second-order lowpass.
func Lowpass(freq, q, sampleRate float64) biquad.Coefficients {
	return pass(freq, q, sampleRate, 1)
}

// Highpass is the cookbook second-order highpass.
func Highpass(freq, q, sampleRate float64) biquad.Coefficients {
	return pass(freq, q, sampleRate, -1)
}

// pass designs the lowpass for s = 1 and the highpass for s = -1.
func pass(freq, q, sampleRate, s float64) biquad.Coefficients {
	p, ok := newPrewarp(freq, sampleRate)
	if !ok {
		return biquad.Coefficients{}
	}

	a := p.alpha(q)
	b1 := s - p.cos
	b0 := s * b1 / 2

	return section(b0, b1, b0, 1+a, -2*p.cos, 1-a)
}

// Notch has unity gain away from freq and a zero on it.
func Notch(freq, q, sampleRate float64) biquad.Coefficients {
	p, ok := newPrewarp(freq, sampleRate)
	if !ok {
		return biquad.Coefficients{}
	}

	a := p.alpha(q)

	return section(1, -2*p.cos, 1, 1+a, -2*p.cos, 1-a)
}

// BandpassBW is the constant-skirt bandpass with bwOctaves between the
// half-gain points and peakGain at freq.
func BandpassBW(freq, bwOctaves, peakGain, sampleRate float64) biquad.Coefficients {
	p, ok := newPrewarp(freq, sampleRate)
	if !ok || bwOctaves <= 0 {
		return biquad.Coefficients{}
	}

	a := p.sin * math.Sinh(math.Ln2/2*bwOctaves*p.w0/p.sin)

	return section(peakGain*a, 0, -peakGain*a, 1+a, -2*p.cos, 1-a)
}

// ShelfSlopeQ returns the Q of a shelf with the given gain and slope S,
// where S = 1 is the steepest slope without overshoot. Non-positive or
// unreachable slopes give the Butterworth Q.
func ShelfSlopeQ(gainDB, slope float64) float64 {
	if slope <= 0 {
		return defaultQ
	}

	g := math.Pow(10, gainDB/40)
	if r := (g+1/g)*(1/slope-1) + 2; r > 0 {
		return 1 / math.Sqrt(r)
	}

	return defaultQ
}

// LowShelf boosts or cuts below freq by gainDB.
func LowShelf(freq, gainDB, q, sampleRate float64) biquad.Coefficients {
	return shelf(freq, gainDB, q, sampleRate, 1)
}

// HighShelf boosts or cuts above freq by gainDB.
func HighShelf(freq, gainDB, q, sampleRate float64) biquad.Coefficients {
	return shelf(freq, gainDB, q, sampleRate, -1)
}

// shelf designs the low shelf for s = 1 and the high shelf for s = -1;
// the two differ by the sign of cos(w0) and of the first-order terms.
func shelf(freq, gainDB, q, sampleRate, s float64) biquad.Coefficients {
	p, ok := newPrewarp(freq, sampleRate)
	if !ok {
		return biquad.Coefficients{}
	}

	g := math.Pow(10, gainDB/40)
	beta := 2 * math.Sqrt(g) * p.alpha(q)
	c := s * p.cos

	return section(
		g*((g+1)-(g-1)*c+beta),
		2*s*g*((g-1)-(g+1)*c),
		g*((g+1)-(g-1)*c-beta),
		(g+1)+(g-1)*c+beta,
		-2*s*((g-1)+(g+1)*c),
		(g+1)+(g-1)*c-beta,
	)
}
