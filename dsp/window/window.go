// Package window generates the analysis windows used by the spectrum
// display, the noise reduction frames, the SINAD meter and the Kaiser FIR
// designs.
package window

import (
	"errors"
	"fmt"
	"math"
)

var (
	ErrInvalidLength = errors.New("window: length must be positive")
	ErrInvalidBeta   = errors.New("window: kaiser beta must be non-negative")
)

// Type identifies a window function.
type Type int

const (
	TypeRectangular Type = iota
	TypeHann
	TypeHamming
	TypeBlackman
	TypeBlackmanHarris4Term
	TypeFlatTop
	TypeKaiser
)

// DefaultKaiserBeta is the beta Generate uses for TypeKaiser.
const DefaultKaiserBeta = 8.0

// Sum-of-cosines coefficients, a0 - a1·cos + a2·cos2 - ...
var cosineTerms = map[Type][]float64{
	TypeHann:                {0.5, 0.5},
	TypeHamming:             {0.54, 0.46},
	TypeBlackman:            {0.42, 0.5, 0.08},
	TypeBlackmanHarris4Term: {0.35875, 0.48829, 0.14128, 0.01168},
	TypeFlatTop:             {0.21557895, 0.41663158, 0.277263158, 0.083578947, 0.006947368},
}

var typeNames = [...]string{"rectangular", "hann", "hamming", "blackman", "blackman-harris", "flat-top", "kaiser"}

func (t Type) String() string {
	if t < 0 || int(t) >= len(typeNames) {
		return fmt.Sprintf("Type(%d)", int(t))
	}

	return typeNames[t]
}

// Option configures Generate.
type Option func(*config)

type config struct {
	beta     float64
	periodic bool
}

// WithPeriodic generates the periodic form, one sample of a window one
// longer, as used for FFT frames.
func WithPeriodic() Option {
	return func(c *config) { c.periodic = true }
}

// WithBeta sets the Kaiser beta. Negative values are ignored.
func WithBeta(beta float64) Option {
	return func(c *config) {
		if beta >= 0 {
			c.beta = beta
		}
	}
}

// Generate returns n coefficients of t. Unknown types yield the
// rectangular window; n <= 0 yields nil.
func Generate(t Type, n int, opts ...Option) []float64 {
	if n <= 0 {
		return nil
	}

	cfg := config{beta: DefaultKaiserBeta}
	for _, o := range opts {
		o(&cfg)
	}

	span := float64(n - 1)
	if cfg.periodic {
		span = float64(n)
	}

	w := make([]float64, n)
	for i := range w {
		x := 0.0
		if span > 0 {
			x = float64(i) / span
		}

		switch {
		case t == TypeKaiser:
			w[i] = kaiser(x, cfg.beta)
		case cosineTerms[t] != nil:
			w[i] = cosineSum(x, cosineTerms[t])
		default:
			w[i] = 1
		}
	}

	return w
}

// Kaiser returns a symmetric Kaiser window.
func Kaiser(n int, beta float64) ([]float64, error) {
	if n <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidLength, n)
	}

	if beta < 0 || math.IsNaN(beta) {
		return nil, fmt.Errorf("%w: %g", ErrInvalidBeta, beta)
	}

	return Generate(TypeKaiser, n, WithBeta(beta)), nil
}

// CoherentGain is the mean of w: the amplitude a bin-centred sinusoid
// keeps after windowing.
func CoherentGain(w []float64) float64 {
	if len(w) == 0 {
		return 0
	}

	var sum float64
	for _, v := range w {
		sum += v
	}

	return sum / float64(len(w))
}

// ENBW returns the equivalent noise bandwidth of w in bins.
func ENBW(w []float64) float64 {
	var sum, sq float64
	for _, v := range w {
		sum += v
		sq += v * v
	}

	if sum == 0 {
		return math.Inf(1)
	}

	return float64(len(w)) * sq / (sum * sum)
}

func cosineSum(x float64, terms []float64) float64 {
	var v float64
	sign := 1.0

	for k, a := range terms {
		v += sign * a * math.Cos(2*math.Pi*float64(k)*x)
		sign = -sign
	}

	return v
}

func kaiser(x, beta float64) float64 {
	r := 2*x - 1
	return besselI0(beta*math.Sqrt(max(0, 1-r*r))) / besselI0(beta)
}

// besselI0 sums the power series of I0 until the terms stop mattering.
func besselI0(x float64) float64 {
	q := x * x / 4
	sum, term := 1.0, 1.0

	for k := 1.0; k < 500; k++ {
		term *= q / (k * k)
		sum += term

		if term < sum*1e-17 {
			break
		}
	}

	return sum
}
