package lattice

import (
	"errors"
	"fmt"
	"math"

	"github.com/cwbudde/algo-sdr/dsp/filter/biquad"
)

// ErrDenominator is returned when the leading denominator coefficient is zero.
var ErrDenominator = errors.New("lattice: a[0] must be non-zero")

// FromDirectForm converts the transfer function
//
//	H(z) = (b0 + b1 z^-1 + ... + bN z^-N) / (a0 + a1 z^-1 + ... + aN z^-N)
//
// into reflection coefficients k (kN..k1) and ladder coefficients v
// (vN..v0). The numerator is zero-padded to the denominator order; a longer
// numerator is rejected.
func FromDirectForm(b, a []float64) (k, v []float64, err error) {
	if len(a) == 0 || a[0] == 0 {
		return nil, nil, ErrDenominator
	}

	order := len(a) - 1
	if len(b) > len(a) {
		return nil, nil, fmt.Errorf("lattice: numerator order %d exceeds denominator order %d", len(b)-1, order)
	}

	am := make([]float64, order+1)
	cm := make([]float64, order+1)

	for i := range a {
		am[i] = a[i] / a[0]
	}

	for i := range b {
		cm[i] = b[i] / a[0]
	}

	k = make([]float64, order)
	v = make([]float64, order+1)
	next := make([]float64, order+1)

	for m := order; m >= 1; m-- {
		km := am[m]
		vm := cm[m]

		if !(math.Abs(km) < 1) {
			return nil, nil, fmt.Errorf("%w: stage %d k=%g", ErrUnstable, m, km)
		}

		k[order-m] = km
		v[order-m] = vm

		for i := range m {
			cm[i] -= vm * am[m-i]
		}

		den := 1 - km*km
		for i := range m {
			next[i] = (am[i] - km*am[m-i]) / den
		}

		copy(am, next[:m])
	}

	v[order] = cm[0]

	return k, v, nil
}

// FromBiquads multiplies out a cascade of sections and converts the product
// to lattice form.
func FromBiquads(sections []biquad.Coefficients) (k, v []float64, err error) {
	b := []float64{1}
	a := []float64{1}

	for _, s := range sections {
		b = polyMul(b, []float64{s.B0, s.B1, s.B2})
		a = polyMul(a, []float64{1, s.A1, s.A2})
	}

	return FromDirectForm(b, a)
}

// FromBiquadsGain is FromBiquads with an extra overall gain applied to the
// ladder coefficients.
func FromBiquadsGain(sections []biquad.Coefficients, gain float64) (k, v []float64, err error) {
	k, v, err = FromBiquads(sections)
	if err != nil {
		return nil, nil, err
	}

	for i := range v {
		v[i] *= gain
	}

	return k, v, nil
}

func polyMul(p, q []float64) []float64 {
	out := make([]float64, len(p)+len(q)-1)
	for i, x := range p {
		for j, y := range q {
			out[i+j] += x * y
		}
	}

	return out
}
