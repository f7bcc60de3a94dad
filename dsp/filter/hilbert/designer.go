package hilbert

import (
	"fmt"
	"math"
)

// Stages is the stage count per path of the synchronous AM network.
const Stages = 7

// SAMTransition is the normalized transition bandwidth that reproduces the
// synchronous AM coefficient sets with [DesignPair].
const SAMTransition = 1e-4

// SAMPath0 holds the coefficients of the delayed path.
var SAMPath0 = [Stages]float64{
	-0.328201924180698,
	-0.744171491539427,
	-0.923022915444215,
	-0.978490468768238,
	-0.994128272402075,
	-0.998458978159551,
	-0.999790306259206,
}

// SAMPath1 holds the coefficients of the direct path.
var SAMPath1 = [Stages]float64{
	-0.0991227952747244,
	-0.565619728761389,
	-0.857467122550052,
	-0.959123933111275,
	-0.988739372718090,
	-0.996959189310611,
	-0.999282492800792,
}

// DesignCoefficients returns n half-band polyphase all-pass coefficients
// for a normalized transition bandwidth in (0, 0.5). The design is the
// elliptic one: coefficients come out positive and ascending.
func DesignCoefficients(n int, transition float64) ([]float64, error) {
	k, q, err := ellipticParams(n, transition)
	if err != nil {
		return nil, err
	}

	order := 2*n + 1
	coeffs := make([]float64, n)

	for i := range coeffs {
		num, den := thetaSums(q, order, i+1)
		w := num * math.Pow(q, 0.25) / den
		ww := w * w

		r := math.Sqrt((1-ww*k)*(1-ww/k)) / (1 + ww)
		coeffs[i] = (1 - r) / (1 + r)
	}

	return coeffs, nil
}

// DesignPair splits 2·stages half-band coefficients alternately over the
// two paths, negated for the z⁻² sections of [Pair].
func DesignPair(stages int, transition float64) (path0, path1 []float64, err error) {
	coeffs, err := DesignCoefficients(2*stages, transition)
	if err != nil {
		return nil, nil, err
	}

	path0 = make([]float64, stages)
	path1 = make([]float64, stages)

	for i := range stages {
		path1[i], path0[i] = -coeffs[2*i], -coeffs[2*i+1]
	}

	return path0, path1, nil
}

// Attenuation returns the stopband attenuation in dB of an n-coefficient
// design.
func Attenuation(n int, transition float64) (float64, error) {
	_, q, err := ellipticParams(n, transition)
	if err != nil {
		return 0, err
	}

	v := 4 * math.Pow(q, float64(2*n+1)/2)

	return -10 * math.Log10(v/(1+v)), nil
}

// ellipticParams returns the selectivity k and the nome q of the design.
func ellipticParams(n int, transition float64) (k, q float64, err error) {
	if n < 1 {
		return 0, 0, fmt.Errorf("hilbert: coefficient count must be positive: %d", n)
	}

	if !(transition > 0 && transition < 0.5) {
		return 0, 0, fmt.Errorf("hilbert: transition must lie in (0, 0.5): %g", transition)
	}

	t := math.Tan((1 - 2*transition) * math.Pi / 4)
	k = t * t

	kp := math.Pow(1-k*k, 0.25)
	e := (1 - kp) / (2 * (1 + kp))
	e4 := e * e * e * e
	q = e * (1 + e4*(2+e4*(15+150*e4)))

	return k, q, nil
}

// thetaSums evaluates the numerator and denominator theta series for
// coefficient c of an order-N design until the terms vanish.
func thetaSums(q float64, order, c int) (num, den float64) {
	x := float64(c) * math.Pi / float64(order)
	den = 0.5

	sign := 1.0
	for m := 0; ; m++ {
		tn := sign * math.Pow(q, float64(m*(m+1))) * math.Sin(float64(2*m+1)*x)
		num += tn

		td := 0.0
		if m > 0 {
			td = sign * math.Pow(q, float64(m*m)) * math.Cos(float64(2*m)*x)
			den += td
		}

		if m > 0 && math.Abs(tn) <= 1e-100 && math.Abs(td) <= 1e-100 {
			return num, den
		}

		sign = -sign
	}
}

func validateCoefficients(coeffs []float64) error {
	if len(coeffs) == 0 {
		return fmt.Errorf("hilbert: no coefficients")
	}

	for i, c := range coeffs {
		if !(math.Abs(c) < 1) {
			return fmt.Errorf("hilbert: coefficient %d is not inside the unit circle: %g", i, c)
		}
	}

	return nil
}
