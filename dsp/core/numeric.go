package core

import "math"

// TwoPi is 2π.
const TwoPi = 2 * math.Pi

// Clamp limits v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	return min(max(v, lo), hi)
}

// Sign returns -1 for negative x and 1 otherwise, zero included.
func Sign(x float64) float64 {
	if x < 0 {
		return -1
	}

	return 1
}

// WrapPhase folds an angle in radians into [0, 2π).
func WrapPhase(phase float64) float64 {
	phase = math.Mod(phase, TwoPi)
	if phase < 0 {
		phase += TwoPi
	}

	if phase >= TwoPi {
		return 0
	}

	return phase
}

// DBToLinear converts an amplitude ratio in dB to linear.
func DBToLinear(db float64) float64 {
	return math.Pow(10, db/20)
}

// LinearToDB converts a linear amplitude to dB: -Inf for zero, NaN for
// negative input.
func LinearToDB(v float64) float64 {
	switch {
	case v < 0:
		return math.NaN()
	case v == 0:
		return math.Inf(-1)
	}

	return 20 * math.Log10(v)
}
