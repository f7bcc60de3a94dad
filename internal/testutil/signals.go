// Package testutil holds deterministic test signals and tolerance checks
// shared by the package tests.
package testutil

import (
	"math"
	"math/rand/v2"
)

// DeterministicSine returns amplitude·sin(2πft) sampled at sampleRate.
func DeterministicSine(freqHz, sampleRate, amplitude float64, length int) []float64 {
	out := make([]float64, length)
	step := 2 * math.Pi * freqHz / sampleRate

	for i := range out {
		out[i] = amplitude * math.Sin(step*float64(i))
	}

	return out
}

// ComplexTone returns the I and Q channels of amplitude·e^(j2πft). A
// negative frequency lies below the tuned frequency.
func ComplexTone(freqHz, sampleRate, amplitude float64, length int) (i, q []float64) {
	i = make([]float64, length)
	q = make([]float64, length)
	step := 2 * math.Pi * freqHz / sampleRate

	for n := range i {
		s, c := math.Sincos(step * float64(n))
		i[n] = amplitude * c
		q[n] = amplitude * s
	}

	return i, q
}

// DeterministicNoise returns uniform noise in [-amplitude, amplitude). The
// same seed always yields the same samples.
func DeterministicNoise(seed int64, amplitude float64, length int) []float64 {
	out := make([]float64, length)
	rng := rand.New(rand.NewPCG(uint64(seed), uint64(seed)^0x5851f42d4c957f2d))

	for i := range out {
		out[i] = (rng.Float64()*2 - 1) * amplitude
	}

	return out
}

// DC returns length samples of value.
func DC(value float64, length int) []float64 {
	out := make([]float64, length)
	for i := range out {
		out[i] = value
	}

	return out
}

// RMS returns the root mean square of x, zero for an empty slice.
func RMS(x []float64) float64 {
	if len(x) == 0 {
		return 0
	}

	var sum float64
	for _, v := range x {
		sum += v * v
	}

	return math.Sqrt(sum / float64(len(x)))
}
