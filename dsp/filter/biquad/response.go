package biquad

import (
	"math"
	"math/cmplx"
)

// Response evaluates H(e^jω) at freqHz.
func (c *Coefficients) Response(freqHz, sampleRate float64) complex128 {
	z1 := cmplx.Exp(complex(0, -2*math.Pi*freqHz/sampleRate))
	z2 := z1 * z1

	num := complex(c.B0, 0) + complex(c.B1, 0)*z1 + complex(c.B2, 0)*z2
	den := 1 + complex(c.A1, 0)*z1 + complex(c.A2, 0)*z2

	return num / den
}

// MagnitudeDB returns |H| at freqHz in dB.
func (c *Coefficients) MagnitudeDB(freqHz, sampleRate float64) float64 {
	return 20 * math.Log10(cmplx.Abs(c.Response(freqHz, sampleRate)))
}

// DCGain returns H(1).
func (c *Coefficients) DCGain() float64 {
	return (c.B0 + c.B1 + c.B2) / (1 + c.A1 + c.A2)
}

// Response evaluates the cascade including its input gain.
func (c *Chain) Response(freqHz, sampleRate float64) complex128 {
	h := complex(c.gain, 0)
	for i := range c.sections {
		h *= c.sections[i].Response(freqHz, sampleRate)
	}

	return h
}

// MagnitudeDB returns |H| of the cascade at freqHz in dB.
func (c *Chain) MagnitudeDB(freqHz, sampleRate float64) float64 {
	return 20 * math.Log10(cmplx.Abs(c.Response(freqHz, sampleRate)))
}
