package biquad

import (
	"math"
	"math/cmplx"
)

// Negated is a biquad section in the feedback-negated layout
// {b0, b1, b2, a1, a2}, where the recursion adds the feedback terms:
//
//	y = b0*x + b1*x' + b2*x'' + a1*y' + a2*y''
//
// This is the layout of the receiver's EQ coefficient tables.
type Negated struct {
	B0, B1, B2 float64
	A1, A2     float64
}

// Passthrough is the identity section {1, 0, 0, 0, 0}. It is the same in
// both sign layouts.
var Passthrough = Coefficients{B0: 1}

// Coefficients converts n to the textbook sign convention used by [Section].
func (n Negated) Coefficients() Coefficients {
	return Coefficients{B0: n.B0, B1: n.B1, B2: n.B2, A1: -n.A1, A2: -n.A2}
}

// Negate converts c to the feedback-negated layout.
func (c Coefficients) Negate() Negated {
	return Negated{B0: c.B0, B1: c.B1, B2: c.B2, A1: -c.A1, A2: -c.A2}
}

// IsPassthrough reports whether c is exactly {1, 0, 0, 0, 0}.
func (c Coefficients) IsPassthrough() bool {
	return c == Passthrough
}

// Poles returns the z-plane poles of the section denominator:
//
//	1 + A1*z^-1 + A2*z^-2 = 0
func (c *Coefficients) Poles() [2]complex128 {
	disc := cmplx.Sqrt(complex(c.A1*c.A1-4*c.A2, 0))
	return [2]complex128{
		(complex(-c.A1, 0) + disc) / 2,
		(complex(-c.A1, 0) - disc) / 2,
	}
}

// IsStable reports whether both poles lie strictly inside the unit circle and
// every coefficient is finite.
func (c *Coefficients) IsStable() bool {
	for _, v := range [...]float64{c.B0, c.B1, c.B2, c.A1, c.A2} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}

	for _, p := range c.Poles() {
		if cmplx.Abs(p) >= 1 {
			return false
		}
	}

	return true
}
