package biquad

// Coefficients of one second-order section with a0 normalized to 1, in
// the textbook sign convention:
//
//	H(z) = (B0 + B1 z⁻¹ + B2 z⁻²) / (1 + A1 z⁻¹ + A2 z⁻²)
type Coefficients struct {
	B0, B1, B2 float64
	A1, A2     float64
}

// Section runs one biquad in transposed direct form II.
type Section struct {
	Coefficients

	s1, s2 float64
}

// ProcessSample filters one sample.
func (s *Section) ProcessSample(x float64) float64 {
	y := s.B0*x + s.s1
	s.s1 = s.B1*x - s.A1*y + s.s2
	s.s2 = s.B2*x - s.A2*y

	return y
}

// ProcessBlock filters buf in place.
func (s *Section) ProcessBlock(buf []float64) {
	c := s.Coefficients
	s1, s2 := s.s1, s.s2

	for i, x := range buf {
		y := c.B0*x + s1
		s1 = c.B1*x - c.A1*y + s2
		s2 = c.B2*x - c.A2*y
		buf[i] = y
	}

	s.s1, s.s2 = s1, s2
}

// Reset clears the state.
func (s *Section) Reset() {
	s.s1, s.s2 = 0, 0
}
