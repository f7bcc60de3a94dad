package biquad

// Chain cascades sections behind an input gain.
type Chain struct {
	sections []Section
	gain     float64
}

// NewChain builds a unity-gain cascade with one section per entry.
func NewChain(coeffs []Coefficients) *Chain {
	c := &Chain{gain: 1}
	c.UpdateCoefficients(coeffs, 1)

	return c
}

// NewPassthroughChain returns n identity sections.
func NewPassthroughChain(n int) *Chain {
	coeffs := make([]Coefficients, n)
	for i := range coeffs {
		coeffs[i] = Passthrough
	}

	return NewChain(coeffs)
}

// ProcessSample filters one sample through every section.
func (c *Chain) ProcessSample(x float64) float64 {
	x *= c.gain
	for i := range c.sections {
		x = c.sections[i].ProcessSample(x)
	}

	return x
}

// ProcessBlock filters buf in place.
func (c *Chain) ProcessBlock(buf []float64) {
	if c.gain != 1 {
		for i := range buf {
			buf[i] *= c.gain
		}
	}

	for i := range c.sections {
		c.sections[i].ProcessBlock(buf)
	}
}

// ProcessBlockTo filters src into dst, which must be at least as long.
func (c *Chain) ProcessBlockTo(dst, src []float64) {
	dst = dst[:len(src)]
	copy(dst, src)
	c.ProcessBlock(dst)
}

// Reset clears the state of every section.
func (c *Chain) Reset() {
	for i := range c.sections {
		c.sections[i].Reset()
	}
}

// Order returns twice the section count.
func (c *Chain) Order() int { return 2 * len(c.sections) }

// Gain returns the input gain.
func (c *Chain) Gain() float64 { return c.gain }

// SetGain sets the input gain.
func (c *Chain) SetGain(g float64) { c.gain = g }

// UpdateCoefficients swaps in new coefficients and gain. With an unchanged
// section count the filter state carries over, so that a live EQ change
// does not click; otherwise the sections restart from zero.
func (c *Chain) UpdateCoefficients(coeffs []Coefficients, gain float64) {
	c.gain = gain

	if len(coeffs) != len(c.sections) {
		c.sections = make([]Section, len(coeffs))
	}

	for i := range coeffs {
		c.sections[i].Coefficients = coeffs[i]
	}
}
