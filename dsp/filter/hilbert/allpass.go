package hilbert

// Branch is one path of the network: a cascade of z^-2 all-pass stages.
type Branch struct {
	coeffs []float64
	state  []float64 // per stage: x[n-1], x[n-2], y[n-1], y[n-2]
}

// NewBranch creates a path from all-pass coefficients. Every coefficient
// must be finite with magnitude below 1.
func NewBranch(coeffs []float64) (*Branch, error) {
	if err := validateCoefficients(coeffs); err != nil {
		return nil, err
	}

	c := make([]float64, len(coeffs))
	copy(c, coeffs)

	return &Branch{
		coeffs: c,
		state:  make([]float64, 4*len(c)),
	}, nil
}

// ProcessSample runs one sample through every stage.
func (b *Branch) ProcessSample(x float64) float64 {
	s := b.state
	for j, c := range b.coeffs {
		st := s[4*j : 4*j+4]
		y := c*(x-st[3]) + st[1]
		st[1], st[0] = st[0], x
		st[3], st[2] = st[2], y
		x = y
	}

	return x
}

// ProcessBlock filters buf in place.
func (b *Branch) ProcessBlock(buf []float64) {
	for i, x := range buf {
		buf[i] = b.ProcessSample(x)
	}
}

// Reset clears the stage history.
func (b *Branch) Reset() {
	clear(b.state)
}

// NumStages returns the number of all-pass stages.
func (b *Branch) NumStages() int { return len(b.coeffs) }

// Pair runs two inputs through the two paths of a quadrature network. The
// path-0 input is delayed by one sample.
type Pair struct {
	p0, p1  *Branch
	delayed float64
}

// NewPair creates a network from path coefficients.
func NewPair(path0, path1 []float64) (*Pair, error) {
	b0, err := NewBranch(path0)
	if err != nil {
		return nil, err
	}

	b1, err := NewBranch(path1)
	if err != nil {
		return nil, err
	}

	return &Pair{p0: b0, p1: b1}, nil
}

// NewSAMPair creates a network with the synchronous AM coefficient sets.
func NewSAMPair() *Pair {
	p, err := NewPair(SAMPath0[:], SAMPath1[:])
	if err != nil {
		panic(err)
	}

	return p
}

// ProcessSample feeds x0 (through the one-sample delay) into path 0 and x1
// into path 1 and returns both path outputs.
func (p *Pair) ProcessSample(x0, x1 float64) (y0, y1 float64) {
	d := p.delayed
	p.delayed = x0

	return p.p0.ProcessSample(d), p.p1.ProcessSample(x1)
}

// Analytic feeds the same real sample to both paths and returns the
// in-phase (path 1) and quadrature (path 0) outputs.
func (p *Pair) Analytic(x float64) (i, q float64) {
	q, i = p.ProcessSample(x, x)
	return i, q
}

// Reset clears both paths and the delay.
func (p *Pair) Reset() {
	p.p0.Reset()
	p.p1.Reset()
	p.delayed = 0
}
