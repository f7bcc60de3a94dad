package fir

import "fmt"

// Decimator is a block FIR decimator. Output sample m of a block is computed
// at input index m*rate+rate-1, so it always includes the newest sample of
// its group.
//
// The state buffer holds taps-1 history samples followed by one block of
// input; it is sized once and never reallocated while processing.
type Decimator struct {
	coeffs    []float64
	rate      int
	blockSize int
	state     []float64
}

// NewDecimator creates a decimator by rate for blocks of up to blockSize
// input samples.
func NewDecimator(coeffs []float64, rate, blockSize int) (*Decimator, error) {
	d := &Decimator{blockSize: blockSize}
	if err := d.Configure(coeffs, rate); err != nil {
		return nil, err
	}

	return d, nil
}

// Configure replaces the taps and the rate. History samples are kept when
// the tap count is unchanged; otherwise the state is cleared. The first
// taps-1 outputs after a swap are start-up transients.
func (d *Decimator) Configure(coeffs []float64, rate int) error {
	if len(coeffs) == 0 {
		return ErrNoTaps
	}

	if rate < 1 {
		return fmt.Errorf("%w: got %d", ErrRate, rate)
	}

	if d.blockSize <= 0 || d.blockSize%rate != 0 {
		return fmt.Errorf("%w: block %d, rate %d", ErrBlockSize, d.blockSize, rate)
	}

	if len(coeffs) != len(d.coeffs) {
		d.state = resize(d.state, len(coeffs)+d.blockSize-1)
	}

	d.coeffs = append(d.coeffs[:0], coeffs...)
	d.rate = rate

	return nil
}

// Reserve grows the buffers for up to taps coefficients, so that a later
// Configure within that limit does not allocate.
func (d *Decimator) Reserve(taps int) {
	d.coeffs = reserve(d.coeffs, taps)
	d.state = reserve(d.state, taps+d.blockSize-1)
}

// SetCoefficients swaps the taps without changing the rate.
func (d *Decimator) SetCoefficients(coeffs []float64) error {
	return d.Configure(coeffs, d.rate)
}

// Rate returns the decimation factor.
func (d *Decimator) Rate() int { return d.rate }

// NumTaps returns the tap count.
func (d *Decimator) NumTaps() int { return len(d.coeffs) }

// StateLen returns the length of the state buffer (taps+blockSize-1).
func (d *Decimator) StateLen() int { return len(d.state) }

// Process decimates src into dst and returns the number of output samples,
// len(src)/rate. Input beyond the last whole group of rate samples and
// beyond blockSize is ignored. dst must hold len(src)/rate samples and may
// alias src.
func (d *Decimator) Process(dst, src []float64) int {
	n := min(len(src), d.blockSize)
	n -= n % d.rate
	if n == 0 {
		return 0
	}

	hist := len(d.coeffs) - 1
	copy(d.state[hist:], src[:n])

	out := n / d.rate
	_ = dst[out-1]

	for m := range out {
		pos := hist + m*d.rate + d.rate - 1

		var acc float64
		for k, c := range d.coeffs {
			acc += c * d.state[pos-k]
		}

		dst[m] = acc
	}

	copy(d.state, d.state[n:n+hist])

	return out
}

// Reset clears the state buffer.
func (d *Decimator) Reset() {
	clear(d.state)
}
