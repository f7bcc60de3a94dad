package fir

import "fmt"

// Interpolator is a polyphase block FIR interpolator:
//
//	y[n*L+j] = sum_{p=0}^{P-1} h[p*L+j] * x[n-p],  P = taps/L
//
// The taps are the full-rate impulse response. They should carry a passband
// gain of L to preserve the signal level after zero stuffing.
type Interpolator struct {
	coeffs      []float64
	rate        int
	phaseLength int
	blockSize   int
	state       []float64
}

// NewInterpolator creates an interpolator by rate for blocks of up to
// blockSize input samples.
func NewInterpolator(coeffs []float64, rate, blockSize int) (*Interpolator, error) {
	if blockSize <= 0 {
		return nil, fmt.Errorf("%w: block %d", ErrBlockSize, blockSize)
	}

	ip := &Interpolator{blockSize: blockSize}
	if err := ip.Configure(coeffs, rate); err != nil {
		return nil, err
	}

	return ip, nil
}

// Configure replaces the taps and the rate. The state is cleared when the
// phase length changes.
func (ip *Interpolator) Configure(coeffs []float64, rate int) error {
	if len(coeffs) == 0 {
		return ErrNoTaps
	}

	if rate < 1 {
		return fmt.Errorf("%w: got %d", ErrRate, rate)
	}

	if len(coeffs)%rate != 0 || len(coeffs)/rate < 2 {
		return fmt.Errorf("%w: %d taps, rate %d", ErrPhaseLength, len(coeffs), rate)
	}

	p := len(coeffs) / rate
	if p != ip.phaseLength {
		ip.state = resize(ip.state, p-1+ip.blockSize)
	}

	ip.coeffs = append(ip.coeffs[:0], coeffs...)
	ip.rate = rate
	ip.phaseLength = p

	return nil
}

// Reserve grows the buffers for up to taps coefficients at any rate, so
// that a later Configure within that limit does not allocate.
func (ip *Interpolator) Reserve(taps int) {
	ip.coeffs = reserve(ip.coeffs, taps)
	ip.state = reserve(ip.state, taps-1+ip.blockSize)
}

// Rate returns the interpolation factor.
func (ip *Interpolator) Rate() int { return ip.rate }

// PhaseLength returns the number of taps per polyphase branch.
func (ip *Interpolator) PhaseLength() int { return ip.phaseLength }

// Process interpolates src into dst and returns len(src)*rate. At most
// blockSize input samples are consumed. dst must not alias src.
func (ip *Interpolator) Process(dst, src []float64) int {
	n := min(len(src), ip.blockSize)
	if n == 0 {
		return 0
	}

	hist := ip.phaseLength - 1
	copy(ip.state[hist:], src[:n])

	out := n * ip.rate
	_ = dst[out-1]

	for i := range n {
		pos := hist + i
		for j := range ip.rate {
			var acc float64
			for p := range ip.phaseLength {
				acc += ip.coeffs[p*ip.rate+j] * ip.state[pos-p]
			}

			dst[i*ip.rate+j] = acc
		}
	}

	copy(ip.state, ip.state[n:n+hist])

	return out
}

// Reset clears the state buffer.
func (ip *Interpolator) Reset() {
	clear(ip.state)
}
