package nr

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-sdr/dsp/delay"
)

const (
	leakIndexMax = 200
	ngammaInit   = 0.001
	sigmaFloor   = 1e-10
)

// LMSConfig holds the parameters of the variable-leak LMS filter.
type LMSConfig struct {
	// Taps is the adaptive filter length.
	Taps int
	// Delay decorrelates the reference from the input, in samples.
	Delay int
	// TwoMu is the normalized adaptation step.
	TwoMu float64
	// Gamma scales the leakage.
	Gamma float64
	// LeakIndex is the initial leak index in [0, 200].
	LeakIndex float64
	// DenMult scales the fourth power of the leak index.
	DenMult float64
	// Incr and Decr move the leak index per sample.
	Incr, Decr float64
	// Notch outputs the prediction error instead of the prediction.
	Notch bool
}

// DefaultLMSConfig returns the standard noise reduction parameters.
func DefaultLMSConfig() LMSConfig {
	return LMSConfig{
		Taps:      64,
		Delay:     16,
		TwoMu:     1e-4,
		Gamma:     0.1,
		LeakIndex: 120,
		DenMult:   6.25e-10,
		Incr:      1,
		Decr:      3,
	}
}

// LMS is a normalized leaky LMS linear predictor. The leak adapts per
// sample: when a more leaky update would have produced a smaller error the
// leak index grows, otherwise it shrinks. In noise reduction mode the
// prediction (the correlated part of the input) is output; in notch mode
// the error is output, which cancels steady carriers.
type LMS struct {
	cfg LMSConfig

	line *delay.Line
	w    []float64

	lidx   float64
	ngamma float64
}

// NewLMS returns a filter for cfg.
func NewLMS(cfg LMSConfig) (*LMS, error) {
	if cfg.Taps <= 0 || cfg.Delay < 0 {
		return nil, fmt.Errorf("%w: lms taps %d delay %d", ErrInvalidParams, cfg.Taps, cfg.Delay)
	}

	if cfg.TwoMu <= 0 || cfg.TwoMu >= 1 {
		return nil, fmt.Errorf("%w: lms step %v", ErrInvalidParams, cfg.TwoMu)
	}

	if cfg.LeakIndex < 0 || cfg.LeakIndex > leakIndexMax {
		return nil, fmt.Errorf("%w: lms leak index %v", ErrInvalidParams, cfg.LeakIndex)
	}

	line, err := delay.New(cfg.Taps + cfg.Delay)
	if err != nil {
		return nil, fmt.Errorf("nr: lms delay line: %w", err)
	}

	l := &LMS{
		cfg:  cfg,
		line: line,
		w:    make([]float64, cfg.Taps),
	}
	l.Reset()

	return l, nil
}

// Name implements Strategy.
func (l *LMS) Name() string { return "lms" }

// Config returns the filter parameters.
func (l *LMS) Config() LMSConfig { return l.cfg }

// SetNotch switches between notch and noise reduction output.
func (l *LMS) SetNotch(on bool) { l.cfg.Notch = on }

// LeakIndex returns the current leak index.
func (l *LMS) LeakIndex() float64 { return l.lidx }

// Weights returns the adaptive weights. The slice is owned by the filter.
func (l *LMS) Weights() []float64 { return l.w }

// ProcessBlock implements Strategy.
func (l *LMS) ProcessBlock(buf []float64) {
	twoMu := l.cfg.TwoMu
	taps := l.cfg.Taps
	dly := l.cfg.Delay

	for i, x := range buf {
		l.line.Write(x)
		d, head := l.line.Window()
		mask := len(d) - 1

		var y, sigma float64
		for j := range taps {
			v := d[(head+j+dly)&mask]
			y += l.w[j] * v
			sigma += v * v
		}

		invSigp := 1 / (sigma + sigmaFloor)
		e := x - y

		if l.cfg.Notch {
			buf[i] = e
		} else {
			buf[i] = y
		}

		nel := math.Abs(e * (1 - twoMu*sigma*invSigp))
		nev := math.Abs(x - (1-twoMu*l.ngamma)*y - twoMu*e*sigma*invSigp)

		if nev < nel {
			l.lidx = min(l.lidx+l.cfg.Incr, leakIndexMax)
		} else {
			l.lidx = max(l.lidx-l.cfg.Decr, 0)
		}

		l2 := l.lidx * l.lidx
		l.ngamma = l.cfg.Gamma * l2 * l2 * l.cfg.DenMult

		c0 := 1 - twoMu*l.ngamma
		c1 := twoMu * e * invSigp

		for j := range taps {
			l.w[j] = c0*l.w[j] + c1*d[(head+j+dly)&mask]
		}
	}
}

// Reset clears history and weights and restores the initial leak index.
func (l *LMS) Reset() {
	l.line.Reset()
	clear(l.w)
	l.lidx = l.cfg.LeakIndex
	l.ngamma = ngammaInit
}
