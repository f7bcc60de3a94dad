// Package signal synthesizes complex baseband test signals: carriers and
// sideband tones, AM and FM, on/off keying and Gaussian noise. Samples are
// I + jQ at the generator's sample rate.
package signal

import (
	"errors"
	"fmt"
	"math"
	"math/cmplx"
	"math/rand/v2"

	"github.com/cwbudde/algo-sdr/dsp/core"
)

// ErrInvalidParameter is returned for non-positive lengths or rates and
// out of range modulation parameters.
var ErrInvalidParameter = errors.New("signal: invalid parameter")

// Generator creates deterministic signals from a shared configuration.
type Generator struct {
	cfg  core.ProcessorConfig
	seed uint64
}

// Option configures a Generator.
type Option func(*Generator)

// WithSeed sets the noise seed.
func WithSeed(seed uint64) Option {
	return func(g *Generator) {
		g.seed = seed
	}
}

// NewGenerator creates a generator at the processor sample rate.
func NewGenerator(opts ...core.ProcessorOption) *Generator {
	return NewGeneratorWithOptions(opts)
}

// NewGeneratorWithOptions creates a generator with signal-specific options.
func NewGeneratorWithOptions(coreOpts []core.ProcessorOption, opts ...Option) *Generator {
	g := &Generator{
		cfg:  core.ApplyProcessorOptions(coreOpts...),
		seed: 1,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(g)
		}
	}
	return g
}

// Config returns the generator processor configuration.
func (g *Generator) Config() core.ProcessorConfig {
	return g.cfg
}

func (g *Generator) check(frames int) error {
	if frames <= 0 {
		return fmt.Errorf("%w: frames %d", ErrInvalidParameter, frames)
	}
	if g.cfg.SampleRate <= 0 {
		return fmt.Errorf("%w: sample rate %g", ErrInvalidParameter, g.cfg.SampleRate)
	}
	return nil
}

// Tone returns amplitude·e^(j2πft). A positive freq lies above the tuned
// frequency, a negative one below.
func (g *Generator) Tone(freq, amplitude float64, frames int) ([]complex128, error) {
	if err := g.check(frames); err != nil {
		return nil, err
	}

	out := make([]complex128, frames)
	step := 2 * math.Pi * freq / g.cfg.SampleRate
	for n := range out {
		out[n] = cmplx.Rect(amplitude, step*float64(n))
	}
	return out, nil
}

// AM returns a carrier at carrier Hz whose envelope is
// amplitude·(1 + depth·cos(2π·tone·t)). depth must lie in [0, 1].
func (g *Generator) AM(carrier, tone, depth, amplitude float64, frames int) ([]complex128, error) {
	if err := g.check(frames); err != nil {
		return nil, err
	}
	if depth < 0 || depth > 1 {
		return nil, fmt.Errorf("%w: AM depth %g", ErrInvalidParameter, depth)
	}

	out := make([]complex128, frames)
	wc := 2 * math.Pi * carrier / g.cfg.SampleRate
	wm := 2 * math.Pi * tone / g.cfg.SampleRate
	for n := range out {
		t := float64(n)
		out[n] = cmplx.Rect(amplitude*(1+depth*math.Cos(wm*t)), wc*t)
	}
	return out, nil
}

// FM returns a carrier at carrier Hz frequency modulated by a tone with
// the given peak deviation.
func (g *Generator) FM(carrier, tone, deviation, amplitude float64, frames int) ([]complex128, error) {
	if err := g.check(frames); err != nil {
		return nil, err
	}
	if tone <= 0 || deviation < 0 {
		return nil, fmt.Errorf("%w: FM tone %g, deviation %g", ErrInvalidParameter, tone, deviation)
	}

	out := make([]complex128, frames)
	wc := 2 * math.Pi * carrier / g.cfg.SampleRate
	wm := 2 * math.Pi * tone / g.cfg.SampleRate
	beta := deviation / tone
	for n := range out {
		t := float64(n)
		out[n] = cmplx.Rect(amplitude, wc*t+beta*math.Sin(wm*t))
	}
	return out, nil
}

// Key gates x on and off at rate Hz with a 50 % duty cycle, starting on.
func (g *Generator) Key(x []complex128, rate float64) error {
	if rate <= 0 {
		return fmt.Errorf("%w: keying rate %g", ErrInvalidParameter, rate)
	}

	half := g.cfg.SampleRate / (2 * rate)
	for n := range x {
		if int(float64(n)/half)%2 == 1 {
			x[n] = 0
		}
	}
	return nil
}

// AddNoise adds complex Gaussian noise with standard deviation sigma per
// component. Every call starts from the generator seed.
func (g *Generator) AddNoise(x []complex128, sigma float64) error {
	if sigma < 0 {
		return fmt.Errorf("%w: noise sigma %g", ErrInvalidParameter, sigma)
	}
	if sigma == 0 {
		return nil
	}

	rng := rand.New(rand.NewPCG(g.seed, g.seed^0x9e3779b97f4a7c15))
	for n := range x {
		x[n] += complex(sigma*rng.NormFloat64(), sigma*rng.NormFloat64())
	}
	return nil
}

// Interleave writes x as I/Q pairs into dst, which must hold 2·len(x)
// values, and returns the written slice.
func Interleave(dst []float32, x []complex128) []float32 {
	dst = dst[:2*len(x)]
	for n, v := range x {
		dst[2*n] = float32(real(v))
		dst[2*n+1] = float32(imag(v))
	}
	return dst
}
