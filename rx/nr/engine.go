package nr

import (
	"context"
	"fmt"
	"math"

	algofft "github.com/MeKo-Christian/algo-fft"

	"github.com/cwbudde/algo-sdr/dsp/buffer"
	"github.com/cwbudde/algo-sdr/dsp/window"
)

const powerFloor = 1e-30

// SpectralConfig holds the spectral subtraction parameters.
type SpectralConfig struct {
	// FrameSize is the FFT length, a power of two.
	FrameSize int
	// HopSize is the frame advance; FrameSize/HopSize must be at least 4 so
	// that the squared Hann window overlap-adds to a constant.
	HopSize int
	// Strength scales the subtracted noise power.
	Strength float64
	// Floor is the minimum amplitude gain of a bin.
	Floor float64
	// Smoothing is the weight of a new periodogram in the smoothed power.
	Smoothing float64
	// SubWindow is the length in hops of one minimum search window and
	// SubWindows the number of windows kept.
	SubWindow, SubWindows int
	// Bias compensates the minimum tracker's underestimate of the mean.
	Bias float64
	// RingBlocks is the depth of the input and output hop rings.
	RingBlocks int
}

// DefaultSpectralConfig returns parameters tuned for 12 ksps voice audio.
func DefaultSpectralConfig() SpectralConfig {
	return SpectralConfig{
		FrameSize:  256,
		HopSize:    64,
		Strength:   2,
		Floor:      0.1,
		Smoothing:  0.2,
		SubWindow:  32,
		SubWindows: 4,
		Bias:       1.5,
		RingBlocks: 8,
	}
}

func (c SpectralConfig) validate() error {
	switch {
	case c.FrameSize < 16 || c.FrameSize&(c.FrameSize-1) != 0:
		return fmt.Errorf("%w: frame size %d", ErrInvalidParams, c.FrameSize)
	case c.HopSize <= 0 || c.FrameSize%c.HopSize != 0 || c.FrameSize/c.HopSize < 4:
		return fmt.Errorf("%w: hop size %d for frame %d", ErrInvalidParams, c.HopSize, c.FrameSize)
	case c.Strength < 0 || c.Floor < 0 || c.Floor > 1:
		return fmt.Errorf("%w: strength %v floor %v", ErrInvalidParams, c.Strength, c.Floor)
	case c.Smoothing <= 0 || c.Smoothing > 1:
		return fmt.Errorf("%w: smoothing %v", ErrInvalidParams, c.Smoothing)
	case c.SubWindow <= 0 || c.SubWindows <= 0 || c.Bias <= 0:
		return fmt.Errorf("%w: minimum search %d x %d bias %v", ErrInvalidParams, c.SubWindow, c.SubWindows, c.Bias)
	case c.RingBlocks < 2:
		return fmt.Errorf("%w: ring depth %d", ErrInvalidParams, c.RingBlocks)
	}

	return nil
}

// Engine is an overlap-add spectral subtraction processor. It consumes hops
// from its input ring and produces hops on its output ring. The noise power
// of each bin is the minimum of the smoothed power over the last few
// sub-windows, scaled by Bias.
//
// Pump and Run are the consumer of the input ring and the producer of the
// output ring; only one of them may be active at a time.
type Engine struct {
	cfg  SpectralConfig
	plan *algofft.Plan[complex128]

	win  []float64
	norm float64

	in, out *buffer.Ring
	wake    chan struct{}

	history []float64
	overlap []float64
	spec    []complex128
	frame   []complex128

	smooth  []float64
	current []float64
	minima  [][]float64
	gain    []float64

	hops    int
	nextSub int
}

// NewEngine returns an engine for cfg. Zero fields take defaults.
func NewEngine(cfg SpectralConfig) (*Engine, error) {
	cfg = cfg.withDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	plan, err := algofft.NewPlan64(cfg.FrameSize)
	if err != nil {
		return nil, fmt.Errorf("nr: spectral FFT plan: %w", err)
	}

	in, err := buffer.NewRing(cfg.RingBlocks, cfg.HopSize)
	if err != nil {
		return nil, err
	}

	out, err := buffer.NewRing(cfg.RingBlocks, cfg.HopSize)
	if err != nil {
		return nil, err
	}

	n := cfg.FrameSize
	bins := n/2 + 1

	e := &Engine{
		cfg:     cfg,
		plan:    plan,
		win:     window.Generate(window.TypeHann, n, window.WithPeriodic()),
		in:      in,
		out:     out,
		wake:    make(chan struct{}, 1),
		history: make([]float64, n),
		overlap: make([]float64, n),
		spec:    make([]complex128, n),
		frame:   make([]complex128, n),
		smooth:  make([]float64, bins),
		current: make([]float64, bins),
		minima:  make([][]float64, cfg.SubWindows),
		gain:    make([]float64, bins),
	}

	for i := 0; i < n; i += cfg.HopSize {
		e.norm += e.win[i] * e.win[i]
	}

	for i := range e.minima {
		e.minima[i] = make([]float64, bins)
	}

	e.Reset()

	return e, nil
}

func (c SpectralConfig) withDefaults() SpectralConfig {
	d := DefaultSpectralConfig()
	if c == (SpectralConfig{}) {
		return d
	}

	if c.FrameSize == 0 {
		c.FrameSize = d.FrameSize
	}

	if c.HopSize == 0 {
		c.HopSize = c.FrameSize / 4
	}

	if c.Strength == 0 {
		c.Strength = d.Strength
	}

	if c.Smoothing == 0 {
		c.Smoothing = d.Smoothing
	}

	if c.SubWindow == 0 {
		c.SubWindow = d.SubWindow
	}

	if c.SubWindows == 0 {
		c.SubWindows = d.SubWindows
	}

	if c.Bias == 0 {
		c.Bias = d.Bias
	}

	if c.RingBlocks == 0 {
		c.RingBlocks = d.RingBlocks
	}

	return c
}

// Config returns the engine parameters.
func (e *Engine) Config() SpectralConfig { return e.cfg }

// Input returns the ring the producer pushes hops into.
func (e *Engine) Input() *buffer.Ring { return e.in }

// Output returns the ring processed hops are published on.
func (e *Engine) Output() *buffer.Ring { return e.out }

// Latency returns the processing delay in samples.
func (e *Engine) Latency() int { return e.cfg.FrameSize - e.cfg.HopSize }

// Notify wakes a running engine. It never blocks.
func (e *Engine) Notify() {
	select {
	case e.wake <- struct{}{}:
	default:
	}
}

// Pump processes queued input hops while output space is available and
// returns the number of hops produced.
func (e *Engine) Pump() (int, error) {
	n := 0

	for {
		src := e.in.Peek()
		if src == nil {
			return n, nil
		}

		dst := e.out.Acquire()
		if dst == nil {
			return n, nil
		}

		if err := e.processHop(dst, src); err != nil {
			return n, err
		}

		e.out.Commit()
		e.in.Remove()
		n++
	}
}

// Run pumps whenever Notify is called until ctx is done.
func (e *Engine) Run(ctx context.Context) error {
	for {
		if _, err := e.Pump(); err != nil {
			return err
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-e.wake:
		}
	}
}

func (e *Engine) processHop(dst, src []float64) error {
	n := e.cfg.FrameSize
	hop := e.cfg.HopSize
	half := n / 2

	copy(e.history, e.history[hop:])
	copy(e.history[n-hop:], src)

	for i, x := range e.history {
		e.spec[i] = complex(x*e.win[i], 0)
	}

	if err := e.plan.Forward(e.spec, e.spec); err != nil {
		return fmt.Errorf("nr: spectral forward FFT: %w", err)
	}

	e.updateGains()

	e.spec[0] *= complex(e.gain[0], 0)
	e.spec[half] *= complex(e.gain[half], 0)

	for k := 1; k < half; k++ {
		g := complex(e.gain[k], 0)
		e.spec[k] *= g
		e.spec[n-k] *= g
	}

	if err := e.plan.Inverse(e.frame, e.spec); err != nil {
		return fmt.Errorf("nr: spectral inverse FFT: %w", err)
	}

	scale := 1 / e.norm
	for i := range n {
		e.overlap[i] += real(e.frame[i]) * e.win[i] * scale
	}

	copy(dst, e.overlap[:hop])
	copy(e.overlap, e.overlap[hop:])
	clear(e.overlap[n-hop:])

	return nil
}

func (e *Engine) updateGains() {
	a := e.cfg.Smoothing
	floor := e.cfg.Floor * e.cfg.Floor

	for k := range e.gain {
		c := e.spec[k]
		p := real(c)*real(c) + imag(c)*imag(c)

		e.smooth[k] = (1-a)*e.smooth[k] + a*p
		e.current[k] = min(e.current[k], e.smooth[k])

		noise := e.current[k]
		for _, m := range e.minima {
			noise = min(noise, m[k])
		}

		noise *= e.cfg.Bias

		g2 := 0.0
		if p > powerFloor {
			g2 = 1 - e.cfg.Strength*noise/p
		}

		e.gain[k] = mathSqrt(max(g2, floor))
	}

	e.hops++
	if e.hops%e.cfg.SubWindow == 0 {
		copy(e.minima[e.nextSub], e.current)
		e.nextSub = (e.nextSub + 1) % len(e.minima)

		for k := range e.current {
			e.current[k] = math.Inf(1)
		}
	}
}

// Gains returns the amplitude gains of the last frame, DC to Nyquist. The
// slice is owned by the engine.
func (e *Engine) Gains() []float64 { return e.gain }

// Reset clears the signal history and the noise estimate. It must only be
// called while neither ring side is active.
func (e *Engine) Reset() {
	clear(e.history)
	clear(e.overlap)
	clear(e.smooth)

	for k := range e.current {
		e.current[k] = math.Inf(1)
	}

	for _, m := range e.minima {
		for k := range m {
			m[k] = math.Inf(1)
		}
	}

	e.hops = 0
	e.nextSub = 0
	e.in.Reset()
	e.out.Reset()
}
