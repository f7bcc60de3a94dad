package scope

import (
	"errors"
	"fmt"
	"math"

	algofft "github.com/MeKo-Christian/algo-fft"

	"github.com/cwbudde/algo-sdr/dsp/core"
	"github.com/cwbudde/algo-sdr/dsp/spectrum"
	"github.com/cwbudde/algo-sdr/dsp/window"
)

// ErrFFTSize is returned for a transform size that is not a power of two
// of at least 16.
var ErrFFTSize = errors.New("scope: FFT size must be a power of two >= 16")

const (
	defaultFloorDB   = -130.0
	defaultSmoothing = 0.5
)

// AnalyzerOption configures an Analyzer.
type AnalyzerOption func(*analyzerConfig)

type analyzerConfig struct {
	window    window.Type
	smoothing float64
	floorDB   float64
}

// WithWindow selects the analysis window. The default is the 4-term
// Blackman-Harris window.
func WithWindow(t window.Type) AnalyzerOption {
	return func(c *analyzerConfig) { c.window = t }
}

// WithSmoothing sets the exponential averaging of successive frames in dB,
// clamped to [0, 0.95]. Zero disables averaging.
func WithSmoothing(a float64) AnalyzerOption {
	return func(c *analyzerConfig) { c.smoothing = core.Clamp(a, 0, 0.95) }
}

// WithFloorDB sets the lowest reported level.
func WithFloorDB(db float64) AnalyzerOption {
	return func(c *analyzerConfig) { c.floorDB = db }
}

// Analyzer computes a centered power spectrum in dBFS from the display
// buffer. A complex exponential of amplitude 1 centered on a bin reads 0 dB.
type Analyzer struct {
	cfg  analyzerConfig
	size int

	plan  *algofft.Plan[complex128]
	win   []float64
	norm  float64
	frame []complex128
	power []float64
	db    []float64
	ready bool

	re, im []float64
}

// NewAnalyzer creates an analyzer for size-point transforms.
func NewAnalyzer(size int, opts ...AnalyzerOption) (*Analyzer, error) {
	if size < 16 || size&(size-1) != 0 {
		return nil, fmt.Errorf("%w: %d", ErrFFTSize, size)
	}

	cfg := analyzerConfig{
		window:    window.TypeBlackmanHarris4Term,
		smoothing: defaultSmoothing,
		floorDB:   defaultFloorDB,
	}
	for _, o := range opts {
		o(&cfg)
	}

	plan, err := algofft.NewPlan64(size)
	if err != nil {
		return nil, fmt.Errorf("scope: FFT plan: %w", err)
	}

	win := window.Generate(cfg.window, size, window.WithPeriodic())
	sum := window.CoherentGain(win) * float64(size)

	a := &Analyzer{
		cfg:   cfg,
		size:  size,
		plan:  plan,
		win:   win,
		norm:  1 / (sum * sum),
		frame: make([]complex128, size),
		power: make([]float64, size),
		db:    make([]float64, size),
	}
	a.Reset()

	return a, nil
}

// Size returns the transform size.
func (a *Analyzer) Size() int { return a.size }

// Update reads the newest Size() pairs from a (Q, I) interleaved display
// buffer whose next write position is cursor, and returns the smoothed
// spectrum with DC at index Size()/2. The returned slice is owned by the
// analyzer.
func (a *Analyzer) Update(buf []float32, cursor int) ([]float64, error) {
	pairs := len(buf) / 2
	if pairs < a.size {
		return nil, fmt.Errorf("%w: %d pairs, need %d", ErrTapLength, pairs, a.size)
	}

	// Pairs start at even offsets and the cursor resets before len(buf)-1,
	// so the ring holds exactly pairs entries.
	start := (cursor/2 - a.size + pairs) % pairs
	for n := range a.size {
		p := 2 * ((start + n) % pairs)
		a.frame[n] = complex(float64(buf[p+1])*a.win[n], float64(buf[p])*a.win[n])
	}

	return a.transform()
}

// UpdateTap is Update on the buffer and cursor of t.
func (a *Analyzer) UpdateTap(t *Tap) ([]float64, error) {
	return a.Update(t.Buffer(), t.Cursor())
}

// UpdateIQ analyses the first Size() samples of i and q directly.
func (a *Analyzer) UpdateIQ(i, q []float64) ([]float64, error) {
	if len(i) < a.size || len(q) < a.size {
		return nil, fmt.Errorf("%w: %d samples, need %d", ErrTapLength, min(len(i), len(q)), a.size)
	}

	for n := range a.size {
		a.frame[n] = complex(i[n]*a.win[n], q[n]*a.win[n])
	}

	return a.transform()
}

func (a *Analyzer) transform() ([]float64, error) {
	if err := a.plan.Forward(a.frame, a.frame); err != nil {
		return nil, fmt.Errorf("scope: forward FFT: %w", err)
	}

	a.re, a.im = spectrum.PowerInto(a.power, a.frame, a.re, a.im)
	for k := range a.power {
		a.power[k] *= a.norm
	}

	spectrum.PowerToDB(a.power, a.cfg.floorDB)
	spectrum.FFTShift(a.power)

	s := a.cfg.smoothing
	for k, v := range a.power {
		if !a.ready {
			a.db[k] = v
			continue
		}

		a.db[k] = s*a.db[k] + (1-s)*v
	}

	a.ready = true

	return a.db, nil
}

// Spectrum returns the last computed spectrum.
func (a *Analyzer) Spectrum() []float64 { return a.db }

// BinFrequency returns the baseband frequency of centered bin k.
func (a *Analyzer) BinFrequency(k int, sampleRate float64) float64 {
	return float64(k-a.size/2) * sampleRate / float64(a.size)
}

// Peak returns the strongest bin of the last spectrum and its level.
func (a *Analyzer) Peak() (bin int, db float64) {
	db = math.Inf(-1)
	for k, v := range a.db {
		if v > db {
			bin, db = k, v
		}
	}

	return bin, db
}

// Reset forgets the averaged spectrum.
func (a *Analyzer) Reset() {
	for k := range a.db {
		a.db[k] = a.cfg.floorDB
	}

	a.ready = false
}
