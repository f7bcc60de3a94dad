// Package sinad measures the audio quality of a demodulated test tone.
//
// SINAD is the ratio of signal plus noise and distortion to noise and
// distortion, the figure receivers quote for sensitivity. The measurement
// windows the audio, takes its power spectrum and sums the bins of the
// tone's main lobe against all other bins of the measurement band.
// Harmonics of the tone are reported separately as THD.
package sinad

import (
	"errors"
	"fmt"
	"math"

	algofft "github.com/MeKo-Christian/algo-fft"

	"github.com/cwbudde/algo-sdr/dsp/window"
)

var (
	// ErrInvalidConfig is returned for bad rates, bands or short input.
	ErrInvalidConfig = errors.New("sinad: invalid config")
	// ErrNoSignal is returned when the band holds no energy.
	ErrNoSignal = errors.New("sinad: no signal")
)

const (
	minFFTSize = 256
	maxFFTSize = 1 << 16

	defaultLow       = 300.0
	defaultHigh      = 3000.0
	defaultHarmonics = 5
)

// Result holds one measurement. Levels are in dB.
type Result struct {
	// Tone is the interpolated tone frequency in Hz.
	Tone float64
	// Level is the tone power relative to a full-scale sine.
	Level float64
	SINAD float64
	// THD is the summed power of the harmonics relative to the tone.
	THD float64
	// Harmonics holds the level of the 2nd, 3rd, ... harmonic relative to
	// the tone, up to the Nyquist frequency.
	Harmonics []float64
}

type config struct {
	tone      float64
	low, high float64
	harmonics int
	window    window.Type
}

// Option configures Measure.
type Option func(*config)

// WithTone fixes the expected tone frequency. Without it the strongest
// bin of the band is taken.
func WithTone(hz float64) Option {
	return func(c *config) { c.tone = hz }
}

// WithBand sets the measurement bandwidth. The default is 300 to 3000 Hz.
func WithBand(low, high float64) Option {
	return func(c *config) { c.low, c.high = low, high }
}

// WithHarmonics sets how many harmonics THD includes (default 5).
func WithHarmonics(n int) Option {
	return func(c *config) { c.harmonics = n }
}

// WithWindow selects the analysis window (default 4-term Blackman-Harris).
func WithWindow(t window.Type) Option {
	return func(c *config) { c.window = t }
}

// Measure analyses the last power-of-two frames of x, sampled at
// sampleRate.
func Measure(x []float64, sampleRate float64, opts ...Option) (Result, error) {
	cfg := config{
		low:       defaultLow,
		high:      defaultHigh,
		harmonics: defaultHarmonics,
		window:    window.TypeBlackmanHarris4Term,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	if sampleRate <= 0 || math.IsNaN(sampleRate) || math.IsInf(sampleRate, 0) {
		return Result{}, fmt.Errorf("%w: sample rate %g", ErrInvalidConfig, sampleRate)
	}

	if cfg.low < 0 || cfg.high <= cfg.low || cfg.high > sampleRate/2 {
		return Result{}, fmt.Errorf("%w: band %g..%g Hz", ErrInvalidConfig, cfg.low, cfg.high)
	}

	n := fftSize(len(x))
	if n < minFFTSize {
		return Result{}, fmt.Errorf("%w: %d samples, need %d", ErrInvalidConfig, len(x), minFFTSize)
	}

	power, err := powerSpectrum(x[len(x)-n:], cfg.window)
	if err != nil {
		return Result{}, err
	}

	binHz := sampleRate / float64(n)
	last := n / 2
	lo := max(1, int(math.Ceil(cfg.low/binHz)))
	hi := min(last, int(math.Floor(cfg.high/binHz)))
	lobe := lobeBins(cfg.window)

	peak := lo
	if cfg.tone > 0 {
		peak = int(math.Round(cfg.tone / binHz))
	} else {
		for k := lo; k <= hi; k++ {
			if power[k] > power[peak] {
				peak = k
			}
		}
	}

	if peak < 1 || peak >= last {
		return Result{}, fmt.Errorf("%w: tone outside 0..%g Hz", ErrInvalidConfig, sampleRate/2)
	}

	fund := sumBins(power, peak, lobe)

	var total float64
	for k := lo; k <= hi; k++ {
		total += power[k]
	}

	if fund <= 0 || total <= 0 {
		return Result{}, ErrNoSignal
	}

	res := Result{
		Tone:  (float64(peak) + interpolate(power, peak)) * binHz,
		Level: powerDB(fund / 0.5),
		SINAD: math.Inf(1),
	}

	if rest := total - fund; rest > 0 && fund < total {
		res.SINAD = powerDB(total / rest)
	}

	var harm float64
	for h := 2; h <= cfg.harmonics+1; h++ {
		bin := int(math.Round(float64(h) * res.Tone / binHz))
		if bin+lobe > last {
			break
		}

		p := sumBins(power, bin, lobe)
		harm += p
		res.Harmonics = append(res.Harmonics, powerDB(p/fund))
	}

	res.THD = powerDB(harm / fund)

	return res, nil
}

// powerSpectrum returns the one-sided power of x, scaled so that a sine
// of amplitude A sums to A²/2 over its main lobe.
func powerSpectrum(x []float64, t window.Type) ([]float64, error) {
	n := len(x)
	win := window.Generate(t, n, window.WithPeriodic())

	var energy float64
	buf := make([]complex128, n)
	for i, v := range x {
		buf[i] = complex(v*win[i], 0)
		energy += win[i] * win[i]
	}

	plan, err := algofft.NewPlan64(n)
	if err != nil {
		return nil, fmt.Errorf("sinad: %w", err)
	}

	if err := plan.Forward(buf, buf); err != nil {
		return nil, fmt.Errorf("sinad: %w", err)
	}

	scale := 2 / (float64(n) * energy)
	power := make([]float64, n/2+1)
	for k := range power {
		c := buf[k]
		power[k] = (real(c)*real(c) + imag(c)*imag(c)) * scale
	}

	return power, nil
}

// lobeBins is the main lobe half-width of t in bins.
func lobeBins(t window.Type) int {
	switch t {
	case window.TypeRectangular:
		return 1
	case window.TypeHann, window.TypeHamming:
		return 2
	case window.TypeBlackman, window.TypeKaiser:
		return 3
	case window.TypeFlatTop:
		return 5
	default:
		return 4
	}
}

func sumBins(power []float64, center, half int) float64 {
	var sum float64
	for k := max(center-half, 1); k <= min(center+half, len(power)-1); k++ {
		sum += power[k]
	}

	return sum
}

// interpolate returns the parabolic peak offset around bin k in [-0.5, 0.5].
func interpolate(power []float64, k int) float64 {
	a, b, c := math.Sqrt(power[k-1]), math.Sqrt(power[k]), math.Sqrt(power[k+1])

	den := a - 2*b + c
	if den == 0 {
		return 0
	}

	return max(-0.5, min(0.5, 0.5*(a-c)/den))
}

func fftSize(n int) int {
	if n < 1 {
		return 0
	}

	size := 1
	for size*2 <= n && size*2 <= maxFFTSize {
		size *= 2
	}

	return size
}

func powerDB(ratio float64) float64 {
	if ratio <= 0 {
		return math.Inf(-1)
	}

	return 10 * math.Log10(ratio)
}
