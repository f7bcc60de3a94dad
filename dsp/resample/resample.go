package resample

import (
	"errors"
	"fmt"
	"math"
	"slices"

	"github.com/cwbudde/algo-sdr/dsp/core"
	"github.com/cwbudde/algo-sdr/dsp/filter/fir"
)

var (
	// ErrInvalidRatio indicates an invalid up/down ratio.
	ErrInvalidRatio = errors.New("resample: invalid ratio")
	// ErrInvalidRate indicates an invalid input/output sample rate.
	ErrInvalidRate = errors.New("resample: invalid sample rate")
)

// maxDenominator bounds the ratio approximation of NewForRates.
const maxDenominator = 4096

// Quality controls the anti-aliasing filter.
type Quality int

const (
	// QualityFast prioritizes lower CPU usage.
	QualityFast Quality = iota
	// QualityBalanced is the default.
	QualityBalanced
	// QualityBest prioritizes stopband attenuation and passband flatness.
	QualityBest
)

// Profile holds the filter parameters of a quality mode.
type Profile struct {
	TapsPerPhase      int
	CutoffScale       float64
	KaiserBeta        float64
	NominalStopbandDB float64
}

// QualityProfile returns the profile used by quality mode q.
func QualityProfile(q Quality) Profile {
	switch q {
	case QualityFast:
		return Profile{TapsPerPhase: 16, CutoffScale: 0.88, KaiserBeta: 5.0, NominalStopbandDB: 55}
	case QualityBest:
		return Profile{TapsPerPhase: 64, CutoffScale: 0.96, KaiserBeta: 9.0, NominalStopbandDB: 90}
	default:
		return Profile{TapsPerPhase: 32, CutoffScale: 0.92, KaiserBeta: 7.5, NominalStopbandDB: 75}
	}
}

// Option configures a Resampler.
type Option func(*Profile)

// WithQuality selects a predefined quality mode.
func WithQuality(q Quality) Option {
	return func(p *Profile) { *p = QualityProfile(q) }
}

// WithTapsPerPhase overrides the taps per polyphase branch.
func WithTapsPerPhase(n int) Option {
	return func(p *Profile) {
		if n > 0 {
			p.TapsPerPhase = n
		}
	}
}

// Resampler converts interleaved I/Q by up/down.
type Resampler struct {
	up, down int
	profile  Profile

	phases [][]float64
	span   int

	// Position of the next output in input samples (index) and
	// 1/up fractions (phase), counted over the whole stream.
	phase   int
	index   int
	totalIn int

	// Last span-1 input frames of each channel, followed by the current
	// block while Process runs.
	hi, hq []float64
}

// NewRational creates a resampler for ratio up/down.
func NewRational(up, down int, opts ...Option) (*Resampler, error) {
	if up <= 0 || down <= 0 {
		return nil, fmt.Errorf("%w: %d/%d", ErrInvalidRatio, up, down)
	}

	g := gcd(up, down)
	up, down = up/g, down/g

	prof := QualityProfile(QualityBalanced)
	for _, opt := range opts {
		if opt != nil {
			opt(&prof)
		}
	}

	// The prototype runs at up times the input rate; normalize that to 1.
	cutoff := 0.5 / float64(max(up, down)) * prof.CutoffScale

	taps, err := fir.InterpolationLowpass(cutoff, 1, prof.TapsPerPhase*up, prof.KaiserBeta, up)
	if err != nil {
		return nil, fmt.Errorf("resample: %w", err)
	}

	r := &Resampler{up: up, down: down, profile: prof, phases: make([][]float64, up)}
	for p := range up {
		for k := p; k < len(taps); k += up {
			r.phases[p] = append(r.phases[p], taps[k])
		}

		r.span = max(r.span, len(r.phases[p]))
	}

	return r, nil
}

// NewForRates creates a resampler from inRate to outRate, approximating
// the ratio with a denominator of at most 4096.
func NewForRates(inRate, outRate float64, opts ...Option) (*Resampler, error) {
	if !(inRate > 0) || !(outRate > 0) || math.IsInf(inRate, 0) || math.IsInf(outRate, 0) {
		return nil, fmt.Errorf("%w: %g -> %g", ErrInvalidRate, inRate, outRate)
	}

	up, down := approximateRatio(outRate/inRate, maxDenominator)

	return NewRational(up, down, opts...)
}

// Ratio returns the reduced conversion factors.
func (r *Resampler) Ratio() (up, down int) { return r.up, r.down }

// Profile returns the filter parameters in use.
func (r *Resampler) Profile() Profile { return r.profile }

// Reset clears the filter history.
func (r *Resampler) Reset() {
	r.phase, r.index, r.totalIn = 0, 0, 0
	r.hi, r.hq = r.hi[:0], r.hq[:0]
}

// OutputFrames returns the number of frames the next Process call yields
// for in input frames.
func (r *Resampler) OutputFrames(in int) int {
	last := r.totalIn + in - 1
	i, phase := r.index, r.phase

	count := 0
	for i <= last {
		count++
		phase += r.down
		i += phase / r.up
		phase %= r.up
	}

	return count
}

// Process converts a block of interleaved I/Q and appends the result to
// dst. State carries over between calls.
func (r *Resampler) Process(dst, iq []float32) []float32 {
	n := len(iq) / 2
	if n == 0 {
		return dst
	}

	keep := len(r.hi)
	r.hi = slices.Grow(r.hi, n)[:keep+n]
	r.hq = slices.Grow(r.hq, n)[:keep+n]
	core.Deinterleave(r.hi[keep:], r.hq[keep:], iq)

	base := r.totalIn - keep
	last := r.totalIn + n - 1

	for r.index <= last {
		var yi, yq float64

		for k, c := range r.phases[r.phase] {
			idx := r.index - k - base
			if idx < 0 {
				break
			}

			yi += c * r.hi[idx]
			yq += c * r.hq[idx]
		}

		dst = append(dst, float32(yi), float32(yq))

		r.phase += r.down
		r.index += r.phase / r.up
		r.phase %= r.up
	}

	r.totalIn += n

	hist := min(r.span-1, len(r.hi))
	r.hi = append(r.hi[:0], r.hi[len(r.hi)-hist:]...)
	r.hq = append(r.hq[:0], r.hq[len(r.hq)-hist:]...)

	return dst
}

// approximateRatio returns the continued fraction convergent of v with the
// largest denominator not above maxDen.
func approximateRatio(v float64, maxDen int) (num, den int) {
	if v <= 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return 1, 1
	}

	p0, q0 := 1.0, 0.0
	p1, q1 := math.Floor(v), 1.0

	for x := v; ; {
		frac := x - math.Floor(x)
		if frac < 1e-12 {
			break
		}

		x = 1 / frac
		a := math.Floor(x)

		q2 := a*q1 + q0
		if q2 > float64(maxDen) {
			break
		}

		p0, q0, p1, q1 = p1, q1, a*p1+p0, q2
	}

	num, den = int(math.Round(p1)), int(math.Round(q1))
	if num <= 0 || den <= 0 {
		return 1, 1
	}

	g := gcd(num, den)

	return num / g, den / g
}

func gcd(a, b int) int {
	for b != 0 {
		a, b = b, a%b
	}

	if a == 0 {
		return 1
	}

	return a
}
