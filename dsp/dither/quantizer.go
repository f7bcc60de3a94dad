package dither

import (
	"math"
	"math/rand/v2"
)

// Quantizer converts samples to integers of a fixed bit depth.
type Quantizer struct {
	bitDepth  int
	typ       Type
	amplitude float64
	seed      uint64
	rng       *rand.Rand

	fullScale float64
	lo, hi    int
	clipped   int
}

// NewQuantizer returns a 16 bit TPDF quantizer unless options say otherwise.
func NewQuantizer(opts ...Option) (*Quantizer, error) {
	cfg := defaultConfig()

	for _, opt := range opts {
		if opt == nil {
			continue
		}

		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	q := &Quantizer{
		bitDepth:  cfg.bitDepth,
		typ:       cfg.typ,
		amplitude: cfg.amplitude,
		seed:      cfg.seed,
	}

	q.hi = int(int64(1)<<(q.bitDepth-1) - 1)
	q.lo = -q.hi - 1
	q.fullScale = float64(q.hi)
	q.Reset()

	return q, nil
}

// Quantize returns x in [-1, 1] as an integer in the bit depth range.
func (q *Quantizer) Quantize(x float64) int {
	v := x*q.fullScale + q.noise()

	n := int(math.Floor(v + 0.5))
	if n > q.hi {
		q.clipped++
		return q.hi
	}

	if n < q.lo {
		q.clipped++
		return q.lo
	}

	return n
}

// QuantizeBlock quantizes src into dst, growing dst as needed, and
// returns it.
func (q *Quantizer) QuantizeBlock(dst []int, src []float32) []int {
	if cap(dst) < len(src) {
		dst = make([]int, len(src))
	}

	dst = dst[:len(src)]
	for k, v := range src {
		dst[k] = q.Quantize(float64(v))
	}

	return dst
}

func (q *Quantizer) noise() float64 {
	switch q.typ {
	case Rectangular:
		return q.amplitude * (q.rng.Float64()*2 - 1)
	case Triangular:
		return q.amplitude * (q.rng.Float64() - q.rng.Float64())
	default:
		return 0
	}
}

// Reset restarts the noise sequence and clears the clip count.
func (q *Quantizer) Reset() {
	q.rng = rand.New(rand.NewPCG(q.seed, q.seed^0x9e3779b97f4a7c15))
	q.clipped = 0
}

// BitDepth returns the target bit depth.
func (q *Quantizer) BitDepth() int { return q.bitDepth }

// Type returns the dither distribution.
func (q *Quantizer) Type() Type { return q.typ }

// Clipped returns how many samples were limited since the last Reset.
func (q *Quantizer) Clipped() int { return q.clipped }
