package demod

import (
	"fmt"
	"math"

	"hz.tools/rf"

	"github.com/cwbudde/algo-sdr/dsp/core"
	"github.com/cwbudde/algo-sdr/dsp/filter/design"
	"github.com/cwbudde/algo-sdr/dsp/filter/lattice"
)

// NarrowbandDeviation is the peak deviation of narrowband FM voice.
const NarrowbandDeviation rf.Hz = 2500

const (
	deemphasisAlpha = 0.205
	dcBlockAlpha    = 0.96

	// NoiseSmoothing is the weight of a new noise sample in the squelch
	// noise average.
	NoiseSmoothing = 0.005

	squelchEvalBlocks = 10
	noiseFilterCutoff = 15000
	noiseFilterRatio  = 0.3125
	noiseFilterOrder  = 4
)

// FM is a narrowband FM demodulator with noise squelch and optional
// subaudible tone gating.
type FM struct {
	sampleRate float64

	iPrev, qPrev float64
	lpf          float64
	hpfIn        float64
	hpfOut       float64

	noise    *lattice.Filter
	noiseAvg float64
	sqCount  int
	squelch  *Squelch

	tone       *ToneDetector
	toneActive bool

	noiseBuf []float64
	toneBuf  []float64
}

// NewFM returns a demodulator for I/Q at sampleRate in blocks of blockSize.
// The squelch starts closed with threshold 0 (always open).
func NewFM(sampleRate float64, blockSize int) (*FM, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("demod: fm sample rate must be > 0: %v", sampleRate)
	}

	noise, err := noiseFilter(sampleRate)
	if err != nil {
		return nil, err
	}

	tone, err := NewToneDetector(88.5, sampleRate, blockSize)
	if err != nil {
		return nil, err
	}

	return &FM{
		sampleRate: sampleRate,
		noise:      noise,
		squelch:    NewSquelch(0),
		tone:       tone,
		noiseBuf:   make([]float64, blockSize),
		toneBuf:    make([]float64, blockSize),
	}, nil
}

func noiseFilter(sampleRate float64) (*lattice.Filter, error) {
	cutoff := min(noiseFilterCutoff, noiseFilterRatio*sampleRate)

	k, v, err := lattice.FromBiquads(design.ButterworthHP(cutoff, noiseFilterOrder, sampleRate))
	if err != nil {
		return nil, fmt.Errorf("demod: squelch noise filter: %w", err)
	}

	return lattice.New(k, v)
}

// AudioGain returns the factor that scales discriminator output (radians
// per sample) so that the given peak deviation reaches half scale.
func AudioGain(sampleRate float64, deviation rf.Hz) float64 {
	if deviation <= 0 {
		return 0
	}

	return sampleRate / (core.TwoPi * float64(deviation)) * 0.5
}

// Squelch exposes the noise squelch gate.
func (f *FM) Squelch() *Squelch { return f.squelch }

// SetSquelchThreshold sets the squelch threshold; 0 disables squelch.
func (f *FM) SetSquelchThreshold(threshold int) { f.squelch.SetThreshold(threshold) }

// SetTone enables tone gating at frequency Hz. A frequency of 0 disables it.
func (f *FM) SetTone(frequency float64) error {
	if frequency <= 0 {
		f.toneActive = false
		f.tone.Reset()

		return nil
	}

	if err := f.tone.SetFrequency(frequency); err != nil {
		return err
	}

	f.toneActive = true

	return nil
}

// ToneEnabled reports whether tone gating is active.
func (f *FM) ToneEnabled() bool { return f.toneActive }

// ToneDetected reports the tone detector state; false while tone gating is
// disabled.
func (f *FM) ToneDetected() bool { return f.toneActive && f.tone.Detected() }

// NoiseLevel returns the current squelch level on the threshold scale.
func (f *FM) NoiseLevel() float64 { return NoiseToLevel(f.noiseAvg) }

func (f *FM) gateOpen() bool {
	switch {
	case f.squelch.Threshold() == 0:
		return true
	case f.toneActive:
		return f.tone.Detected()
	default:
		return !f.squelch.Squelched()
	}
}

// Process demodulates one block into out and reports whether audio is
// passing the gate after this block. Gated blocks are written as silence.
func (f *FM) Process(i, q, out []float64) bool {
	n := min(len(i), len(q), len(out))
	f.noiseBuf = core.EnsureLen(f.noiseBuf, n)
	f.toneBuf = core.EnsureLen(f.toneBuf, n)

	open := f.gateOpen()

	for k := range n {
		y := f.iPrev*q[k] - i[k]*f.qPrev
		x := f.iPrev*i[k] + q[k]*f.qPrev
		angle := math.Atan2(y, x)

		f.noiseBuf[k] = angle

		a := f.lpf + deemphasisAlpha*(angle-f.lpf)
		f.lpf = a
		f.toneBuf[k] = a

		if open {
			b := dcBlockAlpha * (f.hpfOut + a - f.hpfIn)
			f.hpfIn = a
			f.hpfOut = b
			out[k] = b
		} else {
			out[k] = 0
		}

		f.iPrev = i[k]
		f.qPrev = q[k]
	}

	if n > 0 {
		f.noise.ProcessBlock(f.noiseBuf[:n])
		f.noiseAvg = (1-NoiseSmoothing)*f.noiseAvg + NoiseSmoothing*math.Sqrt(math.Abs(f.noiseBuf[0]))
	}

	f.sqCount = (f.sqCount + 1) % squelchEvalBlocks
	if f.sqCount == 0 {
		f.noiseAvg = min(f.noiseAvg, noiseAvgMax)
		f.squelch.Evaluate(NoiseToLevel(f.noiseAvg))
	}

	if f.toneActive {
		f.tone.ProcessBlock(f.toneBuf[:n])
	}

	return f.gateOpen()
}

// Reset clears discriminator, filter, squelch and tone state. Settings are
// kept.
func (f *FM) Reset() {
	f.iPrev, f.qPrev = 0, 0
	f.lpf, f.hpfIn, f.hpfOut = 0, 0, 0
	f.noise.Reset()
	f.noiseAvg = 0
	f.sqCount = 0
	f.squelch.Reset()
	f.tone.Reset()
}
