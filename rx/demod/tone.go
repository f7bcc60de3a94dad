package demod

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-sdr/dsp/spectrum"
)

const (
	toneWindowSeconds = 0.25
	toneLowFactor     = 0.95
	toneHighFactor    = 1.04
	toneRatioAlpha    = 0.9
	toneRatioOn       = 1.75
	toneDebounceOn    = 2
	toneDebounceMax   = 5
)

// ToneDetector detects a subaudible (CTCSS) tone with three Goertzel bins
// placed just below, on and just above the target frequency. The on-tone
// to off-tone energy ratio is smoothed and debounced.
type ToneDetector struct {
	frequency  float64
	sampleRate float64
	window     int

	bank     *spectrum.MultiGoertzel
	energies [3]float64

	count    int
	ratio    float64
	debounce int
	detected bool
}

// NewToneDetector returns a detector for blocks of blockSize samples at
// sampleRate. Energies are evaluated every 250 ms.
func NewToneDetector(frequency, sampleRate float64, blockSize int) (*ToneDetector, error) {
	if blockSize <= 0 {
		return nil, fmt.Errorf("demod: tone block size must be > 0: %d", blockSize)
	}

	bank, err := spectrum.NewMultiGoertzel(toneBins(frequency), sampleRate)
	if err != nil {
		return nil, fmt.Errorf("demod: tone detector: %w", err)
	}

	return &ToneDetector{
		frequency:  frequency,
		sampleRate: sampleRate,
		window:     max(1, int(math.Round(toneWindowSeconds*sampleRate/float64(blockSize)))),
		bank:       bank,
	}, nil
}

func toneBins(f float64) []float64 {
	return []float64{toneLowFactor * f, f, toneHighFactor * f}
}

// SetFrequency retunes the detector and clears its state.
func (t *ToneDetector) SetFrequency(frequency float64) error {
	if err := t.bank.SetFrequencies(toneBins(frequency)); err != nil {
		return fmt.Errorf("demod: tone detector: %w", err)
	}

	t.frequency = frequency
	t.Reset()

	return nil
}

// Frequency returns the target tone frequency.
func (t *ToneDetector) Frequency() float64 { return t.frequency }

// WindowBlocks returns the number of blocks per evaluation.
func (t *ToneDetector) WindowBlocks() int { return t.window }

// Ratio returns the smoothed on-tone ratio.
func (t *ToneDetector) Ratio() float64 { return t.ratio }

// Detected reports the debounced detection state.
func (t *ToneDetector) Detected() bool { return t.detected }

// ProcessBlock accumulates one block of audio.
func (t *ToneDetector) ProcessBlock(buf []float64) {
	t.bank.ProcessBlock(buf)

	t.count++
	if t.count < t.window {
		return
	}

	t.count = 0
	t.bank.Flush(t.energies[:])

	side := t.energies[0] + t.energies[2]
	center := t.energies[1]

	current := 0.0
	if side > 0 {
		current = center / (side / 2)
	}

	t.ratio = (1-toneRatioAlpha)*t.ratio + toneRatioAlpha*current

	if t.ratio > toneRatioOn {
		t.debounce = min(t.debounce+1, toneDebounceMax)
	} else if t.debounce > 0 {
		t.debounce--
	}

	t.detected = t.debounce >= toneDebounceOn
}

// Reset clears the accumulators and the detection state.
func (t *ToneDetector) Reset() {
	t.bank.Reset()
	t.count = 0
	t.ratio = 0
	t.debounce = 0
	t.detected = false
}
