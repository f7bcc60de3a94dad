package mix

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-sdr/dsp/core"
)

// NCO is a phase-accumulator oscillator.
type NCO struct {
	sampleRate float64
	freqHz     float64
	phase      float64
	phaseInc   float64
}

// NewNCO creates an oscillator at freqHz. Negative frequencies rotate
// clockwise.
func NewNCO(freqHz, sampleRate float64) (*NCO, error) {
	if sampleRate <= 0 || math.IsNaN(sampleRate) || math.IsInf(sampleRate, 0) {
		return nil, fmt.Errorf("mix: sample rate must be > 0 and finite: %f", sampleRate)
	}

	n := &NCO{sampleRate: sampleRate}
	if err := n.SetFrequency(freqHz); err != nil {
		return nil, err
	}

	return n, nil
}

// SetFrequency changes the frequency without resetting the phase.
func (n *NCO) SetFrequency(freqHz float64) error {
	if math.IsNaN(freqHz) || math.IsInf(freqHz, 0) || math.Abs(freqHz) > n.sampleRate/2 {
		return fmt.Errorf("mix: frequency must be finite and within +-%g Hz: %f", n.sampleRate/2, freqHz)
	}

	n.freqHz = freqHz
	n.phaseInc = core.TwoPi * freqHz / n.sampleRate

	return nil
}

// Frequency returns the oscillator frequency in Hz.
func (n *NCO) Frequency() float64 { return n.freqHz }

// Phase returns the current phase in [0, 2*pi).
func (n *NCO) Phase() float64 { return n.phase }

// Next returns sin and cos of the current phase and advances by one sample.
func (n *NCO) Next() (sin, cos float64) {
	sin, cos = math.Sincos(n.phase)
	n.phase = core.WrapPhase(n.phase + n.phaseInc)

	return sin, cos
}

// Reset sets the phase to zero.
func (n *NCO) Reset() { n.phase = 0 }
