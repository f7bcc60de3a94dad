package demod

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-sdr/dsp/core"
)

// PLLConfig holds the loop parameters of the carrier tracking PLL.
type PLLConfig struct {
	// Zeta is the damping factor, 0 < Zeta < 1.
	Zeta float64
	// OmegaN is the natural frequency in rad/s.
	OmegaN float64
	// FMin and FMax bound the tracked carrier offset in Hz.
	FMin, FMax float64
}

// DefaultPLLConfig returns the medium-speed loop: zeta 0.65, omegaN 200,
// ±4 kHz pull-in range.
func DefaultPLLConfig() PLLConfig {
	return PLLConfig{Zeta: 0.65, OmegaN: 200, FMin: -4000, FMax: 4000}
}

// PLL is a second-order digital phase-locked loop driving an NCO phase.
type PLL struct {
	cfg        PLLConfig
	sampleRate float64

	g1, g2             float64
	omegaMin, omegaMax float64

	phs    float64
	omega2 float64
	filOut float64
}

// NewPLL returns a loop for the given sample rate.
func NewPLL(cfg PLLConfig, sampleRate float64) (*PLL, error) {
	p := &PLL{}
	if err := p.Configure(cfg, sampleRate); err != nil {
		return nil, err
	}

	return p, nil
}

// Configure recomputes the loop gains. Loop state is kept.
func (p *PLL) Configure(cfg PLLConfig, sampleRate float64) error {
	if sampleRate <= 0 || math.IsNaN(sampleRate) || math.IsInf(sampleRate, 0) {
		return fmt.Errorf("demod: pll sample rate must be > 0: %v", sampleRate)
	}

	if !(cfg.Zeta > 0 && cfg.Zeta < 1) {
		return fmt.Errorf("demod: pll zeta must be in (0,1): %v", cfg.Zeta)
	}

	if cfg.OmegaN <= 0 {
		return fmt.Errorf("demod: pll omegaN must be > 0: %v", cfg.OmegaN)
	}

	if cfg.FMin > cfg.FMax {
		return fmt.Errorf("demod: pll fmin %v above fmax %v", cfg.FMin, cfg.FMax)
	}

	p.cfg = cfg
	p.sampleRate = sampleRate

	wn := cfg.OmegaN
	z := cfg.Zeta

	p.g1 = 1 - math.Exp(-2*wn*z/sampleRate)
	p.g2 = -p.g1 + 2*(1-math.Exp(-wn*z/sampleRate)*math.Cos(wn/sampleRate*math.Sqrt(1-z*z)))
	p.omegaMin = core.TwoPi * cfg.FMin / sampleRate
	p.omegaMax = core.TwoPi * cfg.FMax / sampleRate

	return nil
}

// Config returns the loop parameters.
func (p *PLL) Config() PLLConfig { return p.cfg }

// Gains returns the proportional and integral loop gains.
func (p *PLL) Gains() (g1, g2 float64) { return p.g1, p.g2 }

// Phase returns the NCO phase in [0, 2π).
func (p *PLL) Phase() float64 { return p.phs }

// Omega returns the integrator output in rad/sample.
func (p *PLL) Omega() float64 { return p.omega2 }

// Frequency returns the tracked carrier offset in Hz.
func (p *PLL) Frequency() float64 {
	return p.omega2 * p.sampleRate / core.TwoPi
}

// Update advances the loop by one sample with the measured phase error.
// The NCO moves by the filter output of the previous sample.
func (p *PLL) Update(phaseError float64) {
	delOut := p.filOut

	p.omega2 = core.Clamp(p.omega2+p.g2*phaseError, p.omegaMin, p.omegaMax)
	p.filOut = p.g1*phaseError + p.omega2
	p.phs = core.WrapPhase(p.phs + delOut)
}

// Reset returns the loop to zero phase and frequency.
func (p *PLL) Reset() {
	p.phs = 0
	p.omega2 = 0
	p.filOut = 0
}
