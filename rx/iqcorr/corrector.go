package iqcorr

import (
	"math"

	"github.com/cwbudde/algo-sdr/dsp/core"
	"github.com/cwbudde/algo-vecmath"
)

// smoothing is the weight of the newest block average in the estimators.
const smoothing = 0.003

// Settings selects the correction mode and the manual parameters.
type Settings struct {
	// Auto enables blind estimation. The manual fields are ignored when set.
	Auto bool `yaml:"auto"`
	// GainI and GainQ scale the channels in manual mode.
	GainI float64 `yaml:"gain_i"`
	GainQ float64 `yaml:"gain_q"`
	// Phase leaks I into Q when negative and Q into I when positive.
	Phase float64 `yaml:"phase"`
}

// DefaultSettings returns automatic correction.
func DefaultSettings() Settings {
	return Settings{Auto: true, GainI: 1, GainQ: 1}
}

// Corrector removes IQ imbalance block by block.
type Corrector struct {
	settings Settings

	teta1, teta2, teta3 float64
	mc1, mc2            float64

	twin    *TwinPeaks
	scratch []float64
}

// NewCorrector returns a corrector in the given mode. twin may be nil, in
// which case the twin-peak check is skipped.
func NewCorrector(s Settings, twin *TwinPeaks) *Corrector {
	c := &Corrector{settings: s, twin: twin}
	c.Reset()

	return c
}

// SetSettings switches mode or manual parameters. Estimator state is kept so
// that toggling automatic mode does not restart convergence.
func (c *Corrector) SetSettings(s Settings) {
	c.settings = s
}

// Settings returns the active settings.
func (c *Corrector) Settings() Settings {
	return c.settings
}

// TwinPeaks returns the attached detector, or nil.
func (c *Corrector) TwinPeaks() *TwinPeaks {
	return c.twin
}

// Coefficients returns the phase (M_c1) and amplitude (M_c2) correction
// coefficients from the last automatic block.
func (c *Corrector) Coefficients() (mc1, mc2 float64) {
	return c.mc1, c.mc2
}

// Estimates returns the smoothed sign-correlation statistics.
func (c *Corrector) Estimates() (teta1, teta2, teta3 float64) {
	return c.teta1, c.teta2, c.teta3
}

// Reset clears the estimators. The twin-peak detector is left alone.
func (c *Corrector) Reset() {
	c.teta1, c.teta2, c.teta3 = 0, 0, 0
	c.mc1, c.mc2 = 0, 1
}

// Process corrects i and q in place. Both slices must have the same length.
func (c *Corrector) Process(i, q []float64) {
	n := min(len(i), len(q))
	if n == 0 {
		return
	}

	i, q = i[:n], q[:n]

	if !c.settings.Auto {
		c.processManual(i, q)
		return
	}

	c.estimate(i, q)

	if c.twin != nil {
		c.twin.Observe(c.teta1, c.teta3)
	}

	// Q first, against the uncorrected I.
	for k := range q {
		q[k] += c.mc1 * i[k]
	}

	vecmath.ScaleBlock(i, i, c.mc2)
}

func (c *Corrector) estimate(i, q []float64) {
	var t1, t2, t3 float64

	for k := range i {
		si := core.Sign(i[k])
		t1 += si * q[k]
		t2 += si * i[k]
		t3 += core.Sign(q[k]) * q[k]
	}

	n := float64(len(i))

	c.teta1 = -smoothing*(t1/n) + (1-smoothing)*c.teta1
	c.teta2 = smoothing*(t2/n) + (1-smoothing)*c.teta2
	c.teta3 = smoothing*(t3/n) + (1-smoothing)*c.teta3

	c.mc1 = 0
	if c.teta2 != 0 {
		c.mc1 = c.teta1 / c.teta2
	}

	help := c.teta2 * c.teta2
	if help > 0 {
		help = (c.teta3*c.teta3 - c.teta1*c.teta1) / help
	}

	c.mc2 = 1
	if help > 0 {
		c.mc2 = math.Sqrt(help)
	}
}

func (c *Corrector) processManual(i, q []float64) {
	vecmath.ScaleBlock(i, i, c.settings.GainI)
	vecmath.ScaleBlock(q, q, c.settings.GainQ)

	switch p := c.settings.Phase; {
	case p < 0:
		c.mix(q, i, p)
	case p > 0:
		c.mix(i, q, p)
	}
}

// mix adds scale*src to dst.
func (c *Corrector) mix(dst, src []float64, scale float64) {
	c.scratch = core.EnsureLen(c.scratch, len(src))
	vecmath.ScaleBlock(c.scratch, src, scale)
	vecmath.AddBlockInPlace(dst, c.scratch)
}
