package demod

import "github.com/cwbudde/algo-vecmath"

// AM is an envelope detector with an optional fade leveler.
type AM struct {
	leveler *FadeLeveler
	fade    bool
}

// NewAM returns an envelope detector for audio at sampleRate.
func NewAM(sampleRate float64) *AM {
	return &AM{leveler: NewFadeLeveler(sampleRate)}
}

// SetFadeLeveler enables or disables fade leveling.
func (a *AM) SetFadeLeveler(on bool) {
	if on && !a.fade {
		a.leveler.Reset()
	}

	a.fade = on
}

// FadeLeveler reports whether fade leveling is enabled.
func (a *AM) FadeLeveler() bool { return a.fade }

// SetSampleRate updates the leveler time constants.
func (a *AM) SetSampleRate(sampleRate float64) {
	a.leveler.SetSampleRate(sampleRate)
}

// Process writes sqrt(I²+Q²) into out. All slices must have equal length.
func (a *AM) Process(i, q, out []float64) {
	vecmath.Magnitude(out, i, q)

	if !a.fade {
		return
	}

	for k, v := range out {
		out[k] = a.leveler.Process(v, 0)
	}
}

// Reset clears the leveler.
func (a *AM) Reset() {
	a.leveler.Reset()
}
