package filterpath

import (
	"hz.tools/rf"

	"github.com/cwbudde/algo-sdr/dsp/filter/biquad"
	"github.com/cwbudde/algo-sdr/dsp/filter/design"
)

// EQ design constants.
const (
	NotchQ        = 10.0
	PeakQ         = 4.0
	PeakBandwidth = 0.03 // octaves

	BassFrequency   rf.Hz = 250
	BassSlope             = 0.7
	TrebleFrequency rf.Hz = 3500
	TrebleSlope           = 0.9
)

// EQSettings selects the audio EQ of the receive chain.
type EQSettings struct {
	Notch          bool    `yaml:"notch"`
	NotchFrequency rf.Hz   `yaml:"notch_frequency"`
	Peak           bool    `yaml:"peak"`
	PeakFrequency  rf.Hz   `yaml:"peak_frequency"`
	BassDB         float64 `yaml:"bass_db"`
	TrebleDB       float64 `yaml:"treble_db"`
}

var passthroughNegated = biquad.Passthrough.Negate()

// Notch returns the manual notch at f for sample rate fs.
func Notch(f rf.Hz, fs float64) biquad.Negated {
	return negated(design.Notch(float64(f), NotchQ, fs))
}

// Peak returns the manual peak filter at f for sample rate fs: a
// constant-skirt bandpass with a peak gain of PeakQ.
func Peak(f rf.Hz, fs float64) biquad.Negated {
	return negated(design.BandpassBW(float64(f), PeakBandwidth, PeakQ, fs))
}

// LowShelf returns the bass shelf at BassFrequency. A flat shelf is the
// passthrough section.
func LowShelf(gainDB, fs float64) biquad.Negated {
	if gainDB == 0 {
		return passthroughNegated
	}

	q := design.ShelfSlopeQ(gainDB, BassSlope)
	return negated(design.LowShelf(float64(BassFrequency), gainDB, q, fs))
}

// HighShelf returns the treble shelf at TrebleFrequency.
func HighShelf(gainDB, fs float64) biquad.Negated {
	if gainDB == 0 {
		return passthroughNegated
	}

	q := design.ShelfSlopeQ(gainDB, TrebleSlope)
	return negated(design.HighShelf(float64(TrebleFrequency), gainDB, q, fs))
}

// negated converts c, substituting the passthrough section for designs the
// sample rate cannot support.
func negated(c biquad.Coefficients) biquad.Negated {
	if c == (biquad.Coefficients{}) || !c.IsStable() {
		return passthroughNegated
	}

	return c.Negate()
}

// Biquad1 returns the decimated-rate EQ stages: notch, peak, bass and a
// reserved passthrough stage. Disabled stages are passthrough.
func Biquad1(s EQSettings, fsDec float64) [4]biquad.Negated {
	stages := [4]biquad.Negated{passthroughNegated, passthroughNegated, passthroughNegated, passthroughNegated}

	if s.Notch {
		stages[0] = Notch(s.NotchFrequency, fsDec)
	}

	if s.Peak {
		stages[1] = Peak(s.PeakFrequency, fsDec)
	}

	stages[2] = LowShelf(s.BassDB, fsDec)

	return stages
}

// Biquad2 returns the full-rate treble stage.
func Biquad2(s EQSettings, fs float64) [1]biquad.Negated {
	return [1]biquad.Negated{HighShelf(s.TrebleDB, fs)}
}

// Sections converts negated stages to the textbook layout used by
// biquad.Chain.
func Sections(stages []biquad.Negated) []biquad.Coefficients {
	out := make([]biquad.Coefficients, len(stages))
	for i, n := range stages {
		out[i] = n.Coefficients()
	}

	return out
}

// SectionsInto is Sections writing into dst, which must be at least as long
// as stages.
func SectionsInto(dst []biquad.Coefficients, stages []biquad.Negated) []biquad.Coefficients {
	dst = dst[:len(stages)]
	for i, n := range stages {
		dst[i] = n.Coefficients()
	}

	return dst
}
