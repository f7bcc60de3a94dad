package demod

import "math"

const (
	fadeTauR = 0.02
	fadeTauI = 1.4
)

// FadeLeveler removes slow carrier fades from an AM envelope. A fast tracker
// follows the audio DC and a slow tracker follows the carrier correlation;
// the difference is added back so that selective fading levels out while
// modulation passes unchanged.
type FadeLeveler struct {
	mtauR, mtauI float64
	dc, dcInsert float64
}

// NewFadeLeveler returns a leveler for the given audio sample rate.
func NewFadeLeveler(sampleRate float64) *FadeLeveler {
	f := &FadeLeveler{}
	f.SetSampleRate(sampleRate)

	return f
}

// SetSampleRate recomputes the tracker constants and keeps the state.
func (f *FadeLeveler) SetSampleRate(sampleRate float64) {
	f.mtauR = math.Exp(-1 / (sampleRate * fadeTauR))
	f.mtauI = math.Exp(-1 / (sampleRate * fadeTauI))
}

// Process levels one audio sample given the carrier correlation corr. Plain
// envelope detection passes corr = 0.
func (f *FadeLeveler) Process(audio, corr float64) float64 {
	f.dc = f.mtauR*f.dc + (1-f.mtauR)*audio
	f.dcInsert = f.mtauI*f.dcInsert + (1-f.mtauI)*corr

	return audio + f.dcInsert - f.dc
}

// Reset clears both trackers.
func (f *FadeLeveler) Reset() {
	f.dc = 0
	f.dcInsert = 0
}
