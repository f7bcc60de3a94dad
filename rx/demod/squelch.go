package demod

// SquelchHysteresis is the half width of the band around the threshold in
// which the squelch keeps its current state.
const SquelchHysteresis = 3

const (
	noiseAvgMax   = 0.175
	noiseScale    = 172
	noiseLevelMax = 24
	noiseLevelTop = 22
)

// NoiseToLevel maps an averaged noise magnitude onto the squelch setting
// scale: a quiet (strong) signal reads high, noise reads low.
func NoiseToLevel(avg float64) float64 {
	avg = min(avg, noiseAvgMax)

	return noiseLevelTop - min(avg*noiseScale, noiseLevelMax)
}

// Squelch is a two-state gate with hysteresis. A threshold of zero keeps
// the gate open.
type Squelch struct {
	threshold int
	squelched bool
}

// NewSquelch returns a closed gate.
func NewSquelch(threshold int) *Squelch {
	s := &Squelch{squelched: true}
	s.SetThreshold(threshold)

	return s
}

// SetThreshold changes the threshold. Negative values are treated as zero.
func (s *Squelch) SetThreshold(threshold int) {
	s.threshold = max(threshold, 0)
}

// Threshold returns the current threshold.
func (s *Squelch) Threshold() int { return s.threshold }

// Squelched reports whether the gate is closed.
func (s *Squelch) Squelched() bool { return s.squelched }

// Evaluate updates the gate with a new level and reports whether it is open.
func (s *Squelch) Evaluate(level float64) bool {
	thr := float64(s.threshold)

	switch {
	case s.threshold == 0:
		s.squelched = false
	case s.squelched:
		if level >= thr+SquelchHysteresis {
			s.squelched = false
		}
	case s.threshold > SquelchHysteresis:
		if level < thr-SquelchHysteresis {
			s.squelched = true
		}
	default:
		if level < thr {
			s.squelched = true
		}
	}

	return !s.squelched
}

// Reset closes the gate.
func (s *Squelch) Reset() { s.squelched = true }
