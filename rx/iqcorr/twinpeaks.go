package iqcorr

import "math"

// State is the twin-peak detector state.
type State int

const (
	// StateWait lets the estimators settle after start-up or a restart.
	StateWait State = iota
	// StateSampling accumulates the IQ phase error.
	StateSampling
	// StateDone means the phase error was within limits.
	StateDone
	// StateCodecRestart asks the supervisor to restart the codec.
	StateCodecRestart
	// StateUncorrectable is terminal: restarts did not clear the fault.
	StateUncorrectable
)

// String implements fmt.Stringer.
func (s State) String() string {
	switch s {
	case StateWait:
		return "wait"
	case StateSampling:
		return "sampling"
	case StateDone:
		return "done"
	case StateCodecRestart:
		return "codec-restart"
	case StateUncorrectable:
		return "uncorrectable"
	default:
		return "unknown"
	}
}

const (
	// DefaultSettleBlocks is about 0.667 s of 32-sample blocks at 48 kHz.
	DefaultSettleBlocks = 1000
	// DefaultSamplingRuns is the number of blocks averaged per verdict.
	DefaultSamplingRuns = 50
	// DefaultMaxRestarts is the number of restart requests that may fail
	// before the detector gives up.
	DefaultMaxRestarts = 4
	// PhaseThreshold is the largest tolerated IQ phase error (22.5°).
	PhaseThreshold = math.Pi / 8

	phaseAlpha = 0.05
)

// TwinPeaksOption configures a TwinPeaks detector.
type TwinPeaksOption func(*TwinPeaks)

// WithSettleBlocks overrides the number of blocks waited before sampling.
func WithSettleBlocks(n int) TwinPeaksOption {
	return func(t *TwinPeaks) {
		if n >= 0 {
			t.settle = n
		}
	}
}

// WithSamplingRuns overrides the number of blocks averaged per verdict.
func WithSamplingRuns(n int) TwinPeaksOption {
	return func(t *TwinPeaks) {
		if n > 0 {
			t.runsNeeded = n
		}
	}
}

// TwinPeaks detects a codec that delivers I and Q with nearly equal phase.
//
// The detector starts in StateWait, moves to StateSampling once the settle
// period has elapsed and then estimates the IQ phase error as
// asin(teta1/teta3), smoothed over the sampling runs. An error above
// PhaseThreshold yields StateCodecRestart; the caller restarts the codec and
// calls Acknowledge to test again. A failed check after DefaultMaxRestarts
// consecutive restart requests parks the detector in StateUncorrectable.
type TwinPeaks struct {
	settle      int
	runsNeeded  int
	maxRestarts int

	state    State
	counter  int
	phase    float64
	runs     int
	restarts int
}

// NewTwinPeaks returns a detector in StateWait.
func NewTwinPeaks(opts ...TwinPeaksOption) *TwinPeaks {
	t := &TwinPeaks{
		settle:      DefaultSettleBlocks,
		runsNeeded:  DefaultSamplingRuns,
		maxRestarts: DefaultMaxRestarts,
	}

	for _, opt := range opts {
		if opt != nil {
			opt(t)
		}
	}

	return t
}

// State returns the current state.
func (t *TwinPeaks) State() State { return t.state }

// PhaseError returns the smoothed phase error estimate in radians.
func (t *TwinPeaks) PhaseError() float64 { return t.phase }

// Restarts returns the number of consecutive restart requests issued.
func (t *TwinPeaks) Restarts() int { return t.restarts }

// Observe feeds the smoothed teta1 and teta3 estimates of one block.
func (t *TwinPeaks) Observe(teta1, teta3 float64) {
	if t.state == StateWait {
		t.counter++
		if t.counter > t.settle {
			t.state = StateSampling
			t.counter = 0
			t.phase = 0
			t.runs = 0
		}
	}

	if t.state != StateSampling || teta3 == 0 {
		return
	}

	cur := math.Asin(clampUnit(teta1 / teta3))
	if t.runs == 0 {
		t.phase = cur
	} else {
		t.phase = phaseAlpha*cur + (1-phaseAlpha)*t.phase
	}

	t.runs++
	if t.runs < t.runsNeeded {
		return
	}

	if math.Abs(t.phase) <= PhaseThreshold {
		t.state = StateDone
		t.restarts = 0

		return
	}

	if t.restarts >= t.maxRestarts {
		t.state = StateUncorrectable
		return
	}

	t.restarts++
	t.state = StateCodecRestart
}

// Acknowledge reports that the requested codec restart happened and the
// check should run again. It is ignored unless a restart was requested.
func (t *TwinPeaks) Acknowledge() {
	if t.state != StateCodecRestart {
		return
	}

	t.state = StateWait
	t.counter = 0
}

// Retest restarts the check from StateWait. It clears a terminal
// StateUncorrectable and is meant for manual intervention.
func (t *TwinPeaks) Retest() {
	t.state = StateWait
	t.counter = 0
	t.runs = 0
	t.phase = 0
	t.restarts = 0
}

func clampUnit(x float64) float64 {
	switch {
	case x > 1:
		return 1
	case x < -1:
		return -1
	case math.IsNaN(x):
		return 0
	default:
		return x
	}
}
