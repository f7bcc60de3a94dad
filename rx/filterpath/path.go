package filterpath

import (
	"errors"
	"fmt"

	"hz.tools/rf"

	"github.com/cwbudde/algo-sdr/dsp/filter/fir"
	"github.com/cwbudde/algo-sdr/dsp/filter/lattice"
	"github.com/cwbudde/algo-sdr/rx/demod"
)

var (
	// ErrInvalidPath is returned for a descriptor that cannot be used.
	ErrInvalidPath = errors.New("filterpath: invalid path")
	// ErrDuplicatePath is returned when two paths share an ID or a name.
	ErrDuplicatePath = errors.New("filterpath: duplicate path")
	// ErrNoPaths is returned by NewStore for an empty path list.
	ErrNoPaths = errors.New("filterpath: no paths")
	// ErrNoPath is returned by Select when no path applies to the mode.
	ErrNoPath = errors.New("filterpath: no path for mode")
)

// Lattice holds lattice-ladder coefficients, reflection coefficients kN..k1
// and ladder coefficients vN..v0.
type Lattice struct {
	K []float64
	V []float64
}

// Stages returns the number of lattice stages; zero for a nil lattice.
func (l *Lattice) Stages() int {
	if l == nil {
		return 0
	}

	return len(l.K)
}

// IQPair is the FIR pair applied to the I and Q channels before
// demodulation. An empty pair bypasses the stage.
type IQPair struct {
	I []float64
	Q []float64
}

// Empty reports whether the pair has no taps.
func (p IQPair) Empty() bool { return len(p.I) == 0 && len(p.Q) == 0 }

// Path describes one receive filter path.
type Path struct {
	ID    int
	Name  string
	Modes demod.ModeMask

	// Low and High are the audio passband edges.
	Low, High rf.Hz

	// Decimation is the rate reduction of the audio chain. A path with
	// Decimation 1 runs at the full rate and carries no decimator or
	// interpolator taps.
	Decimation int
	// DecimateIQ selects decimation of I/Q ahead of the FIR pair. The IQ
	// taps are then designed for the decimated rate.
	DecimateIQ bool

	IQ           IQPair
	Decimator    []float64
	PreFilter    *Lattice
	Interpolator []float64
	AntiAlias    *Lattice
}

// Capacity is the size of the largest filter of each kind in a set of
// paths. A Bank built for a Capacity re-points to any of those paths
// without allocating.
type Capacity struct {
	IQTaps           int
	DecimatorTaps    int
	InterpolatorTaps int
	LatticeStages    int
}

func (c Capacity) fit(p Path) Capacity {
	return Capacity{
		IQTaps:           max(c.IQTaps, len(p.IQ.I), len(p.IQ.Q)),
		DecimatorTaps:    max(c.DecimatorTaps, len(p.Decimator)),
		InterpolatorTaps: max(c.InterpolatorTaps, len(p.Interpolator)),
		LatticeStages:    max(c.LatticeStages, p.PreFilter.Stages(), p.AntiAlias.Stages()),
	}
}

// Width returns High-Low.
func (p Path) Width() rf.Hz { return p.High - p.Low }

// Applies reports whether the path may be used in mode m.
func (p Path) Applies(m demod.Mode) bool { return p.Modes.Has(m) }

// DecimatedRate returns the audio chain rate for a full rate of sampleRate.
func (p Path) DecimatedRate(sampleRate float64) float64 {
	if p.Decimation <= 1 {
		return sampleRate
	}

	return sampleRate / float64(p.Decimation)
}

// String implements fmt.Stringer.
func (p Path) String() string {
	return fmt.Sprintf("%s (#%d, %s)", p.Name, p.ID, p.Modes)
}

// Validate checks the descriptor against the block size it will run with.
func (p Path) Validate(blockSize int) error {
	if err := p.validate(blockSize); err != nil {
		return fmt.Errorf("filterpath: path %d %q: %w", p.ID, p.Name, err)
	}

	return nil
}

func (p Path) validate(blockSize int) error {
	switch {
	case p.Name == "":
		return fmt.Errorf("%w: empty name", ErrInvalidPath)
	case p.Modes == 0:
		return fmt.Errorf("%w: no modes", ErrInvalidPath)
	case p.Low < 0 || p.High <= p.Low:
		return fmt.Errorf("%w: passband [%v, %v]", ErrInvalidPath, p.Low, p.High)
	case p.Decimation < 1:
		return fmt.Errorf("%w: decimation %d", ErrInvalidPath, p.Decimation)
	case blockSize <= 0 || blockSize%p.Decimation != 0:
		return fmt.Errorf("%w: block %d, decimation %d", fir.ErrBlockSize, blockSize, p.Decimation)
	case len(p.IQ.I) != len(p.IQ.Q):
		return fmt.Errorf("%w: I/Q pair has %d and %d taps", ErrInvalidPath, len(p.IQ.I), len(p.IQ.Q))
	}

	if p.Decimation == 1 {
		if len(p.Decimator) != 0 || len(p.Interpolator) != 0 {
			return fmt.Errorf("%w: full-rate path carries rate change taps", ErrInvalidPath)
		}

		if p.DecimateIQ {
			return fmt.Errorf("%w: full-rate path cannot decimate I/Q", ErrInvalidPath)
		}
	} else {
		if len(p.Decimator) == 0 {
			return fmt.Errorf("decimator: %w", fir.ErrNoTaps)
		}

		n := len(p.Interpolator)
		if n%p.Decimation != 0 || n/p.Decimation < 2 {
			return fmt.Errorf("interpolator: %w: %d taps, rate %d", fir.ErrPhaseLength, n, p.Decimation)
		}
	}

	for _, l := range []struct {
		name string
		lat  *Lattice
	}{{"pre-filter", p.PreFilter}, {"anti-alias", p.AntiAlias}} {
		if l.lat == nil {
			continue
		}

		if err := lattice.Validate(l.lat.K, l.lat.V); err != nil {
			return fmt.Errorf("%s: %w", l.name, err)
		}
	}

	return nil
}
