package rx

import (
	"math"
	"sync/atomic"

	"github.com/cwbudde/algo-sdr/rx/iqcorr"
)

// ClipLevel is the highest raw input level reached in a block.
type ClipLevel int32

const (
	ClipNone ClipLevel = iota
	// ClipQuarter is at least a quarter of full scale.
	ClipQuarter
	// ClipHalf is at least half of full scale.
	ClipHalf
	// ClipFull is at or above full scale.
	ClipFull
)

// String implements fmt.Stringer.
func (c ClipLevel) String() string {
	switch c {
	case ClipNone:
		return "none"
	case ClipQuarter:
		return "quarter"
	case ClipHalf:
		return "half"
	case ClipFull:
		return "full"
	default:
		return "unknown"
	}
}

func clipLevel(buf []float64) ClipLevel {
	var peak float64
	for _, v := range buf {
		peak = max(peak, math.Abs(v))
	}

	switch {
	case peak >= 1:
		return ClipFull
	case peak >= 0.5:
		return ClipHalf
	case peak >= 0.25:
		return ClipQuarter
	default:
		return ClipNone
	}
}

// Telemetry is a snapshot of the pipeline state.
type Telemetry struct {
	// Blocks is the number of processed blocks.
	Blocks uint64
	// PathID is the active filter path.
	PathID int
	// Squelched is set while FM audio is gated off.
	Squelched bool
	// ToneDetected is set while the FM tone squelch hears its tone.
	ToneDetected bool
	// Muted is set when the last block was written as silence.
	Muted bool
	// Clip is the level of the last block; FullScaleBlocks counts blocks
	// that reached full scale.
	Clip            ClipLevel
	FullScaleBlocks uint64
	// TwinPeaks is the IQ fault detector state.
	TwinPeaks iqcorr.State
	// CarrierOffset is the SAM carrier offset in Hz.
	CarrierOffset float64
	// MC1 and MC2 are the automatic IQ correction coefficients.
	MC1, MC2 float64
	// AGCGainDB is the gain applied by the AGC in the last block.
	AGCGainDB float64
	// NRUnderruns counts blocks that received silence from the spectral
	// noise reduction.
	NRUnderruns uint64
}

type atomicFloat struct{ bits atomic.Uint64 }

func (f *atomicFloat) Store(v float64) { f.bits.Store(math.Float64bits(v)) }
func (f *atomicFloat) Load() float64   { return math.Float64frombits(f.bits.Load()) }

// telemetry is written by the processing goroutine and read by Telemetry.
type telemetry struct {
	blocks     atomic.Uint64
	pathID     atomic.Int64
	squelched  atomic.Bool
	tone       atomic.Bool
	muted      atomic.Bool
	clip       atomic.Int32
	fullScale  atomic.Uint64
	twin       atomic.Int32
	carrier    atomicFloat
	mc1, mc2   atomicFloat
	agcGainDB  atomicFloat
	nrUnderrun atomic.Uint64
}

func (t *telemetry) snapshot() Telemetry {
	return Telemetry{
		Blocks:          t.blocks.Load(),
		PathID:          int(t.pathID.Load()),
		Squelched:       t.squelched.Load(),
		ToneDetected:    t.tone.Load(),
		Muted:           t.muted.Load(),
		Clip:            ClipLevel(t.clip.Load()),
		FullScaleBlocks: t.fullScale.Load(),
		TwinPeaks:       iqcorr.State(t.twin.Load()),
		CarrierOffset:   t.carrier.Load(),
		MC1:             t.mc1.Load(),
		MC2:             t.mc2.Load(),
		AGCGainDB:       t.agcGainDB.Load(),
		NRUnderruns:     t.nrUnderrun.Load(),
	}
}
