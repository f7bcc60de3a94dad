package nr

import (
	"fmt"
	"sync/atomic"
)

// Spectral is the block-side adapter of an [Engine]. ProcessBlock stages
// input samples into hops for the engine's input ring and replaces the block
// with samples drained from the output ring. When no processed hop is ready
// the missing samples are silence and the block counts as an underrun.
//
// By default the engine is pumped inline after every completed hop. Call
// SetAsync(true) and run [Engine.Run] on another goroutine to move the FFT
// work out of the block context.
type Spectral struct {
	engine *Engine
	async  bool

	stage  []float64
	staged int

	cur    []float64
	curPos int

	underruns atomic.Uint64
	errors    atomic.Uint64
}

// NewSpectral returns a strategy fed with blocks of up to blockSize samples.
func NewSpectral(blockSize int, cfg SpectralConfig) (*Spectral, error) {
	if blockSize <= 0 {
		return nil, fmt.Errorf("%w: block size %d", ErrInvalidParams, blockSize)
	}

	e, err := NewEngine(cfg)
	if err != nil {
		return nil, err
	}

	hop := e.cfg.HopSize
	s := &Spectral{
		engine: e,
		stage:  make([]float64, hop),
		cur:    make([]float64, hop),
	}
	s.Reset()

	return s, nil
}

// Name implements Strategy.
func (s *Spectral) Name() string { return "spectral" }

// Engine returns the processing engine.
func (s *Spectral) Engine() *Engine { return s.engine }

// SetAsync selects whether the engine is pumped by another goroutine.
func (s *Spectral) SetAsync(on bool) { s.async = on }

// Underruns returns the number of blocks that received substituted silence.
func (s *Spectral) Underruns() uint64 { return s.underruns.Load() }

// Dropped returns the number of input hops lost to a full ring.
func (s *Spectral) Dropped() uint64 { return s.engine.in.Dropped() }

// Errors returns the number of failed inline pumps.
func (s *Spectral) Errors() uint64 { return s.errors.Load() }

// Latency returns the delay from input to output in samples.
func (s *Spectral) Latency() int { return s.engine.Latency() + s.engine.cfg.HopSize }

// ProcessBlock implements Strategy.
func (s *Spectral) ProcessBlock(buf []float64) {
	hop := len(s.stage)

	for _, x := range buf {
		s.stage[s.staged] = x
		s.staged++

		if s.staged == hop {
			_ = s.engine.in.Push(s.stage)
			s.staged = 0

			if s.async {
				s.engine.Notify()
			} else if _, err := s.engine.Pump(); err != nil {
				s.errors.Add(1)
			}
		}
	}

	short := false

	for i := range buf {
		if s.curPos == hop {
			if !s.engine.out.Pop(s.cur) {
				clear(buf[i:])
				short = true

				break
			}

			s.curPos = 0
		}

		buf[i] = s.cur[s.curPos]
		s.curPos++
	}

	if short {
		s.underruns.Add(1)
	}
}

// Reset clears the engine and primes the output with one hop of silence.
func (s *Spectral) Reset() {
	s.engine.Reset()
	clear(s.stage)
	clear(s.cur)
	s.staged = 0
	s.curPos = 0
	s.underruns.Store(0)
	s.errors.Store(0)
}
