// Package level summarizes the level of interleaved audio per channel:
// DC offset, RMS, peak and crest factor, plus a count of samples at or
// beyond full scale. Levels in dB are relative to a full-scale amplitude
// of 1 and are -Inf for silence.
package level

import (
	"errors"
	"math"
)

// ErrInvalidChannels is returned by NewMeter for a channel count below 1.
var ErrInvalidChannels = errors.New("level: channel count must be >= 1")

// Stats holds the level of one channel.
//
//nolint:revive
type Stats struct {
	Frames    int
	DC        float64
	RMS       float64
	RMS_dB    float64
	Peak      float64
	Peak_dB   float64
	PeakFrame int
	// Crest_dB is Peak/RMS in dB, zero for silence.
	Crest_dB float64
	Clipped  int
}

type accumulator struct {
	sum, sumSq float64
	peak       float64
	peakFrame  int
	clipped    int
}

func (a *accumulator) add(x float64, frame int) {
	a.sum += x
	a.sumSq += x * x

	if m := math.Abs(x); m > a.peak {
		a.peak = m
		a.peakFrame = frame
	}

	if math.Abs(x) >= 1 {
		a.clipped++
	}
}

func (a *accumulator) stats(frames int) Stats {
	s := Stats{
		Frames:    frames,
		RMS_dB:    math.Inf(-1),
		Peak_dB:   math.Inf(-1),
		Peak:      a.peak,
		PeakFrame: a.peakFrame,
		Clipped:   a.clipped,
	}

	if frames == 0 {
		return s
	}

	n := float64(frames)
	s.DC = a.sum / n
	s.RMS = math.Sqrt(a.sumSq / n)
	s.RMS_dB = ampToDB(s.RMS)
	s.Peak_dB = ampToDB(s.Peak)

	if s.RMS > 0 {
		s.Crest_dB = ampToDB(s.Peak / s.RMS)
	}

	return s
}

// Calculate returns the level of a single channel.
func Calculate(x []float64) Stats {
	var a accumulator
	for i, v := range x {
		a.add(v, i)
	}

	return a.stats(len(x))
}

// Meter accumulates the level of interleaved audio across updates.
type Meter struct {
	acc    []accumulator
	frames int
}

// NewMeter returns a meter for the given number of interleaved channels.
func NewMeter(channels int) (*Meter, error) {
	if channels < 1 {
		return nil, ErrInvalidChannels
	}

	return &Meter{acc: make([]accumulator, channels)}, nil
}

// Update adds whole frames of interleaved samples. A trailing partial
// frame is ignored.
func (m *Meter) Update(samples []float32) {
	ch := len(m.acc)
	frames := len(samples) / ch

	for f := range frames {
		for c := range m.acc {
			m.acc[c].add(float64(samples[f*ch+c]), m.frames+f)
		}
	}

	m.frames += frames
}

// Channels returns the channel count.
func (m *Meter) Channels() int { return len(m.acc) }

// Frames returns the number of frames seen since the last Reset.
func (m *Meter) Frames() int { return m.frames }

// Channel returns the level of channel c. It panics for an out-of-range
// channel.
func (m *Meter) Channel(c int) Stats {
	return m.acc[c].stats(m.frames)
}

// Reset clears the accumulated level.
func (m *Meter) Reset() {
	clear(m.acc)
	m.frames = 0
}

func ampToDB(v float64) float64 {
	if v <= 0 {
		return math.Inf(-1)
	}

	return 20 * math.Log10(v)
}
