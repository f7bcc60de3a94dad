package demod

import (
	"fmt"
	"math"
	"strings"

	"github.com/cwbudde/algo-sdr/dsp/filter/hilbert"
)

// Sideband selects the synchronous AM output.
type Sideband int

const (
	// SidebandBoth demodulates both sidebands (plain synchronous AM).
	SidebandBoth Sideband = iota
	SidebandLSB
	SidebandUSB
	// SidebandStereo puts LSB on the left and USB on the right channel.
	SidebandStereo
)

// String implements fmt.Stringer.
func (s Sideband) String() string {
	switch s {
	case SidebandBoth:
		return "both"
	case SidebandLSB:
		return "lsb"
	case SidebandUSB:
		return "usb"
	case SidebandStereo:
		return "stereo"
	default:
		return fmt.Sprintf("Sideband(%d)", int(s))
	}
}

// ParseSideband parses a sideband name case-insensitively.
func ParseSideband(name string) (Sideband, error) {
	for sb := SidebandBoth; sb <= SidebandStereo; sb++ {
		if strings.EqualFold(strings.TrimSpace(name), sb.String()) {
			return sb, nil
		}
	}

	return 0, fmt.Errorf("demod: unknown sideband %q", name)
}

// MarshalText implements encoding.TextMarshaler.
func (s Sideband) MarshalText() ([]byte, error) {
	if s < SidebandBoth || s > SidebandStereo {
		return nil, fmt.Errorf("demod: unknown sideband %d", int(s))
	}

	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Sideband) UnmarshalText(text []byte) error {
	v, err := ParseSideband(string(text))
	if err != nil {
		return err
	}

	*s = v

	return nil
}

// carrierBlocks is the number of blocks between carrier offset updates.
const carrierBlocks = 50

// SAM is a synchronous AM demodulator. A PLL locks an NCO to the carrier;
// the mixed products are either summed directly (both sidebands) or passed
// through a quadrature all-pass network to separate the sidebands.
type SAM struct {
	pll        *PLL
	sampleRate float64
	sideband   Sideband

	pairI, pairQ *hilbert.Pair

	fade     bool
	levelers [2]*FadeLeveler

	count   int
	lowpass float64
	carrier float64
}

// NewSAM returns a demodulator for I/Q at sampleRate.
func NewSAM(cfg PLLConfig, sampleRate float64) (*SAM, error) {
	pll, err := NewPLL(cfg, sampleRate)
	if err != nil {
		return nil, err
	}

	return &SAM{
		pll:        pll,
		sampleRate: sampleRate,
		pairI:      hilbert.NewSAMPair(),
		pairQ:      hilbert.NewSAMPair(),
		levelers:   [2]*FadeLeveler{NewFadeLeveler(sampleRate), NewFadeLeveler(sampleRate)},
	}, nil
}

// Configure changes the loop parameters or sample rate, keeping the lock.
func (s *SAM) Configure(cfg PLLConfig, sampleRate float64) error {
	if err := s.pll.Configure(cfg, sampleRate); err != nil {
		return err
	}

	s.sampleRate = sampleRate
	for _, l := range s.levelers {
		l.SetSampleRate(sampleRate)
	}

	return nil
}

// PLL exposes the carrier loop.
func (s *SAM) PLL() *PLL { return s.pll }

// SetSideband selects the output sideband.
func (s *SAM) SetSideband(sb Sideband) {
	if sb != s.sideband {
		s.pairI.Reset()
		s.pairQ.Reset()
	}

	s.sideband = sb
}

// Sideband returns the selected sideband.
func (s *SAM) Sideband() Sideband { return s.sideband }

// SetFadeLeveler enables or disables fade leveling.
func (s *SAM) SetFadeLeveler(on bool) { s.fade = on }

// CarrierOffset returns the smoothed carrier offset in Hz. It is refreshed
// once every 51 blocks.
func (s *SAM) CarrierOffset() float64 { return s.carrier }

// Process demodulates one block. right is written only for SidebandStereo
// and may be nil otherwise.
func (s *SAM) Process(i, q, left, right []float64) {
	n := min(len(i), len(q), len(left))
	stereo := s.sideband == SidebandStereo && len(right) >= n

	for k := range n {
		sin, cos := math.Sincos(s.pll.Phase())

		ai := cos * i[k]
		bi := sin * i[k]
		aq := cos * q[k]
		bq := sin * q[k]

		corr0 := ai + bq
		corr1 := -bi + aq

		var l, r float64

		if s.sideband == SidebandBoth {
			l = corr0
		} else {
			aiPS, biPS := s.pairI.ProcessSample(ai, bi)
			bqPS, aqPS := s.pairQ.ProcessSample(bq, aq)

			lsb := (aiPS + biPS) - (aqPS - bqPS)
			usb := (aiPS - biPS) + (aqPS + bqPS)

			switch s.sideband {
			case SidebandLSB:
				l = lsb
			case SidebandStereo:
				l, r = lsb, usb
			default:
				l = usb
			}
		}

		if s.fade {
			l = s.levelers[0].Process(l, corr0)
			if stereo {
				r = s.levelers[1].Process(r, corr0)
			}
		}

		left[k] = l
		if stereo {
			right[k] = r
		}

		s.pll.Update(math.Atan2(corr1, corr0))
	}

	s.count++
	if s.count > carrierBlocks {
		s.carrier = 0.1*s.pll.Frequency() + 0.9*s.lowpass
		s.lowpass = s.carrier
		s.count = 0
	}
}

// Reset clears the loop, the all-pass networks and the levelers.
func (s *SAM) Reset() {
	s.pll.Reset()
	s.pairI.Reset()
	s.pairQ.Reset()

	for _, l := range s.levelers {
		l.Reset()
	}

	s.count = 0
	s.lowpass = 0
	s.carrier = 0
}
