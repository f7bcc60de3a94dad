package rx

import (
	"errors"
	"fmt"
	"math"

	"hz.tools/rf"

	"github.com/cwbudde/algo-sdr/rx/agc"
	"github.com/cwbudde/algo-sdr/rx/demod"
	"github.com/cwbudde/algo-sdr/rx/filterpath"
	"github.com/cwbudde/algo-sdr/rx/iqcorr"
	"github.com/cwbudde/algo-sdr/rx/scope"
)

// ErrInvalidSettings is returned by Apply for out-of-range settings.
var ErrInvalidSettings = errors.New("rx: invalid settings")

// Limits of the user-facing settings.
const (
	MaxSquelch           = 20
	MaxTone      rf.Hz   = 300
	MaxEQFreq    rf.Hz   = 5000
	MaxShelfDB   float64 = 20
	MaxLineOut   float64 = 4
	MaxBeepLevel float64 = 1
)

// NRSettings selects the noise reduction strategy.
type NRSettings struct {
	// Strategy is a registry name. Empty and "off" disable noise reduction.
	Strategy string `yaml:"strategy"`
	// PostAGC runs the strategy after the AGC instead of before it.
	PostAGC bool `yaml:"post_agc"`
}

// Enabled reports whether a strategy is selected.
func (n NRSettings) Enabled() bool { return n.Strategy != "" && n.Strategy != "off" }

// FMSettings configures the FM demodulator.
type FMSettings struct {
	// Deviation is the expected peak deviation; it sets the audio gain.
	Deviation rf.Hz `yaml:"deviation"`
	// Squelch is the threshold on the 0..MaxSquelch scale; 0 keeps the
	// squelch open.
	Squelch int `yaml:"squelch"`
	// Tone is the subaudible tone that opens the squelch; 0 disables tone
	// gating.
	Tone rf.Hz `yaml:"tone"`
}

// BeepSettings configures the key beep mixed into the output.
type BeepSettings struct {
	Enabled   bool    `yaml:"enabled"`
	Frequency rf.Hz   `yaml:"frequency"`
	Level     float64 `yaml:"level"`
}

// Settings is the complete runtime configuration of a Pipeline. Values are
// compared with ==, so the type holds no slices or maps.
type Settings struct {
	Mode demod.Mode `yaml:"mode"`
	// FilterID requests a filter path. The narrowest applicable path at
	// least as wide is used when it does not apply to Mode.
	FilterID int `yaml:"filter"`

	IQ iqcorr.Settings `yaml:"iq"`
	// IFShift moves the wanted signal down by this amount before
	// demodulation.
	IFShift rf.Hz `yaml:"if_shift"`
	// Zoom magnifies the spectrum tap by 1<<Zoom.
	Zoom int `yaml:"zoom"`

	// AutoNotch removes steady carriers ahead of the AGC.
	AutoNotch bool       `yaml:"auto_notch"`
	NR        NRSettings `yaml:"nr"`

	EQ  filterpath.EQSettings `yaml:"eq"`
	AGC agc.Config            `yaml:"agc"`

	FM          FMSettings     `yaml:"fm"`
	Sideband    demod.Sideband `yaml:"sideband"`
	FadeLeveler bool           `yaml:"fade_leveler"`

	Beep    BeepSettings `yaml:"beep"`
	Mute    bool         `yaml:"mute"`
	LineOut float64      `yaml:"line_out"`
}

// DefaultSettings returns USB reception through path 8 ("SSB 2.7kHz" in
// the default store) with automatic IQ correction and medium AGC.
func DefaultSettings() Settings {
	return Settings{
		Mode:     demod.ModeUSB,
		FilterID: 8,
		IQ:       iqcorr.DefaultSettings(),
		AGC:      agc.DefaultConfig(),
		FM: FMSettings{
			Deviation: demod.NarrowbandDeviation,
		},
		Beep: BeepSettings{
			Frequency: 1000,
			Level:     0.1,
		},
		LineOut: 1,
	}
}

// Validate checks s for a pipeline running at sampleRate with blocks of
// blockSize frames.
func (s Settings) Validate(sampleRate float64, blockSize int) error {
	if err := s.validate(sampleRate, blockSize); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidSettings, err)
	}

	return nil
}

func (s Settings) validate(sampleRate float64, blockSize int) error {
	nyquist := rf.Hz(sampleRate / 2)

	switch {
	case !s.Mode.Valid():
		return fmt.Errorf("mode %v", s.Mode)
	case !finite(s.IQ.GainI, s.IQ.GainQ, s.IQ.Phase):
		return errors.New("iq: non-finite correction")
	case !s.IQ.Auto && (s.IQ.GainI <= 0 || s.IQ.GainQ <= 0):
		return fmt.Errorf("iq: gains %g, %g must be > 0", s.IQ.GainI, s.IQ.GainQ)
	case math.Abs(float64(s.IFShift)) > float64(nyquist)/2:
		return fmt.Errorf("if shift %v outside ±%v", s.IFShift, nyquist/2)
	case s.Zoom < 0 || s.Zoom > scope.MaxMagnify:
		return fmt.Errorf("zoom %d outside 0..%d", s.Zoom, scope.MaxMagnify)
	case blockSize%(1<<s.Zoom) != 0:
		return fmt.Errorf("zoom %d does not divide block %d", s.Zoom, blockSize)
	case s.Sideband < demod.SidebandBoth || s.Sideband > demod.SidebandStereo:
		return fmt.Errorf("sideband %v", s.Sideband)
	case s.LineOut < 0 || s.LineOut > MaxLineOut || math.IsNaN(s.LineOut):
		return fmt.Errorf("line out %g outside 0..%g", s.LineOut, MaxLineOut)
	}

	if err := s.validateEQ(); err != nil {
		return err
	}

	if err := s.AGC.Validate(); err != nil {
		return err
	}

	if err := s.validateFM(); err != nil {
		return err
	}

	if s.Beep.Enabled {
		if s.Beep.Frequency <= 0 || s.Beep.Frequency >= nyquist {
			return fmt.Errorf("beep frequency %v", s.Beep.Frequency)
		}

		if s.Beep.Level < 0 || s.Beep.Level > MaxBeepLevel {
			return fmt.Errorf("beep level %g outside 0..%g", s.Beep.Level, MaxBeepLevel)
		}
	}

	return nil
}

func (s Settings) validateEQ() error {
	eq := s.EQ

	if eq.Notch && (eq.NotchFrequency <= 0 || eq.NotchFrequency > MaxEQFreq) {
		return fmt.Errorf("eq: notch frequency %v", eq.NotchFrequency)
	}

	if eq.Peak && (eq.PeakFrequency <= 0 || eq.PeakFrequency > MaxEQFreq) {
		return fmt.Errorf("eq: peak frequency %v", eq.PeakFrequency)
	}

	if math.Abs(eq.BassDB) > MaxShelfDB || math.Abs(eq.TrebleDB) > MaxShelfDB {
		return fmt.Errorf("eq: shelf gains %g, %g dB outside ±%g", eq.BassDB, eq.TrebleDB, MaxShelfDB)
	}

	return nil
}

func (s Settings) validateFM() error {
	switch {
	case s.FM.Deviation <= 0:
		return fmt.Errorf("fm: deviation %v", s.FM.Deviation)
	case s.FM.Squelch < 0 || s.FM.Squelch > MaxSquelch:
		return fmt.Errorf("fm: squelch %d outside 0..%d", s.FM.Squelch, MaxSquelch)
	case s.FM.Tone < 0 || s.FM.Tone > MaxTone:
		return fmt.Errorf("fm: tone %v outside 0..%v", s.FM.Tone, MaxTone)
	}

	return nil
}

// stereo reports whether s produces two independent audio channels.
func (s Settings) stereo() bool {
	return s.Mode.TwoChannel() || (s.Mode == demod.ModeSAM && s.Sideband == demod.SidebandStereo)
}

func finite(vals ...float64) bool {
	for _, v := range vals {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}

	return true
}
