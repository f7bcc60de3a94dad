// Package agc implements the receiver's automatic gain control.
//
// The AGC follows the peak envelope of all audio channels with an attack,
// hang and decay characteristic and scales every channel by the same gain
// so that the envelope sits at the target level. The gain never exceeds
// the configured maximum, so weak signals and band noise are not pulled up
// without bound. ModeOff bypasses the envelope and applies a fixed manual
// gain.
package agc

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/cwbudde/algo-vecmath"

	"github.com/cwbudde/algo-sdr/dsp/core"
)

var (
	// ErrInvalidConfig is returned for out-of-range parameters.
	ErrInvalidConfig = errors.New("agc: invalid config")
	// ErrUnknownMode is returned by ParseMode for unrecognised names.
	ErrUnknownMode = errors.New("agc: unknown mode")
)

// Mode selects the AGC time constants.
type Mode int

const (
	ModeOff Mode = iota
	ModeSlow
	ModeMedium
	ModeFast
	// ModeCustom uses the attack, hang and decay times of the Config.
	ModeCustom
)

var modeNames = [...]string{"off", "slow", "medium", "fast", "custom"}

// String implements fmt.Stringer.
func (m Mode) String() string {
	if m < 0 || int(m) >= len(modeNames) {
		return fmt.Sprintf("Mode(%d)", int(m))
	}

	return modeNames[m]
}

// MarshalText implements encoding.TextMarshaler.
func (m Mode) MarshalText() ([]byte, error) {
	if m < 0 || int(m) >= len(modeNames) {
		return nil, fmt.Errorf("%w: %d", ErrUnknownMode, int(m))
	}

	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *Mode) UnmarshalText(text []byte) error {
	v, err := ParseMode(string(text))
	if err != nil {
		return err
	}

	*m = v

	return nil
}

// ParseMode parses a mode name case-insensitively.
func ParseMode(s string) (Mode, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for i, n := range modeNames {
		if n == name {
			return Mode(i), nil
		}
	}

	if name == "med" {
		return ModeMedium, nil
	}

	return 0, fmt.Errorf("%w: %q", ErrUnknownMode, s)
}

type timing struct {
	attackMs, hangMs, decayMs float64
}

var presets = map[Mode]timing{
	ModeSlow:   {attackMs: 2, hangMs: 1000, decayMs: 500},
	ModeMedium: {attackMs: 2, hangMs: 0, decayMs: 250},
	ModeFast:   {attackMs: 2, hangMs: 0, decayMs: 50},
}

// Parameter ranges.
const (
	minAttackMs = 0.1
	maxAttackMs = 1000.0
	maxHangMs   = 5000.0
	minDecayMs  = 1.0
	maxDecayMs  = 10000.0
	maxGainDB   = 120.0
)

// Config holds the AGC parameters.
type Config struct {
	Mode Mode `yaml:"mode"`
	// TargetDB is the envelope level the AGC regulates to, in dBFS.
	TargetDB float64 `yaml:"target_db"`
	// MaxGainDB caps the AGC gain.
	MaxGainDB float64 `yaml:"max_gain_db"`
	// ManualGainDB is the fixed gain of ModeOff.
	ManualGainDB float64 `yaml:"manual_gain_db"`

	// Times used by ModeCustom.
	AttackMs float64 `yaml:"attack_ms"`
	HangMs   float64 `yaml:"hang_ms"`
	DecayMs  float64 `yaml:"decay_ms"`
}

// DefaultConfig returns a medium AGC regulating to 0 dBFS with at most
// 60 dB of gain.
func DefaultConfig() Config {
	return Config{
		Mode:      ModeMedium,
		TargetDB:  0,
		MaxGainDB: 60,
		AttackMs:  2,
		HangMs:    250,
		DecayMs:   250,
	}
}

// Validate checks the parameter ranges.
func (c Config) Validate() error {
	finite := func(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }

	switch {
	case c.Mode < ModeOff || c.Mode > ModeCustom:
		return fmt.Errorf("%w: mode %d", ErrInvalidConfig, int(c.Mode))
	case !finite(c.TargetDB) || c.TargetDB > 0:
		return fmt.Errorf("%w: target %g dB must be <= 0", ErrInvalidConfig, c.TargetDB)
	case !finite(c.MaxGainDB) || c.MaxGainDB < 0 || c.MaxGainDB > maxGainDB:
		return fmt.Errorf("%w: max gain %g dB outside [0, %g]", ErrInvalidConfig, c.MaxGainDB, maxGainDB)
	case !finite(c.ManualGainDB):
		return fmt.Errorf("%w: manual gain %g dB", ErrInvalidConfig, c.ManualGainDB)
	}

	if c.Mode != ModeCustom {
		return nil
	}

	switch {
	case !(c.AttackMs >= minAttackMs && c.AttackMs <= maxAttackMs):
		return fmt.Errorf("%w: attack %g ms outside [%g, %g]", ErrInvalidConfig, c.AttackMs, minAttackMs, maxAttackMs)
	case !(c.HangMs >= 0 && c.HangMs <= maxHangMs):
		return fmt.Errorf("%w: hang %g ms outside [0, %g]", ErrInvalidConfig, c.HangMs, maxHangMs)
	case !(c.DecayMs >= minDecayMs && c.DecayMs <= maxDecayMs):
		return fmt.Errorf("%w: decay %g ms outside [%g, %g]", ErrInvalidConfig, c.DecayMs, minDecayMs, maxDecayMs)
	}

	return nil
}

func (c Config) timing() timing {
	if t, ok := presets[c.Mode]; ok {
		return t
	}

	return timing{attackMs: c.AttackMs, hangMs: c.HangMs, decayMs: c.DecayMs}
}

// AGC is a linked multi-channel automatic gain control. It is not safe for
// concurrent use.
type AGC struct {
	cfg        Config
	sampleRate float64

	target     float64
	maxGain    float64
	manualGain float64

	attackCoeff float64
	decayCoeff  float64
	hangSamples int

	envelope float64
	hang     int
	gain     float64
}

// New creates an AGC for the given sample rate.
func New(cfg Config, sampleRate float64) (*AGC, error) {
	if sampleRate <= 0 || math.IsNaN(sampleRate) || math.IsInf(sampleRate, 0) {
		return nil, fmt.Errorf("%w: sample rate %g", ErrInvalidConfig, sampleRate)
	}

	a := &AGC{sampleRate: sampleRate}
	if err := a.Configure(cfg); err != nil {
		return nil, err
	}

	a.Reset()

	return a, nil
}

// Configure replaces the parameters. The envelope is kept so that a mode
// change does not produce a gain jump.
func (a *AGC) Configure(cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	a.cfg = cfg
	a.target = core.DBToLinear(cfg.TargetDB)
	a.maxGain = core.DBToLinear(cfg.MaxGainDB)
	a.manualGain = core.DBToLinear(cfg.ManualGainDB)
	a.updateTimeConstants()

	return nil
}

// SetSampleRate changes the processing rate and recomputes the time
// constants. The envelope is kept.
func (a *AGC) SetSampleRate(sampleRate float64) error {
	if sampleRate <= 0 || math.IsNaN(sampleRate) || math.IsInf(sampleRate, 0) {
		return fmt.Errorf("%w: sample rate %g", ErrInvalidConfig, sampleRate)
	}

	if sampleRate != a.sampleRate {
		a.sampleRate = sampleRate
		a.updateTimeConstants()
	}

	return nil
}

// SampleRate returns the processing rate.
func (a *AGC) SampleRate() float64 { return a.sampleRate }

// Config returns the current parameters.
func (a *AGC) Config() Config { return a.cfg }

// Envelope returns the tracked peak envelope.
func (a *AGC) Envelope() float64 { return a.envelope }

// Gain returns the gain applied to the last sample.
func (a *AGC) Gain() float64 { return a.gain }

// GainDB returns Gain in dB.
func (a *AGC) GainDB() float64 { return core.LinearToDB(a.gain) }

func (a *AGC) updateTimeConstants() {
	t := a.cfg.timing()
	a.attackCoeff = 1 - math.Exp(-math.Ln2/(t.attackMs*0.001*a.sampleRate))
	a.decayCoeff = math.Exp(-math.Ln2 / (t.decayMs * 0.001 * a.sampleRate))
	a.hangSamples = int(math.Round(t.hangMs * 0.001 * a.sampleRate))
	a.hang = min(a.hang, a.hangSamples)
}

// ProcessBlock applies one gain track to all channels in place. All
// channels must have the same length; the first one sets the block length.
func (a *AGC) ProcessBlock(bufs ...[]float64) {
	if len(bufs) == 0 {
		return
	}

	if a.cfg.Mode == ModeOff {
		a.gain = a.manualGain
		for _, b := range bufs {
			vecmath.ScaleBlock(b, b, a.manualGain)
		}

		return
	}

	floor := a.target / a.maxGain

	for n := range bufs[0] {
		var level float64
		for _, b := range bufs {
			level = max(level, math.Abs(b[n]))
		}

		switch {
		case level > a.envelope:
			a.envelope += (level - a.envelope) * a.attackCoeff
			a.hang = a.hangSamples
		case a.hang > 0:
			a.hang--
		default:
			a.envelope = level + (a.envelope-level)*a.decayCoeff
		}

		a.gain = a.target / max(a.envelope, floor)
		for _, b := range bufs {
			b[n] *= a.gain
		}
	}
}

// Reset clears the envelope. The gain restarts at its maximum.
func (a *AGC) Reset() {
	a.envelope = 0
	a.hang = 0
	a.gain = a.maxGain

	if a.cfg.Mode == ModeOff {
		a.gain = a.manualGain
	}
}
