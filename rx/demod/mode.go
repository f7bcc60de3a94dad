package demod

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownMode is returned by ParseMode for unrecognised names.
var ErrUnknownMode = errors.New("demod: unknown mode")

// Mode is a demodulation mode.
type Mode int

const (
	ModeLSB Mode = iota
	ModeUSB
	ModeCW
	ModeAM
	ModeSAM
	ModeFM
	// ModeIQ passes I to the left and Q to the right channel.
	ModeIQ
	// ModeStereo puts the lower sideband left and the upper sideband right.
	ModeStereo

	numModes
)

var modeNames = [numModes]string{
	ModeLSB:    "LSB",
	ModeUSB:    "USB",
	ModeCW:     "CW",
	ModeAM:     "AM",
	ModeSAM:    "SAM",
	ModeFM:     "FM",
	ModeIQ:     "IQ",
	ModeStereo: "STEREO",
}

// String implements fmt.Stringer.
func (m Mode) String() string {
	if m < 0 || m >= numModes {
		return fmt.Sprintf("Mode(%d)", int(m))
	}

	return modeNames[m]
}

// Valid reports whether m is a known mode.
func (m Mode) Valid() bool { return m >= 0 && m < numModes }

// Mask returns the single-mode mask for m.
func (m Mode) Mask() ModeMask {
	if !m.Valid() {
		return 0
	}

	return 1 << uint(m)
}

// TwoChannel reports whether the mode always produces two distinct audio
// channels. SAM does so only with the stereo sideband.
func (m Mode) TwoChannel() bool {
	return m == ModeIQ || m == ModeStereo
}

// MarshalText implements encoding.TextMarshaler.
func (m Mode) MarshalText() ([]byte, error) {
	if !m.Valid() {
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
	name := strings.ToUpper(strings.TrimSpace(s))
	for m, n := range modeNames {
		if n == name {
			return Mode(m), nil
		}
	}

	switch name {
	case "SSBSTEREO", "DSB":
		return ModeStereo, nil
	case "NFM":
		return ModeFM, nil
	}

	return 0, fmt.Errorf("%w: %q", ErrUnknownMode, s)
}

// ModeMask is a set of modes.
type ModeMask uint16

// AllModes contains every mode.
const AllModes ModeMask = 1<<uint(numModes) - 1

// MaskOf builds a mask from modes.
func MaskOf(modes ...Mode) ModeMask {
	var mask ModeMask
	for _, m := range modes {
		mask |= m.Mask()
	}

	return mask
}

// Has reports whether m is in the set.
func (s ModeMask) Has(m Mode) bool {
	return m.Valid() && s&m.Mask() != 0
}

// Modes lists the members in ascending order.
func (s ModeMask) Modes() []Mode {
	var out []Mode
	for m := Mode(0); m < numModes; m++ {
		if s.Has(m) {
			out = append(out, m)
		}
	}

	return out
}

// String implements fmt.Stringer.
func (s ModeMask) String() string {
	modes := s.Modes()
	if len(modes) == 0 {
		return "none"
	}

	names := make([]string, len(modes))
	for i, m := range modes {
		names[i] = m.String()
	}

	return strings.Join(names, "|")
}
