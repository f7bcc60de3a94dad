// Package dither quantizes floating point audio to integer PCM.
//
// A Quantizer scales samples in [-1, 1] to the signed range of its bit
// depth, adds dither noise of the selected distribution in units of one
// least significant bit and rounds. Results are clipped to the range of
// the bit depth.
package dither

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidOption is returned for out-of-range options.
var ErrInvalidOption = errors.New("dither: invalid option")

// Type selects the probability distribution of the dither noise.
type Type int

const (
	// None rounds without dither.
	None Type = iota
	// Rectangular adds uniform noise of ±amplitude LSB.
	Rectangular
	// Triangular adds the difference of two uniform draws (TPDF).
	Triangular

	typeCount
)

var typeNames = [typeCount]string{"none", "rpdf", "tpdf"}

// String returns the short name of the dither type.
func (t Type) String() string {
	if t.Valid() {
		return typeNames[t]
	}

	return fmt.Sprintf("Type(%d)", int(t))
}

// Valid reports whether t is a known dither type.
func (t Type) Valid() bool {
	return t >= 0 && t < typeCount
}

// ParseType accepts the names returned by String, case-insensitively.
func ParseType(s string) (Type, error) {
	for t, name := range typeNames {
		if strings.EqualFold(s, name) {
			return Type(t), nil
		}
	}

	return None, fmt.Errorf("%w: dither type %q", ErrInvalidOption, s)
}
