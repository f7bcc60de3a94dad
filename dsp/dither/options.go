package dither

import (
	"fmt"
	"math"
)

const (
	defaultBitDepth  = 16
	defaultType      = Triangular
	defaultAmplitude = 1.0
	defaultSeed      = 1
	minBitDepth      = 2
	maxBitDepth      = 32
)

type config struct {
	bitDepth  int
	typ       Type
	amplitude float64
	seed      uint64
}

func defaultConfig() config {
	return config{
		bitDepth:  defaultBitDepth,
		typ:       defaultType,
		amplitude: defaultAmplitude,
		seed:      defaultSeed,
	}
}

// Option configures a [Quantizer].
type Option func(*config) error

// WithBitDepth sets the target bit depth (2-32, default 16).
func WithBitDepth(bits int) Option {
	return func(cfg *config) error {
		if bits < minBitDepth || bits > maxBitDepth {
			return fmt.Errorf("%w: bit depth must be in [%d, %d]: %d", ErrInvalidOption, minBitDepth, maxBitDepth, bits)
		}

		cfg.bitDepth = bits

		return nil
	}
}

// WithType sets the dither distribution (default [Triangular]).
func WithType(t Type) Option {
	return func(cfg *config) error {
		if !t.Valid() {
			return fmt.Errorf("%w: dither type %d", ErrInvalidOption, int(t))
		}

		cfg.typ = t

		return nil
	}
}

// WithAmplitude scales the dither noise, in LSB (default 1).
func WithAmplitude(amp float64) Option {
	return func(cfg *config) error {
		if amp < 0 || math.IsNaN(amp) || math.IsInf(amp, 0) {
			return fmt.Errorf("%w: amplitude must be >= 0 and finite: %f", ErrInvalidOption, amp)
		}

		cfg.amplitude = amp

		return nil
	}
}

// WithSeed seeds the noise source so that output is repeatable.
func WithSeed(seed uint64) Option {
	return func(cfg *config) error {
		cfg.seed = seed
		return nil
	}
}
