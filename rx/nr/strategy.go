package nr

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownStrategy is returned when no factory is registered for a name.
	ErrUnknownStrategy = errors.New("nr: unknown strategy")
	// ErrDuplicateStrategy is returned when a name is registered twice.
	ErrDuplicateStrategy = errors.New("nr: strategy already registered")
	// ErrInvalidParams is returned for out-of-range configuration.
	ErrInvalidParams = errors.New("nr: invalid parameters")
)

// Strategy is a block filter used for noise reduction or notch.
type Strategy interface {
	// Name returns the registry name.
	Name() string
	// ProcessBlock filters buf in place.
	ProcessBlock(buf []float64)
	// Reset clears filter history.
	Reset()
}

// Params configures a strategy instance. Zero sub-configs select defaults.
type Params struct {
	SampleRate float64
	BlockSize  int
	// Notch makes adaptive strategies output the prediction error, which
	// removes steady tones, instead of the prediction.
	Notch bool

	LMS      LMSConfig
	Spectral SpectralConfig
}

func (p Params) validate() error {
	if p.SampleRate <= 0 {
		return fmt.Errorf("%w: sample rate %v", ErrInvalidParams, p.SampleRate)
	}

	if p.BlockSize <= 0 {
		return fmt.Errorf("%w: block size %d", ErrInvalidParams, p.BlockSize)
	}

	return nil
}

// Off passes audio through unchanged.
type Off struct{}

// Name implements Strategy.
func (Off) Name() string { return "off" }

// ProcessBlock implements Strategy.
func (Off) ProcessBlock([]float64) {}

// Reset implements Strategy.
func (Off) Reset() {}
