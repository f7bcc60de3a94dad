package fir

import "errors"

var (
	// ErrNoTaps is returned when a tap set is empty.
	ErrNoTaps = errors.New("fir: coefficient slice is empty")
	// ErrRate is returned for a decimation or interpolation factor below 1.
	ErrRate = errors.New("fir: rate must be >= 1")
	// ErrBlockSize is returned when the block size is not a positive multiple
	// of the decimation factor.
	ErrBlockSize = errors.New("fir: block size must be a positive multiple of the rate")
	// ErrPhaseLength is returned when an interpolator tap count is not an
	// integer multiple of the rate with at least two taps per phase.
	ErrPhaseLength = errors.New("fir: taps/rate must be an integer >= 2")
	// ErrDesign is returned for out-of-range design parameters.
	ErrDesign = errors.New("fir: invalid design parameters")
)
