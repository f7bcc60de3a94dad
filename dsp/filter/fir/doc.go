// Package fir provides streaming and multirate FIR filter runtimes and the
// windowed-sinc designs used by the receive chain.
//
// A [Filter] convolves a continuous stream with a fixed tap set. A
// [Decimator] and an [Interpolator] process whole blocks and keep a linear
// state buffer of taps+blockSize-1 samples between calls, so a block boundary
// never changes the result.
//
// Design helpers produce tap sets: [Lowpass] for anti-alias and anti-image
// filters and [QuadraturePair] for the I/Q channel filters whose sum selects
// the upper sideband and whose difference selects the lower sideband.
package fir
