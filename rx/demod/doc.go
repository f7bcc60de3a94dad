// Package demod turns corrected, filtered I/Q blocks into audio.
//
// Each demodulator owns the state it needs across blocks and processes one
// block per call without allocating. Mode identifies the active
// demodulator; ModeMask describes sets of modes, for example the modes a
// filter path applies to.
package demod
