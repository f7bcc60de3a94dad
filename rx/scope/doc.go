// Package scope feeds and reads the spectrum display buffer.
//
// The receive pipeline writes baseband I/Q into a caller-owned float32
// buffer through a [Tap], optionally after a [Zoom] stage that lowpass
// filters and decimates I/Q to magnify the center of the band. An
// [Analyzer] turns a snapshot of that buffer into a centered power spectrum
// in dB for a scope or waterfall.
package scope
