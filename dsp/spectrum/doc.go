// Package spectrum holds the small spectral helpers of the receiver: a
// Goertzel bin bank for subaudible tone detection and the power, dB and
// shift steps between an FFT and the spectrum display.
package spectrum
