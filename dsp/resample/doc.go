// Package resample converts interleaved I/Q streams between sample rates
// with a rational polyphase FIR, so that recordings made at 44.1, 96 or
// 192 kHz can feed a receive chain built for 48 kHz.
//
// Quality modes trade CPU for stopband attenuation:
//
//	mode            taps/phase   nominal stopband
//	QualityFast     16           ~55 dB
//	QualityBalanced 32           ~75 dB
//	QualityBest     64           ~90 dB
//
// Both channels share one prototype filter and one phase accumulator, so
// I and Q stay time aligned.
package resample
