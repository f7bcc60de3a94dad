// Package filterpath holds the receive filter paths and the runtime filters
// they configure.
//
// A [Path] describes everything that changes when the operator picks a
// bandwidth: the I/Q FIR pair, the decimation and interpolation taps and
// the lattice pre-filter and anti-alias filter. A [Store] validates a set of
// paths once, up front, and answers which path to use for a mode. A [Bank]
// owns the per-channel filter instances and is re-pointed at a new path
// between blocks. The EQ helpers compute the notch, peak and shelving
// biquads of the audio chain.
package filterpath
