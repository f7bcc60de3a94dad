// Package hilbert provides the two-path all-pass quadrature network used
// for sideband separation.
//
// Each path is a cascade of second-order all-pass stages in z^-2,
//
//	y[n] = c*(x[n] - y[n-2]) + x[n-2]
//
// and the first path sees its input one sample late. Over most of the band
// the path-0 output lags the path-1 output by 90 degrees.
//
// [DesignPair] computes path coefficients from a coefficient count and a
// normalized transition bandwidth; [SAMPath0] and [SAMPath1] are the
// seven-stage sets used by the synchronous AM demodulator.
package hilbert
