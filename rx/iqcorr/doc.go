// Package iqcorr corrects amplitude and phase imbalance between the I and Q
// channels of a quadrature receiver.
//
// Two modes are available. Manual mode applies fixed per-channel gains and
// leaks a fixed fraction of one channel into the other. Automatic mode
// estimates the imbalance blindly from sign correlations of the incoming
// signal (Moseley & Slump, 2006) and converges over a few hundred blocks.
//
// TwinPeaks watches the automatic estimator for the codec fault in which I
// and Q arrive nearly in phase and image rejection collapses. It only
// signals that a restart is needed; the caller performs it and calls
// Acknowledge.
package iqcorr
