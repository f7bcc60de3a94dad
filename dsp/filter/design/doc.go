// Package design provides digital IIR filter coefficient designers.
//
// The functions in this package produce biquad coefficients consumable by
// dsp/filter/biquad. Section designers follow the RBJ audio EQ cookbook
// (lowpass, highpass, notch, bandpass, shelving); [ButterworthLP] and
// [ButterworthHP] build higher-order cascades from them. Cascades can be
// converted to lattice form with dsp/filter/lattice.
//
// Invalid frequencies or sample rates yield zero-value coefficients.
package design
