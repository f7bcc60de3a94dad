// Package biquad provides biquad (second-order IIR) filter runtime primitives.
//
// A [Section] implements Direct Form II Transposed processing for a single
// second-order section defined by [Coefficients]. Multiple sections are
// cascaded via [Chain]; the receiver EQ stages are chains of up to four
// sections.
//
// Coefficient tables produced for the receiver use the feedback-negated
// layout ([Negated]), where the recursion reads
//
//	y = b0*x + b1*x' + b2*x'' + a1*y' + a2*y''
//
// [Negated.Coefficients] converts them to the textbook sign convention used by
// [Section]. Coefficient design lives in dsp/filter/design and rx/filterpath.
package biquad
