// Package lattice implements the ARMA lattice-ladder IIR structure.
//
// Reflection coefficients are stored last stage first (kN..k1) and ladder
// coefficients as vN..v0, the ordering used by common embedded DSP
// libraries, so published coefficient tables can be used unchanged.
//
// A [Filter] with zero stages is a legal disabled state and passes samples
// through without arithmetic. [Filter.Configure] always disables the filter
// before re-pointing it at new coefficients.
//
// [FromDirectForm] and [FromBiquads] convert transfer functions to lattice
// coefficients by Levinson step-down recursion.
package lattice
