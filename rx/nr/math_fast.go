//go:build fastmath

package nr

import "github.com/meko-christian/algo-approx"

// mathSqrt trades a small relative error for speed in the per-bin gain loop.
func mathSqrt(x float64) float64 {
	return approx.FastSqrt(x)
}
