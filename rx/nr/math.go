//go:build !fastmath

package nr

import "math"

func mathSqrt(x float64) float64 {
	return math.Sqrt(x)
}
