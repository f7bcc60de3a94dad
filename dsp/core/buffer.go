package core

// EnsureLen returns buf resliced to n when its capacity allows and a new
// zeroed slice otherwise. The contents are not preserved on growth.
func EnsureLen(buf []float64, n int) []float64 {
	if n <= 0 {
		return buf[:0]
	}

	if cap(buf) < n {
		return make([]float64, n)
	}

	return buf[:n]
}

// Deinterleave splits float32 frames (a0, b0, a1, b1, ...) into two float64
// channels and returns the frame count, bounded by the shortest argument.
func Deinterleave(a, b []float64, src []float32) int {
	n := min(len(src)/2, len(a), len(b))
	for i := range n {
		a[i], b[i] = float64(src[2*i]), float64(src[2*i+1])
	}

	return n
}

// Interleave is the inverse of Deinterleave.
func Interleave(dst []float32, a, b []float64) int {
	n := min(len(dst)/2, len(a), len(b))
	for i := range n {
		dst[2*i], dst[2*i+1] = float32(a[i]), float32(b[i])
	}

	return n
}
