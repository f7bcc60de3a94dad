package fir

// resize returns buf with length n and zeroed contents, reusing its backing
// array when it is large enough.
func resize(buf []float64, n int) []float64 {
	if cap(buf) < n {
		return make([]float64, n)
	}

	buf = buf[:n]
	clear(buf)

	return buf
}

// reserve returns buf with at least n capacity and its contents kept.
func reserve(buf []float64, n int) []float64 {
	if cap(buf) >= n {
		return buf
	}

	return append(make([]float64, 0, n), buf...)
}
