package spectrum

import (
	"math"

	"github.com/cwbudde/algo-vecmath"
)

// PowerInto writes |X[k]|² of in to dst, which must hold len(in) values.
// re and im are scratch slices of the same length, grown when short; the
// possibly grown slices are returned for reuse.
func PowerInto(dst []float64, in []complex128, re, im []float64) ([]float64, []float64) {
	n := len(in)
	if cap(re) < n {
		re = make([]float64, n)
	}

	if cap(im) < n {
		im = make([]float64, n)
	}

	re, im = re[:n], im[:n]
	for k, c := range in {
		re[k], im[k] = real(c), imag(c)
	}

	vecmath.Power(dst[:n], re, im)

	return re, im
}

// PowerToDB converts power bins to dB in place. Bins at or below floorDB,
// and NaN bins, read floorDB.
func PowerToDB(bins []float64, floorDB float64) {
	floor := math.Pow(10, floorDB/10)

	for k, p := range bins {
		if p > floor {
			bins[k] = 10 * math.Log10(p)
		} else {
			bins[k] = floorDB
		}
	}
}

// FFTShift moves DC from index 0 to index len/2 in place.
func FFTShift(bins []float64) {
	n := len(bins)
	if n < 2 {
		return
	}

	// Rotate right by n/2 with three reversals.
	h := n - n/2
	reverse(bins[:h])
	reverse(bins[h:])
	reverse(bins)
}

func reverse(s []float64) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}
