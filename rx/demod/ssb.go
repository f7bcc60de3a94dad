package demod

// SSB writes the upper (I+Q) or lower (I−Q) sideband of a Hilbert-shifted
// pair into out. CW uses the same arithmetic with a fixed sideband.
func SSB(i, q, out []float64, upper bool) {
	n := min(len(i), len(q), len(out))

	if upper {
		for k := range n {
			out[k] = i[k] + q[k]
		}

		return
	}

	for k := range n {
		out[k] = i[k] - q[k]
	}
}

// IQ copies I to left and Q to right.
func IQ(i, q, left, right []float64) {
	copy(left, i)
	copy(right, q)
}

// Stereo writes the lower sideband to left and the upper sideband to right.
func Stereo(i, q, left, right []float64) {
	n := min(len(i), len(q), len(left), len(right))

	for k := range n {
		left[k] = i[k] - q[k]
		right[k] = i[k] + q[k]
	}
}
