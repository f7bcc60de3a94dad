package testutil

import (
	"math"
	"testing"
)

// RequireSliceNearlyEqual fails t unless got and want have the same length
// and every pair is within eps.
func RequireSliceNearlyEqual(t testing.TB, got, want []float64, eps float64) {
	t.Helper()

	if len(got) != len(want) {
		t.Fatalf("length mismatch: got %d, want %d", len(got), len(want))
	}

	for i := range got {
		if diff := math.Abs(got[i] - want[i]); diff > eps {
			t.Fatalf("index %d: got %v, want %v (diff %v > eps %v)", i, got[i], want[i], diff, eps)
		}
	}
}

// RequireFinite fails t on the first NaN or Inf.
func RequireFinite(t testing.TB, data []float64) {
	t.Helper()

	for i, v := range data {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			t.Fatalf("index %d: non-finite value %v", i, v)
		}
	}
}

// RequireNearDB fails t unless the amplitudes got and want are within
// tolDB decibels of each other.
func RequireNearDB(t testing.TB, got, want, tolDB float64) {
	t.Helper()

	if got <= 0 || want <= 0 {
		t.Fatalf("non-positive amplitude: got %v, want %v", got, want)
	}

	if diff := 20 * math.Log10(got/want); math.Abs(diff) > tolDB {
		t.Fatalf("level %v is %.2f dB from %v, tolerance %.2f dB", got, diff, want, tolDB)
	}
}
