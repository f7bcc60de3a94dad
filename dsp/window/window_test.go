package window

import (
	"errors"
	"math"
	"testing"
)

func almostEqual(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

func TestGenerateKnownValues(t *testing.T) {
	tests := []struct {
		name string
		t    Type
		n    int
		opts []Option
		want []float64
	}{
		{"rectangular", TypeRectangular, 3, nil, []float64{1, 1, 1}},
		{"hann", TypeHann, 5, nil, []float64{0, 0.5, 1, 0.5, 0}},
		{"periodic hann", TypeHann, 4, []Option{WithPeriodic()}, []float64{0, 0.5, 1, 0.5}},
		{"hamming", TypeHamming, 3, nil, []float64{0.08, 1, 0.08}},
		{"blackman", TypeBlackman, 3, nil, []float64{0, 1, 0}},
		{"kaiser beta 0", TypeKaiser, 4, []Option{WithBeta(0)}, []float64{1, 1, 1, 1}},
		{"single sample", TypeBlackmanHarris4Term, 1, nil, []float64{6e-5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Generate(tt.t, tt.n, tt.opts...)
			if len(got) != len(tt.want) {
				t.Fatalf("len = %d, want %d", len(got), len(tt.want))
			}

			for i := range got {
				if !almostEqual(got[i], tt.want[i], 1e-12) {
					t.Fatalf("w[%d] = %v, want %v", i, got[i], tt.want[i])
				}
			}
		})
	}

	if Generate(TypeHann, 0) != nil {
		t.Fatal("n = 0 must yield nil")
	}
}

func TestSymmetricWindowsAreSymmetric(t *testing.T) {
	for _, typ := range []Type{TypeHann, TypeHamming, TypeBlackman, TypeBlackmanHarris4Term, TypeFlatTop, TypeKaiser} {
		w := Generate(typ, 65)
		for i := range w {
			if !almostEqual(w[i], w[len(w)-1-i], 1e-12) {
				t.Fatalf("%s: w[%d] = %v, mirror %v", typ, i, w[i], w[len(w)-1-i])
			}
		}

		if !almostEqual(w[32], 1, 1e-8) {
			t.Fatalf("%s: peak %v, want 1", typ, w[32])
		}
	}
}

func TestPeriodicHannSquaredOverlapAdd(t *testing.T) {
	// Squared periodic Hann at 75% overlap sums to 1.5.
	const n = 64

	w := Generate(TypeHann, n, WithPeriodic())
	for i := range n / 4 {
		var sum float64
		for k := 0; k < 4; k++ {
			v := w[i+k*n/4]
			sum += v * v
		}

		if !almostEqual(sum, 1.5, 1e-12) {
			t.Fatalf("offset %d: sum %v, want 1.5", i, sum)
		}
	}
}

func TestKaiser(t *testing.T) {
	w, err := Kaiser(51, 6)
	if err != nil {
		t.Fatal(err)
	}

	// I0(6) = 67.2344...
	if want := 1 / 67.23440697647798; !almostEqual(w[0], want, 1e-9) {
		t.Fatalf("edge %v, want %v", w[0], want)
	}

	if _, err := Kaiser(0, 6); !errors.Is(err, ErrInvalidLength) {
		t.Fatalf("Kaiser(0) err = %v", err)
	}

	if _, err := Kaiser(8, -1); !errors.Is(err, ErrInvalidBeta) {
		t.Fatalf("Kaiser(beta -1) err = %v", err)
	}
}

func TestGainsAndENBW(t *testing.T) {
	tests := []struct {
		t    Type
		cg   float64
		enbw float64
	}{
		{TypeRectangular, 1, 1},
		{TypeHann, 0.5, 1.5},
		{TypeHamming, 0.54, 1.3628},
		{TypeBlackmanHarris4Term, 0.35875, 2.0044},
		{TypeFlatTop, 0.21557895, 3.7702},
	}

	for _, tt := range tests {
		w := Generate(tt.t, 4096, WithPeriodic())

		if got := CoherentGain(w); !almostEqual(got, tt.cg, 1e-9) {
			t.Fatalf("%s: coherent gain %v, want %v", tt.t, got, tt.cg)
		}

		if got := ENBW(w); !almostEqual(got, tt.enbw, 1e-3) {
			t.Fatalf("%s: ENBW %v, want %v", tt.t, got, tt.enbw)
		}
	}

	if CoherentGain(nil) != 0 || !math.IsInf(ENBW([]float64{0, 0}), 1) {
		t.Fatal("degenerate windows")
	}
}

func TestTypeString(t *testing.T) {
	if TypeBlackmanHarris4Term.String() != "blackman-harris" || Type(42).String() != "Type(42)" {
		t.Fatalf("String() = %q, %q", TypeBlackmanHarris4Term, Type(42))
	}
}

func BenchmarkGenerate(b *testing.B) {
	for b.Loop() {
		Generate(TypeBlackmanHarris4Term, 1024, WithPeriodic())
	}
}
