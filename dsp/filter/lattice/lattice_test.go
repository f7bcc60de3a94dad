package lattice

import (
	"errors"
	"math"
	"testing"

	"github.com/cwbudde/algo-sdr/dsp/filter/biquad"
	"pgregory.net/rapid"
)

func TestDisabledIsPassthrough(t *testing.T) {
	f, err := New(nil, nil)
	if err != nil {
		t.Fatal(err)
	}

	if f.NumStages() != 0 {
		t.Fatalf("NumStages = %d, want 0", f.NumStages())
	}

	buf := []float64{1, -2, 3.5, math.Pi}
	want := append([]float64(nil), buf...)
	f.ProcessBlock(buf)

	for i := range buf {
		if buf[i] != want[i] {
			t.Fatalf("index %d: got %v, want %v", i, buf[i], want[i])
		}
	}

	dst := make([]float64, len(buf))
	f.ProcessBlockTo(dst, buf)

	for i := range dst {
		if dst[i] != buf[i] {
			t.Fatalf("ProcessBlockTo index %d: got %v, want %v", i, dst[i], buf[i])
		}
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		k, v []float64
		want error
	}{
		{"ok", []float64{0.5, -0.2}, []float64{1, 2, 3}, nil},
		{"short ladder", []float64{0.5}, []float64{1}, ErrLadderLength},
		{"unit reflection", []float64{1}, []float64{1, 1}, ErrUnstable},
		{"nan reflection", []float64{math.NaN()}, []float64{1, 1}, ErrUnstable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.k, tt.v)
			if !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestConfigureFailureLeavesFilterDisabled(t *testing.T) {
	f, err := New([]float64{0.3}, []float64{0.5, 0.5})
	if err != nil {
		t.Fatal(err)
	}

	f.ProcessSample(1)

	if err := f.Configure([]float64{0.3}, []float64{1}); !errors.Is(err, ErrLadderLength) {
		t.Fatalf("err = %v, want %v", err, ErrLadderLength)
	}

	if f.NumStages() != 0 {
		t.Fatalf("NumStages = %d after failed Configure, want 0", f.NumStages())
	}

	if y := f.ProcessSample(0.25); y != 0.25 {
		t.Fatalf("disabled filter output = %v, want 0.25", y)
	}
}

func TestFirstOrderMatchesRecursion(t *testing.T) {
	// H(z) = (0.2 + 0.3 z^-1) / (1 - 0.6 z^-1)
	k, v, err := FromDirectForm([]float64{0.2, 0.3}, []float64{1, -0.6})
	if err != nil {
		t.Fatal(err)
	}

	if k[0] != -0.6 || v[0] != 0.3 || math.Abs(v[1]-(0.2+0.3*0.6)) > 1e-15 {
		t.Fatalf("k=%v v=%v", k, v)
	}

	f, err := New(k, v)
	if err != nil {
		t.Fatal(err)
	}

	var x1, y1 float64
	for n := range 50 {
		x := math.Sin(0.7*float64(n)) + 0.1
		want := 0.2*x + 0.3*x1 + 0.6*y1
		x1, y1 = x, want

		if got := f.ProcessSample(x); math.Abs(got-want) > 1e-12 {
			t.Fatalf("sample %d: got %v, want %v", n, got, want)
		}
	}
}

func TestFromDirectFormErrors(t *testing.T) {
	if _, _, err := FromDirectForm([]float64{1}, []float64{0, 1}); !errors.Is(err, ErrDenominator) {
		t.Fatalf("err = %v, want %v", err, ErrDenominator)
	}

	if _, _, err := FromDirectForm([]float64{1}, []float64{1, -2, 1}); !errors.Is(err, ErrUnstable) {
		t.Fatalf("double pole at z=1: err = %v, want %v", err, ErrUnstable)
	}

	if _, _, err := FromDirectForm([]float64{1, 2, 3}, []float64{1, 0.5}); err == nil {
		t.Fatal("expected error for numerator longer than denominator")
	}
}

func TestResetClearsState(t *testing.T) {
	k, v, err := FromDirectForm([]float64{1}, []float64{1, -0.9})
	if err != nil {
		t.Fatal(err)
	}

	f, _ := New(k, v)
	first := f.ProcessSample(1)
	f.ProcessSample(1)
	f.Reset()

	if got := f.ProcessSample(1); got != first {
		t.Fatalf("after reset got %v, want %v", got, first)
	}
}

func stableSection(t *rapid.T, label string) biquad.Coefficients {
	r := rapid.Float64Range(0, 0.9).Draw(t, label+"_r")
	theta := rapid.Float64Range(0, math.Pi).Draw(t, label+"_theta")

	return biquad.Coefficients{
		B0: rapid.Float64Range(-1, 1).Draw(t, label+"_b0"),
		B1: rapid.Float64Range(-1, 1).Draw(t, label+"_b1"),
		B2: rapid.Float64Range(-1, 1).Draw(t, label+"_b2"),
		A1: -2 * r * math.Cos(theta),
		A2: r * r,
	}
}

// A lattice built from a biquad cascade produces the cascade's output.
func TestFromBiquadsMatchesCascade(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(1, 3).Draw(t, "sections")

		sections := make([]biquad.Coefficients, n)
		for i := range sections {
			sections[i] = stableSection(t, "s"+string(rune('0'+i)))
		}

		k, v, err := FromBiquads(sections)
		if err != nil {
			t.Fatalf("FromBiquads: %v", err)
		}

		if len(k) != 2*n || len(v) != 2*n+1 {
			t.Fatalf("len(k)=%d len(v)=%d for %d sections", len(k), len(v), n)
		}

		lat, err := New(k, v)
		if err != nil {
			t.Fatal(err)
		}

		chain := biquad.NewChain(sections)
		input := rapid.SliceOfN(rapid.Float64Range(-1, 1), 16, 256).Draw(t, "input")

		for i, x := range input {
			want := chain.ProcessSample(x)
			got := lat.ProcessSample(x)

			if math.Abs(got-want) > 1e-7*(1+math.Abs(want)) {
				t.Fatalf("sample %d: lattice %v, cascade %v", i, got, want)
			}
		}
	})
}

func TestFromBiquadsGain(t *testing.T) {
	s := []biquad.Coefficients{{B0: 0.5, B1: 0.1, A1: -0.3}}

	_, v1, err := FromBiquads(s)
	if err != nil {
		t.Fatal(err)
	}

	_, v2, err := FromBiquadsGain(s, 2)
	if err != nil {
		t.Fatal(err)
	}

	for i := range v1 {
		if math.Abs(v2[i]-2*v1[i]) > 1e-15 {
			t.Fatalf("v[%d]: got %v, want %v", i, v2[i], 2*v1[i])
		}
	}
}

func TestReserve(t *testing.T) {
	f := &Filter{}
	f.Reserve(8)
	state := &f.state[:cap(f.state)][0]

	k := []float64{0.5, -0.25, 0.1, 0.2, -0.3, 0.05, 0.4, -0.1}
	v := make([]float64, len(k)+1)
	v[len(k)] = 1

	allocs := testing.AllocsPerRun(10, func() {
		if err := f.Configure(k, v); err != nil {
			t.Fatal(err)
		}

		if err := f.Configure(k[:2], v[:3]); err != nil {
			t.Fatal(err)
		}
	})
	if allocs != 0 {
		t.Fatalf("Configure allocated %v times per run", allocs)
	}

	if &f.state[:cap(f.state)][0] != state {
		t.Fatal("Configure reallocated the reserved state")
	}

	if f.NumStages() != 2 {
		t.Fatalf("NumStages = %d, want 2", f.NumStages())
	}
}
