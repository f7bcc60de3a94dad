package mix

import (
	"math"
	"testing"
)

func TestNewNCO_Validation(t *testing.T) {
	tests := []struct {
		name string
		f    float64
		fs   float64
		ok   bool
	}{
		{"positive", 1000, 48000, true},
		{"negative", -12000, 48000, true},
		{"nyquist", 24000, 48000, true},
		{"above nyquist", 24001, 48000, false},
		{"zero rate", 0, 0, false},
		{"nan", math.NaN(), 48000, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewNCO(tt.f, tt.fs)
			if (err == nil) != tt.ok {
				t.Fatalf("err = %v, want ok=%v", err, tt.ok)
			}
		})
	}
}

func TestNCO_PeriodicAtQuarterRate(t *testing.T) {
	n, err := NewNCO(12000, 48000)
	if err != nil {
		t.Fatal(err)
	}

	want := [][2]float64{{0, 1}, {1, 0}, {0, -1}, {-1, 0}, {0, 1}}
	for k, w := range want {
		s, c := n.Next()
		if math.Abs(s-w[0]) > 1e-12 || math.Abs(c-w[1]) > 1e-12 {
			t.Fatalf("sample %d: (sin, cos) = (%v, %v), want %v", k, s, c, w)
		}
	}

	if p := n.Phase(); p < 0 || p >= 2*math.Pi {
		t.Fatalf("phase %v not wrapped", p)
	}
}

// Shifting a complex tone at +6 kHz by -6 kHz yields DC.
func TestTranslator_MovesIFToBaseband(t *testing.T) {
	const fs = 48000.0

	tr, err := NewTranslator(-6000, fs)
	if err != nil {
		t.Fatal(err)
	}

	n := 64
	i := make([]float64, n)
	q := make([]float64, n)

	for k := range n {
		ph := 2*math.Pi*6000*float64(k)/fs + 0.3
		i[k] = math.Cos(ph)
		q[k] = math.Sin(ph)
	}

	tr.Process(i, q)

	for k := range n {
		if math.Abs(i[k]-math.Cos(0.3)) > 1e-9 || math.Abs(q[k]-math.Sin(0.3)) > 1e-9 {
			t.Fatalf("sample %d: (%v, %v), want constant (%v, %v)", k, i[k], q[k], math.Cos(0.3), math.Sin(0.3))
		}
	}
}

func TestTranslator_ZeroShiftIsIdentity(t *testing.T) {
	tr, err := NewTranslator(0, 48000)
	if err != nil {
		t.Fatal(err)
	}

	i := []float64{1, 2, 3}
	q := []float64{-1, 0.5, 0}
	tr.Process(i, q)

	if i[0] != 1 || i[2] != 3 || q[1] != 0.5 {
		t.Fatalf("zero shift changed samples: %v %v", i, q)
	}

	if err := tr.SetShift(12000); err != nil {
		t.Fatal(err)
	}

	if tr.Shift() != 12000 {
		t.Fatalf("Shift = %v, want 12000", tr.Shift())
	}
}

func TestTone_MixInto(t *testing.T) {
	tone, err := NewTone(750, 0.5, 12000)
	if err != nil {
		t.Fatal(err)
	}

	l := make([]float64, 16)
	r := make([]float64, 16)
	for k := range r {
		r[k] = 1
	}

	tone.MixInto(l, r)

	for k := range l {
		want := 0.5 * math.Sin(2*math.Pi*750*float64(k)/12000)
		if math.Abs(l[k]-want) > 1e-12 || math.Abs(r[k]-1-want) > 1e-12 {
			t.Fatalf("sample %d: l=%v r=%v, want %v and %v", k, l[k], r[k], want, 1+want)
		}
	}
}
