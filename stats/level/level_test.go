package level

import (
	"errors"
	"math"
	"testing"
)

const tolerance = 1e-9

func almostEqual(a, b, tol float64) bool {
	if math.IsInf(a, -1) && math.IsInf(b, -1) {
		return true
	}

	return math.Abs(a-b) <= tol
}

func TestCalculate(t *testing.T) {
	sine := make([]float64, 4800)
	for i := range sine {
		sine[i] = 0.5 * math.Sin(2*math.Pi*float64(i)/48)
	}

	tests := []struct {
		name    string
		x       []float64
		dc, rms float64
		peak    float64
		crest   float64
		clipped int
	}{
		{"empty", nil, 0, 0, 0, 0, 0},
		{"silence", make([]float64, 10), 0, 0, 0, 0, 0},
		{"dc", []float64{0.25, 0.25, 0.25, 0.25}, 0.25, 0.25, 0.25, 0, 0},
		{"square", []float64{1, -1, 1, -1}, 0, 1, 1, 0, 4},
		{"sine", sine, 0, 0.5 / math.Sqrt2, 0.5, 20 * math.Log10(math.Sqrt2), 0},
	}

	for _, tc := range tests {
		s := Calculate(tc.x)

		if s.Frames != len(tc.x) {
			t.Fatalf("%s: Frames = %d, want %d", tc.name, s.Frames, len(tc.x))
		}
		if !almostEqual(s.DC, tc.dc, 1e-6) || !almostEqual(s.RMS, tc.rms, 1e-6) {
			t.Fatalf("%s: DC, RMS = %v, %v, want %v, %v", tc.name, s.DC, s.RMS, tc.dc, tc.rms)
		}
		if !almostEqual(s.Peak, tc.peak, 1e-6) {
			t.Fatalf("%s: Peak = %v, want %v", tc.name, s.Peak, tc.peak)
		}
		if !almostEqual(s.Crest_dB, tc.crest, 1e-3) {
			t.Fatalf("%s: Crest_dB = %v, want %v", tc.name, s.Crest_dB, tc.crest)
		}
		if s.Clipped != tc.clipped {
			t.Fatalf("%s: Clipped = %d, want %d", tc.name, s.Clipped, tc.clipped)
		}
	}
}

func TestCalculateSilenceIsMinusInf(t *testing.T) {
	s := Calculate(make([]float64, 4))
	if !math.IsInf(s.RMS_dB, -1) || !math.IsInf(s.Peak_dB, -1) {
		t.Fatalf("silence dB = %v, %v, want -Inf", s.RMS_dB, s.Peak_dB)
	}
}

func TestMeterInterleaved(t *testing.T) {
	m, err := NewMeter(2)
	if err != nil {
		t.Fatalf("NewMeter() error = %v", err)
	}

	m.Update([]float32{0.5, -0.25, -0.5, 0.25})
	m.Update([]float32{0.5, -1, 0.9})

	if m.Frames() != 3 || m.Channels() != 2 {
		t.Fatalf("Frames, Channels = %d, %d, want 3, 2", m.Frames(), m.Channels())
	}

	left := m.Channel(0)
	if !almostEqual(left.RMS, 0.5, tolerance) || !almostEqual(left.DC, 0.5/3, tolerance) {
		t.Fatalf("left = %+v", left)
	}

	right := m.Channel(1)
	if right.Peak != 1 || right.PeakFrame != 2 || right.Clipped != 1 {
		t.Fatalf("right = %+v", right)
	}
	if !almostEqual(right.Peak_dB, 0, tolerance) {
		t.Fatalf("right Peak_dB = %v, want 0", right.Peak_dB)
	}

	m.Reset()
	if m.Frames() != 0 || m.Channel(1).Peak != 0 {
		t.Fatalf("Reset did not clear the meter")
	}
}

func TestMeterMatchesCalculate(t *testing.T) {
	x := make([]float32, 1000)
	mono := make([]float64, len(x))
	for i := range x {
		x[i] = float32(math.Cos(float64(i) * 0.37))
		mono[i] = float64(x[i])
	}

	m, _ := NewMeter(1)
	for i := 0; i < len(x); i += 64 {
		m.Update(x[i:min(i+64, len(x))])
	}

	got, want := m.Channel(0), Calculate(mono)
	if got != want {
		t.Fatalf("Meter = %+v, Calculate = %+v", got, want)
	}
}

func TestNewMeterRejects(t *testing.T) {
	if _, err := NewMeter(0); !errors.Is(err, ErrInvalidChannels) {
		t.Fatalf("NewMeter(0) error = %v, want ErrInvalidChannels", err)
	}
}

func BenchmarkMeterUpdate(b *testing.B) {
	m, _ := NewMeter(2)
	buf := make([]float32, 2048)
	for i := range buf {
		buf[i] = float32(math.Sin(float64(i) * 0.01))
	}

	b.ResetTimer()
	for range b.N {
		m.Update(buf)
	}
}
