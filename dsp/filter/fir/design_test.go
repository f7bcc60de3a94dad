package fir

import (
	"errors"
	"math"
	"math/cmplx"
	"testing"
)

func TestLowpass(t *testing.T) {
	h, err := Lowpass(3000, 48000, 63, 6)
	if err != nil {
		t.Fatal(err)
	}

	var sum float64
	for _, c := range h {
		sum += c
	}

	if !almostEqual(sum, 1, 1e-12) {
		t.Fatalf("DC gain = %v, want 1", sum)
	}

	for n := range h {
		if !almostEqual(h[n], h[len(h)-1-n], 1e-15) {
			t.Fatalf("tap %d not symmetric", n)
		}
	}

	if db := 20 * math.Log10(cmplx.Abs(Response(h, 12000, 48000))); db > -50 {
		t.Fatalf("stopband at 12 kHz = %.1f dB, want < -50 dB", db)
	}

	if db := 20 * math.Log10(cmplx.Abs(Response(h, 500, 48000))); math.Abs(db) > 0.1 {
		t.Fatalf("passband at 500 Hz = %.3f dB, want ~0 dB", db)
	}
}

func TestLowpass_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		cutoff float64
		fs     float64
		taps   int
	}{
		{"no taps", 1000, 48000, 0},
		{"cutoff above nyquist", 30000, 48000, 31},
		{"zero cutoff", 0, 48000, 31},
		{"zero rate", 1000, 0, 31},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Lowpass(tt.cutoff, tt.fs, tt.taps, 6); !errors.Is(err, ErrDesign) {
				t.Fatalf("err = %v, want %v", err, ErrDesign)
			}
		})
	}
}

func TestInterpolationLowpass_Gain(t *testing.T) {
	h, err := InterpolationLowpass(3000, 48000, 64, 6, 4)
	if err != nil {
		t.Fatal(err)
	}

	if g := real(Response(h, 0, 48000)); !almostEqual(g, 4, 1e-9) {
		t.Fatalf("DC gain = %v, want 4", g)
	}
}

// Filtering a complex tone through the pair: I+Q keeps positive frequencies,
// I-Q keeps negative ones.
func TestQuadraturePair_SidebandSelection(t *testing.T) {
	const fs = 12000.0

	hi, hq, err := QuadraturePair(300, 2700, fs, 127, 7)
	if err != nil {
		t.Fatal(err)
	}

	for _, tc := range []struct {
		freq      float64
		usb, lsb  float64
	}{
		{1500, 1, 0},
		{-1500, 0, 1},
		{800, 1, 0},
		{-2200, 0, 1},
	} {
		fi, fq := New(hi), New(hq)

		var usb, lsb []float64
		for n := range 2400 {
			ph := 2 * math.Pi * tc.freq * float64(n) / fs
			i := fi.ProcessSample(math.Cos(ph))
			q := fq.ProcessSample(math.Sin(ph))

			if n >= 1200 {
				usb = append(usb, i+q)
				lsb = append(lsb, i-q)
			}
		}

		gotUSB := rms(usb) * math.Sqrt2
		gotLSB := rms(lsb) * math.Sqrt2

		if math.Abs(gotUSB-tc.usb) > 0.02 || math.Abs(gotLSB-tc.lsb) > 0.02 {
			t.Fatalf("%.0f Hz: usb=%.4f lsb=%.4f, want %.0f %.0f", tc.freq, gotUSB, gotLSB, tc.usb, tc.lsb)
		}
	}
}

func TestQuadraturePair_Invalid(t *testing.T) {
	if _, _, err := QuadraturePair(2000, 1000, 12000, 63, 6); !errors.Is(err, ErrDesign) {
		t.Fatalf("err = %v, want %v", err, ErrDesign)
	}
}

func TestLowpassPair(t *testing.T) {
	i, q, err := LowpassPair(5000, 24000, 31, 5)
	if err != nil {
		t.Fatal(err)
	}

	q[0] = 42
	if i[0] == 42 {
		t.Fatal("LowpassPair must return independent slices")
	}
}
