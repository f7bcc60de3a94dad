package biquad

import (
	"math"
	"testing"
)

func almostEqual(a, b, eps float64) bool {
	return math.Abs(a-b) <= eps
}

// lowpass is a 2 kHz Butterworth lowpass at 48 kHz.
var lowpass = Coefficients{
	B0: 0.01440, B1: 0.02880, B2: 0.01440,
	A1: -1.63299, A2: 0.69059,
}

func TestSectionBlockMatchesSample(t *testing.T) {
	in := make([]float64, 101)
	for i := range in {
		in[i] = math.Sin(0.3*float64(i)) + 0.5*math.Cos(1.7*float64(i))
	}

	a := &Section{Coefficients: lowpass}
	b := &Section{Coefficients: lowpass}

	buf := append([]float64(nil), in...)
	b.ProcessBlock(buf[:40])
	b.ProcessBlock(buf[40:])

	for i, x := range in {
		if want := a.ProcessSample(x); !almostEqual(buf[i], want, 1e-15) {
			t.Fatalf("sample %d: block %v, sample %v", i, buf[i], want)
		}
	}
}

func TestSectionImpulseAndReset(t *testing.T) {
	s := &Section{Coefficients: Coefficients{B0: 1, B1: 0.5, A1: -0.5}}

	// H(z) = (1 + 0.5z⁻¹)/(1 - 0.5z⁻¹): h = 1, 1, 0.5, 0.25, ...
	want := []float64{1, 1, 0.5, 0.25, 0.125}
	for i, w := range want {
		x := 0.0
		if i == 0 {
			x = 1
		}

		if got := s.ProcessSample(x); !almostEqual(got, w, 1e-15) {
			t.Fatalf("h[%d] = %v, want %v", i, got, w)
		}
	}

	s.Reset()
	if got := s.ProcessSample(0); got != 0 {
		t.Fatalf("output after Reset = %v, want 0", got)
	}
}

func TestChainCascade(t *testing.T) {
	highpass := Coefficients{B0: 0.8, B1: -1.6, B2: 0.8, A1: -1.56, A2: 0.64}
	c := NewChain([]Coefficients{lowpass, highpass})
	c.SetGain(0.5)

	s1 := &Section{Coefficients: lowpass}
	s2 := &Section{Coefficients: highpass}

	for i := range 64 {
		x := math.Sin(0.05 * float64(i))
		want := s2.ProcessSample(s1.ProcessSample(0.5 * x))

		if got := c.ProcessSample(x); !almostEqual(got, want, 1e-15) {
			t.Fatalf("sample %d: got %v, want %v", i, got, want)
		}
	}

	if c.Order() != 4 || c.Gain() != 0.5 {
		t.Fatalf("Order, Gain = %d, %v", c.Order(), c.Gain())
	}
}

func TestChainProcessBlockTo(t *testing.T) {
	c := NewChain([]Coefficients{lowpass})
	ref := NewChain([]Coefficients{lowpass})

	src := []float64{1, -1, 0.5, 0.25, 0, 0, 0.75}
	dst := make([]float64, len(src)+3)
	c.ProcessBlockTo(dst, src)

	want := append([]float64(nil), src...)
	ref.ProcessBlock(want)

	for i := range want {
		if dst[i] != want[i] {
			t.Fatalf("dst[%d] = %v, want %v", i, dst[i], want[i])
		}
	}

	if src[0] != 1 {
		t.Fatal("ProcessBlockTo modified src")
	}
}

func TestUpdateCoefficientsKeepsState(t *testing.T) {
	c := NewChain([]Coefficients{lowpass})
	ref := &Section{Coefficients: lowpass}

	for range 10 {
		c.ProcessSample(1)
		ref.ProcessSample(1)
	}

	// Same section count: the state carries over into the new gain.
	c.UpdateCoefficients([]Coefficients{lowpass}, 2)
	if got, want := c.ProcessSample(1), ref.ProcessSample(2); !almostEqual(got, want, 1e-15) {
		t.Fatalf("after update got %v, want %v", got, want)
	}

	// A different count restarts from zero state.
	c.UpdateCoefficients([]Coefficients{lowpass, Passthrough}, 1)
	fresh := &Section{Coefficients: lowpass}
	if got, want := c.ProcessSample(1), fresh.ProcessSample(1); got != want {
		t.Fatalf("after resize got %v, want %v", got, want)
	}
}

func TestResponse(t *testing.T) {
	const fs = 48000.0

	if db := lowpass.MagnitudeDB(0, fs); math.Abs(db) > 0.01 {
		t.Fatalf("DC gain %v dB, want 0", db)
	}

	if db := lowpass.MagnitudeDB(2000, fs); math.Abs(db+3.01) > 0.05 {
		t.Fatalf("gain at cutoff %v dB, want -3", db)
	}

	if db := lowpass.MagnitudeDB(20000, fs); db > -40 {
		t.Fatalf("stopband gain %v dB, want < -40", db)
	}

	c := NewChain([]Coefficients{lowpass, lowpass})
	c.SetGain(2)
	want := 2 * lowpass.Response(1000, fs) * lowpass.Response(1000, fs)
	if got := c.Response(1000, fs); !almostEqual(real(got), real(want), 1e-12) || !almostEqual(imag(got), imag(want), 1e-12) {
		t.Fatalf("chain response %v, want %v", got, want)
	}

	if db := c.MagnitudeDB(0, fs); math.Abs(db-20*math.Log10(2)) > 0.02 {
		t.Fatalf("chain DC gain %v dB, want +6", db)
	}
}

func BenchmarkChainProcessBlock(b *testing.B) {
	c := NewChain([]Coefficients{lowpass, lowpass, lowpass, lowpass})
	buf := make([]float64, 256)
	for i := range buf {
		buf[i] = math.Sin(float64(i) * 0.01)
	}

	b.ResetTimer()
	for range b.N {
		c.ProcessBlock(buf)
	}
}
