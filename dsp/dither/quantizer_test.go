package dither

import (
	"errors"
	"math"
	"testing"
)

func TestNewQuantizerDefaults(t *testing.T) {
	q, err := NewQuantizer()
	if err != nil {
		t.Fatalf("NewQuantizer() error = %v", err)
	}

	if q.BitDepth() != 16 || q.Type() != Triangular {
		t.Fatalf("defaults = %d bit %s, want 16 bit tpdf", q.BitDepth(), q.Type())
	}
}

func TestNewQuantizerRejects(t *testing.T) {
	tests := []struct {
		name string
		opt  Option
	}{
		{"low bit depth", WithBitDepth(1)},
		{"high bit depth", WithBitDepth(33)},
		{"type", WithType(Type(7))},
		{"negative amplitude", WithAmplitude(-1)},
		{"nan amplitude", WithAmplitude(math.NaN())},
	}

	for _, tc := range tests {
		if _, err := NewQuantizer(tc.opt); !errors.Is(err, ErrInvalidOption) {
			t.Fatalf("%s: error = %v, want ErrInvalidOption", tc.name, err)
		}
	}
}

func TestQuantizeWithoutDither(t *testing.T) {
	q, err := NewQuantizer(WithType(None))
	if err != nil {
		t.Fatalf("NewQuantizer() error = %v", err)
	}

	tests := []struct {
		in   float64
		want int
	}{
		{0, 0},
		{1, 32767},
		{-1, -32767},
		{0.5, 16384},
		{-0.5, -16383},
		{1.5, 32767},
		{-1.5, -32768},
		{1.0 / 32767, 1},
	}

	for _, tc := range tests {
		if got := q.Quantize(tc.in); got != tc.want {
			t.Fatalf("Quantize(%v) = %d, want %d", tc.in, got, tc.want)
		}
	}

	if q.Clipped() != 2 {
		t.Fatalf("Clipped() = %d, want 2", q.Clipped())
	}

	q.Reset()
	if q.Clipped() != 0 {
		t.Fatalf("Clipped() after Reset = %d, want 0", q.Clipped())
	}
}

func TestBitDepths(t *testing.T) {
	for _, bits := range []int{2, 8, 24, 32} {
		q, err := NewQuantizer(WithBitDepth(bits), WithType(None))
		if err != nil {
			t.Fatalf("NewQuantizer(%d) error = %v", bits, err)
		}

		hi := int(int64(1)<<(bits-1) - 1)
		if got := q.Quantize(2); got != hi {
			t.Fatalf("%d bit: Quantize(2) = %d, want %d", bits, got, hi)
		}
		if got := q.Quantize(-2); got != -hi-1 {
			t.Fatalf("%d bit: Quantize(-2) = %d, want %d", bits, got, -hi-1)
		}
	}
}

func TestDitherLinearizesSubLSBInput(t *testing.T) {
	// A constant 0.3 LSB rounds to 0 without dither. With dither the mean
	// of the quantized values tracks the input.
	const level = 0.3 / 32767

	for _, typ := range []Type{Rectangular, Triangular} {
		q, err := NewQuantizer(WithType(typ), WithSeed(7))
		if err != nil {
			t.Fatalf("NewQuantizer() error = %v", err)
		}

		const n = 200000
		var sum int
		for range n {
			sum += q.Quantize(level)
		}

		if mean := float64(sum) / n; math.Abs(mean-0.3) > 0.02 {
			t.Fatalf("%s: mean = %v LSB, want 0.3", typ, mean)
		}
	}
}

func TestTriangularNoiseBounds(t *testing.T) {
	q, err := NewQuantizer(WithSeed(3))
	if err != nil {
		t.Fatalf("NewQuantizer() error = %v", err)
	}

	for range 10000 {
		if v := q.Quantize(0); v < -1 || v > 1 {
			t.Fatalf("Quantize(0) = %d, want within ±1 LSB", v)
		}
	}
}

func TestSeedRepeatable(t *testing.T) {
	src := make([]float32, 256)
	for k := range src {
		src[k] = float32(math.Sin(float64(k) * 0.1))
	}

	q1, _ := NewQuantizer(WithSeed(42))
	q2, _ := NewQuantizer(WithSeed(42))

	a := q1.QuantizeBlock(nil, src)
	b := q2.QuantizeBlock(make([]int, 3), src)

	if len(a) != len(src) || len(b) != len(src) {
		t.Fatalf("lengths %d, %d, want %d", len(a), len(b), len(src))
	}

	for k := range a {
		if a[k] != b[k] {
			t.Fatalf("sample %d: %d != %d", k, a[k], b[k])
		}
	}

	q1.Reset()
	c := q1.QuantizeBlock(nil, src)
	for k := range a {
		if a[k] != c[k] {
			t.Fatalf("after Reset sample %d: %d != %d", k, c[k], a[k])
		}
	}
}

func TestParseType(t *testing.T) {
	for _, typ := range []Type{None, Rectangular, Triangular} {
		got, err := ParseType(typ.String())
		if err != nil || got != typ {
			t.Fatalf("ParseType(%q) = %v, %v", typ.String(), got, err)
		}
	}

	if _, err := ParseType("TPDF"); err != nil {
		t.Fatalf("ParseType(TPDF) error = %v", err)
	}

	if _, err := ParseType("gaussian"); !errors.Is(err, ErrInvalidOption) {
		t.Fatalf("ParseType(gaussian) error = %v, want ErrInvalidOption", err)
	}

	if s := Type(9).String(); s != "Type(9)" {
		t.Fatalf("String() = %q", s)
	}
}

func BenchmarkQuantizeBlock(b *testing.B) {
	q, _ := NewQuantizer()
	src := make([]float32, 1024)
	for k := range src {
		src[k] = float32(math.Sin(float64(k) * 0.01))
	}
	dst := make([]int, len(src))

	b.ReportAllocs()
	for b.Loop() {
		dst = q.QuantizeBlock(dst, src)
	}
}
