package cpu

import (
	"runtime"
	"slices"
	"testing"
)

func TestDetect(t *testing.T) {
	f := Detect()
	if f.Architecture != runtime.GOARCH {
		t.Fatalf("Architecture = %q, want %q", f.Architecture, runtime.GOARCH)
	}

	if runtime.GOARCH == "amd64" && !f.SSE2 {
		t.Fatal("amd64 without SSE2")
	}

	if Detect() != f {
		t.Fatal("Detect is not stable")
	}
}

func TestString(t *testing.T) {
	tests := []struct {
		f    Features
		want string
	}{
		{Features{Architecture: "riscv64"}, "riscv64: generic"},
		{Features{Architecture: "amd64", SSE2: true, AVX2: true}, "amd64: SSE2 AVX2"},
		{Features{Architecture: "arm64", NEON: true}, "arm64: NEON"},
	}

	for _, tt := range tests {
		if got := tt.f.String(); got != tt.want {
			t.Fatalf("String() = %q, want %q", got, tt.want)
		}
	}

	all := Features{SSE2: true, AVX: true, AVX2: true, AVX512: true, NEON: true}
	if got := all.Extensions(); !slices.Equal(got, []string{"SSE2", "AVX", "AVX2", "AVX-512", "NEON"}) {
		t.Fatalf("Extensions() = %v", got)
	}
}
