//go:build amd64

package cpu

import (
	"runtime"

	"golang.org/x/sys/cpu"
)

// SSE2 is part of the x86-64 baseline.
func detectFeaturesImpl() Features {
	return Features{
		Architecture: runtime.GOARCH,
		SSE2:         cpu.X86.HasSSE2,
		AVX:          cpu.X86.HasAVX,
		AVX2:         cpu.X86.HasAVX2,
		AVX512:       cpu.X86.HasAVX512F,
	}
}
