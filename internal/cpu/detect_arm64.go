//go:build arm64

package cpu

import (
	"runtime"

	"golang.org/x/sys/cpu"
)

func detectFeaturesImpl() Features {
	return Features{
		Architecture: runtime.GOARCH,
		NEON:         cpu.ARM64.HasASIMD,
	}
}
