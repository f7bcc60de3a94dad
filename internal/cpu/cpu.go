// Package cpu reports the SIMD extensions of the host for rxsim's
// run summary.
package cpu

import (
	"strings"
	"sync"
)

// Features lists the SIMD extensions found on the host.
type Features struct {
	Architecture string

	SSE2   bool
	AVX    bool
	AVX2   bool
	AVX512 bool
	NEON   bool
}

var detect = sync.OnceValue(detectFeaturesImpl)

// Detect returns the host features. Detection runs once.
func Detect() Features { return detect() }

// Extensions returns the names of the supported extensions, oldest first.
func (f Features) Extensions() []string {
	var out []string

	for _, e := range []struct {
		name string
		ok   bool
	}{
		{"SSE2", f.SSE2},
		{"AVX", f.AVX},
		{"AVX2", f.AVX2},
		{"AVX-512", f.AVX512},
		{"NEON", f.NEON},
	} {
		if e.ok {
			out = append(out, e.name)
		}
	}

	return out
}

// String implements fmt.Stringer, e.g. "amd64: SSE2 AVX AVX2".
func (f Features) String() string {
	ext := f.Extensions()
	if len(ext) == 0 {
		return f.Architecture + ": generic"
	}

	return f.Architecture + ": " + strings.Join(ext, " ")
}
