package filterpath

import (
	"math"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cwbudde/algo-sdr/dsp/filter/lattice"
	"github.com/cwbudde/algo-sdr/internal/testutil"
)

func newBank(t *testing.T) *Bank {
	t.Helper()

	b, err := NewBank(testBlock, mustStore(t).Capacity())
	require.NoError(t, err)

	return b
}

// amplitude estimates the sine amplitude of the second half of x from its
// RMS value.
func amplitude(x []float64) float64 {
	tail := x[len(x)/2:]

	var sum float64
	for _, v := range tail {
		sum += v * v
	}

	return math.Sqrt(2 * sum / float64(len(tail)))
}

func TestBankPassthroughBeforeApply(t *testing.T) {
	b := newBank(t)
	assert.Equal(t, 1, b.Decimation())

	_, ok := b.Path()
	assert.False(t, ok)

	in := testutil.DeterministicNoise(3, 1, testBlock)
	i := append([]float64(nil), in...)
	q := append([]float64(nil), in...)
	b.FilterIQ(i, q)
	b.PreFilter(0, i)
	b.AntiAlias(1, q)

	assert.Equal(t, in, i)
	assert.Equal(t, in, q)

	out := make([]float64, testBlock)
	assert.Equal(t, testBlock, b.Decimate(0, out, in))
	assert.Equal(t, in, out)
}

func TestBankApplyRepointsLattices(t *testing.T) {
	s := mustStore(t)
	b := newBank(t)

	require.NoError(t, b.Apply(mustLookup(t, s, "SSB 2.3kHz")))
	assert.Equal(t, 6, b.PreFilterStages())
	assert.Equal(t, 4, b.AntiAliasStages())
	assert.Equal(t, 4, b.Decimation())

	require.NoError(t, b.Apply(mustLookup(t, s, "FM 5kHz")))
	assert.Equal(t, 0, b.PreFilterStages())
	assert.Equal(t, 0, b.AntiAliasStages())
	assert.Equal(t, 1, b.Decimation())

	require.NoError(t, b.Apply(mustLookup(t, s, "AM 9kHz")))
	assert.Equal(t, 8, b.PreFilterStages())

	p, ok := b.Path()
	require.True(t, ok)
	assert.Equal(t, "AM 9kHz", p.Name)
}

func TestBankApplyInvalidLeavesLatticesDisabled(t *testing.T) {
	b := newBank(t)
	require.NoError(t, b.Apply(mustLookup(t, mustStore(t), "AM 2.3kHz")))

	bad := validPath()
	bad.PreFilter = &Lattice{K: []float64{1.5}, V: []float64{1, 0}}
	require.ErrorIs(t, b.Apply(bad), lattice.ErrUnstable)

	assert.Equal(t, 0, b.PreFilterStages())
	assert.Equal(t, 0, b.AntiAliasStages())
}

func TestBankPreFilterPassband(t *testing.T) {
	b := newBank(t)
	require.NoError(t, b.Apply(mustLookup(t, mustStore(t), "SSB 2.3kHz")))

	fs := 12000.0
	tests := []struct {
		freq     float64
		min, max float64
	}{
		{1000, 0.99, 1.01},
		{5000, 0, 0.01},
	}

	for _, tt := range tests {
		b.Reset()

		x := testutil.DeterministicSine(tt.freq, fs, 1, 12000)
		for off := 0; off < len(x); off += testBlock / 4 {
			b.PreFilter(0, x[off:off+testBlock/4])
		}

		got := amplitude(x)
		assert.GreaterOrEqual(t, got, tt.min, "%g Hz", tt.freq)
		assert.LessOrEqual(t, got, tt.max, "%g Hz", tt.freq)
	}
}

func TestLattice9kResponse(t *testing.T) {
	f, err := lattice.New(Lattice9k.K, Lattice9k.V)
	require.NoError(t, err)

	pass := testutil.DeterministicSine(1000, 24000, 1, 24000)
	f.ProcessBlock(pass)
	assert.InDelta(t, 0.9, amplitude(pass), 0.05)

	f.Reset()

	stop := testutil.DeterministicSine(10500, 24000, 1, 24000)
	f.ProcessBlock(stop)
	assert.Less(t, amplitude(stop), 0.01)
}

func TestBankDecimateInterpolateRoundTrip(t *testing.T) {
	s := mustStore(t)
	p := mustLookup(t, s, "SSB 2.3kHz")
	capacity := s.Capacity()

	rapid.Check(t, func(rt *rapid.T) {
		freq := rapid.Float64Range(200, 3500).Draw(rt, "freq")

		b, err := NewBank(testBlock, capacity)
		require.NoError(rt, err)
		require.NoError(rt, b.Apply(p))

		x := testutil.DeterministicSine(freq, SampleRate, 1, 24000)
		dec := make([]float64, testBlock)
		out := make([]float64, 0, len(x))
		blk := make([]float64, testBlock)

		for off := 0; off < len(x); off += testBlock {
			n := b.Decimate(0, dec, x[off:off+testBlock])
			m := b.Interpolate(0, blk, dec[:n])
			out = append(out, blk[:m]...)
		}

		require.Len(rt, out, len(x))
		assert.InDelta(rt, 1.0, amplitude(out), 0.03, "%g Hz", freq)
	})
}

func TestStoreCapacity(t *testing.T) {
	s := mustStore(t)
	c := s.Capacity()

	for _, p := range s.Paths() {
		assert.LessOrEqual(t, len(p.IQ.I), c.IQTaps, p.Name)
		assert.LessOrEqual(t, len(p.Decimator), c.DecimatorTaps, p.Name)
		assert.LessOrEqual(t, len(p.Interpolator), c.InterpolatorTaps, p.Name)
		assert.LessOrEqual(t, p.PreFilter.Stages(), c.LatticeStages, p.Name)
		assert.LessOrEqual(t, p.AntiAlias.Stages(), c.LatticeStages, p.Name)
	}

	assert.GreaterOrEqual(t, c.LatticeStages, 8)
	assert.Positive(t, c.IQTaps)
}

// mallocs counts the heap allocations made by fn. Unlike
// testing.AllocsPerRun it has no warm-up call, so buffer growth on the
// first use is counted.
func mallocs(fn func()) uint64 {
	var before, after runtime.MemStats

	runtime.GC()
	runtime.ReadMemStats(&before)
	fn()
	runtime.ReadMemStats(&after)

	return after.Mallocs - before.Mallocs
}

func TestBankApplyDoesNotAllocate(t *testing.T) {
	for _, block := range []int{testBlock, 128} {
		s, err := DefaultStore(block)
		require.NoError(t, err)

		b, err := NewBank(block, s.Capacity())
		require.NoError(t, err)

		i := make([]float64, block)
		q := make([]float64, block)
		out := make([]float64, block)

		for _, p := range s.Paths() {
			n := mallocs(func() {
				if err := b.Apply(p); err != nil {
					panic(err)
				}

				b.FilterIQ(i, q)
				m := b.Decimate(0, i, i)
				b.PreFilter(0, i[:m])
				b.AntiAlias(0, out[:b.Interpolate(0, out, i[:m])])
			})
			assert.Zero(t, n, "block %d, path %s", block, p.Name)
		}
	}
}
