package scope

import (
	"math"
	"math/cmplx"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cwbudde/algo-sdr/dsp/filter/fir"
)

const (
	scopeRate  = 48000.0
	scopeBlock = 32
)

// complexTone fills i and q with a*exp(j*2*pi*f*n/fs) starting at n0.
func complexTone(i, q []float64, n0 int, f, a float64) {
	for k := range i {
		s, c := math.Sincos(2 * math.Pi * f * float64(n0+k) / scopeRate)
		i[k] = a * c
		q[k] = a * s
	}
}

func TestTapWritesQFirstAndWraps(t *testing.T) {
	buf := make([]float32, 8)
	tap, err := NewTap(buf)
	require.NoError(t, err)
	assert.Equal(t, 4, tap.Pairs())

	tap.Write([]float64{1, 2, 3}, []float64{-1, -2, -3})
	assert.Equal(t, []float32{-1, 1, -2, 2, -3, 3, 0, 0}, buf)
	assert.Equal(t, 6, tap.Cursor())

	tap.Write([]float64{4, 5}, []float64{-4, -5})
	assert.Equal(t, []float32{-5, 5, -2, 2, -3, 3, -4, 4}, buf)
	assert.Equal(t, 2, tap.Cursor())
	assert.Equal(t, uint64(1), tap.Wraps())

	tap.Reset()
	assert.Equal(t, 0, tap.Cursor())
	assert.Equal(t, make([]float32, 8), buf)
}

func TestTapOddLength(t *testing.T) {
	buf := make([]float32, 7)
	tap, err := NewTap(buf)
	require.NoError(t, err)

	tap.Write([]float64{1, 2, 3}, []float64{1, 2, 3})
	assert.Equal(t, 0, tap.Cursor())
	assert.Zero(t, buf[6])

	_, err = NewTap(make([]float32, 1))
	require.ErrorIs(t, err, ErrTapLength)
}

func TestAnalyzerTonePosition(t *testing.T) {
	tests := []struct {
		name    string
		freq    float64
		wantBin int
	}{
		{"positive", 3000, 144},
		{"negative", -3000, 112},
		{"dc", 0, 128},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tap, err := NewTap(make([]float32, 2*512))
			require.NoError(t, err)

			i := make([]float64, scopeBlock)
			q := make([]float64, scopeBlock)
			for n := 0; n < 600; n += scopeBlock {
				complexTone(i, q, n, tt.freq, 0.5)
				tap.Write(i, q)
			}

			a, err := NewAnalyzer(256)
			require.NoError(t, err)

			db, err := a.UpdateTap(tap)
			require.NoError(t, err)
			require.Len(t, db, 256)

			bin, level := a.Peak()
			assert.Equal(t, tt.wantBin, bin)
			assert.InDelta(t, 20*math.Log10(0.5), level, 0.05)
			assert.InDelta(t, tt.freq, a.BinFrequency(bin, scopeRate), 1e-9)
		})
	}
}

func TestAnalyzerSmoothingAndReset(t *testing.T) {
	a, err := NewAnalyzer(64, WithSmoothing(0.5), WithFloorDB(-100))
	require.NoError(t, err)

	i := make([]float64, 64)
	q := make([]float64, 64)
	complexTone(i, q, 0, 6000, 1)

	_, err = a.UpdateIQ(i, q)
	require.NoError(t, err)
	_, first := a.Peak()
	assert.InDelta(t, 0, first, 0.05)

	clear(i)
	clear(q)
	db, err := a.UpdateIQ(i, q)
	require.NoError(t, err)
	assert.InDelta(t, (first-100)/2, db[32+8], 0.05)

	a.Reset()
	for _, v := range a.Spectrum() {
		require.InDelta(t, -100.0, v, 0)
	}
}

func TestAnalyzerErrors(t *testing.T) {
	_, err := NewAnalyzer(100)
	require.ErrorIs(t, err, ErrFFTSize)

	a, err := NewAnalyzer(32)
	require.NoError(t, err)

	_, err = a.Update(make([]float32, 40), 0)
	require.ErrorIs(t, err, ErrTapLength)

	_, err = a.UpdateIQ(make([]float64, 8), make([]float64, 8))
	require.ErrorIs(t, err, ErrTapLength)
}

func zoomPeak(t *testing.T, z *Zoom, freq float64) float64 {
	t.Helper()

	i := make([]float64, scopeBlock)
	q := make([]float64, scopeBlock)

	var peak float64
	for n := 0; n < 24000; n += scopeBlock {
		complexTone(i, q, n, freq, 1)
		zi, zq := z.Process(i, q)
		require.Len(t, zi, scopeBlock/z.Factor())

		if n < 12000 {
			continue
		}

		for k := range zi {
			peak = max(peak, cmplx.Abs(complex(zi[k], zq[k])))
		}
	}

	return peak
}

func TestZoomPassesCenterAndRejectsEdges(t *testing.T) {
	z, err := NewZoom(3, scopeRate, scopeBlock)
	require.NoError(t, err)
	assert.Equal(t, 8, z.Factor())
	assert.InDelta(t, 6000.0, z.SampleRate(), 0)

	assert.InDelta(t, 1.0, zoomPeak(t, z, 1000), 0.02)

	z.Reset()
	assert.Less(t, zoomPeak(t, z, 10000), 0.01)
}

func TestZoomOffIsIdentity(t *testing.T) {
	z, err := NewZoom(0, scopeRate, scopeBlock)
	require.NoError(t, err)

	i := []float64{1, 2, 3, 4}
	q := []float64{5, 6, 7, 8}
	zi, zq := z.Process(i, q)
	assert.Equal(t, i, zi)
	assert.Equal(t, q, zq)
}

func TestZoomErrors(t *testing.T) {
	_, err := NewZoom(MaxMagnify+1, scopeRate, scopeBlock)
	require.ErrorIs(t, err, ErrMagnify)

	_, err = NewZoom(5, scopeRate, 16)
	require.ErrorIs(t, err, fir.ErrBlockSize)

	z, err := NewZoom(1, scopeRate, scopeBlock)
	require.NoError(t, err)
	require.ErrorIs(t, z.SetMagnify(-1), ErrMagnify)
	assert.Equal(t, 1, z.Magnify())
}
