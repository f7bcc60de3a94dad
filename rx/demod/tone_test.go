package demod

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cwbudde/algo-sdr/internal/testutil"
)

const (
	fmRate  = 48000.0
	fmBlock = 32
)

func feedTone(t *testing.T, d *ToneDetector, freq float64, blocks int) {
	t.Helper()

	sig := testutil.DeterministicSine(freq, fmRate, 0.2, blocks*fmBlock)
	for b := range blocks {
		d.ProcessBlock(sig[b*fmBlock : (b+1)*fmBlock])
	}
}

func TestToneDetectorWindow(t *testing.T) {
	d, err := NewToneDetector(88.5, fmRate, fmBlock)
	require.NoError(t, err)
	assert.Equal(t, 375, d.WindowBlocks())

	_, err = NewToneDetector(88.5, fmRate, 0)
	require.Error(t, err)
}

func TestToneDetectorDebounce(t *testing.T) {
	d, err := NewToneDetector(88.5, fmRate, fmBlock)
	require.NoError(t, err)

	w := d.WindowBlocks()

	feedTone(t, d, 88.5, w)
	assert.False(t, d.Detected(), "one window is below the debounce count")
	assert.Greater(t, d.Ratio(), toneRatioOn)

	feedTone(t, d, 88.5, w)
	assert.True(t, d.Detected())

	feedTone(t, d, 88.5, 5*w)
	assert.True(t, d.Detected())

	// The smoothed ratio stays above 1.75 for one more window and the
	// counter saturates at 5, so four quiet windows still read detected.
	feedTone(t, d, 67, 4*w)
	assert.True(t, d.Detected())

	feedTone(t, d, 67, w)
	assert.False(t, d.Detected())
}

func TestToneDetectorIgnoresOtherTone(t *testing.T) {
	d, err := NewToneDetector(88.5, fmRate, fmBlock)
	require.NoError(t, err)

	feedTone(t, d, 67, 6*d.WindowBlocks())
	assert.False(t, d.Detected())

	require.NoError(t, d.SetFrequency(67))
	assert.InDelta(t, 67, d.Frequency(), 0)

	feedTone(t, d, 67, 2*d.WindowBlocks())
	assert.True(t, d.Detected())
}
