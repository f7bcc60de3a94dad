package agc

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cwbudde/algo-sdr/internal/testutil"
)

const (
	agcRate  = 12000.0
	agcBlock = 8
)

func newAGC(t *testing.T, cfg Config) *AGC {
	t.Helper()

	a, err := New(cfg, agcRate)
	require.NoError(t, err)

	return a
}

func process(a *AGC, bufs ...[]float64) {
	for off := 0; off < len(bufs[0]); off += agcBlock {
		blocks := make([][]float64, len(bufs))
		for i, b := range bufs {
			blocks[i] = b[off : off+agcBlock]
		}

		a.ProcessBlock(blocks...)
	}
}

func peakIn(x []float64, from, to float64) float64 {
	var m float64
	for _, v := range x[int(from*agcRate):int(to*agcRate)] {
		m = max(m, math.Abs(v))
	}

	return m
}

func TestParseMode(t *testing.T) {
	for _, m := range []Mode{ModeOff, ModeSlow, ModeMedium, ModeFast, ModeCustom} {
		got, err := ParseMode(m.String())
		require.NoError(t, err)
		assert.Equal(t, m, got)
	}

	got, err := ParseMode(" MED ")
	require.NoError(t, err)
	assert.Equal(t, ModeMedium, got)

	_, err = ParseMode("turbo")
	require.ErrorIs(t, err, ErrUnknownMode)
	assert.Equal(t, "Mode(9)", Mode(9).String())
}

func TestOffAppliesManualGain(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Mode = ModeOff
	cfg.ManualGainDB = 6

	a := newAGC(t, cfg)
	x := testutil.DeterministicNoise(1, 0.5, 64)
	want := make([]float64, len(x))
	for i, v := range x {
		want[i] = v * math.Pow(10, 6.0/20)
	}

	process(a, x)
	testutil.RequireSliceNearlyEqual(t, x, want, 1e-12)
	assert.InDelta(t, 6, a.GainDB(), 1e-9)
}

func TestFastRegulatesToTarget(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Mode = ModeFast
	a := newAGC(t, cfg)

	x := testutil.DeterministicSine(1000, agcRate, 0.01, int(agcRate))
	process(a, x)

	assert.InDelta(t, 1.0, peakIn(x, 0.5, 1), 0.1)
	assert.InDelta(t, 40, a.GainDB(), 1)
}

func TestGainIsCapped(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Mode = ModeFast
	cfg.MaxGainDB = 40
	a := newAGC(t, cfg)

	x := testutil.DeterministicSine(1000, agcRate, 1e-5, int(agcRate))
	process(a, x)

	assert.InDelta(t, 1e-3, peakIn(x, 0.5, 1), 1e-5)
	assert.InDelta(t, 100, a.Gain(), 1e-9)
}

func TestHangHoldsGain(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Mode = ModeCustom
	cfg.AttackMs = 1
	cfg.HangMs = 100
	cfg.DecayMs = 10
	a := newAGC(t, cfg)

	loud := testutil.DeterministicSine(1000, agcRate, 1, int(0.2*agcRate))
	quiet := testutil.DeterministicSine(1000, agcRate, 0.1, int(0.6*agcRate))
	x := append(loud, quiet...)
	process(a, x)

	assert.InDelta(t, 1.0, peakIn(x, 0.15, 0.2), 0.02)
	assert.InDelta(t, 0.1, peakIn(x, 0.21, 0.28), 0.01, "gain held during hang")
	assert.InDelta(t, 1.0, peakIn(x, 0.5, 0.8), 0.02, "gain recovered after decay")
}

func TestLinkedChannels(t *testing.T) {
	a := newAGC(t, DefaultConfig())

	left := testutil.DeterministicSine(700, agcRate, 0.2, 4000)
	right := testutil.DeterministicSine(700, agcRate, 0.05, 4000)
	process(a, left, right)

	for i := 2000; i < 4000; i++ {
		if math.Abs(right[i]) > 1e-3 {
			require.InDelta(t, 4.0, left[i]/right[i], 1e-9)
		}
	}
}

func TestSampleRateChangeKeepsEnvelope(t *testing.T) {
	a := newAGC(t, DefaultConfig())

	x := testutil.DeterministicSine(1000, agcRate, 0.3, 2000)
	process(a, x)
	env := a.Envelope()

	require.NoError(t, a.SetSampleRate(24000))
	assert.InDelta(t, 24000.0, a.SampleRate(), 0)
	assert.InDelta(t, env, a.Envelope(), 0)
	require.ErrorIs(t, a.SetSampleRate(0), ErrInvalidConfig)

	a.Reset()
	assert.Zero(t, a.Envelope())
	assert.InDelta(t, 1000, a.Gain(), 1e-9)
}

func TestConfigValidation(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"mode", func(c *Config) { c.Mode = 7 }},
		{"positive target", func(c *Config) { c.TargetDB = 3 }},
		{"negative max gain", func(c *Config) { c.MaxGainDB = -1 }},
		{"huge max gain", func(c *Config) { c.MaxGainDB = 200 }},
		{"nan manual gain", func(c *Config) { c.ManualGainDB = math.NaN() }},
		{"custom attack", func(c *Config) { c.Mode, c.AttackMs = ModeCustom, 0 }},
		{"custom hang", func(c *Config) { c.Mode, c.HangMs = ModeCustom, -1 }},
		{"custom decay", func(c *Config) { c.Mode, c.DecayMs = ModeCustom, 0.5 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(&cfg)

			_, err := New(cfg, agcRate)
			require.ErrorIs(t, err, ErrInvalidConfig)
		})
	}

	_, err := New(DefaultConfig(), 0)
	require.ErrorIs(t, err, ErrInvalidConfig)
}

func TestGainBounded(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		cfg := DefaultConfig()
		cfg.Mode = rapid.SampledFrom([]Mode{ModeSlow, ModeMedium, ModeFast}).Draw(rt, "mode")
		cfg.MaxGainDB = rapid.Float64Range(0, 80).Draw(rt, "maxGain")

		a, err := New(cfg, agcRate)
		require.NoError(rt, err)

		limit := math.Pow(10, cfg.MaxGainDB/20) * (1 + 1e-12)
		x := rapid.SliceOfN(rapid.Float64Range(-1, 1), agcBlock, agcBlock).Draw(rt, "x")

		for range 50 {
			in := append([]float64(nil), x...)
			a.ProcessBlock(in)

			require.Greater(rt, a.Gain(), 0.0)
			require.LessOrEqual(rt, a.Gain(), limit)

			for i, v := range in {
				require.LessOrEqual(rt, math.Abs(v), math.Abs(x[i])*limit)
			}
		}
	})
}
