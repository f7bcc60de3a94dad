package filterpath

import (
	"fmt"

	"github.com/cwbudde/algo-sdr/dsp/filter/fir"
	"github.com/cwbudde/algo-sdr/dsp/filter/lattice"
)

// Channels is the number of parallel filter channels in a Bank: I and Q
// ahead of demodulation, left and right audio after it.
const Channels = 2

var passthroughTaps = []float64{1}

// Bank owns the runtime filters configured by a Path. All filter state is
// allocated by NewBank; Apply only re-points coefficients, as long as the
// path fits the Capacity the bank was built for.
type Bank struct {
	blockSize int
	path      Path
	applied   bool

	iq  [Channels]*fir.Filter
	dec [Channels]*fir.Decimator
	pre [Channels]*lattice.Filter
	itp [Channels]*fir.Interpolator
	aa  [Channels]*lattice.Filter
}

// NewBank creates an unconfigured bank for blocks of blockSize samples,
// sized for paths up to c. The filters pass samples through unchanged until
// Apply is called.
func NewBank(blockSize int, c Capacity) (*Bank, error) {
	if blockSize <= 0 {
		return nil, fmt.Errorf("filterpath: %w: %d", fir.ErrBlockSize, blockSize)
	}

	b := &Bank{blockSize: blockSize}

	for ch := range Channels {
		var err error

		b.iq[ch] = fir.New(passthroughTaps)

		if b.dec[ch], err = fir.NewDecimator([]float64{1}, 1, blockSize); err != nil {
			return nil, fmt.Errorf("filterpath: %w", err)
		}

		if b.itp[ch], err = fir.NewInterpolator([]float64{1, 0}, 1, blockSize); err != nil {
			return nil, fmt.Errorf("filterpath: %w", err)
		}

		b.pre[ch] = &lattice.Filter{}
		b.aa[ch] = &lattice.Filter{}

		b.iq[ch].Reserve(max(c.IQTaps, 1), blockSize)
		b.dec[ch].Reserve(c.DecimatorTaps)
		b.itp[ch].Reserve(c.InterpolatorTaps)
		b.pre[ch].Reserve(c.LatticeStages)
		b.aa[ch].Reserve(c.LatticeStages)
	}

	return b, nil
}

// Apply re-points the bank at p. The lattice filters are disabled before
// any coefficient changes, so a failed Apply leaves them as passthrough.
func (b *Bank) Apply(p Path) error {
	for ch := range Channels {
		b.pre[ch].Disable()
		b.aa[ch].Disable()
	}

	if err := p.Validate(b.blockSize); err != nil {
		return err
	}

	if p.IQ.Empty() {
		b.iq[0].SetCoefficients(passthroughTaps)
		b.iq[1].SetCoefficients(passthroughTaps)
	} else {
		b.iq[0].SetCoefficients(p.IQ.I)
		b.iq[1].SetCoefficients(p.IQ.Q)
	}

	for ch := range Channels {
		if p.Decimation > 1 {
			if err := b.dec[ch].Configure(p.Decimator, p.Decimation); err != nil {
				return fmt.Errorf("filterpath: %w", err)
			}

			if err := b.itp[ch].Configure(p.Interpolator, p.Decimation); err != nil {
				return fmt.Errorf("filterpath: %w", err)
			}
		}

		if p.PreFilter != nil {
			if err := b.pre[ch].Configure(p.PreFilter.K, p.PreFilter.V); err != nil {
				return fmt.Errorf("filterpath: %w", err)
			}
		}

		if p.AntiAlias != nil {
			if err := b.aa[ch].Configure(p.AntiAlias.K, p.AntiAlias.V); err != nil {
				return fmt.Errorf("filterpath: %w", err)
			}
		}
	}

	b.path = p
	b.applied = true

	return nil
}

// Path returns the applied path and whether one has been applied.
func (b *Bank) Path() (Path, bool) { return b.path, b.applied }

// Decimation returns the decimation factor of the applied path, 1 before
// the first Apply.
func (b *Bank) Decimation() int {
	if !b.applied {
		return 1
	}

	return b.path.Decimation
}

// FilterIQ runs the I/Q FIR pair in place. Paths without a pair leave the
// samples untouched.
func (b *Bank) FilterIQ(i, q []float64) {
	if b.applied && b.path.IQ.Empty() {
		return
	}

	b.iq[0].ProcessBlock(i)
	b.iq[1].ProcessBlock(q)
}

// Decimate decimates src into dst on channel ch and returns the output
// length. dst may alias src.
func (b *Bank) Decimate(ch int, dst, src []float64) int {
	if b.Decimation() == 1 {
		return copy(dst, src)
	}

	return b.dec[ch].Process(dst, src)
}

// PreFilter runs the pre-filter lattice on channel ch in place.
func (b *Bank) PreFilter(ch int, buf []float64) { b.pre[ch].ProcessBlock(buf) }

// Interpolate restores the full rate of channel ch into dst and returns the
// output length. dst must not alias src.
func (b *Bank) Interpolate(ch int, dst, src []float64) int {
	if b.Decimation() == 1 {
		return copy(dst, src)
	}

	return b.itp[ch].Process(dst, src)
}

// AntiAlias runs the anti-alias lattice on channel ch in place.
func (b *Bank) AntiAlias(ch int, buf []float64) { b.aa[ch].ProcessBlock(buf) }

// PreFilterStages returns the active pre-filter stage count.
func (b *Bank) PreFilterStages() int { return b.pre[0].NumStages() }

// AntiAliasStages returns the active anti-alias stage count.
func (b *Bank) AntiAliasStages() int { return b.aa[0].NumStages() }

// Reset clears all filter state and keeps the configuration.
func (b *Bank) Reset() {
	for ch := range Channels {
		b.iq[ch].Reset()
		b.dec[ch].Reset()
		b.itp[ch].Reset()
		b.pre[ch].Reset()
		b.aa[ch].Reset()
	}
}
