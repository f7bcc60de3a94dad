package nr

import (
	"fmt"

	"github.com/cwbudde/algo-sdr/dsp/filter/fir"
)

// DecimateTaps is the 4-tap lowpass used to halve the rate ahead of the
// noise reduction.
var DecimateTaps = []float64{
	0.099144206287089282,
	0.492752007869707798,
	0.492752007869707798,
	0.099144206287089282,
}

var interpolateHalf = [20]float64{
	-495.0757586677611930e-6,
	0.001320676868426568,
	0.001533845835568487,
	-0.002357633129357554,
	-0.003572560455091757,
	0.003388797052024843,
	0.007032840952358404,
	-0.003960820803871866,
	-0.012365795129023015,
	0.003357357660531775,
	0.020101326014980946,
	-475.4964584295063900e-6,
	-0.031094910247864812,
	-0.006597041050034579,
	0.047436525317202147,
	0.022324808965607446,
	-0.076541709512474090,
	-0.064246467306504046,
	0.167750545742874818,
	0.427794841657261171,
}

// InterpolateTaps returns the symmetric 40-tap anti-image filter for
// interpolation by 2, scaled by the rate so the passband gain is unity.
func InterpolateTaps() []float64 {
	taps := make([]float64, 2*len(interpolateHalf))
	for i, c := range interpolateHalf {
		taps[i] = 2 * c
		taps[len(taps)-1-i] = 2 * c
	}

	return taps
}

// Decimated runs an inner strategy at half the block rate.
type Decimated struct {
	inner Strategy
	dec   *fir.Decimator
	itp   *fir.Interpolator
	half  []float64
}

// NewDecimated wraps inner for blocks of blockSize samples. blockSize must
// be even. The inner strategy sees blocks of blockSize/2.
func NewDecimated(inner Strategy, blockSize int) (*Decimated, error) {
	if inner == nil {
		return nil, fmt.Errorf("%w: nil inner strategy", ErrInvalidParams)
	}

	dec, err := fir.NewDecimator(DecimateTaps, 2, blockSize)
	if err != nil {
		return nil, fmt.Errorf("nr: decimated: %w", err)
	}

	itp, err := fir.NewInterpolator(InterpolateTaps(), 2, blockSize/2)
	if err != nil {
		return nil, fmt.Errorf("nr: decimated: %w", err)
	}

	return &Decimated{
		inner: inner,
		dec:   dec,
		itp:   itp,
		half:  make([]float64, blockSize/2),
	}, nil
}

// Name implements Strategy.
func (d *Decimated) Name() string { return d.inner.Name() }

// Inner returns the wrapped strategy.
func (d *Decimated) Inner() Strategy { return d.inner }

// ProcessBlock implements Strategy. len(buf) must not exceed the block size
// given to NewDecimated.
func (d *Decimated) ProcessBlock(buf []float64) {
	n := d.dec.Process(d.half, buf)
	d.inner.ProcessBlock(d.half[:n])
	d.itp.Process(buf, d.half[:n])
}

// Reset implements Strategy.
func (d *Decimated) Reset() {
	d.dec.Reset()
	d.itp.Reset()
	d.inner.Reset()
}
