package filterpath

import (
	"fmt"
	"sync"

	"hz.tools/rf"

	"github.com/cwbudde/algo-sdr/dsp/filter/biquad"
	"github.com/cwbudde/algo-sdr/dsp/filter/design"
	"github.com/cwbudde/algo-sdr/dsp/filter/fir"
	"github.com/cwbudde/algo-sdr/dsp/filter/lattice"
	"github.com/cwbudde/algo-sdr/rx/demod"
)

// SampleRate is the I/Q rate the compiled-in paths are designed for.
const SampleRate = 48000.0

const (
	iqTaps     = 89
	kaiserBeta = 5.0

	cwCenter    rf.Hz = 750
	sidebandLow rf.Hz = 150

	// Widest sideband path whose FIR pair runs after I/Q decimation.
	decimatedIQMax rf.Hz = 3600
)

// decimatorTaps maps the decimation factor to the decimator length.
var decimatorTaps = map[int]int{2: 41, 4: 63}

// Lattice9k is an 8th order elliptic lowpass with a 9 kHz passband edge for
// the 24 ksps audio chain.
var Lattice9k = Lattice{
	K: []float64{
		0.144843368057163, 0.0311176821163535, 0.671835107699585, 0.499495871489971,
		0.971603001167062, 0.651162915986589, 0.998310568870827, 0.698395145953468,
	},
	V: []float64{
		0.157182890700946, 0.510999353559437, 0.454077934277190, -0.0776493551890845,
		-0.180998321432113, 0.00575759072640292, 0.0249744575699347, 0.000197356170009044,
		-0.000725804365039828,
	},
}

type pairKind int

const (
	quadrature pairKind = iota
	lowpass
	// noPair leaves the I/Q stage out; selectivity comes from the decimator
	// and the pre-filter lattice.
	noPair
)

type pathSpec struct {
	name       string
	modes      demod.ModeMask
	low, high  rf.Hz
	decimation int
	decimateIQ bool
	pair       pairKind
	pre        *Lattice
}

// DefaultStore builds the compiled-in path table for blockSize-sample
// blocks at [SampleRate].
func DefaultStore(blockSize int) (*Store, error) {
	paths, err := defaultPaths()
	if err != nil {
		return nil, err
	}

	return NewStore(paths, blockSize)
}

// defaultPaths designs the table once per process. Every default store
// shares the coefficient slices, which are never written after design.
var defaultPaths = sync.OnceValues(func() ([]Path, error) {
	specs := defaultSpecs()
	paths := make([]Path, 0, len(specs))

	for i, sp := range specs {
		p, err := buildPath(i+1, sp)
		if err != nil {
			return nil, fmt.Errorf("filterpath: build %q: %w", sp.name, err)
		}

		paths = append(paths, p)
	}

	return paths, nil
})

func defaultSpecs() []pathSpec {
	sideband := demod.MaskOf(demod.ModeLSB, demod.ModeUSB, demod.ModeCW, demod.ModeIQ, demod.ModeStereo)
	am := demod.MaskOf(demod.ModeAM, demod.ModeSAM)
	cw := demod.ModeCW.Mask()

	specs := []pathSpec{
		{name: "CW 300Hz", modes: cw, low: cwCenter - 150, high: cwCenter + 150, decimation: 4, decimateIQ: true},
		{name: "CW 500Hz", modes: cw, low: cwCenter - 250, high: cwCenter + 250, decimation: 4, decimateIQ: true},
	}

	for _, w := range []rf.Hz{1400, 1800, 2100, 2300, 2500, 2700, 2900, 3200, 3600, 4000} {
		specs = append(specs, pathSpec{
			name:       "SSB " + label(w),
			modes:      sideband,
			low:        sidebandLow,
			high:       sidebandLow + w,
			decimation: 4,
			decimateIQ: w <= decimatedIQMax,
		})
	}

	for _, w := range []rf.Hz{2300, 2700, 3600, 5000, 6000, 7500} {
		dec := 4
		if w > 4000 {
			dec = 2
		}

		specs = append(specs, pathSpec{
			name: "AM " + label(w), modes: am, high: w,
			decimation: dec, decimateIQ: true, pair: noPair,
		})
	}

	specs = append(specs, pathSpec{
		name: "AM 9kHz", modes: am, high: 9000,
		decimation: 2, decimateIQ: true, pair: noPair, pre: &Lattice9k,
	})

	for _, w := range []rf.Hz{5000, 6500, 10000} {
		specs = append(specs, pathSpec{
			name: "FM " + label(w), modes: demod.ModeFM.Mask(), high: w,
			decimation: 1, pair: lowpass,
		})
	}

	return specs
}

func label(w rf.Hz) string {
	if w < 1000 {
		return fmt.Sprintf("%dHz", int(w))
	}

	return fmt.Sprintf("%gkHz", float64(w)/1000)
}

func buildPath(id int, sp pathSpec) (Path, error) {
	p := Path{
		ID:         id,
		Name:       sp.name,
		Modes:      sp.modes,
		Low:        sp.low,
		High:       sp.high,
		Decimation: sp.decimation,
		DecimateIQ: sp.decimateIQ,
	}

	iqRate := SampleRate
	if sp.decimateIQ {
		iqRate = p.DecimatedRate(SampleRate)
	}

	var err error

	switch sp.pair {
	case quadrature:
		p.IQ.I, p.IQ.Q, err = fir.QuadraturePair(float64(sp.low), float64(sp.high), iqRate, iqTaps, kaiserBeta)
	case lowpass:
		p.IQ.I, p.IQ.Q, err = fir.LowpassPair(float64(sp.high), iqRate, iqTaps, kaiserBeta)
	}

	if err != nil {
		return Path{}, fmt.Errorf("i/q pair: %w", err)
	}

	if sp.decimation == 1 {
		return p, nil
	}

	decRate := p.DecimatedRate(SampleRate)
	edge := 0.45 * decRate

	p.Decimator, err = fir.Lowpass(edge, SampleRate, decimatorTaps[sp.decimation], kaiserBeta)
	if err != nil {
		return Path{}, fmt.Errorf("decimator: %w", err)
	}

	p.Interpolator, err = fir.InterpolationLowpass(edge, SampleRate, 16*sp.decimation, kaiserBeta, sp.decimation)
	if err != nil {
		return Path{}, fmt.Errorf("interpolator: %w", err)
	}

	if sp.pre != nil {
		p.PreFilter = sp.pre
	} else {
		sections := design.ButterworthLP(float64(sp.high), 4, decRate)
		if sp.low >= 100 {
			sections = append(sections, design.ButterworthHP(float64(sp.low), 2, decRate)...)
		}

		if p.PreFilter, err = toLattice(sections); err != nil {
			return Path{}, fmt.Errorf("pre-filter: %w", err)
		}
	}

	aaEdge := min(1.1*float64(sp.high), 0.46*decRate)
	if p.AntiAlias, err = toLattice(design.ButterworthLP(aaEdge, 4, SampleRate)); err != nil {
		return Path{}, fmt.Errorf("anti-alias: %w", err)
	}

	return p, nil
}

func toLattice(sections []biquad.Coefficients) (*Lattice, error) {
	k, v, err := lattice.FromBiquads(sections)
	if err != nil {
		return nil, err
	}

	return &Lattice{K: k, V: v}, nil
}
