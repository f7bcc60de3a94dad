package main

import (
	"math"
	"math/cmplx"

	"github.com/cwbudde/algo-sdr/dsp/core"
	"github.com/cwbudde/algo-sdr/dsp/filter/fir"
	"github.com/cwbudde/algo-sdr/rx/demod"
	"github.com/cwbudde/algo-sdr/rx/filterpath"
)

// summary holds the headline figures of a path. Values are NaN where a
// path has no such stage.
type summary struct {
	// pass is the I/Q pair gain at the passband center.
	pass float64
	// reject is the gain of the opposite sideband at the mirrored center.
	reject float64
	// alias is the decimator gain at the first frequency folding onto
	// the passband edge.
	alias float64
}

type responsePoint struct {
	freq         float64
	upper, lower float64
}

// iqRate returns the rate the I/Q pair of p runs at.
func iqRate(p filterpath.Path) float64 {
	if p.DecimateIQ {
		return p.DecimatedRate(filterpath.SampleRate)
	}

	return filterpath.SampleRate
}

// quadrature reports whether p selects a sideband rather than low-passing
// both channels.
func quadrature(p filterpath.Path) bool {
	return !p.Applies(demod.ModeFM) && !p.IQ.Empty()
}

// sidebandGains returns the linear gain of the I+Q sum (upper sideband)
// and I−Q difference (lower sideband) for a complex tone at f Hz.
func sidebandGains(p filterpath.Path, f float64) (upper, lower float64) {
	rate := iqRate(p)
	hi := fir.Response(p.IQ.I, f, rate)
	hq := fir.Response(p.IQ.Q, f, rate)

	return cmplx.Abs(hi - 1i*hq), cmplx.Abs(hi + 1i*hq)
}

func summarize(p filterpath.Path) summary {
	s := summary{pass: math.NaN(), reject: math.NaN(), alias: math.NaN()}
	center := float64(p.Low+p.High) / 2

	switch {
	case p.IQ.Empty():
	case quadrature(p):
		up, _ := sidebandGains(p, center)
		s.pass = core.LinearToDB(up)
		up, _ = sidebandGains(p, -center)
		s.reject = core.LinearToDB(up)
	default:
		s.pass = core.LinearToDB(cmplx.Abs(fir.Response(p.IQ.I, center, iqRate(p))))
	}

	if len(p.Decimator) > 0 {
		fold := p.DecimatedRate(filterpath.SampleRate) - float64(p.High)
		s.alias = core.LinearToDB(cmplx.Abs(fir.Response(p.Decimator, fold, filterpath.SampleRate)))
	}

	return s
}

// responseGrid samples the pair from -2·High to +2·High.
func responseGrid(p filterpath.Path, points int) []responsePoint {
	span := 2 * float64(p.High)
	out := make([]responsePoint, points)

	for k := range out {
		f := -span + 2*span*float64(k)/float64(points-1)
		up, low := sidebandGains(p, f)
		if !quadrature(p) {
			g := cmplx.Abs(fir.Response(p.IQ.I, f, iqRate(p)))
			up, low = g, g
		}

		out[k] = responsePoint{freq: f, upper: core.LinearToDB(up), lower: core.LinearToDB(low)}
	}

	return out
}
