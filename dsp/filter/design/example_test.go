package design_test

import (
	"fmt"

	"github.com/cwbudde/algo-sdr/dsp/filter/biquad"
	"github.com/cwbudde/algo-sdr/dsp/filter/design"
	"github.com/cwbudde/algo-sdr/dsp/filter/lattice"
)

// A 150 Hz to 2.85 kHz sideband pre-filter at the 12 ksps decimated rate,
// converted to the lattice form the receive path runs.
func ExampleButterworthLP() {
	const fs = 12000.0

	sections := design.ButterworthLP(2850, 4, fs)
	sections = append(sections, design.ButterworthHP(150, 2, fs)...)

	k, _, err := lattice.FromBiquads(sections)
	if err != nil {
		panic(err)
	}

	chain := biquad.NewChain(sections)

	fmt.Printf("lattice stages: %d\n", len(k))

	for _, f := range []float64{150, 1000, 2850, 5000} {
		fmt.Printf("%4.0f Hz: %.1f dB\n", f, chain.MagnitudeDB(f, fs))
	}
	// Output:
	// lattice stages: 6
	//  150 Hz: -3.0 dB
	// 1000 Hz: -0.0 dB
	// 2850 Hz: -3.0 dB
	// 5000 Hz: -48.5 dB
}
