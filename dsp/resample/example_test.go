package resample_test

import (
	"fmt"

	"github.com/cwbudde/algo-sdr/dsp/resample"
)

func ExampleNewForRates() {
	r, err := resample.NewForRates(44100, 48000, resample.WithQuality(resample.QualityBest))
	if err != nil {
		panic(err)
	}

	up, down := r.Ratio()
	fmt.Printf("ratio=%d/%d frames=%d\n", up, down, r.OutputFrames(4410))
	// Output:
	// ratio=160/147 frames=4800
}
