package dither_test

import (
	"fmt"

	"github.com/cwbudde/algo-sdr/dsp/dither"
)

func ExampleQuantizer() {
	q, err := dither.NewQuantizer(dither.WithBitDepth(8), dither.WithType(dither.None))
	if err != nil {
		panic(err)
	}

	fmt.Println(q.QuantizeBlock(nil, []float32{0, 0.5, -1, 2}), q.Clipped())
	// Output:
	// [0 64 -127 127] 1
}
