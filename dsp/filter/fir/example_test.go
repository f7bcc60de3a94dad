package fir_test

import (
	"fmt"

	"github.com/cwbudde/algo-sdr/dsp/filter/fir"
)

func ExampleFilter_ProcessSample() {
	// 3-tap moving average filter.
	f := fir.New([]float64{1.0 / 3, 1.0 / 3, 1.0 / 3})

	input := []float64{0, 1, 2, 3, 3, 3}
	for i, x := range input {
		y := f.ProcessSample(x)
		fmt.Printf("y[%d] = %.4f\n", i, y)
	}
	// Output:
	// y[0] = 0.0000
	// y[1] = 0.3333
	// y[2] = 1.0000
	// y[3] = 2.0000
	// y[4] = 2.6667
	// y[5] = 3.0000
}

func ExampleDecimator_Process() {
	// Two-tap average, decimate by 2.
	d, err := fir.NewDecimator([]float64{0.5, 0.5}, 2, 4)
	if err != nil {
		panic(err)
	}

	out := make([]float64, 2)
	n := d.Process(out, []float64{1, 3, 5, 7})
	fmt.Println(out[:n])
	// Output:
	// [2 6]
}

func ExampleInterpolator_Process() {
	// Linear interpolation by 2: taps [0.5 1 0.5 0].
	ip, err := fir.NewInterpolator([]float64{0.5, 1, 0.5, 0}, 2, 3)
	if err != nil {
		panic(err)
	}

	out := make([]float64, 6)
	n := ip.Process(out, []float64{2, 4, 6})
	fmt.Println(out[:n])
	// Output:
	// [1 2 3 4 5 6]
}
