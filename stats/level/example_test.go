package level_test

import (
	"fmt"

	"github.com/cwbudde/algo-sdr/stats/level"
)

func ExampleMeter() {
	m, err := level.NewMeter(2)
	if err != nil {
		panic(err)
	}

	m.Update([]float32{0.5, 0.1, -0.5, -0.1})

	for c := range m.Channels() {
		s := m.Channel(c)
		fmt.Printf("ch%d rms=%.1f dBFS crest=%.1f dB\n", c, s.RMS_dB, s.Crest_dB)
	}
	// Output:
	// ch0 rms=-6.0 dBFS crest=0.0 dB
	// ch1 rms=-20.0 dBFS crest=0.0 dB
}
