package rx_test

import (
	"fmt"

	"github.com/cwbudde/algo-sdr/rx"
	"github.com/cwbudde/algo-sdr/rx/demod"
	"github.com/cwbudde/algo-sdr/rx/filterpath"
)

func ExamplePipeline() {
	store, err := filterpath.DefaultStore(32)
	if err != nil {
		panic(err)
	}

	p, err := rx.New(store)
	if err != nil {
		panic(err)
	}
	defer p.Close()

	s := p.Settings()
	s.Mode = demod.ModeLSB

	if err := p.Apply(s); err != nil {
		panic(err)
	}

	in := make([]float32, 2*320+7)
	out := make([]float32, len(in))

	frames := p.Process(in, out)
	tel := p.Telemetry()
	path, _ := store.Path(tel.PathID)

	fmt.Println(frames, tel.Blocks, path.Name)
	fmt.Println(tel.Muted)

	// Output:
	// 320 10 SSB 2.7kHz
	// true
}
