package rx

import (
	"slices"

	"github.com/cwbudde/algo-sdr/rx/demod"
)

// DecoderRate is the audio rate fed to attached decoders.
const DecoderRate = 12000.0

// Decoder consumes demodulated audio one sample at a time. It runs inside
// Process and must not block.
type Decoder interface {
	ProcessSample(x float64)
}

// DecoderFunc adapts a function to the Decoder interface.
type DecoderFunc func(x float64)

// ProcessSample implements Decoder.
func (f DecoderFunc) ProcessSample(x float64) { f(x) }

type decoderTap struct {
	id    uint64
	modes demod.ModeMask
	dec   Decoder
}

// AttachDecoder feeds d with 12 ksps audio after the first equaliser stage
// while the active mode is in modes. Paths that do not run at DecoderRate
// feed nothing. The returned function detaches d.
func (p *Pipeline) AttachDecoder(modes demod.ModeMask, d Decoder) (detach func()) {
	p.decMu.Lock()
	defer p.decMu.Unlock()

	p.decID++
	id := p.decID

	taps := append(slices.Clone(p.loadDecoders()), decoderTap{id: id, modes: modes, dec: d})
	p.decoders.Store(&taps)

	return func() {
		p.decMu.Lock()
		defer p.decMu.Unlock()

		taps := slices.DeleteFunc(slices.Clone(p.loadDecoders()), func(t decoderTap) bool { return t.id == id })
		p.decoders.Store(&taps)
	}
}

func (p *Pipeline) loadDecoders() []decoderTap {
	if taps := p.decoders.Load(); taps != nil {
		return *taps
	}

	return nil
}

func (p *Pipeline) feedDecoders(mode demod.Mode, buf []float64) {
	for _, t := range p.loadDecoders() {
		if !t.modes.Has(mode) {
			continue
		}

		for _, x := range buf {
			t.dec.ProcessSample(x)
		}
	}
}
