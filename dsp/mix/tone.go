package mix

// Tone is a sine generator mixed additively into audio blocks.
type Tone struct {
	nco  *NCO
	gain float64
}

// NewTone creates a tone at freqHz with peak amplitude gain.
func NewTone(freqHz, gain, sampleRate float64) (*Tone, error) {
	nco, err := NewNCO(freqHz, sampleRate)
	if err != nil {
		return nil, err
	}

	return &Tone{nco: nco, gain: gain}, nil
}

// SetGain sets the peak amplitude.
func (t *Tone) SetGain(g float64) { t.gain = g }

// Gain returns the peak amplitude.
func (t *Tone) Gain() float64 { return t.gain }

// SetFrequency changes the tone frequency.
func (t *Tone) SetFrequency(freqHz float64) error { return t.nco.SetFrequency(freqHz) }

// MixInto adds the tone to every buffer; all buffers receive the same
// samples.
func (t *Tone) MixInto(bufs ...[]float64) {
	if len(bufs) == 0 {
		return
	}

	n := len(bufs[0])
	for _, b := range bufs[1:] {
		n = min(n, len(b))
	}

	for k := range n {
		s, _ := t.nco.Next()
		v := t.gain * s

		for _, b := range bufs {
			b[k] += v
		}
	}
}

// Reset sets the oscillator phase to zero.
func (t *Tone) Reset() { t.nco.Reset() }
