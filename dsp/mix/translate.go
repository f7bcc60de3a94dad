package mix

// Translator multiplies an I/Q stream by exp(j*2*pi*f*n/fs). A signal at
// +f' ends up at f'+f, so a shift of -6 kHz brings a +6 kHz IF to baseband.
type Translator struct {
	nco *NCO
}

// NewTranslator creates a translator shifting by shiftHz.
func NewTranslator(shiftHz, sampleRate float64) (*Translator, error) {
	nco, err := NewNCO(shiftHz, sampleRate)
	if err != nil {
		return nil, err
	}

	return &Translator{nco: nco}, nil
}

// SetShift changes the shift frequency. The oscillator phase is kept.
func (t *Translator) SetShift(shiftHz float64) error {
	return t.nco.SetFrequency(shiftHz)
}

// Shift returns the shift frequency in Hz.
func (t *Translator) Shift() float64 { return t.nco.Frequency() }

// Process rotates i and q in place. A zero shift leaves the samples
// untouched.
func (t *Translator) Process(i, q []float64) {
	if t.nco.Frequency() == 0 {
		return
	}

	n := min(len(i), len(q))
	for k := range n {
		s, c := t.nco.Next()
		x, y := i[k], q[k]
		i[k] = x*c - y*s
		q[k] = x*s + y*c
	}
}

// Reset sets the oscillator phase to zero.
func (t *Translator) Reset() { t.nco.Reset() }
