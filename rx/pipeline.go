package rx

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"sync/atomic"

	"github.com/charmbracelet/log"
	"github.com/cwbudde/algo-vecmath"

	"github.com/cwbudde/algo-sdr/dsp/core"
	"github.com/cwbudde/algo-sdr/dsp/filter/biquad"
	"github.com/cwbudde/algo-sdr/dsp/filter/fir"
	"github.com/cwbudde/algo-sdr/dsp/mix"
	"github.com/cwbudde/algo-sdr/rx/agc"
	"github.com/cwbudde/algo-sdr/rx/demod"
	"github.com/cwbudde/algo-sdr/rx/filterpath"
	"github.com/cwbudde/algo-sdr/rx/iqcorr"
	"github.com/cwbudde/algo-sdr/rx/nr"
	"github.com/cwbudde/algo-sdr/rx/scope"
)

// ErrNoStore is returned by New without a filter store.
var ErrNoStore = errors.New("rx: nil filter store")

// Audio gain after the AGC. AM and SAM carry twice the level of the
// sideband modes at the AGC output.
const (
	postAGCGain = 2.0
	amScale     = 0.5
	ssbScale    = 0.333
)

// reconfigureMute is the output silence in seconds after a mode or path
// change while the filters settle.
const reconfigureMute = 0.02

// Pipeline is the receive chain. Process must be called from one
// goroutine; the remaining methods are safe for concurrent use unless
// noted.
type Pipeline struct {
	cfg      core.ProcessorConfig
	store    *filterpath.Store
	log      *log.Logger
	registry *nr.Registry
	nrCtx    context.Context

	pending atomic.Pointer[Settings]

	// Owned by the processing goroutine.
	active    *Settings
	path      filterpath.Path
	fsDec     float64
	decIQ     bool
	stereo    bool
	notchOn   bool
	postScale float64
	fmGain    float64

	bank  *filterpath.Bank
	iq    *iqcorr.Corrector
	twin  *iqcorr.TwinPeaks
	shift *mix.Translator
	tap   *scope.Tap
	zoom  *scope.Zoom

	am  *demod.AM
	sam *demod.SAM
	fm  *demod.FM

	notch    *nr.LMS
	nr       nr.Strategy
	nrKey    nrKey
	nrCancel context.CancelFunc

	agc      *agc.AGC
	eq1      [filterpath.Channels]*biquad.Chain
	eq2      [filterpath.Channels]*biquad.Chain
	eqCoeffs []biquad.Coefficients
	beep     *mix.Tone

	i, q  []float64
	audio [filterpath.Channels][]float64
	dec   [filterpath.Channels][]float64
	chBuf [filterpath.Channels][]float64

	muteBlocks int
	muteCount  int

	twinState    iqcorr.State
	underruns    uint64
	underrunLog  uint64
	blocksPerSec uint64

	ackRestart atomic.Bool
	retest     atomic.Bool

	decMu    sync.Mutex
	decID    uint64
	decoders atomic.Pointer[[]decoderTap]

	tel telemetry
}

// New builds a pipeline around store. All buffers and filters are
// allocated here; the store's block size must match the pipeline's.
func New(store *filterpath.Store, opts ...Option) (*Pipeline, error) {
	if store == nil {
		return nil, ErrNoStore
	}

	o := applyOptions(opts)
	cfg := core.ApplyProcessorOptions(o.proc...)
	n, fs := cfg.BlockSize, cfg.SampleRate

	if store.BlockSize() != n {
		return nil, fmt.Errorf("rx: %w: store built for %d, pipeline uses %d", fir.ErrBlockSize, store.BlockSize(), n)
	}

	p := &Pipeline{
		cfg:          cfg,
		store:        store,
		log:          o.logger,
		registry:     o.registry,
		nrCtx:        o.nrCtx,
		twin:         iqcorr.NewTwinPeaks(),
		am:           demod.NewAM(fs),
		i:            make([]float64, n),
		q:            make([]float64, n),
		eqCoeffs:     make([]biquad.Coefficients, 4),
		muteBlocks:   int(math.Ceil(reconfigureMute * fs / float64(n))),
		blocksPerSec: uint64(math.Ceil(fs / float64(n))),
	}

	if err := p.build(o); err != nil {
		return nil, err
	}

	s := DefaultSettings()
	if o.settings != nil {
		s = *o.settings
	}

	if err := p.Apply(s); err != nil {
		return nil, err
	}

	return p, nil
}

func (p *Pipeline) build(o options) error {
	n, fs := p.cfg.BlockSize, p.cfg.SampleRate

	var err error

	if p.bank, err = filterpath.NewBank(n, p.store.Capacity()); err != nil {
		return err
	}

	p.iq = iqcorr.NewCorrector(iqcorr.DefaultSettings(), p.twin)

	if p.shift, err = mix.NewTranslator(0, fs); err != nil {
		return fmt.Errorf("rx: if shift: %w", err)
	}

	if o.tap != nil {
		if p.tap, err = scope.NewTap(o.tap); err != nil {
			return fmt.Errorf("rx: %w", err)
		}
	}

	if p.zoom, err = scope.NewZoom(0, fs, n); err != nil {
		return fmt.Errorf("rx: %w", err)
	}

	if p.sam, err = demod.NewSAM(demod.DefaultPLLConfig(), fs); err != nil {
		return fmt.Errorf("rx: %w", err)
	}

	if p.fm, err = demod.NewFM(fs, n); err != nil {
		return fmt.Errorf("rx: %w", err)
	}

	lms := nr.DefaultLMSConfig()
	lms.Notch = true

	if p.notch, err = nr.NewLMS(lms); err != nil {
		return fmt.Errorf("rx: notch: %w", err)
	}

	if p.agc, err = agc.New(agc.DefaultConfig(), fs); err != nil {
		return fmt.Errorf("rx: %w", err)
	}

	if p.beep, err = mix.NewTone(1000, 0, fs); err != nil {
		return fmt.Errorf("rx: beep: %w", err)
	}

	for ch := range filterpath.Channels {
		p.eq1[ch] = biquad.NewPassthroughChain(4)
		p.eq2[ch] = biquad.NewPassthroughChain(1)
		p.audio[ch] = make([]float64, n)
		p.dec[ch] = make([]float64, n)
	}

	return nil
}

// SampleRate returns the I/Q input rate.
func (p *Pipeline) SampleRate() float64 { return p.cfg.SampleRate }

// BlockSize returns the number of frames per block.
func (p *Pipeline) BlockSize() int { return p.cfg.BlockSize }

// Store returns the filter path store.
func (p *Pipeline) Store() *filterpath.Store { return p.store }

// Apply validates s and publishes it. The processing goroutine picks it up
// at the start of the next block.
func (p *Pipeline) Apply(s Settings) error {
	if err := s.Validate(p.cfg.SampleRate, p.cfg.BlockSize); err != nil {
		return err
	}

	if s.NR.Enabled() {
		if _, ok := p.registry.Lookup(s.NR.Strategy); !ok {
			return fmt.Errorf("%w: %w: %q", ErrInvalidSettings, nr.ErrUnknownStrategy, s.NR.Strategy)
		}
	}

	if _, err := p.store.Select(s.Mode, s.FilterID); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidSettings, err)
	}

	p.pending.Store(&s)

	return nil
}

// Settings returns the most recently applied settings.
func (p *Pipeline) Settings() Settings { return *p.pending.Load() }

// Telemetry returns a snapshot of the pipeline state.
func (p *Pipeline) Telemetry() Telemetry { return p.tel.snapshot() }

// AcknowledgeRestart tells the IQ fault detector that the requested codec
// restart happened. It takes effect at the next block.
func (p *Pipeline) AcknowledgeRestart() { p.ackRestart.Store(true) }

// RetestIQ restarts the IQ fault detector, clearing a terminal
// uncorrectable state. It takes effect at the next block.
func (p *Pipeline) RetestIQ() { p.retest.Store(true) }

// TapCursor returns the next write position in the spectrum tap buffer, or
// -1 without a tap. Call it from the processing goroutine.
func (p *Pipeline) TapCursor() int {
	if p.tap == nil {
		return -1
	}

	return p.tap.Cursor()
}

// Close stops background noise reduction. Call it after the last Process.
func (p *Pipeline) Close() { p.stopNR() }

// Process runs whole blocks of interleaved I/Q from in and writes
// interleaved left/right audio to out. It returns the number of frames
// processed; trailing partial blocks are left untouched.
func (p *Pipeline) Process(in, out []float32) int {
	step := 2 * p.cfg.BlockSize
	frames := 0

	for len(in) >= step && len(out) >= step {
		p.processBlock(in[:step], out[:step])
		in, out = in[step:], out[step:]
		frames += p.cfg.BlockSize
	}

	return frames
}

func (p *Pipeline) processBlock(in, out []float32) {
	if s := p.pending.Load(); s != p.active {
		p.reconfigure(s)
	}

	p.supervise()

	s := p.active
	n := core.Deinterleave(p.i, p.q, in)
	i, q := p.i[:n], p.q[:n]

	clip := clipLevel(i)
	p.tel.clip.Store(int32(clip))

	if clip == ClipFull {
		p.tel.fullScale.Add(1)
	}

	p.iq.Process(i, q)
	p.observeIQ()

	if s.Zoom == 0 && p.tap != nil {
		p.tap.Write(i, q)
	}

	if s.IFShift != 0 {
		p.shift.Process(i, q)
	}

	if s.Zoom > 0 && p.tap != nil {
		p.tap.Write(p.zoom.Process(i, q))
	}

	m := n
	if p.decIQ {
		m = p.bank.Decimate(0, i, i)
		p.bank.Decimate(1, q, q)
		i, q = i[:m], q[:m]
	}

	p.bank.FilterIQ(i, q)

	// Decimated I/Q demodulates straight into the low-rate buffers.
	target := &p.audio
	if p.decIQ {
		target = &p.dec
	}

	signal := p.demodulate(s.Mode, i, q, target[0][:m], target[1][:m])

	channels := 1
	if p.stereo {
		channels = 2
	}

	if s.Mode == demod.ModeFM {
		vecmath.ScaleBlock(p.audio[0][:n], p.audio[0][:n], p.fmGain)
		p.agc.ProcessBlock(p.audio[0][:n])
	} else {
		p.processAudio(s, m, channels)
	}

	for ch := range channels {
		p.eq2[ch].ProcessBlock(p.audio[ch][:n])
	}

	muted := p.output(s, signal, n)
	core.Interleave(out, p.audio[0][:n], p.audio[1][:n])

	p.publish(s, signal, muted)
}

func (p *Pipeline) demodulate(mode demod.Mode, i, q, left, right []float64) bool {
	switch mode {
	case demod.ModeLSB:
		demod.SSB(i, q, left, false)
	case demod.ModeUSB, demod.ModeCW:
		demod.SSB(i, q, left, true)
	case demod.ModeAM:
		p.am.Process(i, q, left)
	case demod.ModeSAM:
		p.sam.Process(i, q, left, right)
	case demod.ModeFM:
		return p.fm.Process(i, q, left)
	case demod.ModeIQ:
		demod.IQ(i, q, left, right)
	case demod.ModeStereo:
		demod.Stereo(i, q, left, right)
	}

	return true
}

// processAudio runs the low-rate audio chain and leaves full-rate audio in
// p.audio. m is the demodulated length.
func (p *Pipeline) processAudio(s *Settings, m, channels int) {
	for ch := range channels {
		d := m
		if !p.decIQ {
			d = p.bank.Decimate(ch, p.dec[ch], p.audio[ch][:m])
		}

		p.chBuf[ch] = p.dec[ch][:d]
	}

	bufs := p.chBuf[:channels]
	mono := bufs[0]

	if p.notchOn {
		p.notch.ProcessBlock(mono)
	}

	if p.nr != nil && !s.NR.PostAGC {
		p.nr.ProcessBlock(mono)
	}

	for ch, b := range bufs {
		p.bank.PreFilter(ch, b)
	}

	p.agc.ProcessBlock(bufs...)

	if p.nr != nil && s.NR.PostAGC {
		p.nr.ProcessBlock(mono)
	}

	for ch, b := range bufs {
		vecmath.ScaleBlock(b, b, p.postScale)
		p.eq1[ch].ProcessBlock(b)
	}

	if p.fsDec == DecoderRate {
		p.feedDecoders(s.Mode, mono)
	}

	for ch, b := range bufs {
		k := p.bank.Interpolate(ch, p.audio[ch], b)
		p.bank.AntiAlias(ch, p.audio[ch][:k])
	}
}

// output applies muting, line-out scaling and the beep. It reports whether
// the block was muted.
func (p *Pipeline) output(s *Settings, signal bool, n int) bool {
	left, right := p.audio[0][:n], p.audio[1][:n]

	muted := s.Mute || p.muteCount > 0 || !signal
	if muted {
		clear(left)
		clear(right)

		if p.muteCount > 0 {
			p.muteCount--
		}

		return true
	}

	vecmath.ScaleBlock(left, left, s.LineOut)

	if p.stereo {
		vecmath.ScaleBlock(right, right, s.LineOut)
	} else {
		copy(right, left)
	}

	if s.Beep.Enabled {
		p.beep.MixInto(left, right)
	}

	return false
}

func (p *Pipeline) supervise() {
	if p.ackRestart.Swap(false) {
		p.twin.Acknowledge()
	}

	if p.retest.Swap(false) {
		p.twin.Retest()
		p.log.Info("iq twin peaks retest")
	}
}

func (p *Pipeline) observeIQ() {
	st := p.twin.State()
	if st == p.twinState {
		return
	}

	p.twinState = st
	p.tel.twin.Store(int32(st))

	switch st {
	case iqcorr.StateCodecRestart:
		p.log.Warn("iq twin peaks", "state", st, "restarts", p.twin.Restarts(), "phase", p.twin.PhaseError())
	case iqcorr.StateUncorrectable:
		p.log.Error("iq twin peaks", "state", st, "phase", p.twin.PhaseError())
	default:
		p.log.Debug("iq twin peaks", "state", st)
	}
}

func (p *Pipeline) publish(s *Settings, signal, muted bool) {
	t := &p.tel
	blocks := t.blocks.Add(1)

	fm := s.Mode == demod.ModeFM
	t.squelched.Store(fm && !signal)
	t.tone.Store(fm && p.fm.ToneDetected())
	t.muted.Store(muted)

	mc1, mc2 := p.iq.Coefficients()
	t.mc1.Store(mc1)
	t.mc2.Store(mc2)
	t.agcGainDB.Store(p.agc.GainDB())

	if s.Mode == demod.ModeSAM {
		t.carrier.Store(p.sam.CarrierOffset())
	} else {
		t.carrier.Store(0)
	}

	if sp := spectralOf(p.nr); sp != nil {
		u := sp.Underruns()
		t.nrUnderrun.Store(u)

		if u > p.underruns && blocks-p.underrunLog >= p.blocksPerSec {
			p.log.Warn("noise reduction underrun", "total", u, "new", u-p.underruns)
			p.underrunLog = blocks
		}

		p.underruns = u
	}
}
