package main

import (
	"fmt"
	"io"
	"math"
	"os"
	"text/tabwriter"

	"github.com/charmbracelet/log"
	"github.com/spf13/pflag"

	"github.com/cwbudde/algo-sdr/dsp/core"
	"github.com/cwbudde/algo-sdr/dsp/dither"
	"github.com/cwbudde/algo-sdr/dsp/resample"
	"github.com/cwbudde/algo-sdr/internal/cpu"
	"github.com/cwbudde/algo-sdr/measure/sinad"
	"github.com/cwbudde/algo-sdr/rx"
	"github.com/cwbudde/algo-sdr/rx/demod"
	"github.com/cwbudde/algo-sdr/rx/filterpath"
	"github.com/cwbudde/algo-sdr/rx/scope"
	"github.com/cwbudde/algo-sdr/stats/level"
)

const (
	defaultSampleRate = 48000.0

	toneBandLow  = 200.0
	toneBandHigh = 4000.0
)

// meter is an rx.Decoder measuring the 12 ksps decoder feed.
type meter struct {
	samples int
	energy  float64
}

func (m *meter) ProcessSample(x float64) {
	m.samples++
	m.energy += x * x
}

func (m *meter) rmsDB() float64 {
	if m.samples == 0 {
		return math.Inf(-1)
	}

	return core.LinearToDB(math.Sqrt(m.energy / float64(m.samples)))
}

type simulation struct {
	cfg      *config
	log      *log.Logger
	store    *filterpath.Store
	settings rx.Settings

	iq         []float32
	sampleRate float64
	audio      []float32

	pipe     *rx.Pipeline
	tap      []float32
	meter    meter
	detach   func()
	analyzer *scope.Analyzer

	quant  *dither.Quantizer
	levels *level.Meter
}

func newSimulation(cfg *config, fs *pflag.FlagSet, logger *log.Logger) (*simulation, error) {
	store, err := filterpath.DefaultStore(cfg.blockSize)
	if err != nil {
		return nil, err
	}

	s, err := cfg.settings(fs, store)
	if err != nil {
		return nil, err
	}

	return &simulation{cfg: cfg, log: logger, store: store, settings: s}, nil
}

func (sim *simulation) listFilters(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "ID\tName\tLow\tHigh\tRate\n")

	for _, p := range sim.store.Applicable(sim.settings.Mode) {
		fmt.Fprintf(tw, "%d\t%s\t%.0f\t%.0f\t%.0f\n", p.ID, p.Name, float64(p.Low), float64(p.High),
			p.DecimatedRate(defaultSampleRate))
	}

	return tw.Flush()
}

func (sim *simulation) load() error {
	if sim.cfg.in == "" {
		sig, err := newParams(sim.cfg, sim.settings.FM.Deviation)
		if err != nil {
			return err
		}

		frames := int(sim.cfg.duration * defaultSampleRate)
		if frames <= 0 {
			return fmt.Errorf("duration %gs is too short", sim.cfg.duration)
		}

		sim.sampleRate = defaultSampleRate
		sim.iq, err = synthesize(sim.cfg.scenario, sig, sim.sampleRate, frames)

		return err
	}

	f, err := os.Open(sim.cfg.in)
	if err != nil {
		return err
	}
	defer f.Close()

	iq, rate, err := readIQ(f)
	if err != nil {
		return fmt.Errorf("%s: %w", sim.cfg.in, err)
	}

	sim.sampleRate = defaultSampleRate
	sim.iq, err = sim.convertRate(iq, rate)

	return err
}

// convertRate resamples a recording to the rate the filter tables are
// designed for.
func (sim *simulation) convertRate(iq []float32, rate float64) ([]float32, error) {
	if rate == defaultSampleRate {
		return iq, nil
	}

	r, err := resample.NewForRates(rate, defaultSampleRate, resample.WithQuality(resample.QualityBest))
	if err != nil {
		return nil, err
	}

	up, down := r.Ratio()
	sim.log.Info("resampling input", "rate", rate, "up", up, "down", down)

	return r.Process(make([]float32, 0, 2*r.OutputFrames(len(iq)/2)), iq), nil
}

func (sim *simulation) run() error {
	q, err := sim.cfg.quantizer()
	if err != nil {
		return err
	}

	sim.quant = q

	if err := sim.load(); err != nil {
		return err
	}

	opts := []rx.Option{
		rx.WithSampleRate(sim.sampleRate),
		rx.WithBlockSize(sim.cfg.blockSize),
		rx.WithLogger(sim.log),
		rx.WithSettings(sim.settings),
	}

	if sim.cfg.spectrum > 0 {
		a, err := scope.NewAnalyzer(sim.cfg.spectrum, scope.WithSmoothing(0))
		if err != nil {
			return err
		}

		sim.analyzer = a
		sim.tap = make([]float32, 2*sim.cfg.spectrum)
		opts = append(opts, rx.WithSpectrumTap(sim.tap))
	}

	p, err := rx.New(sim.store, opts...)
	if err != nil {
		return err
	}

	sim.pipe = p
	sim.detach = p.AttachDecoder(demod.AllModes, &sim.meter)

	sim.audio = make([]float32, len(sim.iq))
	frames := p.Process(sim.iq, sim.audio)
	sim.audio = sim.audio[:2*frames]

	sim.log.Info("processed", "frames", frames, "seconds", float64(frames)/sim.sampleRate)

	if sim.levels, err = level.NewMeter(filterpath.Channels); err != nil {
		return err
	}

	sim.levels.Update(sim.audio)

	out, err := os.Create(sim.cfg.out)
	if err != nil {
		return err
	}

	if err := writeWAV(out, sim.audio, int(sim.sampleRate), filterpath.Channels, sim.quant); err != nil {
		out.Close()
		return fmt.Errorf("%s: %w", sim.cfg.out, err)
	}

	if n := sim.quant.Clipped(); n > 0 {
		sim.log.Warn("output clipped", "samples", n, "bits", sim.quant.BitDepth())
	}

	return out.Close()
}

// toneScenario reports whether the synthesized input carries a
// modulation tone worth a SINAD measurement.
func (sim *simulation) toneScenario() bool {
	if sim.cfg.in != "" {
		return false
	}

	switch sim.cfg.scenario {
	case "carrier", "noise":
		return false
	default:
		return true
	}
}

// measureTone runs a SINAD measurement over the settled second half of
// the left channel.
func (sim *simulation) measureTone() (sinad.Result, error) {
	frames := len(sim.audio) / 2
	left := make([]float64, 0, frames-frames/2)

	for f := frames / 2; f < frames; f++ {
		left = append(left, float64(sim.audio[2*f]))
	}

	return sinad.Measure(left, sim.sampleRate, sinad.WithBand(toneBandLow, toneBandHigh))
}

func (sim *simulation) report(w io.Writer) error {
	tel := sim.pipe.Telemetry()
	path, _ := sim.store.Path(tel.PathID)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Output:\t%s\n", sim.cfg.out)
	fmt.Fprintf(tw, "Mode:\t%s\n", sim.settings.Mode)
	fmt.Fprintf(tw, "Filter:\t%s\n", path)
	fmt.Fprintf(tw, "Blocks:\t%d\n", tel.Blocks)

	for c, name := range []string{"Left", "Right"} {
		st := sim.levels.Channel(c)
		fmt.Fprintf(tw, "%s level:\t%.1f dBFS RMS, %.1f dBFS peak, crest %.1f dB\n", name, st.RMS_dB, st.Peak_dB, st.Crest_dB)
	}

	fmt.Fprintf(tw, "Output format:\t%d bit, %s dither\n", sim.quant.BitDepth(), sim.quant.Type())
	fmt.Fprintf(tw, "Input clip:\t%s (%d full-scale blocks)\n", tel.Clip, tel.FullScaleBlocks)
	fmt.Fprintf(tw, "AGC gain:\t%.1f dB\n", tel.AGCGainDB)
	fmt.Fprintf(tw, "IQ state:\t%s (mc1 %.4f, mc2 %.4f)\n", tel.TwinPeaks, tel.MC1, tel.MC2)

	switch sim.settings.Mode {
	case demod.ModeSAM:
		fmt.Fprintf(tw, "Carrier offset:\t%.1f Hz\n", tel.CarrierOffset)
	case demod.ModeFM:
		fmt.Fprintf(tw, "Squelched:\t%t\n", tel.Squelched)
	}

	if sim.toneScenario() {
		res, err := sim.measureTone()
		if err != nil {
			sim.log.Debug("no SINAD measurement", "err", err)
		} else {
			fmt.Fprintf(tw, "SINAD:\t%.1f dB at %.1f Hz (THD %.1f dB)\n", res.SINAD, res.Tone, res.THD)
		}
	}

	if sim.meter.samples > 0 {
		fmt.Fprintf(tw, "Decoder feed:\t%d samples at %.1f dBFS\n", sim.meter.samples, sim.meter.rmsDB())
	}

	if tel.NRUnderruns > 0 {
		fmt.Fprintf(tw, "NR underruns:\t%d\n", tel.NRUnderruns)
	}

	if sim.analyzer != nil {
		if _, err := sim.analyzer.Update(sim.tap, sim.pipe.TapCursor()); err != nil {
			return err
		}

		bin, db := sim.analyzer.Peak()
		fmt.Fprintf(tw, "Spectrum peak:\t%.1f Hz at %.1f dB\n", sim.analyzer.BinFrequency(bin, sim.sampleRate), db)
	}

	if sim.cfg.showCPU {
		fmt.Fprintf(tw, "CPU:\t%s\n", cpu.Detect())
	}

	return tw.Flush()
}

func (sim *simulation) close() {
	if sim.detach != nil {
		sim.detach()
	}

	if sim.pipe != nil {
		sim.pipe.Close()
	}
}
