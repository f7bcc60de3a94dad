package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/pflag"
	"hz.tools/rf"

	"github.com/cwbudde/algo-sdr/dsp/dither"
	"github.com/cwbudde/algo-sdr/rx"
	"github.com/cwbudde/algo-sdr/rx/agc"
	"github.com/cwbudde/algo-sdr/rx/demod"
	"github.com/cwbudde/algo-sdr/rx/filterpath"
)

type config struct {
	mode     string
	filter   string
	profile  string
	scenario string
	in       string
	out      string
	logLevel string

	duration float64
	offset   string
	tone     string
	ifShift  string
	level    float64
	noise    float64

	agc       string
	nr        string
	notch     bool
	sideband  string
	squelch   int
	blockSize int
	spectrum  int

	dither string
	bits   int
	seed   uint64

	listFilters bool
	showCPU     bool
}

func parseFlags(args []string, stderr io.Writer) (*config, *pflag.FlagSet, error) {
	cfg := &config{}

	fs := pflag.NewFlagSet("rxsim", pflag.ContinueOnError)
	fs.SetOutput(stderr)

	fs.StringVarP(&cfg.mode, "mode", "m", "USB", "demodulation mode: LSB, USB, CW, AM, SAM, FM, IQ or STEREO")
	fs.StringVarP(&cfg.filter, "filter", "f", "", `filter path name or ID, e.g. "SSB 2.7kHz"`)
	fs.StringVarP(&cfg.profile, "profile", "p", "", "YAML settings profile")
	fs.StringVarP(&cfg.scenario, "scenario", "s", "usb", "synthesized signal: "+strings.Join(scenarioNames(), ", "))
	fs.StringVarP(&cfg.in, "in", "i", "", "stereo I/Q WAV input in place of a scenario")
	fs.StringVarP(&cfg.out, "out", "o", "rx.wav", "output WAV file")
	fs.StringVar(&cfg.logLevel, "log-level", "info", "log level: debug, info, warn or error")

	fs.Float64VarP(&cfg.duration, "duration", "d", 2, "scenario length in seconds")
	fs.StringVar(&cfg.offset, "offset", "0", "scenario carrier offset from the tuned frequency, e.g. -1.5KHz")
	fs.StringVar(&cfg.tone, "tone", "1000", "scenario modulation tone")
	fs.StringVar(&cfg.ifShift, "if-shift", "0", "IF shift applied before the filters")
	fs.Float64Var(&cfg.level, "level", 0.2, "scenario signal amplitude")
	fs.Float64Var(&cfg.noise, "noise", 0.001, "scenario noise standard deviation")

	fs.StringVar(&cfg.agc, "agc", "", "AGC mode: off, slow, medium, fast or custom")
	fs.StringVar(&cfg.nr, "nr", "", "noise reduction strategy, off to disable")
	fs.BoolVar(&cfg.notch, "notch", false, "enable the automatic notch")
	fs.StringVar(&cfg.sideband, "sideband", "", "SAM sideband: both, lsb, usb or stereo")
	fs.IntVar(&cfg.squelch, "squelch", 0, "FM squelch threshold")
	fs.IntVar(&cfg.blockSize, "block", 32, "I/Q frames per block")
	fs.IntVar(&cfg.spectrum, "spectrum", 0, "report the strongest I/Q tap bin of an FFT of this size")

	fs.StringVar(&cfg.dither, "dither", "tpdf", "output dither: none, rpdf or tpdf")
	fs.IntVar(&cfg.bits, "bits", 16, "output bit depth")
	fs.Uint64Var(&cfg.seed, "seed", 1, "seed of the scenario noise and the dither")

	fs.BoolVar(&cfg.listFilters, "list-filters", false, "list the filter paths of --mode and exit")
	fs.BoolVar(&cfg.showCPU, "cpu", false, "report the host SIMD extensions")

	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: rxsim [flags]\n\n")
		fmt.Fprintf(stderr, "Runs the receive chain over synthesized or recorded I/Q.\n\n")
		fmt.Fprintf(stderr, "Flags:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}

	if fs.NArg() > 0 {
		return nil, nil, fmt.Errorf("unexpected arguments: %v", fs.Args())
	}

	return cfg, fs, nil
}

func newLogger(w io.Writer, level string) (*log.Logger, error) {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}

	return log.NewWithOptions(w, log.Options{
		Prefix:          "rxsim",
		ReportTimestamp: true,
		Level:           lvl,
	}), nil
}

// settings builds the receiver settings: defaults, then the profile, then
// every flag set on the command line.
func (c *config) settings(fs *pflag.FlagSet, store *filterpath.Store) (rx.Settings, error) {
	s := rx.DefaultSettings()

	if c.profile != "" {
		f, err := os.Open(c.profile)
		if err != nil {
			return s, err
		}
		defer f.Close()

		if err := loadProfile(f, &s); err != nil {
			return s, fmt.Errorf("%s: %w", c.profile, err)
		}
	}

	if fs.Changed("mode") || c.profile == "" {
		m, err := demod.ParseMode(c.mode)
		if err != nil {
			return s, err
		}

		s.Mode = m
	}

	if c.filter != "" {
		id, err := filterID(store, c.filter)
		if err != nil {
			return s, err
		}

		s.FilterID = id
	}

	if fs.Changed("if-shift") {
		hz, err := parseHz(c.ifShift)
		if err != nil {
			return s, fmt.Errorf("if-shift: %w", err)
		}

		s.IFShift = hz
	}

	if c.agc != "" {
		m, err := agc.ParseMode(c.agc)
		if err != nil {
			return s, err
		}

		s.AGC.Mode = m
	}

	if c.nr != "" {
		s.NR.Strategy = c.nr
	}

	if fs.Changed("notch") {
		s.AutoNotch = c.notch
	}

	if c.sideband != "" {
		sb, err := demod.ParseSideband(c.sideband)
		if err != nil {
			return s, err
		}

		s.Sideband = sb
	}

	if fs.Changed("squelch") {
		s.FM.Squelch = c.squelch
	}

	return s, nil
}

func (c *config) quantizer() (*dither.Quantizer, error) {
	t, err := dither.ParseType(c.dither)
	if err != nil {
		return nil, err
	}

	return dither.NewQuantizer(dither.WithType(t), dither.WithBitDepth(c.bits), dither.WithSeed(c.seed))
}

// parseHz accepts a bare number of Hz or a unit suffix such as "2.5KHz".
func parseHz(s string) (rf.Hz, error) {
	if v, err := strconv.ParseFloat(s, 64); err == nil {
		return rf.Hz(v), nil
	}

	return rf.ParseHz(s)
}

// filterID resolves a path name or a numeric ID.
func filterID(store *filterpath.Store, name string) (int, error) {
	if p, ok := store.Lookup(name); ok {
		return p.ID, nil
	}

	id, err := strconv.Atoi(name)
	if err != nil {
		return 0, fmt.Errorf("unknown filter path %q", name)
	}

	if _, ok := store.Path(id); !ok {
		return 0, fmt.Errorf("unknown filter path ID %d", id)
	}

	return id, nil
}
