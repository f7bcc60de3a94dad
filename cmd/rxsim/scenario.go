package main

import (
	"fmt"
	"slices"

	"hz.tools/rf"

	"github.com/cwbudde/algo-sdr/dsp/core"
	"github.com/cwbudde/algo-sdr/dsp/signal"
)

const (
	// keyRate is the on/off rate of the cw scenario in Hz.
	keyRate = 5.0
	amDepth = 0.5
)

type params struct {
	offset    float64
	tone      float64
	level     float64
	noise     float64
	deviation float64
	seed      uint64
}

type scenario func(g *signal.Generator, p params, frames int) ([]complex128, error)

var scenarios = map[string]scenario{
	"carrier": func(g *signal.Generator, p params, frames int) ([]complex128, error) {
		return g.Tone(p.offset, p.level, frames)
	},
	"am": func(g *signal.Generator, p params, frames int) ([]complex128, error) {
		return g.AM(p.offset, p.tone, amDepth, p.level, frames)
	},
	"usb": func(g *signal.Generator, p params, frames int) ([]complex128, error) {
		return g.Tone(p.offset+p.tone, p.level, frames)
	},
	"lsb": func(g *signal.Generator, p params, frames int) ([]complex128, error) {
		return g.Tone(p.offset-p.tone, p.level, frames)
	},
	"cw": func(g *signal.Generator, p params, frames int) ([]complex128, error) {
		x, err := g.Tone(p.offset+p.tone, p.level, frames)
		if err != nil {
			return nil, err
		}

		return x, g.Key(x, keyRate)
	},
	"fm": func(g *signal.Generator, p params, frames int) ([]complex128, error) {
		return g.FM(p.offset, p.tone, p.deviation, p.level, frames)
	},
	"noise": func(g *signal.Generator, p params, frames int) ([]complex128, error) {
		return g.Tone(0, 0, frames)
	},
}

func scenarioNames() []string {
	names := make([]string, 0, len(scenarios))
	for name := range scenarios {
		names = append(names, name)
	}

	slices.Sort(names)

	return names
}

// synthesize renders frames of interleaved I/Q at sampleRate. The noise is
// seeded from p so that runs are repeatable.
func synthesize(name string, p params, sampleRate float64, frames int) ([]float32, error) {
	gen, ok := scenarios[name]
	if !ok {
		return nil, fmt.Errorf("unknown scenario %q", name)
	}

	g := signal.NewGeneratorWithOptions([]core.ProcessorOption{core.WithSampleRate(sampleRate)}, signal.WithSeed(p.seed))

	x, err := gen(g, p, frames)
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", name, err)
	}

	if err := g.AddNoise(x, p.noise); err != nil {
		return nil, fmt.Errorf("scenario %s: %w", name, err)
	}

	return signal.Interleave(make([]float32, 2*frames), x), nil
}

func newParams(cfg *config, deviation rf.Hz) (params, error) {
	offset, err := parseHz(cfg.offset)
	if err != nil {
		return params{}, fmt.Errorf("offset: %w", err)
	}

	tone, err := parseHz(cfg.tone)
	if err != nil {
		return params{}, fmt.Errorf("tone: %w", err)
	}

	return params{
		offset:    float64(offset),
		tone:      float64(tone),
		level:     cfg.level,
		noise:     cfg.noise,
		deviation: float64(deviation),
		seed:      cfg.seed,
	}, nil
}
