package rx

import (
	"context"
	"io"

	"github.com/charmbracelet/log"

	"github.com/cwbudde/algo-sdr/dsp/core"
	"github.com/cwbudde/algo-sdr/rx/nr"
)

// Option configures a Pipeline at construction.
type Option func(*options)

type options struct {
	proc     []core.ProcessorOption
	logger   *log.Logger
	registry *nr.Registry
	tap      []float32
	nrCtx    context.Context
	settings *Settings
}

// WithSampleRate sets the I/Q input rate. The filter tables of the default
// store are designed for 48 kHz.
func WithSampleRate(sampleRate float64) Option {
	return func(o *options) { o.proc = append(o.proc, core.WithSampleRate(sampleRate)) }
}

// WithBlockSize sets the number of I/Q frames per block.
func WithBlockSize(blockSize int) Option {
	return func(o *options) { o.proc = append(o.proc, core.WithBlockSize(blockSize)) }
}

// WithLogger sets the logger used for reconfiguration and state changes.
// Nothing is logged per block.
func WithLogger(l *log.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithNRRegistry replaces the noise reduction strategy registry.
func WithNRRegistry(r *nr.Registry) Option {
	return func(o *options) {
		if r != nil {
			o.registry = r
		}
	}
}

// WithSpectrumTap makes the pipeline write I/Q pairs into buf, Q first.
// The buffer is owned by the caller and read with [scope.Analyzer].
func WithSpectrumTap(buf []float32) Option {
	return func(o *options) { o.tap = buf }
}

// WithAsyncNR runs the spectral noise reduction engine on its own
// goroutine until ctx is done or the pipeline is closed.
func WithAsyncNR(ctx context.Context) Option {
	return func(o *options) { o.nrCtx = ctx }
}

// WithSettings sets the initial settings in place of DefaultSettings.
func WithSettings(s Settings) Option {
	return func(o *options) { o.settings = &s }
}

func applyOptions(opts []Option) options {
	o := options{
		logger:   log.New(io.Discard),
		registry: nr.DefaultRegistry(),
	}

	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}

	return o
}
