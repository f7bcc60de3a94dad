// Package core holds the numeric helpers and processor options shared by
// the dsp and rx packages.
package core

// ProcessorConfig holds the settings shared by every block processor.
type ProcessorConfig struct {
	// SampleRate is the I/Q input rate in Hz.
	SampleRate float64
	// BlockSize is the number of I/Q frames per Process call.
	BlockSize int
}

// ProcessorOption mutates a ProcessorConfig.
type ProcessorOption func(*ProcessorConfig)

// DefaultProcessorConfig is 48 kHz I/Q in blocks of 32 frames.
func DefaultProcessorConfig() ProcessorConfig {
	return ProcessorConfig{SampleRate: 48000, BlockSize: 32}
}

// WithSampleRate sets the sample rate. Non-positive rates are ignored.
func WithSampleRate(sampleRate float64) ProcessorOption {
	return func(cfg *ProcessorConfig) {
		if sampleRate > 0 {
			cfg.SampleRate = sampleRate
		}
	}
}

// WithBlockSize sets the block size. Non-positive sizes are ignored.
func WithBlockSize(blockSize int) ProcessorOption {
	return func(cfg *ProcessorConfig) {
		if blockSize > 0 {
			cfg.BlockSize = blockSize
		}
	}
}

// ApplyProcessorOptions applies opts over the defaults. Nil options are
// skipped.
func ApplyProcessorOptions(opts ...ProcessorOption) ProcessorConfig {
	cfg := DefaultProcessorConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	return cfg
}
