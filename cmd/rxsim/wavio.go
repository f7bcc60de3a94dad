package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/cwbudde/algo-sdr/dsp/dither"
)

const wavFormatPCM = 1

var errNotWAV = errors.New("not a WAV file")

// writeWAV encodes interleaved samples in [-1, 1] as PCM of the
// quantizer's bit depth.
func writeWAV(w io.WriteSeeker, samples []float32, sampleRate, channels int, q *dither.Quantizer) error {
	bits := q.BitDepth()
	enc := wav.NewEncoder(w, sampleRate, bits, channels, wavFormatPCM)

	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: channels, SampleRate: sampleRate},
		Data:           q.QuantizeBlock(nil, samples),
		SourceBitDepth: bits,
	}

	if err := enc.Write(buf); err != nil {
		return fmt.Errorf("wav: %w", err)
	}

	return enc.Close()
}

// readIQ decodes a two-channel PCM WAV file, I left and Q right, into
// interleaved I/Q scaled to [-1, 1).
func readIQ(r io.ReadSeeker) ([]float32, float64, error) {
	dec := wav.NewDecoder(r)
	if !dec.IsValidFile() {
		return nil, 0, errNotWAV
	}

	if dec.NumChans != 2 {
		return nil, 0, fmt.Errorf("I/Q input needs 2 channels, got %d", dec.NumChans)
	}

	switch dec.BitDepth {
	case 16, 24, 32:
	default:
		return nil, 0, fmt.Errorf("unsupported bit depth %d", dec.BitDepth)
	}

	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, 0, fmt.Errorf("wav: %w", err)
	}

	scale := 1 / float64(int(1)<<(dec.BitDepth-1))
	iq := make([]float32, len(buf.Data))

	for k, v := range buf.Data {
		iq[k] = float32(float64(v) * scale)
	}

	return iq, float64(dec.SampleRate), nil
}
