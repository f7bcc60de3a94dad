// Command rxsim runs the receive chain over synthesized or recorded I/Q
// and writes the demodulated audio to a stereo WAV file.
//
// Usage:
//
//	rxsim [flags]
//
// Without --in, a test signal is synthesized from --scenario. Settings
// start from the defaults, are overlaid by --profile and then by the
// flags given explicitly on the command line.
//
// Examples:
//
//	rxsim --scenario am --mode AM --filter "AM 6kHz" -o am.wav
//	rxsim --scenario usb --offset 1.5KHz --tone 700Hz --nr spectral
//	rxsim --in capture.wav --profile night.yaml -o out.wav
//	rxsim --list-filters --mode LSB
package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/pflag"
)

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}

		fmt.Fprintf(os.Stderr, "rxsim: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	cfg, fs, err := parseFlags(args, stderr)
	if err != nil {
		return err
	}

	logger, err := newLogger(stderr, cfg.logLevel)
	if err != nil {
		return err
	}

	sim, err := newSimulation(cfg, fs, logger)
	if err != nil {
		return err
	}

	if cfg.listFilters {
		return sim.listFilters(stdout)
	}

	defer sim.close()

	if err := sim.run(); err != nil {
		return err
	}

	return sim.report(stdout)
}
