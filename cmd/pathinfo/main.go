// Command pathinfo prints the receive filter paths and the response of
// their filters.
//
// Usage:
//
//	pathinfo [flags] [path ...]
//
// Paths are given by name or ID. Without arguments every path of the
// compiled-in table is printed.
//
// Examples:
//
//	pathinfo
//	pathinfo --mode AM
//	pathinfo "SSB 2.7kHz" 20
//	pathinfo --response --points 17 "CW 500Hz"
package main

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/pflag"

	"github.com/cwbudde/algo-sdr/rx/demod"
	"github.com/cwbudde/algo-sdr/rx/filterpath"
)

type options struct {
	mode     string
	block    int
	response bool
	points   int
}

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}

		fmt.Fprintf(os.Stderr, "pathinfo: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	var opts options

	fs := pflag.NewFlagSet("pathinfo", pflag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVarP(&opts.mode, "mode", "m", "", "only paths usable in this demodulation mode")
	fs.IntVar(&opts.block, "block", 32, "I/Q frames per block the table is validated for")
	fs.BoolVarP(&opts.response, "response", "r", false, "print the I/Q filter response of each path")
	fs.IntVar(&opts.points, "points", 9, "response points per path")
	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: pathinfo [flags] [path ...]\n\n")
		fmt.Fprintf(stderr, "Prints the receive filter paths and their responses.\n\n")
		fmt.Fprintf(stderr, "Flags:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	if opts.points < 2 {
		return fmt.Errorf("points must be >= 2: %d", opts.points)
	}

	store, err := filterpath.DefaultStore(opts.block)
	if err != nil {
		return err
	}

	paths, err := selectPaths(store, opts.mode, fs.Args())
	if err != nil {
		return err
	}

	if err := printTable(stdout, paths); err != nil {
		return err
	}

	if !opts.response {
		return nil
	}

	for _, p := range paths {
		if err := printResponse(stdout, p, opts.points); err != nil {
			return err
		}
	}

	return nil
}

func selectPaths(store *filterpath.Store, mode string, names []string) ([]filterpath.Path, error) {
	paths := store.Paths()

	if mode != "" {
		m, err := demod.ParseMode(mode)
		if err != nil {
			return nil, err
		}

		paths = store.Applicable(m)
	}

	if len(names) == 0 {
		return paths, nil
	}

	selected := make([]filterpath.Path, 0, len(names))

	for _, name := range names {
		p, ok := store.Lookup(name)
		if !ok {
			id, err := strconv.Atoi(name)
			if err != nil {
				return nil, fmt.Errorf("unknown filter path %q", name)
			}

			if p, ok = store.Path(id); !ok {
				return nil, fmt.Errorf("unknown filter path ID %d", id)
			}
		}

		selected = append(selected, p)
	}

	return selected, nil
}

func printTable(w io.Writer, paths []filterpath.Path) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "ID\tName\tModes\tLow\tHigh\tRate\tIQ taps\tDec taps\tPre\tAA\tPass [dB]\tReject [dB]\tAlias [dB]\n")

	for _, p := range paths {
		r := summarize(p)
		fmt.Fprintf(tw, "%d\t%s\t%s\t%.0f\t%.0f\t%.0f\t%d\t%d\t%d\t%d\t%s\t%s\t%s\n",
			p.ID, p.Name, p.Modes, float64(p.Low), float64(p.High), p.DecimatedRate(filterpath.SampleRate),
			len(p.IQ.I), len(p.Decimator), p.PreFilter.Stages(), p.AntiAlias.Stages(),
			formatDB(r.pass), formatDB(r.reject), formatDB(r.alias))
	}

	return tw.Flush()
}

func printResponse(w io.Writer, p filterpath.Path, points int) error {
	fmt.Fprintf(w, "\n%s\n", p)

	if p.IQ.Empty() {
		_, err := fmt.Fprintf(w, "  no I/Q filter pair\n")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintf(tw, "Freq [Hz]\tUSB [dB]\tLSB [dB]\t\n")

	for _, pt := range responseGrid(p, points) {
		fmt.Fprintf(tw, "%.0f\t%.1f\t%.1f\t\n", pt.freq, pt.upper, pt.lower)
	}

	return tw.Flush()
}

func formatDB(v float64) string {
	if math.IsNaN(v) {
		return "-"
	}

	return fmt.Sprintf("%.1f", v)
}
