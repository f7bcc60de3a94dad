package main

import (
	"errors"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/cwbudde/algo-sdr/rx"
)

// loadProfile overlays the YAML document in r onto s. Keys missing from
// the document keep their value; unknown keys are an error.
//
//	mode: LSB
//	filter: 9
//	agc:
//	  mode: slow
//	nr:
//	  strategy: spectral
//	  post_agc: true
//	eq:
//	  bass_db: -3
func loadProfile(r io.Reader, s *rx.Settings) error {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	if err := dec.Decode(s); err != nil && !errors.Is(err, io.EOF) {
		return err
	}

	return nil
}
