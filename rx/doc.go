// Package rx assembles the receive chain.
//
// A Pipeline owns every stage of the chain: IQ correction, the spectrum
// tap, IF translation, filter-path decimation, demodulation, noise
// reduction, AGC, equalisation and the output stage. Process consumes one
// or more blocks of interleaved I/Q and produces interleaved left/right
// audio. It must be called from a single goroutine.
//
// Settings are immutable values. Apply validates a Settings value and
// publishes it with one atomic store; the processing goroutine picks it up
// at the start of the next block and reconfigures only the stages whose
// settings changed. Telemetry, Apply and the supervisor calls are safe to
// use from any goroutine while Process runs.
package rx
