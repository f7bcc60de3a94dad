// Package nr provides the receive noise reduction and automatic notch
// strategies.
//
// Every algorithm implements [Strategy], a block filter that works in place
// on mono audio at the decimated rate. Strategies are selected by name from
// a [Registry] when the pipeline is configured; [DefaultRegistry] carries the
// variable-leak LMS filter ("lms"), the FFT spectral subtraction engine
// ("spectral") and a passthrough ("off").
//
// The spectral engine is too heavy for the per-block context. [Spectral]
// exchanges fixed-size hops with its [Engine] through two block rings so
// that the engine can run synchronously or on its own goroutine.
package nr
