package nr

import (
	"fmt"
	"slices"
	"sync"
)

// Factory builds a strategy instance.
type Factory func(Params) (Strategy, error)

// Registry maps strategy names to factories. It is safe for concurrent use.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// DefaultRegistry returns a registry holding "lms", "spectral" and "off".
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.MustRegister("off", func(Params) (Strategy, error) { return Off{}, nil })
	r.MustRegister("lms", func(p Params) (Strategy, error) {
		cfg := p.LMS
		if cfg == (LMSConfig{}) {
			cfg = DefaultLMSConfig()
		}

		cfg.Notch = p.Notch

		return NewLMS(cfg)
	})
	r.MustRegister("spectral", func(p Params) (Strategy, error) {
		if err := p.validate(); err != nil {
			return nil, err
		}

		return NewSpectral(p.BlockSize, p.Spectral)
	})

	return r
}

// Register adds a factory under name.
func (r *Registry) Register(name string, f Factory) error {
	if name == "" || f == nil {
		return fmt.Errorf("%w: empty name or nil factory", ErrInvalidParams)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.factories[name]; ok {
		return fmt.Errorf("%w: %q", ErrDuplicateStrategy, name)
	}

	r.factories[name] = f

	return nil
}

// MustRegister is like Register but panics on error.
func (r *Registry) MustRegister(name string, f Factory) {
	if err := r.Register(name, f); err != nil {
		panic(err)
	}
}

// Lookup returns the factory registered under name.
func (r *Registry) Lookup(name string) (Factory, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	f, ok := r.factories[name]

	return f, ok
}

// New builds the strategy registered under name.
func (r *Registry) New(name string, p Params) (Strategy, error) {
	f, ok := r.Lookup(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownStrategy, name)
	}

	s, err := f(p)
	if err != nil {
		return nil, fmt.Errorf("nr: build %q: %w", name, err)
	}

	return s, nil
}

// Names returns the registered names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.factories))
	for n := range r.factories {
		names = append(names, n)
	}

	slices.Sort(names)

	return names
}
