package filterpath

import (
	"fmt"
	"slices"

	"github.com/cwbudde/algo-sdr/rx/demod"
)

// Store is a validated, immutable set of filter paths.
type Store struct {
	blockSize int
	capacity  Capacity
	paths     []Path
	byID      map[int]int
	byName    map[string]int
}

// NewStore validates paths for blockSize and builds a store. Any invalid
// descriptor fails the whole store.
func NewStore(paths []Path, blockSize int) (*Store, error) {
	if len(paths) == 0 {
		return nil, ErrNoPaths
	}

	s := &Store{
		blockSize: blockSize,
		paths:     slices.Clone(paths),
		byID:      make(map[int]int, len(paths)),
		byName:    make(map[string]int, len(paths)),
	}

	for i, p := range s.paths {
		if err := p.Validate(blockSize); err != nil {
			return nil, err
		}

		if _, ok := s.byID[p.ID]; ok {
			return nil, fmt.Errorf("%w: id %d", ErrDuplicatePath, p.ID)
		}

		if _, ok := s.byName[p.Name]; ok {
			return nil, fmt.Errorf("%w: name %q", ErrDuplicatePath, p.Name)
		}

		s.byID[p.ID] = i
		s.byName[p.Name] = i
		s.capacity = s.capacity.fit(p)
	}

	return s, nil
}

// BlockSize returns the block size the store was validated for.
func (s *Store) BlockSize() int { return s.blockSize }

// Capacity returns the largest filters of any path in the store.
func (s *Store) Capacity() Capacity { return s.capacity }

// Len returns the number of paths.
func (s *Store) Len() int { return len(s.paths) }

// Paths returns the paths in table order.
func (s *Store) Paths() []Path { return slices.Clone(s.paths) }

// Path returns the path with the given ID.
func (s *Store) Path(id int) (Path, bool) {
	i, ok := s.byID[id]
	if !ok {
		return Path{}, false
	}

	return s.paths[i], true
}

// Lookup returns the path with the given name.
func (s *Store) Lookup(name string) (Path, bool) {
	i, ok := s.byName[name]
	if !ok {
		return Path{}, false
	}

	return s.paths[i], true
}

// Applicable returns the paths usable in mode m, narrowest first.
func (s *Store) Applicable(m demod.Mode) []Path {
	var out []Path
	for _, p := range s.paths {
		if p.Applies(m) {
			out = append(out, p)
		}
	}

	slices.SortStableFunc(out, func(a, b Path) int {
		switch {
		case a.Width() < b.Width():
			return -1
		case a.Width() > b.Width():
			return 1
		}

		return 0
	})

	return out
}

// Select picks the path for mode m. The requested path is returned when it
// applies to m. Otherwise the narrowest applicable path at least as wide as
// the requested one wins, and failing that the widest applicable path. An
// unknown requestedID counts as a request of zero width.
func (s *Store) Select(m demod.Mode, requestedID int) (Path, error) {
	req, ok := s.Path(requestedID)
	if ok && req.Applies(m) {
		return req, nil
	}

	candidates := s.Applicable(m)
	if len(candidates) == 0 {
		return Path{}, fmt.Errorf("%w: %s", ErrNoPath, m)
	}

	for _, p := range candidates {
		if p.Width() >= req.Width() {
			return p, nil
		}
	}

	return candidates[len(candidates)-1], nil
}
