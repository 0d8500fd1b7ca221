package noise

import (
	"errors"
	"fmt"
	"sync"

	"github.com/dm-vev/adamant-worldgen/server/world/generator/noisegen/rand"
)

// ErrUnknownNoise is returned when a noise is requested that has no parameters.
var ErrUnknownNoise = errors.New("unknown noise")

// Set builds named Normal noises on demand. Each noise is seeded from the
// factory with its name as salt, so the order in which noises are requested does
// not change their values.
type Set struct {
	factory rand.PositionalFactory
	params  map[string]Parameters

	mu     sync.Mutex
	noises map[string]*Normal
}

// NewSet creates a Set over the parameters passed. The map is not copied and
// must not be modified afterwards.
func NewSet(factory rand.PositionalFactory, params map[string]Parameters) *Set {
	return &Set{factory: factory, params: params, noises: make(map[string]*Normal)}
}

// Get returns the noise with the name passed, building it the first time.
func (s *Set) Get(name string) (*Normal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if n, ok := s.noises[name]; ok {
		return n, nil
	}
	params, ok := s.params[name]
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknownNoise, name)
	}
	n, err := NewNormal(s.factory.FromHashOf(name), params)
	if err != nil {
		return nil, fmt.Errorf("noise %q: %w", name, err)
	}
	s.noises[name] = n
	return n, nil
}

// Has reports if the Set has parameters for the name passed.
func (s *Set) Has(name string) bool {
	_, ok := s.params[name]
	return ok
}

// Factory returns the positional factory noises are seeded from.
func (s *Set) Factory() rand.PositionalFactory {
	return s.factory
}
