package noisegen

import (
	"fmt"

	"github.com/dm-vev/adamant-worldgen/server/world/generator/noisegen/density"
	"github.com/dm-vev/adamant-worldgen/server/world/generator/noisegen/noise"
	"github.com/dm-vev/adamant-worldgen/server/world/generator/noisegen/rand"
	"github.com/dm-vev/adamant-worldgen/server/world/generator/noisegen/surface"
	"github.com/dm-vev/adamant-worldgen/server/world/registry"
)

// Compiled is a validated and compiled form of Settings. It does not depend on
// a seed and may be bound to any number of seeds.
type Compiled struct {
	settings Settings
	blocks   *registry.Registry

	graph          *density.Graph
	final, initial density.NodeID
	hasInitial     bool

	defaultBlock, defaultFluid registry.BlockState
	needs                      surface.Needs
}

// Compile validates the settings passed and compiles their density functions.
// Defects of the settings are reported by Compile and Bind; generating chunks
// cannot fail afterwards. The settings must not be modified after calling
// Compile.
func Compile(s *Settings, blocks *registry.Registry) (*Compiled, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	c := &Compiled{settings: *s, blocks: blocks}
	if c.settings.Biomes == nil {
		c.settings.Biomes = FixedBiome(registry.Plains)
	}

	b := density.Compile(s.Functions, s.Splines)
	var err error
	if c.final, err = b.Build(s.Router.FinalDensity); err != nil {
		return nil, fmt.Errorf("final density: %w", err)
	}
	if s.Router.InitialDensityWithoutJaggedness != nil {
		if c.initial, err = b.Build(s.Router.InitialDensityWithoutJaggedness); err != nil {
			return nil, fmt.Errorf("initial density without jaggedness: %w", err)
		}
		c.hasInitial = true
	}
	c.graph = b.Graph()
	for _, name := range c.graph.Noises() {
		if _, ok := s.Noises[name]; !ok {
			return nil, fmt.Errorf("%w: %w %q", ErrConfiguration, noise.ErrUnknownNoise, name)
		}
	}

	if c.defaultBlock, err = blocks.Block(s.DefaultBlock); err != nil {
		return nil, fmt.Errorf("%w: default block: %w", ErrConfiguration, err)
	}
	if c.defaultFluid, err = blocks.Block(s.DefaultFluid); err != nil {
		return nil, fmt.Errorf("%w: default fluid: %w", ErrConfiguration, err)
	}

	c.needs = s.SurfaceRule.Needs()
	if c.needs.SurfaceDepth {
		if _, ok := s.Noises[SurfaceNoise]; !ok {
			return nil, fmt.Errorf("%w: surface rule reads the surface depth: %w %q", ErrConfiguration, noise.ErrUnknownNoise, SurfaceNoise)
		}
	}
	if c.needs.SurfaceSecondary {
		if _, ok := s.Noises[SurfaceSecondaryNoise]; !ok {
			return nil, fmt.Errorf("%w: surface rule reads the secondary surface depth: %w %q", ErrConfiguration, noise.ErrUnknownNoise, SurfaceSecondaryNoise)
		}
	}
	if c.needs.PreliminarySurface && !c.hasInitial {
		return nil, fmt.Errorf("%w: surface rule reads the preliminary surface but the router has no initial density without jaggedness", ErrConfiguration)
	}
	return c, nil
}

// Settings returns a copy of the settings the generator was compiled from.
func (c *Compiled) Settings() Settings { return c.settings }

// Blocks returns the registry block states were resolved with.
func (c *Compiled) Blocks() *registry.Registry { return c.blocks }

// RandomState is a Compiled generator bound to a world seed. Every noise is
// built once when binding. A RandomState is immutable and safe for concurrent
// use; chunks are generated through Generators created from it.
type RandomState struct {
	c    *Compiled
	seed int64

	random  rand.PositionalFactory
	noises  *noise.Set
	sampler *density.Sampler
	rule    *surface.Rule

	surfaceNoise, secondaryNoise *noise.Normal
}

// Bind binds the compiled settings to a seed.
func (c *Compiled) Bind(seed int64) (*RandomState, error) {
	var root rand.Source = rand.NewXoroshiro(seed)
	if c.settings.LegacyRandomSource {
		root = rand.NewLegacy(seed)
	}
	st := &RandomState{c: c, seed: seed, random: root.ForkPositional()}
	st.noises = noise.NewSet(st.random, c.settings.Noises)

	var err error
	if st.sampler, err = c.graph.Bind(st.noises); err != nil {
		return nil, err
	}
	if c.settings.SurfaceRule != nil {
		st.rule, err = surface.Compile(c.settings.SurfaceRule, surface.Env{
			Blocks: c.blocks,
			Noises: st.noises,
			Random: st.random,
			MinY:   c.settings.MinY,
			Height: c.settings.Height,
		})
		if err != nil {
			return nil, fmt.Errorf("surface rule: %w", err)
		}
	}
	if c.needs.SurfaceDepth {
		if st.surfaceNoise, err = st.noises.Get(SurfaceNoise); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrConfiguration, err)
		}
	}
	if c.needs.SurfaceSecondary {
		if st.secondaryNoise, err = st.noises.Get(SurfaceSecondaryNoise); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrConfiguration, err)
		}
	}
	return st, nil
}

// Seed returns the seed the state was bound to.
func (st *RandomState) Seed() int64 { return st.seed }

// Compiled returns the compiled settings the state was bound from.
func (st *RandomState) Compiled() *Compiled { return st.c }

// Noise returns the named noise of the seed.
func (st *RandomState) Noise(name string) (*noise.Normal, error) {
	return st.noises.Get(name)
}

// surfaceDepth returns the number of surface blocks of the column at x, z.
func (st *RandomState) surfaceDepth(x, z int) int {
	n := st.surfaceNoise.Sample(float64(x), 0, float64(z))
	r := st.random.At(x, 0, z).NextDouble()
	return int(float64(n*2.75) + 3 + float64(r*0.25))
}
