// Package noisegen implements a noise based terrain generator. Terrain is
// described by Settings: density functions decide where the terrain is solid and
// surface rules pick the blocks near its surface. Settings are compiled once,
// bound to a world seed and then used to generate chunks from any number of
// goroutines.
package noisegen

import (
	"fmt"

	"github.com/dm-vev/adamant-worldgen/server/world/generator/noisegen/density"
	"github.com/dm-vev/adamant-worldgen/server/world/generator/noisegen/noise"
	"github.com/dm-vev/adamant-worldgen/server/world/generator/noisegen/surface"
)

var (
	// ErrConfiguration is wrapped by every error returned for broken settings.
	ErrConfiguration = density.ErrConfiguration
	// ErrInvalidBounds is returned for vertical bounds outside of what a world
	// can hold.
	ErrInvalidBounds = fmt.Errorf("%w: invalid vertical bounds", density.ErrConfiguration)
)

const (
	minBuildY = -2032
	maxBuildY = 2031

	// SurfaceNoise and SurfaceSecondaryNoise are the noises read by surface
	// rules for the surface depth and the secondary surface depth.
	SurfaceNoise          = "minecraft:surface"
	SurfaceSecondaryNoise = "minecraft:surface_secondary"
)

// Router holds the density functions the generator reads.
type Router struct {
	// FinalDensity decides if a block is solid: blocks with a density above zero
	// are filled with the default block.
	FinalDensity *density.Def
	// InitialDensityWithoutJaggedness estimates the height of the terrain. It is
	// only needed by surface rules that read the preliminary surface.
	InitialDensityWithoutJaggedness *density.Def
}

// Settings describe the terrain of a dimension.
type Settings struct {
	// MinY and Height are the vertical bounds of the terrain. Both are
	// multiples of 16.
	MinY, Height int
	// SizeHorizontal and SizeVertical are the size of a noise cell in units of
	// four blocks, both in [1, 4].
	SizeHorizontal, SizeVertical int
	SeaLevel                     int

	DefaultBlock, DefaultFluid string
	// LegacyRandomSource selects the legacy linear congruential random source
	// instead of Xoroshiro128++.
	LegacyRandomSource bool

	Router Router
	// Functions and Splines are the named density functions and splines that
	// references in the router resolve to.
	Functions map[string]*density.Def
	Splines   map[string]*density.SplineDef
	Noises    map[string]noise.Parameters
	// SurfaceRule is applied to the default blocks of every column. A nil
	// SurfaceRule leaves the terrain untouched.
	SurfaceRule *surface.Def

	// Biomes resolves the biome of positions. The zero value places plains
	// everywhere.
	Biomes BiomeSource
}

// CellWidth returns the width of a noise cell in blocks.
func (s *Settings) CellWidth() int { return s.SizeHorizontal * 4 }

// CellHeight returns the height of a noise cell in blocks.
func (s *Settings) CellHeight() int { return s.SizeVertical * 4 }

// Validate checks the bounds and cell sizes of the settings.
func (s *Settings) Validate() error {
	if s.MinY%16 != 0 || s.MinY < minBuildY || s.MinY > maxBuildY {
		return fmt.Errorf("%w: min y %d must be a multiple of 16 in [%d, %d]", ErrInvalidBounds, s.MinY, minBuildY, maxBuildY)
	}
	if s.Height <= 0 || s.Height%16 != 0 {
		return fmt.Errorf("%w: height %d must be a positive multiple of 16", ErrInvalidBounds, s.Height)
	}
	if s.MinY+s.Height > maxBuildY+1 {
		return fmt.Errorf("%w: min y %d and height %d exceed y %d", ErrInvalidBounds, s.MinY, s.Height, maxBuildY)
	}
	if s.SizeHorizontal < 1 || s.SizeHorizontal > 4 || s.SizeVertical < 1 || s.SizeVertical > 4 {
		return fmt.Errorf("%w: cell size %dx%d outside of [1, 4]", ErrConfiguration, s.SizeHorizontal, s.SizeVertical)
	}
	if s.Height%s.CellHeight() != 0 {
		return fmt.Errorf("%w: height %d is not a multiple of the cell height %d", ErrConfiguration, s.Height, s.CellHeight())
	}
	if s.Router.FinalDensity == nil {
		return fmt.Errorf("%w: router has no final density", ErrConfiguration)
	}
	for name, p := range s.Noises {
		if err := p.Validate(); err != nil {
			return fmt.Errorf("%w: noise %q: %w", ErrConfiguration, name, err)
		}
	}
	return nil
}
