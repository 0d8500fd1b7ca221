package noisegen

import "github.com/dm-vev/adamant-worldgen/server/world/registry"

// BiomeSource resolves the biome at a block position. Implementations must be
// pure and safe for concurrent use.
type BiomeSource interface {
	BiomeAt(x, y, z int) registry.Biome
}

// FixedBiome is a BiomeSource that returns the same biome everywhere.
type FixedBiome registry.Biome

// BiomeAt ...
func (f FixedBiome) BiomeAt(int, int, int) registry.Biome {
	return registry.Biome(f)
}
