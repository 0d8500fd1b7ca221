package registry

import "strings"

// Biome describes the climate of a biome.
type Biome struct {
	Name        string
	Temperature float64
	Downfall    float64
}

// ColdEnoughToSnow reports if precipitation at height y falls as snow. The
// temperature drops by 0.05 for every 40 blocks above y=80.
func (b Biome) ColdEnoughToSnow(y int) bool {
	t := b.Temperature
	if y > 80 {
		t -= float64(y-80) * 0.05 / 40
	}
	return t < 0.15
}

// LookupBiome returns the vanilla biome with the identifier passed.
func LookupBiome(name string) (Biome, bool) {
	if !strings.Contains(name, ":") {
		name = "minecraft:" + name
	}
	b, ok := biomes[name]
	return b, ok
}

// Plains is the biome used when no biome source is configured.
var Plains = Biome{Name: "minecraft:plains", Temperature: 0.8, Downfall: 0.4}

var biomes = func() map[string]Biome {
	m := make(map[string]Biome)
	for _, b := range []Biome{
		Plains,
		{"minecraft:sunflower_plains", 0.8, 0.4},
		{"minecraft:snowy_plains", 0, 0.5},
		{"minecraft:ice_spikes", 0, 0.5},
		{"minecraft:desert", 2, 0},
		{"minecraft:swamp", 0.8, 0.9},
		{"minecraft:mangrove_swamp", 0.8, 0.9},
		{"minecraft:forest", 0.7, 0.8},
		{"minecraft:flower_forest", 0.7, 0.8},
		{"minecraft:birch_forest", 0.6, 0.6},
		{"minecraft:old_growth_birch_forest", 0.6, 0.6},
		{"minecraft:dark_forest", 0.7, 0.8},
		{"minecraft:taiga", 0.25, 0.8},
		{"minecraft:snowy_taiga", -0.5, 0.4},
		{"minecraft:old_growth_pine_taiga", 0.3, 0.8},
		{"minecraft:old_growth_spruce_taiga", 0.25, 0.8},
		{"minecraft:savanna", 2, 0},
		{"minecraft:savanna_plateau", 2, 0},
		{"minecraft:windswept_savanna", 2, 0},
		{"minecraft:windswept_hills", 0.2, 0.3},
		{"minecraft:windswept_gravelly_hills", 0.2, 0.3},
		{"minecraft:windswept_forest", 0.2, 0.3},
		{"minecraft:jungle", 0.95, 0.9},
		{"minecraft:sparse_jungle", 0.95, 0.8},
		{"minecraft:bamboo_jungle", 0.95, 0.9},
		{"minecraft:badlands", 2, 0},
		{"minecraft:eroded_badlands", 2, 0},
		{"minecraft:wooded_badlands", 2, 0},
		{"minecraft:meadow", 0.5, 0.8},
		{"minecraft:cherry_grove", 0.5, 0.8},
		{"minecraft:grove", -0.2, 0.8},
		{"minecraft:snowy_slopes", -0.3, 0.9},
		{"minecraft:frozen_peaks", -0.7, 0.9},
		{"minecraft:jagged_peaks", -0.7, 0.9},
		{"minecraft:stony_peaks", 1, 0.3},
		{"minecraft:river", 0.5, 0.5},
		{"minecraft:frozen_river", 0, 0.5},
		{"minecraft:beach", 0.8, 0.4},
		{"minecraft:snowy_beach", 0.05, 0.3},
		{"minecraft:stony_shore", 0.2, 0.3},
		{"minecraft:warm_ocean", 0.5, 0.5},
		{"minecraft:lukewarm_ocean", 0.5, 0.5},
		{"minecraft:deep_lukewarm_ocean", 0.5, 0.5},
		{"minecraft:ocean", 0.5, 0.5},
		{"minecraft:deep_ocean", 0.5, 0.5},
		{"minecraft:cold_ocean", 0.5, 0.5},
		{"minecraft:deep_cold_ocean", 0.5, 0.5},
		{"minecraft:frozen_ocean", 0, 0.5},
		{"minecraft:deep_frozen_ocean", 0.5, 0.5},
		{"minecraft:mushroom_fields", 0.9, 1},
		{"minecraft:dripstone_caves", 0.8, 0.4},
		{"minecraft:lush_caves", 0.5, 0.5},
		{"minecraft:deep_dark", 0.8, 0.4},
		{"minecraft:nether_wastes", 2, 0},
		{"minecraft:warped_forest", 2, 0},
		{"minecraft:crimson_forest", 2, 0},
		{"minecraft:soul_sand_valley", 2, 0},
		{"minecraft:basalt_deltas", 2, 0},
		{"minecraft:the_end", 0.5, 0.5},
		{"minecraft:the_void", 0.5, 0.5},
	} {
		m[b.Name] = b
	}
	return m
}()
