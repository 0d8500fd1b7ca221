package noisegen

import (
	"math"

	"github.com/dm-vev/adamant-worldgen/server/internal/mth"
	"github.com/dm-vev/adamant-worldgen/server/world/generator/noisegen/density"
	"github.com/dm-vev/adamant-worldgen/server/world/generator/noisegen/surface"
	"github.com/dm-vev/adamant-worldgen/server/world/registry"
)

// preliminarySurfaceThreshold is the initial density above which a position
// counts towards the preliminary surface.
const preliminarySurfaceThreshold = 0.390625

// Generator generates chunks. It holds the caches of the chunk being generated
// and must only be used by one goroutine at a time. Create one Generator per
// goroutine with RandomState.NewGenerator.
type Generator struct {
	st  *RandomState
	ctx *density.Context

	heights [16][16]int

	// preliminary holds the preliminary surface levels at the corners of the
	// current chunk, computed on first use.
	preliminary      [4]int
	preliminaryReady bool
}

// NewGenerator returns a Generator for the state.
func (st *RandomState) NewGenerator() *Generator {
	s := &st.c.settings
	return &Generator{st: st, ctx: density.NewContext(s.CellWidth(), s.CellHeight())}
}

// Generate generates the chunk at the position passed. Generate never fails:
// every defect of the settings was reported when compiling and binding them.
func (g *Generator) Generate(pos ChunkPos) *Chunk {
	s := &g.st.c.settings
	c := NewChunk(pos, s.MinY, s.Height)
	minX, minZ := int(pos[0])<<4, int(pos[1])<<4

	g.ctx.Reset()
	g.preliminaryReady = false
	g.ctx.Prime(g.st.sampler, density.Region{MinX: minX, MinZ: minZ, SizeX: 16, SizeZ: 16, MinY: s.MinY, Height: s.Height})

	g.fill(c, minX, minZ)
	if g.st.rule != nil {
		g.buildSurface(c, minX, minZ)
	}
	return c
}

// FinalDensity evaluates the final density at a single block position.
func (g *Generator) FinalDensity(x, y, z int) float64 {
	return g.st.sampler.Evaluate(g.st.c.final, density.Pos{X: x, Y: y, Z: z}, g.ctx)
}

// fill places the default block where the final density is positive and the
// default fluid below sea level elsewhere.
func (g *Generator) fill(c *Chunk, minX, minZ int) {
	cp := g.st.c
	s := &cp.settings
	for x := 0; x < 16; x++ {
		for z := 0; z < 16; z++ {
			col := c.Column(x, z)
			top := s.MinY
			for y := s.MinY + s.Height - 1; y >= s.MinY; y-- {
				var b registry.BlockState
				switch d := g.st.sampler.Evaluate(cp.final, density.Pos{X: minX + x, Y: y, Z: minZ + z}, g.ctx); {
				case d > 0:
					b = cp.defaultBlock
				case y < s.SeaLevel:
					b = cp.defaultFluid
				default:
					b = registry.Air
				}
				col[y-s.MinY] = b
				if b != registry.Air && top == s.MinY {
					top = y + 1
				}
			}
			g.heights[x][z] = top
		}
	}
}

// buildSurface applies the surface rule to every default block of the chunk.
// Columns are walked from the top down, tracking the depth of solid blocks below
// the surface and the level of fluid above them.
func (g *Generator) buildSurface(c *Chunk, minX, minZ int) {
	cp := g.st.c
	s := &cp.settings
	needs := cp.needs
	solid := func(b registry.BlockState) bool {
		return b != registry.Air && b != cp.defaultFluid
	}

	var ctx surface.Context
	for x := 0; x < 16; x++ {
		for z := 0; z < 16; z++ {
			bx, bz := minX+x, minZ+z
			ctx = surface.Context{X: bx, Z: bz}
			if needs.Biome {
				y := g.heights[x][z]
				if s.LegacyRandomSource {
					y = 0
				}
				ctx.Biome = s.Biomes.BiomeAt(bx, y, bz)
			}
			if needs.SurfaceDepth {
				ctx.SurfaceDepth = g.st.surfaceDepth(bx, bz)
			}
			if needs.SurfaceSecondary {
				ctx.SurfaceSecondary = g.st.secondaryNoise.Sample(float64(bx), 0, float64(bz))
			}
			if needs.PreliminarySurface {
				ctx.MinSurfaceLevel = g.minSurfaceLevel(bx, bz, ctx.SurfaceDepth)
			}
			if needs.Steep {
				ctx.Steep = g.steep(x, z)
			}

			col := c.Column(x, z)
			stoneAbove, water, lowest := 0, math.MinInt32, math.MaxInt32
			for y := s.MinY + s.Height - 1; y >= s.MinY; y-- {
				b := col[y-s.MinY]
				switch {
				case b == registry.Air:
					stoneAbove, water = 0, math.MinInt32
				case !solid(b):
					if water == math.MinInt32 {
						water = y + 1
					}
				default:
					if lowest >= y {
						lowest = s.MinY
						for l := y - 1; l >= s.MinY; l-- {
							if !solid(col[l-s.MinY]) {
								lowest = l + 1
								break
							}
						}
					}
					stoneAbove++
					if b != cp.defaultBlock {
						continue
					}
					ctx.Y = y
					ctx.StoneDepthAbove = stoneAbove
					ctx.StoneDepthBelow = y - lowest + 1
					ctx.WaterHeight = water
					if r, ok := g.st.rule.Resolve(&ctx); ok {
						col[y-s.MinY] = r
					}
				}
			}
		}
	}
}

// steep reports if the terrain around the chunk local x and z rises by four or
// more blocks towards the south or falls by four or more towards the east.
func (g *Generator) steep(x, z int) bool {
	north, south := g.heights[x][max(z-1, 0)], g.heights[x][min(z+1, 15)]
	if south >= north+4 {
		return true
	}
	west, east := g.heights[max(x-1, 0)][z], g.heights[min(x+1, 15)][z]
	return west >= east+4
}

// minSurfaceLevel interpolates the preliminary surface levels at the corners of
// the chunk and lowers the result by 8 minus the surface depth. The arithmetic
// wraps at 32 bits like the level of a column without any surface.
func (g *Generator) minSurfaceLevel(x, z, surfaceDepth int) int {
	if !g.preliminaryReady {
		cx, cz := x>>4<<4, z>>4<<4
		g.preliminary = [4]int{
			g.preliminarySurfaceLevel(cx, cz),
			g.preliminarySurfaceLevel(cx+16, cz),
			g.preliminarySurfaceLevel(cx, cz+16),
			g.preliminarySurfaceLevel(cx+16, cz+16),
		}
		g.preliminaryReady = true
	}
	p := g.preliminary
	tx := float64(float32(x&15) / 16)
	tz := float64(float32(z&15) / 16)
	level := mth.Lerp2(tx, tz, float64(p[0]), float64(p[1]), float64(p[2]), float64(p[3]))
	floor := math.Floor(level)
	if floor > math.MaxInt32 {
		floor = math.MaxInt32
	}
	return int(int32(floor) + int32(surfaceDepth) - 8)
}

// preliminarySurfaceLevel returns the highest y, stepping down from the top of
// the terrain one cell height at a time, at which the initial density exceeds
// the threshold, or math.MaxInt32 if there is none.
func (g *Generator) preliminarySurfaceLevel(x, z int) int {
	cp := g.st.c
	s := &cp.settings
	x, z = x&^3, z&^3
	for y := s.MinY + s.Height; y >= s.MinY; y -= s.CellHeight() {
		if g.st.sampler.EvaluatePoint(cp.initial, density.Pos{X: x, Y: y, Z: z}, g.ctx) > preliminarySurfaceThreshold {
			return y
		}
	}
	return math.MaxInt32
}

// Generate compiles the settings passed, binds them to the seed and generates
// the chunk at pos. It is the pure form of generation: the result only depends
// on its arguments. The error is a configuration error of the settings.
func Generate(pos ChunkPos, settings *Settings, blocks *registry.Registry, seed int64) (*Chunk, error) {
	c, err := Compile(settings, blocks)
	if err != nil {
		return nil, err
	}
	st, err := c.Bind(seed)
	if err != nil {
		return nil, err
	}
	return st.NewGenerator().Generate(pos), nil
}
