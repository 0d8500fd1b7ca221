package noisegen

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"math"
	"sync"
	"testing"

	"github.com/dm-vev/adamant-worldgen/server/world/generator/noisegen/density"
	"github.com/dm-vev/adamant-worldgen/server/world/generator/noisegen/noise"
	"github.com/dm-vev/adamant-worldgen/server/world/generator/noisegen/surface"
	"github.com/dm-vev/adamant-worldgen/server/world/registry"
)

// flatSettings returns settings with solid terrain below y=64 and air above.
func flatSettings() *Settings {
	return &Settings{
		MinY:           -64,
		Height:         384,
		SizeHorizontal: 1,
		SizeVertical:   2,
		SeaLevel:       63,
		DefaultBlock:   "minecraft:stone",
		DefaultFluid:   "minecraft:water[level=0]",
		Router: Router{
			FinalDensity:                    density.YClampedGradient(63, 64, 1, -1),
			InitialDensityWithoutJaggedness: density.YClampedGradient(63, 64, 1, -1),
		},
		Noises: map[string]noise.Parameters{
			SurfaceNoise:          {FirstOctave: -6, Amplitudes: []float64{1, 1, 1}},
			SurfaceSecondaryNoise: {FirstOctave: -6, Amplitudes: []float64{1, 1, 1, 1}},
			"test:terrain":        {FirstOctave: -2, Amplitudes: []float64{1, 1}},
		},
		SurfaceRule: surface.Block("minecraft:stone"),
	}
}

// noisySettings returns settings whose terrain is shaped by interpolated noise.
func noisySettings() *Settings {
	s := flatSettings()
	s.Router.FinalDensity = density.Add(
		density.YClampedGradient(0, 128, 1, -1),
		density.Interpolated(density.Noise("test:terrain", 1, 1)),
	)
	return s
}

func bind(t *testing.T, s *Settings, seed int64) *RandomState {
	t.Helper()
	c, err := Compile(s, registry.Vanilla())
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	st, err := c.Bind(seed)
	if err != nil {
		t.Fatalf("bind: %v", err)
	}
	return st
}

func TestFlatTerrain(t *testing.T) {
	t.Parallel()

	reg := registry.Vanilla()
	c, err := Generate(ChunkPos{0, 0}, flatSettings(), reg, 0)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	stone := reg.MustBlock("minecraft:stone")
	for x := 0; x < 16; x++ {
		for z := 0; z < 16; z++ {
			for y := -64; y < 320; y++ {
				want := registry.Air
				if y < 64 {
					want = stone
				}
				if got := c.Block(x, y, z); got != want {
					t.Fatalf("(%v %v %v): got %v, want %v", x, y, z, reg.Name(got), reg.Name(want))
				}
			}
		}
	}
}

func TestGenerateIsDeterministic(t *testing.T) {
	t.Parallel()

	reg := registry.Vanilla()
	for _, pos := range []ChunkPos{{0, 0}, {-3, 7}, {120, -45}} {
		first, err := Generate(pos, noisySettings(), reg, 1234)
		if err != nil {
			t.Fatalf("generate: %v", err)
		}
		second, err := Generate(pos, noisySettings(), reg, 1234)
		if err != nil {
			t.Fatalf("generate: %v", err)
		}
		if first.Digest() != second.Digest() {
			t.Fatalf("chunk %v differs between two calls", pos)
		}
	}

	// A generator reused for other chunks in between yields the same chunk.
	g := bind(t, noisySettings(), 1234).NewGenerator()
	a := g.Generate(ChunkPos{2, 2})
	g.Generate(ChunkPos{9, -1})
	if b := g.Generate(ChunkPos{2, 2}); a.Digest() != b.Digest() {
		t.Fatalf("reused generator produced a different chunk")
	}

	other := bind(t, noisySettings(), 4321).NewGenerator().Generate(ChunkPos{2, 2})
	if other.Digest() == a.Digest() {
		t.Fatalf("different seeds produced the same chunk")
	}
}

func TestDisplacedChunksAreUncorrelated(t *testing.T) {
	t.Parallel()

	s := flatSettings()
	s.Router.FinalDensity = density.Noise("test:terrain", 1, 1)
	g := bind(t, s, 0).NewGenerator()

	var a, b []float64
	for x := 0; x < 16; x++ {
		for z := 0; z < 16; z++ {
			for y := 0; y < 32; y++ {
				a = append(a, g.FinalDensity(x, y, z))
				b = append(b, g.FinalDensity(x+7*16, y, z-3*16))
			}
		}
	}
	if r := correlation(a, b); math.Abs(r) > 0.25 {
		t.Fatalf("correlation of displaced chunks is %v", r)
	}
	if r := correlation(a, a); math.Abs(r-1) > 1e-9 {
		t.Fatalf("self correlation is %v", r)
	}
}

func correlation(a, b []float64) float64 {
	var meanA, meanB float64
	for i := range a {
		meanA += a[i]
		meanB += b[i]
	}
	meanA /= float64(len(a))
	meanB /= float64(len(b))

	var cov, varA, varB float64
	for i := range a {
		da, db := a[i]-meanA, b[i]-meanB
		cov += da * db
		varA += da * da
		varB += db * db
	}
	return cov / math.Sqrt(varA*varB)
}

func TestSurfaceRuleGrassOverDirt(t *testing.T) {
	t.Parallel()

	s := flatSettings()
	s.SeaLevel = 50
	s.SurfaceRule = surface.Sequence(
		surface.IfTrue(surface.StoneDepth(0, false, 0, surface.Floor),
			surface.IfTrue(surface.Water(-1, 0, false), surface.Block("minecraft:grass_block[snowy=false]"))),
		surface.IfTrue(surface.StoneDepth(0, true, 0, surface.Floor), surface.Block("minecraft:dirt")),
	)
	st := bind(t, s, 99)
	reg := st.Compiled().Blocks()
	grass, dirt, stone := reg.MustBlock("grass_block[snowy=false]"), reg.MustBlock("dirt"), reg.MustBlock("stone")

	c := st.NewGenerator().Generate(ChunkPos{5, -2})
	for x := 0; x < 16; x++ {
		for z := 0; z < 16; z++ {
			depth := st.surfaceDepth(5*16+x, -2*16+z)
			if got := c.Block(x, 63, z); got != grass {
				t.Fatalf("(%v %v): top is %v, want grass", x, z, reg.Name(got))
			}
			for y := 62; y > 40; y-- {
				want := stone
				if y >= 63-depth {
					want = dirt
				}
				if got := c.Block(x, y, z); got != want {
					t.Fatalf("(%v %v %v) with surface depth %v: got %v, want %v", x, y, z, depth, reg.Name(got), reg.Name(want))
				}
			}
		}
	}
}

func TestSurfaceRuleUnderWater(t *testing.T) {
	t.Parallel()

	s := flatSettings()
	s.SeaLevel = 70
	s.SurfaceRule = surface.Sequence(
		surface.IfTrue(surface.Water(-1, 0, false), surface.Block("minecraft:grass_block[snowy=false]")),
		surface.IfTrue(surface.StoneDepth(0, false, 0, surface.Floor), surface.Block("minecraft:sand")),
	)
	st := bind(t, s, 5)
	reg := st.Compiled().Blocks()

	c := st.NewGenerator().Generate(ChunkPos{0, 0})
	if got := c.Block(3, 64, 3); got != reg.MustBlock("water[level=0]") {
		t.Fatalf("above terrain: got %v, want water", reg.Name(got))
	}
	if got := c.Block(3, 63, 3); got != reg.MustBlock("sand") {
		t.Fatalf("top under water: got %v, want sand", reg.Name(got))
	}
	if got := c.Block(3, 62, 3); got != reg.MustBlock("stone") {
		t.Fatalf("below top: got %v, want stone", reg.Name(got))
	}
}

func TestSurfaceRuleSteep(t *testing.T) {
	t.Parallel()

	s := flatSettings()
	s.SeaLevel = -64
	s.Router.FinalDensity = density.Func(func(p density.Pos) float64 {
		if p.Y < 64-5*(p.X&15) {
			return 1
		}
		return -1
	})
	s.SurfaceRule = surface.IfTrue(surface.Steep(), surface.Block("minecraft:gravel"))
	st := bind(t, s, 0)
	reg := st.Compiled().Blocks()

	c := st.NewGenerator().Generate(ChunkPos{0, 0})
	for x := 0; x < 16; x++ {
		if got := c.Block(x, 63-5*x, 8); got != reg.MustBlock("gravel") {
			t.Fatalf("x=%v: got %v, want gravel", x, reg.Name(got))
		}
	}
}

func TestSurfaceRuleAbovePreliminarySurface(t *testing.T) {
	t.Parallel()

	s := flatSettings()
	s.SurfaceRule = surface.IfTrue(surface.AbovePreliminarySurface(), surface.Block("minecraft:gravel"))
	st := bind(t, s, 7)
	reg := st.Compiled().Blocks()
	gravel, stone := reg.MustBlock("gravel"), reg.MustBlock("stone")

	c := st.NewGenerator().Generate(ChunkPos{1, 1})
	for x := 0; x < 16; x++ {
		for z := 0; z < 16; z++ {
			// The initial density first exceeds the threshold at y=56, one
			// cell below the terrain top.
			level := 56 + st.surfaceDepth(16+x, 16+z) - 8
			if level > 63 {
				continue
			}
			if got := c.Block(x, level, z); got != gravel {
				t.Fatalf("(%v %v %v): got %v, want gravel", x, level, z, reg.Name(got))
			}
			if got := c.Block(x, level-1, z); got != stone {
				t.Fatalf("(%v %v %v): got %v, want stone", x, level-1, z, reg.Name(got))
			}
		}
	}
}

// recordingBiomes returns plains everywhere and records the heights it was
// queried at.
type recordingBiomes struct {
	mu sync.Mutex
	ys []int
}

func (r *recordingBiomes) BiomeAt(_, y, _ int) registry.Biome {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ys = append(r.ys, y)
	return registry.Plains
}

func TestSurfaceBiomeQueriedAboveTopBlock(t *testing.T) {
	t.Parallel()

	biomes := &recordingBiomes{}
	s := flatSettings()
	s.Biomes = biomes
	s.SurfaceRule = surface.IfTrue(surface.BiomeIs("minecraft:desert"), surface.Block("minecraft:sand"))
	st := bind(t, s, 3)
	reg := st.Compiled().Blocks()

	c := st.NewGenerator().Generate(ChunkPos{-1, 2})
	if got := c.Block(0, 63, 0); got != reg.MustBlock("stone") {
		t.Fatalf("top block: got %v, want stone", reg.Name(got))
	}
	biomes.mu.Lock()
	defer biomes.mu.Unlock()
	if len(biomes.ys) != 256 {
		t.Fatalf("biome queried %v times, want once per column", len(biomes.ys))
	}
	for _, y := range biomes.ys {
		if y != 64 {
			t.Fatalf("biome queried at y=%v, want 64", y)
		}
	}
}

func TestConfigurationErrors(t *testing.T) {
	t.Parallel()

	for name, tc := range map[string]struct {
		modify func(s *Settings)
		want   error
	}{
		"unaligned min y":     {func(s *Settings) { s.MinY = -60 }, ErrInvalidBounds},
		"min y too low":       {func(s *Settings) { s.MinY = -2048 }, ErrInvalidBounds},
		"zero height":         {func(s *Settings) { s.Height = 0 }, ErrInvalidBounds},
		"unaligned height":    {func(s *Settings) { s.Height = 100 }, ErrInvalidBounds},
		"too high":            {func(s *Settings) { s.MinY, s.Height = 2000, 64 }, ErrInvalidBounds},
		"cell size":           {func(s *Settings) { s.SizeHorizontal = 5 }, ErrConfiguration},
		"no final density":    {func(s *Settings) { s.Router.FinalDensity = nil }, ErrConfiguration},
		"unknown block":       {func(s *Settings) { s.DefaultBlock = "minecraft:unobtainium" }, registry.ErrUnknownBlock},
		"unresolved function": {func(s *Settings) { s.Router.FinalDensity = density.Ref("test:missing") }, density.ErrUnresolvedReference},
		"unknown noise":       {func(s *Settings) { s.Router.FinalDensity = density.Noise("test:missing", 1, 1) }, noise.ErrUnknownNoise},
		"cyclic spline": {func(s *Settings) {
			s.Splines = map[string]*density.SplineDef{"test:loop": {
				Coordinate: density.Spline(&density.SplineDef{Ref: "test:loop"}),
				Points:     []density.SplinePointDef{{Location: 0}},
			}}
			s.Router.FinalDensity = density.Spline(&density.SplineDef{Ref: "test:loop"})
		}, density.ErrCyclicSpline},
		"missing surface noise": {func(s *Settings) {
			delete(s.Noises, SurfaceNoise)
			s.SurfaceRule = surface.IfTrue(surface.Hole(), surface.Block("minecraft:stone"))
		}, noise.ErrUnknownNoise},
		"missing initial density": {func(s *Settings) {
			s.Router.InitialDensityWithoutJaggedness = nil
			s.SurfaceRule = surface.IfTrue(surface.AbovePreliminarySurface(), surface.Block("minecraft:stone"))
		}, ErrConfiguration},
	} {
		s := flatSettings()
		tc.modify(s)
		_, err := Compile(s, registry.Vanilla())
		if !errors.Is(err, tc.want) || !errors.Is(err, ErrConfiguration) {
			t.Fatalf("%v: got %v, want %v", name, err, tc.want)
		}
	}

	// Surface noises are only required by rules that read them.
	s := flatSettings()
	delete(s.Noises, SurfaceNoise)
	if _, err := Compile(s, registry.Vanilla()); err != nil {
		t.Fatalf("compile without surface noise: %v", err)
	}
}

func TestPoolMatchesGenerator(t *testing.T) {
	t.Parallel()

	st := bind(t, noisySettings(), 42)
	pool := PoolConfig{Log: slog.New(slog.NewTextHandler(io.Discard, nil)), Workers: 3, QueueSize: 2}.New(st)
	t.Cleanup(func() { _ = pool.Close() })

	var positions []ChunkPos
	for x := int32(-1); x <= 1; x++ {
		for z := int32(-1); z <= 1; z++ {
			positions = append(positions, ChunkPos{x, z})
		}
	}
	results := make([]<-chan Result, len(positions))
	for i, pos := range positions {
		ch, err := pool.Submit(context.Background(), pos)
		if err != nil {
			t.Fatalf("submit %v: %v", pos, err)
		}
		results[i] = ch
	}

	direct := st.NewGenerator()
	shared := st.Shared()
	for i, pos := range positions {
		res := <-results[i]
		if res.Err != nil {
			t.Fatalf("generate %v: %v", pos, res.Err)
		}
		if res.Pos != pos {
			t.Fatalf("result for %v has position %v", pos, res.Pos)
		}
		want := direct.Generate(pos).Digest()
		if res.Chunk.Digest() != want {
			t.Fatalf("pool chunk %v differs from a direct generator", pos)
		}
		if shared.Generate(pos).Digest() != want {
			t.Fatalf("shared chunk %v differs from a direct generator", pos)
		}
	}

	if err := pool.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if _, err := pool.Submit(context.Background(), ChunkPos{}); !errors.Is(err, ErrPoolClosed) {
		t.Fatalf("submit after close: got %v, want ErrPoolClosed", err)
	}
}

func TestPoolRecoversFromPanics(t *testing.T) {
	t.Parallel()

	s := flatSettings()
	s.Router.FinalDensity = density.Func(func(p density.Pos) float64 {
		if p.X >= 16 {
			panic("boom")
		}
		return -1
	})
	pool := PoolConfig{Log: slog.New(slog.NewTextHandler(io.Discard, nil)), Workers: 1}.New(bind(t, s, 0))
	t.Cleanup(func() { _ = pool.Close() })

	bad, err := pool.Submit(context.Background(), ChunkPos{1, 0})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if res := <-bad; !errors.Is(res.Err, ErrGenerationPanic) {
		t.Fatalf("got %v, want ErrGenerationPanic", res.Err)
	}
	good, err := pool.Submit(context.Background(), ChunkPos{-1, 0})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if res := <-good; res.Err != nil || res.Chunk == nil {
		t.Fatalf("worker did not recover: %v", res.Err)
	}
}
