package surface

import (
	"fmt"
	"math"

	"github.com/dm-vev/adamant-worldgen/server/internal/mth"
	"github.com/dm-vev/adamant-worldgen/server/world/generator/noisegen/density"
	"github.com/dm-vev/adamant-worldgen/server/world/generator/noisegen/noise"
	"github.com/dm-vev/adamant-worldgen/server/world/generator/noisegen/rand"
	"github.com/dm-vev/adamant-worldgen/server/world/registry"
)

// Context holds the inputs of surface rules for a single block position.
type Context struct {
	X, Y, Z int

	// StoneDepthAbove is the number of solid blocks from the block up to the
	// first non-solid block above it, counting the block itself.
	StoneDepthAbove int
	// StoneDepthBelow is the same number measured downwards.
	StoneDepthBelow int
	// WaterHeight is the y just above the highest fluid block above the block,
	// or math.MinInt32 if there is no fluid above.
	WaterHeight int

	SurfaceDepth     int
	SurfaceSecondary float64
	MinSurfaceLevel  int
	Steep            bool
	Biome            registry.Biome
}

// Env holds what rules are compiled against.
type Env struct {
	Blocks *registry.Registry
	Noises *noise.Set
	// Random is the positional factory of the world seed. Vertical gradients
	// derive their factories from it.
	Random       rand.PositionalFactory
	MinY, Height int
}

// Rule is a compiled surface rule. A Rule is immutable and safe for concurrent
// use.
type Rule struct {
	kind     RuleKind
	sequence []*Rule
	cond     *condition
	then     *Rule
	block    registry.BlockState
}

// Compile resolves the block states, noises and anchors of a rule.
func Compile(def *Def, env Env) (*Rule, error) {
	if def == nil {
		return nil, fmt.Errorf("%w: missing surface rule", density.ErrConfiguration)
	}
	r := &Rule{kind: def.Kind}
	switch def.Kind {
	case RuleSequence:
		r.sequence = make([]*Rule, len(def.Sequence))
		for i, c := range def.Sequence {
			child, err := Compile(c, env)
			if err != nil {
				return nil, fmt.Errorf("sequence[%d]: %w", i, err)
			}
			r.sequence[i] = child
		}
	case RuleCondition:
		cond, err := compileCondition(def.If, env)
		if err != nil {
			return nil, err
		}
		then, err := Compile(def.Then, env)
		if err != nil {
			return nil, err
		}
		r.cond, r.then = cond, then
	case RuleBlock:
		s, err := env.Blocks.Block(def.Block)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", density.ErrConfiguration, err)
		}
		r.block = s
	default:
		return nil, fmt.Errorf("%w: unknown surface rule kind %d", density.ErrConfiguration, def.Kind)
	}
	return r, nil
}

// Resolve returns the block placed by the rule at the position of the Context,
// or false if no rule matched.
func (r *Rule) Resolve(ctx *Context) (registry.BlockState, bool) {
	switch r.kind {
	case RuleSequence:
		for _, c := range r.sequence {
			if s, ok := c.Resolve(ctx); ok {
				return s, true
			}
		}
	case RuleCondition:
		if r.cond.test(ctx) {
			return r.then.Resolve(ctx)
		}
	case RuleBlock:
		return r.block, true
	}
	return 0, false
}

type condition struct {
	def    *ConditionDef
	biomes map[string]struct{}
	noise  *noise.Normal
	random rand.PositionalFactory
	// y holds resolved anchors: the anchor of y_above or the true and false
	// anchors of a vertical gradient.
	y      [2]int
	invert *condition
}

func compileCondition(def *ConditionDef, env Env) (*condition, error) {
	if def == nil {
		return nil, fmt.Errorf("%w: missing surface condition", density.ErrConfiguration)
	}
	c := &condition{def: def}
	switch def.Kind {
	case CondBiome:
		c.biomes = make(map[string]struct{}, len(def.Biomes))
		for _, b := range def.Biomes {
			biome, ok := registry.LookupBiome(b)
			if !ok {
				return nil, fmt.Errorf("%w: unknown biome %q", density.ErrConfiguration, b)
			}
			c.biomes[biome.Name] = struct{}{}
		}
	case CondNoiseThreshold:
		n, err := env.Noises.Get(def.Noise)
		if err != nil {
			return nil, fmt.Errorf("%w: noise threshold: %w", density.ErrConfiguration, err)
		}
		c.noise = n
	case CondVerticalGradient:
		c.random = env.Random.FromHashOf(def.RandomName).ForkPositional()
		c.y = [2]int{def.TrueAtAndBelow.Resolve(env.MinY, env.Height), def.FalseAtAndAbove.Resolve(env.MinY, env.Height)}
	case CondYAbove:
		c.y[0] = def.Anchor.Resolve(env.MinY, env.Height)
	case CondNot:
		inner, err := compileCondition(def.Invert, env)
		if err != nil {
			return nil, err
		}
		c.invert = inner
	case CondFunc:
		if def.Func == nil {
			return nil, fmt.Errorf("%w: func condition without a function", density.ErrConfiguration)
		}
	case CondWater, CondTemperature, CondSteep, CondHole, CondAbovePreliminarySurface, CondStoneDepth:
	default:
		return nil, fmt.Errorf("%w: unknown surface condition kind %d", density.ErrConfiguration, def.Kind)
	}
	return c, nil
}

func (c *condition) test(ctx *Context) bool {
	def := c.def
	switch def.Kind {
	case CondBiome:
		_, ok := c.biomes[ctx.Biome.Name]
		return ok
	case CondNoiseThreshold:
		v := c.noise.Sample(float64(ctx.X), 0, float64(ctx.Z))
		return v >= def.MinThreshold && v <= def.MaxThreshold
	case CondVerticalGradient:
		trueY, falseY := c.y[0], c.y[1]
		if ctx.Y <= trueY {
			return true
		}
		if ctx.Y >= falseY {
			return false
		}
		chance := mth.Map(float64(ctx.Y), float64(trueY), float64(falseY), 1, 0)
		return float64(c.random.At(ctx.X, ctx.Y, ctx.Z).NextFloat()) < chance
	case CondYAbove:
		return ctx.Y+c.stoneDepth(ctx) >= c.y[0]+ctx.SurfaceDepth*def.SurfaceDepthMultiplier
	case CondWater:
		return ctx.WaterHeight == math.MinInt32 ||
			ctx.Y+c.stoneDepth(ctx) >= ctx.WaterHeight+def.Offset+ctx.SurfaceDepth*def.SurfaceDepthMultiplier
	case CondTemperature:
		return ctx.Biome.ColdEnoughToSnow(ctx.Y)
	case CondSteep:
		return ctx.Steep
	case CondNot:
		return !c.invert.test(ctx)
	case CondHole:
		return ctx.SurfaceDepth <= 0
	case CondAbovePreliminarySurface:
		return ctx.Y >= ctx.MinSurfaceLevel
	case CondStoneDepth:
		depth := ctx.StoneDepthAbove
		if def.Surface == Ceiling {
			depth = ctx.StoneDepthBelow
		}
		limit := 1 + def.Offset
		if def.AddSurfaceDepth {
			limit += ctx.SurfaceDepth
		}
		if def.SecondaryDepthRange != 0 {
			limit += int(mth.Map(ctx.SurfaceSecondary, -1, 1, 0, float64(def.SecondaryDepthRange)))
		}
		return depth <= limit
	case CondFunc:
		return def.Func(ctx)
	}
	return false
}

func (c *condition) stoneDepth(ctx *Context) int {
	if c.def.AddStoneDepth {
		return ctx.StoneDepthAbove
	}
	return 0
}
