package density

import (
	"fmt"
	"math"

	"github.com/dm-vev/adamant-worldgen/server/internal/mth"
	"github.com/dm-vev/adamant-worldgen/server/world/generator/noisegen/noise"
	"github.com/go-gl/mathgl/mgl64"
)

// Sampler evaluates the nodes of a Graph with the noises of a single seed. A
// Sampler is immutable and may be shared between goroutines.
type Sampler struct {
	g      *Graph
	noises []*noise.Normal
}

// Bind resolves every noise sampled by the graph from the set passed.
func (g *Graph) Bind(noises *noise.Set) (*Sampler, error) {
	s := &Sampler{g: g, noises: make([]*noise.Normal, len(g.noises))}
	for i, name := range g.noises {
		n, err := noises.Get(name)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrConfiguration, err)
		}
		s.noises[i] = n
	}
	return s, nil
}

// Graph returns the graph the sampler evaluates.
func (s *Sampler) Graph() *Graph { return s.g }

// Evaluate returns the value of the node passed at a block position. The
// Context must only be used by one goroutine at a time.
func (s *Sampler) Evaluate(id NodeID, p Pos, ctx *Context) float64 {
	n := &s.g.nodes[id]
	switch n.kind {
	case KindConstant:
		return n.params[0]
	case KindNoise:
		return s.noises[n.noise].Sample(float64(p.X)*n.params[0], float64(p.Y)*n.params[1], float64(p.Z)*n.params[0])
	case KindShiftedNoise:
		x := float64(float64(p.X)*n.params[0]) + s.Evaluate(n.args[0], p, ctx)
		y := float64(float64(p.Y)*n.params[1]) + s.Evaluate(n.args[1], p, ctx)
		z := float64(float64(p.Z)*n.params[0]) + s.Evaluate(n.args[2], p, ctx)
		return s.noises[n.noise].Sample(x, y, z)
	case KindShiftA:
		return s.shift(n, float64(p.X), 0, float64(p.Z))
	case KindShiftB:
		return s.shift(n, float64(p.Z), float64(p.X), 0)
	case KindShift:
		return s.shift(n, float64(p.X), float64(p.Y), float64(p.Z))
	case KindAdd:
		return s.Evaluate(n.args[0], p, ctx) + s.Evaluate(n.args[1], p, ctx)
	case KindMul:
		v := s.Evaluate(n.args[0], p, ctx)
		if v == 0 {
			return 0
		}
		return v * s.Evaluate(n.args[1], p, ctx)
	case KindMin:
		return math.Min(s.Evaluate(n.args[0], p, ctx), s.Evaluate(n.args[1], p, ctx))
	case KindMax:
		return math.Max(s.Evaluate(n.args[0], p, ctx), s.Evaluate(n.args[1], p, ctx))
	case KindClamp:
		return mgl64.Clamp(s.Evaluate(n.args[0], p, ctx), n.params[0], n.params[1])
	case KindAbs:
		return math.Abs(s.Evaluate(n.args[0], p, ctx))
	case KindSquare:
		v := s.Evaluate(n.args[0], p, ctx)
		return v * v
	case KindCube:
		v := s.Evaluate(n.args[0], p, ctx)
		return v * v * v
	case KindHalfNegative:
		v := s.Evaluate(n.args[0], p, ctx)
		if v > 0 {
			return v
		}
		return v * 0.5
	case KindQuarterNegative:
		v := s.Evaluate(n.args[0], p, ctx)
		if v > 0 {
			return v
		}
		return v * 0.25
	case KindSqueeze:
		v := mgl64.Clamp(s.Evaluate(n.args[0], p, ctx), -1, 1)
		return v/2 - v*v*v/24
	case KindYClampedGradient:
		return mth.ClampedMap(float64(p.Y), n.params[0], n.params[1], n.params[2], n.params[3])
	case KindRangeChoice:
		if v := s.Evaluate(n.args[0], p, ctx); v >= n.params[0] && v < n.params[1] {
			return s.Evaluate(n.args[1], p, ctx)
		}
		return s.Evaluate(n.args[2], p, ctx)
	case KindSpline:
		return float64(n.spline.Apply(func(coordinate int) float32 {
			return float32(s.Evaluate(NodeID(coordinate), p, ctx))
		}))
	case KindInterpolated:
		if ctx.point {
			return s.Evaluate(n.args[0], p, ctx)
		}
		return s.interpolate(id, n.args[0], p, ctx)
	case KindFlatCache:
		return ctx.memo2D(id, p.X&^3, p.Z&^3, func() float64 {
			return s.Evaluate(n.args[0], Pos{X: p.X &^ 3, Z: p.Z &^ 3}, ctx)
		})
	case KindCache2D:
		return ctx.memo2D(id, p.X, p.Z, func() float64 {
			return s.Evaluate(n.args[0], p, ctx)
		})
	case KindCacheOnce, KindCacheAllInCell:
		return ctx.memo3D(id, p, func() float64 {
			return s.Evaluate(n.args[0], p, ctx)
		})
	case KindBlendAlpha:
		if ctx.Blender != nil {
			return ctx.Blender.Alpha(p.X, p.Z)
		}
		return 1
	case KindBlendOffset:
		if ctx.Blender != nil {
			return ctx.Blender.Offset(p.X, p.Z)
		}
		return 0
	case KindBlendDensity:
		v := s.Evaluate(n.args[0], p, ctx)
		if ctx.Blender != nil {
			return ctx.Blender.Density(p, v)
		}
		return v
	case KindBeardifier:
		if ctx.Structures != nil {
			return ctx.Structures.Compute(p)
		}
		return 0
	case KindWeirdScaledSampler:
		rarity := n.rarity.rarity(s.Evaluate(n.args[0], p, ctx))
		return rarity * math.Abs(s.noises[n.noise].Sample(float64(p.X)/rarity, float64(p.Y)/rarity, float64(p.Z)/rarity))
	case KindFunc:
		return n.fn(p)
	}
	panic(fmt.Sprintf("density: node %d has unknown kind %v", id, n.kind))
}

// EvaluatePoint evaluates the node passed at a single position outside of the
// cell grid: interpolated nodes evaluate their argument at p directly instead of
// interpolating between cell corners.
func (s *Sampler) EvaluatePoint(id NodeID, p Pos, ctx *Context) float64 {
	prev := ctx.point
	ctx.point = true
	defer func() { ctx.point = prev }()
	return s.Evaluate(id, p, ctx)
}

func (s *Sampler) shift(n *node, x, y, z float64) float64 {
	return s.noises[n.noise].Sample(x*0.25, y*0.25, z*0.25) * 4
}

// interpolate interpolates the argument of an interpolated node between the
// corners of the noise cell containing p. The y axis is interpolated first,
// then x, then z.
func (s *Sampler) interpolate(id, arg NodeID, p Pos, ctx *Context) float64 {
	w, h := ctx.CellWidth, ctx.CellHeight
	x0 := mth.FloorDiv(p.X, w) * w
	z0 := mth.FloorDiv(p.Z, w) * w
	y0 := mth.FloorDiv(p.Y, h) * h

	corner := func(dx, dy, dz int) float64 {
		return s.corner(id, arg, Pos{X: x0 + dx, Y: y0 + dy, Z: z0 + dz}, ctx)
	}
	tx := float64(p.X-x0) / float64(w)
	ty := float64(p.Y-y0) / float64(h)
	tz := float64(p.Z-z0) / float64(w)

	v00 := mth.Lerp(ty, corner(0, 0, 0), corner(0, h, 0))
	v10 := mth.Lerp(ty, corner(w, 0, 0), corner(w, h, 0))
	v01 := mth.Lerp(ty, corner(0, 0, w), corner(0, h, w))
	v11 := mth.Lerp(ty, corner(w, 0, w), corner(w, h, w))
	return mth.Lerp(tz, mth.Lerp(tx, v00, v10), mth.Lerp(tx, v01, v11))
}

func (s *Sampler) corner(id, arg NodeID, p Pos, ctx *Context) float64 {
	return ctx.memoCorner(id, p, func() float64 {
		return s.Evaluate(arg, p, ctx)
	})
}

// Prime evaluates the argument of every interpolated node at every cell corner
// of the region passed, so that evaluating blocks of the region afterwards only
// reads cached corners.
func (c *Context) Prime(s *Sampler, r Region) {
	w, h := c.CellWidth, c.CellHeight
	x0, x1 := mth.FloorDiv(r.MinX, w)*w, mth.FloorDiv(r.MinX+r.SizeX-1, w)*w+w
	z0, z1 := mth.FloorDiv(r.MinZ, w)*w, mth.FloorDiv(r.MinZ+r.SizeZ-1, w)*w+w
	y0, y1 := mth.FloorDiv(r.MinY, h)*h, mth.FloorDiv(r.MinY+r.Height-1, h)*h+h

	for _, id := range s.g.interpolated {
		arg := s.g.nodes[id].args[0]
		for x := x0; x <= x1; x += w {
			for z := z0; z <= z1; z += w {
				for y := y0; y <= y1; y += h {
					s.corner(id, arg, Pos{X: x, Y: y, Z: z}, c)
				}
			}
		}
	}
}
