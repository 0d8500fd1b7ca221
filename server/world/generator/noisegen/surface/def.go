// Package surface implements surface rules: ordered trees of conditions that
// replace the default block of the terrain near its surface, such as grass over
// dirt over stone.
package surface

// RuleKind is the kind of a surface rule.
type RuleKind uint8

const (
	RuleSequence RuleKind = iota
	RuleCondition
	RuleBlock
)

// Def is the parsed form of a surface rule.
type Def struct {
	Kind RuleKind
	// Sequence is the list of rules of a sequence, tried in order.
	Sequence []*Def
	// If and Then make up a condition rule.
	If   *ConditionDef
	Then *Def
	// Block is the block state identifier placed by a block rule.
	Block string
}

// Sequence returns a rule that resolves to the first child that matches.
func Sequence(children ...*Def) *Def { return &Def{Kind: RuleSequence, Sequence: children} }

// IfTrue returns a rule that resolves to then if the condition holds.
func IfTrue(c *ConditionDef, then *Def) *Def { return &Def{Kind: RuleCondition, If: c, Then: then} }

// Block returns a rule that always places the block state passed.
func Block(id string) *Def { return &Def{Kind: RuleBlock, Block: id} }

// ConditionKind is the kind of a surface rule condition.
type ConditionKind uint8

const (
	CondBiome ConditionKind = iota
	CondNoiseThreshold
	CondVerticalGradient
	CondYAbove
	CondWater
	CondTemperature
	CondSteep
	CondNot
	CondHole
	CondAbovePreliminarySurface
	CondStoneDepth
	CondFunc
)

// CaveSurface selects the direction in which stone depth is measured.
type CaveSurface uint8

const (
	Floor CaveSurface = iota
	Ceiling
)

// AnchorKind is the kind of a vertical anchor.
type AnchorKind uint8

const (
	Absolute AnchorKind = iota
	AboveBottom
	BelowTop
)

// Anchor is a y coordinate that may be relative to the vertical bounds of the
// generator.
type Anchor struct {
	Kind  AnchorKind
	Value int
}

// Resolve returns the absolute y of the anchor within the bounds passed.
func (a Anchor) Resolve(minY, height int) int {
	switch a.Kind {
	case AboveBottom:
		return minY + a.Value
	case BelowTop:
		return minY + height - 1 - a.Value
	}
	return a.Value
}

// ConditionDef is the parsed form of a surface rule condition. Only the fields
// used by Kind are read.
type ConditionDef struct {
	Kind ConditionKind

	Biomes []string

	Noise                      string
	MinThreshold, MaxThreshold float64

	RandomName                      string
	TrueAtAndBelow, FalseAtAndAbove Anchor

	Anchor                 Anchor
	SurfaceDepthMultiplier int
	AddStoneDepth          bool

	Offset              int
	AddSurfaceDepth     bool
	SecondaryDepthRange int
	Surface             CaveSurface

	Invert *ConditionDef
	Func   func(*Context) bool
}

// BiomeIs holds if the biome of the column is one of those passed.
func BiomeIs(names ...string) *ConditionDef {
	return &ConditionDef{Kind: CondBiome, Biomes: names}
}

// NoiseThreshold holds if the noise sampled at (x, 0, z) lies in [min, max].
func NoiseThreshold(noise string, min, max float64) *ConditionDef {
	return &ConditionDef{Kind: CondNoiseThreshold, Noise: noise, MinThreshold: min, MaxThreshold: max}
}

// VerticalGradient holds at and below trueAtAndBelow, never at and above
// falseAtAndAbove and randomly in between, with a probability falling linearly
// with y.
func VerticalGradient(randomName string, trueAtAndBelow, falseAtAndAbove Anchor) *ConditionDef {
	return &ConditionDef{Kind: CondVerticalGradient, RandomName: randomName, TrueAtAndBelow: trueAtAndBelow, FalseAtAndAbove: falseAtAndAbove}
}

// YAbove holds at and above the anchor, moved up by the surface depth times the
// multiplier.
func YAbove(anchor Anchor, surfaceDepthMultiplier int, addStoneDepth bool) *ConditionDef {
	return &ConditionDef{Kind: CondYAbove, Anchor: anchor, SurfaceDepthMultiplier: surfaceDepthMultiplier, AddStoneDepth: addStoneDepth}
}

// Water holds where there is no water above the block or the block lies at or
// above the water level plus offset and the surface depth times the multiplier.
func Water(offset, surfaceDepthMultiplier int, addStoneDepth bool) *ConditionDef {
	return &ConditionDef{Kind: CondWater, Offset: offset, SurfaceDepthMultiplier: surfaceDepthMultiplier, AddStoneDepth: addStoneDepth}
}

// Temperature holds where the biome is cold enough to snow.
func Temperature() *ConditionDef { return &ConditionDef{Kind: CondTemperature} }

// Steep holds on steep slopes facing north or east.
func Steep() *ConditionDef { return &ConditionDef{Kind: CondSteep} }

// Not inverts a condition.
func Not(c *ConditionDef) *ConditionDef { return &ConditionDef{Kind: CondNot, Invert: c} }

// Hole holds where the surface depth is zero or less.
func Hole() *ConditionDef { return &ConditionDef{Kind: CondHole} }

// AbovePreliminarySurface holds at and above the minimum surface level of the
// column.
func AbovePreliminarySurface() *ConditionDef {
	return &ConditionDef{Kind: CondAbovePreliminarySurface}
}

// StoneDepth holds where the number of solid blocks between the block and the
// surface is at most 1 + offset, plus the surface depth if addSurfaceDepth is
// set and a share of secondaryDepthRange given by the secondary surface noise.
func StoneDepth(offset int, addSurfaceDepth bool, secondaryDepthRange int, surface CaveSurface) *ConditionDef {
	return &ConditionDef{Kind: CondStoneDepth, Offset: offset, AddSurfaceDepth: addSurfaceDepth, SecondaryDepthRange: secondaryDepthRange, Surface: surface}
}

// Func wraps a Go predicate.
func Func(f func(*Context) bool) *ConditionDef { return &ConditionDef{Kind: CondFunc, Func: f} }

// Needs lists the inputs of a Context that a rule reads.
type Needs struct {
	SurfaceDepth       bool
	SurfaceSecondary   bool
	Biome              bool
	PreliminarySurface bool
	Steep              bool
}

func (n Needs) or(o Needs) Needs {
	return Needs{
		SurfaceDepth:       n.SurfaceDepth || o.SurfaceDepth,
		SurfaceSecondary:   n.SurfaceSecondary || o.SurfaceSecondary,
		Biome:              n.Biome || o.Biome,
		PreliminarySurface: n.PreliminarySurface || o.PreliminarySurface,
		Steep:              n.Steep || o.Steep,
	}
}

// Needs reports which inputs the rule reads, so that generators only compute
// those.
func (d *Def) Needs() Needs {
	if d == nil {
		return Needs{}
	}
	var n Needs
	switch d.Kind {
	case RuleSequence:
		for _, c := range d.Sequence {
			n = n.or(c.Needs())
		}
	case RuleCondition:
		n = d.If.needs().or(d.Then.Needs())
	}
	return n
}

func (c *ConditionDef) needs() Needs {
	if c == nil {
		return Needs{}
	}
	switch c.Kind {
	case CondBiome, CondTemperature:
		return Needs{Biome: true}
	case CondYAbove, CondWater:
		return Needs{SurfaceDepth: c.SurfaceDepthMultiplier != 0}
	case CondSteep:
		return Needs{Steep: true}
	case CondNot:
		return c.Invert.needs()
	case CondHole:
		return Needs{SurfaceDepth: true}
	case CondAbovePreliminarySurface:
		return Needs{SurfaceDepth: true, PreliminarySurface: true}
	case CondStoneDepth:
		return Needs{SurfaceDepth: c.AddSurfaceDepth, SurfaceSecondary: c.SecondaryDepthRange != 0}
	case CondFunc:
		return Needs{SurfaceDepth: true, SurfaceSecondary: true, Biome: true, PreliminarySurface: true, Steep: true}
	}
	return Needs{}
}
