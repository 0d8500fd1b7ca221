// Package density implements density functions: trees of noise samples and
// arithmetic that decide, for every block position, how solid the terrain is.
//
// Functions are described by Def trees, compiled by a Builder into a flat Graph
// in which named functions are shared, bound to the noises of a seed to form a
// Sampler, and evaluated with a per goroutine Context that holds the caches of
// the chunk being generated.
package density

import "fmt"

// Kind is the kind of a density function.
type Kind uint8

const (
	KindConstant Kind = iota
	KindReference
	KindNoise
	KindShiftedNoise
	KindShiftA
	KindShiftB
	KindShift
	KindAdd
	KindMul
	KindMin
	KindMax
	KindClamp
	KindAbs
	KindSquare
	KindCube
	KindHalfNegative
	KindQuarterNegative
	KindSqueeze
	KindYClampedGradient
	KindRangeChoice
	KindSpline
	KindInterpolated
	KindFlatCache
	KindCache2D
	KindCacheOnce
	KindCacheAllInCell
	KindBlendAlpha
	KindBlendOffset
	KindBlendDensity
	KindBeardifier
	KindWeirdScaledSampler
	KindFunc
	kindCount
)

var kindNames = [...]string{
	KindConstant:           "constant",
	KindReference:          "reference",
	KindNoise:              "noise",
	KindShiftedNoise:       "shifted_noise",
	KindShiftA:             "shift_a",
	KindShiftB:             "shift_b",
	KindShift:              "shift",
	KindAdd:                "add",
	KindMul:                "mul",
	KindMin:                "min",
	KindMax:                "max",
	KindClamp:              "clamp",
	KindAbs:                "abs",
	KindSquare:             "square",
	KindCube:               "cube",
	KindHalfNegative:       "half_negative",
	KindQuarterNegative:    "quarter_negative",
	KindSqueeze:            "squeeze",
	KindYClampedGradient:   "y_clamped_gradient",
	KindRangeChoice:        "range_choice",
	KindSpline:             "spline",
	KindInterpolated:       "interpolated",
	KindFlatCache:          "flat_cache",
	KindCache2D:            "cache_2d",
	KindCacheOnce:          "cache_once",
	KindCacheAllInCell:     "cache_all_in_cell",
	KindBlendAlpha:         "blend_alpha",
	KindBlendOffset:        "blend_offset",
	KindBlendDensity:       "blend_density",
	KindBeardifier:         "beardifier",
	KindWeirdScaledSampler: "weird_scaled_sampler",
	KindFunc:               "func",
}

// String returns the name of the kind as used in datapacks.
func (k Kind) String() string {
	if k < kindCount {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// RarityMapper maps the input of a weird scaled sampler to a scale for its noise.
type RarityMapper uint8

const (
	// RarityType1 is the mapper used by 3D spaghetti caves.
	RarityType1 RarityMapper = iota + 1
	// RarityType2 is the mapper used by 2D spaghetti caves.
	RarityType2
)

func (m RarityMapper) rarity(v float64) float64 {
	if m == RarityType2 {
		switch {
		case v < -0.75:
			return 0.5
		case v < -0.5:
			return 0.75
		case v < 0.5:
			return 1
		case v < 0.75:
			return 2
		}
		return 3
	}
	switch {
	case v < -0.5:
		return 0.75
	case v < 0:
		return 1
	case v < 0.5:
		return 1.5
	}
	return 2
}

// Pos is a block position.
type Pos struct {
	X, Y, Z int
}

// Def is the parsed form of a density function. Only the fields used by Kind
// are read. Defs may share subtrees; cycles are only allowed through named
// references, where they are reported by the Builder.
type Def struct {
	Kind Kind

	// Value is the value of a constant.
	Value float64
	// Ref is the name of the function a reference points to.
	Ref string
	// Noise is the name of the noise sampled by noise kinds.
	Noise string
	// XZScale and YScale scale the coordinates passed to a noise.
	XZScale, YScale float64

	// Argument is the single argument of unary kinds and markers, the first
	// argument of binary kinds and the input of clamp, range choice and weird
	// scaled samplers.
	Argument  *Def
	Argument2 *Def

	WhenInRange, WhenOutOfRange *Def
	ShiftX, ShiftY, ShiftZ      *Def

	// Min and Max bound clamps and range choices.
	Min, Max float64

	FromY, ToY         int
	FromValue, ToValue float64

	Spline *SplineDef
	Rarity RarityMapper
	Func   func(Pos) float64
}

// SplineDef is the parsed form of a spline. Either Ref names a shared spline or
// Points describe the spline inline. An inline spline nested in another without
// a Coordinate reads the coordinate of its parent.
type SplineDef struct {
	Ref        string
	Coordinate *Def
	Points     []SplinePointDef
}

// SplinePointDef is a control point of a SplineDef. The value is Spline when it
// is set and Value otherwise.
type SplinePointDef struct {
	Location   float32
	Value      float32
	Spline     *SplineDef
	Derivative float32
}

// Constant returns a function with the same value everywhere.
func Constant(v float64) *Def { return &Def{Kind: KindConstant, Value: v} }

// Ref returns a reference to a named function.
func Ref(name string) *Def { return &Def{Kind: KindReference, Ref: name} }

// Noise samples a noise at the block position scaled by xz and y.
func Noise(name string, xzScale, yScale float64) *Def {
	return &Def{Kind: KindNoise, Noise: name, XZScale: xzScale, YScale: yScale}
}

// ShiftedNoise samples a noise at the scaled block position offset by three
// shift functions.
func ShiftedNoise(name string, xzScale, yScale float64, shiftX, shiftY, shiftZ *Def) *Def {
	return &Def{Kind: KindShiftedNoise, Noise: name, XZScale: xzScale, YScale: yScale, ShiftX: shiftX, ShiftY: shiftY, ShiftZ: shiftZ}
}

// ShiftA returns 4*n(x/4, 0, z/4).
func ShiftA(name string) *Def { return &Def{Kind: KindShiftA, Noise: name} }

// ShiftB returns 4*n(z/4, x/4, 0).
func ShiftB(name string) *Def { return &Def{Kind: KindShiftB, Noise: name} }

// Shift returns 4*n(x/4, y/4, z/4).
func Shift(name string) *Def { return &Def{Kind: KindShift, Noise: name} }

func binary(k Kind, a, b *Def) *Def { return &Def{Kind: k, Argument: a, Argument2: b} }
func unary(k Kind, a *Def) *Def     { return &Def{Kind: k, Argument: a} }

func Add(a, b *Def) *Def { return binary(KindAdd, a, b) }
func Mul(a, b *Def) *Def { return binary(KindMul, a, b) }
func Min(a, b *Def) *Def { return binary(KindMin, a, b) }
func Max(a, b *Def) *Def { return binary(KindMax, a, b) }

// Clamp clamps input to [lo, hi].
func Clamp(input *Def, lo, hi float64) *Def {
	return &Def{Kind: KindClamp, Argument: input, Min: lo, Max: hi}
}

func Abs(a *Def) *Def             { return unary(KindAbs, a) }
func Square(a *Def) *Def          { return unary(KindSquare, a) }
func Cube(a *Def) *Def            { return unary(KindCube, a) }
func HalfNegative(a *Def) *Def    { return unary(KindHalfNegative, a) }
func QuarterNegative(a *Def) *Def { return unary(KindQuarterNegative, a) }
func Squeeze(a *Def) *Def         { return unary(KindSqueeze, a) }

// YClampedGradient ramps linearly from fromValue at fromY to toValue at toY and
// is constant outside that range.
func YClampedGradient(fromY, toY int, fromValue, toValue float64) *Def {
	return &Def{Kind: KindYClampedGradient, FromY: fromY, ToY: toY, FromValue: fromValue, ToValue: toValue}
}

// RangeChoice returns whenInRange where input lies in [lo, hi) and
// whenOutOfRange elsewhere.
func RangeChoice(input *Def, lo, hi float64, whenInRange, whenOutOfRange *Def) *Def {
	return &Def{Kind: KindRangeChoice, Argument: input, Min: lo, Max: hi, WhenInRange: whenInRange, WhenOutOfRange: whenOutOfRange}
}

// Spline evaluates a spline.
func Spline(s *SplineDef) *Def { return &Def{Kind: KindSpline, Spline: s} }

func Interpolated(a *Def) *Def   { return unary(KindInterpolated, a) }
func FlatCache(a *Def) *Def      { return unary(KindFlatCache, a) }
func Cache2D(a *Def) *Def        { return unary(KindCache2D, a) }
func CacheOnce(a *Def) *Def      { return unary(KindCacheOnce, a) }
func CacheAllInCell(a *Def) *Def { return unary(KindCacheAllInCell, a) }
func BlendAlpha() *Def           { return &Def{Kind: KindBlendAlpha} }
func BlendOffset() *Def          { return &Def{Kind: KindBlendOffset} }
func BlendDensity(a *Def) *Def   { return unary(KindBlendDensity, a) }
func Beardifier() *Def           { return &Def{Kind: KindBeardifier} }

// WeirdScaledSampler returns rarity*|n(x/rarity, y/rarity, z/rarity)| where
// rarity is derived from input by the mapper.
func WeirdScaledSampler(input *Def, name string, mapper RarityMapper) *Def {
	return &Def{Kind: KindWeirdScaledSampler, Argument: input, Noise: name, Rarity: mapper}
}

// Func wraps a Go function. The function must be pure and safe for concurrent
// use.
func Func(f func(Pos) float64) *Def { return &Def{Kind: KindFunc, Func: f} }
