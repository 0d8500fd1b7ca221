package datapack

import (
	"encoding/json"
	"fmt"

	"github.com/dm-vev/adamant-worldgen/server/world/generator/noisegen/density"
)

// decodeDensity decodes a density function. Numbers are constants, strings
// reference named functions and objects are typed functions.
func decodeDensity(raw json.RawMessage) (*density.Def, error) {
	switch leading(raw) {
	case '"':
		var name string
		if err := json.Unmarshal(raw, &name); err != nil {
			return nil, err
		}
		return density.Ref(resourceName(name)), nil
	case '{':
		return decodeDensityObject(raw)
	}
	var v float64
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, fmt.Errorf("density function: %w", err)
	}
	return density.Constant(v), nil
}

func decodeDensityObject(raw json.RawMessage) (*density.Def, error) {
	o, err := decodeObject(raw)
	if err != nil {
		return nil, err
	}
	fn := func(key string) *density.Def {
		r := o.raw(key)
		if o.err != nil {
			return nil
		}
		d, err := decodeDensity(r)
		if err != nil {
			o.fail(fmt.Errorf("%v: field %q: %w", o.kind, key, err))
		}
		return d
	}
	noiseName := func(key string) string { return resourceName(o.string(key)) }

	var d *density.Def
	switch o.kind {
	case "minecraft:constant":
		d = density.Constant(o.float("argument"))
	case "minecraft:add":
		d = density.Add(fn("argument1"), fn("argument2"))
	case "minecraft:mul":
		d = density.Mul(fn("argument1"), fn("argument2"))
	case "minecraft:min":
		d = density.Min(fn("argument1"), fn("argument2"))
	case "minecraft:max":
		d = density.Max(fn("argument1"), fn("argument2"))
	case "minecraft:abs":
		d = density.Abs(fn("argument"))
	case "minecraft:square":
		d = density.Square(fn("argument"))
	case "minecraft:cube":
		d = density.Cube(fn("argument"))
	case "minecraft:half_negative":
		d = density.HalfNegative(fn("argument"))
	case "minecraft:quarter_negative":
		d = density.QuarterNegative(fn("argument"))
	case "minecraft:squeeze":
		d = density.Squeeze(fn("argument"))
	case "minecraft:clamp":
		d = density.Clamp(fn("input"), o.float("min"), o.float("max"))
	case "minecraft:noise":
		d = density.Noise(noiseName("noise"), o.float("xz_scale"), o.float("y_scale"))
	case "minecraft:shifted_noise":
		d = density.ShiftedNoise(noiseName("noise"), o.float("xz_scale"), o.float("y_scale"),
			fn("shift_x"), fn("shift_y"), fn("shift_z"))
	case "minecraft:shift_a":
		d = density.ShiftA(noiseName("argument"))
	case "minecraft:shift_b":
		d = density.ShiftB(noiseName("argument"))
	case "minecraft:shift":
		d = density.Shift(noiseName("argument"))
	case "minecraft:y_clamped_gradient":
		d = density.YClampedGradient(o.int("from_y"), o.int("to_y"), o.float("from_value"), o.float("to_value"))
	case "minecraft:range_choice":
		d = density.RangeChoice(fn("input"), o.float("min_inclusive"), o.float("max_exclusive"),
			fn("when_in_range"), fn("when_out_of_range"))
	case "minecraft:spline":
		r := o.raw("spline")
		if o.err != nil {
			break
		}
		s, err := decodeSpline(r)
		if err != nil {
			return nil, fmt.Errorf("%v: %w", o.kind, err)
		}
		d = density.Spline(s)
	case "minecraft:interpolated":
		d = density.Interpolated(fn("argument"))
	case "minecraft:flat_cache":
		d = density.FlatCache(fn("argument"))
	case "minecraft:cache_2d":
		d = density.Cache2D(fn("argument"))
	case "minecraft:cache_once":
		d = density.CacheOnce(fn("argument"))
	case "minecraft:cache_all_in_cell":
		d = density.CacheAllInCell(fn("argument"))
	case "minecraft:blend_alpha":
		d = density.BlendAlpha()
	case "minecraft:blend_offset":
		d = density.BlendOffset()
	case "minecraft:blend_density":
		d = density.BlendDensity(fn("argument"))
	case "minecraft:beardifier":
		d = density.Beardifier()
	case "minecraft:weird_scaled_sampler":
		var mapper density.RarityMapper
		switch m := o.string("rarity_value_mapper"); m {
		case "type_1":
			mapper = density.RarityType1
		case "type_2":
			mapper = density.RarityType2
		default:
			o.fail(fmt.Errorf("%v: unknown rarity value mapper %q", o.kind, m))
		}
		d = density.WeirdScaledSampler(fn("input"), noiseName("noise"), mapper)
	case "minecraft:old_blended_noise", "minecraft:end_islands":
		return nil, fmt.Errorf("%w %v", density.ErrUnsupported, o.kind)
	default:
		return nil, fmt.Errorf("%w %q", density.ErrUnsupported, o.kind)
	}
	if err := o.done(); err != nil {
		return nil, err
	}
	return d, nil
}

// decodeSpline decodes a spline. Numbers are constant splines, strings
// reference named splines and objects list their points.
func decodeSpline(raw json.RawMessage) (*density.SplineDef, error) {
	switch leading(raw) {
	case '"':
		var name string
		if err := json.Unmarshal(raw, &name); err != nil {
			return nil, err
		}
		return &density.SplineDef{Ref: resourceName(name)}, nil
	case '{':
	default:
		var v float32
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, fmt.Errorf("spline: %w", err)
		}
		return &density.SplineDef{
			Coordinate: density.Constant(0),
			Points:     []density.SplinePointDef{{Value: v}},
		}, nil
	}

	var doc struct {
		Coordinate json.RawMessage `json:"coordinate"`
		Points     []struct {
			Location   float32         `json:"location"`
			Value      json.RawMessage `json:"value"`
			Derivative float32         `json:"derivative"`
		} `json:"points"`
	}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("spline: %w", err)
	}
	s := &density.SplineDef{Points: make([]density.SplinePointDef, len(doc.Points))}
	if doc.Coordinate != nil {
		c, err := decodeDensity(doc.Coordinate)
		if err != nil {
			return nil, fmt.Errorf("spline coordinate: %w", err)
		}
		s.Coordinate = c
	}
	for i, p := range doc.Points {
		s.Points[i] = density.SplinePointDef{Location: p.Location, Derivative: p.Derivative}
		if leading(p.Value) == '{' || leading(p.Value) == '"' {
			nested, err := decodeSpline(p.Value)
			if err != nil {
				return nil, fmt.Errorf("spline point %d: %w", i, err)
			}
			s.Points[i].Spline = nested
			continue
		}
		if err := json.Unmarshal(p.Value, &s.Points[i].Value); err != nil {
			return nil, fmt.Errorf("spline point %d: %w", i, err)
		}
	}
	return s, nil
}
