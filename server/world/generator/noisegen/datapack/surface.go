package datapack

import (
	"encoding/json"
	"fmt"

	"github.com/dm-vev/adamant-worldgen/server/world/generator/noisegen/density"
	"github.com/dm-vev/adamant-worldgen/server/world/generator/noisegen/surface"
	"github.com/dm-vev/adamant-worldgen/server/world/registry"
)

type blockState struct {
	Name       string            `json:"Name"`
	Properties map[string]string `json:"Properties"`
}

func (b blockState) id() string { return registry.StateID(b.Name, b.Properties) }

func decodeRule(raw json.RawMessage) (*surface.Def, error) {
	o, err := decodeObject(raw)
	if err != nil {
		return nil, fmt.Errorf("surface rule: %w", err)
	}
	switch o.kind {
	case "minecraft:sequence":
		var children []json.RawMessage
		o.decode("sequence", &children)
		if err := o.done(); err != nil {
			return nil, err
		}
		rules := make([]*surface.Def, len(children))
		for i, c := range children {
			if rules[i], err = decodeRule(c); err != nil {
				return nil, fmt.Errorf("sequence %d: %w", i, err)
			}
		}
		return surface.Sequence(rules...), nil
	case "minecraft:condition":
		ifTrue, thenRun := o.raw("if_true"), o.raw("then_run")
		if err := o.done(); err != nil {
			return nil, err
		}
		c, err := decodeCondition(ifTrue)
		if err != nil {
			return nil, err
		}
		r, err := decodeRule(thenRun)
		if err != nil {
			return nil, err
		}
		return surface.IfTrue(c, r), nil
	case "minecraft:block":
		var state blockState
		o.decode("result_state", &state)
		if err := o.done(); err != nil {
			return nil, err
		}
		return surface.Block(state.id()), nil
	}
	return nil, fmt.Errorf("%w: surface rule %q", density.ErrUnsupported, o.kind)
}

func decodeCondition(raw json.RawMessage) (*surface.ConditionDef, error) {
	o, err := decodeObject(raw)
	if err != nil {
		return nil, fmt.Errorf("surface condition: %w", err)
	}
	anchor := func(key string) surface.Anchor {
		var m map[string]int
		o.decode(key, &m)
		if len(m) != 1 && o.err == nil {
			o.fail(fmt.Errorf("%v: field %q: anchor must have exactly one key", o.kind, key))
		}
		for k, v := range m {
			switch k {
			case "absolute":
				return surface.Anchor{Kind: surface.Absolute, Value: v}
			case "above_bottom":
				return surface.Anchor{Kind: surface.AboveBottom, Value: v}
			case "below_top":
				return surface.Anchor{Kind: surface.BelowTop, Value: v}
			}
			o.fail(fmt.Errorf("%v: field %q: unknown anchor %q", o.kind, key, k))
		}
		return surface.Anchor{}
	}

	var c *surface.ConditionDef
	switch o.kind {
	case "minecraft:biome":
		var names []string
		o.decode("biome_is", &names)
		for i, n := range names {
			names[i] = resourceName(n)
		}
		c = surface.BiomeIs(names...)
	case "minecraft:noise_threshold":
		c = surface.NoiseThreshold(resourceName(o.string("noise")), o.float("min_threshold"), o.float("max_threshold"))
	case "minecraft:vertical_gradient":
		c = surface.VerticalGradient(resourceName(o.string("random_name")), anchor("true_at_and_below"), anchor("false_at_and_above"))
	case "minecraft:y_above":
		var add bool
		o.optional("add_stone_depth", &add)
		c = surface.YAbove(anchor("anchor"), o.int("surface_depth_multiplier"), add)
	case "minecraft:water":
		var add bool
		o.optional("add_stone_depth", &add)
		c = surface.Water(o.int("offset"), o.int("surface_depth_multiplier"), add)
	case "minecraft:temperature":
		c = surface.Temperature()
	case "minecraft:steep":
		c = surface.Steep()
	case "minecraft:hole":
		c = surface.Hole()
	case "minecraft:above_preliminary_surface":
		c = surface.AbovePreliminarySurface()
	case "minecraft:not":
		inner, err := decodeCondition(o.raw("invert"))
		if o.err == nil && err != nil {
			return nil, fmt.Errorf("not: %w", err)
		}
		c = surface.Not(inner)
	case "minecraft:stone_depth":
		var add bool
		var secondary int
		o.optional("add_surface_depth", &add)
		o.optional("secondary_depth_range", &secondary)
		var cave surface.CaveSurface
		switch t := o.string("surface_type"); t {
		case "floor":
		case "ceiling":
			cave = surface.Ceiling
		default:
			o.fail(fmt.Errorf("%v: unknown surface type %q", o.kind, t))
		}
		c = surface.StoneDepth(o.int("offset"), add, secondary, cave)
	default:
		return nil, fmt.Errorf("%w: surface condition %q", density.ErrUnsupported, o.kind)
	}
	if err := o.done(); err != nil {
		return nil, err
	}
	return c, nil
}
