// Package registry maps block state and biome identifiers to the handles used by
// the world generator.
package registry

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// ErrUnknownBlock is returned when a block state identifier is not registered.
var ErrUnknownBlock = errors.New("unknown block")

// BlockState is a handle to a registered block state. The zero value is air.
type BlockState uint32

// Air is the handle of minecraft:air.
const Air BlockState = 0

// Registry interns block state identifiers. Lookups are safe for concurrent use,
// also while blocks are being registered.
type Registry struct {
	mu    sync.RWMutex
	names []string
	ids   map[string]BlockState
}

// New returns a Registry with only air registered.
func New() *Registry {
	return &Registry{names: []string{"minecraft:air"}, ids: map[string]BlockState{"minecraft:air": Air}}
}

// Vanilla returns a Registry with the block states used by the vanilla surface
// rules registered.
func Vanilla() *Registry {
	r := New()
	for _, id := range vanillaBlocks {
		r.Register(id)
	}
	return r
}

// Register interns the identifier passed and returns its handle. Registering an
// identifier twice returns the same handle.
func (r *Registry) Register(id string) BlockState {
	id = Normalise(id)

	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.ids[id]; ok {
		return s
	}
	s := BlockState(len(r.names))
	r.names = append(r.names, id)
	r.ids[id] = s
	return s
}

// Block looks up the handle of a registered identifier.
func (r *Registry) Block(id string) (BlockState, error) {
	id = Normalise(id)

	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.ids[id]
	if !ok {
		return 0, fmt.Errorf("%w %q", ErrUnknownBlock, id)
	}
	return s, nil
}

// MustBlock looks up a registered identifier and panics if it is unknown.
func (r *Registry) MustBlock(id string) BlockState {
	s, err := r.Block(id)
	if err != nil {
		panic(err)
	}
	return s
}

// Name returns the identifier of a handle, or an empty string if it was never
// registered.
func (r *Registry) Name(s BlockState) string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if int(s) >= len(r.names) {
		return ""
	}
	return r.names[s]
}

// Len returns the number of registered block states.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.names)
}

// Normalise returns the canonical form of a block state identifier: the
// minecraft namespace is added when absent and properties are sorted by name.
func Normalise(id string) string {
	name, props, hasProps := strings.Cut(strings.TrimSpace(id), "[")
	if !strings.Contains(name, ":") {
		name = "minecraft:" + name
	}
	if !hasProps {
		return name
	}
	props = strings.TrimSuffix(props, "]")
	if props == "" {
		return name
	}
	parts := strings.Split(props, ",")
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
	}
	sort.Strings(parts)
	return name + "[" + strings.Join(parts, ",") + "]"
}

// StateID builds a block state identifier from a name and its properties.
func StateID(name string, properties map[string]string) string {
	if len(properties) == 0 {
		return Normalise(name)
	}
	parts := make([]string, 0, len(properties))
	for k, v := range properties {
		parts = append(parts, k+"="+v)
	}
	return Normalise(name + "[" + strings.Join(parts, ",") + "]")
}

var vanillaBlocks = []string{
	"minecraft:stone",
	"minecraft:deepslate[axis=y]",
	"minecraft:bedrock",
	"minecraft:water[level=0]",
	"minecraft:lava[level=0]",
	"minecraft:netherrack",
	"minecraft:end_stone",
	"minecraft:grass_block[snowy=false]",
	"minecraft:dirt",
	"minecraft:coarse_dirt",
	"minecraft:podzol[snowy=false]",
	"minecraft:mycelium[snowy=false]",
	"minecraft:mud",
	"minecraft:sand",
	"minecraft:red_sand",
	"minecraft:sandstone",
	"minecraft:red_sandstone",
	"minecraft:gravel",
	"minecraft:clay",
	"minecraft:calcite",
	"minecraft:snow_block",
	"minecraft:powder_snow",
	"minecraft:ice",
	"minecraft:packed_ice",
	"minecraft:terracotta",
	"minecraft:white_terracotta",
	"minecraft:orange_terracotta",
	"minecraft:yellow_terracotta",
	"minecraft:brown_terracotta",
	"minecraft:red_terracotta",
	"minecraft:light_gray_terracotta",
	"minecraft:soul_sand",
	"minecraft:soul_soil",
	"minecraft:basalt[axis=y]",
	"minecraft:blackstone",
	"minecraft:warped_nylium",
	"minecraft:crimson_nylium",
	"minecraft:nether_wart_block",
	"minecraft:warped_wart_block",
}
