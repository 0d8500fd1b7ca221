package chunkstore

import (
	"errors"
	"fmt"

	"github.com/dm-vev/adamant-worldgen/server/world/generator/noisegen"
	"github.com/dm-vev/adamant-worldgen/server/world/registry"
	"github.com/sandertv/gophertunnel/minecraft/nbt"
)

// version is the version of the NBT layout of stored chunks.
const version = 1

var (
	// ErrUnsupportedVersion is returned when loading chunks stored by a newer
	// layout.
	ErrUnsupportedVersion = errors.New("unsupported chunk version")
	// ErrCorrupt is returned for chunks whose data does not describe a valid
	// chunk.
	ErrCorrupt = errors.New("corrupt chunk")
)

// chunkData is the NBT form of a chunk. Blocks holds one palette index per
// block in the column major order of noisegen.Chunk.
type chunkData struct {
	Version int32    `nbt:"version"`
	X       int32    `nbt:"x"`
	Z       int32    `nbt:"z"`
	MinY    int32    `nbt:"min_y"`
	Height  int32    `nbt:"height"`
	Palette []string `nbt:"palette"`
	Blocks  []int32  `nbt:"blocks"`
}

func (db *DB) encode(c *noisegen.Chunk) ([]byte, error) {
	minY, height := c.Range()
	d := chunkData{
		Version: version,
		X:       c.Pos().X(),
		Z:       c.Pos().Z(),
		MinY:    int32(minY),
		Height:  int32(height),
		Blocks:  make([]int32, 0, 256*height),
	}
	indices := make(map[registry.BlockState]int32)
	for x := 0; x < 16; x++ {
		for z := 0; z < 16; z++ {
			for _, s := range c.Column(x, z) {
				i, ok := indices[s]
				if !ok {
					i = int32(len(d.Palette))
					indices[s] = i
					d.Palette = append(d.Palette, db.conf.Blocks.Name(s))
				}
				d.Blocks = append(d.Blocks, i)
			}
		}
	}
	data, err := nbt.MarshalEncoding(d, nbt.LittleEndian)
	if err != nil {
		return nil, err
	}
	return db.enc.EncodeAll(data, nil), nil
}

func (db *DB) decode(pos noisegen.ChunkPos, data []byte) (*noisegen.Chunk, error) {
	raw, err := db.dec.DecodeAll(data, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorrupt, err)
	}
	var d chunkData
	if err := nbt.UnmarshalEncoding(raw, &d, nbt.LittleEndian); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorrupt, err)
	}
	if d.Version > version {
		return nil, fmt.Errorf("%w %v", ErrUnsupportedVersion, d.Version)
	}
	if d.X != pos.X() || d.Z != pos.Z() || d.Height <= 0 || len(d.Blocks) != 256*int(d.Height) {
		return nil, fmt.Errorf("%w: chunk %v,%v with %v blocks stored at %v", ErrCorrupt, d.X, d.Z, len(d.Blocks), pos)
	}
	states := make([]registry.BlockState, len(d.Palette))
	for i, name := range d.Palette {
		if states[i], err = db.conf.Blocks.Block(name); err != nil {
			return nil, err
		}
	}
	c := noisegen.NewChunk(pos, int(d.MinY), int(d.Height))
	i := 0
	for x := 0; x < 16; x++ {
		for z := 0; z < 16; z++ {
			col := c.Column(x, z)
			for y := range col {
				p := d.Blocks[i]
				if p < 0 || int(p) >= len(states) {
					return nil, fmt.Errorf("%w: palette index %v out of range", ErrCorrupt, p)
				}
				col[y] = states[p]
				i++
			}
		}
	}
	return c, nil
}
