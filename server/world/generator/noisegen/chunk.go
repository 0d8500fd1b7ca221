package noisegen

import (
	"encoding/binary"
	"fmt"

	"github.com/cespare/xxhash/v2"
	"github.com/dm-vev/adamant-worldgen/server/world/registry"
)

// ChunkPos holds the position of a chunk. The type is provided as a utility
// struct for keeping track of a chunk's position. Chunks do not themselves keep
// track of that.
type ChunkPos [2]int32

// X returns the X coordinate of the chunk position.
func (p ChunkPos) X() int32 { return p[0] }

// Z returns the Z coordinate of the chunk position.
func (p ChunkPos) Z() int32 { return p[1] }

// String implements fmt.Stringer and returns (x, z).
func (p ChunkPos) String() string {
	return fmt.Sprintf("(%v, %v)", p[0], p[1])
}

// Chunk holds the blocks of a 16 wide column of terrain. Blocks are stored
// column by column, each column contiguous from the bottom to the top.
type Chunk struct {
	pos          ChunkPos
	minY, height int
	blocks       []registry.BlockState
}

// NewChunk returns a chunk filled with air.
func NewChunk(pos ChunkPos, minY, height int) *Chunk {
	return &Chunk{pos: pos, minY: minY, height: height, blocks: make([]registry.BlockState, 256*height)}
}

// Pos returns the position of the chunk.
func (c *Chunk) Pos() ChunkPos { return c.pos }

// Range returns the lowest y of the chunk and its height.
func (c *Chunk) Range() (minY, height int) { return c.minY, c.height }

// Column returns the blocks of the column at the chunk local x and z, indexed by
// y minus the lowest y of the chunk. The slice aliases the chunk.
func (c *Chunk) Column(x, z int) []registry.BlockState {
	i := (x<<4 | z) * c.height
	return c.blocks[i : i+c.height : i+c.height]
}

// Block returns the block at the chunk local x and z and the absolute y.
func (c *Chunk) Block(x, y, z int) registry.BlockState {
	return c.Column(x, z)[y-c.minY]
}

// SetBlock sets the block at the chunk local x and z and the absolute y.
func (c *Chunk) SetBlock(x, y, z int, s registry.BlockState) {
	c.Column(x, z)[y-c.minY] = s
}

// Digest returns a hash of the blocks of the chunk.
func (c *Chunk) Digest() uint64 {
	buf := make([]byte, 4*len(c.blocks))
	for i, s := range c.blocks {
		binary.LittleEndian.PutUint32(buf[i*4:], uint32(s))
	}
	return xxhash.Sum64(buf)
}
