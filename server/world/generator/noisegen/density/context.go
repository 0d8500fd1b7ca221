package density

import (
	"math"

	"github.com/brentp/intintmap"
)

// Blender blends generated density with existing terrain at the borders of
// previously generated chunks.
type Blender interface {
	Alpha(x, z int) float64
	Offset(x, z int) float64
	Density(p Pos, density float64) float64
}

// StructureDensity adds density around structures.
type StructureDensity interface {
	Compute(p Pos) float64
}

// Region is a box of block positions.
type Region struct {
	MinX, MinZ, SizeX, SizeZ int
	MinY, Height             int
}

// Context holds the state of evaluating density functions for a single chunk:
// the cell layout used by interpolated nodes and the memoised values of cache
// nodes. A Context must only be used by one goroutine at a time.
//
// Cached positions are packed into 64-bit keys: 22 bits per horizontal
// coordinate for 2D caches, 18 bits per horizontal coordinate and 12 bits for y
// for 3D caches. Positions cached between two calls to Reset must therefore lie
// within 2^17 blocks of each other.
type Context struct {
	CellWidth, CellHeight int

	Blender    Blender
	Structures StructureDensity

	// point is set while evaluating a single position outside of a chunk pass.
	point bool

	flat    *intintmap.Map
	cells   *intintmap.Map
	corners *intintmap.Map
}

const (
	initialCacheSize = 1024
	cacheFillFactor  = 0.6
)

// NewContext returns a Context for noise cells of the size passed. Cells are
// aligned to multiples of their size in world coordinates.
func NewContext(cellWidth, cellHeight int) *Context {
	c := &Context{CellWidth: cellWidth, CellHeight: cellHeight}
	c.Reset()
	return c
}

// Reset drops every memoised value.
func (c *Context) Reset() {
	c.flat = intintmap.New(initialCacheSize, cacheFillFactor)
	c.cells = intintmap.New(initialCacheSize, cacheFillFactor)
	c.corners = intintmap.New(initialCacheSize, cacheFillFactor)
}

func key2D(id NodeID, x, z int) int64 {
	const mask = 1<<22 - 1
	return int64(uint64(id)<<44 | (uint64(x)&mask)<<22 | uint64(z)&mask)
}

func key3D(id NodeID, p Pos) int64 {
	const (
		xzMask = 1<<18 - 1
		yMask  = 1<<12 - 1
	)
	return int64(uint64(id)<<48 | (uint64(p.X)&xzMask)<<30 | (uint64(p.Y)&yMask)<<18 | uint64(p.Z)&xzMask)
}

func memo(m *intintmap.Map, key int64, compute func() float64) float64 {
	if bits, ok := m.Get(key); ok {
		return math.Float64frombits(uint64(bits))
	}
	v := compute()
	m.Put(key, int64(math.Float64bits(v)))
	return v
}

func (c *Context) memo2D(id NodeID, x, z int, compute func() float64) float64 {
	return memo(c.flat, key2D(id, x, z), compute)
}

func (c *Context) memo3D(id NodeID, p Pos, compute func() float64) float64 {
	return memo(c.cells, key3D(id, p), compute)
}

func (c *Context) memoCorner(id NodeID, p Pos, compute func() float64) float64 {
	return memo(c.corners, key3D(id, p), compute)
}
