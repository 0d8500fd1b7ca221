// Package noise implements the seeded gradient noise fields sampled by density
// functions: single octave improved Perlin noise, multi-octave Perlin noise and
// the normalised "double" Perlin noise used for every named noise.
package noise

import (
	"github.com/dm-vev/adamant-worldgen/server/internal/mth"
	"github.com/dm-vev/adamant-worldgen/server/world/generator/noisegen/rand"
	"github.com/go-gl/mathgl/mgl64"
)

var gradients = [16][3]float64{
	{1, 1, 0}, {-1, 1, 0}, {1, -1, 0}, {-1, -1, 0},
	{1, 0, 1}, {-1, 0, 1}, {1, 0, -1}, {-1, 0, -1},
	{0, 1, 1}, {0, -1, 1}, {0, 1, -1}, {0, -1, -1},
	{1, 1, 0}, {0, -1, 1}, {-1, 1, 0}, {0, -1, -1},
}

// Improved is a single octave of improved Perlin noise. It is immutable after
// construction and safe for concurrent use.
type Improved struct {
	// Origin is the random offset added to every sampled coordinate.
	Origin mgl64.Vec3
	p      [256]byte
}

// NewImproved builds an octave from the Source passed. It draws the three origin
// offsets first and then shuffles the permutation table, one draw per entry.
func NewImproved(r rand.Source) *Improved {
	n := &Improved{}
	n.Origin[0] = r.NextDouble() * 256
	n.Origin[1] = r.NextDouble() * 256
	n.Origin[2] = r.NextDouble() * 256
	for i := range n.p {
		n.p[i] = byte(i)
	}
	for i := 0; i < 256; i++ {
		j := int(r.NextIntn(int32(256 - i)))
		n.p[i], n.p[i+j] = n.p[i+j], n.p[i]
	}
	return n
}

// Sample returns the noise value at the position passed, roughly in [-1, 1].
func (n *Improved) Sample(x, y, z float64) float64 {
	dx, dy, dz := x+n.Origin[0], y+n.Origin[1], z+n.Origin[2]
	gx, gy, gz := mth.Floor(dx), mth.Floor(dy), mth.Floor(dz)
	fx, fy, fz := dx-float64(gx), dy-float64(gy), dz-float64(gz)
	return n.sampleAndLerp(gx, gy, gz, fx, fy, fz)
}

func (n *Improved) perm(i int) int {
	return int(n.p[i&0xff])
}

func (n *Improved) sampleAndLerp(gx, gy, gz int, dx, dy, dz float64) float64 {
	i, j := n.perm(gx), n.perm(gx+1)
	k, l := n.perm(i+gy), n.perm(i+gy+1)
	m, o := n.perm(j+gy), n.perm(j+gy+1)

	v000 := gradDot(n.perm(k+gz), dx, dy, dz)
	v100 := gradDot(n.perm(m+gz), dx-1, dy, dz)
	v010 := gradDot(n.perm(l+gz), dx, dy-1, dz)
	v110 := gradDot(n.perm(o+gz), dx-1, dy-1, dz)
	v001 := gradDot(n.perm(k+gz+1), dx, dy, dz-1)
	v101 := gradDot(n.perm(m+gz+1), dx-1, dy, dz-1)
	v011 := gradDot(n.perm(l+gz+1), dx, dy-1, dz-1)
	v111 := gradDot(n.perm(o+gz+1), dx-1, dy-1, dz-1)

	return mth.Lerp3(mth.SmoothStep(dx), mth.SmoothStep(dy), mth.SmoothStep(dz), v000, v100, v010, v110, v001, v101, v011, v111)
}

func gradDot(hash int, x, y, z float64) float64 {
	g := gradients[hash&15]
	return float64(g[0]*x) + float64(g[1]*y) + float64(g[2]*z)
}
