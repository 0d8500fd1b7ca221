// Package mth implements the small numeric helpers shared by the noise based
// world generator. The helpers keep a fixed operation order so that results agree
// to the last bit on every platform. Products are converted explicitly, which
// rounds them and keeps the compiler from fusing them into FMA instructions.
package mth

import (
	"math"

	"golang.org/x/exp/constraints"
)

// Lerp linearly interpolates between a and b using delta t.
func Lerp[T constraints.Float](t, a, b T) T {
	return a + T(t*(b-a))
}

// Lerp2 interpolates bilinearly between four corner values. The x axis is
// interpolated first.
func Lerp2[T constraints.Float](tx, ty, x0y0, x1y0, x0y1, x1y1 T) T {
	return Lerp(ty, Lerp(tx, x0y0, x1y0), Lerp(tx, x0y1, x1y1))
}

// Lerp3 interpolates trilinearly between eight corner values, ordered x fastest,
// then y, then z.
func Lerp3[T constraints.Float](tx, ty, tz, v000, v100, v010, v110, v001, v101, v011, v111 T) T {
	return Lerp(tz, Lerp2(tx, ty, v000, v100, v010, v110), Lerp2(tx, ty, v001, v101, v011, v111))
}

// InverseLerp returns the delta at which v lies between a and b.
func InverseLerp[T constraints.Float](v, a, b T) T {
	return (v - a) / (b - a)
}

// Map maps v from the range [fromA, fromB] onto [toA, toB] without clamping.
func Map[T constraints.Float](v, fromA, fromB, toA, toB T) T {
	return Lerp(InverseLerp(v, fromA, fromB), toA, toB)
}

// ClampedMap maps v from [fromA, fromB] onto [toA, toB], clamping the delta to
// [0, 1] first.
func ClampedMap[T constraints.Float](v, fromA, fromB, toA, toB T) T {
	t := InverseLerp(v, fromA, fromB)
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	return Lerp(t, toA, toB)
}

// SmoothStep is the quintic fade curve 6t^5 - 15t^4 + 10t^3.
func SmoothStep(t float64) float64 {
	return t * t * t * (float64(t*float64(float64(t*6)-15)) + 10)
}

// Floor returns the largest integer less than or equal to v.
func Floor(v float64) int {
	return int(math.Floor(v))
}

// FloorDiv divides a by b, rounding towards negative infinity.
func FloorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

// FloorMod returns a modulo b with the sign of b.
func FloorMod(a, b int) int {
	return a - FloorDiv(a, b)*b
}
