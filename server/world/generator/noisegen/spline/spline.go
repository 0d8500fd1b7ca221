// Package spline implements the piecewise cubic Hermite splines used to shape
// terrain from climate noises. Splines are evaluated in float32 so that results
// match generated worlds of the reference game bit for bit.
package spline

import (
	"errors"
	"fmt"
	"sort"

	"github.com/dm-vev/adamant-worldgen/server/internal/mth"
)

// ErrInvalidPoints is returned by New for point lists that do not describe a
// spline.
var ErrInvalidPoints = errors.New("invalid spline points")

// Value is the value of a spline at a control point: either a constant or a
// nested spline evaluated with the same coordinate sampler.
type Value struct {
	Constant float32
	Spline   *Spline
}

// Constant returns a constant Value.
func Constant(v float32) Value {
	return Value{Constant: v}
}

// Nested returns a Value that evaluates the spline passed.
func Nested(s *Spline) Value {
	return Value{Spline: s}
}

func (v Value) apply(sample func(coordinate int) float32) float32 {
	if v.Spline != nil {
		return v.Spline.Apply(sample)
	}
	return v.Constant
}

// Point is a control point of a Spline.
type Point struct {
	Location   float32
	Value      Value
	Derivative float32
}

// Spline is a piecewise cubic Hermite spline over a single coordinate. The
// coordinate is an opaque index that is passed to the sampler on evaluation, so
// that callers decide what it refers to. A Spline is immutable.
type Spline struct {
	Coordinate int
	Points     []Point
}

// New validates the points passed and returns a Spline over them. The locations
// must be strictly increasing.
func New(coordinate int, points []Point) (*Spline, error) {
	if len(points) == 0 {
		return nil, fmt.Errorf("%w: no points", ErrInvalidPoints)
	}
	for i := 1; i < len(points); i++ {
		if !(points[i].Location > points[i-1].Location) {
			return nil, fmt.Errorf("%w: location %v at index %v does not follow %v", ErrInvalidPoints, points[i].Location, i, points[i-1].Location)
		}
	}
	return &Spline{Coordinate: coordinate, Points: append([]Point(nil), points...)}, nil
}

// Apply evaluates the spline, calling sample to obtain the value of each
// coordinate read, including those of nested splines.
func (s *Spline) Apply(sample func(coordinate int) float32) float32 {
	x := sample(s.Coordinate)
	last := len(s.Points) - 1
	i := s.intervalStart(x)
	if i < 0 {
		return linearExtend(x, s.Points[0], s.Points[0].Value.apply(sample))
	}
	if i == last {
		return linearExtend(x, s.Points[last], s.Points[last].Value.apply(sample))
	}
	p0, p1 := s.Points[i], s.Points[i+1]
	w := p1.Location - p0.Location
	t := (x - p0.Location) / w
	v0, v1 := p0.Value.apply(sample), p1.Value.apply(sample)
	d0 := float32(p0.Derivative*w) - (v1 - v0)
	d1 := float32(-p1.Derivative*w) + (v1 - v0)
	return mth.Lerp(t, v0, v1) + float32(float32(t*(1-t))*mth.Lerp(t, d0, d1))
}

// Evaluate evaluates the spline with every coordinate, including those of
// nested splines, set to x.
func (s *Spline) Evaluate(x float64) float64 {
	v := float32(x)
	return float64(s.Apply(func(int) float32 { return v }))
}

// Walk calls f for the spline and every spline nested in it, depth first.
func (s *Spline) Walk(f func(*Spline)) {
	f(s)
	for _, p := range s.Points {
		if p.Value.Spline != nil {
			p.Value.Spline.Walk(f)
		}
	}
}

// intervalStart returns the index of the last point with a location at or below
// x, or -1 if x lies below the first point.
func (s *Spline) intervalStart(x float32) int {
	return sort.Search(len(s.Points), func(i int) bool {
		return x < s.Points[i].Location
	}) - 1
}

func linearExtend(x float32, p Point, value float32) float32 {
	if p.Derivative == 0 {
		return value
	}
	return value + float32(p.Derivative*(x-p.Location))
}
