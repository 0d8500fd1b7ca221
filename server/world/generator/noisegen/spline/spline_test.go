package spline

import (
	"errors"
	"testing"
)

func mustNew(t *testing.T, coordinate int, points ...Point) *Spline {
	t.Helper()
	s, err := New(coordinate, points)
	if err != nil {
		t.Fatalf("new spline: %v", err)
	}
	return s
}

func TestSplineBoundaryValues(t *testing.T) {
	t.Parallel()

	s := mustNew(t, 0,
		Point{Location: -1, Value: Constant(-0.5)},
		Point{Location: 0, Value: Constant(0.25)},
		Point{Location: 1, Value: Constant(2)},
	)
	for _, tc := range []struct {
		x, want float64
	}{
		{-5, -0.5},
		{-1, -0.5},
		{0, 0.25},
		{1, 2},
		{7, 2},
	} {
		if got := s.Evaluate(tc.x); got != tc.want {
			t.Fatalf("evaluate(%v) = %v, want %v", tc.x, got, tc.want)
		}
	}
}

func TestSplineExtrapolatesWithDerivative(t *testing.T) {
	t.Parallel()

	s := mustNew(t, 0,
		Point{Location: 0, Value: Constant(1), Derivative: 2},
		Point{Location: 1, Value: Constant(3), Derivative: -1},
	)
	if got := s.Evaluate(-1); got != -1 {
		t.Fatalf("evaluate(-1) = %v, want -1", got)
	}
	if got := s.Evaluate(3); got != 1 {
		t.Fatalf("evaluate(3) = %v, want 1", got)
	}
}

func TestSplineHermiteMidpoint(t *testing.T) {
	t.Parallel()

	s := mustNew(t, 0,
		Point{Location: 0, Value: Constant(0)},
		Point{Location: 1, Value: Constant(1)},
	)
	if got := s.Evaluate(0.5); got != 0.5 {
		t.Fatalf("evaluate(0.5) = %v, want 0.5", got)
	}
	// With zero derivatives the curve is a smooth step: below linear before the
	// midpoint and above it after.
	if got := s.Evaluate(0.25); got >= 0.25 {
		t.Fatalf("evaluate(0.25) = %v, want below 0.25", got)
	}
	if got := s.Evaluate(0.75); got <= 0.75 {
		t.Fatalf("evaluate(0.75) = %v, want above 0.75", got)
	}
}

func TestNestedSplineReadsItsOwnCoordinate(t *testing.T) {
	t.Parallel()

	inner := mustNew(t, 1,
		Point{Location: 0, Value: Constant(10)},
		Point{Location: 1, Value: Constant(20)},
	)
	outer := mustNew(t, 0,
		Point{Location: 0, Value: Constant(0)},
		Point{Location: 1, Value: Nested(inner)},
	)
	coords := map[int]float32{0: 2, 1: 1}
	got := outer.Apply(func(c int) float32 { return coords[c] })
	if got != 20 {
		t.Fatalf("apply = %v, want 20", got)
	}

	var visited int
	outer.Walk(func(*Spline) { visited++ })
	if visited != 2 {
		t.Fatalf("walk visited %v splines, want 2", visited)
	}
}

func TestNewRejectsInvalidPoints(t *testing.T) {
	t.Parallel()

	for name, points := range map[string][]Point{
		"empty":      nil,
		"duplicate":  {{Location: 0}, {Location: 0}},
		"decreasing": {{Location: 1}, {Location: 0}},
	} {
		if _, err := New(0, points); !errors.Is(err, ErrInvalidPoints) {
			t.Fatalf("%v: got %v, want ErrInvalidPoints", name, err)
		}
	}
}
