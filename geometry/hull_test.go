package geometry

import (
	"math"
	"testing"

	"github.com/paulmach/orb"
)

func TestConvexHull(t *testing.T) {
	pts := []orb.Point{
		{0, 0}, {4, 0}, {4, 4}, {0, 4},
		{2, 2}, {1, 1}, {3, 2}, // interior
		{0, 0}, // duplicate
	}

	hull := ConvexHull(pts)
	// Closed ring over the 4 corners.
	if len(hull) != 5 {
		t.Fatalf("Expected 5 hull points, got %d", len(hull))
	}
	if !hull[0].Equal(hull[len(hull)-1]) {
		t.Errorf("Expected closed ring")
	}
	if got := Area(hull); math.Abs(got-16) > 1e-9 {
		t.Errorf("Expected hull area 16, got %f", got)
	}
}

func TestConvexHull_CollinearPoints(t *testing.T) {
	pts := []orb.Point{{0, 0}, {1, 0}, {2, 0}, {3, 0}}
	hull := ConvexHull(pts)
	if len(hull) < 2 {
		t.Errorf("Expected degenerate hull with at least 2 points, got %d", len(hull))
	}
}

func TestMinimumRotatedRectangle_AxisAligned(t *testing.T) {
	rect := orb.Polygon{{{0, 0}, {10, 0}, {10, 4}, {0, 4}, {0, 0}}}

	mrr, ok := MinimumRotatedRectangle(rect)
	if !ok {
		t.Fatalf("Expected a rectangle")
	}
	if math.Abs(mrr.Area()-40) > 1e-9 {
		t.Errorf("Expected area 40, got %f", mrr.Area())
	}
	if math.Abs(mrr.Width-10) > 1e-9 || math.Abs(mrr.Height-4) > 1e-9 {
		t.Errorf("Expected 10x4, got %fx%f", mrr.Width, mrr.Height)
	}
	// The axis follows the long side.
	if math.Abs(math.Abs(mrr.Axis[0])-1) > 1e-9 {
		t.Errorf("Expected axis along x, got %v", mrr.Axis)
	}
}

func TestMinimumRotatedRectangle_Rotated(t *testing.T) {
	angle := math.Pi / 5
	c, s := math.Cos(angle), math.Sin(angle)
	rot := func(x, y float64) orb.Point {
		return orb.Point{x*c - y*s, x*s + y*c}
	}
	rect := orb.Polygon{{rot(0, 0), rot(8, 0), rot(8, 3), rot(0, 3), rot(0, 0)}}

	mrr, ok := MinimumRotatedRectangle(rect)
	if !ok {
		t.Fatalf("Expected a rectangle")
	}
	if math.Abs(mrr.Area()-24) > 1e-6 {
		t.Errorf("Expected area 24, got %f", mrr.Area())
	}
	// The recovered axis matches the rotation, up to sign.
	wantAxis := orb.Point{c, s}
	d := math.Abs(dot(mrr.Axis, wantAxis))
	if math.Abs(d-1) > 1e-6 {
		t.Errorf("Expected axis %v, got %v", wantAxis, mrr.Axis)
	}
}

func TestMinimumRotatedRectangle_TooFewPoints(t *testing.T) {
	if _, ok := MinimumRotatedRectangle(orb.Point{1, 1}); ok {
		t.Errorf("Expected no rectangle for a single point")
	}
}
