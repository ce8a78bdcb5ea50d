package geometry

import (
	"testing"

	"github.com/paulmach/orb"
)

func TestSmooth_LineKeepsEndpoints(t *testing.T) {
	line := orb.LineString{{0, 0}, {5, 5}, {10, 0}}

	out := Smooth(line, 2, 0.25).(orb.LineString)
	if !out[0].Equal(orb.Point{0, 0}) || !out[len(out)-1].Equal(orb.Point{10, 0}) {
		t.Errorf("Expected endpoints preserved, got %v .. %v", out[0], out[len(out)-1])
	}
	if len(out) <= len(line) {
		t.Errorf("Expected more vertices after smoothing, got %d", len(out))
	}
	// The corner is cut: no output vertex reaches the original apex.
	for _, p := range out {
		if p[1] > 5-1e-9 {
			t.Errorf("Expected apex cut below y=5, found %v", p)
		}
	}
}

func TestSmooth_PolygonStaysClosed(t *testing.T) {
	square := orb.Polygon{{{0, 0}, {10, 0}, {10, 10}, {0, 10}, {0, 0}}}

	out := Smooth(square, 1, 0.25).(orb.Polygon)
	ring := out[0]
	if !ring[0].Equal(ring[len(ring)-1]) {
		t.Errorf("Expected closed ring after smoothing")
	}
	got := Area(out)
	if got >= 100 || got < 80 {
		t.Errorf("Expected corner-cut area between 80 and 100, got %f", got)
	}
}

func TestSmooth_ShortLineUntouched(t *testing.T) {
	line := orb.LineString{{0, 0}, {1, 1}}
	out := Smooth(line, 3, 0.25).(orb.LineString)
	if len(out) != 2 {
		t.Errorf("Expected 2-point line unchanged, got %d points", len(out))
	}
}

func TestSimplify(t *testing.T) {
	// Near-collinear points collapse to the two endpoints.
	line := orb.LineString{{0, 0}, {1, 0.001}, {2, -0.001}, {3, 0.002}, {4, 0}}
	out := Simplify(line, 0.01, false).(orb.LineString)
	if len(out) != 2 {
		t.Errorf("Expected 2 points after simplify, got %d", len(out))
	}
}

func TestSimplify_PreserveTopologyFallback(t *testing.T) {
	// Aggressive tolerance would collapse the triangle ring; preserve
	// topology falls back to the input.
	tri := orb.Ring{{0, 0}, {1, 0}, {0.5, 0.1}, {0, 0}}
	out := Simplify(tri, 10, true)
	if got := out.(orb.Ring); len(got) != 4 {
		t.Errorf("Expected original 4-point ring back, got %d points", len(got))
	}
}
