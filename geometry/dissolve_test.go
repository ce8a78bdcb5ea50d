package geometry

import (
	"math"
	"testing"

	"github.com/paulmach/orb"
)

func TestDissolve_NearTouchingSquares(t *testing.T) {
	// Two unit squares separated by a 0.0001 gap merge into one polygon
	// with a small dissolve tolerance.
	a := orb.Polygon{{{0, 0}, {1, 0}, {1, 1}, {0, 1}, {0, 0}}}
	b := orb.Polygon{{{1.0001, 0}, {2, 0}, {2, 1}, {1.0001, 1}, {1.0001, 0}}}

	out, err := Dissolve([]orb.Geometry{a, b}, DissolveOptions{Tolerance: 0.01})
	if err != nil {
		t.Fatalf("dissolve failed: %v", err)
	}

	polys := ExplodeToPolygons(out)
	if len(polys) != 1 {
		t.Fatalf("Expected 1 merged polygon, got %d", len(polys))
	}
	got := Area(out)
	if math.Abs(got-2) > 0.1 {
		t.Errorf("Expected area near 2, got %f", got)
	}
}

func TestDissolve_DistantSquaresStaySeparate(t *testing.T) {
	a := orb.Polygon{{{0, 0}, {1, 0}, {1, 1}, {0, 1}, {0, 0}}}
	b := orb.Polygon{{{5, 0}, {6, 0}, {6, 1}, {5, 1}, {5, 0}}}

	out, err := Dissolve([]orb.Geometry{a, b}, DissolveOptions{Tolerance: 0.01})
	if err != nil {
		t.Fatalf("dissolve failed: %v", err)
	}
	if polys := ExplodeToPolygons(out); len(polys) != 2 {
		t.Errorf("Expected 2 separate polygons, got %d", len(polys))
	}
}

func TestDissolve_ZeroToleranceIsPlainUnion(t *testing.T) {
	a := orb.Polygon{{{0, 0}, {2, 0}, {2, 2}, {0, 2}, {0, 0}}}
	b := orb.Polygon{{{1, 1}, {3, 1}, {3, 3}, {1, 3}, {1, 1}}}

	out, err := Dissolve([]orb.Geometry{a, b}, DissolveOptions{})
	if err != nil {
		t.Fatalf("dissolve failed: %v", err)
	}
	got := Area(out)
	if math.Abs(got-7) > 1e-6 {
		t.Errorf("Expected union area 7, got %f", got)
	}
}

func TestDissolve_SecondPassIdempotent(t *testing.T) {
	a := orb.Polygon{{{0, 0}, {1, 0}, {1, 1}, {0, 1}, {0, 0}}}
	b := orb.Polygon{{{1.0001, 0}, {2, 0}, {2, 1}, {1.0001, 1}, {1.0001, 0}}}

	once, err := Dissolve([]orb.Geometry{a, b}, DissolveOptions{Tolerance: 0.01, SecondPass: true})
	if err != nil {
		t.Fatalf("first dissolve failed: %v", err)
	}
	twice, err := Dissolve([]orb.Geometry{once}, DissolveOptions{Tolerance: 0.01, SecondPass: true})
	if err != nil {
		t.Fatalf("second dissolve failed: %v", err)
	}

	if math.Abs(Area(once)-Area(twice)) > 0.01 {
		t.Errorf("Expected stable area across passes, got %f then %f", Area(once), Area(twice))
	}
	if len(ExplodeToPolygons(twice)) != 1 {
		t.Errorf("Expected a single polygon after repeat dissolve")
	}
}

func TestDissolve_SnapVertices(t *testing.T) {
	// Squares sharing an edge up to a tiny vertex mismatch.
	a := orb.Polygon{{{0, 0}, {1, 0}, {1, 1}, {0, 1}, {0, 0}}}
	b := orb.Polygon{{{1.000001, 0}, {2, 0}, {2, 1}, {1.000001, 1}, {1.000001, 0}}}

	out, err := Dissolve([]orb.Geometry{a, b}, DissolveOptions{Tolerance: 0.001, SnapVertices: true})
	if err != nil {
		t.Fatalf("dissolve failed: %v", err)
	}
	if polys := ExplodeToPolygons(out); len(polys) != 1 {
		t.Errorf("Expected snapped squares merged into 1 polygon, got %d", len(polys))
	}
}

func TestDissolve_EmptyInput(t *testing.T) {
	out, err := Dissolve(nil, DissolveOptions{Tolerance: 0.01})
	if err != nil {
		t.Fatalf("dissolve failed: %v", err)
	}
	if out != nil {
		t.Errorf("Expected nil result for empty input, got %T", out)
	}
}

func TestSnapToGrid(t *testing.T) {
	g := SnapToGrid(orb.Point{1.24, 3.76}, 0.5)
	p := g.(orb.Point)
	if p[0] != 1.0 || p[1] != 4.0 {
		t.Errorf("Expected (1.0, 4.0), got %v", p)
	}
}
