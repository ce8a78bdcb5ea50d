package geometry

import (
	"testing"

	"github.com/paulmach/orb"
)

func TestContainsPolygonal(t *testing.T) {
	outer := orb.Polygon{{{0, 0}, {10, 0}, {10, 10}, {0, 10}, {0, 0}}}
	inner := orb.Polygon{{{2, 2}, {4, 2}, {4, 4}, {2, 4}, {2, 2}}}
	straddling := orb.Polygon{{{8, 8}, {12, 8}, {12, 12}, {8, 12}, {8, 8}}}

	if !ContainsPolygonal(outer, inner) {
		t.Errorf("Expected inner contained")
	}
	if ContainsPolygonal(outer, straddling) {
		t.Errorf("Expected straddling polygon not contained")
	}
	if ContainsPolygonal(inner, outer) {
		t.Errorf("Expected containment to be directional")
	}
}

func TestIntersectsPolygonal(t *testing.T) {
	ref := orb.Polygon{{{0, 0}, {10, 0}, {10, 10}, {0, 10}, {0, 0}}}

	tests := []struct {
		name string
		g    orb.Geometry
		want bool
	}{
		{"point inside", orb.Polygon{{{4, 4}, {6, 4}, {6, 6}, {4, 6}, {4, 4}}}, true},
		{"overlapping", orb.Polygon{{{8, 8}, {12, 8}, {12, 12}, {8, 12}, {8, 8}}}, true},
		{"covering", orb.Polygon{{{-5, -5}, {15, -5}, {15, 15}, {-5, 15}, {-5, -5}}}, true},
		{"disjoint", orb.Polygon{{{20, 20}, {21, 20}, {21, 21}, {20, 21}, {20, 20}}}, false},
		{"line crossing", orb.LineString{{-5, 5}, {15, 5}}, true},
		{"line outside", orb.LineString{{-5, -5}, {-1, -1}}, false},
	}

	for _, tt := range tests {
		if got := IntersectsPolygonal(tt.g, ref); got != tt.want {
			t.Errorf("%s: expected %v, got %v", tt.name, tt.want, got)
		}
	}
}
