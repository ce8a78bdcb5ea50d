package geometry

import (
	"math"
	"testing"

	"github.com/paulmach/orb"
)

func TestAreaAndPerimeter(t *testing.T) {
	square := orb.Polygon{{{0, 0}, {4, 0}, {4, 4}, {0, 4}, {0, 0}}}
	if got := Area(square); math.Abs(got-16) > 1e-9 {
		t.Errorf("Expected area 16, got %f", got)
	}
	if got := Perimeter(square); math.Abs(got-16) > 1e-9 {
		t.Errorf("Expected perimeter 16, got %f", got)
	}
}

func TestEstimatedWidth(t *testing.T) {
	// For a long thin rectangle, 2*area/perimeter approaches the true
	// width.
	strip := orb.Polygon{{{0, 0}, {100, 0}, {100, 2}, {0, 2}, {0, 0}}}
	got := EstimatedWidth(strip)
	if math.Abs(got-200.0/102.0) > 1e-9 {
		t.Errorf("Expected width %f, got %f", 200.0/102.0, got)
	}
}

func TestHausdorffDistance(t *testing.T) {
	tests := []struct {
		name string
		a, b orb.LineString
		want float64
	}{
		{
			"identical",
			orb.LineString{{0, 0}, {10, 0}},
			orb.LineString{{0, 0}, {10, 0}},
			0,
		},
		{
			"offset parallel",
			orb.LineString{{0, 0}, {10, 0}},
			orb.LineString{{0, 2}, {10, 2}},
			2,
		},
		{
			"one longer",
			orb.LineString{{0, 0}, {10, 0}},
			orb.LineString{{0, 0}, {14, 0}},
			4,
		},
	}

	for _, tt := range tests {
		if got := HausdorffDistance(tt.a, tt.b); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("%s: expected %f, got %f", tt.name, tt.want, got)
		}
	}
}

func TestSubstring_OutOfRangeClamps(t *testing.T) {
	ls := orb.LineString{{0, 0}, {10, 0}}
	got := Substring(ls, -5, 100)
	if math.Abs(Length(got)-10) > 1e-9 {
		t.Errorf("Expected clamped full length 10, got %f", Length(got))
	}
	if Substring(ls, 5, 5) != nil {
		t.Errorf("Expected nil for empty range")
	}
}
