package geometry

import (
	"testing"

	"github.com/paulmach/orb"
)

func TestRemoveDuplicateLines(t *testing.T) {
	lines := []orb.LineString{
		{{0, 0}, {10, 0}},
		{{0, 5}, {10, 5}},
		{{0.0001, 0}, {10.0001, 0}}, // duplicate of line 0
		{{10, 5}, {0, 5}},           // reversed duplicate of line 1
		{{0, 10}, {10, 10}},
	}

	out := RemoveDuplicateLines(lines, 0.01)
	if len(out) != 3 {
		t.Fatalf("Expected 3 lines after removing 2 duplicates, got %d", len(out))
	}

	// The earlier line of each duplicate pair survives.
	if !out[0][0].Equal(orb.Point{0, 0}) {
		t.Errorf("Expected first kept line to start at (0,0), got %v", out[0][0])
	}
	if !out[1][0].Equal(orb.Point{0, 5}) {
		t.Errorf("Expected second kept line to start at (0,5), got %v", out[1][0])
	}
}

func TestRemoveDuplicateLines_ParallelNotDuplicates(t *testing.T) {
	// Parallel lines further apart than the tolerance stay.
	lines := []orb.LineString{
		{{0, 0}, {10, 0}},
		{{0, 1}, {10, 1}},
	}

	out := RemoveDuplicateLines(lines, 0.1)
	if len(out) != 2 {
		t.Errorf("Expected both parallel lines kept, got %d", len(out))
	}
}

func TestRemoveDuplicateLines_PartialOverlapKept(t *testing.T) {
	// Same carrier line but clearly different lengths: the length-ratio
	// guard keeps both.
	lines := []orb.LineString{
		{{0, 0}, {10, 0}},
		{{0, 0}, {5, 0}},
	}

	out := RemoveDuplicateLines(lines, 0.1)
	if len(out) != 2 {
		t.Errorf("Expected both lines kept, got %d", len(out))
	}
}

func TestRemoveDuplicateLines_SingleLine(t *testing.T) {
	lines := []orb.LineString{{{0, 0}, {1, 1}}}
	out := RemoveDuplicateLines(lines, 0.1)
	if len(out) != 1 {
		t.Errorf("Expected single line untouched, got %d", len(out))
	}
}

func TestRemoveDuplicateLines_DegenerateLinesDropped(t *testing.T) {
	// Empty and single-point lines carry no geometry and must not crash
	// the midpoint index.
	line := orb.LineString{{0, 0}, {10, 0}}
	lines := []orb.LineString{{}, line, {{3, 3}}, line}

	out := RemoveDuplicateLines(lines, 1.0)
	if len(out) != 1 {
		t.Fatalf("Expected 1 line after dropping degenerates and the duplicate, got %d", len(out))
	}
}
