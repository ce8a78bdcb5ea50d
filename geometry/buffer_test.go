package geometry

import (
	"math"
	"testing"

	"github.com/paulmach/orb"
)

func TestBuffer_PointRoundDisc(t *testing.T) {
	g, err := Buffer(orb.Point{0, 0}, 2, BufferOptions{QuadSegs: 32})
	if err != nil {
		t.Fatalf("buffer failed: %v", err)
	}

	want := math.Pi * 4
	got := Area(g)
	if math.Abs(got-want)/want > 0.01 {
		t.Errorf("Expected area near %f, got %f", want, got)
	}
}

func TestBuffer_LineFlatCaps(t *testing.T) {
	line := orb.LineString{{0, 0}, {10, 0}}
	g, err := Buffer(line, 1, BufferOptions{Cap: CapFlat})
	if err != nil {
		t.Fatalf("buffer failed: %v", err)
	}

	// A straight segment with flat caps is exactly the 10x2 rectangle.
	got := Area(g)
	if math.Abs(got-20) > 0.01 {
		t.Errorf("Expected area 20, got %f", got)
	}
}

func TestBuffer_LineSquareCaps(t *testing.T) {
	line := orb.LineString{{0, 0}, {10, 0}}
	g, err := Buffer(line, 1, BufferOptions{Cap: CapSquare})
	if err != nil {
		t.Fatalf("buffer failed: %v", err)
	}

	// Square caps extend the rectangle by the distance at both ends.
	got := Area(g)
	if math.Abs(got-24) > 0.01 {
		t.Errorf("Expected area 24, got %f", got)
	}
}

func TestBuffer_BentLineCoversCorner(t *testing.T) {
	line := orb.LineString{{0, 0}, {10, 0}, {10, 10}}

	for _, join := range []JoinStyle{JoinRound, JoinMitre, JoinBevel} {
		g, err := Buffer(line, 1, BufferOptions{Join: join, Cap: CapFlat})
		if err != nil {
			t.Fatalf("join %s: buffer failed: %v", join, err)
		}
		got := Area(g)
		// Two 10x2 rectangles overlapping in a 2x2 corner square, plus a
		// non-negative join patch.
		min := 36.0
		if got < min-0.01 {
			t.Errorf("join %s: expected area >= %f, got %f", join, min, got)
		}
		if got > min+4 {
			t.Errorf("join %s: join patch too large, area %f", join, got)
		}
	}
}

func TestBuffer_PolygonGrowShrink(t *testing.T) {
	square := orb.Polygon{{{0, 0}, {10, 0}, {10, 10}, {0, 10}, {0, 0}}}

	grown, err := Buffer(square, 1, BufferOptions{Join: JoinMitre})
	if err != nil {
		t.Fatalf("grow failed: %v", err)
	}
	if got := Area(grown); got < 100 {
		t.Errorf("Expected grown area > 100, got %f", got)
	}

	shrunk, err := Buffer(square, -1, BufferOptions{Join: JoinMitre})
	if err != nil {
		t.Fatalf("shrink failed: %v", err)
	}
	got := Area(shrunk)
	if math.Abs(got-64) > 1.5 {
		t.Errorf("Expected shrunk area near 64, got %f", got)
	}
}

func TestBuffer_NegativeDistanceOnLine(t *testing.T) {
	g, err := Buffer(orb.LineString{{0, 0}, {1, 0}}, -1, BufferOptions{})
	if err != nil {
		t.Fatalf("buffer failed: %v", err)
	}
	if g != nil {
		t.Errorf("Expected nil result for eroded line, got %T", g)
	}
}

func TestBuffer_ZeroDistanceRepairsBowtie(t *testing.T) {
	bowtie := orb.Polygon{{{0, 0}, {4, 4}, {4, 0}, {0, 4}, {0, 0}}}
	g, err := Buffer(bowtie, 0, BufferOptions{})
	if err != nil {
		t.Fatalf("buffer failed: %v", err)
	}
	// The bowtie splits into two triangles of total area 8.
	if got := Area(g); math.Abs(got-8) > 0.01 {
		t.Errorf("Expected area 8, got %f", got)
	}
}
