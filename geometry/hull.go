package geometry

import (
	"math"
	"sort"

	"github.com/paulmach/orb"
)

// ConvexHull returns the convex hull of the given points as a closed ring
// in counter-clockwise order, using Andrew's monotone chain.
func ConvexHull(points []orb.Point) orb.Ring {
	if len(points) == 0 {
		return nil
	}
	pts := make([]orb.Point, len(points))
	copy(pts, points)
	sort.Slice(pts, func(i, j int) bool {
		if pts[i][0] != pts[j][0] {
			return pts[i][0] < pts[j][0]
		}
		return pts[i][1] < pts[j][1]
	})
	// Dedupe after sorting.
	uniq := pts[:1]
	for _, p := range pts[1:] {
		if !p.Equal(uniq[len(uniq)-1]) {
			uniq = append(uniq, p)
		}
	}
	pts = uniq
	if len(pts) < 3 {
		ring := orb.Ring(append([]orb.Point{}, pts...))
		ring = append(ring, pts[0])
		return ring
	}

	var lower, upper []orb.Point
	for _, p := range pts {
		for len(lower) >= 2 && cross(sub(lower[len(lower)-1], lower[len(lower)-2]), sub(p, lower[len(lower)-2])) <= 0 {
			lower = lower[:len(lower)-1]
		}
		lower = append(lower, p)
	}
	for i := len(pts) - 1; i >= 0; i-- {
		p := pts[i]
		for len(upper) >= 2 && cross(sub(upper[len(upper)-1], upper[len(upper)-2]), sub(p, upper[len(upper)-2])) <= 0 {
			upper = upper[:len(upper)-1]
		}
		upper = append(upper, p)
	}
	hull := append(lower[:len(lower)-1], upper[:len(upper)-1]...)
	ring := orb.Ring(hull)
	ring = append(ring, ring[0])
	return ring
}

// RotatedRect is an oriented rectangle described by its four corners (in
// order) and the unit direction of its longer side.
type RotatedRect struct {
	Corners [4]orb.Point
	// Axis is the unit direction of the rectangle's longest edge.
	Axis orb.Point
	// Width and Height are the extents along Axis and its perpendicular.
	Width, Height float64
}

func (r RotatedRect) Ring() orb.Ring {
	return orb.Ring{r.Corners[0], r.Corners[1], r.Corners[2], r.Corners[3], r.Corners[0]}
}

func (r RotatedRect) Polygon() orb.Polygon {
	return orb.Polygon{r.Ring()}
}

func (r RotatedRect) Area() float64 {
	return r.Width * r.Height
}

// MinimumRotatedRectangle computes the minimum-area oriented bounding
// rectangle of the geometry's vertices by testing every convex hull edge
// direction (rotating calipers).
func MinimumRotatedRectangle(g orb.Geometry) (RotatedRect, bool) {
	pts := collectPoints(g)
	if len(pts) < 2 {
		return RotatedRect{}, false
	}
	hull := ConvexHull(pts)
	if len(hull) < 3 {
		return RotatedRect{}, false
	}

	best := RotatedRect{}
	bestArea := math.Inf(1)
	found := false
	for i := 0; i < len(hull)-1; i++ {
		dir := unit(sub(hull[i+1], hull[i]))
		if norm(dir) < Eps {
			continue
		}
		n := perp(dir)
		minU, maxU := math.Inf(1), math.Inf(-1)
		minV, maxV := math.Inf(1), math.Inf(-1)
		for _, p := range hull[:len(hull)-1] {
			u, v := dot(p, dir), dot(p, n)
			minU, maxU = math.Min(minU, u), math.Max(maxU, u)
			minV, maxV = math.Min(minV, v), math.Max(maxV, v)
		}
		w, h := maxU-minU, maxV-minV
		area := w * h
		if area >= bestArea {
			continue
		}
		bestArea = area
		found = true
		c00 := add(scale(dir, minU), scale(n, minV))
		c10 := add(scale(dir, maxU), scale(n, minV))
		c11 := add(scale(dir, maxU), scale(n, maxV))
		c01 := add(scale(dir, minU), scale(n, maxV))
		axis := dir
		width, height := w, h
		if h > w {
			axis = n
			width, height = h, w
		}
		best = RotatedRect{
			Corners: [4]orb.Point{c00, c10, c11, c01},
			Axis:    axis,
			Width:   width,
			Height:  height,
		}
	}
	return best, found
}

func collectPoints(g orb.Geometry) []orb.Point {
	var out []orb.Point
	switch v := g.(type) {
	case orb.Point:
		out = append(out, v)
	case orb.MultiPoint:
		out = append(out, v...)
	case orb.LineString:
		out = append(out, v...)
	case orb.MultiLineString:
		for _, ls := range v {
			out = append(out, ls...)
		}
	case orb.Ring:
		out = append(out, v...)
	case orb.Polygon:
		for _, r := range v {
			out = append(out, r...)
		}
	case orb.MultiPolygon:
		for _, p := range v {
			out = append(out, collectPoints(p)...)
		}
	case orb.Collection:
		for _, sub := range v {
			out = append(out, collectPoints(sub)...)
		}
	}
	return out
}
