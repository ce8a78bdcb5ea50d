package geometry

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// Relative area slack used by containment tests to absorb overlay noise.
const containSlack = 1e-6

// ContainsPolygonal reports whether inner lies fully within outer, up to
// floating-point overlay noise. Both arguments must be polygonal.
func ContainsPolygonal(outer, inner orb.Geometry) bool {
	innerArea := Area(inner)
	if innerArea == 0 {
		return false
	}
	leftover, err := Difference(inner, outer)
	if err != nil {
		return false
	}
	if leftover == nil {
		return true
	}
	return Area(leftover) <= innerArea*containSlack
}

// polygonalContainsPoint tests point membership for any polygonal geometry.
func polygonalContainsPoint(g orb.Geometry, p orb.Point) bool {
	switch v := g.(type) {
	case orb.Ring:
		return planar.RingContains(v, p)
	case orb.Polygon:
		return planar.PolygonContains(v, p)
	case orb.MultiPolygon:
		return planar.MultiPolygonContains(v, p)
	case orb.Collection:
		for _, sub := range v {
			if polygonalContainsPoint(sub, p) {
				return true
			}
		}
	}
	return false
}

// IntersectsPolygonal reports whether g touches the polygonal reference:
// any vertex inside it, any reference vertex inside g, or any pair of
// edges crossing.
func IntersectsPolygonal(g orb.Geometry, reference orb.Geometry) bool {
	if g == nil || reference == nil {
		return false
	}
	if !padBound(g.Bound(), Eps).Intersects(reference.Bound()) {
		return false
	}

	for _, p := range collectPoints(g) {
		if polygonalContainsPoint(reference, p) {
			return true
		}
	}
	switch g.(type) {
	case orb.Ring, orb.Polygon, orb.MultiPolygon:
		for _, p := range collectPoints(reference) {
			if polygonalContainsPoint(g, p) {
				return true
			}
		}
	}

	gEdges := edgesOf(g)
	refEdges := edgesOf(reference)
	for _, e1 := range gEdges {
		for _, e2 := range refEdges {
			if segmentIntersect(e1[0], e1[1], e2[0], e2[1], Eps).kind != hitNone {
				return true
			}
		}
	}
	return false
}

func edgesOf(g orb.Geometry) [][2]orb.Point {
	var out [][2]orb.Point
	walk := func(pts []orb.Point) {
		for i := 0; i < len(pts)-1; i++ {
			out = append(out, [2]orb.Point{pts[i], pts[i+1]})
		}
	}
	switch v := g.(type) {
	case orb.LineString:
		walk(v)
	case orb.MultiLineString:
		for _, ls := range v {
			walk(ls)
		}
	case orb.Ring:
		walk(v)
	case orb.Polygon:
		for _, r := range v {
			walk(r)
		}
	case orb.MultiPolygon:
		for _, p := range v {
			out = append(out, edgesOf(p)...)
		}
	case orb.Collection:
		for _, sub := range v {
			out = append(out, edgesOf(sub)...)
		}
	}
	return out
}
