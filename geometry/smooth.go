package geometry

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/simplify"
)

// Smooth rounds corners with Chaikin corner cutting. Strength in
// (0, 0.5] is how far each corner is cut toward its neighbours; 0.25 is
// the classic ratio. Closed rings stay closed.
func Smooth(g orb.Geometry, iterations int, strength float64) orb.Geometry {
	if iterations <= 0 {
		iterations = 1
	}
	if strength <= 0 || strength > 0.5 {
		strength = 0.25
	}
	switch v := g.(type) {
	case orb.LineString:
		return chaikinLine(v, iterations, strength, false)
	case orb.MultiLineString:
		out := make(orb.MultiLineString, 0, len(v))
		for _, ls := range v {
			out = append(out, chaikinLine(ls, iterations, strength, false))
		}
		return out
	case orb.Ring:
		return orb.Ring(chaikinLine(orb.LineString(v), iterations, strength, true))
	case orb.Polygon:
		out := make(orb.Polygon, 0, len(v))
		for _, ring := range v {
			smoothed := orb.Ring(chaikinLine(orb.LineString(ring), iterations, strength, true))
			if len(smoothed) >= 4 {
				out = append(out, smoothed)
			}
		}
		return out
	case orb.MultiPolygon:
		out := make(orb.MultiPolygon, 0, len(v))
		for _, p := range v {
			out = append(out, Smooth(p, iterations, strength).(orb.Polygon))
		}
		return out
	case orb.Collection:
		out := make(orb.Collection, 0, len(v))
		for _, sub := range v {
			out = append(out, Smooth(sub, iterations, strength))
		}
		return out
	}
	return g
}

func chaikinLine(ls orb.LineString, iterations int, strength float64, closed bool) orb.LineString {
	if len(ls) < 3 {
		return ls
	}
	pts := append(orb.LineString{}, ls...)
	if closed && pts[0].Equal(pts[len(pts)-1]) {
		pts = pts[:len(pts)-1]
	}
	for it := 0; it < iterations; it++ {
		n := len(pts)
		out := make(orb.LineString, 0, 2*n)
		if !closed {
			out = append(out, pts[0])
		}
		last := n - 1
		if closed {
			last = n
		}
		for i := 0; i < last; i++ {
			a := pts[i%n]
			b := pts[(i+1)%n]
			out = append(out, lerp(a, b, strength), lerp(a, b, 1-strength))
		}
		if !closed {
			out = append(out, pts[n-1])
		}
		pts = out
	}
	if closed {
		pts = append(pts, pts[0])
	}
	return pts
}

// Simplify reduces vertex count with Douglas-Peucker. With preserveTopology
// set, a result that would degenerate (a ring with fewer than four points
// or a line with fewer than two) falls back to the input geometry.
func Simplify(g orb.Geometry, tolerance float64, preserveTopology bool) orb.Geometry {
	if tolerance <= 0 {
		return g
	}
	simplified := simplify.DouglasPeucker(tolerance).Simplify(orb.Clone(g))
	if !preserveTopology {
		return simplified
	}
	if degenerate(simplified) && !degenerate(g) {
		return g
	}
	return simplified
}

func degenerate(g orb.Geometry) bool {
	switch v := g.(type) {
	case nil:
		return true
	case orb.LineString:
		return len(v) < 2
	case orb.Ring:
		return len(v) < 4
	case orb.Polygon:
		if len(v) == 0 {
			return true
		}
		for _, r := range v {
			if len(r) < 4 {
				return true
			}
		}
	case orb.MultiPolygon:
		if len(v) == 0 {
			return true
		}
		for _, p := range v {
			if degenerate(p) {
				return true
			}
		}
	case orb.MultiLineString:
		if len(v) == 0 {
			return true
		}
		for _, ls := range v {
			if degenerate(ls) {
				return true
			}
		}
	}
	return false
}
