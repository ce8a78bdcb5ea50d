package geometry

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
	"gonum.org/v1/gonum/floats"
)

// Area returns the unsigned planar area of a geometry.
func Area(g orb.Geometry) float64 {
	if g == nil {
		return 0
	}
	return math.Abs(planar.Area(g))
}

// Perimeter returns the boundary length of a polygonal geometry, or the
// length of a line geometry.
func Perimeter(g orb.Geometry) float64 {
	switch v := g.(type) {
	case orb.Ring:
		return planar.Length(orb.LineString(v))
	case orb.Polygon:
		total := 0.0
		for _, ring := range v {
			total += planar.Length(orb.LineString(ring))
		}
		return total
	case orb.MultiPolygon:
		total := 0.0
		for _, p := range v {
			total += Perimeter(p)
		}
		return total
	default:
		return planar.Length(g)
	}
}

// EstimatedWidth approximates the width of a polygon as 2*area/perimeter.
// Exact minimal-width computation is not attempted.
func EstimatedWidth(g orb.Geometry) float64 {
	p := Perimeter(g)
	if p == 0 {
		return 0
	}
	return 2 * Area(g) / p
}

// pointSegmentDistance returns the distance from p to segment ab.
func pointSegmentDistance(p, a, b orb.Point) float64 {
	ab := sub(b, a)
	l2 := dot(ab, ab)
	if l2 < Eps*Eps {
		return planar.Distance(p, a)
	}
	t := dot(sub(p, a), ab) / l2
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	return planar.Distance(p, add(a, scale(ab, t)))
}

// pointLineDistance returns the distance from p to the nearest point of ls.
func pointLineDistance(p orb.Point, ls orb.LineString) float64 {
	if len(ls) == 0 {
		return math.Inf(1)
	}
	if len(ls) == 1 {
		return planar.Distance(p, ls[0])
	}
	best := math.Inf(1)
	for i := 0; i < len(ls)-1; i++ {
		if d := pointSegmentDistance(p, ls[i], ls[i+1]); d < best {
			best = d
		}
	}
	return best
}

// directedHausdorff returns max over vertices of a of the distance to b.
// Vertex sampling is exact for the polyline-to-polyline directed distance
// because the maximum is attained at a vertex of a.
func directedHausdorff(a, b orb.LineString) float64 {
	worst := 0.0
	for _, p := range a {
		if d := pointLineDistance(p, b); d > worst {
			worst = d
		}
	}
	return worst
}

// HausdorffDistance returns the symmetric Hausdorff distance between two
// line strings.
func HausdorffDistance(a, b orb.LineString) float64 {
	return math.Max(directedHausdorff(a, b), directedHausdorff(b, a))
}

// arcLengths returns the cumulative arc length at every vertex of ls. The
// first entry is always 0 and the last is the total length.
func arcLengths(ls orb.LineString) []float64 {
	if len(ls) == 0 {
		return nil
	}
	segs := make([]float64, len(ls))
	for i := 1; i < len(ls); i++ {
		segs[i] = planar.Distance(ls[i-1], ls[i])
	}
	cum := make([]float64, len(ls))
	floats.CumSum(cum, segs)
	return cum
}

// projectOntoLine returns the arc-length parameter of the point of ls
// nearest to p.
func projectOntoLine(p orb.Point, ls orb.LineString) float64 {
	if len(ls) < 2 {
		return 0
	}
	cum := arcLengths(ls)
	bestDist := math.Inf(1)
	bestArc := 0.0
	for i := 0; i < len(ls)-1; i++ {
		a, b := ls[i], ls[i+1]
		ab := sub(b, a)
		l2 := dot(ab, ab)
		t := 0.0
		if l2 >= Eps*Eps {
			t = dot(sub(p, a), ab) / l2
			if t < 0 {
				t = 0
			} else if t > 1 {
				t = 1
			}
		}
		q := add(a, scale(ab, t))
		if d := planar.Distance(p, q); d < bestDist {
			bestDist = d
			bestArc = cum[i] + t*(cum[i+1]-cum[i])
		}
	}
	return bestArc
}

// Substring extracts the part of ls between arc lengths from and to,
// keeping every original interior vertex that falls inside the range.
func Substring(ls orb.LineString, from, to float64) orb.LineString {
	if len(ls) < 2 || to <= from {
		return nil
	}
	cum := arcLengths(ls)
	total := cum[len(cum)-1]
	if from < 0 {
		from = 0
	}
	if to > total {
		to = total
	}
	if to-from < Eps {
		return nil
	}
	out := orb.LineString{interpolateAt(ls, cum, from)}
	for i, d := range cum {
		if d > from+Eps && d < to-Eps {
			out = append(out, ls[i])
		}
	}
	end := interpolateAt(ls, cum, to)
	if !out[len(out)-1].Equal(end) {
		out = append(out, end)
	}
	if len(out) < 2 {
		return nil
	}
	return out
}

func interpolateAt(ls orb.LineString, cum []float64, d float64) orb.Point {
	if d <= 0 {
		return ls[0]
	}
	last := len(cum) - 1
	if d >= cum[last] {
		return ls[last]
	}
	for i := 1; i <= last; i++ {
		if cum[i] >= d {
			seg := cum[i] - cum[i-1]
			if seg < Eps {
				return ls[i]
			}
			t := (d - cum[i-1]) / seg
			return lerp(ls[i-1], ls[i], t)
		}
	}
	return ls[last]
}

// Length returns the planar length of any line geometry.
func Length(g orb.Geometry) float64 {
	return planar.Length(g)
}
