package geometry

import (
	"math"
	"sort"

	"github.com/paulmach/orb"
)

type segHit struct {
	// kind is hitNone, hitPoint or hitOverlap.
	kind    int
	point   orb.Point
	overlap [2]orb.Point
}

const (
	hitNone = iota
	hitPoint
	hitOverlap
)

// segmentIntersect classifies the intersection of segments ab and cd:
// a single crossing point, a collinear overlap run, or nothing.
func segmentIntersect(a, b, c, d orb.Point, tol float64) segHit {
	r := sub(b, a)
	s := sub(d, c)
	denom := cross(r, s)
	acr := cross(sub(c, a), r)

	if math.Abs(denom) < Eps {
		if math.Abs(acr) > tol*math.Max(1, norm(r)) {
			return segHit{kind: hitNone}
		}
		// Collinear: overlap interval along r.
		rr := dot(r, r)
		if rr < Eps {
			return segHit{kind: hitNone}
		}
		t0 := dot(sub(c, a), r) / rr
		t1 := dot(sub(d, a), r) / rr
		if t0 > t1 {
			t0, t1 = t1, t0
		}
		lo := math.Max(t0, 0)
		hi := math.Min(t1, 1)
		if hi < lo {
			return segHit{kind: hitNone}
		}
		p0 := add(a, scale(r, lo))
		p1 := add(a, scale(r, hi))
		if planarDistance(p0, p1) <= tol {
			return segHit{kind: hitPoint, point: p0}
		}
		return segHit{kind: hitOverlap, overlap: [2]orb.Point{p0, p1}}
	}

	t := cross(sub(c, a), s) / denom
	u := acr / denom
	slack := tol / math.Max(norm(r), Eps)
	uSlack := tol / math.Max(norm(s), Eps)
	if t < -slack || t > 1+slack || u < -uSlack || u > 1+uSlack {
		return segHit{kind: hitNone}
	}
	return segHit{kind: hitPoint, point: add(a, scale(r, t))}
}

// collinearRun is a merged chain of connected collinear overlap pieces.
type collinearRun struct {
	dir  orb.Point
	ends [2]orb.Point
}

// mergeCollinearRuns chains overlap segments that are parallel and share
// an endpoint within tolerance, keeping only each chain's two extreme
// endpoints.
func mergeCollinearRuns(overlaps [][2]orb.Point, tol float64) []collinearRun {
	runs := make([]collinearRun, 0, len(overlaps))
	for _, ov := range overlaps {
		dir := unit(sub(ov[1], ov[0]))
		merged := false
		for i := range runs {
			if math.Abs(cross(runs[i].dir, dir)) > 1e-6 {
				continue
			}
			if !runsTouch(runs[i].ends, ov, tol) {
				continue
			}
			runs[i].ends = extremeEnds(append(runs[i].ends[:], ov[0], ov[1]), runs[i].dir)
			merged = true
			break
		}
		if !merged {
			runs = append(runs, collinearRun{dir: dir, ends: ov})
		}
	}
	return runs
}

func runsTouch(a [2]orb.Point, b [2]orb.Point, tol float64) bool {
	for _, p := range a {
		for _, q := range b {
			if planarDistance(p, q) <= tol {
				return true
			}
		}
	}
	return false
}

func extremeEnds(pts []orb.Point, dir orb.Point) [2]orb.Point {
	lo, hi := pts[0], pts[0]
	loD, hiD := dot(lo, dir), dot(hi, dir)
	for _, p := range pts[1:] {
		d := dot(p, dir)
		if d < loD {
			lo, loD = p, d
		}
		if d > hiD {
			hi, hiD = p, d
		}
	}
	return [2]orb.Point{lo, hi}
}

// BreakAtIntersections cuts every line at its intersections with the other
// lines and at their endpoints. Overlapping collinear runs contribute only
// their two extreme endpoints after connected pieces are merged. Original
// interior vertices are preserved inside each sub-segment because cutting
// uses arc-length substring extraction.
func BreakAtIntersections(lines []orb.LineString, tol float64) []orb.LineString {
	if tol <= 0 {
		tol = 1e-6
	}
	clean := make([]orb.LineString, 0, len(lines))
	for _, ls := range lines {
		ls = dropRepeatedPoints(ls, Eps)
		if len(ls) >= 2 {
			clean = append(clean, ls)
		}
	}
	if len(clean) == 0 {
		return nil
	}

	var cuts []orb.Point
	for _, ls := range clean {
		cuts = append(cuts, ls[0], ls[len(ls)-1])
	}

	bounds := make([]orb.Bound, len(clean))
	for i, ls := range clean {
		bounds[i] = padBound(ls.Bound(), tol)
	}

	var overlaps [][2]orb.Point
	for i := 0; i < len(clean); i++ {
		for j := i + 1; j < len(clean); j++ {
			if !bounds[i].Intersects(bounds[j]) {
				continue
			}
			a, b := clean[i], clean[j]
			for si := 0; si < len(a)-1; si++ {
				for sj := 0; sj < len(b)-1; sj++ {
					hit := segmentIntersect(a[si], a[si+1], b[sj], b[sj+1], tol)
					switch hit.kind {
					case hitPoint:
						cuts = append(cuts, hit.point)
					case hitOverlap:
						overlaps = append(overlaps, hit.overlap)
					}
				}
			}
		}
	}
	for _, run := range mergeCollinearRuns(overlaps, tol) {
		cuts = append(cuts, run.ends[0], run.ends[1])
	}

	var out []orb.LineString
	for _, ls := range clean {
		out = append(out, cutLineAt(ls, cuts, tol)...)
	}
	return out
}

// cutLineAt splits ls at every cut point lying on it within tolerance.
func cutLineAt(ls orb.LineString, cuts []orb.Point, tol float64) []orb.LineString {
	cum := arcLengths(ls)
	total := cum[len(cum)-1]
	if total < Eps {
		return nil
	}

	var distances []float64
	for _, p := range cuts {
		if pointLineDistance(p, ls) > tol {
			continue
		}
		distances = append(distances, projectOntoLine(p, ls))
	}
	sort.Float64s(distances)

	// Dedupe projections closer than tolerance, and drop those at the
	// line's own ends.
	var splits []float64
	for _, d := range distances {
		if d <= tol || d >= total-tol {
			continue
		}
		if len(splits) > 0 && d-splits[len(splits)-1] < tol {
			continue
		}
		splits = append(splits, d)
	}
	if len(splits) == 0 {
		return []orb.LineString{ls}
	}

	var out []orb.LineString
	prev := 0.0
	for _, d := range append(splits, total) {
		if seg := Substring(ls, prev, d); len(seg) >= 2 {
			out = append(out, seg)
		}
		prev = d
	}
	return out
}

func padBound(b orb.Bound, d float64) orb.Bound {
	return orb.Bound{
		Min: orb.Point{b.Min[0] - d, b.Min[1] - d},
		Max: orb.Point{b.Max[0] + d, b.Max[1] + d},
	}
}
