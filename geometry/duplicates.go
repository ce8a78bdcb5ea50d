package geometry

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
	"github.com/paulmach/orb/quadtree"
)

// Minimum length ratio (shorter/longer) for two segments to count as
// duplicates.
const duplicateLengthRatio = 0.999

type indexedLine struct {
	mid orb.Point
	idx int
}

func (l indexedLine) Point() orb.Point { return l.mid }

// RemoveDuplicateLines drops later lines that duplicate an earlier one.
// Two lines are duplicates only when all of the following hold: their
// length ratio is at least 0.999; their endpoints match start-to-start and
// end-to-end, or start-to-end and end-to-start, within tolerance; their
// Hausdorff distance is below tolerance; and their buffered forms overlap.
// The joint test guards against merely-parallel or partially-overlapping
// segments being collapsed. Lines with fewer than two points carry no
// geometry and are dropped.
func RemoveDuplicateLines(lines []orb.LineString, tol float64) []orb.LineString {
	if tol <= 0 {
		tol = 1.0
	}
	clean := make([]orb.LineString, 0, len(lines))
	for _, ls := range lines {
		if len(ls) >= 2 {
			clean = append(clean, ls)
		}
	}
	lines = clean
	n := len(lines)
	if n < 2 {
		return lines
	}

	mids := make([]orb.Point, n)
	lens := make([]float64, n)
	bound := orb.Bound{Min: orb.Point{1, 1}, Max: orb.Point{-1, -1}}
	for i, ls := range lines {
		cum := arcLengths(ls)
		lens[i] = cum[len(cum)-1]
		mids[i] = interpolateAt(ls, cum, lens[i]/2)
		if i == 0 {
			bound = orb.Bound{Min: mids[i], Max: mids[i]}
		} else {
			bound = bound.Extend(mids[i])
		}
	}

	// Duplicates share midpoints within tolerance, so a midpoint index
	// turns the O(n^2) scan into neighbourhood queries.
	qt := quadtree.New(padBound(bound, tol))
	for i := range lines {
		_ = qt.Add(indexedLine{mid: mids[i], idx: i})
	}

	removed := make([]bool, n)
	var buf []orb.Pointer
	for i := 0; i < n; i++ {
		if removed[i] {
			continue
		}
		search := padBound(orb.Bound{Min: mids[i], Max: mids[i]}, tol)
		buf = qt.InBound(buf[:0], search)
		for _, ptr := range buf {
			j := ptr.(indexedLine).idx
			if j <= i || removed[j] {
				continue
			}
			if isDuplicateLine(lines[i], lines[j], lens[i], lens[j], tol) {
				removed[j] = true
			}
		}
	}

	out := make([]orb.LineString, 0, n)
	for i, ls := range lines {
		if !removed[i] {
			out = append(out, ls)
		}
	}
	return out
}

func isDuplicateLine(a, b orb.LineString, lenA, lenB, tol float64) bool {
	if len(a) < 2 || len(b) < 2 {
		return false
	}

	shorter, longer := lenA, lenB
	if shorter > longer {
		shorter, longer = longer, shorter
	}
	if longer == 0 || shorter/longer < duplicateLengthRatio {
		return false
	}

	sameDir := planar.Distance(a[0], b[0]) <= tol && planar.Distance(a[len(a)-1], b[len(b)-1]) <= tol
	revDir := planar.Distance(a[0], b[len(b)-1]) <= tol && planar.Distance(a[len(a)-1], b[0]) <= tol
	if !sameDir && !revDir {
		return false
	}

	if HausdorffDistance(a, b) >= tol {
		return false
	}

	return bufferedLinesOverlap(a, b, tol)
}

// bufferedLinesOverlap checks that the tolerance buffers of the two lines
// actually intersect with positive area.
func bufferedLinesOverlap(a, b orb.LineString, tol float64) bool {
	opts := BufferOptions{Join: JoinRound, Cap: CapRound, QuadSegs: 2}
	ba, err := Buffer(a, tol/2, opts)
	if err != nil || ba == nil {
		return false
	}
	bb, err := Buffer(b, tol/2, opts)
	if err != nil || bb == nil {
		return false
	}
	overlap, err := Intersection(ba, bb)
	if err != nil || overlap == nil {
		return false
	}
	return Area(overlap) > 0
}
