package geometry

import (
	"math"

	"github.com/paulmach/orb"
)

// DissolveOptions tune the buffer-trick union used to merge polygons that
// touch only at edges or across hairline gaps.
type DissolveOptions struct {
	// Tolerance is the buffer-trick distance d. Zero disables the trick
	// and dissolving degrades to a plain union.
	Tolerance    float64
	SnapVertices bool
	// SnapGrid, when positive, snaps vertices to a regular grid of this
	// cell size before the final union for numeric stability.
	SnapGrid   float64
	SecondPass bool
}

// Asymmetric expand/shrink factors: growing slightly more than shrinking
// closes near-gaps without leaving sliver holes behind.
const (
	dissolveExpand = 1.1
	dissolveShrink = 0.9
)

// Dissolve merges polygonal geometries into as few polygons as possible.
// With a positive tolerance every input is expanded by +1.1d with mitre
// joins, unioned, then shrunk by -0.9d, so polygons separated by less than
// roughly 2d come out merged.
func Dissolve(gs []orb.Geometry, opts DissolveOptions) (orb.Geometry, error) {
	polys := make([]orb.Geometry, 0, len(gs))
	for _, g := range gs {
		for _, p := range ExplodeToPolygons(g) {
			polys = append(polys, p)
		}
	}
	if len(polys) == 0 {
		return nil, nil
	}

	if opts.SnapVertices && opts.Tolerance > 0 {
		polys = snapMergeVertices(polys, opts.Tolerance)
	}

	if opts.Tolerance > 0 {
		bufOpts := BufferOptions{Join: JoinMitre}
		expanded := make([]orb.Geometry, 0, len(polys))
		for _, p := range polys {
			b, err := Buffer(p, opts.Tolerance*dissolveExpand, bufOpts)
			if err != nil {
				return nil, err
			}
			if b != nil {
				expanded = append(expanded, b)
			}
		}
		merged, err := Union(expanded...)
		if err != nil {
			return nil, err
		}
		if merged == nil {
			return nil, nil
		}
		shrunk, err := Buffer(merged, -opts.Tolerance*dissolveShrink, bufOpts)
		if err != nil {
			return nil, err
		}
		if shrunk == nil {
			return nil, nil
		}
		polys = []orb.Geometry{shrunk}
	}

	if opts.SnapGrid > 0 {
		for i, p := range polys {
			polys[i] = SnapToGrid(p, opts.SnapGrid)
		}
	}

	out, err := Union(polys...)
	if err != nil {
		return nil, err
	}
	if opts.SecondPass && out != nil {
		// Idempotent on already-dissolved input.
		out, err = SelfUnion(out)
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

// snapMergeVertices replaces every vertex with the canonical representative
// of its tolerance-sized neighbourhood, shared across all polygons, so
// near-miss vertices from reprojection or hand-drawn input coincide.
func snapMergeVertices(polys []orb.Geometry, tol float64) []orb.Geometry {
	type cell struct{ x, y int64 }
	reps := make(map[cell]orb.Point)

	canon := func(p orb.Point) orb.Point {
		cx := int64(math.Floor(p[0] / tol))
		cy := int64(math.Floor(p[1] / tol))
		for dx := int64(-1); dx <= 1; dx++ {
			for dy := int64(-1); dy <= 1; dy++ {
				if rep, ok := reps[cell{cx + dx, cy + dy}]; ok {
					if planarDistance(p, rep) <= tol {
						return rep
					}
				}
			}
		}
		reps[cell{cx, cy}] = p
		return p
	}

	out := make([]orb.Geometry, 0, len(polys))
	for _, g := range polys {
		poly := g.(orb.Polygon)
		snapped := make(orb.Polygon, 0, len(poly))
		for _, ring := range poly {
			r := make(orb.Ring, 0, len(ring))
			for _, p := range ring {
				r = append(r, canon(p))
			}
			r = orb.Ring(dropRepeatedPoints(orb.LineString(r), 0))
			if len(r) > 0 && !r[0].Equal(r[len(r)-1]) {
				r = append(r, r[0])
			}
			if len(r) >= 4 {
				snapped = append(snapped, r)
			}
		}
		if len(snapped) > 0 {
			out = append(out, snapped)
		}
	}
	return out
}

// SnapToGrid rounds every coordinate to the nearest multiple of cell.
func SnapToGrid(g orb.Geometry, cell float64) orb.Geometry {
	if cell <= 0 {
		return g
	}
	round := func(v float64) float64 {
		return math.Round(v/cell) * cell
	}
	switch v := g.(type) {
	case orb.Point:
		return orb.Point{round(v[0]), round(v[1])}
	case orb.LineString:
		out := make(orb.LineString, len(v))
		for i, p := range v {
			out[i] = orb.Point{round(p[0]), round(p[1])}
		}
		return out
	case orb.Ring:
		out := make(orb.Ring, len(v))
		for i, p := range v {
			out[i] = orb.Point{round(p[0]), round(p[1])}
		}
		return out
	case orb.Polygon:
		out := make(orb.Polygon, len(v))
		for i, r := range v {
			out[i] = SnapToGrid(r, cell).(orb.Ring)
		}
		return out
	case orb.MultiPolygon:
		out := make(orb.MultiPolygon, len(v))
		for i, p := range v {
			out[i] = SnapToGrid(p, cell).(orb.Polygon)
		}
		return out
	case orb.MultiLineString:
		out := make(orb.MultiLineString, len(v))
		for i, ls := range v {
			out[i] = SnapToGrid(ls, cell).(orb.LineString)
		}
		return out
	}
	return g
}
