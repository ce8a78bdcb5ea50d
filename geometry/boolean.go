package geometry

import (
	"fmt"

	"github.com/engelsjk/polygol"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// toGeom converts polygonal orb geometry to polygol's multipolygon form.
// Non-polygonal input yields an empty geom.
func toGeom(g orb.Geometry) polygol.Geom {
	switch v := g.(type) {
	case orb.Ring:
		return toGeom(orb.Polygon{v})
	case orb.Polygon:
		poly := make([][][]float64, 0, len(v))
		for _, ring := range v {
			r := make([][]float64, 0, len(ring))
			for _, pt := range ring {
				r = append(r, []float64{pt[0], pt[1]})
			}
			poly = append(poly, r)
		}
		return polygol.Geom{poly}
	case orb.MultiPolygon:
		out := make(polygol.Geom, 0, len(v))
		for _, p := range v {
			out = append(out, toGeom(p)[0])
		}
		return out
	case orb.Collection:
		out := polygol.Geom{}
		for _, sub := range v {
			out = append(out, toGeom(sub)...)
		}
		return out
	}
	return polygol.Geom{}
}

// fromGeom converts polygol output back to an orb geometry: a Polygon for a
// single part, a MultiPolygon otherwise, nil for empty results. Degenerate
// rings (fewer than 4 points after closing) are dropped.
func fromGeom(g polygol.Geom) orb.Geometry {
	mp := orb.MultiPolygon{}
	for _, poly := range g {
		p := orb.Polygon{}
		for _, ring := range poly {
			r := orb.Ring{}
			for _, pt := range ring {
				r = append(r, orb.Point{pt[0], pt[1]})
			}
			if len(r) > 0 && !r[0].Equal(r[len(r)-1]) {
				r = append(r, r[0])
			}
			if len(r) >= 4 {
				p = append(p, r)
			}
		}
		if len(p) > 0 && len(p[0]) >= 4 {
			mp = append(mp, p)
		}
	}
	switch len(mp) {
	case 0:
		return nil
	case 1:
		return mp[0]
	}
	return mp
}

// Union computes the boolean union of polygonal geometries. Non-polygonal
// inputs are ignored. A nil result means the union is empty.
func Union(gs ...orb.Geometry) (orb.Geometry, error) {
	var parts []polygol.Geom
	for _, g := range gs {
		if g == nil {
			continue
		}
		pg := toGeom(g)
		if len(pg) > 0 {
			parts = append(parts, pg)
		}
	}
	if len(parts) == 0 {
		return nil, nil
	}
	out, err := polygol.Union(parts[0], parts[1:]...)
	if err != nil {
		return nil, fmt.Errorf("union: %w", err)
	}
	return fromGeom(out), nil
}

// Intersection computes a AND b over polygonal parts.
func Intersection(a, b orb.Geometry) (orb.Geometry, error) {
	ga, gb := toGeom(a), toGeom(b)
	if len(ga) == 0 || len(gb) == 0 {
		return nil, nil
	}
	out, err := polygol.Intersection(ga, gb)
	if err != nil {
		return nil, fmt.Errorf("intersection: %w", err)
	}
	return fromGeom(out), nil
}

// Difference computes a NOT b over polygonal parts.
func Difference(a, b orb.Geometry) (orb.Geometry, error) {
	ga := toGeom(a)
	if len(ga) == 0 {
		return nil, nil
	}
	gb := toGeom(b)
	if len(gb) == 0 {
		return fromGeom(ga), nil
	}
	out, err := polygol.Difference(ga, gb)
	if err != nil {
		return nil, fmt.Errorf("difference: %w", err)
	}
	return fromGeom(out), nil
}

// SelfUnion rebuilds a polygonal geometry's topology by unioning it with
// itself, the buffer(0) idiom. Self-intersections are resolved into valid
// rings.
func SelfUnion(g orb.Geometry) (orb.Geometry, error) {
	pg := toGeom(g)
	if len(pg) == 0 {
		return nil, nil
	}
	out, err := polygol.Union(pg)
	if err != nil {
		return nil, fmt.Errorf("self union: %w", err)
	}
	return fromGeom(out), nil
}

// MakeValid repairs an invalid geometry. Polygonal input goes through a
// self-union decomposition; line and point input is returned unchanged
// (lines cannot be invalid in this model). A heterogeneous repair keeps
// only the polygon and line parts. Returns nil, error when nothing usable
// remains.
func MakeValid(g orb.Geometry) (orb.Geometry, error) {
	if g == nil {
		return nil, fmt.Errorf("make valid: nil geometry")
	}
	switch v := g.(type) {
	case orb.Point, orb.MultiPoint, orb.LineString, orb.MultiLineString:
		return g, nil
	case orb.Ring, orb.Polygon, orb.MultiPolygon:
		repaired, err := SelfUnion(v)
		if err != nil {
			return nil, err
		}
		if repaired == nil || planar.Area(repaired) == 0 {
			return nil, fmt.Errorf("make valid: no usable parts remain")
		}
		return repaired, nil
	case orb.Collection:
		out := orb.Collection{}
		for _, sub := range v {
			switch sub.(type) {
			case orb.LineString, orb.MultiLineString:
				out = append(out, sub)
			case orb.Ring, orb.Polygon, orb.MultiPolygon:
				r, err := MakeValid(sub)
				if err == nil && r != nil {
					out = append(out, r)
				}
			}
		}
		if len(out) == 0 {
			return nil, fmt.Errorf("make valid: no usable parts remain")
		}
		if len(out) == 1 {
			return out[0], nil
		}
		return out, nil
	}
	return nil, fmt.Errorf("make valid: unsupported geometry %T", g)
}

// ExplodeToPolygons flattens any geometry into its single-part polygons.
func ExplodeToPolygons(g orb.Geometry) []orb.Polygon {
	switch v := g.(type) {
	case orb.Ring:
		return []orb.Polygon{{v}}
	case orb.Polygon:
		return []orb.Polygon{v}
	case orb.MultiPolygon:
		out := make([]orb.Polygon, 0, len(v))
		out = append(out, v...)
		return out
	case orb.Collection:
		var out []orb.Polygon
		for _, sub := range v {
			out = append(out, ExplodeToPolygons(sub)...)
		}
		return out
	}
	return nil
}

// ExplodeToLines flattens any geometry into its single-part line strings.
func ExplodeToLines(g orb.Geometry) []orb.LineString {
	switch v := g.(type) {
	case orb.LineString:
		return []orb.LineString{v}
	case orb.MultiLineString:
		out := make([]orb.LineString, 0, len(v))
		out = append(out, v...)
		return out
	case orb.Collection:
		var out []orb.LineString
		for _, sub := range v {
			out = append(out, ExplodeToLines(sub)...)
		}
		return out
	}
	return nil
}

// LargestPolygon returns the part with the greatest area, or nil when the
// geometry has no polygonal parts.
func LargestPolygon(g orb.Geometry) orb.Geometry {
	polys := ExplodeToPolygons(g)
	if len(polys) == 0 {
		return nil
	}
	best := polys[0]
	bestArea := planar.Area(best)
	for _, p := range polys[1:] {
		if a := planar.Area(p); a > bestArea {
			best, bestArea = p, a
		}
	}
	return best
}
