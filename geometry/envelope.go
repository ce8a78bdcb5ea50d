package geometry

import (
	"fmt"
	"math"

	"github.com/paulmach/orb"
)

// EnvelopeOptions control envelope reconstruction.
type EnvelopeOptions struct {
	Padding float64
	// Cap selects the end style of the reconstructed rectangle: flat,
	// square (padded flat) or round (stadium ends).
	Cap CapStyle
	// AreaRatio below which the polygon counts as bent and is split
	// before enveloping.
	AreaRatio float64
	// MaxDepth bounds the bent-split recursion.
	MaxDepth int
}

func (o EnvelopeOptions) withDefaults() EnvelopeOptions {
	if o.Cap == "" {
		o.Cap = CapFlat
	}
	if o.AreaRatio <= 0 {
		o.AreaRatio = 0.85
	}
	if o.MaxDepth <= 0 {
		o.MaxDepth = 4
	}
	return o
}

// Envelope reconstructs a clean bounding shape for a polygon. Compact
// polygons get a rectangle aligned to the longest edge of their minimum
// rotated rectangle, derived from the polygon's projection onto that edge
// direction and its perpendicular. Bent polygons, whose area falls well
// short of their rotated rectangle, are split at the sharpest bend and the
// halves are enveloped recursively and unioned. The result always contains
// the input for padding >= 0.
func Envelope(p orb.Polygon, opts EnvelopeOptions) (orb.Geometry, error) {
	opts = opts.withDefaults()
	return envelopeRec(p, opts, 0)
}

func envelopeRec(p orb.Polygon, opts EnvelopeOptions, depth int) (orb.Geometry, error) {
	if len(p) == 0 || len(p[0]) < 4 {
		return nil, fmt.Errorf("envelope: degenerate polygon")
	}
	rect, ok := MinimumRotatedRectangle(p)
	if !ok || rect.Area() == 0 {
		return nil, fmt.Errorf("envelope: no rotated rectangle")
	}

	area := Area(p)
	if area/rect.Area() < opts.AreaRatio && depth < opts.MaxDepth {
		left, right, err := splitAtSharpestBend(p)
		if err == nil {
			// Every clipped part must be enveloped; dropping one would
			// leave input geometry outside the result.
			parts := make([]orb.Polygon, 0, len(left)+len(right))
			parts = append(parts, left...)
			parts = append(parts, right...)
			envs := make([]orb.Geometry, 0, len(parts))
			for _, part := range parts {
				env, perr := envelopeRec(part, opts, depth+1)
				if perr != nil {
					envs = nil
					break
				}
				envs = append(envs, env)
			}
			if envs != nil {
				return Union(envs...)
			}
		}
		// Split failed; fall through to the plain rectangle.
	}

	return alignedEnvelope(p, rect, opts), nil
}

// alignedEnvelope builds the final shape from the polygon's projection
// onto the rectangle's long axis and its perpendicular.
func alignedEnvelope(p orb.Polygon, rect RotatedRect, opts EnvelopeOptions) orb.Geometry {
	dir := rect.Axis
	n := perp(dir)
	minU, maxU := math.Inf(1), math.Inf(-1)
	minV, maxV := math.Inf(1), math.Inf(-1)
	for _, pt := range p[0] {
		u, v := dot(pt, dir), dot(pt, n)
		minU, maxU = math.Min(minU, u), math.Max(maxU, u)
		minV, maxV = math.Min(minV, v), math.Max(maxV, v)
	}

	pad := opts.Padding
	switch opts.Cap {
	case CapRound:
		// Stadium: a body rectangle between the end-cap centers plus a
		// disc at each end.
		radius := (maxV-minV)/2 + pad
		midV := (minV + maxV) / 2
		c1 := add(scale(dir, minU), scale(n, midV))
		c2 := add(scale(dir, maxU), scale(n, midV))
		body := orb.Polygon{orb.Ring{
			add(c1, scale(n, radius)),
			add(c2, scale(n, radius)),
			sub(c2, scale(n, radius)),
			sub(c1, scale(n, radius)),
			add(c1, scale(n, radius)),
		}}
		discOpts := BufferOptions{}.withDefaults()
		merged, err := Union(body, pointDisc(c1, radius, discOpts), pointDisc(c2, radius, discOpts))
		if err == nil && merged != nil {
			return merged
		}
		fallthrough
	case CapSquare:
		minU, maxU = minU-pad, maxU+pad
		minV, maxV = minV-pad, maxV+pad
	default:
		// Flat ends still pad the sides.
		minV, maxV = minV-pad, maxV+pad
	}

	return orb.Polygon{orb.Ring{
		add(scale(dir, minU), scale(n, minV)),
		add(scale(dir, maxU), scale(n, minV)),
		add(scale(dir, maxU), scale(n, maxV)),
		add(scale(dir, minU), scale(n, maxV)),
		add(scale(dir, minU), scale(n, minV)),
	}}
}

// splitAtSharpestBend cuts the polygon at the exterior vertex with the
// largest deviation from a straight continuation, along a line
// perpendicular to that vertex's angle bisector. All clipped parts on each
// side are returned.
func splitAtSharpestBend(p orb.Polygon) ([]orb.Polygon, []orb.Polygon, error) {
	ring := p[0]
	open := ring[:len(ring)-1]
	n := len(open)
	if n < 3 {
		return nil, nil, fmt.Errorf("envelope: ring too small to split")
	}

	orient := 1.0
	if ring.Orientation() == orb.CW {
		orient = -1
	}

	// A bend shows up as a reflex vertex (interior angle above 180). Reflex
	// vertices take priority; without one, the largest deviation wins.
	bestIdx := -1
	bestDev := 0.0
	bestReflex := false
	for i := 0; i < n; i++ {
		prev := open[(i-1+n)%n]
		cur := open[i]
		next := open[(i+1)%n]
		e1 := unit(sub(cur, prev))
		e2 := unit(sub(next, cur))
		if norm(e1) < Eps || norm(e2) < Eps {
			continue
		}
		reflex := orient*cross(e1, e2) < 0
		// Deviation from straight continuation, in [0, pi].
		dev := math.Acos(clamp(dot(e1, e2), -1, 1))
		if bestIdx < 0 || (reflex && !bestReflex) || (reflex == bestReflex && dev > bestDev) {
			bestIdx = i
			bestDev = dev
			bestReflex = reflex
		}
	}
	if bestIdx < 0 || bestDev < Eps {
		return nil, nil, fmt.Errorf("envelope: no bend found")
	}

	cur := open[bestIdx]
	prev := open[(bestIdx-1+n)%n]
	next := open[(bestIdx+1)%n]
	e1 := unit(sub(cur, prev))
	e2 := unit(sub(next, cur))
	bisector := unit(add(e1, e2))
	if norm(bisector) < Eps {
		bisector = e1
	}
	// The cut crosses the shape at the bend vertex, perpendicular to the
	// local travel direction.
	cutDir := perp(bisector)

	left, right, err := halfPlaneSplit(p, cur, cutDir)
	if err != nil {
		return nil, nil, err
	}
	return left, right, nil
}

// halfPlaneSplit intersects the polygon with the two half planes bounded
// by the line through origin along dir. Every non-trivial clipped part on
// each side is returned.
func halfPlaneSplit(p orb.Polygon, origin, dir orb.Point) ([]orb.Polygon, []orb.Polygon, error) {
	b := p.Bound()
	extent := 2 * planarDistance(b.Min, b.Max)
	if extent < Eps {
		return nil, nil, fmt.Errorf("envelope: degenerate bound")
	}
	d := scale(unit(dir), extent)
	nrm := scale(perp(unit(dir)), extent)

	side := func(sign float64) ([]orb.Polygon, error) {
		off := scale(nrm, sign)
		half := orb.Polygon{orb.Ring{
			sub(origin, d),
			add(origin, d),
			add(add(origin, d), off),
			add(sub(origin, d), off),
			sub(origin, d),
		}}
		clipped, err := Intersection(p, half)
		if err != nil {
			return nil, err
		}
		var parts []orb.Polygon
		for _, part := range ExplodeToPolygons(clipped) {
			if Area(part) > Eps {
				parts = append(parts, part)
			}
		}
		return parts, nil
	}

	left, err := side(1)
	if err != nil {
		return nil, nil, err
	}
	right, err := side(-1)
	if err != nil {
		return nil, nil, err
	}
	if len(left) == 0 || len(right) == 0 {
		return nil, nil, fmt.Errorf("envelope: split produced an empty side")
	}
	return left, right, nil
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
