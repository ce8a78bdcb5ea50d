package geometry

import (
	"fmt"
	"math"

	"github.com/paulmach/orb"
)

// BufferOptions control join and cap construction. The zero value means
// round joins, round caps and the default segment count.
type BufferOptions struct {
	Join       JoinStyle
	Cap        CapStyle
	MitreLimit float64
	// QuadSegs is the number of segments per quarter circle for round
	// joins and caps.
	QuadSegs int
}

type JoinStyle string

const (
	JoinRound JoinStyle = "round"
	JoinMitre JoinStyle = "mitre"
	JoinBevel JoinStyle = "bevel"
)

type CapStyle string

const (
	CapRound  CapStyle = "round"
	CapFlat   CapStyle = "flat"
	CapSquare CapStyle = "square"
)

func (o BufferOptions) withDefaults() BufferOptions {
	if o.Join == "" {
		o.Join = JoinRound
	}
	if o.Cap == "" {
		o.Cap = CapRound
	}
	if o.MitreLimit <= 0 {
		o.MitreLimit = 5
	}
	if o.QuadSegs <= 0 {
		o.QuadSegs = 8
	}
	return o
}

// Buffer expands (distance > 0) or erodes (distance < 0) a geometry.
// Erosion only applies to polygonal input; eroding lines or points yields
// nil. A zero distance rebuilds topology via self-union.
func Buffer(g orb.Geometry, distance float64, opts BufferOptions) (orb.Geometry, error) {
	if g == nil {
		return nil, fmt.Errorf("buffer: nil geometry")
	}
	opts = opts.withDefaults()

	if distance == 0 {
		switch g.(type) {
		case orb.Ring, orb.Polygon, orb.MultiPolygon, orb.Collection:
			return SelfUnion(g)
		}
		return orb.Clone(g), nil
	}

	switch v := g.(type) {
	case orb.Point:
		if distance < 0 {
			return nil, nil
		}
		return pointDisc(v, distance, opts), nil
	case orb.MultiPoint:
		if distance < 0 {
			return nil, nil
		}
		parts := make([]orb.Geometry, 0, len(v))
		for _, p := range v {
			parts = append(parts, pointDisc(p, distance, opts))
		}
		return Union(parts...)
	case orb.LineString:
		if distance < 0 {
			return nil, nil
		}
		return bufferLine(v, distance, opts)
	case orb.MultiLineString:
		if distance < 0 {
			return nil, nil
		}
		parts := make([]orb.Geometry, 0, len(v))
		for _, ls := range v {
			b, err := bufferLine(ls, distance, opts)
			if err != nil {
				return nil, err
			}
			if b != nil {
				parts = append(parts, b)
			}
		}
		return Union(parts...)
	case orb.Ring:
		return Buffer(orb.Polygon{v}, distance, opts)
	case orb.Polygon:
		return bufferPolygon(v, distance, opts)
	case orb.MultiPolygon:
		parts := make([]orb.Geometry, 0, len(v))
		for _, p := range v {
			b, err := bufferPolygon(p, distance, opts)
			if err != nil {
				return nil, err
			}
			if b != nil {
				parts = append(parts, b)
			}
		}
		return Union(parts...)
	case orb.Collection:
		parts := make([]orb.Geometry, 0, len(v))
		for _, sub := range v {
			b, err := Buffer(sub, distance, opts)
			if err != nil {
				return nil, err
			}
			if b != nil {
				parts = append(parts, b)
			}
		}
		return Union(parts...)
	}
	return nil, fmt.Errorf("buffer: unsupported geometry %T", g)
}

// bufferPolygon grows a polygon by unioning it with its buffered boundary,
// or shrinks it by subtracting the buffered boundary.
func bufferPolygon(p orb.Polygon, distance float64, opts BufferOptions) (orb.Geometry, error) {
	boundary := orb.MultiLineString{}
	for _, ring := range p {
		boundary = append(boundary, orb.LineString(ring))
	}
	// Ring buffers never need caps.
	ringOpts := opts
	ringOpts.Cap = CapFlat
	band, err := Buffer(boundary, math.Abs(distance), ringOpts)
	if err != nil {
		return nil, err
	}
	if band == nil {
		return SelfUnion(p)
	}
	if distance > 0 {
		return Union(p, band)
	}
	return Difference(p, band)
}

func bufferLine(ls orb.LineString, distance float64, opts BufferOptions) (orb.Geometry, error) {
	ls = dropRepeatedPoints(ls, Eps)
	if len(ls) == 0 {
		return nil, nil
	}
	if len(ls) == 1 {
		return pointDisc(ls[0], distance, opts), nil
	}

	var parts []orb.Geometry
	for i := 0; i < len(ls)-1; i++ {
		parts = append(parts, segmentQuad(ls[i], ls[i+1], distance))
	}
	for i := 1; i < len(ls)-1; i++ {
		if j := joinPatch(ls[i-1], ls[i], ls[i+1], distance, opts); j != nil {
			parts = append(parts, j)
		}
	}
	closed := ls[0].Equal(ls[len(ls)-1])
	if closed {
		if j := joinPatch(ls[len(ls)-2], ls[0], ls[1], distance, opts); j != nil {
			parts = append(parts, j)
		}
	} else {
		if c := capPatch(ls[1], ls[0], distance, opts); c != nil {
			parts = append(parts, c)
		}
		if c := capPatch(ls[len(ls)-2], ls[len(ls)-1], distance, opts); c != nil {
			parts = append(parts, c)
		}
	}
	return Union(parts...)
}

// segmentQuad is the rectangle of width 2*distance around segment ab.
func segmentQuad(a, b orb.Point, distance float64) orb.Polygon {
	n := scale(perp(unit(sub(b, a))), distance)
	return orb.Polygon{orb.Ring{
		add(a, n), add(b, n), sub(b, n), sub(a, n), add(a, n),
	}}
}

// joinPatch fills the gap on the outside of the corner at b between
// segments ab and bc.
func joinPatch(a, b, c orb.Point, distance float64, opts BufferOptions) orb.Geometry {
	d1 := unit(sub(b, a))
	d2 := unit(sub(c, b))
	turn := cross(d1, d2)
	if math.Abs(turn) < Eps {
		return nil
	}

	// Outside normals point away from the turn direction.
	sign := 1.0
	if turn > 0 {
		sign = -1
	}
	n1 := scale(perp(d1), distance*sign)
	n2 := scale(perp(d2), distance*sign)
	p1 := add(b, n1)
	p2 := add(b, n2)

	switch opts.Join {
	case JoinRound:
		return arcWedge(b, p1, p2, distance, opts.QuadSegs)
	case JoinMitre:
		bis := unit(add(n1, n2))
		if norm(bis) < Eps {
			return orb.Polygon{orb.Ring{b, p1, p2, b}}
		}
		cosHalf := dot(unit(n1), bis)
		if cosHalf < Eps {
			return orb.Polygon{orb.Ring{b, p1, p2, b}}
		}
		mitreLen := distance / cosHalf
		if mitreLen > opts.MitreLimit*distance {
			// Limit exceeded: fall back to bevel.
			return orb.Polygon{orb.Ring{b, p1, p2, b}}
		}
		tip := add(b, scale(bis, mitreLen))
		return orb.Polygon{orb.Ring{b, p1, tip, p2, b}}
	default: // bevel
		return orb.Polygon{orb.Ring{b, p1, p2, b}}
	}
}

// capPatch closes the open end at tip of the segment prev->tip.
func capPatch(prev, tip orb.Point, distance float64, opts BufferOptions) orb.Geometry {
	switch opts.Cap {
	case CapFlat:
		return nil
	case CapSquare:
		d := unit(sub(tip, prev))
		n := scale(perp(d), distance)
		ext := scale(d, distance)
		return orb.Polygon{orb.Ring{
			add(tip, n), add(add(tip, ext), n), sub(add(tip, ext), n), sub(tip, n), add(tip, n),
		}}
	default:
		return pointDisc(tip, distance, opts)
	}
}

// arcWedge approximates the circular wedge at center spanning from p1 to
// p2 at the given radius.
func arcWedge(center, p1, p2 orb.Point, radius float64, quadSegs int) orb.Polygon {
	a1 := math.Atan2(p1[1]-center[1], p1[0]-center[0])
	a2 := math.Atan2(p2[1]-center[1], p2[0]-center[0])
	sweep := a2 - a1
	for sweep <= -math.Pi {
		sweep += 2 * math.Pi
	}
	for sweep > math.Pi {
		sweep -= 2 * math.Pi
	}
	steps := int(math.Ceil(math.Abs(sweep) / (math.Pi / 2) * float64(quadSegs)))
	if steps < 1 {
		steps = 1
	}
	ring := orb.Ring{center}
	for i := 0; i <= steps; i++ {
		a := a1 + sweep*float64(i)/float64(steps)
		ring = append(ring, orb.Point{center[0] + radius*math.Cos(a), center[1] + radius*math.Sin(a)})
	}
	ring = append(ring, center)
	return orb.Polygon{ring}
}

func pointDisc(center orb.Point, radius float64, opts BufferOptions) orb.Polygon {
	if opts.Cap == CapSquare {
		return orb.Polygon{orb.Ring{
			{center[0] - radius, center[1] - radius},
			{center[0] + radius, center[1] - radius},
			{center[0] + radius, center[1] + radius},
			{center[0] - radius, center[1] + radius},
			{center[0] - radius, center[1] - radius},
		}}
	}
	segs := 4 * opts.QuadSegs
	if segs < 8 {
		segs = 8
	}
	ring := make(orb.Ring, 0, segs+1)
	for i := 0; i < segs; i++ {
		a := 2 * math.Pi * float64(i) / float64(segs)
		ring = append(ring, orb.Point{center[0] + radius*math.Cos(a), center[1] + radius*math.Sin(a)})
	}
	ring = append(ring, ring[0])
	return orb.Polygon{ring}
}

func dropRepeatedPoints(ls orb.LineString, tol float64) orb.LineString {
	if len(ls) == 0 {
		return ls
	}
	out := orb.LineString{ls[0]}
	for _, p := range ls[1:] {
		if planarDistance(p, out[len(out)-1]) > tol {
			out = append(out, p)
		}
	}
	return out
}

func planarDistance(a, b orb.Point) float64 {
	return math.Hypot(a[0]-b[0], a[1]-b[1])
}
