// Package geometry is the pure algorithm library of the pipeline: buffering,
// boolean overlays, dissolve, line breaking, duplicate removal, polygon
// cleanup and envelope reconstruction over orb geometries. It knows nothing
// about layers or dependency graphs; failure is signaled by error returns,
// never by silently corrupted output.
package geometry

import (
	"math"

	"github.com/paulmach/orb"
)

// Eps is the default coordinate tolerance used when no explicit tolerance
// is configured.
const Eps = 1e-9

func add(p, q orb.Point) orb.Point {
	return orb.Point{p[0] + q[0], p[1] + q[1]}
}

func sub(p, q orb.Point) orb.Point {
	return orb.Point{p[0] - q[0], p[1] - q[1]}
}

func scale(p orb.Point, s float64) orb.Point {
	return orb.Point{p[0] * s, p[1] * s}
}

func dot(p, q orb.Point) float64 {
	return p[0]*q[0] + p[1]*q[1]
}

func cross(p, q orb.Point) float64 {
	return p[0]*q[1] - p[1]*q[0]
}

func norm(p orb.Point) float64 {
	return math.Hypot(p[0], p[1])
}

// unit returns the direction of p, or the zero point for degenerate input.
func unit(p orb.Point) orb.Point {
	n := norm(p)
	if n < Eps {
		return orb.Point{}
	}
	return orb.Point{p[0] / n, p[1] / n}
}

// perp rotates p by 90 degrees counter-clockwise.
func perp(p orb.Point) orb.Point {
	return orb.Point{-p[1], p[0]}
}

func lerp(p, q orb.Point, t float64) orb.Point {
	return orb.Point{p[0] + (q[0]-p[0])*t, p[1] + (q[1]-p[1])*t}
}
