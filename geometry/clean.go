package geometry

import (
	"fmt"
	"math"

	"github.com/paulmach/orb"
)

// CleanOptions tune the polygon cleanup pipeline.
type CleanOptions struct {
	// MergeTolerance merges vertices closer than this distance.
	MergeTolerance float64
	// SimplifyTolerance is the Douglas-Peucker threshold.
	SimplifyTolerance float64
	// MinSpikeLength: protrusions thinner than this are eroded away.
	MinSpikeLength float64
	// MaxAreaLoss rejects the whole cleanup when the polygon loses more
	// than this fraction of its area. Defaults to 0.5.
	MaxAreaLoss float64
	// CollinearThreshold is the normalized cross-product magnitude below
	// which consecutive edges count as collinear.
	CollinearThreshold float64
}

func (o CleanOptions) withDefaults() CleanOptions {
	if o.MergeTolerance <= 0 {
		o.MergeTolerance = 1e-6
	}
	if o.SimplifyTolerance <= 0 {
		o.SimplifyTolerance = 1e-6
	}
	if o.MaxAreaLoss <= 0 {
		o.MaxAreaLoss = 0.5
	}
	if o.CollinearThreshold <= 0 {
		o.CollinearThreshold = 1e-9
	}
	return o
}

// CleanPolygon removes slivers, spikes and degenerate vertices from a
// polygon through a fixed sequence of repairs: duplicate-vertex removal,
// collinear-vertex removal, buffer(0), vertex merging, Douglas-Peucker
// simplification, erode-dilate despiking and a final validity pass. When
// the cleaned polygon has lost more than MaxAreaLoss of the original area,
// or a repair step collapses the polygon entirely, the cleanup is rejected
// and the original polygon is returned with an error.
func CleanPolygon(p orb.Polygon, opts CleanOptions) (orb.Geometry, error) {
	opts = opts.withDefaults()
	original := Area(p)
	if original == 0 {
		return nil, fmt.Errorf("clean: zero-area polygon")
	}

	// 1+2: vertex-level repairs ring by ring.
	stage := orb.Polygon{}
	for _, ring := range p {
		r := dropRingDuplicates(ring, Eps)
		r = dropCollinearVertices(r, opts.CollinearThreshold)
		if len(r) >= 4 {
			stage = append(stage, r)
		}
	}
	if len(stage) == 0 {
		return p, fmt.Errorf("clean: all rings degenerate, keeping original")
	}

	// 3: force self-consistent topology, keeping the largest part.
	fixed, err := SelfUnion(stage)
	if err != nil || fixed == nil {
		return p, fmt.Errorf("clean: topology rebuild failed, keeping original")
	}
	g := LargestPolygon(fixed)

	// 4: merge vertices closer than tolerance.
	g = mergeCloseVertices(g, opts.MergeTolerance)

	// 5: simplify, preserving ring validity.
	g = Simplify(g, opts.SimplifyTolerance, true)

	// 6: erode-dilate to shave thin protrusions.
	if opts.MinSpikeLength > 0 {
		half := opts.MinSpikeLength / 2
		eroded, err := Buffer(g, -half, BufferOptions{Join: JoinMitre})
		if err == nil && eroded != nil {
			dilated, err := Buffer(eroded, half, BufferOptions{Join: JoinMitre})
			if err == nil && dilated != nil {
				if largest := LargestPolygon(dilated); largest != nil {
					g = largest
				}
			}
		}
	}

	// 7: final validity pass.
	final, err := SelfUnion(g)
	if err != nil || final == nil {
		return p, fmt.Errorf("clean: final validity pass failed, keeping original")
	}

	cleaned := Area(final)
	if cleaned < original*(1-opts.MaxAreaLoss) {
		return p, fmt.Errorf("clean: area loss %.1f%% exceeds limit, keeping original",
			(1-cleaned/original)*100)
	}
	return final, nil
}

func dropRingDuplicates(ring orb.Ring, tol float64) orb.Ring {
	r := orb.Ring(dropRepeatedPoints(orb.LineString(ring), tol))
	if len(r) > 0 && !r[0].Equal(r[len(r)-1]) {
		r = append(r, r[0])
	}
	return r
}

// dropCollinearVertices removes interior vertices whose adjacent edges are
// collinear under a normalized cross-product test. This also removes
// zero-width out-and-back spikes, where the edges are anti-parallel.
func dropCollinearVertices(ring orb.Ring, threshold float64) orb.Ring {
	if len(ring) < 4 {
		return ring
	}
	open := ring[:len(ring)-1]
	kept := make([]orb.Point, 0, len(open))
	n := len(open)
	for i := 0; i < n; i++ {
		prev := open[(i-1+n)%n]
		cur := open[i]
		next := open[(i+1)%n]
		e1 := unit(sub(cur, prev))
		e2 := unit(sub(next, cur))
		if math.Abs(cross(e1, e2)) <= threshold {
			// Straight continuation or an out-and-back spike.
			continue
		}
		kept = append(kept, cur)
	}
	// Removing a spike leaves its base point twice in a row.
	kept = []orb.Point(dropRepeatedPoints(orb.LineString(kept), Eps))
	if len(kept) > 1 && planarDistance(kept[0], kept[len(kept)-1]) <= Eps {
		kept = kept[:len(kept)-1]
	}
	if len(kept) < 3 {
		return nil
	}
	out := orb.Ring(kept)
	out = append(out, out[0])
	return out
}

func mergeCloseVertices(g orb.Geometry, tol float64) orb.Geometry {
	merge := func(ring orb.Ring) orb.Ring {
		r := orb.Ring(dropRepeatedPoints(orb.LineString(ring), tol))
		if len(r) > 0 && !r[0].Equal(r[len(r)-1]) {
			if planarDistance(r[0], r[len(r)-1]) <= tol {
				r[len(r)-1] = r[0]
			} else {
				r = append(r, r[0])
			}
		}
		return r
	}
	switch v := g.(type) {
	case orb.Polygon:
		out := orb.Polygon{}
		for _, ring := range v {
			if m := merge(ring); len(m) >= 4 {
				out = append(out, m)
			}
		}
		return out
	case orb.MultiPolygon:
		out := orb.MultiPolygon{}
		for _, p := range v {
			if m := mergeCloseVertices(p, tol).(orb.Polygon); len(m) > 0 {
				out = append(out, m)
			}
		}
		return out
	}
	return g
}
