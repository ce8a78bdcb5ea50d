package operations

import (
	"math"

	"github.com/paulmach/orb"

	"github.com/gunther-schulz/geoforge/geometry"
	"github.com/gunther-schulz/geoforge/internal/errors"
	"github.com/gunther-schulz/geoforge/internal/types"
)

func init() {
	mustRegister(types.OperationTypeDifference, runDifference)
	mustRegister(types.OperationTypeIntersection, runIntersection)
}

// overlayInputs splits the context into the base features (whose attribute
// rows survive) and the combined overlay geometry unioned from the
// remaining sources. When the layer already has geometry, all sources form
// the overlay; otherwise the first source is the base.
func overlayInputs(ctx *Context) ([]types.Feature, orb.Geometry, error) {
	var base []types.Feature
	var overlaySources []*types.Collection

	if !ctx.Base.IsEmpty() {
		base = ctx.Base.Features
		overlaySources = ctx.Sources
	} else {
		if len(ctx.Sources) < 2 {
			return nil, nil, errors.NewGeometryError(ctx.Layer, string(ctx.Spec.Type),
				"overlay needs a base and at least one overlay source")
		}
		base = ctx.Sources[0].Features
		overlaySources = ctx.Sources[1:]
	}

	var parts []orb.Geometry
	for _, src := range overlaySources {
		if src == nil {
			continue
		}
		parts = append(parts, src.Geometries()...)
	}
	overlay, err := geometry.Union(parts...)
	if err != nil {
		return nil, nil, errors.NewGeometryError(ctx.Layer, string(ctx.Spec.Type), "overlay union: %v", err)
	}
	return base, overlay, nil
}

// baseUnion merges the polygonal parts of the base features.
func baseUnion(base []types.Feature) (orb.Geometry, error) {
	parts := make([]orb.Geometry, 0, len(base))
	for _, f := range base {
		if f.Geometry != nil {
			parts = append(parts, f.Geometry)
		}
	}
	return geometry.Union(parts...)
}

// shouldReverse decides the difference direction when the config does not
// force one. Containment wins outright; otherwise the orientation whose
// intersection area is closer to the smaller operand's area is chosen.
// This is a best-effort heuristic for partially-overlapping inputs with
// similar areas and is preserved as documented behavior.
func shouldReverse(base, overlay orb.Geometry) bool {
	if base == nil || overlay == nil {
		return false
	}
	if geometry.ContainsPolygonal(base, overlay) {
		return false
	}
	if geometry.ContainsPolygonal(overlay, base) {
		return true
	}
	inter, err := geometry.Intersection(base, overlay)
	if err != nil || inter == nil {
		return false
	}
	interArea := geometry.Area(inter)
	baseArea := geometry.Area(base)
	overlayArea := geometry.Area(overlay)
	// The operand the intersection nearly fills is the one being cut away.
	if math.Abs(interArea-overlayArea) <= math.Abs(interArea-baseArea) {
		return false
	}
	return true
}

// runDifference subtracts the combined overlay from each base feature,
// preserving that feature's attributes. When the direction is reversed the
// base union is subtracted from the overlay instead and attribute rows are
// lost, since the surviving geometry no longer corresponds to single input
// features.
func runDifference(ctx *Context) (*types.Collection, error) {
	params, ok := ctx.Spec.Params.(types.OverlayParams)
	if !ok {
		return nil, errors.NewConfigError("difference: wrong parameter type %T", ctx.Spec.Params)
	}
	base, overlay, err := overlayInputs(ctx)
	if err != nil {
		return nil, err
	}

	out := types.NewCollection(ctx.CRS)
	if overlay == nil {
		for _, f := range base {
			out.Append(f.Clone())
		}
		return out, nil
	}

	merged, err := baseUnion(base)
	if err != nil {
		return nil, errors.NewGeometryError(ctx.Layer, string(ctx.Spec.Type), "base union: %v", err)
	}

	reverse := false
	if params.Reverse != nil {
		reverse = *params.Reverse
	} else {
		reverse = shouldReverse(merged, overlay)
	}

	if reverse {
		diff, err := geometry.Difference(overlay, merged)
		if err != nil {
			return nil, errors.NewGeometryError(ctx.Layer, string(ctx.Spec.Type), "%v", err)
		}
		for _, poly := range geometry.ExplodeToPolygons(diff) {
			if geometry.Area(poly) == 0 {
				continue
			}
			out.Append(types.NewFeature(poly))
		}
		return out, nil
	}

	for _, f := range base {
		if f.Geometry == nil {
			continue
		}
		diff, err := geometry.Difference(f.Geometry, overlay)
		if err != nil {
			return nil, errors.NewGeometryError(ctx.Layer, string(ctx.Spec.Type), "%v", err)
		}
		for _, poly := range geometry.ExplodeToPolygons(diff) {
			if geometry.Area(poly) == 0 {
				continue
			}
			nf := f.Clone()
			nf.Geometry = poly
			out.Append(nf)
		}
	}
	return out, nil
}

// runIntersection clips each base feature against the combined overlay
// individually, so every output part keeps its input feature's attribute
// row. A blanket union-then-intersect would lose those joins. Line and
// point fragments are stripped and multi-part results exploded.
func runIntersection(ctx *Context) (*types.Collection, error) {
	if _, ok := ctx.Spec.Params.(types.OverlayParams); !ok {
		return nil, errors.NewConfigError("intersection: wrong parameter type %T", ctx.Spec.Params)
	}
	base, overlay, err := overlayInputs(ctx)
	if err != nil {
		return nil, err
	}

	out := types.NewCollection(ctx.CRS)
	if overlay == nil {
		return out, nil
	}
	for _, f := range base {
		if f.Geometry == nil {
			continue
		}
		clipped, err := geometry.Intersection(f.Geometry, overlay)
		if err != nil {
			return nil, errors.NewGeometryError(ctx.Layer, string(ctx.Spec.Type), "%v", err)
		}
		for _, poly := range geometry.ExplodeToPolygons(clipped) {
			if geometry.Area(poly) == 0 {
				continue
			}
			nf := f.Clone()
			nf.Geometry = poly
			out.Append(nf)
		}
	}
	return out, nil
}
