package operations

import (
	"github.com/paulmach/orb"

	"github.com/gunther-schulz/geoforge/geometry"
	"github.com/gunther-schulz/geoforge/internal/errors"
	"github.com/gunther-schulz/geoforge/internal/types"
)

func init() {
	mustRegister(types.OperationTypeFilterGeometry, runFilterGeometry)
	mustRegister(types.OperationTypeFilterByIntersection, runFilterByIntersection)
}

func geometryTypeName(g orb.Geometry) string {
	switch g.(type) {
	case orb.Point, orb.MultiPoint:
		return "point"
	case orb.LineString, orb.MultiLineString:
		return "line"
	case orb.Ring, orb.Polygon, orb.MultiPolygon:
		return "polygon"
	}
	return "unknown"
}

// runFilterGeometry keeps features passing the area/width bounds and the
// geometry-type allow-list. Width is estimated as 2*area/perimeter.
func runFilterGeometry(ctx *Context) (*types.Collection, error) {
	params, ok := ctx.Spec.Params.(types.FilterGeometryParams)
	if !ok {
		return nil, errors.NewConfigError("filterGeometry: wrong parameter type %T", ctx.Spec.Params)
	}

	allowed := map[string]bool{}
	for _, t := range params.Types {
		allowed[t] = true
	}

	in := ctx.working()
	out := types.NewCollection(ctx.CRS)
	for _, f := range in.Features {
		if f.Geometry == nil {
			continue
		}
		if len(allowed) > 0 && !allowed[geometryTypeName(f.Geometry)] {
			continue
		}
		area := geometry.Area(f.Geometry)
		if params.MinArea > 0 && area < params.MinArea {
			continue
		}
		if params.MaxArea > 0 && area > params.MaxArea {
			continue
		}
		width := geometry.EstimatedWidth(f.Geometry)
		if params.MinWidth > 0 && width < params.MinWidth {
			continue
		}
		if params.MaxWidth > 0 && width > params.MaxWidth {
			continue
		}
		out.Append(f.Clone())
	}
	return out, nil
}

// runFilterByIntersection keeps base features that touch the buffered
// union of the reference sources, or the complement with invert set.
func runFilterByIntersection(ctx *Context) (*types.Collection, error) {
	params, ok := ctx.Spec.Params.(types.FilterByIntersectionParams)
	if !ok {
		return nil, errors.NewConfigError("filterByIntersection: wrong parameter type %T", ctx.Spec.Params)
	}
	if ctx.Base.IsEmpty() && len(ctx.Sources) < 2 {
		return nil, errors.NewGeometryError(ctx.Layer, string(ctx.Spec.Type),
			"spatial filter needs a base and a reference source")
	}

	base := ctx.Base
	refSources := ctx.Sources
	if base.IsEmpty() {
		base = ctx.Sources[0]
		refSources = ctx.Sources[1:]
	}

	var parts []orb.Geometry
	for _, src := range refSources {
		if src != nil {
			parts = append(parts, src.Geometries()...)
		}
	}
	reference, err := geometry.Union(parts...)
	if err != nil {
		return nil, errors.NewGeometryError(ctx.Layer, string(ctx.Spec.Type), "reference union: %v", err)
	}
	if reference != nil && params.Buffer > 0 {
		reference, err = geometry.Buffer(reference, params.Buffer, geometry.BufferOptions{})
		if err != nil {
			return nil, errors.NewGeometryError(ctx.Layer, string(ctx.Spec.Type), "reference buffer: %v", err)
		}
	}

	out := types.NewCollection(ctx.CRS)
	for _, f := range base.Features {
		if f.Geometry == nil {
			continue
		}
		hit := reference != nil && geometry.IntersectsPolygonal(f.Geometry, reference)
		if hit != params.Invert {
			out.Append(f.Clone())
		}
	}
	return out, nil
}
