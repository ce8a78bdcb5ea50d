package operations

import (
	"github.com/paulmach/orb"

	"github.com/gunther-schulz/geoforge/geometry"
	"github.com/gunther-schulz/geoforge/internal/errors"
	"github.com/gunther-schulz/geoforge/internal/types"
)

func init() {
	mustRegister(types.OperationTypeBreakLines, runBreakLines)
	mustRegister(types.OperationTypeRemoveDuplicateLines, runRemoveDuplicateLines)
}

// collectLines flattens the collection into single-part line strings,
// turning polygon boundaries into lines as well.
func collectLines(c *types.Collection) []orb.LineString {
	var out []orb.LineString
	for _, f := range c.Features {
		if f.Geometry == nil {
			continue
		}
		out = append(out, geometry.ExplodeToLines(f.Geometry)...)
		for _, poly := range geometry.ExplodeToPolygons(f.Geometry) {
			for _, ring := range poly {
				out = append(out, orb.LineString(ring))
			}
		}
	}
	return out
}

// runBreakLines cuts every input line at its intersections with the
// others. Attribute rows are dropped; each sub-segment becomes its own
// feature.
func runBreakLines(ctx *Context) (*types.Collection, error) {
	params, ok := ctx.Spec.Params.(types.BreakLinesParams)
	if !ok {
		return nil, errors.NewConfigError("breakLines: wrong parameter type %T", ctx.Spec.Params)
	}
	in := ctx.working()
	out := types.NewCollection(ctx.CRS)
	for _, seg := range geometry.BreakAtIntersections(collectLines(in), params.Tolerance) {
		out.Append(types.NewFeature(seg))
	}
	return out, nil
}

func runRemoveDuplicateLines(ctx *Context) (*types.Collection, error) {
	params, ok := ctx.Spec.Params.(types.DedupeParams)
	if !ok {
		return nil, errors.NewConfigError("removeDuplicateLines: wrong parameter type %T", ctx.Spec.Params)
	}
	in := ctx.working()
	out := types.NewCollection(ctx.CRS)
	for _, seg := range geometry.RemoveDuplicateLines(collectLines(in), params.Tolerance) {
		out.Append(types.NewFeature(seg))
	}
	return out, nil
}
