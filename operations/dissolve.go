package operations

import (
	"github.com/gunther-schulz/geoforge/geometry"
	"github.com/gunther-schulz/geoforge/internal/errors"
	"github.com/gunther-schulz/geoforge/internal/types"
)

func init() {
	mustRegister(types.OperationTypeDissolve, runDissolve)
}

// runDissolve merges all polygonal input into as few polygons as
// possible. Attribute rows do not survive a dissolve; each merged part
// becomes a fresh feature.
func runDissolve(ctx *Context) (*types.Collection, error) {
	params, ok := ctx.Spec.Params.(types.DissolveParams)
	if !ok {
		return nil, errors.NewConfigError("dissolve: wrong parameter type %T", ctx.Spec.Params)
	}
	in := ctx.working()
	out := types.NewCollection(ctx.CRS)
	if in.IsEmpty() {
		return out, nil
	}

	merged, err := geometry.Dissolve(in.Geometries(), geometry.DissolveOptions{
		Tolerance:    params.Tolerance,
		SnapVertices: params.SnapVertices,
		SnapGrid:     params.SnapGrid,
		SecondPass:   params.SecondPass,
	})
	if err != nil {
		return nil, errors.NewGeometryError(ctx.Layer, string(ctx.Spec.Type), "%v", err)
	}
	for _, poly := range geometry.ExplodeToPolygons(merged) {
		if geometry.Area(poly) == 0 {
			continue
		}
		out.Append(types.NewFeature(poly))
	}
	return out, nil
}
