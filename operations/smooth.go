package operations

import (
	"github.com/gunther-schulz/geoforge/geometry"
	"github.com/gunther-schulz/geoforge/internal/errors"
	"github.com/gunther-schulz/geoforge/internal/types"
)

func init() {
	mustRegister(types.OperationTypeSmooth, runSmooth)
	mustRegister(types.OperationTypeSimplify, runSimplify)
}

func runSmooth(ctx *Context) (*types.Collection, error) {
	params, ok := ctx.Spec.Params.(types.SmoothParams)
	if !ok {
		return nil, errors.NewConfigError("smooth: wrong parameter type %T", ctx.Spec.Params)
	}
	in := ctx.working()
	out := types.NewCollection(ctx.CRS)
	for _, f := range in.Features {
		if f.Geometry == nil {
			continue
		}
		nf := f.Clone()
		nf.Geometry = geometry.Smooth(nf.Geometry, params.Iterations, params.Strength)
		out.Append(nf)
	}
	return out, nil
}

func runSimplify(ctx *Context) (*types.Collection, error) {
	params, ok := ctx.Spec.Params.(types.SimplifyParams)
	if !ok {
		return nil, errors.NewConfigError("simplify: wrong parameter type %T", ctx.Spec.Params)
	}
	in := ctx.working()
	out := types.NewCollection(ctx.CRS)
	for _, f := range in.Features {
		if f.Geometry == nil {
			continue
		}
		nf := f.Clone()
		nf.Geometry = geometry.Simplify(nf.Geometry, params.Tolerance, params.PreserveTopology)
		out.Append(nf)
	}
	return out, nil
}
