package operations

import (
	"github.com/gunther-schulz/geoforge/geometry"
	"github.com/gunther-schulz/geoforge/internal/errors"
	"github.com/gunther-schulz/geoforge/internal/types"
)

func init() {
	mustRegister(types.OperationTypeClean, runClean)
}

// runClean pushes every polygonal feature through the sliver/spike
// cleanup pipeline. A feature whose cleanup is rejected by the area-loss
// guard keeps its original geometry.
func runClean(ctx *Context) (*types.Collection, error) {
	params, ok := ctx.Spec.Params.(types.CleanParams)
	if !ok {
		return nil, errors.NewConfigError("clean: wrong parameter type %T", ctx.Spec.Params)
	}
	opts := geometry.CleanOptions{
		MergeTolerance:    params.MergeTolerance,
		SimplifyTolerance: params.SimplifyTolerance,
		MinSpikeLength:    params.MinSpikeLength,
		MaxAreaLoss:       params.MaxAreaLoss,
	}

	in := ctx.working()
	out := types.NewCollection(ctx.CRS)
	for _, f := range in.Features {
		polys := geometry.ExplodeToPolygons(f.Geometry)
		if len(polys) == 0 {
			out.Append(f.Clone())
			continue
		}
		for _, poly := range polys {
			cleaned, err := geometry.CleanPolygon(poly, opts)
			if err != nil && cleaned == nil {
				if ctx.Log != nil {
					ctx.Log.WithField("error", err.Error()).Warn("polygon cleanup dropped feature")
				}
				continue
			}
			if err != nil && ctx.Log != nil {
				// Cleanup rejected by the guard; the original came back.
				ctx.Log.WithField("reason", err.Error()).Debug("polygon cleanup rejected")
			}
			nf := f.Clone()
			nf.Geometry = cleaned
			out.Append(nf)
		}
	}
	return out, nil
}
