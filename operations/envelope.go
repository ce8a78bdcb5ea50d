package operations

import (
	"github.com/gunther-schulz/geoforge/geometry"
	"github.com/gunther-schulz/geoforge/internal/errors"
	"github.com/gunther-schulz/geoforge/internal/types"
)

func init() {
	mustRegister(types.OperationTypeEnvelope, runEnvelope)
}

// runEnvelope replaces each polygonal feature with its reconstructed
// bounding shape, keeping the feature's attributes.
func runEnvelope(ctx *Context) (*types.Collection, error) {
	params, ok := ctx.Spec.Params.(types.EnvelopeParams)
	if !ok {
		return nil, errors.NewConfigError("envelope: wrong parameter type %T", ctx.Spec.Params)
	}
	opts := geometry.EnvelopeOptions{
		Padding:   params.Padding,
		Cap:       geometry.CapStyle(params.Cap),
		AreaRatio: params.AreaRatio,
		MaxDepth:  params.MaxDepth,
	}

	in := ctx.working()
	out := types.NewCollection(ctx.CRS)
	failed := 0
	for _, f := range in.Features {
		polys := geometry.ExplodeToPolygons(f.Geometry)
		if len(polys) == 0 {
			continue
		}
		for _, poly := range polys {
			env, err := geometry.Envelope(poly, opts)
			if err != nil {
				failed++
				if ctx.Log != nil {
					ctx.Log.WithField("error", err.Error()).Warn("envelope reconstruction failed")
				}
				continue
			}
			nf := f.Clone()
			nf.Geometry = env
			out.Append(nf)
		}
	}
	if out.IsEmpty() && failed > 0 {
		return nil, errors.NewGeometryError(ctx.Layer, string(ctx.Spec.Type),
			"envelope failed for all %d polygons", failed)
	}
	return out, nil
}
