package operations

import (
	"github.com/gunther-schulz/geoforge/geometry"
	"github.com/gunther-schulz/geoforge/internal/errors"
	"github.com/gunther-schulz/geoforge/internal/types"
)

func init() {
	mustRegister(types.OperationTypeBuffer, runBuffer)
}

func bufferOptions(p types.BufferParams) geometry.BufferOptions {
	return geometry.BufferOptions{
		Join:       geometry.JoinStyle(p.Join),
		Cap:        geometry.CapStyle(p.Cap),
		MitreLimit: p.MitreLimit,
	}
}

// runBuffer buffers every feature independently so attribute rows stay
// attached. Features erased by a negative distance are dropped.
func runBuffer(ctx *Context) (*types.Collection, error) {
	params, ok := ctx.Spec.Params.(types.BufferParams)
	if !ok {
		return nil, errors.NewConfigError("buffer: wrong parameter type %T", ctx.Spec.Params)
	}
	in := ctx.working()
	out := types.NewCollection(ctx.CRS)
	for _, f := range in.Features {
		if f.Geometry == nil {
			continue
		}
		buffered, err := geometry.Buffer(f.Geometry, params.Distance, bufferOptions(params))
		if err != nil {
			return nil, errors.NewGeometryError(ctx.Layer, string(ctx.Spec.Type), "%v", err)
		}
		if buffered == nil {
			continue
		}
		nf := f.Clone()
		nf.Geometry = buffered
		out.Append(nf)
	}
	return out, nil
}
