package operations

import (
	"github.com/gunther-schulz/geoforge/geometry"
	"github.com/gunther-schulz/geoforge/internal/errors"
	"github.com/gunther-schulz/geoforge/internal/types"
)

func init() {
	mustRegister(types.OperationTypeRepair, runRepair)
}

// runRepair applies make-valid to every feature. Features that cannot be
// repaired are dropped with a log entry; the op fails only when repair
// leaves nothing at all from a non-empty input.
func runRepair(ctx *Context) (*types.Collection, error) {
	if _, ok := ctx.Spec.Params.(types.RepairParams); !ok {
		return nil, errors.NewConfigError("repair: wrong parameter type %T", ctx.Spec.Params)
	}
	in := ctx.working()
	out := types.NewCollection(ctx.CRS)
	dropped := 0
	for _, f := range in.Features {
		if f.Geometry == nil {
			continue
		}
		repaired, err := geometry.MakeValid(f.Geometry)
		if err != nil {
			dropped++
			if ctx.Log != nil {
				ctx.Log.WithField("error", err.Error()).Warn("feature repair failed")
			}
			continue
		}
		nf := f.Clone()
		nf.Geometry = repaired
		out.Append(nf)
	}
	if out.IsEmpty() && !in.IsEmpty() {
		return nil, errors.NewValidationError(ctx.Layer, "repair removed all %d features", dropped)
	}
	return out, nil
}
