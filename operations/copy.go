package operations

import (
	"github.com/gunther-schulz/geoforge/internal/errors"
	"github.com/gunther-schulz/geoforge/internal/types"
)

func init() {
	mustRegister(types.OperationTypeCopy, runCopy)
}

// runCopy replaces the layer with the concatenation of its filtered
// sources.
func runCopy(ctx *Context) (*types.Collection, error) {
	if len(ctx.Sources) == 0 {
		return nil, errors.NewGeometryError(ctx.Layer, string(ctx.Spec.Type), "copy requires at least one source layer")
	}
	return ctx.working(), nil
}
