// Package operations maps operation-type tags to their handlers. Each
// handler is a pure function over the collections it is handed: it may
// read its sources and the layer's current geometry and must return the
// replacement collection, never mutate other layers.
package operations

import (
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/gunther-schulz/geoforge/internal/errors"
	"github.com/gunther-schulz/geoforge/internal/types"
)

// Context is the slice of pipeline state a handler is permitted to see.
type Context struct {
	// Layer is the name of the layer being written, for error provenance.
	Layer string
	Spec  *types.OperationSpec
	// Base is the layer's current geometry (seed or previous op output).
	Base *types.Collection
	// Sources holds the filtered source collections in spec order, with
	// materialized temp-layer results appended.
	Sources []*types.Collection
	CRS     types.CRS
	Log     *logrus.Entry
}

// working returns the collection an in-place operation acts on: the
// concatenated sources when the op names any, else the layer's own
// geometry.
func (ctx *Context) working() *types.Collection {
	if len(ctx.Sources) == 0 {
		return ctx.Base
	}
	out := types.NewCollection(ctx.CRS)
	for _, src := range ctx.Sources {
		if src == nil {
			continue
		}
		for _, f := range src.Features {
			out.Append(f.Clone())
		}
	}
	return out
}

// Handler computes a layer's replacement geometry for one operation.
type Handler func(ctx *Context) (*types.Collection, error)

var handlers = make(map[types.OperationType]Handler)

// Register binds a handler to an operation tag. Re-registering a tag is
// an error.
func Register(op types.OperationType, h Handler) error {
	if _, exists := handlers[op]; exists {
		return errors.NewConfigError("operation %q already registered", op)
	}
	handlers[op] = h
	return nil
}

func mustRegister(op types.OperationType, h Handler) {
	if err := Register(op, h); err != nil {
		panic(err)
	}
}

// Dispatch runs the handler for the context's operation type. An unknown
// tag is a fatal configuration error.
func Dispatch(ctx *Context) (*types.Collection, error) {
	h, ok := handlers[ctx.Spec.Type]
	if !ok {
		return nil, errors.NewConfigError("unknown operation type %q", ctx.Spec.Type)
	}
	return h(ctx)
}

// Registered returns the known operation tags, sorted.
func Registered() []types.OperationType {
	out := make([]types.OperationType, 0, len(handlers))
	for op := range handlers {
		out = append(out, op)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
