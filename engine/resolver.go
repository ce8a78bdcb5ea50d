package engine

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/gunther-schulz/geoforge/internal/errors"
	"github.com/gunther-schulz/geoforge/internal/types"
	"github.com/gunther-schulz/geoforge/operations"
)

// Resolver walks the dependency order and applies each layer's operation
// chain. Completed layers are memoized through their Done state; the
// InProgress state doubles as the cycle sentinel and as a do-not-schedule
// marker.
type Resolver struct {
	store     *Store
	log       *logrus.Logger
	warnings  []types.Warning
	tempOwner map[string]string

	// blocked names layers that must not be scheduled in the current
	// pass, e.g. seeds waiting on an external document.
	blocked map[string]bool
}

func NewResolver(store *Store, log *logrus.Logger) *Resolver {
	if log == nil {
		log = logrus.New()
	}
	return &Resolver{
		store:     store,
		log:       log,
		tempOwner: make(map[string]string),
	}
}

func (r *Resolver) Warnings() []types.Warning {
	return r.warnings
}

func (r *Resolver) warn(layer string, op types.OperationType, format string, args ...interface{}) {
	w := types.Warning{Layer: layer, Operation: op, Message: fmt.Sprintf(format, args...)}
	r.warnings = append(r.warnings, w)
	r.log.WithFields(logrus.Fields{
		"layer":     w.Layer,
		"operation": string(w.Operation),
	}).Warn(w.Message)
}

// RegisterTempLayers materializes the ephemeral layers every nested
// sub-operation of the spec will need, so they participate in ordering
// like any other layer. Ownership is recorded for cleanup once the owning
// layer finishes.
func (r *Resolver) RegisterTempLayers(owner string, ops []*types.OperationSpec) error {
	return r.registerTemps(owner, owner, ops)
}

func (r *Resolver) registerTemps(owner, parent string, ops []*types.OperationSpec) error {
	for _, op := range ops {
		for _, nested := range op.Nested {
			name := types.TempLayerName(parent, nested.Type)
			layer := &types.Layer{
				Name:       name,
				Temp:       true,
				Operations: []*types.OperationSpec{nested},
				State:      types.StatePending,
			}
			if err := r.store.Register(layer); err != nil {
				return err
			}
			r.tempOwner[name] = owner
			if err := r.registerTemps(owner, name, []*types.OperationSpec{nested}); err != nil {
				return err
			}
		}
	}
	return nil
}

// ResolveAll processes every registered layer in dependency order and
// returns how many completed in this pass. Layers whose dependencies are
// not Done (for example because they wait on an external document) are
// left pending.
func (r *Resolver) ResolveAll(blocked map[string]bool) (int, error) {
	graph := BuildGraph(r.store.Layers())
	order, err := graph.TopologicalSort()
	if err != nil {
		return 0, err
	}
	return r.run(order, blocked)
}

// Resolve processes one layer and everything it depends on.
func (r *Resolver) Resolve(name string, blocked map[string]bool) (int, error) {
	graph := BuildGraph(r.store.Layers())
	order, err := graph.TopologicalSort()
	if err != nil {
		return 0, err
	}
	reach := graph.Subgraph(name)
	scoped := order[:0:0]
	for _, n := range order {
		if reach[n] {
			scoped = append(scoped, n)
		}
	}
	return r.run(scoped, blocked)
}

func (r *Resolver) run(order []string, blocked map[string]bool) (int, error) {
	r.blocked = blocked
	resolved := 0
	for _, name := range order {
		layer := r.store.Ensure(name)
		if layer.State == types.StateDone {
			continue
		}
		if blocked[name] || r.depsPending(layer) {
			continue
		}
		if err := r.runLayer(layer); err != nil {
			return resolved, err
		}
		resolved++
	}
	return resolved, nil
}

func (r *Resolver) depsPending(layer *types.Layer) bool {
	pending := false
	var check func(parent string, ops []*types.OperationSpec)
	check = func(parent string, ops []*types.OperationSpec) {
		for _, op := range ops {
			for _, src := range op.Sources {
				dep, ok := r.store.Get(src.Layer)
				if !ok || dep.Name == layer.Name || dep.State == types.StateDone {
					continue
				}
				// Pending layers without a chain of their own resolve
				// lazily to their seed or an empty collection, unless
				// they wait on an external document.
				if dep.State == types.StatePending && len(dep.Operations) == 0 && !r.blocked[dep.Name] {
					continue
				}
				pending = true
			}
			for _, nested := range op.Nested {
				name := types.TempLayerName(parent, nested.Type)
				if dep, ok := r.store.Get(name); ok && dep.State != types.StateDone {
					pending = true
				}
			}
		}
	}
	check(layer.Name, layer.Operations)
	return pending
}

// runLayer applies the layer's operation chain in order. Each operation
// replaces the geometry wholesale. Recoverable failures substitute an
// empty collection and the chain continues; only configuration and cycle
// errors abort.
func (r *Resolver) runLayer(layer *types.Layer) error {
	switch layer.State {
	case types.StateDone:
		return nil
	case types.StateInProgress:
		return errors.NewCycleError([]string{layer.Name, layer.Name})
	}
	layer.State = types.StateInProgress
	log := r.log.WithField("layer", layer.Name)
	log.WithField("operations", len(layer.Operations)).Debug("resolving layer")

	for _, op := range layer.Operations {
		sources, err := r.gatherSources(layer, op)
		if err != nil {
			if errors.IsFatal(err) {
				layer.State = types.StateFailed
				return err
			}
			r.recordFailure(layer, op, err)
			continue
		}

		ctx := &operations.Context{
			Layer:   layer.Name,
			Spec:    op,
			Base:    layer.Geometry,
			Sources: sources,
			CRS:     r.store.CRS(),
			Log:     log.WithField("operation", string(op.Type)),
		}
		result, err := operations.Dispatch(ctx)
		if err != nil {
			if errors.IsFatal(err) {
				layer.State = types.StateFailed
				return err
			}
			r.recordFailure(layer, op, err)
			continue
		}
		if result == nil {
			result = types.NewCollection(r.store.CRS())
		}
		layer.Geometry = result
		layer.Applied = append(layer.Applied, op.Type)
	}

	layer.State = types.StateDone
	r.cleanupTemps(layer.Name)
	return nil
}

// gatherSources resolves the operation's source references into filtered
// collections, with materialized temp-layer results appended.
func (r *Resolver) gatherSources(layer *types.Layer, op *types.OperationSpec) ([]*types.Collection, error) {
	refs := append([]types.SourceRef{}, op.Sources...)
	for _, nested := range op.Nested {
		refs = append(refs, types.SourceRef{Layer: types.TempLayerName(layer.Name, nested.Type)})
	}

	var out []*types.Collection
	for _, ref := range refs {
		src := r.store.Ensure(ref.Layer)
		switch src.State {
		case types.StateInProgress:
			return nil, errors.NewCycleError([]string{layer.Name, src.Name, layer.Name})
		case types.StatePending:
			// A pending source with no chain of its own resolves to its
			// explicit empty (or seeded) collection.
			if len(src.Operations) == 0 && !r.blocked[src.Name] {
				src.State = types.StateDone
			} else {
				return nil, errors.NewGeometryError(layer.Name, string(op.Type),
					"source layer %q is unresolved", src.Name)
			}
		case types.StateFailed:
			return nil, errors.NewGeometryError(layer.Name, string(op.Type),
				"source layer %q failed", src.Name)
		}
		if len(ref.Values) > 0 {
			out = append(out, src.Geometry.FilterByColumn(ref.Column, ref.Values))
		} else {
			out = append(out, src.Geometry.Clone())
		}
	}
	return out, nil
}

func (r *Resolver) recordFailure(layer *types.Layer, op *types.OperationSpec, err error) {
	r.warn(layer.Name, op.Type, "%v", err)
	layer.Errors = append(layer.Errors, err.Error())
	layer.Geometry = types.NewCollection(r.store.CRS())
	layer.Applied = append(layer.Applied, op.Type)
}

// cleanupTemps deletes the ephemeral layers owned by the finished layer,
// win or lose.
func (r *Resolver) cleanupTemps(owner string) {
	for name, own := range r.tempOwner {
		if own != owner {
			continue
		}
		r.store.Delete(name)
		delete(r.tempOwner, name)
	}
}
