package engine

import (
	"github.com/paulmach/orb/project"

	"github.com/gunther-schulz/geoforge/internal/errors"
	"github.com/gunther-schulz/geoforge/internal/types"
)

// Store is the single shared mutable mapping from layer name to layer
// state. Execution is single threaded, so no locking is needed; any
// future parallel evaluation must serialize writes here and must not
// schedule a layer whose dependencies are still in progress.
type Store struct {
	layers map[string]*types.Layer
	order  []string
	crs    types.CRS
}

func NewStore(target types.CRS) *Store {
	if target == "" {
		target = types.CRSWGS84
	}
	return &Store{layers: make(map[string]*types.Layer), crs: target}
}

func (s *Store) CRS() types.CRS { return s.crs }

// Register adds a new named layer. Re-creating an existing name is a
// configuration error. Seed geometry in a different CRS is reprojected to
// the store CRS before being kept.
func (s *Store) Register(layer *types.Layer) error {
	if layer.Name == "" {
		return errors.NewConfigError("layer with empty name")
	}
	if _, exists := s.layers[layer.Name]; exists {
		return errors.NewConfigError("layer %q already exists", layer.Name)
	}
	if layer.Geometry == nil {
		layer.Geometry = types.NewCollection(s.crs)
	} else if err := s.normalize(layer.Geometry); err != nil {
		return err
	}
	layer.CRS = s.crs
	s.layers[layer.Name] = layer
	s.order = append(s.order, layer.Name)
	return nil
}

// Ensure returns the named layer, creating an empty pending layer when an
// operation references an unset name.
func (s *Store) Ensure(name string) *types.Layer {
	if layer, ok := s.layers[name]; ok {
		return layer
	}
	layer := &types.Layer{
		Name:     name,
		Geometry: types.NewCollection(s.crs),
		CRS:      s.crs,
		State:    types.StatePending,
	}
	s.layers[name] = layer
	s.order = append(s.order, name)
	return layer
}

func (s *Store) Get(name string) (*types.Layer, bool) {
	layer, ok := s.layers[name]
	return layer, ok
}

func (s *Store) Delete(name string) {
	if _, ok := s.layers[name]; !ok {
		return
	}
	delete(s.layers, name)
	for i, n := range s.order {
		if n == name {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

// Names returns all layer names in registration order.
func (s *Store) Names() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// Layers returns the name -> layer map for graph construction. Callers
// must not mutate it.
func (s *Store) Layers() map[string]*types.Layer {
	return s.layers
}

// Finished returns the non-temp layers in registration order whose chains
// completed, for handoff to the exporter.
func (s *Store) Finished() []*types.Layer {
	var out []*types.Layer
	for _, name := range s.Names() {
		layer := s.layers[name]
		if layer.Temp || layer.State != types.StateDone {
			continue
		}
		out = append(out, layer)
	}
	return out
}

// SeedGeometry replaces a layer's geometry with loader output,
// normalizing its CRS first.
func (s *Store) SeedGeometry(name string, c *types.Collection) error {
	layer := s.Ensure(name)
	if c == nil {
		c = types.NewCollection(s.crs)
	}
	if err := s.normalize(c); err != nil {
		return err
	}
	layer.Geometry = c
	return nil
}

// normalize reprojects a collection into the store CRS in place. Only the
// WGS84/web-mercator pair is supported; any other mismatch is a fatal
// configuration error.
func (s *Store) normalize(c *types.Collection) error {
	if c.CRS == "" {
		c.CRS = s.crs
		return nil
	}
	if c.CRS == s.crs {
		return nil
	}
	switch {
	case c.CRS == types.CRSWGS84 && s.crs == types.CRSMercator:
		for i := range c.Features {
			if c.Features[i].Geometry != nil {
				c.Features[i].Geometry = project.Geometry(c.Features[i].Geometry, project.WGS84.ToMercator)
			}
		}
	case c.CRS == types.CRSMercator && s.crs == types.CRSWGS84:
		for i := range c.Features {
			if c.Features[i].Geometry != nil {
				c.Features[i].Geometry = project.Geometry(c.Features[i].Geometry, project.Mercator.ToWGS84)
			}
		}
	default:
		return errors.NewConfigError("cannot reproject %s to %s", c.CRS, s.crs)
	}
	c.CRS = s.crs
	return nil
}
