// Package yamlcfg parses the YAML pipeline configuration into a validated
// project spec. All operation parameters are checked and converted to
// their typed form here, so handlers never see raw config.
package yamlcfg

import (
	"fmt"

	"gopkg.in/yaml.v2"

	"github.com/gunther-schulz/geoforge/frontends"
	"github.com/gunther-schulz/geoforge/internal/errors"
	"github.com/gunther-schulz/geoforge/internal/types"
)

func init() {
	frontends.RegisterFrontend("yaml", &yamlFrontend{})
}

type yamlFrontend struct{}

type rawProject struct {
	CRS    string     `yaml:"crs"`
	Layers []rawLayer `yaml:"layers"`
}

type rawLayer struct {
	Name       string         `yaml:"name"`
	Update     *bool          `yaml:"update"`
	Style      string         `yaml:"style"`
	Source     *rawSource     `yaml:"source"`
	Operations []rawOperation `yaml:"operations"`
}

type rawSource struct {
	Format   string `yaml:"format"`
	Path     string `yaml:"path"`
	Document string `yaml:"document"`
	CRS      string `yaml:"crs"`
}

// rawSourceRef accepts either a plain layer name or a filtered reference
// with column/values.
type rawSourceRef struct {
	Name   string
	Values []string
	Column string
}

func (r *rawSourceRef) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var name string
	if err := unmarshal(&name); err == nil {
		r.Name = name
		return nil
	}
	var full struct {
		Name   string   `yaml:"name"`
		Values []string `yaml:"values"`
		Column string   `yaml:"column"`
	}
	if err := unmarshal(&full); err != nil {
		return err
	}
	r.Name = full.Name
	r.Values = full.Values
	r.Column = full.Column
	return nil
}

// rawOperation carries the superset of parameters of all operation kinds;
// validation picks the relevant ones per type tag.
type rawOperation struct {
	Type       string         `yaml:"type"`
	Layers     []rawSourceRef `yaml:"layers"`
	Operations []rawOperation `yaml:"operations"`

	Distance   float64 `yaml:"distance"`
	Join       string  `yaml:"join"`
	Cap        string  `yaml:"cap"`
	MitreLimit float64 `yaml:"mitreLimit"`

	Reverse *bool `yaml:"reverse"`

	Tolerance    float64 `yaml:"tolerance"`
	SnapVertices bool    `yaml:"snapVertices"`
	SnapGrid     float64 `yaml:"snapGrid"`
	SecondPass   bool    `yaml:"secondPass"`

	Iterations int     `yaml:"iterations"`
	Strength   float64 `yaml:"strength"`

	PreserveTopology bool `yaml:"preserveTopology"`

	MergeTolerance    float64 `yaml:"mergeTolerance"`
	SimplifyTolerance float64 `yaml:"simplifyTolerance"`
	MinSpikeLength    float64 `yaml:"minSpikeLength"`
	MaxAreaLoss       float64 `yaml:"maxAreaLoss"`

	Padding   float64 `yaml:"padding"`
	AreaRatio float64 `yaml:"areaRatio"`
	MaxDepth  int     `yaml:"maxDepth"`

	MinArea  float64  `yaml:"minArea"`
	MaxArea  float64  `yaml:"maxArea"`
	MinWidth float64  `yaml:"minWidth"`
	MaxWidth float64  `yaml:"maxWidth"`
	Types    []string `yaml:"geometryTypes"`

	Buffer float64 `yaml:"buffer"`
	Invert bool    `yaml:"invert"`
}

func (f *yamlFrontend) Parse(data []byte, config *types.PipelineConfig) (*types.ProjectSpec, error) {
	var raw rawProject
	if err := yaml.UnmarshalStrict(data, &raw); err != nil {
		return nil, errors.NewConfigError("parse config: %v", err)
	}

	spec := &types.ProjectSpec{}
	if raw.CRS != "" {
		crs, err := types.ParseCRS(raw.CRS)
		if err != nil {
			return nil, errors.NewConfigError("%v", err)
		}
		spec.CRS = crs
	}

	seen := make(map[string]bool)
	for i, rl := range raw.Layers {
		if rl.Name == "" {
			return nil, errors.NewConfigError("layer %d has no name", i)
		}
		if seen[rl.Name] {
			return nil, errors.NewConfigError("layer %q defined twice", rl.Name)
		}
		seen[rl.Name] = true

		layer := &types.LayerSpec{
			Name:       rl.Name,
			UpdateFlag: rl.Update == nil || *rl.Update,
			StyleID:    rl.Style,
		}
		if rl.Source != nil {
			src, err := parseSource(rl.Name, rl.Source)
			if err != nil {
				return nil, err
			}
			layer.Source = src
		}
		for j, ro := range rl.Operations {
			op, err := parseOperation(rl.Name, j, ro)
			if err != nil {
				return nil, err
			}
			layer.Operations = append(layer.Operations, op)
		}
		spec.Layers = append(spec.Layers, layer)
	}
	return spec, nil
}

func parseSource(layer string, rs *rawSource) (*types.SourceSpec, error) {
	if rs.Path == "" && rs.Document == "" {
		return nil, errors.NewConfigError("layer %q: source needs a path or a document", layer)
	}
	if rs.Path != "" && rs.Document != "" {
		return nil, errors.NewConfigError("layer %q: source path and document are mutually exclusive", layer)
	}
	out := &types.SourceSpec{Format: rs.Format, Path: rs.Path, Document: rs.Document}
	if rs.CRS != "" {
		crs, err := types.ParseCRS(rs.CRS)
		if err != nil {
			return nil, errors.NewConfigError("layer %q: %v", layer, err)
		}
		out.CRS = crs
	}
	return out, nil
}

var validOps = map[types.OperationType]bool{
	types.OperationTypeCopy:                 true,
	types.OperationTypeBuffer:               true,
	types.OperationTypeDifference:           true,
	types.OperationTypeIntersection:         true,
	types.OperationTypeDissolve:             true,
	types.OperationTypeRepair:               true,
	types.OperationTypeSmooth:               true,
	types.OperationTypeSimplify:             true,
	types.OperationTypeBreakLines:           true,
	types.OperationTypeRemoveDuplicateLines: true,
	types.OperationTypeClean:                true,
	types.OperationTypeEnvelope:             true,
	types.OperationTypeFilterGeometry:       true,
	types.OperationTypeFilterByIntersection: true,
}

func parseOperation(layer string, index int, ro rawOperation) (*types.OperationSpec, error) {
	opType := types.OperationType(ro.Type)
	if !validOps[opType] {
		return nil, errors.NewConfigError("layer %q operation %d: unknown type %q", layer, index, ro.Type)
	}

	spec := &types.OperationSpec{Type: opType}
	for _, ref := range ro.Layers {
		if ref.Name == "" {
			return nil, errors.NewConfigError("layer %q operation %s: source with empty name", layer, ro.Type)
		}
		if len(ref.Values) > 0 && ref.Column == "" {
			return nil, errors.NewConfigError("layer %q operation %s: source %q filters by values but names no column",
				layer, ro.Type, ref.Name)
		}
		spec.Sources = append(spec.Sources, types.SourceRef{
			Layer:  ref.Name,
			Values: ref.Values,
			Column: ref.Column,
		})
	}

	params, err := parseParams(layer, ro)
	if err != nil {
		return nil, err
	}
	spec.Params = params

	for _, nested := range ro.Operations {
		sub, err := parseOperation(layer, index, nested)
		if err != nil {
			return nil, err
		}
		spec.Nested = append(spec.Nested, sub)
	}
	return spec, nil
}

func parseParams(layer string, ro rawOperation) (types.OpParams, error) {
	fail := func(format string, args ...interface{}) error {
		prefix := fmt.Sprintf("layer %q operation %s: ", layer, ro.Type)
		return errors.NewConfigError(prefix+format, args...)
	}

	switch types.OperationType(ro.Type) {
	case types.OperationTypeCopy:
		if len(ro.Layers) == 0 && len(ro.Operations) == 0 {
			return nil, fail("copy needs at least one source layer")
		}
		return types.CopyParams{}, nil

	case types.OperationTypeBuffer:
		if ro.Distance == 0 {
			return nil, fail("buffer needs a non-zero distance")
		}
		if ro.Join != "" && ro.Join != string(types.JoinRound) && ro.Join != string(types.JoinMitre) && ro.Join != string(types.JoinBevel) {
			return nil, fail("invalid join style %q", ro.Join)
		}
		if err := validateCap(ro.Cap); err != nil {
			return nil, fail("%v", err)
		}
		return types.BufferParams{
			Distance:   ro.Distance,
			Join:       types.JoinStyle(ro.Join),
			Cap:        types.CapStyle(ro.Cap),
			MitreLimit: ro.MitreLimit,
		}, nil

	case types.OperationTypeDifference, types.OperationTypeIntersection:
		if len(ro.Layers) == 0 && len(ro.Operations) == 0 {
			return nil, fail("overlay needs at least one source layer")
		}
		return types.OverlayParams{Reverse: ro.Reverse}, nil

	case types.OperationTypeDissolve:
		if ro.Tolerance < 0 {
			return nil, fail("tolerance must not be negative")
		}
		return types.DissolveParams{
			Tolerance:    ro.Tolerance,
			SnapVertices: ro.SnapVertices,
			SnapGrid:     ro.SnapGrid,
			SecondPass:   ro.SecondPass,
		}, nil

	case types.OperationTypeRepair:
		return types.RepairParams{}, nil

	case types.OperationTypeSmooth:
		if ro.Strength < 0 || ro.Strength > 0.5 {
			return nil, fail("strength must be in [0, 0.5]")
		}
		return types.SmoothParams{Iterations: ro.Iterations, Strength: ro.Strength}, nil

	case types.OperationTypeSimplify:
		if ro.Tolerance <= 0 {
			return nil, fail("simplify needs a positive tolerance")
		}
		return types.SimplifyParams{Tolerance: ro.Tolerance, PreserveTopology: ro.PreserveTopology}, nil

	case types.OperationTypeBreakLines:
		return types.BreakLinesParams{Tolerance: ro.Tolerance}, nil

	case types.OperationTypeRemoveDuplicateLines:
		return types.DedupeParams{Tolerance: ro.Tolerance}, nil

	case types.OperationTypeClean:
		if ro.MaxAreaLoss < 0 || ro.MaxAreaLoss > 1 {
			return nil, fail("maxAreaLoss must be in [0, 1]")
		}
		return types.CleanParams{
			MergeTolerance:    ro.MergeTolerance,
			SimplifyTolerance: ro.SimplifyTolerance,
			MinSpikeLength:    ro.MinSpikeLength,
			MaxAreaLoss:       ro.MaxAreaLoss,
		}, nil

	case types.OperationTypeEnvelope:
		if ro.Padding < 0 {
			return nil, fail("padding must not be negative")
		}
		if err := validateCap(ro.Cap); err != nil {
			return nil, fail("%v", err)
		}
		return types.EnvelopeParams{
			Padding:   ro.Padding,
			Cap:       types.CapStyle(ro.Cap),
			AreaRatio: ro.AreaRatio,
			MaxDepth:  ro.MaxDepth,
		}, nil

	case types.OperationTypeFilterGeometry:
		for _, t := range ro.Types {
			if t != "point" && t != "line" && t != "polygon" {
				return nil, fail("invalid geometry type %q in allow-list", t)
			}
		}
		return types.FilterGeometryParams{
			MinArea:  ro.MinArea,
			MaxArea:  ro.MaxArea,
			MinWidth: ro.MinWidth,
			MaxWidth: ro.MaxWidth,
			Types:    ro.Types,
		}, nil

	case types.OperationTypeFilterByIntersection:
		if len(ro.Layers) == 0 && len(ro.Operations) == 0 {
			return nil, fail("spatial filter needs a reference source layer")
		}
		return types.FilterByIntersectionParams{Buffer: ro.Buffer, Invert: ro.Invert}, nil
	}
	return nil, fail("unknown type")
}

func validateCap(s string) error {
	switch s {
	case "", string(types.CapRound), string(types.CapFlat), string(types.CapSquare):
		return nil
	}
	return fmt.Errorf("invalid cap style %q", s)
}
