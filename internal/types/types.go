package types

import (
	"fmt"
	"strings"

	"github.com/paulmach/orb"
)

type OperationType string

const (
	OperationTypeCopy                 OperationType = "copy"
	OperationTypeBuffer               OperationType = "buffer"
	OperationTypeDifference           OperationType = "difference"
	OperationTypeIntersection         OperationType = "intersection"
	OperationTypeDissolve             OperationType = "dissolve"
	OperationTypeRepair               OperationType = "repair"
	OperationTypeSmooth               OperationType = "smooth"
	OperationTypeSimplify             OperationType = "simplify"
	OperationTypeBreakLines           OperationType = "breakLines"
	OperationTypeRemoveDuplicateLines OperationType = "removeDuplicateLines"
	OperationTypeClean                OperationType = "clean"
	OperationTypeEnvelope             OperationType = "envelope"
	OperationTypeFilterGeometry       OperationType = "filterGeometry"
	OperationTypeFilterByIntersection OperationType = "filterByIntersection"
)

// CRS identifies a coordinate reference system by its EPSG tag,
// e.g. "EPSG:4326" or "EPSG:3857".
type CRS string

const (
	CRSWGS84    CRS = "EPSG:4326"
	CRSMercator CRS = "EPSG:3857"
)

func ParseCRS(s string) (CRS, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", fmt.Errorf("empty CRS")
	}
	upper := strings.ToUpper(s)
	if !strings.HasPrefix(upper, "EPSG:") {
		return "", fmt.Errorf("unsupported CRS %q: expected EPSG:<code>", s)
	}
	return CRS(upper), nil
}

// Feature is one geometry with its attribute row. Attributes travel with
// the geometry through every operation that preserves per-feature identity.
type Feature struct {
	Geometry   orb.Geometry
	Attributes map[string]interface{}
}

func NewFeature(g orb.Geometry) Feature {
	return Feature{Geometry: g, Attributes: map[string]interface{}{}}
}

func (f Feature) Clone() Feature {
	attrs := make(map[string]interface{}, len(f.Attributes))
	for k, v := range f.Attributes {
		attrs[k] = v
	}
	var g orb.Geometry
	if f.Geometry != nil {
		g = orb.Clone(f.Geometry)
	}
	return Feature{Geometry: g, Attributes: attrs}
}

// Collection is an ordered sequence of features sharing one CRS.
type Collection struct {
	Features []Feature
	CRS      CRS
}

// NewCollection returns an explicitly empty, non-nil collection so
// downstream code has a uniform contract.
func NewCollection(crs CRS) *Collection {
	return &Collection{Features: []Feature{}, CRS: crs}
}

func (c *Collection) IsEmpty() bool {
	return c == nil || len(c.Features) == 0
}

func (c *Collection) Append(f Feature) {
	c.Features = append(c.Features, f)
}

func (c *Collection) Clone() *Collection {
	out := &Collection{Features: make([]Feature, 0, len(c.Features)), CRS: c.CRS}
	for _, f := range c.Features {
		out.Features = append(out.Features, f.Clone())
	}
	return out
}

// Geometries returns the bare geometries in order, dropping attribute rows.
func (c *Collection) Geometries() []orb.Geometry {
	out := make([]orb.Geometry, 0, len(c.Features))
	for _, f := range c.Features {
		if f.Geometry != nil {
			out = append(out, f.Geometry)
		}
	}
	return out
}

// FilterByColumn keeps features whose attribute column matches one of the
// given values. An empty value list keeps everything.
func (c *Collection) FilterByColumn(column string, values []string) *Collection {
	if len(values) == 0 {
		return c.Clone()
	}
	wanted := make(map[string]bool, len(values))
	for _, v := range values {
		wanted[v] = true
	}
	out := NewCollection(c.CRS)
	for _, f := range c.Features {
		raw, ok := f.Attributes[column]
		if !ok {
			continue
		}
		if wanted[fmt.Sprintf("%v", raw)] {
			out.Append(f.Clone())
		}
	}
	return out
}

type ProcessingState int

const (
	StatePending ProcessingState = iota
	StateInProgress
	StateDone
	StateFailed
)

func (s ProcessingState) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateInProgress:
		return "in_progress"
	case StateDone:
		return "done"
	case StateFailed:
		return "failed"
	}
	return "unknown"
}

// Layer is the unit of pipeline state: a named geometry collection with its
// pending operation chain and processing bookkeeping.
type Layer struct {
	Name       string
	Geometry   *Collection
	CRS        CRS
	Operations []*OperationSpec
	UpdateFlag bool
	StyleID    string
	State      ProcessingState
	Errors     []string

	// Temp marks ephemeral layers materialized for nested sub-operations;
	// they are deleted once the owning layer finishes.
	Temp bool

	// Applied logs the op types already run, in order.
	Applied []OperationType
}

// SourceRef names a source layer with an optional attribute filter.
type SourceRef struct {
	Layer  string
	Values []string
	Column string
}

func (r SourceRef) String() string {
	if len(r.Values) == 0 {
		return r.Layer
	}
	return fmt.Sprintf("%s[%s in %v]", r.Layer, r.Column, r.Values)
}

// OpParams is the typed parameter record for one operation kind. The
// frontend validates raw config into one of the concrete structs below,
// so handlers never reach into untyped maps.
type OpParams interface {
	opParams()
}

type JoinStyle string

const (
	JoinRound JoinStyle = "round"
	JoinMitre JoinStyle = "mitre"
	JoinBevel JoinStyle = "bevel"
)

type CapStyle string

const (
	CapRound  CapStyle = "round"
	CapFlat   CapStyle = "flat"
	CapSquare CapStyle = "square"
)

type CopyParams struct{}

type BufferParams struct {
	Distance float64
	Join     JoinStyle
	Cap      CapStyle
	// MitreLimit bounds mitre join spikes as a multiple of the distance.
	MitreLimit float64
}

type OverlayParams struct {
	// Reverse forces the difference direction; nil means auto-detect.
	Reverse *bool
}

type DissolveParams struct {
	// Tolerance is the buffer-trick distance d; zero disables the trick
	// and falls back to a plain union.
	Tolerance    float64
	SnapVertices bool
	SnapGrid     float64
	SecondPass   bool
}

type RepairParams struct{}

type SmoothParams struct {
	// Iterations of Chaikin corner cutting.
	Iterations int
	// Strength in [0, 0.5]: how far each corner is cut toward its
	// neighbours. 0.25 is the classic Chaikin ratio.
	Strength float64
}

type SimplifyParams struct {
	Tolerance        float64
	PreserveTopology bool
}

type BreakLinesParams struct {
	Tolerance float64
}

type DedupeParams struct {
	Tolerance float64
}

type CleanParams struct {
	MergeTolerance    float64
	SimplifyTolerance float64
	MinSpikeLength    float64
	// MaxAreaLoss rejects the cleanup when the polygon loses more than
	// this fraction of its area. Default 0.5.
	MaxAreaLoss float64
}

type EnvelopeParams struct {
	Padding float64
	Cap     CapStyle
	// AreaRatio below which a polygon is treated as bent and split.
	AreaRatio float64
	MaxDepth  int
}

type FilterGeometryParams struct {
	MinArea  float64
	MaxArea  float64
	MinWidth float64
	MaxWidth float64
	// Types is a geometry-type allow-list; empty allows everything.
	Types []string
}

type FilterByIntersectionParams struct {
	// Buffer expands the reference geometry before the containment test.
	Buffer float64
	Invert bool
}

func (CopyParams) opParams()                 {}
func (BufferParams) opParams()               {}
func (OverlayParams) opParams()              {}
func (DissolveParams) opParams()             {}
func (RepairParams) opParams()               {}
func (SmoothParams) opParams()               {}
func (SimplifyParams) opParams()             {}
func (BreakLinesParams) opParams()           {}
func (DedupeParams) opParams()               {}
func (CleanParams) opParams()                {}
func (EnvelopeParams) opParams()             {}
func (FilterGeometryParams) opParams()       {}
func (FilterByIntersectionParams) opParams() {}

// OperationSpec is one step in a layer's chain. Nested sub-operations are
// materialized as ephemeral temp layers and appended to Sources before the
// handler runs.
type OperationSpec struct {
	Type    OperationType
	Sources []SourceRef
	Params  OpParams
	Nested  []*OperationSpec
}

// TempLayerName returns the store name for a nested operation's ephemeral
// result, scoped to the owning layer.
func TempLayerName(parent string, op OperationType) string {
	return fmt.Sprintf("%s_temp_%s", parent, op)
}

// SourceSpec tells the loader where a seed layer's geometry comes from.
// Document-sourced layers stay pending until the named external document
// is provided.
type SourceSpec struct {
	Format   string
	Path     string
	Document string
	CRS      CRS
}

// LayerSpec is the config-level description of one layer.
type LayerSpec struct {
	Name       string
	UpdateFlag bool
	StyleID    string
	Source     *SourceSpec
	Operations []*OperationSpec
}

// ProjectSpec is the parsed form of one pipeline configuration document.
type ProjectSpec struct {
	CRS    CRS
	Layers []*LayerSpec
}

// Warning records one recovered failure with its provenance.
type Warning struct {
	Layer     string
	Operation OperationType
	Message   string
}

func (w Warning) String() string {
	return fmt.Sprintf("%s/%s: %s", w.Layer, w.Operation, w.Message)
}

// PipelineConfig carries run-level settings from the CLI into the engine.
type PipelineConfig struct {
	ConfigPath string
	Frontend   string
	TargetCRS  CRS
	Exporter   string
	OutputDir  string
	Compress   bool
	Verbose    bool

	// Layer scopes the run to one layer and its dependencies; empty
	// resolves everything.
	Layer string
}

// PipelineResult summarizes one run.
type PipelineResult struct {
	Success  bool
	Error    string
	Layers   int
	Resolved int
	Deferred int
	Warnings []Warning
	Exported []string
	Duration string
}
