package yamlcfg

import (
	"strings"
	"testing"

	"github.com/gunther-schulz/geoforge/internal/types"
)

func parse(t *testing.T, doc string) (*types.ProjectSpec, error) {
	t.Helper()
	f := &yamlFrontend{}
	return f.Parse([]byte(doc), &types.PipelineConfig{})
}

func mustParse(t *testing.T, doc string) *types.ProjectSpec {
	t.Helper()
	spec, err := parse(t, doc)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	return spec
}

const validConfig = `
crs: EPSG:3857
layers:
  - name: fields
    source:
      path: fields.geojson
      crs: EPSG:4326
  - name: annotations
    source:
      document: survey
  - name: buffered
    style: highlight
    operations:
      - type: buffer
        layers: [fields]
        distance: 10
        join: mitre
        cap: flat
        mitreLimit: 3
  - name: gaps
    update: false
    operations:
      - type: difference
        layers:
          - fields
          - name: annotations
            column: kind
            values: [fence, wall]
        operations:
          - type: buffer
            layers: [buffered]
            distance: 2
`

func TestParse_ValidConfig(t *testing.T) {
	spec := mustParse(t, validConfig)

	if spec.CRS != types.CRS("EPSG:3857") {
		t.Errorf("Expected CRS EPSG:3857, got %s", spec.CRS)
	}
	if len(spec.Layers) != 4 {
		t.Fatalf("Expected 4 layers, got %d", len(spec.Layers))
	}

	fields := spec.Layers[0]
	if fields.Source == nil || fields.Source.Path != "fields.geojson" {
		t.Errorf("Expected fields path source, got %+v", fields.Source)
	}
	if fields.Source.CRS != types.CRS("EPSG:4326") {
		t.Errorf("Expected per-source CRS override, got %s", fields.Source.CRS)
	}
	if !fields.UpdateFlag {
		t.Errorf("Expected update to default true")
	}

	annotations := spec.Layers[1]
	if annotations.Source == nil || annotations.Source.Document != "survey" {
		t.Errorf("Expected document source, got %+v", annotations.Source)
	}

	buffered := spec.Layers[2]
	if buffered.StyleID != "highlight" {
		t.Errorf("Expected style highlight, got %q", buffered.StyleID)
	}
	if len(buffered.Operations) != 1 {
		t.Fatalf("Expected 1 operation, got %d", len(buffered.Operations))
	}
	bp, ok := buffered.Operations[0].Params.(types.BufferParams)
	if !ok {
		t.Fatalf("Expected BufferParams, got %T", buffered.Operations[0].Params)
	}
	if bp.Distance != 10 || bp.Join != types.JoinMitre || bp.Cap != types.CapFlat || bp.MitreLimit != 3 {
		t.Errorf("Unexpected buffer params %+v", bp)
	}

	gaps := spec.Layers[3]
	if gaps.UpdateFlag {
		t.Errorf("Expected update: false to be honored")
	}
	diff := gaps.Operations[0]
	if diff.Type != types.OperationTypeDifference {
		t.Fatalf("Expected difference op, got %s", diff.Type)
	}
	if len(diff.Sources) != 2 {
		t.Fatalf("Expected 2 sources, got %d", len(diff.Sources))
	}
	if diff.Sources[0].Layer != "fields" || len(diff.Sources[0].Values) != 0 {
		t.Errorf("Expected plain string ref, got %+v", diff.Sources[0])
	}
	filtered := diff.Sources[1]
	if filtered.Layer != "annotations" || filtered.Column != "kind" || len(filtered.Values) != 2 {
		t.Errorf("Expected filtered ref, got %+v", filtered)
	}
	if len(diff.Nested) != 1 || diff.Nested[0].Type != types.OperationTypeBuffer {
		t.Errorf("Expected nested buffer op, got %+v", diff.Nested)
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want string
	}{
		{
			"duplicate layer",
			"layers:\n  - name: a\n  - name: a\n",
			"defined twice",
		},
		{
			"unnamed layer",
			"layers:\n  - style: x\n",
			"no name",
		},
		{
			"unknown op type",
			"layers:\n  - name: a\n    operations:\n      - type: frobnicate\n",
			"unknown type",
		},
		{
			"zero buffer distance",
			"layers:\n  - name: a\n    operations:\n      - type: buffer\n        layers: [b]\n",
			"non-zero distance",
		},
		{
			"bad join style",
			"layers:\n  - name: a\n    operations:\n      - type: buffer\n        layers: [b]\n        distance: 1\n        join: chamfer\n",
			"invalid join",
		},
		{
			"bad cap style",
			"layers:\n  - name: a\n    operations:\n      - type: buffer\n        layers: [b]\n        distance: 1\n        cap: pointy\n",
			"invalid cap",
		},
		{
			"smooth strength out of range",
			"layers:\n  - name: a\n    operations:\n      - type: smooth\n        strength: 0.7\n",
			"strength",
		},
		{
			"simplify without tolerance",
			"layers:\n  - name: a\n    operations:\n      - type: simplify\n",
			"positive tolerance",
		},
		{
			"clean area loss out of range",
			"layers:\n  - name: a\n    operations:\n      - type: clean\n        maxAreaLoss: 1.5\n",
			"maxAreaLoss",
		},
		{
			"bad geometry type",
			"layers:\n  - name: a\n    operations:\n      - type: filterGeometry\n        geometryTypes: [blob]\n",
			"invalid geometry type",
		},
		{
			"values without column",
			"layers:\n  - name: a\n    operations:\n      - type: copy\n        layers:\n          - name: b\n            values: [x]\n",
			"names no column",
		},
		{
			"overlay without sources",
			"layers:\n  - name: a\n    operations:\n      - type: difference\n",
			"source layer",
		},
		{
			"source path and document",
			"layers:\n  - name: a\n    source:\n      path: x.geojson\n      document: survey\n",
			"mutually exclusive",
		},
		{
			"source with neither",
			"layers:\n  - name: a\n    source:\n      format: geojson\n",
			"path or a document",
		},
		{
			"bad crs",
			"crs: utm32\nlayers: []\n",
			"EPSG",
		},
		{
			"unknown yaml key",
			"layers:\n  - name: a\n    colour: red\n",
			"",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parse(t, tt.doc)
			if err == nil {
				t.Fatalf("Expected error, got nil")
			}
			if tt.want != "" && !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Expected error containing %q, got %q", tt.want, err.Error())
			}
		})
	}
}

func TestParse_DefaultsAreZeroValued(t *testing.T) {
	spec := mustParse(t, `
layers:
  - name: tidy
    operations:
      - type: clean
        layers: [raw]
      - type: dissolve
        layers: [raw]
`)
	cp, ok := spec.Layers[0].Operations[0].Params.(types.CleanParams)
	if !ok {
		t.Fatalf("Expected CleanParams, got %T", spec.Layers[0].Operations[0].Params)
	}
	if cp.MaxAreaLoss != 0 {
		t.Errorf("Expected zero MaxAreaLoss passthrough, got %f", cp.MaxAreaLoss)
	}
	dp, ok := spec.Layers[0].Operations[1].Params.(types.DissolveParams)
	if !ok {
		t.Fatalf("Expected DissolveParams, got %T", spec.Layers[0].Operations[1].Params)
	}
	if dp.Tolerance != 0 || dp.SecondPass {
		t.Errorf("Unexpected dissolve defaults %+v", dp)
	}
}
