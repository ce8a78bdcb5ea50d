package exporters

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/gunther-schulz/geoforge/internal/types"
)

func exportLayer(name string, update bool, style string) *types.Layer {
	c := types.NewCollection(types.CRSMercator)
	f := types.NewFeature(orb.Polygon{{{0, 0}, {4, 0}, {4, 4}, {0, 4}, {0, 0}}})
	f.Attributes["use"] = "pasture"
	c.Append(f)
	return &types.Layer{Name: name, Geometry: c, UpdateFlag: update, StyleID: style}
}

func TestGeoJSONExporter(t *testing.T) {
	dir := t.TempDir()
	exporter, err := GetExporter("geojson")
	if err != nil {
		t.Fatal(err)
	}

	layers := []*types.Layer{
		exportLayer("fields", true, "cadastre"),
		exportLayer("stale", false, ""),
	}
	written, err := exporter.Export(layers, &types.PipelineConfig{OutputDir: dir})
	if err != nil {
		t.Fatalf("export failed: %v", err)
	}
	if len(written) != 1 {
		t.Fatalf("Expected 1 file written (update flag off skips), got %v", written)
	}
	if filepath.Base(written[0]) != "fields.geojson" {
		t.Errorf("Expected fields.geojson, got %s", written[0])
	}
	if _, err := os.Stat(filepath.Join(dir, "stale.geojson")); !os.IsNotExist(err) {
		t.Errorf("Expected stale layer to be skipped")
	}

	data, err := os.ReadFile(written[0])
	if err != nil {
		t.Fatal(err)
	}
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		t.Fatalf("round-trip parse failed: %v", err)
	}
	if len(fc.Features) != 1 {
		t.Fatalf("Expected 1 feature, got %d", len(fc.Features))
	}
	props := fc.Features[0].Properties
	if props["use"] != "pasture" {
		t.Errorf("Expected attributes exported as properties, got %v", props)
	}
	if props["style"] != "cadastre" {
		t.Errorf("Expected style id stamped on features, got %v", props)
	}
}

func TestGeoJSONExporter_Compressed(t *testing.T) {
	dir := t.TempDir()
	exporter, _ := GetExporter("geojson")

	written, err := exporter.Export(
		[]*types.Layer{exportLayer("fields", true, "")},
		&types.PipelineConfig{OutputDir: dir, Compress: true},
	)
	if err != nil {
		t.Fatalf("export failed: %v", err)
	}
	if len(written) != 1 || !strings.HasSuffix(written[0], ".geojson.gz") {
		t.Fatalf("Expected one .geojson.gz file, got %v", written)
	}

	file, err := os.Open(written[0])
	if err != nil {
		t.Fatal(err)
	}
	defer file.Close()
	zr, err := gzip.NewReader(file)
	if err != nil {
		t.Fatalf("Expected gzip stream: %v", err)
	}
	defer zr.Close()
	var doc map[string]interface{}
	if err := json.NewDecoder(zr).Decode(&doc); err != nil {
		t.Fatalf("decompressed payload is not JSON: %v", err)
	}
	if doc["type"] != "FeatureCollection" {
		t.Errorf("Expected FeatureCollection, got %v", doc["type"])
	}
}

func TestWKTExporter(t *testing.T) {
	dir := t.TempDir()
	exporter, err := GetExporter("wkt")
	if err != nil {
		t.Fatal(err)
	}

	c := types.NewCollection(types.CRSMercator)
	c.Append(types.NewFeature(orb.LineString{{0, 0}, {10, 0}}))
	c.Append(types.NewFeature(orb.Point{1, 2}))
	layer := &types.Layer{Name: "traces", Geometry: c, UpdateFlag: true}

	written, err := exporter.Export([]*types.Layer{layer}, &types.PipelineConfig{OutputDir: dir})
	if err != nil {
		t.Fatalf("export failed: %v", err)
	}
	data, err := os.ReadFile(written[0])
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 2 {
		t.Fatalf("Expected 2 WKT lines, got %d: %q", len(lines), lines)
	}
	if !strings.HasPrefix(lines[0], "LINESTRING") {
		t.Errorf("Expected LINESTRING, got %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], "POINT") {
		t.Errorf("Expected POINT, got %q", lines[1])
	}
}

func TestGetExporter_Unknown(t *testing.T) {
	if _, err := GetExporter("shapefile"); err == nil {
		t.Errorf("Expected error for unregistered exporter")
	}
}
