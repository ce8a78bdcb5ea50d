package loaders

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/paulmach/orb"

	"github.com/gunther-schulz/geoforge/internal/types"
)

func TestGeoJSONLoader(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "fields.geojson")
	doc := `{
  "type": "FeatureCollection",
  "features": [
    {
      "type": "Feature",
      "geometry": {"type": "Polygon", "coordinates": [[[0,0],[4,0],[4,4],[0,4],[0,0]]]},
      "properties": {"use": "pasture"}
    },
    {
      "type": "Feature",
      "geometry": {"type": "Point", "coordinates": [1, 2]},
      "properties": {}
    }
  ]
}`
	if err := os.WriteFile(path, []byte(doc), 0644); err != nil {
		t.Fatal(err)
	}

	loader, err := GetLoader("geojson")
	if err != nil {
		t.Fatal(err)
	}
	c, err := loader.Load(&types.SourceSpec{Path: path, CRS: types.CRSMercator})
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if c.CRS != types.CRSMercator {
		t.Errorf("Expected source CRS kept, got %s", c.CRS)
	}
	if len(c.Features) != 2 {
		t.Fatalf("Expected 2 features, got %d", len(c.Features))
	}
	if c.Features[0].Attributes["use"] != "pasture" {
		t.Errorf("Expected properties carried into attributes, got %v", c.Features[0].Attributes)
	}
	if _, ok := c.Features[1].Geometry.(orb.Point); !ok {
		t.Errorf("Expected point geometry, got %T", c.Features[1].Geometry)
	}
}

func TestGeoJSONLoader_MissingFile(t *testing.T) {
	loader, _ := GetLoader("geojson")
	c, err := loader.Load(&types.SourceSpec{Path: filepath.Join(t.TempDir(), "absent.geojson")})
	if err != nil {
		t.Fatalf("Expected missing file to load as empty, got %v", err)
	}
	if !c.IsEmpty() {
		t.Errorf("Expected empty collection, got %d features", len(c.Features))
	}
	if c.CRS != types.CRSWGS84 {
		t.Errorf("Expected WGS84 default, got %s", c.CRS)
	}
}

func TestGeoJSONLoader_ParseError(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "broken.geojson")
	if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}
	loader, _ := GetLoader("geojson")
	if _, err := loader.Load(&types.SourceSpec{Path: path}); err == nil {
		t.Fatalf("Expected parse error")
	}
}

func TestWKTLoader(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "lines.wkt")
	doc := `# survey traces
LINESTRING (0 0, 10 0)

POLYGON ((0 0, 4 0, 4 4, 0 4, 0 0))
`
	if err := os.WriteFile(path, []byte(doc), 0644); err != nil {
		t.Fatal(err)
	}

	loader, err := GetLoader("wkt")
	if err != nil {
		t.Fatal(err)
	}
	c, err := loader.Load(&types.SourceSpec{Path: path})
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if len(c.Features) != 2 {
		t.Fatalf("Expected 2 features (comments and blanks skipped), got %d", len(c.Features))
	}
	if _, ok := c.Features[0].Geometry.(orb.LineString); !ok {
		t.Errorf("Expected line string, got %T", c.Features[0].Geometry)
	}
	if _, ok := c.Features[1].Geometry.(orb.Polygon); !ok {
		t.Errorf("Expected polygon, got %T", c.Features[1].Geometry)
	}
}

func TestFormatForPath(t *testing.T) {
	if got := FormatForPath("a/b/traces.wkt"); got != "wkt" {
		t.Errorf("Expected wkt, got %s", got)
	}
	if got := FormatForPath("fields.geojson"); got != "geojson" {
		t.Errorf("Expected geojson, got %s", got)
	}
	if got := FormatForPath("unknown.dat"); got != "geojson" {
		t.Errorf("Expected geojson fallback, got %s", got)
	}
}

func TestGetLoader_Unknown(t *testing.T) {
	if _, err := GetLoader("shapefile"); err == nil {
		t.Errorf("Expected error for unregistered loader")
	}
}
