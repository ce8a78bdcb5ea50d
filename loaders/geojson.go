package loaders

import (
	"os"
	"strings"

	"github.com/paulmach/orb/geojson"

	"github.com/gunther-schulz/geoforge/internal/errors"
	"github.com/gunther-schulz/geoforge/internal/types"
)

func init() {
	RegisterLoader("geojson", &geoJSONLoader{})
}

type geoJSONLoader struct{}

// Load reads a GeoJSON feature collection. A missing file is not an
// error at this level: it yields an explicitly empty collection so the
// caller can warn and continue.
func (l *geoJSONLoader) Load(spec *types.SourceSpec) (*types.Collection, error) {
	crs := spec.CRS
	if crs == "" {
		crs = types.CRSWGS84
	}
	data, err := os.ReadFile(spec.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return types.NewCollection(crs), nil
		}
		return nil, errors.NewIOError(err, "read %s", spec.Path)
	}

	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, errors.NewIOError(err, "parse %s", spec.Path)
	}

	out := types.NewCollection(crs)
	for _, feat := range fc.Features {
		if feat == nil || feat.Geometry == nil {
			continue
		}
		f := types.NewFeature(feat.Geometry)
		for k, v := range feat.Properties {
			f.Attributes[k] = v
		}
		out.Append(f)
	}
	return out, nil
}

// FormatForPath guesses the loader format from a file extension, falling
// back to geojson.
func FormatForPath(path string) string {
	switch {
	case strings.HasSuffix(path, ".wkt"):
		return "wkt"
	default:
		return "geojson"
	}
}
