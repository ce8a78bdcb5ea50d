package exporters

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/gzip"
	"github.com/paulmach/orb/geojson"

	"github.com/gunther-schulz/geoforge/internal/errors"
	"github.com/gunther-schulz/geoforge/internal/types"
)

func init() {
	RegisterExporter("geojson", &geoJSONExporter{})
}

type geoJSONExporter struct{}

// Export writes one feature collection per layer into the output
// directory, gzip-compressed when the config asks for it. Layers whose
// update flag is off are skipped; empty layers produce an empty document.
func (e *geoJSONExporter) Export(layers []*types.Layer, config *types.PipelineConfig) ([]string, error) {
	outDir := config.OutputDir
	if outDir == "" {
		outDir = "."
	}
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return nil, errors.NewIOError(err, "create output directory %s", outDir)
	}

	var written []string
	for _, layer := range layers {
		if !layer.UpdateFlag {
			continue
		}
		fc := geojson.NewFeatureCollection()
		for _, f := range layer.Geometry.Features {
			if f.Geometry == nil {
				continue
			}
			feat := geojson.NewFeature(f.Geometry)
			for k, v := range f.Attributes {
				feat.Properties[k] = v
			}
			if layer.StyleID != "" {
				feat.Properties["style"] = layer.StyleID
			}
			fc.Append(feat)
		}

		data, err := json.Marshal(fc)
		if err != nil {
			return written, errors.NewIOError(err, "marshal layer %s", layer.Name)
		}

		path := filepath.Join(outDir, layer.Name+".geojson")
		if config.Compress {
			path += ".gz"
			if err := writeGzip(path, data); err != nil {
				return written, err
			}
		} else {
			if err := os.WriteFile(path, data, 0644); err != nil {
				return written, errors.NewIOError(err, "write %s", path)
			}
		}
		written = append(written, path)
	}
	return written, nil
}

func writeGzip(path string, data []byte) error {
	file, err := os.Create(path)
	if err != nil {
		return errors.NewIOError(err, "create %s", path)
	}
	defer file.Close()

	zw := gzip.NewWriter(file)
	if _, err := zw.Write(data); err != nil {
		zw.Close()
		return errors.NewIOError(err, "write %s", path)
	}
	if err := zw.Close(); err != nil {
		return errors.NewIOError(err, "flush %s", path)
	}
	return nil
}
