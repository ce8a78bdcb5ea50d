package exporters

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/paulmach/orb/encoding/wkt"

	"github.com/gunther-schulz/geoforge/internal/errors"
	"github.com/gunther-schulz/geoforge/internal/types"
)

func init() {
	RegisterExporter("wkt", &wktExporter{})
}

// wktExporter writes one WKT geometry per line per layer. Attribute rows
// are dropped; use the geojson exporter when attributes matter.
type wktExporter struct{}

func (e *wktExporter) Export(layers []*types.Layer, config *types.PipelineConfig) ([]string, error) {
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
		var sb strings.Builder
		for _, f := range layer.Geometry.Features {
			if f.Geometry == nil {
				continue
			}
			sb.WriteString(wkt.MarshalString(f.Geometry))
			sb.WriteByte('\n')
		}
		path := filepath.Join(outDir, layer.Name+".wkt")
		if err := os.WriteFile(path, []byte(sb.String()), 0644); err != nil {
			return written, errors.NewIOError(err, "write %s", path)
		}
		written = append(written, path)
	}
	return written, nil
}
