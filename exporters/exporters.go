// Package exporters consumes the finished layers. An exporter must treat
// an empty collection as nothing to draw, not as an error.
package exporters

import (
	"fmt"

	"github.com/gunther-schulz/geoforge/internal/types"
)

type Exporter interface {
	// Export writes the finished layers and returns the paths it wrote.
	Export(layers []*types.Layer, config *types.PipelineConfig) ([]string, error)
}

var exporters = make(map[string]Exporter)

func RegisterExporter(name string, exporter Exporter) {
	exporters[name] = exporter
}

func GetExporter(name string) (Exporter, error) {
	exporter, exists := exporters[name]
	if !exists {
		return nil, fmt.Errorf("exporter %s not found", name)
	}
	return exporter, nil
}

func ListExporters() []string {
	names := make([]string, 0, len(exporters))
	for name := range exporters {
		names = append(names, name)
	}
	return names
}
