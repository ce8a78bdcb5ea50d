// Package loaders produces seed layer collections from external files.
// A loader never returns a nil collection together with a nil error.
package loaders

import (
	"fmt"

	"github.com/gunther-schulz/geoforge/internal/types"
)

type Loader interface {
	Load(spec *types.SourceSpec) (*types.Collection, error)
}

var loaders = make(map[string]Loader)

func RegisterLoader(format string, loader Loader) {
	loaders[format] = loader
}

func GetLoader(format string) (Loader, error) {
	loader, exists := loaders[format]
	if !exists {
		return nil, fmt.Errorf("loader %s not found", format)
	}
	return loader, nil
}

func ListLoaders() []string {
	names := make([]string, 0, len(loaders))
	for name := range loaders {
		names = append(names, name)
	}
	return names
}
