// Package frontends turns configuration documents into validated project
// specs. Frontends are pluggable by name, like loaders and exporters.
package frontends

import (
	"fmt"

	"github.com/gunther-schulz/geoforge/internal/types"
)

type Frontend interface {
	Parse(data []byte, config *types.PipelineConfig) (*types.ProjectSpec, error)
}

var frontends = make(map[string]Frontend)

func RegisterFrontend(name string, frontend Frontend) {
	frontends[name] = frontend
}

func GetFrontend(name string) (Frontend, error) {
	frontend, exists := frontends[name]
	if !exists {
		return nil, fmt.Errorf("frontend %s not found", name)
	}
	return frontend, nil
}

func ListFrontends() []string {
	names := make([]string, 0, len(frontends))
	for name := range frontends {
		names = append(names, name)
	}
	return names
}
