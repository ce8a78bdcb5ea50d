package loaders

import (
	"bufio"
	"os"
	"strings"

	"github.com/paulmach/orb/encoding/wkt"

	"github.com/gunther-schulz/geoforge/internal/errors"
	"github.com/gunther-schulz/geoforge/internal/types"
)

func init() {
	RegisterLoader("wkt", &wktLoader{})
}

// wktLoader reads one WKT geometry per non-empty line. Attribute rows are
// empty; WKT carries no properties.
type wktLoader struct{}

func (l *wktLoader) Load(spec *types.SourceSpec) (*types.Collection, error) {
	crs := spec.CRS
	if crs == "" {
		crs = types.CRSWGS84
	}
	file, err := os.Open(spec.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return types.NewCollection(crs), nil
		}
		return nil, errors.NewIOError(err, "open %s", spec.Path)
	}
	defer file.Close()

	out := types.NewCollection(crs)
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 1024*1024), 16*1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		g, err := wkt.Unmarshal(text)
		if err != nil {
			return nil, errors.NewIOError(err, "parse %s line %d", spec.Path, line)
		}
		out.Append(types.NewFeature(g))
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.NewIOError(err, "read %s", spec.Path)
	}
	return out, nil
}
