package engine

import (
	"os"
	"sort"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/gunther-schulz/geoforge/exporters"
	"github.com/gunther-schulz/geoforge/frontends"
	"github.com/gunther-schulz/geoforge/internal/errors"
	"github.com/gunther-schulz/geoforge/internal/types"
	"github.com/gunther-schulz/geoforge/loaders"
)

// Pipeline wires config parsing, layer registration, seed loading,
// resolution and export into one run. Layers whose source names an
// external document stay deferred until ProvideDocument delivers it.
type Pipeline struct {
	config   *types.PipelineConfig
	log      *logrus.Logger
	store    *Store
	resolver *Resolver

	// deferred maps a document name to the layers waiting on it.
	deferred map[string][]string
	resolved int
	started  time.Time
}

func NewPipeline(config *types.PipelineConfig, log *logrus.Logger) *Pipeline {
	if log == nil {
		log = logrus.New()
	}
	return &Pipeline{
		config:   config,
		log:      log,
		deferred: make(map[string][]string),
	}
}

func (p *Pipeline) Store() *Store       { return p.store }
func (p *Pipeline) Resolver() *Resolver { return p.resolver }

// Deferred lists document names still awaited, sorted for stable output.
func (p *Pipeline) Deferred() []string {
	var out []string
	for doc := range p.deferred {
		out = append(out, doc)
	}
	sort.Strings(out)
	return out
}

// Run executes the full pipeline: parse, register, load, resolve, export.
// Fatal errors (config, cycle, unknown frontend or exporter) abort the
// run; recovered geometry failures surface as warnings in the result.
func (p *Pipeline) Run() (*types.PipelineResult, error) {
	p.started = time.Now()

	spec, err := p.loadSpec()
	if err != nil {
		return p.failure(err), err
	}
	if err := p.register(spec); err != nil {
		return p.failure(err), err
	}
	if err := p.loadSeeds(spec); err != nil {
		return p.failure(err), err
	}

	var resolved int
	if p.config.Layer != "" {
		if _, ok := p.store.Get(p.config.Layer); !ok {
			err := errors.NewConfigError("unknown layer %q", p.config.Layer)
			return p.failure(err), err
		}
		resolved, err = p.resolver.Resolve(p.config.Layer, p.blockedSet())
	} else {
		resolved, err = p.resolver.ResolveAll(p.blockedSet())
	}
	p.resolved += resolved
	if err != nil {
		return p.failure(err), err
	}

	exported, err := p.export()
	if err != nil {
		return p.failure(err), err
	}
	return p.result(exported), nil
}

// ProvideDocument seeds every layer waiting on the named document and
// drains whatever became resolvable. Unknown documents are a no-op.
func (p *Pipeline) ProvideDocument(doc string, c *types.Collection) (int, error) {
	waiting, ok := p.deferred[doc]
	if !ok {
		return 0, nil
	}
	for _, name := range waiting {
		if err := p.store.SeedGeometry(name, c.Clone()); err != nil {
			return 0, err
		}
	}
	delete(p.deferred, doc)

	resolved, err := p.resolver.ResolveAll(p.blockedSet())
	p.resolved += resolved
	return resolved, err
}

// Export writes the finished layers with the configured exporter. Safe to
// call again after ProvideDocument drains more layers.
func (p *Pipeline) Export() ([]string, error) {
	return p.export()
}

func (p *Pipeline) loadSpec() (*types.ProjectSpec, error) {
	data, err := os.ReadFile(p.config.ConfigPath)
	if err != nil {
		return nil, errors.NewIOError(err, "read config %s", p.config.ConfigPath)
	}
	name := p.config.Frontend
	if name == "" {
		name = "yaml"
	}
	frontend, err := frontends.GetFrontend(name)
	if err != nil {
		return nil, err
	}
	spec, err := frontend.Parse(data, p.config)
	if err != nil {
		return nil, err
	}
	p.log.WithFields(logrus.Fields{
		"config": p.config.ConfigPath,
		"layers": len(spec.Layers),
	}).Info("configuration parsed")
	return spec, nil
}

func (p *Pipeline) register(spec *types.ProjectSpec) error {
	crs := p.config.TargetCRS
	if crs == "" {
		crs = spec.CRS
	}
	p.store = NewStore(crs)
	p.resolver = NewResolver(p.store, p.log)

	for _, ls := range spec.Layers {
		layer := &types.Layer{
			Name:       ls.Name,
			UpdateFlag: ls.UpdateFlag,
			StyleID:    ls.StyleID,
			Operations: ls.Operations,
			State:      types.StatePending,
		}
		if err := p.store.Register(layer); err != nil {
			return err
		}
		if err := p.resolver.RegisterTempLayers(ls.Name, ls.Operations); err != nil {
			return err
		}
	}
	return nil
}

// loadSeeds feeds path-sourced layers through the loader registry and
// parks document-sourced layers in the deferred map. A failed load is
// recoverable: the layer keeps an empty collection and a warning.
func (p *Pipeline) loadSeeds(spec *types.ProjectSpec) error {
	for _, ls := range spec.Layers {
		src := ls.Source
		if src == nil {
			continue
		}
		if src.Document != "" {
			p.deferred[src.Document] = append(p.deferred[src.Document], ls.Name)
			p.log.WithFields(logrus.Fields{
				"layer":    ls.Name,
				"document": src.Document,
			}).Info("layer deferred until document arrives")
			continue
		}

		format := src.Format
		if format == "" {
			format = loaders.FormatForPath(src.Path)
		}
		loader, err := loaders.GetLoader(format)
		if err != nil {
			return err
		}
		c, err := loader.Load(src)
		if err != nil {
			if errors.IsFatal(err) {
				return err
			}
			p.resolver.warn(ls.Name, "", "load %s: %v", src.Path, err)
			c = types.NewCollection(p.store.CRS())
		}
		if err := p.store.SeedGeometry(ls.Name, c); err != nil {
			return err
		}
	}
	return nil
}

// blockedSet flattens the deferred map into the layer names that must not
// be scheduled yet.
func (p *Pipeline) blockedSet() map[string]bool {
	blocked := make(map[string]bool)
	for _, names := range p.deferred {
		for _, name := range names {
			blocked[name] = true
		}
	}
	return blocked
}

func (p *Pipeline) export() ([]string, error) {
	if p.config.Exporter == "" {
		return nil, nil
	}
	exporter, err := exporters.GetExporter(p.config.Exporter)
	if err != nil {
		return nil, err
	}
	return exporter.Export(p.store.Finished(), p.config)
}

func (p *Pipeline) result(exported []string) *types.PipelineResult {
	return &types.PipelineResult{
		Success:  true,
		Layers:   len(p.store.Names()),
		Resolved: p.resolved,
		Deferred: len(p.deferred),
		Warnings: p.resolver.Warnings(),
		Exported: exported,
		Duration: time.Since(p.started).String(),
	}
}

func (p *Pipeline) failure(err error) *types.PipelineResult {
	res := &types.PipelineResult{
		Error:    err.Error(),
		Duration: time.Since(p.started).String(),
	}
	if p.store != nil {
		res.Layers = len(p.store.Names())
	}
	if p.resolver != nil {
		res.Resolved = p.resolved
		res.Warnings = p.resolver.Warnings()
	}
	return res
}
