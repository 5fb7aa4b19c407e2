package main

import (
	"fmt"

	"github.com/schemat-io/core/internal/config"
	"github.com/schemat-io/core/internal/container"
	"github.com/schemat-io/core/internal/dispatch"
	"github.com/schemat-io/core/internal/modloader"
	"github.com/schemat-io/core/internal/object"
	"github.com/schemat-io/core/internal/registry"
	"github.com/schemat-io/core/internal/site"
	"github.com/schemat-io/core/internal/storefactory"
)

// installation bundles the process-wide singletons the Design Note
// "Global state" calls for: assembled once during boot and passed down
// explicitly from here rather than reached via package-level globals.
type installation struct {
	cfg      *config.Config
	registry *registry.Registry
	loader   *modloader.Loader
	site     *site.Site
	tree     *container.Tree
	dispatch *dispatch.Dispatcher
}

// boot reads schemat.yml from configDir and wires every component
// together (spec §4.1-§4.6, SPEC_FULL "Supplemented features": config →
// store → registry → site → dispatch → HTTP adapter).
func boot(configDir string) (*installation, error) {
	cfg, err := config.Load(configDir)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	specs := make([]storefactory.LayerSpec, 0, len(cfg.Layers))
	for i, l := range cfg.Layers {
		specs = append(specs, storefactory.LayerSpec{
			Name:     l.Name,
			DSN:      l.DSN,
			ReadOnly: i > 0, // only the first (outermost) configured layer is writable by default
		})
	}
	st, err := storefactory.BuildLayered(specs)
	if err != nil {
		return nil, fmt.Errorf("building record store: %w", err)
	}

	loader, err := modloader.New(cfg.Modules.Root, nil)
	if err != nil {
		return nil, fmt.Errorf("starting module loader: %w", err)
	}

	deps := &object.Deps{Store: st}
	reg := registry.New(st, deps, cfg.Registry.ParsedDefaultTTL)

	space := container.NewObjectSpace(reg)
	tree := container.NewTree(space, cfg.Site.DefaultPath)
	deps.ResolveURL = tree.ResolveURL

	s := site.New(loader, tree)
	deps.ResolveClass = s.ResolveClass
	deps.ResolveSchema = s.ResolveSchema

	d := dispatch.New(tree)
	loader.SetFetcher(site.TextFetcherFor(d))

	return &installation{
		cfg:      cfg,
		registry: reg,
		loader:   loader,
		site:     s,
		tree:     tree,
		dispatch: d,
	}, nil
}

func (in *installation) Close() {
	_ = in.loader.Close()
}
