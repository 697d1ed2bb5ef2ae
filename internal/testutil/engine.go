package testutil

import (
	"context"
	"testing"

	"github.com/specialistvlad/graphua/internal/config"
	"github.com/specialistvlad/graphua/internal/directory"
	"github.com/specialistvlad/graphua/internal/eventbus"
	"github.com/specialistvlad/graphua/internal/graph"
	"github.com/specialistvlad/graphua/internal/hcl_adapter"
	"github.com/specialistvlad/graphua/internal/inmemorystore"
	"github.com/specialistvlad/graphua/internal/nodestore"
	"github.com/specialistvlad/graphua/internal/registry"
	"github.com/stretchr/testify/require"
)

// Engine is a fully wired, bootstrapped in-memory address space.
type Engine struct {
	Store    nodestore.Store
	Registry *registry.Registry
	Bus      *eventbus.Bus
	Graph    *graph.Manager
}

// EngineOption customizes NewEngine before bootstrap.
type EngineOption func(r *registry.Registry)

// WithModules registers plugin modules.
func WithModules(modules ...registry.Module) EngineOption {
	return func(r *registry.Registry) {
		for _, m := range modules {
			m.Register(r)
		}
	}
}

// WithModel loads schema definitions.
func WithModel(model *config.Model) EngineOption {
	return func(r *registry.Registry) {
		r.PopulateDefinitionsFromModel(model)
	}
}

// NewEngine builds an engine with a running event bus. The bus is stopped
// when the test ends.
func NewEngine(t *testing.T, opts ...EngineOption) *Engine {
	t.Helper()
	ctx := context.Background()

	store := inmemorystore.New()
	reg := registry.New(store, registry.GraphNamespace)
	for _, opt := range opts {
		opt(reg)
	}
	require.NoError(t, reg.Bootstrap(ctx))

	bus := eventbus.New(256)
	bus.Start(ctx)
	t.Cleanup(bus.Stop)

	return &Engine{
		Store:    store,
		Registry: reg,
		Bus:      bus,
		Graph:    graph.New(reg, directory.New(store, registry.GraphNamespace), bus, hcl_adapter.NewConverter()),
	}
}
