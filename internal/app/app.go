package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"

	"github.com/specialistvlad/graphua/internal/config"
	"github.com/specialistvlad/graphua/internal/ctxlog"
	"github.com/specialistvlad/graphua/internal/directory"
	"github.com/specialistvlad/graphua/internal/eventbus"
	"github.com/specialistvlad/graphua/internal/executor"
	"github.com/specialistvlad/graphua/internal/graph"
	"github.com/specialistvlad/graphua/internal/hcl_adapter"
	"github.com/specialistvlad/graphua/internal/inmemorystore"
	"github.com/specialistvlad/graphua/internal/localsession"
	"github.com/specialistvlad/graphua/internal/metrics"
	"github.com/specialistvlad/graphua/internal/nodestore"
	"github.com/specialistvlad/graphua/internal/registry"
	"github.com/specialistvlad/graphua/internal/transport/socketio"
	"github.com/specialistvlad/graphua/internal/yaml_adapter"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW      io.Writer
	ctx       context.Context
	logger    *slog.Logger
	config    *Config
	model     *config.Model
	converter config.Converter

	store     nodestore.Store
	registry  *registry.Registry
	bus       *eventbus.Bus
	graph     *graph.Manager
	pool      *executor.Pool
	metrics   *metrics.Metrics
	sessions  *localsession.SessionFactory
	transport *socketio.Server

	mu           sync.Mutex
	addr         string
	httpServer   *http.Server
	healthServer *http.Server
}

// DefaultLoaders returns the HCL and YAML schema loaders. Each picks up only
// the files with its own extensions.
func DefaultLoaders() []config.Loader {
	return []config.Loader{hcl_adapter.NewLoader(), yaml_adapter.NewLoader()}
}

// NewApp is the constructor for the main application. It returns a fully
// initialized App instance, including its own isolated logger and registry.
// Configuration errors are fatal and panic.
func NewApp(outW io.Writer, appConfig *Config, loaders []config.Loader, modules ...registry.Module) *App {
	cfg := *appConfig
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, outW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Bootstrap logger configured.")

	if loaders == nil {
		loaders = DefaultLoaders()
	}
	model := config.NewModel()
	var converter config.Converter
	for _, loader := range loaders {
		m, conv, err := loader.Load(ctx, cfg.ConfigPaths...)
		if err != nil {
			// A failure to load config is a fatal startup error.
			panic(fmt.Errorf("failed to load configuration: %w", err))
		}
		model.Merge(m)
		if converter == nil {
			converter = conv
		}
	}
	if converter == nil {
		converter = hcl_adapter.NewConverter()
	}

	cfg.applyServer(model.Server)
	cfg.applyDefaults()
	if err := cfg.validate(true); err != nil {
		panic(fmt.Errorf("invalid configuration: %w", err))
	}
	logger = newLogger(cfg.LogLevel, cfg.LogFormat, outW)
	ctx = ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Configuration loaded and translated into unified model.",
		"vertex_types", len(model.Types), "edge_types", len(model.EdgeTypes))

	ns := uint16(cfg.Namespace)
	store := inmemorystore.New()
	reg := registry.New(store, ns)
	if len(modules) == 0 {
		modules = coreModules()
	}
	for _, mod := range modules {
		mod.Register(reg)
	}
	logger.Debug("All Go modules registered.", "count", len(modules), "plugins", reg.PluginNames())

	reg.PopulateDefinitionsFromModel(model)
	if err := reg.ValidateRegistry(ctx); err != nil {
		// A mismatch between code and schema is a programmer error.
		panic(err)
	}
	if err := reg.Bootstrap(ctx); err != nil {
		panic(fmt.Errorf("failed to bootstrap address space: %w", err))
	}
	logger.Debug("Address space bootstrapped.", "nodes", store.Len(ctx))

	bus := eventbus.New(cfg.EventQueue)
	g := graph.New(reg, directory.New(store, ns), bus, converter)
	pool := executor.New(cfg.Workers, cfg.EventQueue)
	m := metrics.New(store, bus, pool)
	sessions := localsession.NewFactory(g, bus)

	return &App{
		outW:      outW,
		ctx:       ctx,
		logger:    logger,
		config:    &cfg,
		model:     model,
		converter: converter,
		store:     store,
		registry:  reg,
		bus:       bus,
		graph:     g,
		pool:      pool,
		metrics:   m,
		sessions:  sessions,
		transport: socketio.NewServer(ctx, sessions, pool, m),
	}
}

// Registry returns the application's registry. This is primarily for testing.
func (a *App) Registry() *registry.Registry { return a.registry }

// Graph returns the graph manager.
func (a *App) Graph() *graph.Manager { return a.graph }

// Sessions returns the factory for in-process sessions.
func (a *App) Sessions() *localsession.SessionFactory { return a.sessions }

// Config returns the effective configuration.
func (a *App) Config() Config { return *a.config }

// Addr returns the address the main server listens on, or "" before Run
// has bound it.
func (a *App) Addr() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.addr
}
