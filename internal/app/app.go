package app

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/vk/transtab/internal/config"
	"github.com/vk/transtab/internal/ctxlog"
	"github.com/vk/transtab/internal/hcl_adapter"
	"github.com/vk/transtab/internal/parser"
	"github.com/vk/transtab/internal/registry"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW     io.Writer
	logger   *slog.Logger
	registry *registry.Registry
	config   *Config
	loaders  map[string]config.Loader
}

// NewApp is the constructor for the main application. It returns a fully
// initialized App instance, including its own isolated logger and registry.
// Without modules the core modules are registered.
func NewApp(outW io.Writer, cfg *Config, modules ...registry.Module) *App {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, outW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	reg := registry.New()
	if len(modules) == 0 {
		modules = coreModules
	}
	for _, mod := range modules {
		mod.Register(reg)
	}
	logger.Debug("All Go modules registered.", "count", len(modules), "operations", reg.Names())

	if err := reg.ValidateRegistry(ctx); err != nil {
		// A module registering a broken operation is a programmer error.
		panic(err)
	}

	structured := hcl_adapter.NewLoader()
	return &App{
		outW:     outW,
		logger:   logger,
		registry: reg,
		config:   cfg,
		loaders: map[string]config.Loader{
			".txt":  parser.NewLoader(),
			".hcl":  structured,
			".json": structured,
		},
	}
}

// Registry returns the application's registry. This is primarily for testing.
func (a *App) Registry() *registry.Registry {
	return a.registry
}

// loaderFor picks the specification loader by file extension.
func (a *App) loaderFor(path string) (config.Loader, bool) {
	l, ok := a.loaders[strings.ToLower(filepath.Ext(path))]
	return l, ok
}
