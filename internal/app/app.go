package app

import (
	"context"
	"io"
	"log/slog"

	"github.com/vk/nodegraph/internal/ctxlog"
	"github.com/vk/nodegraph/internal/registry"
	"github.com/vk/nodegraph/internal/typesys"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW       io.Writer
	logger     *slog.Logger
	registry   *registry.Registry
	converters *typesys.Converters
	config     *Config
}

// NewApp is the constructor for the main application. Program output (print
// nodes and computed values) goes to outW and logs go to logW. It returns a
// fully initialized App instance, including its own isolated logger and
// registry. When no modules are given the built-in set is registered.
func NewApp(outW, logW io.Writer, cfg *Config, modules ...registry.Module) *App {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, logW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	if len(modules) == 0 {
		modules = builtinModules(outW)
	}
	reg := registry.New()
	if err := reg.Load(ctx, modules...); err != nil {
		// A class that fails validation is a programmer error, so we panic.
		panic(err)
	}
	logger.Debug("All Go modules registered.", "count", len(modules), "classes", reg.Len())

	return &App{
		outW:       outW,
		logger:     logger,
		registry:   reg,
		converters: typesys.NewConverters(),
		config:     cfg,
	}
}

// Registry returns the application's registry. This is primarily for testing.
func (a *App) Registry() *registry.Registry {
	return a.registry
}
