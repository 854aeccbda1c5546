package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"

	"github.com/vk/portsmith/internal/build"
	"github.com/vk/portsmith/internal/ctxlog"
	"github.com/vk/portsmith/internal/fetch"
	"github.com/vk/portsmith/internal/hclcfg"
	"github.com/vk/portsmith/internal/registry"
	"github.com/vk/portsmith/internal/settings"

	portcache "github.com/vk/portsmith/internal/cache"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW     io.Writer
	logger   *slog.Logger
	config   *Config
	registry *registry.Registry
	store    *settings.Store
	env      *registry.Env
}

// NewApp is the constructor for the main application. It returns a fully
// initialized App instance with its own isolated logger, registry, and
// settings store. Startup failures (bad settings files, malformed overrides)
// panic; the entrypoint recovers and reports them cleanly.
func NewApp(outW io.Writer, cfg *Config, ports ...registry.Port) *App {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, outW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	store := settings.New()
	reg := registry.New()
	if len(ports) == 0 {
		ports = corePorts()
	}
	for _, p := range ports {
		reg.Register(p)
		p.DeclareSettings(store)
	}
	logger.Debug("All ports registered.", "count", reg.Len())

	if cfg.ConfigPath != "" {
		if err := hclcfg.Load(ctx, store, cfg.ConfigPath); err != nil {
			// A failure to load settings is a fatal startup error.
			panic(fmt.Errorf("failed to load settings: %w", err))
		}
		logger.Debug("Settings files loaded.", "path", cfg.ConfigPath)
	}

	for _, override := range cfg.Overrides {
		if err := store.ApplyOverride(override); err != nil {
			panic(fmt.Errorf("invalid -s override: %w", err))
		}
	}
	logger.Debug("Setting overrides applied.", "count", len(cfg.Overrides))

	env := &registry.Env{
		Fetcher: fetch.NewHTTPFetcher(
			&http.Client{},
			filepath.Join(cfg.CacheDir, "downloads"),
			filepath.Join(cfg.CacheDir, "ports"),
		),
		Cache:    portcache.New(cfg.CacheDir),
		Compiler: build.NewCCompiler(),
	}

	return &App{
		outW:     outW,
		logger:   logger,
		config:   cfg,
		registry: reg,
		store:    store,
		env:      env,
	}
}

// Registry returns the application's port registry. This is primarily for testing.
func (a *App) Registry() *registry.Registry {
	return a.registry
}

// Settings returns the application's settings store. This is primarily for testing.
func (a *App) Settings() *settings.Store {
	return a.store
}
