package app

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/vk/recipego/internal/profile"
	"github.com/vk/recipego/internal/registry"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW     io.Writer
	logger   *slog.Logger
	registry *registry.Registry
	profile  *profile.Profile
}

// NewApp is the constructor for the main application. It returns a fully
// initialized App instance with its own isolated logger and registry. When
// no modules are passed, the compiled-in core action set is registered.
func NewApp(outW io.Writer, cfg *Config, modules ...registry.Module) *App {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, outW)
	logger.Debug("Logger configured successfully.")

	prof := profile.Default()
	if cfg.ProfilePath != "" {
		loaded, err := profile.Load(cfg.ProfilePath)
		if err != nil {
			// A failure to load the profile is a fatal startup error.
			panic(fmt.Errorf("failed to load profile: %w", err))
		}
		prof = loaded
	}
	logger.Debug("Runner profile loaded.", "onerror", prof.OnError, "command_timeout", prof.CommandTimeout)

	reg := registry.New()
	if len(modules) == 0 {
		modules = coreModules
	}
	for _, mod := range modules {
		mod.Register(reg)
	}
	logger.Debug("All action modules registered.", "modules", len(modules), "actions", reg.Len())

	return &App{
		outW:     outW,
		logger:   logger,
		registry: reg,
		profile:  prof,
	}
}

// Registry returns the application's registry. This is primarily for testing.
func (a *App) Registry() *registry.Registry {
	return a.registry
}
