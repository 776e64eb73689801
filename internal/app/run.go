package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"gopkg.in/yaml.v3"

	"github.com/vk/recipego/internal/ctxlog"
	"github.com/vk/recipego/internal/executor"
	"github.com/vk/recipego/internal/recipe"
	"github.com/vk/recipego/internal/result"
	"github.com/vk/recipego/internal/vars"
)

// Run executes the main application logic based on the provided configuration.
func (a *App) Run(ctx context.Context, cfg *Config) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	rcp, err := a.parseRecipe(cfg)
	if err != nil {
		return err
	}
	if cfg.DryRun {
		a.logger.Info("Recipe is valid.", "recipe", cfg.RecipePath, "steps", len(rcp.Steps))
		return nil
	}

	basedir, err := a.prepareBasedir(cfg)
	if err != nil {
		return err
	}
	buildVars, err := a.buildVariables(cfg, basedir)
	if err != nil {
		return err
	}

	onerror := recipe.OnError(cfg.OnError)
	if onerror == recipe.OnErrorInherit {
		onerror = a.profile.OnError
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = a.profile.CommandTimeout
	}

	exec := executor.New(a.registry, executor.Options{
		Basedir:        basedir,
		Vars:           buildVars,
		OnError:        onerror,
		CommandTimeout: timeout,
	})
	build, runErr := exec.Run(ctx, rcp)

	for _, step := range build.Steps {
		a.logger.Info("Step finished.", "step", step.ID, "status", step.Status, "duration", step.Duration())
	}

	if cfg.ResultPath != "" {
		if err := writeResult(cfg.ResultPath, build); err != nil {
			return err
		}
		a.logger.Info("Build result written.", "path", cfg.ResultPath)
	}

	if runErr != nil {
		return fmt.Errorf("build %s interrupted: %w", build.ID, runErr)
	}
	if build.Status == result.StatusFailed {
		return fmt.Errorf("build %s failed", build.ID)
	}
	a.logger.Debug("App.Run method finished.")
	return nil
}

// parseRecipe reads and validates the recipe document.
func (a *App) parseRecipe(cfg *Config) (*recipe.Recipe, error) {
	f, err := os.Open(cfg.RecipePath)
	if err != nil {
		return nil, fmt.Errorf("opening recipe: %w", err)
	}
	defer f.Close()

	rcp, err := recipe.Parse(f, a.registry)
	if err != nil {
		return nil, fmt.Errorf("parsing recipe %s: %w", cfg.RecipePath, err)
	}
	a.logger.Debug("Recipe parsed.", "steps", len(rcp.Steps))
	return rcp, nil
}

// prepareBasedir resolves the working directory, creating it when absent.
func (a *App) prepareBasedir(cfg *Config) (string, error) {
	basedir := cfg.Basedir
	if basedir == "" {
		basedir = "."
	}
	abs, err := filepath.Abs(basedir)
	if err != nil {
		return "", fmt.Errorf("resolving basedir: %w", err)
	}
	if err := os.MkdirAll(abs, 0755); err != nil {
		return "", fmt.Errorf("creating basedir: %w", err)
	}
	return abs, nil
}

// buildVariables assembles the variable context for one run, lowest to
// highest precedence: seeded canonical values, profile presets, the
// variables file, and per-invocation overrides.
func (a *App) buildVariables(cfg *Config, basedir string) (vars.Context, error) {
	v := vars.New()
	v["basedir"] = basedir
	v["path"] = basedir
	v["platform"] = runtime.GOOS
	if hostname, err := os.Hostname(); err == nil {
		v["name"] = hostname
	}

	v.Merge(a.profile.Variables)

	if cfg.VarsPath != "" {
		fromFile, err := vars.FromFile(cfg.VarsPath)
		if err != nil {
			return nil, err
		}
		v.Merge(fromFile)
	}
	v.Merge(vars.Context(cfg.Vars))

	a.logger.Debug("Variable context assembled.", "names", v.Names())
	return v, nil
}

// writeResult serializes the build result to a YAML file for the caller's
// reporting layer.
func writeResult(path string, build *result.Build) error {
	data, err := yaml.Marshal(build)
	if err != nil {
		return fmt.Errorf("serializing build result: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing build result: %w", err)
	}
	return nil
}
