package testutil

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/vk/recipego/internal/ctxlog"
	"github.com/vk/recipego/internal/executor"
	"github.com/vk/recipego/internal/recipe"
	"github.com/vk/recipego/internal/registry"
	"github.com/vk/recipego/internal/result"
	"github.com/vk/recipego/internal/vars"
)

// HarnessResult bundles everything an integration test needs to assert on:
// the build result, any parse or run error, and the engine's own log output.
type HarnessResult struct {
	Build     *result.Build
	Err       error
	LogOutput string
}

// HarnessOptions tweak a harness run.
type HarnessOptions struct {
	// Vars is merged over the seeded canonical context.
	Vars vars.Context
	// OnError is the executor-level default policy.
	OnError recipe.OnError
}

// RunRecipe parses the recipe document against a registry populated from the
// given modules and executes it in a temp basedir. Parse failures are
// returned in HarnessResult.Err with a nil Build.
func RunRecipe(t *testing.T, recipeXML string, opts HarnessOptions, modules ...registry.Module) *HarnessResult {
	t.Helper()

	reg := registry.New()
	for _, mod := range modules {
		mod.Register(reg)
	}

	var logBuf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logBuf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	ctx := ctxlog.WithLogger(context.Background(), logger)

	res := &HarnessResult{}
	defer func() { res.LogOutput = logBuf.String() }()

	rcp, err := recipe.Parse(strings.NewReader(recipeXML), reg)
	if err != nil {
		res.Err = err
		return res
	}

	basedir := t.TempDir()
	v := vars.New().Merge(vars.Context{"basedir": basedir})
	if opts.Vars != nil {
		v.Merge(opts.Vars)
	}

	exec := executor.New(reg, executor.Options{
		Basedir: basedir,
		Vars:    v,
		OnError: opts.OnError,
	})
	res.Build, res.Err = exec.Run(ctx, rcp)
	return res
}
