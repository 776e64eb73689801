package executor

import (
	"context"
	"time"

	"github.com/vk/recipego/internal/ctxlog"
	"github.com/vk/recipego/internal/recipe"
	"github.com/vk/recipego/internal/registry"
	"github.com/vk/recipego/internal/result"
	"github.com/vk/recipego/internal/vars"
)

// Options configures a single build execution.
type Options struct {
	// Basedir is the working directory shared by all actions of the build.
	Basedir string
	// Vars is the variable context attribute values are expanded against.
	Vars vars.Context
	// OnError is the build-level failure policy applied to steps that do
	// not set their own. The recipe's own build-level setting takes
	// precedence; the final fallback is fail.
	OnError recipe.OnError
	// CommandTimeout limits each external process an action spawns. Zero
	// means no limit.
	CommandTimeout time.Duration
}

// Executor runs a parsed recipe step by step, strictly sequentially, and
// produces the build result tree. The registry is passed in explicitly so
// tests can execute against fakes.
type Executor struct {
	registry *registry.Registry
	opts     Options
}

// New creates an executor for the given registry and options.
func New(reg *registry.Registry, opts Options) *Executor {
	return &Executor{registry: reg, opts: opts}
}

// Run executes the recipe's steps in document order and returns the build
// result. Execution-time failures are folded into step and build statuses,
// never returned as errors; the only error Run reports is cancellation, and
// even then the partial build result is returned alongside it.
func (e *Executor) Run(ctx context.Context, rcp *recipe.Recipe) (*result.Build, error) {
	logger := ctxlog.FromContext(ctx)
	build := result.NewBuild()
	build.Status = result.StatusRunning
	build.Started = time.Now()
	defer func() { build.Stopped = time.Now() }()

	logger.Info("🚀 Starting build.", "build", build.ID, "steps", len(rcp.Steps))

	failed := false
	for _, step := range rcp.Steps {
		if err := ctx.Err(); err != nil {
			logger.Warn("Build cancelled, remaining steps skipped.", "build", build.ID)
			build.Status = result.StatusFailed
			return build, err
		}

		stepResult := e.runStep(ctx, step)
		build.Steps = append(build.Steps, stepResult)

		if stepResult.Status != result.StatusFailed {
			continue
		}
		switch e.resolveOnError(rcp, step) {
		case recipe.OnErrorFail:
			logger.Error("Step failed, aborting build.", "step", step.ID)
			build.Status = result.StatusFailed
			return build, nil
		case recipe.OnErrorContinue:
			logger.Warn("Step failed, continuing with build marked failed.", "step", step.ID)
			failed = true
		case recipe.OnErrorIgnore:
			logger.Warn("Ignoring step failure.", "step", step.ID)
		}
	}

	if failed {
		build.Status = result.StatusFailed
	} else {
		build.Status = result.StatusSucceeded
	}
	logger.Info("🏁 Build finished.", "build", build.ID, "status", build.Status)
	return build, nil
}

// resolveOnError picks the effective failure policy for a step: the step's
// own setting, else the recipe's build-level setting, else the executor
// default, else fail.
func (e *Executor) resolveOnError(rcp *recipe.Recipe, step *recipe.Step) recipe.OnError {
	for _, policy := range []recipe.OnError{step.OnError, rcp.OnError, e.opts.OnError} {
		if policy != recipe.OnErrorInherit {
			return policy
		}
	}
	return recipe.OnErrorFail
}
