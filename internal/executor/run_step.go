package executor

import (
	"context"
	"fmt"
	"time"

	"github.com/vk/recipego/internal/ctxlog"
	"github.com/vk/recipego/internal/recipe"
	"github.com/vk/recipego/internal/registry"
	"github.com/vk/recipego/internal/result"
	"github.com/vk/recipego/internal/vars"
)

// runStep executes a step's actions in document order. Actions within a
// step share a fail-fast contract: the first failure skips the rest. All
// output emitted before the failure stays on the StepResult.
func (e *Executor) runStep(ctx context.Context, step *recipe.Step) *result.StepResult {
	logger := ctxlog.FromContext(ctx).With("step", step.ID)
	logger.Info("▶️ Starting step.")

	stepResult := &result.StepResult{
		ID:          step.ID,
		Description: step.Description,
		Status:      result.StatusRunning,
		Started:     time.Now(),
	}
	rc := newActionContext(e.opts, stepResult)

	for _, action := range step.Actions {
		if err := e.runAction(ctx, rc, step, action); err != nil {
			logger.Error("Action failed, skipping remaining actions of step.",
				"action", action.QName(), "error", err)
			stepResult.Status = result.StatusFailed
			break
		}
	}

	if stepResult.Status != result.StatusFailed {
		stepResult.Status = result.StatusSucceeded
	}
	stepResult.Stopped = time.Now()

	if stepResult.Status == result.StatusSucceeded {
		logger.Info("✅ Finished step.", "duration", stepResult.Duration())
	} else {
		logger.Warn("❌ Step failed.", "duration", stepResult.Duration())
	}
	return stepResult
}

// runAction expands the action's attributes and invokes its handler. Any
// failure, including a handler panic, resolves to a single error consumed
// uniformly by the step loop and is recorded as an error-level log entry on
// the step.
func (e *Executor) runAction(ctx context.Context, rc *actionContext, step *recipe.Step, action *recipe.Action) (err error) {
	logger := ctxlog.FromContext(ctx)

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("action <%s> panicked: %v", action.QName(), r)
		}
		if err != nil {
			rc.Log(result.LevelError, err.Error())
		}
	}()

	registered, ok := e.registry.Lookup(action.Namespace, action.Name)
	if !ok {
		// Parsing validates registration, but the registry handed to the
		// executor may differ from the one used at parse time.
		return fmt.Errorf("no handler registered for action <%s>", action.QName())
	}

	attrs := make(registry.Attributes, len(action.Attrs))
	for name, raw := range action.Attrs {
		expanded, expandErr := vars.Expand(raw, e.opts.Vars)
		if expandErr != nil {
			return fmt.Errorf("step %q, action <%s>, attribute %q: %w",
				step.ID, action.QName(), name, expandErr)
		}
		attrs[name] = expanded
	}

	logger.Debug("Calling action handler.", "action", action.QName(), "attributes", attrs)
	if err := registered.Handler(ctx, rc, attrs); err != nil {
		return fmt.Errorf("action <%s>: %w", action.QName(), err)
	}
	return nil
}
