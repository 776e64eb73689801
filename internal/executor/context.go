package executor

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/vk/recipego/internal/result"
	"github.com/vk/recipego/internal/vars"
)

// actionContext implements registry.RunContext for one step. It funnels
// handler emissions into the step's result in emission order. Handlers that
// spawn external processes capture stdout and stderr concurrently, so the
// sinks are mutex-protected even though step execution itself is
// single-threaded.
type actionContext struct {
	opts Options

	mu   sync.Mutex
	step *result.StepResult
}

func newActionContext(opts Options, step *result.StepResult) *actionContext {
	return &actionContext{opts: opts, step: step}
}

// Basedir implements registry.RunContext.
func (c *actionContext) Basedir() string {
	return c.opts.Basedir
}

// Resolve implements registry.RunContext.
func (c *actionContext) Resolve(elem ...string) string {
	if len(elem) > 0 && filepath.IsAbs(elem[0]) {
		return filepath.Join(elem...)
	}
	return filepath.Join(append([]string{c.opts.Basedir}, elem...)...)
}

// Vars implements registry.RunContext.
func (c *actionContext) Vars() vars.Context {
	return c.opts.Vars
}

// CommandTimeout implements registry.RunContext.
func (c *actionContext) CommandTimeout() time.Duration {
	return c.opts.CommandTimeout
}

// Log implements registry.RunContext.
func (c *actionContext) Log(level result.Level, message string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.step.Log = append(c.step.Log, result.LogEntry{Level: level, Message: message})
}

// Logf implements registry.RunContext.
func (c *actionContext) Logf(level result.Level, format string, args ...any) {
	c.Log(level, fmt.Sprintf(format, args...))
}

// Report implements registry.RunContext.
func (c *actionContext) Report(category string, data any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.step.Reports = append(c.step.Reports, result.Report{Category: category, Data: data})
}

// Attach implements registry.RunContext.
func (c *actionContext) Attach(path, description string) error {
	resolved := c.Resolve(path)
	digest, err := result.FileDigest(resolved)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.step.Attachments = append(c.step.Attachments, result.Attachment{
		Path:        resolved,
		Description: description,
		Digest:      digest,
	})
	return nil
}
