// Package make provides the c:make action for GNU-make based builds.
package make

import (
	"context"
	"fmt"

	"github.com/vk/recipego/internal/proc"
	"github.com/vk/recipego/internal/registry"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register registers the make action handler with the engine.
func (m *Module) Register(r *registry.Registry) {
	r.Register("c", "make", &registry.Action{
		Handler: onMake,
	})
}

// makeArgs builds the argv from the action's attributes: target, file
// (alternative makefile), jobs and keep-going.
func makeArgs(attrs registry.Attributes) []string {
	var args []string
	if file := attrs.Get("file"); file != "" {
		args = append(args, "-f", file)
	}
	if jobs := attrs.Get("jobs"); jobs != "" {
		args = append(args, "-j", jobs)
	}
	if attrs.Get("keep-going") == "true" {
		args = append(args, "-k")
	}
	if target := attrs.Get("target"); target != "" {
		args = append(args, target)
	}
	return args
}

// onMake is the handler for c:make. All attributes are optional; without
// them the default makefile's default target is built.
func onMake(ctx context.Context, rc registry.RunContext, attrs registry.Attributes) error {
	opts := proc.Options{Executable: "make", Args: makeArgs(attrs)}
	if dir := attrs.Get("dir"); dir != "" {
		opts.Dir = rc.Resolve(dir)
	}

	code, err := proc.Run(ctx, rc, opts)
	if err != nil {
		return err
	}
	if code != 0 {
		return fmt.Errorf("make failed (exit code %d)", code)
	}
	return nil
}
