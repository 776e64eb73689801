// Package sh provides the generic shell actions: sh:exec runs an executable
// with tokenized arguments, sh:pipe feeds a file through a shell command
// line.
package sh

import (
	"context"
	"fmt"

	"github.com/vk/recipego/internal/proc"
	"github.com/vk/recipego/internal/registry"
	"github.com/vk/recipego/internal/shellwords"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register registers the sh action handlers with the engine.
func (m *Module) Register(r *registry.Registry) {
	r.Register("sh", "exec", &registry.Action{
		Required: []string{"executable"},
		Handler:  onExec,
	})
	r.Register("sh", "pipe", &registry.Action{
		Required: []string{"command"},
		Handler:  onPipe,
	})
}

// onExec is the handler for sh:exec. Optional attributes: args (tokenized
// with shell-like quoting), dir (relative to the basedir), input (file fed
// to stdin), output (file capturing stdout).
func onExec(ctx context.Context, rc registry.RunContext, attrs registry.Attributes) error {
	args, err := shellwords.Split(attrs.Get("args"))
	if err != nil {
		return err
	}

	opts := proc.Options{
		Executable: attrs.Get("executable"),
		Args:       args,
	}
	if dir := attrs.Get("dir"); dir != "" {
		opts.Dir = rc.Resolve(dir)
	}
	if input := attrs.Get("input"); input != "" {
		opts.InputPath = rc.Resolve(input)
	}
	if output := attrs.Get("output"); output != "" {
		opts.OutputPath = rc.Resolve(output)
	}

	code, err := proc.Run(ctx, rc, opts)
	if err != nil {
		return err
	}
	if code != 0 {
		return fmt.Errorf("executable %q failed (exit code %d)", opts.Executable, code)
	}
	return nil
}

// onPipe is the handler for sh:pipe. The command attribute is passed to the
// system shell verbatim; input and output behave as for sh:exec.
func onPipe(ctx context.Context, rc registry.RunContext, attrs registry.Attributes) error {
	opts := proc.Options{
		Executable: "/bin/sh",
		Args:       []string{"-c", attrs.Get("command")},
	}
	if dir := attrs.Get("dir"); dir != "" {
		opts.Dir = rc.Resolve(dir)
	}
	if input := attrs.Get("input"); input != "" {
		opts.InputPath = rc.Resolve(input)
	}
	if output := attrs.Get("output"); output != "" {
		opts.OutputPath = rc.Resolve(output)
	}

	code, err := proc.Run(ctx, rc, opts)
	if err != nil {
		return err
	}
	if code != 0 {
		return fmt.Errorf("command failed (exit code %d)", code)
	}
	return nil
}
