// Package svn provides the Subversion source-control actions: svn:checkout,
// svn:update and svn:export. All three shell out to the svn client found on
// the PATH.
package svn

import (
	"context"
	"fmt"
	"strings"

	"github.com/vk/recipego/internal/proc"
	"github.com/vk/recipego/internal/registry"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register registers the svn action handlers with the engine.
func (m *Module) Register(r *registry.Registry) {
	r.Register("svn", "checkout", &registry.Action{
		Required: []string{"url", "path", "revision"},
		Handler:  onCheckout,
	})
	r.Register("svn", "update", &registry.Action{
		Handler: onUpdate,
	})
	r.Register("svn", "export", &registry.Action{
		Required: []string{"url", "path", "revision"},
		Handler:  onExport,
	})
}

// repoURL joins the repository URL and the path inside the repository.
func repoURL(url, path string) string {
	if path == "" {
		return url
	}
	return strings.TrimRight(url, "/") + "/" + strings.TrimLeft(path, "/")
}

// checkoutArgs builds the argv for a checkout or export into the current
// working directory.
func checkoutArgs(subcommand, url, path, revision string) []string {
	args := []string{subcommand}
	if revision != "" {
		args = append(args, "-r", revision)
	}
	args = append(args, repoURL(url, path), ".")
	return args
}

// updateArgs builds the argv for updating the working copy.
func updateArgs(revision string) []string {
	args := []string{"update"}
	if revision != "" {
		args = append(args, "-r", revision)
	}
	return args
}

func runSvn(ctx context.Context, rc registry.RunContext, args []string) error {
	code, err := proc.Run(ctx, rc, proc.Options{Executable: "svn", Args: args})
	if err != nil {
		return err
	}
	if code != 0 {
		return fmt.Errorf("svn %s failed (exit code %d)", args[0], code)
	}
	return nil
}

// onCheckout is the handler for svn:checkout.
func onCheckout(ctx context.Context, rc registry.RunContext, attrs registry.Attributes) error {
	return runSvn(ctx, rc, checkoutArgs("checkout",
		attrs.Get("url"), attrs.Get("path"), attrs.Get("revision")))
}

// onExport is the handler for svn:export.
func onExport(ctx context.Context, rc registry.RunContext, attrs registry.Attributes) error {
	return runSvn(ctx, rc, checkoutArgs("export",
		attrs.Get("url"), attrs.Get("path"), attrs.Get("revision")))
}

// onUpdate is the handler for svn:update. The revision attribute is
// optional; without it the working copy moves to HEAD.
func onUpdate(ctx context.Context, rc registry.RunContext, attrs registry.Attributes) error {
	return runSvn(ctx, rc, updateArgs(attrs.Get("revision")))
}
