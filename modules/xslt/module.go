// Package xslt provides the x:transform action, applying an XSLT stylesheet
// to a source document by shelling out to the xsltproc tool.
package xslt

import (
	"context"
	"fmt"

	"github.com/vk/recipego/internal/proc"
	"github.com/vk/recipego/internal/registry"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register registers the transform handler with the engine.
func (m *Module) Register(r *registry.Registry) {
	r.Register("x", "transform", &registry.Action{
		Required: []string{"src", "dest", "stylesheet"},
		Handler:  onTransform,
	})
}

// transformArgs builds the xsltproc argv.
func transformArgs(dest, stylesheet, src string) []string {
	return []string{"-o", dest, stylesheet, src}
}

// onTransform is the handler for x:transform.
func onTransform(ctx context.Context, rc registry.RunContext, attrs registry.Attributes) error {
	args := transformArgs(
		rc.Resolve(attrs.Get("dest")),
		rc.Resolve(attrs.Get("stylesheet")),
		rc.Resolve(attrs.Get("src")),
	)

	code, err := proc.Run(ctx, rc, proc.Options{Executable: "xsltproc", Args: args})
	if err != nil {
		return err
	}
	if code != 0 {
		return fmt.Errorf("xsltproc failed (exit code %d)", code)
	}
	return nil
}
