// Package attach provides the attach:file action, recording build artifacts
// as attachments on the step result. The path attribute is a glob pattern
// (doublestar syntax, so ** is supported) resolved against the basedir.
package attach

import (
	"context"
	"fmt"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/vk/recipego/internal/registry"
	"github.com/vk/recipego/internal/result"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register registers the attach handler with the engine.
func (m *Module) Register(r *registry.Registry) {
	r.Register("attach", "file", &registry.Action{
		Required: []string{"path"},
		Handler:  onFile,
	})
}

// onFile is the handler for attach:file. Matching zero files is a failure:
// an attachment the recipe promised but the build never produced should be
// visible, not silently absent.
func onFile(ctx context.Context, rc registry.RunContext, attrs registry.Attributes) error {
	pattern := attrs.Get("path")
	description := attrs.Get("description")

	matches, err := doublestar.FilepathGlob(rc.Resolve(pattern))
	if err != nil {
		return fmt.Errorf("bad attachment pattern %q: %w", pattern, err)
	}
	if len(matches) == 0 {
		return fmt.Errorf("attachment pattern %q matched no files", pattern)
	}

	for _, match := range matches {
		if err := rc.Attach(match, description); err != nil {
			return err
		}
		rc.Logf(result.LevelInfo, "attached %s", match)
	}
	return nil
}
