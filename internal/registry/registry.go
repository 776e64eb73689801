package registry

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/vk/recipego/internal/result"
	"github.com/vk/recipego/internal/vars"
)

// Attributes are the fully expanded attribute values of a single action
// element, keyed by attribute name.
type Attributes map[string]string

// Get returns the attribute value, or the empty string when absent.
func (a Attributes) Get(name string) string {
	return a[name]
}

// Has reports whether the attribute is present, even if empty.
func (a Attributes) Has(name string) bool {
	_, ok := a[name]
	return ok
}

// RunContext is the surface an action handler sees during execution: the
// working directory, the variable context, and the emission sinks for log
// entries, reports and attachments. The executor owns the implementation.
type RunContext interface {
	// Basedir is the build's working directory.
	Basedir() string
	// Resolve joins path elements onto the working directory. Absolute
	// inputs are returned unchanged.
	Resolve(elem ...string) string
	// Vars is the immutable variable context of the run.
	Vars() vars.Context
	// CommandTimeout is the configured limit for a single external
	// process, or zero for no limit.
	CommandTimeout() time.Duration

	Log(level result.Level, message string)
	Logf(level result.Level, format string, args ...any)
	Report(category string, data any)
	// Attach records a file reference on the step, digesting its content.
	Attach(path, description string) error
}

// HandlerFunc executes one action. A non-nil error marks the action, and
// with it the step, as failed; the error text is also recorded as an
// error-level log entry on the step.
type HandlerFunc func(ctx context.Context, rc RunContext, attrs Attributes) error

// Action is a registered action type: its handler plus the attribute names
// the parser must require on every element of this type.
type Action struct {
	Required []string
	Handler  HandlerFunc
}

// QName is the two-part namespace+name identifier of an action type.
type QName struct {
	Namespace string
	Name      string
}

// String renders the identifier in its prefix:name form.
func (q QName) String() string {
	return q.Namespace + ":" + q.Name
}

// Module is the interface built-in and third-party action packages implement
// to contribute handlers to a registry.
type Module interface {
	Register(r *Registry)
}

// Registry maps action identifiers to handlers for a single application
// instance. It is explicit and constructible rather than a package global,
// so the executor can run against a fake registry in tests.
type Registry struct {
	actions map[QName]*Action
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{actions: make(map[QName]*Action)}
}

// Register binds an action identifier to its handler. Registering the same
// identifier twice, or a nil handler, is a programmer error and panics.
func (r *Registry) Register(namespace, name string, action *Action) {
	q := QName{Namespace: namespace, Name: name}
	if action == nil || action.Handler == nil {
		panic(fmt.Sprintf("action %s registered without a handler", q))
	}
	if _, exists := r.actions[q]; exists {
		panic(fmt.Sprintf("action %s already registered", q))
	}
	slog.Debug("Registering action handler.", "action", q.String())
	r.actions[q] = action
}

// Lookup returns the registered action for the identifier, if any.
func (r *Registry) Lookup(namespace, name string) (*Action, bool) {
	a, ok := r.actions[QName{Namespace: namespace, Name: name}]
	return a, ok
}

// Has reports whether the identifier is registered.
func (r *Registry) Has(namespace, name string) bool {
	_, ok := r.Lookup(namespace, name)
	return ok
}

// Len returns the number of registered action types.
func (r *Registry) Len() int {
	return len(r.actions)
}
