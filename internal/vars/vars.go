// Package vars defines the variable context a build executes under, and the
// `${name}` expansion applied to recipe attribute values.
package vars

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// Canonical lists the variable names every build context is expected to
// carry. Callers may add any number of custom entries on top.
var Canonical = []string{
	"path", "config", "build", "revision",
	"reponame", "repopath", "platform", "name", "basedir",
}

// Context maps variable names to string values. It is populated before
// execution starts and treated as immutable for the duration of a run.
type Context map[string]string

// New returns a context with every canonical key present but empty.
func New() Context {
	c := make(Context, len(Canonical))
	for _, name := range Canonical {
		c[name] = ""
	}
	return c
}

// Clone returns an independent copy of the context.
func (c Context) Clone() Context {
	out := make(Context, len(c))
	for k, v := range c {
		out[k] = v
	}
	return out
}

// Merge copies every entry of other into the context, overwriting existing
// values. It returns the receiver for chaining.
func (c Context) Merge(other Context) Context {
	for k, v := range other {
		c[k] = v
	}
	return c
}

// Names returns the defined variable names in sorted order.
func (c Context) Names() []string {
	names := make([]string, 0, len(c))
	for k := range c {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// FromFile loads a flat YAML mapping of variable names to string values.
func FromFile(path string) (Context, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading variables file: %w", err)
	}
	var raw map[string]string
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing variables file %s: %w", path, err)
	}
	return Context(raw), nil
}
