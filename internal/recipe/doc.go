// Package recipe parses declarative build recipes into an immutable,
// reusable model.
//
// A recipe is an XML document: a <build> root holding one or more <step>
// elements, each holding one or more namespaced action elements whose
// attributes parameterize the action. The parsed model carries raw attribute
// values; ${name} variable expansion is applied per attribute at execution
// time, so the same Recipe can be replayed with different variable contexts.
package recipe
