package vars

import (
	"fmt"
	"regexp"
	"strings"
)

// UndefinedVariableError is returned when an attribute references a variable
// that is not defined in the context. Expansion never substitutes an empty
// string silently; that would mask recipe authoring mistakes.
type UndefinedVariableError struct {
	Name string
}

// Error implements the error interface.
func (e *UndefinedVariableError) Error() string {
	return fmt.Sprintf("undefined variable ${%s}", e.Name)
}

// placeholderRe matches ${identifier} references. Identifiers start with a
// letter or underscore and may contain dots, matching the property naming the
// original recipes use.
var placeholderRe = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_.-]*)\}`)

// Expand substitutes every ${name} occurrence in value with its context
// entry. Substitution is a single pass: expanded output is never re-scanned,
// so variable values cannot inject further references.
func Expand(value string, ctx Context) (string, error) {
	matches := placeholderRe.FindAllStringSubmatchIndex(value, -1)
	if len(matches) == 0 {
		return value, nil
	}

	var out strings.Builder
	last := 0
	for _, m := range matches {
		name := value[m[2]:m[3]]
		resolved, ok := ctx[name]
		if !ok {
			return "", &UndefinedVariableError{Name: name}
		}
		out.WriteString(value[last:m[0]])
		out.WriteString(resolved)
		last = m[1]
	}
	out.WriteString(value[last:])
	return out.String(), nil
}
