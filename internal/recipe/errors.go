package recipe

import "fmt"

// SyntaxError reports a structurally invalid recipe document. It is fatal to
// the whole build: no step executes when parsing fails.
type SyntaxError struct {
	Line int
	Msg  string
}

// Error implements the error interface.
func (e *SyntaxError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("invalid recipe (line %d): %s", e.Line, e.Msg)
	}
	return fmt.Sprintf("invalid recipe: %s", e.Msg)
}

// UnknownActionError reports an action element whose namespace+name pair has
// no registered handler. Like SyntaxError it aborts before any step runs.
type UnknownActionError struct {
	Namespace string
	Name      string
	Line      int
}

// Error implements the error interface.
func (e *UnknownActionError) Error() string {
	return fmt.Sprintf("unknown recipe action <%s:%s> (line %d)", e.Namespace, e.Name, e.Line)
}
