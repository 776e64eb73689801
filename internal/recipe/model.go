package recipe

// OnError is the per-step failure policy. The zero value means "inherit":
// first from the recipe's build-level setting, then from the executor
// default, which is OnErrorFail.
type OnError string

const (
	OnErrorInherit  OnError = ""
	OnErrorFail     OnError = "fail"
	OnErrorContinue OnError = "continue"
	OnErrorIgnore   OnError = "ignore"
)

// Valid reports whether the value is one of the allowed policy names.
func (o OnError) Valid() bool {
	switch o {
	case OnErrorInherit, OnErrorFail, OnErrorContinue, OnErrorIgnore:
		return true
	}
	return false
}

// Action is a single typed operation within a step, identified by its
// namespace and local name. Attrs holds the raw attribute values exactly as
// written in the document; variable expansion happens at execution time so
// one parsed Recipe can be replayed under different contexts.
type Action struct {
	Namespace string
	Name      string
	Attrs     map[string]string
	Line      int
}

// QName renders the action's identifier in prefix:name form.
func (a *Action) QName() string {
	return a.Namespace + ":" + a.Name
}

// Step is a named unit of the recipe: one or more actions plus a failure
// policy. Steps are immutable after parsing; all runtime state lives in the
// executor's StepResult.
type Step struct {
	ID          string
	Description string
	OnError     OnError
	Actions     []*Action
	Line        int
}

// Recipe is the parsed, immutable build model: an ordered sequence of steps.
// Document order is execution order.
type Recipe struct {
	Description string
	OnError     OnError
	Steps       []*Step
}
