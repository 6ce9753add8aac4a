package prompt

import (
	"fmt"
	"regexp"
	"strings"
)

// placeholder matches ${name}.
var placeholder = regexp.MustCompile(`\$\{([a-zA-Z_][a-zA-Z0-9_]*)\}`)

// MissingAction specifies how to handle missing variables.
type MissingAction int

const (
	// MissingError returns an error when a variable is not found.
	// This is the default: a prompt with a hole in it is a bug.
	MissingError MissingAction = iota

	// MissingKeep keeps the placeholder as-is.
	MissingKeep

	// MissingEmpty replaces the placeholder with an empty string.
	MissingEmpty
)

// Expander fills ${var} placeholders in prompt templates.
//
// Expansion is a single pass: values that themselves contain ${...} are
// inserted verbatim, so learner text embedded in a prompt is never
// re-interpreted. Expander is safe for concurrent use.
type Expander struct {
	missingAction MissingAction
}

// ExpanderOption configures an Expander.
type ExpanderOption func(*Expander)

// WithMissingAction sets how missing variables are handled.
func WithMissingAction(action MissingAction) ExpanderOption {
	return func(e *Expander) { e.missingAction = action }
}

// NewExpander creates an Expander.
func NewExpander(opts ...ExpanderOption) *Expander {
	e := &Expander{missingAction: MissingError}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Expand substitutes vars into tmpl.
func (e *Expander) Expand(tmpl string, vars map[string]string) (string, error) {
	var missing []string
	out := placeholder.ReplaceAllStringFunc(tmpl, func(match string) string {
		name := match[2 : len(match)-1]
		if val, ok := vars[name]; ok {
			return val
		}
		switch e.missingAction {
		case MissingEmpty:
			return ""
		case MissingError:
			missing = append(missing, name)
		}
		return match
	})
	if len(missing) > 0 {
		return out, &UndefinedVariableError{Names: missing}
	}
	return out, nil
}

// MustExpand is Expand for templates known to be complete. It panics on error.
func (e *Expander) MustExpand(tmpl string, vars map[string]string) string {
	out, err := e.Expand(tmpl, vars)
	if err != nil {
		panic(fmt.Sprintf("prompt: %v", err))
	}
	return out
}

// Variables lists the distinct placeholder names in tmpl, in order of
// first appearance.
func Variables(tmpl string) []string {
	var names []string
	seen := map[string]bool{}
	for _, m := range placeholder.FindAllStringSubmatch(tmpl, -1) {
		if !seen[m[1]] {
			seen[m[1]] = true
			names = append(names, m[1])
		}
	}
	return names
}

// UndefinedVariableError is returned when MissingError is set and
// one or more variables are not found.
type UndefinedVariableError struct {
	Names []string
}

func (e *UndefinedVariableError) Error() string {
	if len(e.Names) == 1 {
		return fmt.Sprintf("undefined variable: %s", e.Names[0])
	}
	return fmt.Sprintf("undefined variables: %s", strings.Join(e.Names, ", "))
}
