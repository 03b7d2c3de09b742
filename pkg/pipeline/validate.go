package pipeline

import "github.com/viewstream/viewstream/internal/utils/path"

// validateScope fails construction fast, per the design notes' resolution
// of the compile-time-path-types Open Question (spec.md §9): rather than
// a language-level type system navigating the schema, a runtime check
// against the descriptor built so far, at the moment a step is wired in.
func validateScope(upstream Step, scope path.Path) error {
	if _, ok := upstream.TypeDescriptor().At(scope); !ok {
		return UnknownSegmentPathError{Path: scope}
	}
	return nil
}

// validateArrayName enforces the reserved-delimiter rule (spec.md §6).
func validateArrayName(name string) error {
	for i := 0; i < len(name); i++ {
		if name[i] == ':' {
			return InvalidArrayNameError{Name: name}
		}
	}
	return nil
}
