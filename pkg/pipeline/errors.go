package pipeline

import (
	"github.com/starkandwayne/goutils/ansi"

	"github.com/viewstream/viewstream/internal/utils/path"
)

// Every error in this file is an engine contract violation (spec.md §7),
// never expected in correct use of the builder. They are typed rather than
// opaque so that callers (and tests) can distinguish the kinds by type.
// The construction-time kinds (InvalidArrayNameError,
// UnknownSegmentPathError) are returned by the step constructors. The
// event-time kinds do not abort anything: the step or materializer that
// detects one logs it at DEBUG level and drops that event.

// MismatchedPathLengthError — the materializer received a key path whose
// length does not match the segment path it addresses.
type MismatchedPathLengthError struct {
	Segment path.Path
	Key     path.Path
}

func (e MismatchedPathLengthError) Error() string {
	return ansi.Sprintf("@R{mismatched path length}: segment @c{%s} (depth %d) vs key @c{%s} (depth %d)",
		e.Segment.String(), e.Segment.Depth(), e.Key.String(), e.Key.Depth())
}

// UnknownParentError — an add/remove referenced a parent key not present
// in the materializer's state.
type UnknownParentError struct {
	Segment path.Path
	Key     path.Path
}

func (e UnknownParentError) Error() string {
	return ansi.Sprintf("@R{unknown parent}: no entry for key @c{%s} at @m{%s}", e.Key.String(), e.Segment.String())
}

// UnknownItemError — GroupBy or PickBy couldn't find the item being
// removed in its bookkeeping store.
type UnknownItemError struct {
	Step    string
	ItemKey string
}

func (e UnknownItemError) Error() string {
	return ansi.Sprintf("@R{unknown item}: %s has no record of item key @c{%s}", e.Step, e.ItemKey)
}

// MissingAggregateError — CommutativeAggregate saw a Removed event for a
// parent with no accumulator on file.
type MissingAggregateError struct {
	Parent path.Path
}

func (e MissingAggregateError) Error() string {
	return ansi.Sprintf("@R{missing aggregate}: no accumulator for parent @c{%s}", e.Parent.String())
}

// InvalidArrayNameError — a configured array name contains the reserved
// delimiter (":") used by key-path hashing.
type InvalidArrayNameError struct {
	Name string
}

func (e InvalidArrayNameError) Error() string {
	return ansi.Sprintf("@R{invalid array name} @c{%q}@R{: must not contain ':'}", e.Name)
}

// UnknownSegmentPathError — a step was constructed against a segment path
// that does not exist in its upstream's declared descriptor.
type UnknownSegmentPathError struct {
	Path path.Path
}

func (e UnknownSegmentPathError) Error() string {
	return ansi.Sprintf("@R{unknown segment path} @c{%s}@R{: not present in upstream type descriptor}", e.Path.String())
}

// MultiError collects several errors raised while wiring a pipeline (e.g.
// a builder validating several configured paths at once).
type MultiError struct {
	Errors []error
}

func (e MultiError) Error() string {
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	s := ansi.Sprintf("@R{%d errors detected:}\n", len(e.Errors))
	for _, err := range e.Errors {
		s += ansi.Sprintf(" - %s\n", err)
	}
	return s
}

// Append adds err to the collection, flattening nested MultiErrors. A nil
// err is a no-op.
func (e *MultiError) Append(err error) {
	if err == nil {
		return
	}
	if m, ok := err.(MultiError); ok {
		e.Errors = append(e.Errors, m.Errors...)
		return
	}
	e.Errors = append(e.Errors, err)
}

// Count returns the number of collected errors.
func (e *MultiError) Count() int {
	return len(e.Errors)
}

// OrNil returns nil if e has no errors, else e.
func (e *MultiError) OrNil() error {
	if e.Count() == 0 {
		return nil
	}
	return *e
}
