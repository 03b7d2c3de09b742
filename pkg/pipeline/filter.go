package pipeline

import "github.com/viewstream/viewstream/internal/utils/path"

// Predicate decides whether an item survives a Filter.
type Predicate func(props Item) bool

// FilterStep forwards Added/Removed at its scope only when the predicate
// holds, and passes everything else through unchanged (spec.md §4.4).
// Stateless by construction — the predicate is assumed deterministic, so
// the Removed decision always agrees with the Added decision for the same
// item (spec.md §8, testable property 5).
type FilterStep struct {
	*bus
	upstream  Step
	scope     path.Path
	predicate Predicate
}

// NewFilter wraps upstream, keeping only items at scope for which
// predicate returns true.
func NewFilter(upstream Step, scope path.Path, predicate Predicate) (*FilterStep, error) {
	if err := validateScope(upstream, scope); err != nil {
		return nil, err
	}
	s := &FilterStep{
		bus:       newBus("filter"),
		upstream:  upstream,
		scope:     scope,
		predicate: predicate,
	}

	upstream.OnAdded(scope, func(kp path.Path, key string, props Item) {
		if s.predicate(props) {
			s.emitAdded(scope, kp, key, props)
		}
	})
	upstream.OnRemoved(scope, func(kp path.Path, key string, props Item) {
		if s.predicate(props) {
			s.emitRemoved(scope, kp, key, props)
		}
	})
	upstream.OnModified(scope, func(kp path.Path, parentKey string, name string, v interface{}) {
		s.emitModified(scope, kp, parentKey, name, v)
	})

	wirePassThrough(upstream, s.bus, at(scope))
	return s, nil
}

// TypeDescriptor is inherited unchanged from upstream.
func (s *FilterStep) TypeDescriptor() TypeDescriptor {
	return s.upstream.TypeDescriptor()
}
