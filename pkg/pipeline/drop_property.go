package pipeline

import "github.com/viewstream/viewstream/internal/utils/path"

// DropPropertyStep strips a named key from items emitted at its scope
// path (spec.md §4.3). The Open Question in spec.md §9 notes that the
// source conflates DropProperty and DropArray when the dropped name
// happens to be an array; NewDropProperty resolves it by delegating to
// DropArray semantics whenever propertyName names an array of the
// upstream descriptor at scope — the nested-array invariants (descriptor
// shrinks, events below are suppressed) only make sense under that step.
type DropPropertyStep struct {
	*bus
	upstream     Step
	scope        path.Path
	propertyName string
}

// NewDropProperty wraps upstream, dropping propertyName from items added
// at scope. If propertyName names a nested array at scope, this
// constructs a DropArrayStep instead and returns it as a Step.
func NewDropProperty(upstream Step, scope path.Path, propertyName string) (Step, error) {
	if err := validateScope(upstream, scope); err != nil {
		return nil, err
	}
	scopeType, _ := upstream.TypeDescriptor().At(scope)
	if _, isArray := scopeType.Array(propertyName); isArray {
		return NewDropArray(upstream, scope.Push(propertyName))
	}

	s := &DropPropertyStep{
		bus:          newBus("dropProperty(" + propertyName + ")"),
		upstream:     upstream,
		scope:        scope,
		propertyName: propertyName,
	}

	upstream.OnAdded(scope, func(kp path.Path, key string, props Item) {
		s.emitAdded(scope, kp, key, props.Without(s.propertyName))
	})
	upstream.OnRemoved(scope, func(kp path.Path, key string, props Item) {
		s.emitRemoved(scope, kp, key, props)
	})
	upstream.OnModified(scope, func(kp path.Path, parentKey string, name string, v interface{}) {
		s.emitModified(scope, kp, parentKey, name, v)
	})

	wirePassThrough(upstream, s.bus, at(scope))
	return s, nil
}

// TypeDescriptor is inherited unchanged from upstream: dropping a scalar
// property is not a nested-array change.
func (s *DropPropertyStep) TypeDescriptor() TypeDescriptor {
	return s.upstream.TypeDescriptor()
}
