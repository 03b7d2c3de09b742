package pipeline

import (
	"github.com/viewstream/viewstream/internal/utils/path"
	"github.com/viewstream/viewstream/log"
)

// ComputeFunc derives a new property's value from an item's current
// properties. See also Expr for a govaluate-expression-backed variant.
type ComputeFunc func(props Item) interface{}

// DefinePropertyStep adds a computed property to every item at its scope
// path (spec.md §4.2). It never changes the type descriptor — from the
// engine's point of view this is a structural-type addition the caller
// observes, not a nested-array change.
type DefinePropertyStep struct {
	*bus
	upstream     Step
	scope        path.Path
	propertyName string
	compute      ComputeFunc
}

// NewDefineProperty wraps upstream, computing propertyName via compute
// for every item added at scope.
func NewDefineProperty(upstream Step, scope path.Path, propertyName string, compute ComputeFunc) (*DefinePropertyStep, error) {
	if err := validateScope(upstream, scope); err != nil {
		return nil, err
	}
	s := &DefinePropertyStep{
		bus:          newBus("defineProperty(" + propertyName + ")"),
		upstream:     upstream,
		scope:        scope,
		propertyName: propertyName,
		compute:      compute,
	}

	upstream.OnAdded(scope, func(kp path.Path, key string, props Item) {
		v := s.compute(props)
		log.TRACE("defineProperty: computed %s=%v for key=%s", s.propertyName, v, key)
		s.emitAdded(scope, kp, key, props.With(s.propertyName, v))
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

// TypeDescriptor is inherited unchanged from upstream.
func (s *DefinePropertyStep) TypeDescriptor() TypeDescriptor {
	return s.upstream.TypeDescriptor()
}
