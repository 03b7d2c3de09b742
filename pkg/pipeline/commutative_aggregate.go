package pipeline

import (
	"github.com/viewstream/viewstream/internal/utils/path"
	"github.com/viewstream/viewstream/log"
)

// Combine folds one item's value into a running accumulator. Combine must
// be commutative and invertible via Uncombine — the engine never replays
// history to recompute an aggregate, it only ever applies one item's
// effect or undoes it (spec.md §4.7).
type Combine func(acc interface{}, value interface{}) interface{}

// Uncombine reverses the effect Combine had when value was folded in.
// Combine(Uncombine(acc, value), value) must equal acc for every acc this
// engine ever produces — sum/uncombine-by-subtraction is the canonical
// example, and Count is the same shape; Min/Max/PickBy need their own
// richer accumulators (see minmax_average.go and pickby.go).
type Uncombine func(acc interface{}, value interface{}) interface{}

// Extract projects an accumulator down to the value published as the
// aggregate property. For plain sums/counts this is the identity.
type Extract func(acc interface{}) interface{}

// CommutativeAggregateStep computes one aggregate property over a nested
// keyed array and publishes it as a Modified on the parent item (spec.md
// §4.7). It does not change the descriptor: the target array keeps
// flowing through unmodified, and the aggregate shows up only as an extra
// property value on the parent.
type CommutativeAggregateStep struct {
	*bus
	upstream     Step
	target       path.Path // t — the array being aggregated
	parent       path.Path // t[:-1]
	propertyName string
	seed         interface{}
	combine      Combine
	uncombine    Uncombine
	extract      Extract

	// acc holds one running accumulator per parent instance, keyed by the
	// parent's key path (parentKeyPath.Join("::")), per spec.md §4.7's
	// "exactly one accumulator per live parent" invariant.
	acc map[string]interface{}
	// count tracks the number of live items per parent, so unfold knows
	// when the last one has just been removed (spec.md §4.6 step 3):
	// aggregate[parent] and count[parent] are deleted together, and no
	// final Modified is emitted, since the parent itself is about to be
	// removed by the upstream GroupBy.
	count map[string]int
	// values remembers each item's contributed value so Removed can
	// Uncombine it without recomputing from the raw item. A Modified on an
	// item of the target array is forwarded unchanged and does not alter
	// the value recorded here.
	values map[string]interface{}
}

// NewCommutativeAggregate wraps upstream, aggregating propertyName from
// each item in the array named by the last segment of target, publishing
// the result as a Modified of the same name on the parent item.
func NewCommutativeAggregate(upstream Step, target path.Path, propertyName string, seed interface{}, combine Combine, uncombine Uncombine) (*CommutativeAggregateStep, error) {
	return newCommutativeAggregate(upstream, target, propertyName, seed, combine, uncombine, identityExtract)
}

func identityExtract(acc interface{}) interface{} { return acc }

func newCommutativeAggregate(upstream Step, target path.Path, propertyName string, seed interface{}, combine Combine, uncombine Uncombine, extract Extract) (*CommutativeAggregateStep, error) {
	if err := validateScope(upstream, target); err != nil {
		return nil, err
	}
	parent, _ := target.Pop()

	s := &CommutativeAggregateStep{
		bus:          newBus("commutativeAggregate(" + propertyName + ")"),
		upstream:     upstream,
		target:       target,
		parent:       parent,
		propertyName: propertyName,
		seed:         seed,
		combine:      combine,
		uncombine:    uncombine,
		extract:      extract,
		acc:          map[string]interface{}{},
		count:        map[string]int{},
		values:       map[string]interface{}{},
	}

	upstream.OnAdded(target, func(kp path.Path, key string, props Item) {
		s.fold(kp, key, props)
		s.emitAdded(target, kp, key, props)
	})
	upstream.OnRemoved(target, func(kp path.Path, key string, props Item) {
		s.unfold(kp, key)
		s.emitRemoved(target, kp, key, props)
	})
	upstream.OnModified(target, func(kp path.Path, parentKey string, name string, v interface{}) {
		s.emitModified(target, kp, parentKey, name, v)
	})

	upstream.OnAdded(parent, func(kp path.Path, key string, props Item) {
		s.emitAdded(parent, kp, key, props)
	})
	upstream.OnRemoved(parent, func(kp path.Path, key string, props Item) {
		s.emitRemoved(parent, kp, key, props)
	})
	upstream.OnModified(parent, func(kp path.Path, parentKey string, name string, v interface{}) {
		s.emitModified(parent, kp, parentKey, name, v)
	})

	wirePassThrough(upstream, s.bus, anyOf(at(target), at(parent)))
	return s, nil
}

func (s *CommutativeAggregateStep) valueKey(parentKeyPath path.Path, itemKey string) string {
	return parentKeyPath.Join("::") + "/" + itemKey
}

func (s *CommutativeAggregateStep) fold(parentKeyPath path.Path, itemKey string, props Item) {
	v := props[s.propertyName]
	parentKey := parentKeyPath.Join("::")

	acc, ok := s.acc[parentKey]
	if !ok {
		acc = s.seed
	}
	acc = s.combine(acc, v)
	s.acc[parentKey] = acc
	s.count[parentKey]++
	s.values[s.valueKey(parentKeyPath, itemKey)] = v

	grandparent, parentItemKey := parentKeyPath.Pop()
	s.emitModified(s.parent, grandparent, parentItemKey, s.propertyName, s.extract(acc))
	log.TRACE("commutativeAggregate(%s): folded key=%s into parent=%s, now %v", s.propertyName, itemKey, parentKey, acc)
}

func (s *CommutativeAggregateStep) unfold(parentKeyPath path.Path, itemKey string) {
	parentKey := parentKeyPath.Join("::")
	vk := s.valueKey(parentKeyPath, itemKey)

	v, ok := s.values[vk]
	if !ok {
		log.DEBUG("commutativeAggregate(%s): %s", s.propertyName, UnknownItemError{Step: "CommutativeAggregate", ItemKey: itemKey})
		return
	}
	delete(s.values, vk)

	acc, ok := s.acc[parentKey]
	if !ok {
		log.DEBUG("commutativeAggregate(%s): %s", s.propertyName, MissingAggregateError{Parent: parentKeyPath})
		return
	}
	acc = s.uncombine(acc, v)

	s.count[parentKey]--
	if s.count[parentKey] <= 0 {
		// Last item for this parent just left: spec.md §4.6 step 3 says
		// to drop both entries and emit no final Modified, since the
		// parent itself is about to be removed by the upstream GroupBy.
		delete(s.acc, parentKey)
		delete(s.count, parentKey)
		return
	}

	s.acc[parentKey] = acc
	grandparent, parentItemKey := parentKeyPath.Pop()
	s.emitModified(s.parent, grandparent, parentItemKey, s.propertyName, s.extract(acc))
}

// TypeDescriptor is inherited unchanged: an aggregate is a derived
// Modified value, never a nested-array change (spec.md §4.7).
func (s *CommutativeAggregateStep) TypeDescriptor() TypeDescriptor {
	return s.upstream.TypeDescriptor()
}

// Sum is the canonical CommutativeAggregate: seed 0, fold by addition,
// unfold by subtraction (spec.md §4.7's worked example).
func Sum(upstream Step, target path.Path, propertyName string) (*CommutativeAggregateStep, error) {
	return NewCommutativeAggregate(upstream, target, propertyName, 0.0,
		func(acc, v interface{}) interface{} { return toFloat(acc) + toFloat(v) },
		func(acc, v interface{}) interface{} { return toFloat(acc) - toFloat(v) },
	)
}

// Count aggregates the number of live items, ignoring propertyName's
// value entirely.
func Count(upstream Step, target path.Path, propertyName string) (*CommutativeAggregateStep, error) {
	return NewCommutativeAggregate(upstream, target, propertyName, 0.0,
		func(acc, v interface{}) interface{} { return toFloat(acc) + 1 },
		func(acc, v interface{}) interface{} { return toFloat(acc) - 1 },
	)
}

func toFloat(v interface{}) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	case int64:
		return float64(n)
	default:
		return 0
	}
}
