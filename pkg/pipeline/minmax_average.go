package pipeline

import (
	"github.com/viewstream/viewstream/internal/utils/path"
	"github.com/viewstream/viewstream/log"
)

// minMaxAverageStep is the shared engine behind Min, Max and Average
// (spec.md §4.7's "skip null/undefined" variants). Unlike plain Sum/Count,
// these cannot be folded with a simple invertible Combine: removing the
// current minimum requires knowing the full multiset of surviving values,
// not just the old accumulator and the departing value. So each parent
// keeps a live multiset (value -> how many surviving items hold it) and
// the published result is recomputed from that multiset on every change.
type minMaxAverageStep struct {
	*bus
	upstream     Step
	target       path.Path
	parent       path.Path
	propertyName string
	mode         minMaxMode

	// counts holds, per parent key, a multiset of the non-null numeric
	// values currently contributed by its live items.
	counts map[string]map[float64]int
	// sums/n back the Average mode, where the published value is a ratio
	// rather than an extremum of the multiset.
	sums map[string]float64
	n    map[string]int
	// values remembers each item's raw contribution so Removed can undo
	// it without re-reading the (possibly already-gone) item.
	values map[string]interface{}
}

type minMaxMode int

const (
	modeMin minMaxMode = iota
	modeMax
	modeAverage
)

// NewMin publishes the smallest non-null numeric value of propertyName
// across the live items of the array named by target's last segment, or
// nil if none are live.
func NewMin(upstream Step, target path.Path, propertyName string) (Step, error) {
	return newMinMaxAverage(upstream, target, propertyName, modeMin)
}

// NewMax is NewMin's dual.
func NewMax(upstream Step, target path.Path, propertyName string) (Step, error) {
	return newMinMaxAverage(upstream, target, propertyName, modeMax)
}

// NewAverage publishes the mean of the non-null numeric values of
// propertyName, or nil if none are live.
func NewAverage(upstream Step, target path.Path, propertyName string) (Step, error) {
	return newMinMaxAverage(upstream, target, propertyName, modeAverage)
}

func newMinMaxAverage(upstream Step, target path.Path, propertyName string, mode minMaxMode) (Step, error) {
	if err := validateScope(upstream, target); err != nil {
		return nil, err
	}
	parent, _ := target.Pop()

	s := &minMaxAverageStep{
		bus:          newBus("minMaxAverage(" + propertyName + ")"),
		upstream:     upstream,
		target:       target,
		parent:       parent,
		propertyName: propertyName,
		mode:         mode,
		counts:       map[string]map[float64]int{},
		sums:         map[string]float64{},
		n:            map[string]int{},
		values:       map[string]interface{}{},
	}

	upstream.OnAdded(target, func(kp path.Path, key string, props Item) {
		s.add(kp, key, props[propertyName])
		s.emitAdded(target, kp, key, props)
	})
	upstream.OnRemoved(target, func(kp path.Path, key string, props Item) {
		s.remove(kp, key)
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

func (s *minMaxAverageStep) itemKey(parentKeyPath path.Path, itemKey string) string {
	return parentKeyPath.Join("::") + "/" + itemKey
}

func (s *minMaxAverageStep) add(parentKeyPath path.Path, itemKey string, raw interface{}) {
	parentKey := parentKeyPath.Join("::")
	s.values[s.itemKey(parentKeyPath, itemKey)] = raw

	v, ok := numeric(raw)
	if ok {
		if s.counts[parentKey] == nil {
			s.counts[parentKey] = map[float64]int{}
		}
		s.counts[parentKey][v]++
		s.sums[parentKey] += v
		s.n[parentKey]++
	}

	s.publish(parentKeyPath)
}

func (s *minMaxAverageStep) remove(parentKeyPath path.Path, itemKey string) {
	vk := s.itemKey(parentKeyPath, itemKey)
	raw, ok := s.values[vk]
	if !ok {
		log.DEBUG("minMaxAverage(%s): %s", s.propertyName, UnknownItemError{Step: "MinMaxAverage", ItemKey: itemKey})
		return
	}
	delete(s.values, vk)

	parentKey := parentKeyPath.Join("::")
	if v, ok := numeric(raw); ok {
		if m := s.counts[parentKey]; m != nil {
			m[v]--
			if m[v] <= 0 {
				delete(m, v)
			}
			if len(m) == 0 {
				delete(s.counts, parentKey)
			}
		}
		s.sums[parentKey] -= v
		s.n[parentKey]--
		if s.n[parentKey] <= 0 {
			delete(s.sums, parentKey)
			delete(s.n, parentKey)
		}
	}

	s.publish(parentKeyPath)
}

func (s *minMaxAverageStep) publish(parentKeyPath path.Path) {
	parentKey := parentKeyPath.Join("::")
	grandparent, parentItemKey := parentKeyPath.Pop()

	var result interface{}
	switch s.mode {
	case modeMin, modeMax:
		m := s.counts[parentKey]
		if len(m) > 0 {
			var best float64
			first := true
			for v := range m {
				if first || (s.mode == modeMin && v < best) || (s.mode == modeMax && v > best) {
					best, first = v, false
				}
			}
			result = best
		}
	case modeAverage:
		if n := s.n[parentKey]; n > 0 {
			result = s.sums[parentKey] / float64(n)
		}
	}

	s.emitModified(s.parent, grandparent, parentItemKey, s.propertyName, result)
}

func (s *minMaxAverageStep) TypeDescriptor() TypeDescriptor {
	return s.upstream.TypeDescriptor()
}

// numeric converts a property value to float64, reporting false for nil
// and non-numeric values — both are "skip" cases per spec.md §4.7.
func numeric(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}
