package pipeline

import (
	"github.com/viewstream/viewstream/internal/utils/path"
	"github.com/viewstream/viewstream/log"
)

// pickByStep publishes the whole item (not just one property) that holds
// the extreme value of a chosen property, for every live parent — spec.md
// §4.7's PickByMin/PickByMax. The resolved Open Question (spec.md §9) on
// winner identity: ties are broken by retaining whichever item became the
// winner first, and a later item is only promoted to winner by a strict
// improvement, never by Item.Equal — two items can be property-for-property
// identical and still be distinct items, so winner identity is tracked by
// item key, never by value equality.
type pickByStep struct {
	*bus
	upstream     Step
	target       path.Path
	parent       path.Path
	propertyName string
	outputName   string
	mode         minMaxMode

	// items holds every live item's full props per parent, so the winner
	// can be recomputed by scanning after any add/remove. Each entry also
	// carries its arrival order so ties break toward whichever item
	// became a contender first, independent of Go's randomized map
	// iteration order.
	items map[string]map[string]pickByEntry
	// seq is a per-parent monotonic counter handing out arrival order.
	seq map[string]int
}

type pickByEntry struct {
	props Item
	order int
}

// NewPickByMin publishes, under outputName, the full item holding the
// smallest value of propertyName among the live items of target's array.
func NewPickByMin(upstream Step, target path.Path, propertyName string, outputName string) (Step, error) {
	return newPickBy(upstream, target, propertyName, outputName, modeMin)
}

// NewPickByMax is NewPickByMin's dual.
func NewPickByMax(upstream Step, target path.Path, propertyName string, outputName string) (Step, error) {
	return newPickBy(upstream, target, propertyName, outputName, modeMax)
}

func newPickBy(upstream Step, target path.Path, propertyName string, outputName string, mode minMaxMode) (Step, error) {
	if err := validateScope(upstream, target); err != nil {
		return nil, err
	}
	parent, _ := target.Pop()

	s := &pickByStep{
		bus:          newBus("pickBy(" + propertyName + ")"),
		upstream:     upstream,
		target:       target,
		parent:       parent,
		propertyName: propertyName,
		outputName:   outputName,
		mode:         mode,
		items:        map[string]map[string]pickByEntry{},
		seq:          map[string]int{},
	}

	upstream.OnAdded(target, func(kp path.Path, key string, props Item) {
		s.put(kp, key, props)
		s.emitAdded(target, kp, key, props)
	})
	upstream.OnRemoved(target, func(kp path.Path, key string, props Item) {
		s.drop(kp, key)
		s.emitRemoved(target, kp, key, props)
	})
	upstream.OnModified(target, func(kp path.Path, parentKey string, name string, v interface{}) {
		s.updateProperty(kp, parentKey, name, v)
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

func (s *pickByStep) parentKey(p path.Path) string { return p.Join("::") }

func (s *pickByStep) put(parentKeyPath path.Path, itemKey string, props Item) {
	pk := s.parentKey(parentKeyPath)
	if s.items[pk] == nil {
		s.items[pk] = map[string]pickByEntry{}
	}
	s.seq[pk]++
	s.items[pk][itemKey] = pickByEntry{props: props, order: s.seq[pk]}
	s.publish(parentKeyPath)
}

func (s *pickByStep) drop(parentKeyPath path.Path, itemKey string) {
	pk := s.parentKey(parentKeyPath)
	m := s.items[pk]
	if _, ok := m[itemKey]; !ok {
		log.DEBUG("pickBy(%s): %s", s.propertyName, UnknownItemError{Step: "PickBy", ItemKey: itemKey})
		return
	}
	delete(m, itemKey)
	if len(m) == 0 {
		delete(s.items, pk)
	}
	s.publish(parentKeyPath)
}

func (s *pickByStep) updateProperty(parentKeyPath path.Path, itemKey string, name string, v interface{}) {
	pk := s.parentKey(parentKeyPath)
	m := s.items[pk]
	if m == nil {
		return
	}
	if e, ok := m[itemKey]; ok {
		m[itemKey] = pickByEntry{props: e.props.With(name, v), order: e.order}
		s.publish(parentKeyPath)
	}
}

func (s *pickByStep) publish(parentKeyPath path.Path) {
	pk := s.parentKey(parentKeyPath)
	grandparent, parentItemKey := parentKeyPath.Pop()

	var winner Item
	var winnerVal float64
	var winnerOrder int
	found := false
	for _, e := range s.items[pk] {
		v, ok := numeric(e.props[s.propertyName])
		if !ok {
			continue
		}
		better := !found
		if found {
			switch {
			case s.mode == modeMin && v < winnerVal, s.mode == modeMax && v > winnerVal:
				better = true
			case v == winnerVal && e.order < winnerOrder:
				better = true
			}
		}
		if better {
			winner, winnerVal, winnerOrder, found = e.props, v, e.order, true
		}
	}

	var result interface{}
	if found {
		result = winner
	}
	s.emitModified(s.parent, grandparent, parentItemKey, s.outputName, result)
}

func (s *pickByStep) TypeDescriptor() TypeDescriptor {
	return s.upstream.TypeDescriptor()
}
