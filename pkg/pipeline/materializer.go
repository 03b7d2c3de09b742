package pipeline

import (
	"github.com/viewstream/viewstream/internal/utils/path"
	"github.com/viewstream/viewstream/log"
)

// Sink is notified after every change the Materializer applies to its
// state, with the new top-level keyed array. It is the hook the CLI demo
// driver (cmd/viewstream) uses to diff successive states with dyff.
type Sink func(root KeyedArray)

// Materializer subscribes to every segment path a Step declares and
// reconstructs the corresponding nested KeyedArray tree (spec.md §3's
// "materialized state" — the concrete shape a consumer of the view
// actually sees, as opposed to the stream of events a Step emits).
//
// The descent it performs at every event mirrors graft's Cursor.Canonical
// (internal/utils/tree/resolver.go): walk down a chain of (select an
// entry by key, descend into one of its named nested arrays) hops. The
// difference is direction — Canonical reads a value out of a tree built
// elsewhere, while Materializer rebuilds that tree, copy-on-write, one
// hop at a time, on every Added/Removed/Modified it receives.
type Materializer struct {
	root KeyedArray
	sink Sink
}

// NewMaterializer builds a Materializer subscribed to every path step
// declares. sink may be nil.
func NewMaterializer(step Step, sink Sink) *Materializer {
	m := &Materializer{sink: sink}

	for _, p := range step.TypeDescriptor().Paths() {
		p := p
		step.OnAdded(p, func(kp path.Path, key string, props Item) {
			m.applyAdded(p, kp, key, props)
		})
		step.OnRemoved(p, func(kp path.Path, key string, props Item) {
			m.applyRemoved(p, kp, key)
		})
		step.OnModified(p, func(kp path.Path, parentKey string, name string, v interface{}) {
			m.applyModified(p, kp, parentKey, name, v)
		})
	}
	return m
}

// State returns the current materialized top-level keyed array. The
// returned value is safe to hold onto — every mutation produces a new
// KeyedArray rather than touching the one previously returned.
func (m *Materializer) State() KeyedArray {
	return m.root
}

func (m *Materializer) applyAdded(p path.Path, keyPath path.Path, key string, props Item) {
	if p.Empty() {
		m.root = m.root.Added(key, props)
		m.publish()
		return
	}
	arrayName := p.Last()
	root, err := apply(m.root, p.Nodes, keyPath.Nodes, 0, func(container Item) Item {
		arr, _ := container[arrayName].(KeyedArray)
		return container.With(arrayName, arr.Added(key, props))
	})
	if err != nil {
		log.DEBUG("materializer: %s", err)
		return
	}
	m.root = root
	m.publish()
}

func (m *Materializer) applyRemoved(p path.Path, keyPath path.Path, key string) {
	if p.Empty() {
		m.root = m.root.Removed(key)
		m.publish()
		return
	}
	arrayName := p.Last()
	root, err := apply(m.root, p.Nodes, keyPath.Nodes, 0, func(container Item) Item {
		arr, _ := container[arrayName].(KeyedArray)
		return container.With(arrayName, arr.Removed(key))
	})
	if err != nil {
		log.DEBUG("materializer: %s", err)
		return
	}
	m.root = root
	m.publish()
}

func (m *Materializer) applyModified(p path.Path, keyPath path.Path, parentKey string, propertyName string, value interface{}) {
	if p.Empty() {
		m.root = m.root.Modified(parentKey, propertyName, value)
		m.publish()
		return
	}
	root, err := apply(m.root, p.Nodes, keyPath.Push(parentKey).Nodes, 0, func(container Item) Item {
		return container.With(propertyName, value)
	})
	if err != nil {
		log.DEBUG("materializer: %s", err)
		return
	}
	m.root = root
	m.publish()
}

func (m *Materializer) publish() {
	if m.sink != nil {
		m.sink(m.root)
	}
}

// apply walks down keys[0:len(keys)-1], selecting an entry at each level
// and descending into its nested array named by the matching entry of
// names, then applies leafOp to the entry selected by the final key,
// threading the rebuilt subtree back up to the top. keys is non-empty and
// either as long as names (add/remove: the final key selects the entry
// holding the array being changed) or one longer (modify: the final key
// selects the modified entry itself).
func apply(node KeyedArray, names []string, keys []string, depth int, leafOp func(Item) Item) (KeyedArray, error) {
	key := keys[depth]
	entry, ok := node.Get(key)
	if !ok {
		return node, UnknownParentError{
			Segment: path.New(names[:depth+1]...),
			Key:     path.New(keys[:depth+1]...),
		}
	}

	if depth == len(keys)-1 {
		return node.Set(key, leafOp(entry)), nil
	}

	arrName := names[depth]
	child, _ := entry[arrName].(KeyedArray)
	newChild, err := apply(child, names, keys, depth+1, leafOp)
	if err != nil {
		return node, err
	}
	return node.Set(key, entry.With(arrName, newChild)), nil
}
