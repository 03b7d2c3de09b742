package pipeline

import (
	"github.com/viewstream/viewstream/internal/utils/path"
	"github.com/viewstream/viewstream/log"
)

// AddedHandler is notified of a newly-added entry at a subscribed segment
// path. The item carries the original immutable properties (spec.md §4.1).
type AddedHandler func(keyPath path.Path, key string, props Item)

// RemovedHandler is notified of a removed entry. The item is always the
// one originally emitted on Added for that key.
type RemovedHandler func(keyPath path.Path, key string, props Item)

// ModifiedHandler is notified of a derived-value change on an existing
// parent. Modified is the only channel that ever carries a computed
// value; Added/Removed never do (spec.md §3 invariants).
type ModifiedHandler func(keyPath path.Path, parentKey string, propertyName string, newValue interface{})

// Step is the contract every node in the pipeline satisfies (spec.md
// §4.1). Every concrete step embeds bus to get subscription/dispatch for
// free and implements TypeDescriptor itself.
type Step interface {
	TypeDescriptor() TypeDescriptor
	OnAdded(p path.Path, h AddedHandler)
	OnRemoved(p path.Path, h RemovedHandler)
	OnModified(p path.Path, h ModifiedHandler)
}

// bus is the shared subscription/dispatch bookkeeping for a step: three
// channels, each keyed by segment path, each holding handlers in
// insertion order (spec.md §4.1 "dispatch order is insertion order").
// Every concrete step embeds a bus value rather than reimplementing
// dispatch — the same shape as graft's Operator implementations sharing
// ArithmeticOperatorBase.
type bus struct {
	name     string
	added    map[string][]AddedHandler
	removed  map[string][]RemovedHandler
	modified map[string][]ModifiedHandler
}

func newBus(name string) *bus {
	return &bus{
		name:     name,
		added:    map[string][]AddedHandler{},
		removed:  map[string][]RemovedHandler{},
		modified: map[string][]ModifiedHandler{},
	}
}

func (b *bus) OnAdded(p path.Path, h AddedHandler) {
	b.added[p.Key()] = append(b.added[p.Key()], h)
}

func (b *bus) OnRemoved(p path.Path, h RemovedHandler) {
	b.removed[p.Key()] = append(b.removed[p.Key()], h)
}

func (b *bus) OnModified(p path.Path, h ModifiedHandler) {
	b.modified[p.Key()] = append(b.modified[p.Key()], h)
}

func (b *bus) emitAdded(p path.Path, keyPath path.Path, key string, props Item) {
	log.TRACE("%s: emitting Added at %s (key=%s, keyPath=%s)", b.name, p.String(), key, keyPath.String())
	for _, h := range b.added[p.Key()] {
		h(keyPath, key, props)
	}
}

func (b *bus) emitRemoved(p path.Path, keyPath path.Path, key string, props Item) {
	log.TRACE("%s: emitting Removed at %s (key=%s, keyPath=%s)", b.name, p.String(), key, keyPath.String())
	for _, h := range b.removed[p.Key()] {
		h(keyPath, key, props)
	}
}

func (b *bus) emitModified(p path.Path, keyPath path.Path, parentKey string, propertyName string, value interface{}) {
	log.TRACE("%s: emitting Modified at %s (parentKey=%s, property=%s)", b.name, p.String(), parentKey, propertyName)
	for _, h := range b.modified[p.Key()] {
		h(keyPath, parentKey, propertyName, value)
	}
}

// hasSubscribers reports whether anything is wired on any channel at p.
func (b *bus) hasSubscribers(p path.Path) bool {
	k := p.Key()
	return len(b.added[k]) > 0 || len(b.removed[k]) > 0 || len(b.modified[k]) > 0
}
