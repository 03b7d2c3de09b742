package pipeline

// Item is an immutable property bag. Items never mutate in place once
// emitted (spec.md §3) — every transformation that changes properties
// produces a new Item value. Nested keyed arrays, when present, live
// under their array name as a KeyedArray value.
type Item map[string]interface{}

// Clone returns a shallow copy of the item. Shallow is sufficient because
// property values (other than nested KeyedArrays, which are themselves
// copy-on-write) are treated as opaque and never mutated after being
// stored.
func (it Item) Clone() Item {
	out := make(Item, len(it))
	for k, v := range it {
		out[k] = v
	}
	return out
}

// Without returns a copy of the item with the named property removed.
func (it Item) Without(name string) Item {
	out := make(Item, len(it))
	for k, v := range it {
		if k == name {
			continue
		}
		out[k] = v
	}
	return out
}

// With returns a copy of the item with name set to value.
func (it Item) With(name string, value interface{}) Item {
	out := it.Clone()
	out[name] = value
	return out
}

// WithoutAll returns a copy of the item with every name in names removed —
// used by GroupBy to strip the grouping properties from the item-level
// event (props \ G in spec.md §4.5).
func (it Item) WithoutAll(names []string) Item {
	drop := make(map[string]bool, len(names))
	for _, n := range names {
		drop[n] = true
	}
	out := make(Item, len(it))
	for k, v := range it {
		if drop[k] {
			continue
		}
		out[k] = v
	}
	return out
}

// Equal performs the shallow property-by-property comparison the spec's
// Open Questions call out as unreliable for pick-by winner identity
// (§9) — kept only for tests and diagnostics, never for bookkeeping.
func (it Item) Equal(other Item) bool {
	if len(it) != len(other) {
		return false
	}
	for k, v := range it {
		ov, ok := other[k]
		if !ok || ov != v {
			return false
		}
	}
	return true
}

// Entry is one (key, value) pair of a keyed array.
type Entry struct {
	Key   string
	Value Item
}

// KeyedArray is an ordered sequence of unique (key, value) pairs (spec.md
// §3). All mutating operations are copy-on-write: they return a new slice
// and leave the receiver untouched, so state held by the materializer's
// sink can be shared safely between transform invocations.
type KeyedArray []Entry

// IndexOf returns the position of key in the array, or -1.
func (a KeyedArray) IndexOf(key string) int {
	for i, e := range a {
		if e.Key == key {
			return i
		}
	}
	return -1
}

// Get returns the item stored under key.
func (a KeyedArray) Get(key string) (Item, bool) {
	if i := a.IndexOf(key); i >= 0 {
		return a[i].Value, true
	}
	return nil, false
}

// Added returns a copy of a with (key, value) appended.
func (a KeyedArray) Added(key string, value Item) KeyedArray {
	out := make(KeyedArray, len(a), len(a)+1)
	copy(out, a)
	return append(out, Entry{Key: key, Value: value})
}

// Removed returns a copy of a with the entry at key filtered out.
func (a KeyedArray) Removed(key string) KeyedArray {
	out := make(KeyedArray, 0, len(a))
	for _, e := range a {
		if e.Key == key {
			continue
		}
		out = append(out, e)
	}
	return out
}

// Modified returns a copy of a with a single property of the entry at key
// set to value. If key is absent, a is returned unchanged.
func (a KeyedArray) Modified(key, propertyName string, value interface{}) KeyedArray {
	i := a.IndexOf(key)
	if i < 0 {
		return a
	}
	out := make(KeyedArray, len(a))
	copy(out, a)
	out[i] = Entry{Key: key, Value: a[i].Value.With(propertyName, value)}
	return out
}

// Len reports how many entries the array currently has.
func (a KeyedArray) Len() int {
	return len(a)
}

// Set returns a copy of a with the entry at key replaced wholesale by
// value — used by the materializer to write back a subtree after
// descending into it, as opposed to Modified's single-property update.
func (a KeyedArray) Set(key string, value Item) KeyedArray {
	i := a.IndexOf(key)
	if i < 0 {
		return a
	}
	out := make(KeyedArray, len(a))
	copy(out, a)
	out[i] = Entry{Key: key, Value: value}
	return out
}

// ToDoc flattens a into a plain map[string]interface{} tree, recursing
// into any nested KeyedArray property — the shape yaml.Marshal (and
// ytbx.LoadFiles on the far end) expect, since neither knows about
// KeyedArray itself. Used only at the CLI boundary (cmd/viewstream) to
// write a materialized state out as a YAML document for dyff to diff.
func (a KeyedArray) ToDoc() map[string]interface{} {
	out := make(map[string]interface{}, len(a))
	for _, e := range a {
		out[e.Key] = itemToDoc(e.Value)
	}
	return out
}

func itemToDoc(it Item) map[string]interface{} {
	out := make(map[string]interface{}, len(it))
	for k, v := range it {
		if nested, ok := v.(KeyedArray); ok {
			out[k] = nested.ToDoc()
			continue
		}
		out[k] = v
	}
	return out
}
