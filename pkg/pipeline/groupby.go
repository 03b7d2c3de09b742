package pipeline

import (
	"github.com/viewstream/viewstream/internal/utils/path"
	"github.com/viewstream/viewstream/log"
)

// GroupByStep nests items at its scope into a keyed array of groups,
// re-keyed by the hash of a grouping sub-dictionary (spec.md §4.5). It is
// the only step that changes the depth of the tree, so it is also the
// only step whose pass-through wiring needs to translate key paths rather
// than forward them untouched.
type GroupByStep struct {
	*bus
	upstream   Step
	scope      path.Path // s
	groupNames []string  // G
	arrayName  string    // a
	hash       HashFunc

	// membership counts the live items of each group, keyed by
	// parentKeyPath.Push(groupKey).Key().
	membership map[string]int
	// groupProps remembers the grouping sub-dictionary used to create each
	// group, so the group-level Removed event can carry the same props the
	// Added event did.
	groupProps map[string]Item
	// items maps parentKeyPath.Push(itemKey).Key() to the group it landed
	// in, both to answer Removed (spec.md §4.5 step 1) and to translate
	// key paths of events nested under an item (anything strictly under s).
	items map[string]groupMembership
}

type groupMembership struct {
	parentKeyPath path.Path
	groupKey      string
}

// NewGroupBy wraps upstream, grouping items at scope by groupNames into a
// new nested array named arrayName. hash computes the group key; pass
// DefaultHash unless a test needs a deterministic stand-in.
func NewGroupBy(upstream Step, scope path.Path, groupNames []string, arrayName string, hash HashFunc) (*GroupByStep, error) {
	if err := validateScope(upstream, scope); err != nil {
		return nil, err
	}
	if err := validateArrayName(arrayName); err != nil {
		return nil, err
	}

	s := &GroupByStep{
		bus:        newBus("groupBy(" + arrayName + ")"),
		upstream:   upstream,
		scope:      scope,
		groupNames: append([]string{}, groupNames...),
		arrayName:  arrayName,
		hash:       hash,
		membership: map[string]int{},
		groupProps: map[string]Item{},
		items:      map[string]groupMembership{},
	}

	itemLevel := scope.Push(arrayName)
	under := func(p path.Path) bool { return p.Under(scope) }

	upstream.OnAdded(scope, func(kp path.Path, itemKey string, props Item) {
		s.handleItemAdded(itemLevel, kp, itemKey, props)
	})
	upstream.OnRemoved(scope, func(kp path.Path, itemKey string, props Item) {
		s.handleItemRemoved(itemLevel, kp, itemKey, props)
	})
	upstream.OnModified(scope, func(kp path.Path, parentKey string, name string, v interface{}) {
		groupKey, ok := s.lookup(kp, parentKey)
		if !ok {
			log.DEBUG("groupBy(%s): dropping Modified for unknown item %s (already removed?)", s.arrayName, parentKey)
			return
		}
		s.emitModified(itemLevel, kp.Push(groupKey), parentKey, name, v)
	})

	for _, q := range upstream.TypeDescriptor().Paths() {
		if !under(q) {
			continue
		}
		rest := q.TrimPrefix(scope)
		own := itemLevel
		for _, seg := range rest.Nodes {
			own = own.Push(seg)
		}
		q, own := q, own
		upstream.OnAdded(q, func(kp path.Path, key string, props Item) {
			nkp, ok := s.translate(kp)
			if !ok {
				return
			}
			s.emitAdded(own, nkp, key, props)
		})
		upstream.OnRemoved(q, func(kp path.Path, key string, props Item) {
			nkp, ok := s.translate(kp)
			if !ok {
				return
			}
			s.emitRemoved(own, nkp, key, props)
		})
		upstream.OnModified(q, func(kp path.Path, parentKey string, name string, v interface{}) {
			nkp, ok := s.translate(kp)
			if !ok {
				return
			}
			s.emitModified(own, nkp, parentKey, name, v)
		})
	}

	wirePassThrough(upstream, s.bus, atOrUnder(scope))
	return s, nil
}

// TypeDescriptor wraps the upstream subtree at scope in a single array
// named arrayName; everything above scope is preserved (spec.md §4.5).
func (s *GroupByStep) TypeDescriptor() TypeDescriptor {
	upstreamAtScope, _ := s.upstream.TypeDescriptor().At(s.scope)
	wrapped := TypeDescriptor{}.WithArray(s.arrayName, upstreamAtScope)
	return s.upstream.TypeDescriptor().Replace(s.scope, wrapped)
}

func (s *GroupByStep) groupingDict(props Item) Item {
	dict := make(Item, len(s.groupNames))
	for _, g := range s.groupNames {
		dict[g] = props[g]
	}
	return dict
}

func (s *GroupByStep) handleItemAdded(itemLevel path.Path, parentKeyPath path.Path, itemKey string, props Item) {
	dict := s.groupingDict(props)
	groupKey, err := s.hash(dict, s.groupNames)
	if err != nil {
		log.DEBUG("groupBy(%s): hashing grouping key failed: %s", s.arrayName, err)
		return
	}

	membershipKey := parentKeyPath.Push(groupKey).Key()
	if s.membership[membershipKey] == 0 {
		s.groupProps[membershipKey] = dict
		s.emitAdded(s.scope, parentKeyPath, groupKey, dict)
	}
	s.membership[membershipKey]++

	s.items[parentKeyPath.Push(itemKey).Key()] = groupMembership{parentKeyPath: parentKeyPath, groupKey: groupKey}

	s.emitAdded(itemLevel, parentKeyPath.Push(groupKey), itemKey, props.WithoutAll(s.groupNames))
}

func (s *GroupByStep) handleItemRemoved(itemLevel path.Path, parentKeyPath path.Path, itemKey string, props Item) {
	itemRecKey := parentKeyPath.Push(itemKey).Key()
	rec, ok := s.items[itemRecKey]
	if !ok {
		log.DEBUG("groupBy(%s): %s", s.arrayName, UnknownItemError{Step: "GroupBy", ItemKey: itemKey})
		return
	}
	delete(s.items, itemRecKey)

	s.emitRemoved(itemLevel, rec.parentKeyPath.Push(rec.groupKey), itemKey, props.WithoutAll(s.groupNames))

	membershipKey := rec.parentKeyPath.Push(rec.groupKey).Key()
	s.membership[membershipKey]--
	if s.membership[membershipKey] <= 0 {
		dict := s.groupProps[membershipKey]
		delete(s.membership, membershipKey)
		delete(s.groupProps, membershipKey)
		s.emitRemoved(s.scope, rec.parentKeyPath, rec.groupKey, dict)
	}
}

// lookup finds the group key an item landed in, given the ancestor key
// path and item key at scope level — used to translate a Modified event
// fired directly at scope.
func (s *GroupByStep) lookup(parentKeyPath path.Path, itemKey string) (string, bool) {
	rec, ok := s.items[parentKeyPath.Push(itemKey).Key()]
	if !ok {
		return "", false
	}
	return rec.groupKey, true
}

// translate inserts the owning group's key into a key path addressed
// strictly under scope, so events nested inside a grouped item keep
// flowing once that item has moved one level deeper.
func (s *GroupByStep) translate(kp path.Path) (path.Path, bool) {
	depth := s.scope.Depth()
	itemKey := kp.Nodes[depth]
	parentKeyPath := path.New(kp.Nodes[:depth]...)
	rec, ok := s.items[parentKeyPath.Push(itemKey).Key()]
	if !ok {
		log.DEBUG("groupBy(%s): %s", s.arrayName, UnknownItemError{Step: "GroupBy", ItemKey: itemKey})
		return path.Path{}, false
	}
	nodes := make([]string, 0, len(kp.Nodes)+1)
	nodes = append(nodes, kp.Nodes[:depth]...)
	nodes = append(nodes, rec.groupKey)
	nodes = append(nodes, kp.Nodes[depth:]...)
	return path.Path{Nodes: nodes}, true
}
