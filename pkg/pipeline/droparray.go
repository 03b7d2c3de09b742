package pipeline

import "github.com/viewstream/viewstream/internal/utils/path"

// DropArrayStep removes a nested array, and everything under it, from the
// view (spec.md §4.6). Suppression happens at the source: DropArray simply
// never subscribes to anything at or under target, so no event for that
// subtree is ever computed in the first place, let alone forwarded. Any
// other step already subscribed directly to the same upstream array (for
// example an aggregate sitting alongside this DropArray rather than
// downstream of it) is unaffected — its subscription was wired at its own
// construction time, independent of this one.
type DropArrayStep struct {
	*bus
	upstream Step
	target   path.Path
}

// NewDropArray wraps upstream, removing the array named by the last
// segment of target (and its whole subtree) from the descriptor and from
// every event stream.
func NewDropArray(upstream Step, target path.Path) (*DropArrayStep, error) {
	if err := validateScope(upstream, target); err != nil {
		return nil, err
	}
	s := &DropArrayStep{
		bus:      newBus("dropArray(" + target.String() + ")"),
		upstream: upstream,
		target:   target,
	}

	wirePassThrough(upstream, s.bus, atOrUnder(target))
	return s, nil
}

// TypeDescriptor removes the dropped array from the parent scope's array
// list entirely — not merely leaving it empty — so the array name no
// longer appears anywhere for downstream steps or the materializer
// (spec.md §4.6).
func (s *DropArrayStep) TypeDescriptor() TypeDescriptor {
	parent, name := s.target.Pop()
	parentType, _ := s.upstream.TypeDescriptor().At(parent)
	trimmed := parentType.WithoutArray(name)
	return s.upstream.TypeDescriptor().Replace(parent, trimmed)
}
