package pipeline

import (
	"github.com/viewstream/viewstream/internal/utils/path"
	"github.com/viewstream/viewstream/log"
)

// InputStep is the source of the pipeline — the only step with no
// upstream. It emits Added/Removed at the empty segment path (spec.md
// §4.1) and never emits Modified: derived values only ever appear
// downstream of an aggregate.
type InputStep struct {
	*bus
}

// NewInput constructs an empty source.
func NewInput() *InputStep {
	return &InputStep{bus: newBus("input")}
}

// TypeDescriptor for the source is always a leaf: the shape of the output
// is entirely a function of the transformations stacked on top.
func (s *InputStep) TypeDescriptor() TypeDescriptor {
	return Leaf()
}

// Add introduces a new item under key, cascading through every
// downstream step before returning (spec.md §5: synchronous, push-based).
func (s *InputStep) Add(key string, item Item) {
	log.DEBUG("input: add key=%s", key)
	s.emitAdded(path.New(), path.New(), key, item)
}

// Remove retires the item previously added under key. item must be the
// same properties originally passed to Add — Filter and aggregate steps
// rely on the removal event carrying the item's original values.
func (s *InputStep) Remove(key string, item Item) {
	log.DEBUG("input: remove key=%s", key)
	s.emitRemoved(path.New(), path.New(), key, item)
}
