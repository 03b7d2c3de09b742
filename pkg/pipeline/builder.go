package pipeline

import "github.com/viewstream/viewstream/internal/utils/path"

// Builder composes a chain of steps the way mergeBuilderImpl composes a
// merge: every call returns a new, independent builder value (copy on
// write) rather than mutating the receiver, so a builder can be branched
// and reused safely. A construction error short-circuits every
// subsequent call — once a step constructor has failed, every further call just
// returns the same broken builder, and the original error surfaces at
// Build().
type Builder struct {
	source Step
	step   Step
	scope  path.Path
	err    error
}

// From starts a builder chain on top of an existing step — typically a
// fresh InputStep, but any Step works, so pipelines can be composed out
// of sub-pipelines. source is carried unchanged through every subsequent
// copy, so Build can hand it back regardless of how long the chain grew.
func From(step Step) Builder {
	return Builder{source: step, step: step}
}

// In returns a copy of the builder scoped to segment path p — every
// subsequent transformation call (DefineProperty, Filter, GroupBy, ...)
// applies at this scope until In is called again.
func (b Builder) In(segments ...string) Builder {
	if b.err != nil {
		return b
	}
	nb := b
	nb.scope = path.New(segments...)
	return nb
}

func (b Builder) fail(err error) Builder {
	nb := b
	nb.err = err
	return nb
}

// DefineProperty adds a computed property at the builder's current scope.
func (b Builder) DefineProperty(propertyName string, compute ComputeFunc) Builder {
	if b.err != nil {
		return b
	}
	step, err := NewDefineProperty(b.step, b.scope, propertyName, compute)
	if err != nil {
		return b.fail(err)
	}
	nb := b
	nb.step = step
	return nb
}

// DropProperty removes propertyName at the builder's current scope.
func (b Builder) DropProperty(propertyName string) Builder {
	if b.err != nil {
		return b
	}
	step, err := NewDropProperty(b.step, b.scope, propertyName)
	if err != nil {
		return b.fail(err)
	}
	nb := b
	nb.step = step
	return nb
}

// Filter keeps only items at the builder's current scope for which
// predicate holds.
func (b Builder) Filter(predicate Predicate) Builder {
	if b.err != nil {
		return b
	}
	step, err := NewFilter(b.step, b.scope, predicate)
	if err != nil {
		return b.fail(err)
	}
	nb := b
	nb.step = step
	return nb
}

// GroupBy nests items at the builder's current scope into arrayName,
// grouped by groupNames. The groups themselves replace the items at the
// current scope (same depth, same segment path) — the builder's scope is
// unchanged, and the new member array lives at scope.Push(arrayName); an
// aggregate chained immediately after (Sum(arrayName, ...), etc) targets
// that member array the same way it would without an intervening GroupBy.
func (b Builder) GroupBy(arrayName string, groupNames ...string) Builder {
	return b.GroupByWithHash(arrayName, DefaultHash, groupNames...)
}

// GroupByWithHash is GroupBy with an injectable HashFunc, for tests that
// need deterministic or colliding group keys.
func (b Builder) GroupByWithHash(arrayName string, hash HashFunc, groupNames ...string) Builder {
	if b.err != nil {
		return b
	}
	step, err := NewGroupBy(b.step, b.scope, groupNames, arrayName, hash)
	if err != nil {
		return b.fail(err)
	}
	nb := b
	nb.step = step
	return nb
}

// DropArray removes arrayName (and its whole subtree) at the builder's
// current scope.
func (b Builder) DropArray(arrayName string) Builder {
	if b.err != nil {
		return b
	}
	step, err := NewDropArray(b.step, b.scope.Push(arrayName))
	if err != nil {
		return b.fail(err)
	}
	nb := b
	nb.step = step
	return nb
}

// Sum aggregates propertyName across arrayName (a child of the builder's
// current scope), publishing the result on the parent item.
func (b Builder) Sum(arrayName string, propertyName string) Builder {
	return b.aggregate(arrayName, func(upstream Step, target path.Path) (Step, error) {
		return Sum(upstream, target, propertyName)
	})
}

// Count aggregates the live member count of arrayName onto the parent item.
func (b Builder) Count(arrayName string, propertyName string) Builder {
	return b.aggregate(arrayName, func(upstream Step, target path.Path) (Step, error) {
		return Count(upstream, target, propertyName)
	})
}

// Min publishes the smallest live value of propertyName in arrayName.
func (b Builder) Min(arrayName string, propertyName string) Builder {
	return b.aggregate(arrayName, func(upstream Step, target path.Path) (Step, error) {
		return NewMin(upstream, target, propertyName)
	})
}

// Max publishes the largest live value of propertyName in arrayName.
func (b Builder) Max(arrayName string, propertyName string) Builder {
	return b.aggregate(arrayName, func(upstream Step, target path.Path) (Step, error) {
		return NewMax(upstream, target, propertyName)
	})
}

// Average publishes the mean live value of propertyName in arrayName.
func (b Builder) Average(arrayName string, propertyName string) Builder {
	return b.aggregate(arrayName, func(upstream Step, target path.Path) (Step, error) {
		return NewAverage(upstream, target, propertyName)
	})
}

// PickByMin publishes, under outputName, the whole item of arrayName
// holding the smallest value of propertyName.
func (b Builder) PickByMin(arrayName string, propertyName string, outputName string) Builder {
	return b.aggregate(arrayName, func(upstream Step, target path.Path) (Step, error) {
		return NewPickByMin(upstream, target, propertyName, outputName)
	})
}

// PickByMax is PickByMin's dual.
func (b Builder) PickByMax(arrayName string, propertyName string, outputName string) Builder {
	return b.aggregate(arrayName, func(upstream Step, target path.Path) (Step, error) {
		return NewPickByMax(upstream, target, propertyName, outputName)
	})
}

func (b Builder) aggregate(arrayName string, construct func(upstream Step, target path.Path) (Step, error)) Builder {
	if b.err != nil {
		return b
	}
	step, err := construct(b.step, b.scope.Push(arrayName))
	if err != nil {
		return b.fail(err)
	}
	nb := b
	nb.step = step
	return nb
}

// TypeDescriptor returns the descriptor of the pipeline composed so far
// (spec.md §4.10's typeDescriptor() operation), or the zero descriptor
// once the chain has already failed.
func (b Builder) TypeDescriptor() TypeDescriptor {
	if b.err != nil {
		return TypeDescriptor{}
	}
	return b.step.TypeDescriptor()
}

// Build wires a Materializer over every segment path the composed
// pipeline's descriptor declares, delivering every change to sink (which
// may be nil), and returns the source the chain started From — the
// handle the caller drives with Add/Remove (spec.md §4.10's build(sink),
// whose result is "the source"), or the first construction error
// encountered anywhere in the chain.
func (b Builder) Build(sink Sink) (Step, error) {
	if b.err != nil {
		return nil, b.err
	}
	NewMaterializer(b.step, sink)
	return b.source, nil
}
