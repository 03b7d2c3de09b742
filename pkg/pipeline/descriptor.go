package pipeline

import "github.com/viewstream/viewstream/internal/utils/path"

// TypeDescriptor is the recursive shape of a step's output: the set of
// nested arrays it emits, each with its own sub-descriptor. A descriptor
// with no arrays is a leaf (see spec.md §3).
type TypeDescriptor struct {
	Arrays []ArrayType
}

// ArrayType names one nested array and the descriptor of its element type.
type ArrayType struct {
	Name string
	Type TypeDescriptor
}

// Leaf is the empty descriptor — no nested arrays.
func Leaf() TypeDescriptor {
	return TypeDescriptor{}
}

// WithArray returns a copy of d with a new array appended. d is left
// unmodified; descriptors are treated as immutable values once built.
func (d TypeDescriptor) WithArray(name string, elem TypeDescriptor) TypeDescriptor {
	arrays := make([]ArrayType, len(d.Arrays), len(d.Arrays)+1)
	copy(arrays, d.Arrays)
	arrays = append(arrays, ArrayType{Name: name, Type: elem})
	return TypeDescriptor{Arrays: arrays}
}

// WithoutArray returns a copy of d with the array of the given name
// removed. If no array by that name exists, d is returned unchanged.
func (d TypeDescriptor) WithoutArray(name string) TypeDescriptor {
	arrays := make([]ArrayType, 0, len(d.Arrays))
	for _, a := range d.Arrays {
		if a.Name == name {
			continue
		}
		arrays = append(arrays, a)
	}
	return TypeDescriptor{Arrays: arrays}
}

// Array looks up the sub-descriptor for a named array at this level.
func (d TypeDescriptor) Array(name string) (TypeDescriptor, bool) {
	for _, a := range d.Arrays {
		if a.Name == name {
			return a.Type, true
		}
	}
	return TypeDescriptor{}, false
}

// At descends the descriptor along a segment path, returning the
// sub-descriptor rooted there. The empty path returns d itself.
func (d TypeDescriptor) At(p path.Path) (TypeDescriptor, bool) {
	cur := d
	for _, seg := range p.Nodes {
		next, ok := cur.Array(seg)
		if !ok {
			return TypeDescriptor{}, false
		}
		cur = next
	}
	return cur, true
}

// Replace returns a copy of d with the sub-descriptor at p replaced by
// replacement. An empty p replaces the whole descriptor, returning
// replacement itself. Every intermediate array along p must already exist.
func (d TypeDescriptor) Replace(p path.Path, replacement TypeDescriptor) TypeDescriptor {
	if p.Empty() {
		return replacement
	}
	head := p.Nodes[0]
	rest := path.New(p.Nodes[1:]...)

	arrays := make([]ArrayType, len(d.Arrays))
	copy(arrays, d.Arrays)
	for i, a := range arrays {
		if a.Name == head {
			arrays[i] = ArrayType{Name: head, Type: a.Type.Replace(rest, replacement)}
			return TypeDescriptor{Arrays: arrays}
		}
	}
	// Head didn't exist — shouldn't happen when callers check At first,
	// but degrade gracefully by inserting it fresh.
	return d.WithArray(head, TypeDescriptor{}.Replace(rest, replacement))
}

// Paths enumerates every segment path the descriptor describes, in
// root-inclusive pre-order: {[]} ∪ {[a]++p | a ∈ arrays, p ∈ paths(a.type)}.
func (d TypeDescriptor) Paths() []path.Path {
	out := []path.Path{path.New()}
	d.collect(path.New(), &out)
	return out
}

func (d TypeDescriptor) collect(prefix path.Path, out *[]path.Path) {
	for _, a := range d.Arrays {
		p := prefix.Push(a.Name)
		*out = append(*out, p)
		a.Type.collect(p, out)
	}
}
