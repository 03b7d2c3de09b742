// Package path implements the ordered-sequence-of-names addressing used
// throughout the pipeline: segment paths (schema addresses, made of array
// names) and key paths (runtime addresses, made of concrete keys). Both
// share the same shape and the same equality/prefix algebra, so both are
// represented by Path.
package path

import "strings"

// Path is an ordered sequence of name segments. The zero value is the
// empty (root) path.
type Path struct {
	Nodes []string
}

// New builds a Path from the given segments. The segments are copied, so
// later mutation of the caller's slice does not affect the Path.
func New(segments ...string) Path {
	if len(segments) == 0 {
		return Path{}
	}
	nodes := make([]string, len(segments))
	copy(nodes, segments)
	return Path{Nodes: nodes}
}

// Empty reports whether this is the root path.
func (p Path) Empty() bool {
	return len(p.Nodes) == 0
}

// Depth returns the number of segments in the path.
func (p Path) Depth() int {
	return len(p.Nodes)
}

// Copy returns an independent copy of the path.
func (p Path) Copy() Path {
	return New(p.Nodes...)
}

// Push returns a new path with n appended. The receiver is left unmodified.
func (p Path) Push(n string) Path {
	nodes := make([]string, len(p.Nodes), len(p.Nodes)+1)
	copy(nodes, p.Nodes)
	return Path{Nodes: append(nodes, n)}
}

// Pop returns the path with its last segment removed, and the segment
// removed. Popping the empty path returns (empty, "").
func (p Path) Pop() (Path, string) {
	if len(p.Nodes) == 0 {
		return p, ""
	}
	last := p.Nodes[len(p.Nodes)-1]
	return Path{Nodes: p.Nodes[:len(p.Nodes)-1]}, last
}

// Last returns the final segment, or "" for the empty path.
func (p Path) Last() string {
	if len(p.Nodes) == 0 {
		return ""
	}
	return p.Nodes[len(p.Nodes)-1]
}

// Equal reports whether p and other have identical segments in order.
func (p Path) Equal(other Path) bool {
	if len(p.Nodes) != len(other.Nodes) {
		return false
	}
	for i := range p.Nodes {
		if p.Nodes[i] != other.Nodes[i] {
			return false
		}
	}
	return true
}

// Contains reports whether other is p itself or a descendant of p (p is a
// prefix of other, inclusive).
func (p Path) Contains(other Path) bool {
	if len(other.Nodes) < len(p.Nodes) {
		return false
	}
	for i := range p.Nodes {
		if p.Nodes[i] != other.Nodes[i] {
			return false
		}
	}
	return true
}

// Under reports whether p is a strict descendant of other.
func (p Path) Under(other Path) bool {
	return len(p.Nodes) > len(other.Nodes) && other.Contains(p)
}

// String renders the path dot-joined, matching the teacher's cursor
// rendering; the empty path renders as "$".
func (p Path) String() string {
	if len(p.Nodes) == 0 {
		return "$"
	}
	return strings.Join(p.Nodes, ".")
}

// Key renders the path as a value safe to use as a Go map key — segments
// are not comparable as a slice, so every lookup table keyed by Path uses
// this instead of the struct itself.
func (p Path) Key() string {
	const sep = "\x1f"
	return sep + strings.Join(p.Nodes, sep)
}

// Join renders the path with a custom delimiter — used for hashing parent
// identity (CommutativeAggregate keys by join(keyPath, "::")).
func (p Path) Join(delim string) string {
	return strings.Join(p.Nodes, delim)
}

// TrimPrefix strips the leading segments of prefix from p. It panics if
// prefix is not actually a prefix of p — callers must only use it where
// Contains has already been checked, mirroring the fail-fast posture of
// the rest of the engine (see §7 of the design doc).
func (p Path) TrimPrefix(prefix Path) Path {
	if !prefix.Contains(p) {
		panic("path: TrimPrefix called with a non-prefix")
	}
	return Path{Nodes: append([]string{}, p.Nodes[len(prefix.Nodes):]...)}
}

// WithLast replaces the final segment of a path. On the empty path it
// returns the one-segment path n.
func (p Path) WithLast(n string) Path {
	if len(p.Nodes) == 0 {
		return New(n)
	}
	nodes := make([]string, len(p.Nodes))
	copy(nodes, p.Nodes)
	nodes[len(nodes)-1] = n
	return Path{Nodes: nodes}
}
