package pipeline

import (
	"fmt"
	"sort"

	"github.com/mitchellh/hashstructure"
)

// HashFunc is the key-hash contract consumed from an external primitive
// (spec.md §6): deterministic, collision-resistant enough for grouping,
// and independent of the insertion order of the name list. Pluggable the
// same way graft's VaultClient is pluggable — callers may supply their own
// via GroupByWithHash for testing or for a different hash family.
type HashFunc func(dict map[string]interface{}, names []string) (string, error)

// DefaultHash canonicalizes the sub-dictionary named by names — sorted
// key order, so hashstructure's own field-order sensitivity never leaks
// insertion order into the result — and hashes it with
// mitchellh/hashstructure.
func DefaultHash(dict map[string]interface{}, names []string) (string, error) {
	sorted := make([]string, len(names))
	copy(sorted, names)
	sort.Strings(sorted)

	canonical := make(canonicalDict, 0, len(sorted))
	for _, n := range sorted {
		canonical = append(canonical, canonicalField{Name: n, Value: dict[n]})
	}

	sum, err := hashstructure.Hash(canonical, nil)
	if err != nil {
		return "", fmt.Errorf("hashing grouping key: %w", err)
	}
	return fmt.Sprintf("%x", sum), nil
}

// canonicalField/canonicalDict give hashstructure a stable, ordered
// representation of the grouping sub-dictionary: a slice, not a map, so
// that Go map iteration order never influences the hash.
type canonicalField struct {
	Name  string
	Value interface{}
}

type canonicalDict []canonicalField
