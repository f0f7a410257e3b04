// Package itemset provides the unordered, de-duplicated set of catalog item
// identifiers observed for a region.
package itemset

import (
	"slices"
	"strings"
)

// Set is a set of item identifiers. The zero value is an empty, read-only
// set; use New or FromSlice before calling Add.
type Set map[string]struct{}

// New returns a set containing ids.
func New(ids ...string) Set {
	return FromSlice(ids)
}

// FromSlice returns a set containing the non-blank entries of ids.
func FromSlice(ids []string) Set {
	s := make(Set, len(ids))
	for _, id := range ids {
		s.Add(id)
	}
	return s
}

// Add inserts id, ignoring blank identifiers.
func (s Set) Add(id string) {
	if strings.TrimSpace(id) == "" {
		return
	}
	s[id] = struct{}{}
}

// Has reports whether id is in the set.
func (s Set) Has(id string) bool {
	_, ok := s[id]
	return ok
}

// Len returns the number of identifiers.
func (s Set) Len() int {
	return len(s)
}

// Sorted returns the identifiers in ascending order. Storage and payloads use
// this form; the order carries no meaning.
func (s Set) Sorted() []string {
	out := make([]string, 0, len(s))
	for id := range s {
		out = append(out, id)
	}
	slices.Sort(out)
	return out
}

// Clone returns an independent copy of s.
func (s Set) Clone() Set {
	out := make(Set, len(s))
	for id := range s {
		out[id] = struct{}{}
	}
	return out
}

// Equal reports whether s and other hold the same identifiers.
func (s Set) Equal(other Set) bool {
	if len(s) != len(other) {
		return false
	}
	for id := range s {
		if !other.Has(id) {
			return false
		}
	}
	return true
}
