// Package reconciler decides what gets written back to the state store after
// a run.
//
// The persisted snapshot is always the union of the current listing and the
// previous snapshot. An item the catalog API transiently omits therefore stays
// in state and is not reported as new again when it reappears.
package reconciler

import "github.com/agentstation/modelwatch/pkg/itemset"

// Merge returns current ∪ previous as a new set.
func Merge(current, previous itemset.Set) itemset.Set {
	out := make(itemset.Set, len(current)+len(previous))
	for id := range previous {
		out[id] = struct{}{}
	}
	for id := range current {
		out[id] = struct{}{}
	}
	return out
}
