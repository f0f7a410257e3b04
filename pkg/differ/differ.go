// Package differ computes which catalog items are new for a region relative
// to its last persisted snapshot.
package differ

import "github.com/agentstation/modelwatch/pkg/itemset"

// Changeset describes how a region's current listing relates to its
// previous snapshot.
type Changeset struct {
	Added   itemset.Set // in current, not in previous
	Missing itemset.Set // in previous, not in current (informational only)
}

// HasChanges reports whether any new items were detected. Missing items do
// not count: they are kept in state and never reported as removals.
func (c Changeset) HasChanges() bool {
	return c.Added.Len() > 0
}

// Compare returns both directions of the difference.
func Compare(current, previous itemset.Set) Changeset {
	return Changeset{
		Added:   Items(current, previous),
		Missing: Missing(current, previous),
	}
}

// Items returns current − previous.
func Items(current, previous itemset.Set) itemset.Set {
	out := make(itemset.Set)
	for id := range current {
		if !previous.Has(id) {
			out[id] = struct{}{}
		}
	}
	return out
}

// Missing returns previous − current.
func Missing(current, previous itemset.Set) itemset.Set {
	return Items(previous, current)
}
