package reconciler_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/agentstation/modelwatch/pkg/differ"
	"github.com/agentstation/modelwatch/pkg/itemset"
	"github.com/agentstation/modelwatch/pkg/reconciler"
)

func TestMerge(t *testing.T) {
	tests := []struct {
		name     string
		current  itemset.Set
		previous itemset.Set
		want     []string
	}{
		{"first run", itemset.New("m1"), nil, []string{"m1"}},
		{"new and retained", itemset.New("m2", "m3"), itemset.New("m1", "m2"), []string{"m1", "m2", "m3"}},
		{"transient omission keeps history", itemset.New(), itemset.New("m1"), []string{"m1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, reconciler.Merge(tt.current, tt.previous).Sorted())
		})
	}
}

// The union never loses anything the diff saw, and diff and merge agree
// whatever order they are computed in.
func TestMergeIsSupersetOfBothInputs(t *testing.T) {
	pairs := [][2]itemset.Set{
		{itemset.New("a", "b"), itemset.New("b", "c")},
		{itemset.New(), itemset.New("x")},
		{itemset.New("x"), itemset.New()},
		{itemset.New("a"), itemset.New("a")},
	}

	for _, p := range pairs {
		current, previous := p[0], p[1]

		merged := reconciler.Merge(current, previous)
		added := differ.Items(current, previous)
		mergedAgain := reconciler.Merge(current, previous)

		for id := range current {
			assert.True(t, merged.Has(id))
		}
		for id := range previous {
			assert.True(t, merged.Has(id))
		}
		for id := range added {
			assert.False(t, previous.Has(id))
		}
		assert.True(t, merged.Equal(mergedAgain))
		assert.Equal(t, merged.Len(), previous.Len()+added.Len())
	}
}
