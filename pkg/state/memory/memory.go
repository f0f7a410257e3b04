// Package memory provides an in-process state backend. It keeps nothing
// across restarts and is meant for tests and dry runs.
package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/agentstation/modelwatch/pkg/errors"
	"github.com/agentstation/modelwatch/pkg/state"
)

// Backend is a map-backed state.Backend safe for concurrent use.
type Backend struct {
	mu      sync.RWMutex
	records map[string]state.Record
}

var _ state.Backend = (*Backend)(nil)

// New returns an empty backend.
func New() *Backend {
	return &Backend{records: make(map[string]state.Record)}
}

// Load implements state.Backend.
func (b *Backend) Load(_ context.Context, region string) (*state.Record, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	rec, ok := b.records[region]
	if !ok {
		return nil, errors.NewNotFoundError("state record", region)
	}
	rec.ItemIDs = slices.Clone(rec.ItemIDs)
	return &rec, nil
}

// Put implements state.Backend.
func (b *Backend) Put(_ context.Context, rec state.Record) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	rec.ItemIDs = slices.Clone(rec.ItemIDs)
	b.records[rec.Region] = rec
	return nil
}

// Close implements state.Backend.
func (b *Backend) Close() error {
	return nil
}

// Seed stores ids for region with a zero timestamp.
func (b *Backend) Seed(region string, ids ...string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.records[region] = state.Record{Region: region, ItemIDs: slices.Sorted(slices.Values(ids))}
}

// Regions returns the regions that have a record.
func (b *Backend) Regions() []string {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make([]string, 0, len(b.records))
	for region := range b.records {
		out = append(out, region)
	}
	slices.Sort(out)
	return out
}
