// Package catalog defines how modelwatch reads the current set of catalog
// item identifiers for a region.
package catalog

import (
	"context"

	"github.com/agentstation/modelwatch/pkg/itemset"
)

// Lister lists the item identifiers currently offered in a region.
//
// Implementations apply their own retry policy and return an
// *errors.UpstreamFetchError once it is exhausted. Callers treat that as
// "region unavailable for this run".
type Lister interface {
	ListItems(ctx context.Context, region string) (itemset.Set, error)
}

// ListerFunc adapts a function to the Lister interface.
type ListerFunc func(ctx context.Context, region string) (itemset.Set, error)

// ListItems calls f.
func (f ListerFunc) ListItems(ctx context.Context, region string) (itemset.Set, error) {
	return f(ctx, region)
}
