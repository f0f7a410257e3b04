// Package notify defines the boundary between detection and delivery.
//
// A detection run hands one Payload to one Notifier. What the notifier does
// with it (invoke an agent, send mail, publish to a bus) is opaque to the
// detector; only success or failure is observed.
package notify

import (
	"context"
	"encoding/json"
	"slices"

	"github.com/agentstation/modelwatch/pkg/itemset"
)

// Notifier delivers a non-empty payload.
type Notifier interface {
	Notify(ctx context.Context, payload Payload) error
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(ctx context.Context, payload Payload) error

// Notify implements Notifier.
func (f NotifierFunc) Notify(ctx context.Context, payload Payload) error {
	return f(ctx, payload)
}

// Payload maps a region to its newly detected item IDs, sorted ascending.
// Regions without new items are absent.
type Payload map[string][]string

// Add records items for region. An empty set is ignored.
func (p Payload) Add(region string, items itemset.Set) {
	if items.Len() == 0 {
		return
	}
	p[region] = items.Sorted()
}

// IsEmpty reports whether there is nothing to notify.
func (p Payload) IsEmpty() bool {
	return len(p) == 0
}

// Regions returns the payload's regions in ascending order.
func (p Payload) Regions() []string {
	out := make([]string, 0, len(p))
	for region := range p {
		out = append(out, region)
	}
	slices.Sort(out)
	return out
}

// Total returns the number of new items across all regions.
func (p Payload) Total() int {
	n := 0
	for _, ids := range p {
		n += len(ids)
	}
	return n
}

// JSON renders the payload as indented JSON with sorted keys.
func (p Payload) JSON() ([]byte, error) {
	if p == nil {
		return []byte("{}"), nil
	}
	return json.MarshalIndent(map[string][]string(p), "", "  ")
}
