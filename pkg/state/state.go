// Package state persists the last-known item snapshot per region.
//
// A Backend does raw storage. Store wraps a Backend with the read and write
// policy the detector relies on: reads are best effort and fall back to an
// empty snapshot, writes are stamped and surface typed errors.
package state

import (
	"context"
	"time"

	"github.com/agentstation/utc"

	"github.com/agentstation/modelwatch/pkg/itemset"
)

// Record is the persisted snapshot of one region. There is one record per
// region and each successful run overwrites it.
type Record struct {
	Region      string
	ItemIDs     []string // sorted; the order carries no meaning
	LastUpdated utc.Time
}

// Items returns the record's identifiers as a set.
func (r *Record) Items() itemset.Set {
	if r == nil {
		return itemset.New()
	}
	return itemset.FromSlice(r.ItemIDs)
}

// Backend stores records keyed by region.
type Backend interface {
	// Load returns the record for region, or an error matching
	// errors.ErrNotFound when none has been written yet.
	Load(ctx context.Context, region string) (*Record, error)

	// Put creates or replaces the record for rec.Region.
	Put(ctx context.Context, rec Record) error

	// Close releases the backend's resources.
	Close() error
}

// Document is the encoding-neutral form of a Record used by backends that
// serialize to JSON or YAML.
type Document struct {
	Region      string   `json:"region" yaml:"region"`
	ModelIDs    []string `json:"model_ids" yaml:"model_ids"`
	LastUpdated string   `json:"last_updated" yaml:"last_updated"`
}

// Document converts r for serialization.
func (r Record) Document() Document {
	ids := r.ItemIDs
	if ids == nil {
		ids = []string{}
	}
	return Document{
		Region:      r.Region,
		ModelIDs:    ids,
		LastUpdated: FormatTime(r.LastUpdated),
	}
}

// Record converts a decoded document back into a Record. An unparsable
// timestamp yields the zero time; the identifiers are what matter.
func (d Document) Record() *Record {
	ts, _ := ParseTime(d.LastUpdated)
	return &Record{
		Region:      d.Region,
		ItemIDs:     itemset.FromSlice(d.ModelIDs).Sorted(),
		LastUpdated: ts,
	}
}

// FormatTime renders t as RFC 3339 in UTC.
func FormatTime(t utc.Time) string {
	if t.Time.IsZero() {
		return ""
	}
	return t.Time.UTC().Format(time.RFC3339Nano)
}

// ParseTime parses an RFC 3339 timestamp written by FormatTime.
func ParseTime(s string) (utc.Time, error) {
	if s == "" {
		return utc.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return utc.Time{}, err
	}
	return utc.Time{Time: t.UTC()}, nil
}
