package state

import (
	"context"
	"time"

	"github.com/agentstation/utc"

	"github.com/agentstation/modelwatch/pkg/constants"
	"github.com/agentstation/modelwatch/pkg/errors"
	"github.com/agentstation/modelwatch/pkg/itemset"
	"github.com/agentstation/modelwatch/pkg/logging"
)

// Lookup is the outcome of reading a region's previous snapshot.
type Lookup struct {
	Items itemset.Set // never nil; empty when not found or unreadable
	Found bool        // a record existed
	Err   error       // *errors.PersistenceError when the read failed
}

// Store applies the detector's persistence policy on top of a Backend.
type Store struct {
	backend Backend
	timeout time.Duration
	now     func() utc.Time
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithTimeout bounds each backend call. Zero disables the bound.
func WithTimeout(d time.Duration) StoreOption {
	return func(s *Store) { s.timeout = d }
}

// WithClock overrides the timestamp source, for tests.
func WithClock(now func() utc.Time) StoreOption {
	return func(s *Store) { s.now = now }
}

// NewStore wraps backend.
func NewStore(backend Backend, opts ...StoreOption) *Store {
	s := &Store{
		backend: backend,
		timeout: constants.StateTimeout,
		now:     utc.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Lookup reads the previous snapshot for region. A missing record is not an
// error. A failed read is logged and reported in Lookup.Err but still yields
// an empty set, so the next diff over-reports rather than suppressing real
// new items.
func (s *Store) Lookup(ctx context.Context, region string) Lookup {
	ctx, cancel := s.bound(ctx)
	defer cancel()

	rec, err := s.backend.Load(ctx, region)
	switch {
	case err == nil:
		return Lookup{Items: rec.Items(), Found: true}
	case errors.IsNotFound(err):
		return Lookup{Items: itemset.New()}
	default:
		readErr := errors.NewPersistenceReadError(region, err)
		logging.Ctx(ctx).Warn().
			Err(readErr).
			Str("region", region).
			Msg("Previous snapshot unavailable, treating as empty")
		return Lookup{Items: itemset.New(), Err: readErr}
	}
}

// GetPrevious returns the persisted set for region, or an empty set when no
// record exists or the read fails. It never returns an error.
func (s *Store) GetPrevious(ctx context.Context, region string) itemset.Set {
	return s.Lookup(ctx, region).Items
}

// Save persists items for region with a fresh timestamp.
func (s *Store) Save(ctx context.Context, region string, items itemset.Set) error {
	ctx, cancel := s.bound(ctx)
	defer cancel()

	rec := Record{
		Region:      region,
		ItemIDs:     items.Sorted(),
		LastUpdated: s.now(),
	}
	if err := s.backend.Put(ctx, rec); err != nil {
		return errors.NewPersistenceWriteError(region, err)
	}

	logging.Ctx(ctx).Debug().
		Str("region", region).
		Int("model_count", len(rec.ItemIDs)).
		Msg("Wrote state record")
	return nil
}

// Record returns the raw record for region, for inspection.
func (s *Store) Record(ctx context.Context, region string) (*Record, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()
	return s.backend.Load(ctx, region)
}

// Close closes the underlying backend.
func (s *Store) Close() error {
	return s.backend.Close()
}

func (s *Store) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.timeout)
}
