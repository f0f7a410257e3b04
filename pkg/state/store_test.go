package state_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/agentstation/utc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/agentstation/modelwatch/pkg/errors"
	"github.com/agentstation/modelwatch/pkg/itemset"
	"github.com/agentstation/modelwatch/pkg/logging"
	"github.com/agentstation/modelwatch/pkg/state"
	"github.com/agentstation/modelwatch/pkg/state/memory"
)

// brokenBackend fails every call.
type brokenBackend struct{ err error }

func (b brokenBackend) Load(context.Context, string) (*state.Record, error) { return nil, b.err }
func (b brokenBackend) Put(context.Context, state.Record) error             { return b.err }
func (b brokenBackend) Close() error                                        { return nil }

func fixedClock() utc.Time {
	return utc.Time{Time: time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)}
}

func TestLookupMissingRecord(t *testing.T) {
	store := state.NewStore(memory.New())

	got := store.Lookup(context.Background(), "us-east-1")
	assert.False(t, got.Found)
	assert.NoError(t, got.Err)
	assert.Equal(t, 0, got.Items.Len())
}

func TestSaveThenLookup(t *testing.T) {
	backend := memory.New()
	store := state.NewStore(backend, state.WithClock(fixedClock))
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "us-east-1", itemset.New("m2", "m1")))

	got := store.Lookup(ctx, "us-east-1")
	assert.True(t, got.Found)
	assert.Equal(t, []string{"m1", "m2"}, got.Items.Sorted())

	rec, err := store.Record(ctx, "us-east-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"m1", "m2"}, rec.ItemIDs)
	assert.Equal(t, "2026-10-01T12:00:00Z", state.FormatTime(rec.LastUpdated))
}

func TestReadFailureIsSwallowed(t *testing.T) {
	tl := logging.NewTestLogger(t)
	ctx := logging.WithLogger(context.Background(), tl.Logger)
	store := state.NewStore(brokenBackend{err: errors.New("access denied")})

	got := store.Lookup(ctx, "eu-west-1")
	assert.False(t, got.Found)
	assert.Equal(t, 0, got.Items.Len())
	require.Error(t, got.Err)
	assert.True(t, pkgerrors.IsPersistence(got.Err))

	assert.Equal(t, 0, store.GetPrevious(ctx, "eu-west-1").Len())
	tl.AssertContains(t, "access denied")
	tl.AssertContains(t, `"region":"eu-west-1"`)
}

func TestWriteFailureIsTyped(t *testing.T) {
	store := state.NewStore(brokenBackend{err: errors.New("throughput exceeded")})

	err := store.Save(context.Background(), "us-west-2", itemset.New("m1"))
	require.Error(t, err)

	var perr *pkgerrors.PersistenceError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, pkgerrors.OpWrite, perr.Op)
	assert.Equal(t, "us-west-2", perr.Region)
}

func TestDocumentRoundTrip(t *testing.T) {
	rec := state.Record{Region: "ap-northeast-1", ItemIDs: []string{"a", "b"}, LastUpdated: fixedClock()}

	doc := rec.Document()
	assert.Equal(t, "2026-10-01T12:00:00Z", doc.LastUpdated)

	back := doc.Record()
	assert.Equal(t, rec.Region, back.Region)
	assert.Equal(t, rec.ItemIDs, back.ItemIDs)
	assert.True(t, rec.LastUpdated.Time.Equal(back.LastUpdated.Time))
}

func TestDocumentEmptyIDs(t *testing.T) {
	doc := state.Record{Region: "x"}.Document()
	assert.NotNil(t, doc.ModelIDs)
	assert.Empty(t, doc.LastUpdated)
}

func TestParseTimeRejectsGarbage(t *testing.T) {
	_, err := state.ParseTime("yesterday")
	assert.Error(t, err)
}
