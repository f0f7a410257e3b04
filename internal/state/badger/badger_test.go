package badger_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/modelwatch/internal/state/badger"
	"github.com/agentstation/modelwatch/pkg/errors"
	"github.com/agentstation/modelwatch/pkg/state"
)

func TestPutLoadReopen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	b, err := badger.Open(dir)
	require.NoError(t, err)
	require.NoError(t, b.Put(ctx, state.Record{Region: "us-east-1", ItemIDs: []string{"m1", "m2"}}))
	require.NoError(t, b.Close())

	b, err = badger.Open(dir)
	require.NoError(t, err)
	t.Cleanup(func() { _ = b.Close() })

	rec, err := b.Load(ctx, "us-east-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"m1", "m2"}, rec.ItemIDs)

	regions, err := b.Regions()
	require.NoError(t, err)
	assert.Equal(t, []string{"us-east-1"}, regions)
}

func TestInMemoryMissing(t *testing.T) {
	b, err := badger.OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { _ = b.Close() })

	_, err = b.Load(context.Background(), "us-west-2")
	assert.True(t, errors.IsNotFound(err))
}

func TestOverwrite(t *testing.T) {
	b, err := badger.OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { _ = b.Close() })
	ctx := context.Background()

	require.NoError(t, b.Put(ctx, state.Record{Region: "r", ItemIDs: []string{"a"}}))
	require.NoError(t, b.Put(ctx, state.Record{Region: "r", ItemIDs: []string{"a", "b"}}))

	rec, err := b.Load(ctx, "r")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, rec.ItemIDs)
}
