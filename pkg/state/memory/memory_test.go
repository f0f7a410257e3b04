package memory_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/modelwatch/pkg/errors"
	"github.com/agentstation/modelwatch/pkg/state"
	"github.com/agentstation/modelwatch/pkg/state/memory"
)

func TestLoadMissing(t *testing.T) {
	_, err := memory.New().Load(context.Background(), "us-east-1")
	assert.True(t, errors.IsNotFound(err))
}

func TestPutCopiesInput(t *testing.T) {
	b := memory.New()
	ids := []string{"a", "b"}
	require.NoError(t, b.Put(context.Background(), state.Record{Region: "r", ItemIDs: ids}))

	ids[0] = "mutated"
	rec, err := b.Load(context.Background(), "r")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, rec.ItemIDs)
}

func TestSeedAndRegions(t *testing.T) {
	b := memory.New()
	b.Seed("us-west-2", "m2", "m1")
	b.Seed("us-east-1")

	assert.Equal(t, []string{"us-east-1", "us-west-2"}, b.Regions())
	rec, err := b.Load(context.Background(), "us-west-2")
	require.NoError(t, err)
	assert.Equal(t, []string{"m1", "m2"}, rec.ItemIDs)
}
