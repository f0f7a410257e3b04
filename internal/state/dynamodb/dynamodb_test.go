package dynamodb_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/agentstation/utc"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ddb "github.com/agentstation/modelwatch/internal/state/dynamodb"
	pkgerrors "github.com/agentstation/modelwatch/pkg/errors"
	"github.com/agentstation/modelwatch/pkg/state"
)

// fakeTable records the last put and serves it back.
type fakeTable struct {
	items  map[string]map[string]types.AttributeValue
	getErr error
	gets   []*dynamodb.GetItemInput
}

func newFakeTable() *fakeTable {
	return &fakeTable{items: map[string]map[string]types.AttributeValue{}}
}

func keyOf(m map[string]types.AttributeValue) string {
	pk := m["pk"].(*types.AttributeValueMemberS).Value
	region := m["region"].(*types.AttributeValueMemberS).Value
	return pk + "|" + region
}

func (f *fakeTable) GetItem(_ context.Context, in *dynamodb.GetItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	f.gets = append(f.gets, in)
	if f.getErr != nil {
		return nil, f.getErr
	}
	return &dynamodb.GetItemOutput{Item: f.items[keyOf(in.Key)]}, nil
}

func (f *fakeTable) PutItem(_ context.Context, in *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	f.items[keyOf(in.Item)] = in.Item
	return &dynamodb.PutItemOutput{}, nil
}

func TestPutWritesItemShape(t *testing.T) {
	table := newFakeTable()
	b, err := ddb.New(table, "model-state")
	require.NoError(t, err)

	ts := utc.Time{Time: time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)}
	require.NoError(t, b.Put(context.Background(), state.Record{
		Region: "us-east-1", ItemIDs: []string{"m1", "m2"}, LastUpdated: ts,
	}))

	got := table.items["MODEL_STATE|us-east-1"]
	require.NotNil(t, got)

	ids, ok := got["model_ids"].(*types.AttributeValueMemberL)
	require.True(t, ok, "model_ids must be a list")
	assert.Len(t, ids.Value, 2)
	assert.Equal(t, "2026-03-04T05:06:07Z", got["last_updated"].(*types.AttributeValueMemberS).Value)
}

func TestLoadRoundTrip(t *testing.T) {
	table := newFakeTable()
	b, err := ddb.New(table, "model-state")
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, b.Put(ctx, state.Record{Region: "eu-west-1", ItemIDs: []string{"b", "a"}}))

	rec, err := b.Load(ctx, "eu-west-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, rec.ItemIDs)
	assert.Equal(t, "model-state", aws.ToString(table.gets[0].TableName))
	assert.True(t, aws.ToBool(table.gets[0].ConsistentRead))
}

func TestLoadMissingItem(t *testing.T) {
	b, err := ddb.New(newFakeTable(), "model-state")
	require.NoError(t, err)

	_, err = b.Load(context.Background(), "ap-northeast-1")
	assert.True(t, pkgerrors.IsNotFound(err))
}

func TestLoadErrorPassesThrough(t *testing.T) {
	table := newFakeTable()
	table.getErr = errors.New("AccessDeniedException")
	b, err := ddb.New(table, "model-state")
	require.NoError(t, err)

	_, err = b.Load(context.Background(), "us-east-1")
	require.Error(t, err)
	assert.False(t, pkgerrors.IsNotFound(err))
}

func TestNewRequiresTable(t *testing.T) {
	_, err := ddb.New(newFakeTable(), "")
	assert.True(t, pkgerrors.IsValidationError(err))
}
