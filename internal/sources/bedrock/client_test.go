package bedrock_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsbedrock "github.com/aws/aws-sdk-go-v2/service/bedrock"
	"github.com/aws/aws-sdk-go-v2/service/bedrock/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/modelwatch/internal/sources/bedrock"
	pkgerrors "github.com/agentstation/modelwatch/pkg/errors"
)

type fakeAPI struct {
	region string
	ids    []*string
	err    error
}

func (f *fakeAPI) ListFoundationModels(context.Context, *awsbedrock.ListFoundationModelsInput, ...func(*awsbedrock.Options)) (*awsbedrock.ListFoundationModelsOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := &awsbedrock.ListFoundationModelsOutput{}
	for _, id := range f.ids {
		out.ModelSummaries = append(out.ModelSummaries, types.FoundationModelSummary{ModelId: id})
	}
	return out, nil
}

func TestListItems(t *testing.T) {
	var mu sync.Mutex
	built := map[string]int{}

	c := bedrock.NewWithFactory(aws.Config{}, func(cfg aws.Config) bedrock.API {
		mu.Lock()
		built[cfg.Region]++
		mu.Unlock()
		return &fakeAPI{region: cfg.Region, ids: []*string{
			aws.String("anthropic.claude-v2"), aws.String("amazon.titan"), aws.String(""), nil, aws.String("amazon.titan"),
		}}
	})

	for range 3 {
		items, err := c.ListItems(context.Background(), "us-east-1")
		require.NoError(t, err)
		assert.Equal(t, []string{"amazon.titan", "anthropic.claude-v2"}, items.Sorted())
	}
	_, err := c.ListItems(context.Background(), "us-west-2")
	require.NoError(t, err)

	assert.Equal(t, map[string]int{"us-east-1": 1, "us-west-2": 1}, built)
}

func TestListItemsError(t *testing.T) {
	c := bedrock.NewWithFactory(aws.Config{}, func(aws.Config) bedrock.API {
		return &fakeAPI{err: errors.New("ThrottlingException")}
	})

	_, err := c.ListItems(context.Background(), "eu-west-1")
	require.Error(t, err)
	assert.True(t, pkgerrors.IsUpstreamFetch(err))

	var ferr *pkgerrors.UpstreamFetchError
	require.ErrorAs(t, err, &ferr)
	assert.Equal(t, "eu-west-1", ferr.Region)
}
