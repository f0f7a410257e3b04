// Package bedrock lists the foundation models Amazon Bedrock offers in a
// region.
package bedrock

import (
	"context"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrock"

	"github.com/agentstation/modelwatch/internal/awsconfig"
	"github.com/agentstation/modelwatch/pkg/catalog"
	"github.com/agentstation/modelwatch/pkg/errors"
	"github.com/agentstation/modelwatch/pkg/itemset"
	"github.com/agentstation/modelwatch/pkg/logging"
)

// API is the subset of the Bedrock control-plane client used here.
type API interface {
	ListFoundationModels(ctx context.Context, params *bedrock.ListFoundationModelsInput, optFns ...func(*bedrock.Options)) (*bedrock.ListFoundationModelsOutput, error)
}

// Client implements catalog.Lister with one Bedrock client per region,
// created on first use and shared by concurrent callers.
type Client struct {
	cfg       aws.Config
	newClient func(aws.Config) API

	mu      sync.Mutex
	clients map[string]API
}

var _ catalog.Lister = (*Client)(nil)

// New returns a client built on cfg. The region in cfg is overridden per
// call.
func New(cfg aws.Config) *Client {
	return &Client{
		cfg:       cfg,
		newClient: func(c aws.Config) API { return bedrock.NewFromConfig(c) },
		clients:   make(map[string]API),
	}
}

// NewWithFactory is New with a custom client constructor, for tests.
func NewWithFactory(cfg aws.Config, factory func(aws.Config) API) *Client {
	c := New(cfg)
	c.newClient = factory
	return c
}

func (c *Client) client(region string) API {
	c.mu.Lock()
	defer c.mu.Unlock()

	if api, ok := c.clients[region]; ok {
		return api
	}
	api := c.newClient(awsconfig.ForRegion(c.cfg, region))
	c.clients[region] = api
	return api
}

// ListItems implements catalog.Lister. Retries are left to the SDK
// retryer; any error that survives them is an UpstreamFetchError.
func (c *Client) ListItems(ctx context.Context, region string) (itemset.Set, error) {
	out, err := c.client(region).ListFoundationModels(ctx, &bedrock.ListFoundationModelsInput{})
	if err != nil {
		return nil, errors.NewUpstreamFetchError(region, err)
	}

	items := itemset.New()
	for _, summary := range out.ModelSummaries {
		items.Add(aws.ToString(summary.ModelId))
	}

	logging.Ctx(ctx).Debug().
		Str("region", region).
		Int("model_count", items.Len()).
		Msg("Listed foundation models")
	return items, nil
}
