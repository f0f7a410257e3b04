// Package dynamodb stores region snapshots in a DynamoDB table.
//
// The table uses a composite key: partition key "pk" (always MODEL_STATE)
// and sort key "region". Each item also carries "model_ids" (a list of
// strings) and "last_updated" (RFC 3339).
package dynamodb

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/agentstation/modelwatch/pkg/constants"
	"github.com/agentstation/modelwatch/pkg/errors"
	"github.com/agentstation/modelwatch/pkg/state"
)

// API is the subset of the DynamoDB client the backend calls.
type API interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
}

type item struct {
	PK          string   `dynamodbav:"pk"`
	Region      string   `dynamodbav:"region"`
	ModelIDs    []string `dynamodbav:"model_ids"`
	LastUpdated string   `dynamodbav:"last_updated"`
}

// Backend is a state.Backend over one DynamoDB table.
type Backend struct {
	api   API
	table string
}

var _ state.Backend = (*Backend)(nil)

// New returns a backend using an existing client.
func New(api API, table string) (*Backend, error) {
	if table == "" {
		return nil, errors.NewConfigError("dynamodb", "table name is required", nil)
	}
	return &Backend{api: api, table: table}, nil
}

// NewFromConfig builds the DynamoDB client from an AWS config.
func NewFromConfig(cfg aws.Config, table string) (*Backend, error) {
	return New(dynamodb.NewFromConfig(cfg), table)
}

// Table returns the table name.
func (b *Backend) Table() string { return b.table }

func key(region string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"pk":     &types.AttributeValueMemberS{Value: constants.StatePartitionKey},
		"region": &types.AttributeValueMemberS{Value: region},
	}
}

// Load implements state.Backend.
func (b *Backend) Load(ctx context.Context, region string) (*state.Record, error) {
	out, err := b.api.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(b.table),
		Key:            key(region),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, err
	}
	if len(out.Item) == 0 {
		return nil, errors.NewNotFoundError("state record", region)
	}

	var it item
	if err := attributevalue.UnmarshalMap(out.Item, &it); err != nil {
		return nil, errors.WrapParse("dynamodb", b.table, err)
	}
	doc := state.Document{Region: it.Region, ModelIDs: it.ModelIDs, LastUpdated: it.LastUpdated}
	if doc.Region == "" {
		doc.Region = region
	}
	return doc.Record(), nil
}

// Put implements state.Backend. The previous item for the region is
// replaced in full.
func (b *Backend) Put(ctx context.Context, rec state.Record) error {
	doc := rec.Document()
	av, err := attributevalue.MarshalMap(item{
		PK:          constants.StatePartitionKey,
		Region:      doc.Region,
		ModelIDs:    doc.ModelIDs,
		LastUpdated: doc.LastUpdated,
	})
	if err != nil {
		return errors.WrapParse("dynamodb", b.table, err)
	}

	_, err = b.api.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(b.table),
		Item:      av,
	})
	return err
}

// Close implements state.Backend.
func (b *Backend) Close() error { return nil }
