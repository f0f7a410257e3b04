// Package awsconfig loads the shared AWS configuration used by every AWS
// client in modelwatch: default credential chain, adaptive retries with a
// bounded attempt count.
package awsconfig

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"

	"github.com/agentstation/modelwatch/pkg/constants"
	"github.com/agentstation/modelwatch/pkg/errors"
)

// Load resolves the AWS config. An empty region defers to the environment
// (AWS_REGION, shared config files).
func Load(ctx context.Context, region string) (aws.Config, error) {
	opts := []func(*config.LoadOptions) error{
		config.WithRetryMode(aws.RetryModeAdaptive),
		config.WithRetryMaxAttempts(constants.MaxAttempts),
	}
	if region != "" {
		opts = append(opts, config.WithRegion(region))
	}

	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return aws.Config{}, errors.NewConfigError("aws", "failed to load configuration", err)
	}
	return cfg, nil
}

// ForRegion returns a copy of cfg pinned to region.
func ForRegion(cfg aws.Config, region string) aws.Config {
	out := cfg.Copy()
	out.Region = region
	return out
}
