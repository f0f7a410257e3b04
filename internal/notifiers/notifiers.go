// Package notifiers resolves a notifier target string to a notify.Notifier.
//
//	arn:aws:bedrock-agentcore:...   AgentCore runtime invocation
//	smtp://... or smtps://...        email
//	nats://host:port/subject         NATS publish
//
// An empty target resolves to no notifier.
package notifiers

import (
	"context"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"

	"github.com/agentstation/modelwatch/internal/awsconfig"
	"github.com/agentstation/modelwatch/internal/notify/agentcore"
	"github.com/agentstation/modelwatch/internal/notify/natsbus"
	"github.com/agentstation/modelwatch/internal/notify/smtp"
	"github.com/agentstation/modelwatch/pkg/errors"
	"github.com/agentstation/modelwatch/pkg/notify"
)

// Kind names a notifier type.
type Kind string

// Notifier kinds.
const (
	KindNone      Kind = ""
	KindAgentCore Kind = "agentcore"
	KindSMTP      Kind = "smtp"
	KindNATS      Kind = "nats"
)

// Detect returns the kind of notifier target names.
func Detect(target string) (Kind, error) {
	target = strings.TrimSpace(target)
	lower := strings.ToLower(target)
	switch {
	case target == "":
		return KindNone, nil
	case strings.HasPrefix(lower, "arn:") && agentcore.IsRuntimeARN(target):
		return KindAgentCore, nil
	case strings.HasPrefix(lower, "smtp://"), strings.HasPrefix(lower, "smtps://"):
		return KindSMTP, nil
	case strings.HasPrefix(lower, "nats://"), strings.HasPrefix(lower, "tls://"):
		return KindNATS, nil
	default:
		return KindNone, errors.NewConfigError("notifier", "unsupported target "+redact(target), nil)
	}
}

// Option configures Open.
type Option func(*options)

type options struct {
	aws *aws.Config
}

// WithAWSConfig supplies the AWS config for the AgentCore client.
func WithAWSConfig(cfg aws.Config) Option {
	return func(o *options) { o.aws = &cfg }
}

// Open builds the notifier for target. It returns nil, nil for an empty
// target.
func Open(ctx context.Context, target string, opts ...Option) (notify.Notifier, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	kind, err := Detect(target)
	if err != nil {
		return nil, err
	}
	target = strings.TrimSpace(target)

	switch kind {
	case KindAgentCore:
		cfg := o.aws
		if cfg == nil {
			loaded, err := awsconfig.Load(ctx, "")
			if err != nil {
				return nil, err
			}
			cfg = &loaded
		}
		return agentcore.NewFromConfig(*cfg, target)
	case KindSMTP:
		cfg, err := smtp.ParseTarget(target)
		if err != nil {
			return nil, err
		}
		return smtp.New(cfg)
	case KindNATS:
		return natsbus.Dial(target)
	default:
		return nil, nil
	}
}

// Close releases n when it holds a connection.
func Close(n notify.Notifier) error {
	if c, ok := n.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// redact drops URL user info so credentials never reach logs.
func redact(target string) string {
	scheme, rest, ok := strings.Cut(target, "://")
	if !ok {
		return target
	}
	authority, tail := rest, ""
	if i := strings.IndexAny(rest, "/?"); i >= 0 {
		authority, tail = rest[:i], rest[i:]
	}
	if at := strings.LastIndex(authority, "@"); at >= 0 {
		authority = authority[at+1:]
	}
	return scheme + "://" + authority + tail
}

// Describe renders target for logs without credentials.
func Describe(target string) string {
	return redact(strings.TrimSpace(target))
}
