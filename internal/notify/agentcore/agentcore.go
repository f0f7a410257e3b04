// Package agentcore delivers notifications by invoking a Bedrock AgentCore
// runtime. The runtime owns message wording and delivery; this package only
// hands it one instruction per run and checks that the call succeeded.
package agentcore

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/aws/arn"
	"github.com/aws/aws-sdk-go-v2/service/bedrockagentcore"
	"github.com/google/uuid"

	"github.com/agentstation/modelwatch/internal/awsconfig"
	"github.com/agentstation/modelwatch/pkg/constants"
	"github.com/agentstation/modelwatch/pkg/errors"
	"github.com/agentstation/modelwatch/pkg/logging"
	"github.com/agentstation/modelwatch/pkg/notify"
)

// DefaultQualifier is the runtime endpoint invoked.
const DefaultQualifier = "DEFAULT"

// API is the subset of the AgentCore data-plane client used here.
type API interface {
	InvokeAgentRuntime(ctx context.Context, params *bedrockagentcore.InvokeAgentRuntimeInput, optFns ...func(*bedrockagentcore.Options)) (*bedrockagentcore.InvokeAgentRuntimeOutput, error)
}

// Notifier invokes one agent runtime per notification.
type Notifier struct {
	api       API
	arn       string
	qualifier string
	sessionID func() string
}

var _ notify.Notifier = (*Notifier)(nil)

// Option configures a Notifier.
type Option func(*Notifier)

// WithQualifier overrides the runtime endpoint qualifier.
func WithQualifier(q string) Option {
	return func(n *Notifier) { n.qualifier = q }
}

// WithSessionIDs overrides session ID generation, for tests.
func WithSessionIDs(gen func() string) Option {
	return func(n *Notifier) { n.sessionID = gen }
}

// New returns a notifier for runtimeARN using api.
func New(api API, runtimeARN string, opts ...Option) (*Notifier, error) {
	if !IsRuntimeARN(runtimeARN) {
		return nil, &errors.ValidationError{Field: "runtime_arn", Value: runtimeARN, Message: "not a bedrock-agentcore ARN"}
	}
	n := &Notifier{
		api:       api,
		arn:       runtimeARN,
		qualifier: DefaultQualifier,
		sessionID: NewSessionID,
	}
	for _, opt := range opts {
		opt(n)
	}
	return n, nil
}

// NewFromConfig builds the client in the runtime's own region.
func NewFromConfig(cfg aws.Config, runtimeARN string, opts ...Option) (*Notifier, error) {
	if parsed, err := arn.Parse(runtimeARN); err == nil && parsed.Region != "" {
		cfg = awsconfig.ForRegion(cfg, parsed.Region)
	}
	return New(bedrockagentcore.NewFromConfig(cfg), runtimeARN, opts...)
}

// IsRuntimeARN reports whether s names an AgentCore resource.
func IsRuntimeARN(s string) bool {
	parsed, err := arn.Parse(s)
	return err == nil && parsed.Service == "bedrock-agentcore"
}

// NewSessionID returns a fresh session identifier. AgentCore requires at
// least 33 characters; the result is always 45.
func NewSessionID() string {
	return constants.SessionIDPrefix + uuid.NewString()
}

// BuildPrompt renders the instruction sent to the agent.
func BuildPrompt(payload notify.Payload) (string, error) {
	models, err := payload.JSON()
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString("The following new Amazon Bedrock models were detected. Send a notification email about them.\n\n")
	b.WriteString("Detected models:\n")
	b.Write(models)
	b.WriteString("\n\nRegion names:\n")
	for _, region := range payload.Regions() {
		fmt.Fprintf(&b, "- %s: %s\n", region, notify.RegionDisplayName(region))
	}
	b.WriteString("\nCombine every region into a single message and call the send_notification tool exactly once.")
	return b.String(), nil
}

type request struct {
	Prompt string `json:"prompt"`
}

type response struct {
	Status string `json:"status"`
	Error  string `json:"error"`
}

// Notify implements notify.Notifier.
func (n *Notifier) Notify(ctx context.Context, payload notify.Payload) error {
	prompt, err := BuildPrompt(payload)
	if err != nil {
		return errors.NewNotificationError(n.arn, err)
	}
	body, err := json.Marshal(request{Prompt: prompt})
	if err != nil {
		return errors.NewNotificationError(n.arn, err)
	}

	sessionID := n.sessionID()
	if len(sessionID) < constants.MinSessionIDLength {
		return errors.NewNotificationError(n.arn,
			fmt.Errorf("session id %q shorter than %d characters", sessionID, constants.MinSessionIDLength))
	}

	logger := logging.Ctx(ctx)
	logger.Info().
		Str("session_id", sessionID).
		Int("region_count", len(payload)).
		Int("new_count", payload.Total()).
		Msg("Invoking agent runtime")

	out, err := n.api.InvokeAgentRuntime(ctx, &bedrockagentcore.InvokeAgentRuntimeInput{
		AgentRuntimeArn:  aws.String(n.arn),
		RuntimeSessionId: aws.String(sessionID),
		Qualifier:        aws.String(n.qualifier),
		ContentType:      aws.String("application/json"),
		Accept:           aws.String("application/json"),
		Payload:          body,
	})
	if err != nil {
		return errors.NewNotificationError(n.arn, err)
	}

	var raw []byte
	if out.Response != nil {
		defer func() { _ = out.Response.Close() }()
		if raw, err = io.ReadAll(out.Response); err != nil {
			return errors.NewNotificationError(n.arn, fmt.Errorf("read response: %w", err))
		}
	}

	logger.Debug().
		Str("session_id", sessionID).
		Str("response", truncate(raw, constants.ResponseLogLimit)).
		Msg("Agent runtime responded")

	var resp response
	if json.Unmarshal(raw, &resp) == nil && strings.EqualFold(resp.Status, "error") {
		msg := resp.Error
		if msg == "" {
			msg = "agent reported an error"
		}
		return errors.NewNotificationError(n.arn, errors.New(msg))
	}
	return nil
}

func truncate(b []byte, limit int) string {
	if len(b) <= limit {
		return string(b)
	}
	return string(b[:limit])
}
