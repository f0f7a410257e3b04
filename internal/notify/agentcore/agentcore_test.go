package agentcore_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockagentcore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/modelwatch/internal/notify/agentcore"
	pkgerrors "github.com/agentstation/modelwatch/pkg/errors"
	"github.com/agentstation/modelwatch/pkg/notify"
)

const runtimeARN = "arn:aws:bedrock-agentcore:us-east-1:123456789012:runtime/notifier-abc123"

type fakeRuntime struct {
	calls []*bedrockagentcore.InvokeAgentRuntimeInput
	body  string
	err   error
}

func (f *fakeRuntime) InvokeAgentRuntime(_ context.Context, in *bedrockagentcore.InvokeAgentRuntimeInput, _ ...func(*bedrockagentcore.Options)) (*bedrockagentcore.InvokeAgentRuntimeOutput, error) {
	f.calls = append(f.calls, in)
	if f.err != nil {
		return nil, f.err
	}
	return &bedrockagentcore.InvokeAgentRuntimeOutput{
		Response: io.NopCloser(strings.NewReader(f.body)),
	}, nil
}

func TestSessionID(t *testing.T) {
	a, b := agentcore.NewSessionID(), agentcore.NewSessionID()

	assert.True(t, strings.HasPrefix(a, "detector-"))
	assert.GreaterOrEqual(t, len(a), 33)
	assert.Len(t, a, 45)
	assert.NotEqual(t, a, b)
}

func TestBuildPrompt(t *testing.T) {
	prompt, err := agentcore.BuildPrompt(notify.Payload{
		"ap-northeast-1": {"vendor.model-b"},
		"us-east-1":      {"vendor.model-a"},
	})
	require.NoError(t, err)

	assert.Contains(t, prompt, `"ap-northeast-1": [`)
	assert.Contains(t, prompt, "vendor.model-a")
	assert.Contains(t, prompt, "- ap-northeast-1: Asia Pacific (Tokyo)")
	assert.Contains(t, prompt, "- us-east-1: US East (N. Virginia)")
	assert.Contains(t, prompt, "send_notification tool exactly once")
}

func TestNotifyInvokesRuntime(t *testing.T) {
	rt := &fakeRuntime{body: `{"status":"success","response":"sent"}`}
	n, err := agentcore.New(rt, runtimeARN)
	require.NoError(t, err)

	require.NoError(t, n.Notify(context.Background(), notify.Payload{"us-west-2": {"m1"}}))
	require.Len(t, rt.calls, 1)

	call := rt.calls[0]
	assert.Equal(t, runtimeARN, aws.ToString(call.AgentRuntimeArn))
	assert.Equal(t, "DEFAULT", aws.ToString(call.Qualifier))
	assert.GreaterOrEqual(t, len(aws.ToString(call.RuntimeSessionId)), 33)

	var body map[string]string
	require.NoError(t, json.Unmarshal(call.Payload, &body))
	assert.Contains(t, body["prompt"], "m1")
}

func TestNotifyCallError(t *testing.T) {
	rt := &fakeRuntime{err: errors.New("ThrottlingException")}
	n, err := agentcore.New(rt, runtimeARN)
	require.NoError(t, err)

	err = n.Notify(context.Background(), notify.Payload{"us-west-2": {"m1"}})
	require.Error(t, err)
	assert.True(t, pkgerrors.IsNotification(err))
	assert.Contains(t, err.Error(), "ThrottlingException")
}

func TestNotifyAgentReportedError(t *testing.T) {
	rt := &fakeRuntime{body: `{"status":"error","error":"prompt is required"}`}
	n, err := agentcore.New(rt, runtimeARN)
	require.NoError(t, err)

	err = n.Notify(context.Background(), notify.Payload{"us-west-2": {"m1"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "prompt is required")
}

func TestNotifyRejectsShortSessionID(t *testing.T) {
	rt := &fakeRuntime{}
	n, err := agentcore.New(rt, runtimeARN, agentcore.WithSessionIDs(func() string { return "short" }))
	require.NoError(t, err)

	err = n.Notify(context.Background(), notify.Payload{"us-west-2": {"m1"}})
	require.Error(t, err)
	assert.Empty(t, rt.calls)
}

func TestIsRuntimeARN(t *testing.T) {
	assert.True(t, agentcore.IsRuntimeARN(runtimeARN))
	assert.False(t, agentcore.IsRuntimeARN("arn:aws:sns:us-east-1:123456789012:topic"))
	assert.False(t, agentcore.IsRuntimeARN("not-an-arn"))

	_, err := agentcore.New(&fakeRuntime{}, "nope")
	assert.True(t, pkgerrors.IsValidationError(err))
}
