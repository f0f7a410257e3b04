package natsbus_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/modelwatch/internal/notify/natsbus"
	pkgerrors "github.com/agentstation/modelwatch/pkg/errors"
	"github.com/agentstation/modelwatch/pkg/notify"
)

type fakeConn struct {
	subject  string
	data     []byte
	flushErr error
	closed   bool
}

func (f *fakeConn) Publish(subj string, data []byte) error {
	f.subject, f.data = subj, data
	return nil
}

func (f *fakeConn) FlushWithContext(context.Context) error { return f.flushErr }
func (f *fakeConn) Close()                                 { f.closed = true }

func TestParseTarget(t *testing.T) {
	tests := []struct {
		raw, server, subject string
	}{
		{"nats://localhost:4222/models/new", "nats://localhost:4222", "models.new"},
		{"nats://user:pw@nats.internal:4222", "nats://user:pw@nats.internal:4222", natsbus.DefaultSubject},
	}
	for _, tt := range tests {
		server, subject, err := natsbus.ParseTarget(tt.raw)
		require.NoError(t, err)
		assert.Equal(t, tt.server, server)
		assert.Equal(t, tt.subject, subject)
	}

	_, _, err := natsbus.ParseTarget("nats:///subject")
	assert.True(t, pkgerrors.IsValidationError(err))
}

func TestNotifyPublishesEvent(t *testing.T) {
	conn := &fakeConn{}
	n := natsbus.New(conn, "models.new")

	require.NoError(t, n.Notify(context.Background(), notify.Payload{"us-east-1": {"a", "b"}}))
	assert.Equal(t, "models.new", conn.subject)

	var ev natsbus.Event
	require.NoError(t, json.Unmarshal(conn.data, &ev))
	assert.Equal(t, 2, ev.Total)
	assert.Equal(t, []string{"a", "b"}, ev.NewModels["us-east-1"])
	assert.False(t, ev.DetectedAt.IsZero())

	require.NoError(t, n.Close())
	assert.True(t, conn.closed)
}

func TestNotifyFlushFailure(t *testing.T) {
	conn := &fakeConn{flushErr: errors.New("nats: connection closed")}
	err := natsbus.New(conn, "s").Notify(context.Background(), notify.Payload{"r": {"x"}})
	assert.True(t, pkgerrors.IsNotification(err))
}
