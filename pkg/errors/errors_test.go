package errors_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/agentstation/modelwatch/pkg/errors"
)

func TestNew(t *testing.T) {
	err := pkgerrors.New("test error")
	assert.NotNil(t, err)
	assert.Equal(t, "test error", err.Error())
}

func TestNotFoundError(t *testing.T) {
	t.Run("basic error", func(t *testing.T) {
		err := &pkgerrors.NotFoundError{
			Resource: "state record",
			ID:       "us-east-1",
		}
		assert.Equal(t, "state record with ID us-east-1 not found", err.Error())
		assert.True(t, errors.Is(err, pkgerrors.ErrNotFound))
	})

	t.Run("wrapped error", func(t *testing.T) {
		base := pkgerrors.NewNotFoundError("state record", "eu-west-1")
		wrapped := fmt.Errorf("load: %w", base)
		assert.True(t, pkgerrors.IsNotFound(wrapped))
	})
}

func TestConfigError(t *testing.T) {
	err := pkgerrors.NewConfigError("detector", "at least one region is required", nil)
	assert.Contains(t, err.Error(), "detector")
	assert.Contains(t, err.Error(), "at least one region")
	assert.True(t, pkgerrors.IsValidationError(err))
}

func TestValidationError(t *testing.T) {
	t.Run("with field", func(t *testing.T) {
		err := pkgerrors.NewValidationError("session_id", "short", "must be at least 33 characters")
		assert.Equal(t, "validation failed for field session_id: must be at least 33 characters", err.Error())
		assert.True(t, pkgerrors.IsValidationError(err))
	})

	t.Run("without field", func(t *testing.T) {
		err := &pkgerrors.ValidationError{Message: "empty payload"}
		assert.Equal(t, "validation failed: empty payload", err.Error())
	})
}

func TestUpstreamFetchError(t *testing.T) {
	base := errors.New("throttled")
	err := pkgerrors.NewUpstreamFetchError("ap-northeast-1", base)

	assert.Contains(t, err.Error(), "ap-northeast-1")
	assert.Contains(t, err.Error(), "throttled")
	assert.Equal(t, base, err.Unwrap())
	assert.True(t, pkgerrors.IsUpstreamFetch(err))
	assert.False(t, pkgerrors.IsPersistence(err))
}

func TestPersistenceError(t *testing.T) {
	tests := []struct {
		name string
		err  *pkgerrors.PersistenceError
		op   string
	}{
		{"read", pkgerrors.NewPersistenceReadError("us-west-2", errors.New("denied")), pkgerrors.OpRead},
		{"write", pkgerrors.NewPersistenceWriteError("us-west-2", errors.New("denied")), pkgerrors.OpWrite},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.op, tt.err.Op)
			assert.Contains(t, tt.err.Error(), "state "+tt.op)
			assert.Contains(t, tt.err.Error(), "us-west-2")
			assert.True(t, pkgerrors.IsPersistence(tt.err))

			var target *pkgerrors.PersistenceError
			require.True(t, errors.As(fmt.Errorf("wrapped: %w", tt.err), &target))
			assert.Equal(t, "us-west-2", target.Region)
		})
	}
}

func TestNotificationError(t *testing.T) {
	t.Run("with target", func(t *testing.T) {
		err := pkgerrors.NewNotificationError("nats://localhost:4222/models", errors.New("no servers"))
		assert.Contains(t, err.Error(), "nats://localhost:4222/models")
		assert.Contains(t, err.Error(), "no servers")
		assert.True(t, pkgerrors.IsNotification(err))
	})

	t.Run("without target", func(t *testing.T) {
		err := pkgerrors.NewNotificationError("", errors.New("boom"))
		assert.Equal(t, "notify: boom", err.Error())
	})
}

func TestIOError(t *testing.T) {
	t.Run("unwrap", func(t *testing.T) {
		baseErr := errors.New("disk full")
		err := pkgerrors.NewIOError("write", "/data/us-east-1.yaml", baseErr)
		assert.Equal(t, baseErr, err.Unwrap())
		assert.Contains(t, err.Error(), "/data/us-east-1.yaml")
	})

	t.Run("wrap helper", func(t *testing.T) {
		err := pkgerrors.WrapIO("rename", "/data/state.yaml", errors.New("cross-device link"))
		ioErr, ok := err.(*pkgerrors.IOError)
		require.True(t, ok)
		assert.Equal(t, "rename", ioErr.Operation)
	})

	t.Run("nil passthrough", func(t *testing.T) {
		assert.NoError(t, pkgerrors.WrapIO("read", "x", nil))
		assert.NoError(t, pkgerrors.WrapResource("open", "state store", "x", nil))
		assert.NoError(t, pkgerrors.WrapParse("yaml", "x", nil))
	})
}

func TestResourceError(t *testing.T) {
	err := pkgerrors.WrapResource("open", "state store", "sqlite:///tmp/state.db", errors.New("locked"))
	resErr, ok := err.(*pkgerrors.ResourceError)
	require.True(t, ok)
	assert.Equal(t, "open", resErr.Operation)
	assert.Equal(t, "state store", resErr.Resource)
	assert.Contains(t, err.Error(), "locked")
}

func TestParseError(t *testing.T) {
	err := pkgerrors.WrapParse("json", "agent response", errors.New("unexpected EOF"))
	assert.Contains(t, err.Error(), "json")
	assert.Contains(t, err.Error(), "agent response")
	assert.Contains(t, err.Error(), "unexpected EOF")
}
