package objectstore_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"testing"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/modelwatch/internal/state/objectstore"
	"github.com/agentstation/modelwatch/pkg/errors"
	"github.com/agentstation/modelwatch/pkg/state"
)

type mockClient struct {
	mock.Mock
}

func (m *mockClient) BucketExists(ctx context.Context, bucketName string) (bool, error) {
	args := m.Called(ctx, bucketName)
	return args.Bool(0), args.Error(1)
}

func (m *mockClient) MakeBucket(ctx context.Context, bucketName string, opts minio.MakeBucketOptions) error {
	args := m.Called(ctx, bucketName, opts)
	return args.Error(0)
}

func (m *mockClient) PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error) {
	args := m.Called(ctx, bucketName, objectName, reader, objectSize, opts)
	return args.Get(0).(minio.UploadInfo), args.Error(1)
}

func (m *mockClient) GetObject(ctx context.Context, bucketName, objectName string, opts minio.GetObjectOptions) (io.ReadCloser, error) {
	args := m.Called(ctx, bucketName, objectName, opts)
	if rc, ok := args.Get(0).(io.ReadCloser); ok {
		return rc, args.Error(1)
	}
	return nil, args.Error(1)
}

func TestNewCreatesMissingBucket(t *testing.T) {
	ctx := context.Background()
	client := &mockClient{}
	client.On("BucketExists", ctx, "state").Return(false, nil)
	client.On("MakeBucket", ctx, "state", minio.MakeBucketOptions{}).Return(nil)

	b, err := objectstore.New(ctx, client, "state", "/prod/")
	require.NoError(t, err)
	assert.Equal(t, "prod/model_state/us-east-1.json", b.ObjectName("us-east-1"))
	client.AssertExpectations(t)
}

func TestPutThenLoad(t *testing.T) {
	ctx := context.Background()
	client := &mockClient{}
	client.On("BucketExists", ctx, "state").Return(true, nil)

	var written []byte
	client.On("PutObject", ctx, "state", "model_state/us-east-1.json", mock.Anything, mock.Anything,
		minio.PutObjectOptions{ContentType: "application/json"}).
		Run(func(args mock.Arguments) {
			written, _ = io.ReadAll(args.Get(3).(io.Reader))
		}).
		Return(minio.UploadInfo{}, nil)

	b, err := objectstore.New(ctx, client, "state", "")
	require.NoError(t, err)
	require.NoError(t, b.Put(ctx, state.Record{Region: "us-east-1", ItemIDs: []string{"m1"}}))

	var doc state.Document
	require.NoError(t, json.Unmarshal(written, &doc))
	assert.Equal(t, []string{"m1"}, doc.ModelIDs)

	client.On("GetObject", ctx, "state", "model_state/us-east-1.json", minio.GetObjectOptions{}).
		Return(io.NopCloser(bytes.NewReader(written)), nil)

	rec, err := b.Load(ctx, "us-east-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"m1"}, rec.ItemIDs)
}

// failingReader mimics a MinIO object whose key does not exist.
type failingReader struct{ err error }

func (f failingReader) Read([]byte) (int, error) { return 0, f.err }
func (f failingReader) Close() error             { return nil }

func TestLoadNoSuchKey(t *testing.T) {
	ctx := context.Background()
	client := &mockClient{}
	client.On("BucketExists", ctx, "state").Return(true, nil)
	client.On("GetObject", ctx, "state", "model_state/eu-west-1.json", minio.GetObjectOptions{}).
		Return(failingReader{err: minio.ErrorResponse{Code: "NoSuchKey", StatusCode: http.StatusNotFound}}, nil)

	b, err := objectstore.New(ctx, client, "state", "")
	require.NoError(t, err)

	_, err = b.Load(ctx, "eu-west-1")
	assert.True(t, errors.IsNotFound(err))
}

func TestNewRequiresBucket(t *testing.T) {
	_, err := objectstore.New(context.Background(), &mockClient{}, "", "")
	assert.True(t, errors.IsValidationError(err))
}
