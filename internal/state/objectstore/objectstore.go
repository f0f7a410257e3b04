// Package objectstore stores region snapshots as JSON objects in an
// S3-compatible bucket through the MinIO client.
package objectstore

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/agentstation/modelwatch/pkg/errors"
	"github.com/agentstation/modelwatch/pkg/state"
)

// Client is the subset of the MinIO client the backend calls.
type Client interface {
	BucketExists(ctx context.Context, bucketName string) (bool, error)
	MakeBucket(ctx context.Context, bucketName string, opts minio.MakeBucketOptions) error
	PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
	GetObject(ctx context.Context, bucketName, objectName string, opts minio.GetObjectOptions) (io.ReadCloser, error)
}

// Config describes how to reach the bucket.
type Config struct {
	Endpoint  string // host[:port], scheme optional
	AccessKey string
	SecretKey string
	Bucket    string
	Prefix    string // optional key prefix inside the bucket
	UseSSL    bool
	Region    string
	Timeout   time.Duration
}

// Backend is a state.Backend over one bucket.
type Backend struct {
	client Client
	bucket string
	prefix string
}

var _ state.Backend = (*Backend)(nil)

// NewClient builds a MinIO client with bounded transport timeouts.
func NewClient(cfg Config) (Client, error) {
	endpoint := strings.TrimPrefix(cfg.Endpoint, "http://")
	endpoint = strings.TrimPrefix(endpoint, "https://")

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   timeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:          10,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   timeout,
		ResponseHeaderTimeout: timeout,
	}

	mc, err := minio.New(endpoint, &minio.Options{
		Creds:     credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure:    cfg.UseSSL,
		Region:    cfg.Region,
		Transport: transport,
	})
	if err != nil {
		return nil, errors.WrapResource("create", "minio client", endpoint, err)
	}
	return &clientWrapper{Client: mc}, nil
}

type clientWrapper struct {
	*minio.Client
}

func (c *clientWrapper) GetObject(ctx context.Context, bucketName, objectName string, opts minio.GetObjectOptions) (io.ReadCloser, error) {
	return c.Client.GetObject(ctx, bucketName, objectName, opts)
}

// Open connects using cfg and ensures the bucket exists.
func Open(ctx context.Context, cfg Config) (*Backend, error) {
	client, err := NewClient(cfg)
	if err != nil {
		return nil, err
	}
	return New(ctx, client, cfg.Bucket, cfg.Prefix)
}

// New wraps an existing client, creating bucket when it is missing.
func New(ctx context.Context, client Client, bucket, prefix string) (*Backend, error) {
	if bucket == "" {
		return nil, errors.NewConfigError("objectstore", "bucket is required", nil)
	}

	exists, err := client.BucketExists(ctx, bucket)
	if err != nil {
		return nil, errors.WrapResource("check", "bucket", bucket, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, errors.WrapResource("create", "bucket", bucket, err)
		}
	}

	return &Backend{client: client, bucket: bucket, prefix: strings.Trim(prefix, "/")}, nil
}

// ObjectName returns the key used for region.
func (b *Backend) ObjectName(region string) string {
	return path.Join(b.prefix, "model_state", region+".json")
}

// Load implements state.Backend.
func (b *Backend) Load(ctx context.Context, region string) (*state.Record, error) {
	name := b.ObjectName(region)

	reader, err := b.client.GetObject(ctx, b.bucket, name, minio.GetObjectOptions{})
	if err != nil {
		return nil, b.readError(region, err)
	}
	defer func() { _ = reader.Close() }()

	// the MinIO object reports a missing key on first read, not on open
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, b.readError(region, err)
	}

	var doc state.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, errors.WrapParse("json", name, err)
	}
	if doc.Region == "" {
		doc.Region = region
	}
	return doc.Record(), nil
}

func (b *Backend) readError(region string, err error) error {
	if minio.ToErrorResponse(err).Code == "NoSuchKey" {
		return errors.NewNotFoundError("state record", region)
	}
	return errors.WrapResource("get", "object", b.ObjectName(region), err)
}

// Put implements state.Backend.
func (b *Backend) Put(ctx context.Context, rec state.Record) error {
	data, err := json.MarshalIndent(rec.Document(), "", "  ")
	if err != nil {
		return errors.WrapParse("json", rec.Region, err)
	}

	name := b.ObjectName(rec.Region)
	_, err = b.client.PutObject(ctx, b.bucket, name, bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: "application/json"})
	if err != nil {
		return errors.WrapResource("put", "object", name, err)
	}
	return nil
}

// Close implements state.Backend.
func (b *Backend) Close() error { return nil }
