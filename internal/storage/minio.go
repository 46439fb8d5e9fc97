package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"

	"github.com/jjudge-oj/fps-import/config"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinioBackend archives bundles in a MinIO (or S3-compatible) bucket.
type MinioBackend struct {
	client *minio.Client
	bucket string
}

// NewMinioClient constructs a MinIO-backed archive from config.
func NewMinioClient(cfg config.MinioConfig) (*MinioBackend, error) {
	if strings.TrimSpace(cfg.Endpoint) == "" {
		return nil, errors.New("minio endpoint is required")
	}
	if strings.TrimSpace(cfg.AccessKey) == "" || strings.TrimSpace(cfg.SecretKey) == "" {
		return nil, errors.New("minio access key and secret key are required")
	}
	if strings.TrimSpace(cfg.Bucket) == "" {
		return nil, errors.New("minio bucket is required")
	}

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, err
	}

	return &MinioBackend{
		client: client,
		bucket: cfg.Bucket,
	}, nil
}

// EnsureBucket ensures the configured bucket exists.
func (m *MinioBackend) EnsureBucket(ctx context.Context) error {
	exists, err := m.client.BucketExists(ctx, m.bucket)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	return m.client.MakeBucket(ctx, m.bucket, minio.MakeBucketOptions{})
}

// StoreBundle uploads a set's zip, tagging it with the set id so bundles can
// be traced back from the bucket listing alone.
func (m *MinioBackend) StoreBundle(ctx context.Context, setID string, bundle []byte) error {
	_, err := m.client.PutObject(
		ctx,
		m.bucket,
		bundleKey(setID),
		bytes.NewReader(bundle),
		int64(len(bundle)),
		minio.PutObjectOptions{
			ContentType:  bundleContentType,
			UserMetadata: map[string]string{"test-case-set": setID},
		},
	)
	return err
}

// OpenBundle opens a reader for a set's archived zip.
func (m *MinioBackend) OpenBundle(ctx context.Context, setID string) (io.ReadCloser, error) {
	return m.client.GetObject(ctx, m.bucket, bundleKey(setID), minio.GetObjectOptions{})
}

// RemoveBundle deletes a set's archived zip.
func (m *MinioBackend) RemoveBundle(ctx context.Context, setID string) error {
	return m.client.RemoveObject(ctx, m.bucket, bundleKey(setID), minio.RemoveObjectOptions{})
}

// Bucket returns the configured bucket name.
func (m *MinioBackend) Bucket() string {
	return m.bucket
}
