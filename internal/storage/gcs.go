package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/jjudge-oj/fps-import/config"
	"google.golang.org/api/option"
)

// GCSBackend archives bundles in a Google Cloud Storage bucket.
type GCSBackend struct {
	client    *storage.Client
	bucket    string
	projectID string
}

// NewGCSClient constructs a GCS-backed archive from config.
func NewGCSClient(ctx context.Context, cfg config.GCSConfig) (*GCSBackend, error) {
	if strings.TrimSpace(cfg.Bucket) == "" {
		return nil, errors.New("gcs bucket is required")
	}

	var opts []option.ClientOption
	if strings.TrimSpace(cfg.CredentialsFile) != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}

	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, err
	}

	return &GCSBackend{
		client:    client,
		bucket:    cfg.Bucket,
		projectID: cfg.ProjectID,
	}, nil
}

// EnsureBucket ensures the configured bucket exists, creating it when the
// config names a project to create it in.
func (g *GCSBackend) EnsureBucket(ctx context.Context) error {
	_, err := g.client.Bucket(g.bucket).Attrs(ctx)
	if err == nil {
		return nil
	}
	if !errors.Is(err, storage.ErrBucketNotExist) {
		return err
	}
	if strings.TrimSpace(g.projectID) == "" {
		return errors.New("gcs project id is required to create bucket")
	}
	return g.client.Bucket(g.bucket).Create(ctx, g.projectID, nil)
}

// StoreBundle uploads a set's zip, tagging it with the set id so bundles can
// be traced back from the bucket listing alone.
func (g *GCSBackend) StoreBundle(ctx context.Context, setID string, bundle []byte) error {
	writer := g.client.Bucket(g.bucket).Object(bundleKey(setID)).NewWriter(ctx)
	writer.ContentType = bundleContentType
	writer.Metadata = map[string]string{"test-case-set": setID}
	if _, err := io.Copy(writer, bytes.NewReader(bundle)); err != nil {
		_ = writer.Close()
		return err
	}
	return writer.Close()
}

// OpenBundle opens a reader for a set's archived zip.
func (g *GCSBackend) OpenBundle(ctx context.Context, setID string) (io.ReadCloser, error) {
	return g.client.Bucket(g.bucket).Object(bundleKey(setID)).NewReader(ctx)
}

// RemoveBundle deletes a set's archived zip.
func (g *GCSBackend) RemoveBundle(ctx context.Context, setID string) error {
	return g.client.Bucket(g.bucket).Object(bundleKey(setID)).Delete(ctx)
}

// Bucket returns the configured bucket name.
func (g *GCSBackend) Bucket() string {
	return g.bucket
}
