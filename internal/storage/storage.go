// Package storage archives packaged test-data bundles in object storage so a
// batch run leaves an auditable copy of every problem's uploaded data.
package storage

import (
	"context"
	"io"
)

const bundleContentType = "application/zip"

// Backend stores one zip bundle per test-case set, keyed by the set id.
type Backend interface {
	EnsureBucket(ctx context.Context) error
	StoreBundle(ctx context.Context, setID string, bundle []byte) error
	OpenBundle(ctx context.Context, setID string) (io.ReadCloser, error)
	RemoveBundle(ctx context.Context, setID string) error
	Bucket() string
}

// ArchiveStore is the provider-agnostic face the importer talks to.
type ArchiveStore struct {
	backend Backend
}

// NewArchiveStore constructs an ArchiveStore over the provided backend.
func NewArchiveStore(backend Backend) *ArchiveStore {
	return &ArchiveStore{backend: backend}
}

// EnsureBucket ensures the configured bucket exists.
func (s *ArchiveStore) EnsureBucket(ctx context.Context) error {
	return s.backend.EnsureBucket(ctx)
}

// ArchiveBundle stores the packaged zip for a test-case set, replacing any
// previous bundle under the same set id.
func (s *ArchiveStore) ArchiveBundle(ctx context.Context, setID string, bundle []byte) error {
	return s.backend.StoreBundle(ctx, setID, bundle)
}

// FetchBundle opens a reader for a previously archived bundle.
func (s *ArchiveStore) FetchBundle(ctx context.Context, setID string) (io.ReadCloser, error) {
	return s.backend.OpenBundle(ctx, setID)
}

// DeleteBundle removes an archived bundle.
func (s *ArchiveStore) DeleteBundle(ctx context.Context, setID string) error {
	return s.backend.RemoveBundle(ctx, setID)
}

// Bucket returns the configured bucket name.
func (s *ArchiveStore) Bucket() string {
	return s.backend.Bucket()
}

// bundleKey maps a test-case-set id to its object key.
func bundleKey(setID string) string {
	return setID + ".zip"
}
