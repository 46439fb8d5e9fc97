package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"
)

// fakeBackend keeps bundles in memory.
type fakeBackend struct {
	objects map[string][]byte
	ensured bool
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{objects: make(map[string][]byte)}
}

func (f *fakeBackend) EnsureBucket(_ context.Context) error {
	f.ensured = true
	return nil
}

func (f *fakeBackend) StoreBundle(_ context.Context, setID string, bundle []byte) error {
	f.objects[bundleKey(setID)] = bundle
	return nil
}

func (f *fakeBackend) OpenBundle(_ context.Context, setID string) (io.ReadCloser, error) {
	data, ok := f.objects[bundleKey(setID)]
	if !ok {
		return nil, errors.New("no such object")
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (f *fakeBackend) RemoveBundle(_ context.Context, setID string) error {
	delete(f.objects, bundleKey(setID))
	return nil
}

func (f *fakeBackend) Bucket() string { return "bundles" }

func TestArchiveStoreRoundTrip(t *testing.T) {
	backend := newFakeBackend()
	archive := NewArchiveStore(backend)
	ctx := context.Background()

	if err := archive.EnsureBucket(ctx); err != nil {
		t.Fatalf("EnsureBucket: %v", err)
	}
	if !backend.ensured {
		t.Fatal("bucket not ensured")
	}

	setID := "aaaabbbbccccddddeeeeffff00001111"
	if err := archive.ArchiveBundle(ctx, setID, []byte("zip-bytes")); err != nil {
		t.Fatalf("ArchiveBundle: %v", err)
	}
	if _, ok := backend.objects[setID+".zip"]; !ok {
		t.Fatalf("bundle stored under wrong key: %v", backend.objects)
	}

	rc, err := archive.FetchBundle(ctx, setID)
	if err != nil {
		t.Fatalf("FetchBundle: %v", err)
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		t.Fatalf("read bundle: %v", err)
	}
	if string(data) != "zip-bytes" {
		t.Fatalf("bundle content = %q", string(data))
	}

	if err := archive.DeleteBundle(ctx, setID); err != nil {
		t.Fatalf("DeleteBundle: %v", err)
	}
	if _, err := archive.FetchBundle(ctx, setID); err == nil {
		t.Fatal("expected fetch to fail after delete")
	}
}

func TestArchiveBundleReplacesPrevious(t *testing.T) {
	backend := newFakeBackend()
	archive := NewArchiveStore(backend)
	ctx := context.Background()

	setID := "11112222333344445555666677778888"
	if err := archive.ArchiveBundle(ctx, setID, []byte("old")); err != nil {
		t.Fatalf("ArchiveBundle: %v", err)
	}
	if err := archive.ArchiveBundle(ctx, setID, []byte("new")); err != nil {
		t.Fatalf("ArchiveBundle: %v", err)
	}

	rc, err := archive.FetchBundle(ctx, setID)
	if err != nil {
		t.Fatalf("FetchBundle: %v", err)
	}
	defer rc.Close()
	data, _ := io.ReadAll(rc)
	if string(data) != "new" {
		t.Fatalf("bundle content = %q, want replacement", string(data))
	}
}
