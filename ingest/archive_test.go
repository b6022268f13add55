package ingest

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"testing"
	"time"

	"noticewala/types"
)

// fakeObjectStore keeps objects in a map keyed bucket/key. Link
// workers archive concurrently, so access is locked.
type fakeObjectStore struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func newFakeObjectStore() *fakeObjectStore {
	return &fakeObjectStore{objects: make(map[string][]byte)}
}

func (f *fakeObjectStore) Put(_ context.Context, bucket, key string, body io.Reader, _ string) error {
	data, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[bucket+"/"+key] = data
	return nil
}

func (f *fakeObjectStore) Get(_ context.Context, bucket, key string) (io.ReadCloser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.objects[bucket+"/"+key]
	if !ok {
		return nil, fmt.Errorf("no such key %s", key)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (f *fakeObjectStore) Exists(_ context.Context, bucket, key string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.objects[bucket+"/"+key]
	return ok, nil
}

func (f *fakeObjectStore) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.objects)
}

func TestNewArchiverDisabled(t *testing.T) {
	if NewArchiver(newFakeObjectStore(), "", "raw") != nil {
		t.Error("empty bucket must disable archival")
	}
	if NewArchiver(nil, "notices", "raw") != nil {
		t.Error("nil store must disable archival")
	}
}

func TestArchiveReplayRoundTrip(t *testing.T) {
	fake := newFakeObjectStore()
	arch := NewArchiver(fake, "notices", "raw")
	ctx := context.Background()

	created := time.Date(2024, 3, 15, 8, 0, 0, 0, time.UTC)
	ann := &types.Announcement{
		ID:         "abc123",
		Title:      "SSC CGL Notification 2024",
		SourceName: "ssc",
		SourceURL:  "https://ssc.gov.in/cgl",
		CreatedAt:  created,
		UpdatedAt:  created,
	}
	if err := arch.Archive(ctx, ann); err != nil {
		t.Fatalf("Archive: %v", err)
	}

	if _, ok := fake.objects["notices/raw/ssc/2024-03-15/abc123.json"]; !ok {
		t.Fatalf("dated key missing, stored: %v", storedKeys(fake))
	}

	got, err := arch.Replay(ctx, "ssc", "2024-03-15", "abc123")
	if err != nil {
		t.Fatalf("Replay: %v", err)
	}
	if got.ID != ann.ID || got.Title != ann.Title || !got.CreatedAt.Equal(created) {
		t.Errorf("round trip mismatch: %+v", got)
	}
}

func TestReplayMissingObject(t *testing.T) {
	arch := NewArchiver(newFakeObjectStore(), "notices", "raw")

	_, err := arch.Replay(context.Background(), "ssc", "2024-03-15", "missing")
	if !errors.Is(err, ErrNotArchived) {
		t.Fatalf("expected ErrNotArchived, got %v", err)
	}
}

func storedKeys(f *fakeObjectStore) []string {
	out := make([]string, 0, len(f.objects))
	for k := range f.objects {
		out = append(out, k)
	}
	return out
}
