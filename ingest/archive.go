package ingest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path"
	"time"

	"noticewala/types"
)

// ObjectStore is the slice of the S3 wrapper the archiver needs.
type ObjectStore interface {
	Put(ctx context.Context, bucket, key string, body io.Reader, contentType string) error
	Get(ctx context.Context, bucket, key string) (io.ReadCloser, error)
	Exists(ctx context.Context, bucket, key string) (bool, error)
}

// ErrNotArchived reports that no archive object exists for the key.
var ErrNotArchived = errors.New("announcement not archived")

// Archiver writes one JSON object per saved announcement so raw
// extractions survive database migrations and can be replayed.
type Archiver struct {
	store  ObjectStore
	bucket string
	prefix string
}

// NewArchiver wraps an object store. A nil store or empty bucket
// disables archival.
func NewArchiver(store ObjectStore, bucket, prefix string) *Archiver {
	if store == nil || bucket == "" {
		return nil
	}
	return &Archiver{store: store, bucket: bucket, prefix: prefix}
}

// Archive uploads the announcement as JSON under
// <prefix>/<source>/<yyyy-mm-dd>/<id>.json. Updates overwrite the
// object, so the archive always holds the latest state.
func (a *Archiver) Archive(ctx context.Context, ann *types.Announcement) error {
	payload, err := json.MarshalIndent(ann, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal announcement %s: %w", ann.ID, err)
	}

	key := a.key(ann.SourceName, ann.CreatedAt.UTC().Format(time.DateOnly), ann.ID)
	if err := a.store.Put(ctx, a.bucket, key, bytes.NewReader(payload), "application/json"); err != nil {
		return fmt.Errorf("archive %s: %w", key, err)
	}
	return nil
}

// Replay loads an archived announcement back from object storage. The
// day is the record's creation date in yyyy-mm-dd form.
func (a *Archiver) Replay(ctx context.Context, source, day, id string) (*types.Announcement, error) {
	key := a.key(source, day, id)

	ok, err := a.store.Exists(ctx, a.bucket, key)
	if err != nil {
		return nil, fmt.Errorf("head %s: %w", key, err)
	}
	if !ok {
		return nil, ErrNotArchived
	}

	body, err := a.store.Get(ctx, a.bucket, key)
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", key, err)
	}
	defer body.Close()

	var ann types.Announcement
	if err := json.NewDecoder(body).Decode(&ann); err != nil {
		return nil, fmt.Errorf("decode %s: %w", key, err)
	}
	return &ann, nil
}

func (a *Archiver) key(source, day, id string) string {
	return path.Join(a.prefix, source, day, id+".json")
}
