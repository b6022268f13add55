// Package store persists announcements and source bookkeeping. The
// ingestion coordinator only sees the Store interface; Postgres and
// the in-memory implementation are interchangeable.
package store

import (
	"context"
	"errors"
	"time"

	"noticewala/types"
)

var (
	// ErrAlreadyExists signals an insert that collided on the source
	// URL. Idempotent re-runs treat it as benign.
	ErrAlreadyExists = errors.New("announcement already exists")

	// ErrNotFound signals a lookup or update for a missing record.
	ErrNotFound = errors.New("not found")
)

// Store is the persistence surface of the pipeline. The source URL is
// the idempotency key: Insert fails with ErrAlreadyExists when a record
// with the same source URL is already stored.
type Store interface {
	// UpsertSource registers a source or refreshes its static fields.
	UpsertSource(ctx context.Context, src types.Source) error

	// TouchSource records one crawl attempt and folds the outcome
	// into the source's success rate.
	TouchSource(ctx context.Context, name string, success bool) error

	// Sources lists all registered sources.
	Sources(ctx context.Context) ([]types.Source, error)

	// GetBySourceURL fetches the announcement stored for a URL, or
	// ErrNotFound.
	GetBySourceURL(ctx context.Context, url string) (*types.Announcement, error)

	// Insert stores a new announcement. ErrAlreadyExists on a source
	// URL collision.
	Insert(ctx context.Context, ann *types.Announcement) error

	// Update rewrites an existing announcement by ID. ErrNotFound if
	// the record is missing.
	Update(ctx context.Context, ann *types.Announcement) error

	// RecentWindow returns announcements created at or after since,
	// newest first, capped at limit. It is the dedup scan window.
	RecentWindow(ctx context.Context, since time.Time, limit int) ([]*types.Announcement, error)

	// MarkDuplicate flags id as a duplicate of rootID.
	MarkDuplicate(ctx context.Context, id, rootID string) error

	// Count reports the number of stored announcements.
	Count(ctx context.Context) (int, error)

	Close() error
}
