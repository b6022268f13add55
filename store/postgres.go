package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"noticewala/types"
)

const pgUniqueViolation = "23505"

// Postgres implements Store on PostgreSQL. Structured sub-documents
// (exam dates, location, confidence, lists) live in jsonb columns;
// everything queried on is a plain column.
type Postgres struct {
	db *sql.DB
	sb sq.StatementBuilderType
}

var _ Store = (*Postgres)(nil)

// NewPostgres opens a connection pool and runs migrations.
func NewPostgres(ctx context.Context, dsn string) (*Postgres, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	p := &Postgres{
		db: db,
		sb: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
	if err := p.migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return p, nil
}

func (p *Postgres) migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS sources (
			name             text PRIMARY KEY,
			base_url         text NOT NULL,
			type             text NOT NULL,
			region           text,
			categories       jsonb NOT NULL DEFAULT '[]',
			update_frequency text,
			last_crawled     timestamptz,
			success_rate     double precision NOT NULL DEFAULT 0,
			total_crawls     integer NOT NULL DEFAULT 0
		)`,
		`CREATE TABLE IF NOT EXISTS announcements (
			id                   text PRIMARY KEY,
			title                text NOT NULL,
			summary              text,
			content              text,
			source_name          text NOT NULL,
			source_url           text NOT NULL UNIQUE,
			publish_date         timestamptz,
			exam_dates           jsonb NOT NULL DEFAULT '[]',
			application_deadline timestamptz,
			eligibility          text,
			location             jsonb NOT NULL DEFAULT '{}',
			categories           jsonb NOT NULL DEFAULT '[]',
			tags                 jsonb NOT NULL DEFAULT '[]',
			priority_score       double precision NOT NULL DEFAULT 0,
			confidence           jsonb NOT NULL DEFAULT '{}',
			verified             boolean NOT NULL DEFAULT false,
			duplicate            boolean NOT NULL DEFAULT false,
			duplicate_of         text,
			created_at           timestamptz NOT NULL,
			updated_at           timestamptz NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS announcements_created_at_idx ON announcements (created_at DESC)`,
		`CREATE INDEX IF NOT EXISTS announcements_source_name_idx ON announcements (source_name)`,
	}
	for _, stmt := range stmts {
		if _, err := p.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

func (p *Postgres) UpsertSource(ctx context.Context, src types.Source) error {
	categories, err := json.Marshal(src.Categories)
	if err != nil {
		return fmt.Errorf("marshal source categories: %w", err)
	}

	query, args, err := p.sb.Insert("sources").
		Columns("name", "base_url", "type", "region", "categories", "update_frequency").
		Values(src.Name, src.BaseURL, src.Type, src.Region, categories, src.UpdateFrequency).
		Suffix(`ON CONFLICT (name) DO UPDATE SET
			base_url = EXCLUDED.base_url,
			type = EXCLUDED.type,
			region = EXCLUDED.region,
			categories = EXCLUDED.categories,
			update_frequency = EXCLUDED.update_frequency`).
		ToSql()
	if err != nil {
		return err
	}
	_, err = p.db.ExecContext(ctx, query, args...)
	return err
}

func (p *Postgres) TouchSource(ctx context.Context, name string, success bool) error {
	hit := 0.0
	if success {
		hit = 1.0
	}
	res, err := p.db.ExecContext(ctx,
		`UPDATE sources SET
			last_crawled = now(),
			success_rate = (success_rate * total_crawls + $2) / (total_crawls + 1),
			total_crawls = total_crawls + 1
		WHERE name = $1`, name, hit)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

func (p *Postgres) Sources(ctx context.Context) ([]types.Source, error) {
	query, args, err := p.sb.Select(
		"name", "base_url", "type", "region", "categories",
		"update_frequency", "last_crawled", "success_rate", "total_crawls").
		From("sources").
		OrderBy("name").
		ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := p.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []types.Source
	for rows.Next() {
		var src types.Source
		var categories []byte
		var region, frequency sql.NullString
		var lastCrawled sql.NullTime
		if err := rows.Scan(&src.Name, &src.BaseURL, &src.Type, &region, &categories,
			&frequency, &lastCrawled, &src.SuccessRate, &src.TotalCrawls); err != nil {
			return nil, err
		}
		src.Region = region.String
		src.UpdateFrequency = frequency.String
		if lastCrawled.Valid {
			t := lastCrawled.Time
			src.LastCrawled = &t
		}
		if err := json.Unmarshal(categories, &src.Categories); err != nil {
			return nil, fmt.Errorf("unmarshal source categories: %w", err)
		}
		out = append(out, src)
	}
	return out, rows.Err()
}

var announcementColumns = []string{
	"id", "title", "summary", "content", "source_name", "source_url",
	"publish_date", "exam_dates", "application_deadline", "eligibility",
	"location", "categories", "tags", "priority_score", "confidence",
	"verified", "duplicate", "duplicate_of", "created_at", "updated_at",
}

func (p *Postgres) GetBySourceURL(ctx context.Context, url string) (*types.Announcement, error) {
	query, args, err := p.sb.Select(announcementColumns...).
		From("announcements").
		Where(sq.Eq{"source_url": url}).
		ToSql()
	if err != nil {
		return nil, err
	}
	return p.scanOne(p.db.QueryRowContext(ctx, query, args...))
}

func (p *Postgres) Insert(ctx context.Context, ann *types.Announcement) error {
	values, err := announcementValues(ann)
	if err != nil {
		return err
	}

	query, args, err := p.sb.Insert("announcements").
		Columns(announcementColumns...).
		Values(values...).
		ToSql()
	if err != nil {
		return err
	}

	if _, err := p.db.ExecContext(ctx, query, args...); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == pgUniqueViolation {
			return ErrAlreadyExists
		}
		return err
	}
	return nil
}

func (p *Postgres) Update(ctx context.Context, ann *types.Announcement) error {
	values, err := announcementValues(ann)
	if err != nil {
		return err
	}

	update := p.sb.Update("announcements")
	// Skip id (key) and created_at (immutable).
	for i, col := range announcementColumns {
		if col == "id" || col == "created_at" {
			continue
		}
		update = update.Set(col, values[i])
	}
	query, args, err := update.Where(sq.Eq{"id": ann.ID}).ToSql()
	if err != nil {
		return err
	}

	res, err := p.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

func (p *Postgres) RecentWindow(ctx context.Context, since time.Time, limit int) ([]*types.Announcement, error) {
	builder := p.sb.Select(announcementColumns...).
		From("announcements").
		Where(sq.GtOrEq{"created_at": since}).
		OrderBy("created_at DESC", "id ASC")
	if limit > 0 {
		builder = builder.Limit(uint64(limit))
	}
	query, args, err := builder.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := p.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*types.Announcement
	for rows.Next() {
		ann, err := p.scanOne(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, ann)
	}
	return out, rows.Err()
}

func (p *Postgres) MarkDuplicate(ctx context.Context, id, rootID string) error {
	query, args, err := p.sb.Update("announcements").
		Set("duplicate", true).
		Set("duplicate_of", rootID).
		Set("updated_at", time.Now().UTC()).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return err
	}
	res, err := p.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

func (p *Postgres) Count(ctx context.Context) (int, error) {
	var n int
	err := p.db.QueryRowContext(ctx, `SELECT count(*) FROM announcements`).Scan(&n)
	return n, err
}

func (p *Postgres) Close() error { return p.db.Close() }

func announcementValues(ann *types.Announcement) ([]interface{}, error) {
	examDates, err := json.Marshal(ann.ExamDates)
	if err != nil {
		return nil, fmt.Errorf("marshal exam dates: %w", err)
	}
	location, err := json.Marshal(ann.Location)
	if err != nil {
		return nil, fmt.Errorf("marshal location: %w", err)
	}
	categories, err := json.Marshal(ann.Categories)
	if err != nil {
		return nil, fmt.Errorf("marshal categories: %w", err)
	}
	tags, err := json.Marshal(ann.Tags)
	if err != nil {
		return nil, fmt.Errorf("marshal tags: %w", err)
	}
	confidence, err := json.Marshal(ann.Confidence)
	if err != nil {
		return nil, fmt.Errorf("marshal confidence: %w", err)
	}

	return []interface{}{
		ann.ID, ann.Title, ann.Summary, ann.Content, ann.SourceName, ann.SourceURL,
		ann.PublishDate, examDates, ann.ApplicationDeadline, ann.Eligibility,
		location, categories, tags, ann.PriorityScore, confidence,
		ann.Verified, ann.Duplicate, nullableString(ann.DuplicateOf),
		ann.CreatedAt, ann.UpdatedAt,
	}, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func (p *Postgres) scanOne(row rowScanner) (*types.Announcement, error) {
	var ann types.Announcement
	var summary, content, eligibility, duplicateOf sql.NullString
	var publishDate, deadline sql.NullTime
	var examDates, location, categories, tags, confidence []byte

	err := row.Scan(&ann.ID, &ann.Title, &summary, &content, &ann.SourceName, &ann.SourceURL,
		&publishDate, &examDates, &deadline, &eligibility,
		&location, &categories, &tags, &ann.PriorityScore, &confidence,
		&ann.Verified, &ann.Duplicate, &duplicateOf,
		&ann.CreatedAt, &ann.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	ann.Summary = summary.String
	ann.Content = content.String
	ann.Eligibility = eligibility.String
	ann.DuplicateOf = duplicateOf.String
	if publishDate.Valid {
		t := publishDate.Time
		ann.PublishDate = &t
	}
	if deadline.Valid {
		t := deadline.Time
		ann.ApplicationDeadline = &t
	}
	for _, pair := range []struct {
		raw []byte
		dst interface{}
	}{
		{examDates, &ann.ExamDates},
		{location, &ann.Location},
		{categories, &ann.Categories},
		{tags, &ann.Tags},
		{confidence, &ann.Confidence},
	} {
		if err := json.Unmarshal(pair.raw, pair.dst); err != nil {
			return nil, fmt.Errorf("unmarshal announcement column: %w", err)
		}
	}
	return &ann, nil
}

func nullableString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
