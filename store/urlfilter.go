package store

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"noticewala/types"
)

// URLFilterConfig configures the Redis-backed seen-URL filter.
type URLFilterConfig struct {
	Addr     string // e.g. localhost:6379
	Password string
	DB       int
	Key      string // redis key for the bloom filter
	TTL      time.Duration
	// Capacity sets the initial BF.RESERVE capacity (number of items)
	Capacity int
	// ErrorRate sets the desired false positive probability (e.g. 0.001)
	ErrorRate float64
}

// URLFilter is a probabilistic seen-URL set on RedisBloom. The crawler
// consults it before fetching detail pages so a URL processed within
// the TTL window is skipped without a network round trip. A miss is
// authoritative; a hit may rarely be a false positive, which only
// causes a skipped fetch, never data loss, because Insert remains the
// real idempotency gate.
type URLFilter struct {
	client *redis.Client
	key    string
	ttl    time.Duration
}

// NewURLFilter creates the filter and verifies connectivity.
func NewURLFilter(cfg URLFilterConfig) (*URLFilter, error) {
	if cfg.Key == "" {
		cfg.Key = "announcements:seen"
	}
	if cfg.TTL == 0 {
		cfg.TTL = 24 * time.Hour
	}
	if cfg.Capacity == 0 {
		cfg.Capacity = 100000
	}
	if cfg.ErrorRate == 0 {
		cfg.ErrorRate = 0.001
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.Addr, err)
	}

	// Reserve the filter on first use. BF.RESERVE failure is non-fatal:
	// BF.ADD auto-creates the filter with server defaults.
	exists, err := client.Exists(ctx, cfg.Key).Result()
	if err == nil && exists == 0 {
		client.Do(ctx, "BF.RESERVE", cfg.Key, fmt.Sprintf("%f", cfg.ErrorRate), cfg.Capacity)
	}

	return &URLFilter{client: client, key: cfg.Key, ttl: cfg.TTL}, nil
}

func (f *URLFilter) Close() error {
	return f.client.Close()
}

// Seen checks whether the URL hash is in the filter.
func (f *URLFilter) Seen(ctx context.Context, rawURL string) (bool, error) {
	res, err := f.client.Do(ctx, "BF.EXISTS", f.key, HashURL(rawURL)).Result()
	if err != nil {
		return false, err
	}

	switch v := res.(type) {
	case int64:
		return v == 1, nil
	case string:
		return v == "1", nil
	default:
		return false, fmt.Errorf("unexpected BF.EXISTS response type %T: %v", res, res)
	}
}

// Mark inserts the URL hash and refreshes the key TTL, so the filter
// stays alive for ttl after the most recent insertion.
func (f *URLFilter) Mark(ctx context.Context, rawURL string) error {
	if err := f.client.Do(ctx, "BF.ADD", f.key, HashURL(rawURL)).Err(); err != nil {
		return err
	}
	return f.client.Expire(ctx, f.key, f.ttl).Err()
}

// HashURL normalizes a URL and returns its stable ID. Normalization:
// lowercase scheme and host, drop the fragment, strip common tracking
// query params, trim the trailing slash.
func HashURL(raw string) string {
	return types.GenerateID(normalizeURL(raw))
}

func normalizeURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil {
		return strings.ToLower(raw)
	}

	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	u.Fragment = ""

	q := u.Query()
	for k := range q {
		lk := strings.ToLower(k)
		if strings.HasPrefix(lk, "utm_") || lk == "fbclid" || lk == "gclid" {
			q.Del(k)
		}
	}
	u.RawQuery = q.Encode()

	return strings.TrimRight(u.String(), "/")
}
