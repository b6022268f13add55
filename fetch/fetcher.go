package fetch

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/url"
	"sync"
	"time"

	"noticewala/config"
	"noticewala/types"
)

// userAgents is the identifying-header pool; one is picked at random
// per request.
var userAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:128.0) Gecko/20100101 Firefox/128.0",
}

// Error is a fetch failure. Retryable failures were already retried up
// to the configured bound before being returned.
type Error struct {
	URL        string
	StatusCode int
	Retryable  bool
	Err        error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
	}
	return fmt.Sprintf("fetch %s: status %d", e.URL, e.StatusCode)
}

func (e *Error) Unwrap() error { return e.Err }

// Config holds fetcher behavior knobs. Zero values fall back to the
// package defaults in config.
type Config struct {
	Timeout      time.Duration
	MaxRetries   int
	BackoffBase  time.Duration
	PerHostDelay time.Duration
}

// Fetcher retrieves raw documents over HTTP with bounded retries,
// exponential backoff with jitter, and a minimum delay between
// requests to the same host. It never panics past its boundary;
// failures come back as *Error values.
type Fetcher struct {
	client *http.Client
	cfg    Config

	mu      sync.Mutex
	lastHit map[string]time.Time
	rng     *rand.Rand
}

// New builds a Fetcher; a nil http.Client gets a default with the
// configured hard timeout.
func New(cfg Config, client *http.Client) *Fetcher {
	if cfg.Timeout == 0 {
		cfg.Timeout = config.DefaultFetchTimeout
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = config.DefaultMaxRetries
	}
	if cfg.BackoffBase == 0 {
		cfg.BackoffBase = config.DefaultBackoffBase
	}
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}

	return &Fetcher{
		client:  client,
		cfg:     cfg,
		lastHit: make(map[string]time.Time),
		rng:     rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Fetch retrieves one URL for the named source. Retries are limited to
// retryable status codes (429, 5xx) and transport errors; anything
// else fails immediately.
func (f *Fetcher) Fetch(ctx context.Context, sourceName, rawURL string) (*types.RawDocument, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return nil, &Error{URL: rawURL, Err: fmt.Errorf("parse url: %w", err)}
	}

	if err := f.waitForHost(ctx, parsed.Host); err != nil {
		return nil, &Error{URL: rawURL, Err: err}
	}

	var lastErr *Error
	for attempt := 0; attempt <= f.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			if err := f.sleepBackoff(ctx, attempt); err != nil {
				return nil, &Error{URL: rawURL, Err: err}
			}
		}

		doc, ferr := f.fetchOnce(ctx, sourceName, rawURL)
		if ferr == nil {
			return doc, nil
		}

		lastErr = ferr
		if !ferr.Retryable {
			return nil, ferr
		}
	}

	return nil, lastErr
}

func (f *Fetcher) fetchOnce(ctx context.Context, sourceName, rawURL string) (*types.RawDocument, *Error) {
	reqCtx, cancel := context.WithTimeout(ctx, f.cfg.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, &Error{URL: rawURL, Err: fmt.Errorf("build request: %w", err)}
	}
	req.Header.Set("User-Agent", f.pickUserAgent())
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")

	resp, err := f.client.Do(req)
	if err != nil {
		// Transport errors (refused, reset, timeout) are retryable.
		return nil, &Error{URL: rawURL, Retryable: true, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
		return nil, &Error{URL: rawURL, StatusCode: resp.StatusCode, Retryable: true}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &Error{URL: rawURL, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &Error{URL: rawURL, Retryable: true, Err: fmt.Errorf("read body: %w", err)}
	}

	return &types.RawDocument{
		SourceName: sourceName,
		URL:        rawURL,
		FetchedAt:  time.Now().UTC(),
		StatusCode: resp.StatusCode,
		Body:       body,
	}, nil
}

// waitForHost enforces the per-host minimum delay. The reservation is
// taken under the lock so concurrent workers queue up instead of
// hammering one host.
func (f *Fetcher) waitForHost(ctx context.Context, host string) error {
	if f.cfg.PerHostDelay <= 0 || host == "" {
		return nil
	}

	f.mu.Lock()
	now := time.Now()
	next := f.lastHit[host].Add(f.cfg.PerHostDelay)
	if next.Before(now) {
		next = now
	}
	f.lastHit[host] = next
	f.mu.Unlock()

	wait := time.Until(next)
	if wait <= 0 {
		return nil
	}

	timer := time.NewTimer(wait)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (f *Fetcher) sleepBackoff(ctx context.Context, attempt int) error {
	backoff := f.cfg.BackoffBase * time.Duration(1<<uint(attempt-1))

	f.mu.Lock()
	jitter := time.Duration(f.rng.Int63n(int64(f.cfg.BackoffBase)))
	f.mu.Unlock()

	timer := time.NewTimer(backoff + jitter)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (f *Fetcher) pickUserAgent() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return userAgents[f.rng.Intn(len(userAgents))]
}
