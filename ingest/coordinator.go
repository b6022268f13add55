package ingest

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"noticewala/canonical"
	"noticewala/config"
	"noticewala/dedup"
	"noticewala/extraction"
	"noticewala/sources"
	"noticewala/store"
	"noticewala/types"
)

// Fetcher is the slice of the HTTP fetcher the coordinator needs.
type Fetcher interface {
	Fetch(ctx context.Context, sourceName, rawURL string) (*types.RawDocument, error)
}

// SeenFilter is the optional probabilistic seen-URL gate. A hit skips
// the detail fetch; persistence stays the real idempotency check.
type SeenFilter interface {
	Seen(ctx context.Context, rawURL string) (bool, error)
	Mark(ctx context.Context, rawURL string) error
}

// Coordinator drives crawl cycles across all registered sources.
type Coordinator struct {
	fetcher   Fetcher
	registry  *sources.Registry
	extractor *extraction.Service
	detector  *dedup.Detector
	store     store.Store

	// Optional collaborators; nil disables the feature.
	publisher EventPublisher
	archiver  *Archiver
	seen      SeenFilter

	sourceWorkers int
	linkWorkers   int
	sourceBudget  time.Duration
	dedupWindow   time.Duration
	dedupLimit    int

	mu        sync.RWMutex
	lastCycle *types.CycleSummary
}

// Options carries the optional collaborators for NewCoordinator.
type Options struct {
	Publisher EventPublisher
	Archiver  *Archiver
	Seen      SeenFilter
}

// NewCoordinator wires the pipeline. Zero-valued knobs in settings
// fall back to the package defaults.
func NewCoordinator(s config.Settings, fetcher Fetcher, registry *sources.Registry,
	extractor *extraction.Service, detector *dedup.Detector, st store.Store, opts Options) *Coordinator {

	c := &Coordinator{
		fetcher:       fetcher,
		registry:      registry,
		extractor:     extractor,
		detector:      detector,
		store:         st,
		publisher:     opts.Publisher,
		archiver:      opts.Archiver,
		seen:          opts.Seen,
		sourceWorkers: s.SourceWorkers,
		linkWorkers:   s.LinkWorkers,
		sourceBudget:  s.SourceBudget,
		dedupWindow:   s.DedupWindow,
		dedupLimit:    s.DedupWindowLimit,
	}
	if c.sourceWorkers <= 0 {
		c.sourceWorkers = config.DefaultSourceWorkers
	}
	if c.linkWorkers <= 0 {
		c.linkWorkers = config.DefaultLinkWorkers
	}
	if c.sourceBudget <= 0 {
		c.sourceBudget = config.DefaultSourceBudget
	}
	if c.dedupWindow <= 0 {
		c.dedupWindow = config.DefaultDedupWindow
	}
	if c.dedupLimit <= 0 {
		c.dedupLimit = config.DefaultDedupWindowLimit
	}
	return c
}

// RunCycle crawls every registered source, then runs one duplicate
// detection pass over the recent window. One bad source never aborts
// the cycle.
func (c *Coordinator) RunCycle(ctx context.Context) types.CycleSummary {
	started := time.Now().UTC()
	extractors := c.registry.All()

	results := make([]types.BatchResult, len(extractors))
	sem := make(chan struct{}, c.sourceWorkers)
	var wg sync.WaitGroup

	for i, ext := range extractors {
		wg.Add(1)
		go func(i int, ext sources.Extractor) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			results[i] = c.CrawlSource(ctx, ext)
		}(i, ext)
	}
	wg.Wait()

	duplicates := c.runDedup(ctx)

	summary := types.CycleSummary{
		Success:         true,
		TotalSources:    len(extractors),
		DuplicatesFound: duplicates,
		StartedAt:       started,
		FinishedAt:      time.Now().UTC(),
		Results:         results,
	}
	for _, res := range results {
		if res.Success {
			summary.SuccessfulCrawls++
		} else {
			summary.FailedCrawls++
			summary.Success = false
		}
		summary.TotalSaved += res.SavedCount
	}
	summary.DurationSeconds = summary.FinishedAt.Sub(started).Seconds()

	c.mu.Lock()
	c.lastCycle = &summary
	c.mu.Unlock()

	log.Printf("cycle complete: %d/%d sources ok, %d saved, %d duplicates, %.1fs",
		summary.SuccessfulCrawls, summary.TotalSources, summary.TotalSaved,
		summary.DuplicatesFound, summary.DurationSeconds)
	return summary
}

// RunSource crawls a single source by name, then runs the dedup pass.
func (c *Coordinator) RunSource(ctx context.Context, name string) (types.BatchResult, error) {
	ext, ok := c.registry.Get(name)
	if !ok {
		return types.BatchResult{}, fmt.Errorf("unknown source %q", name)
	}
	result := c.CrawlSource(ctx, ext)
	c.runDedup(ctx)
	return result, nil
}

// Archiver returns the archive collaborator, nil when archival is off.
func (c *Coordinator) Archiver() *Archiver {
	return c.archiver
}

// LastCycle returns the most recent cycle summary, if any.
func (c *Coordinator) LastCycle() *types.CycleSummary {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lastCycle
}

// CrawlSource runs one source end to end under its wall-clock budget.
// A panic in extractor code is contained here and reported as a failed
// crawl.
func (c *Coordinator) CrawlSource(ctx context.Context, ext sources.Extractor) (result types.BatchResult) {
	started := time.Now().UTC()
	result = types.BatchResult{
		Source:    ext.Name(),
		Timestamp: started,
	}
	defer func() {
		if r := recover(); r != nil {
			log.Printf("crawl %s: panic recovered: %v", ext.Name(), r)
			result.Success = false
			result.Error = fmt.Sprintf("panic: %v", r)
		}
		result.DurationSeconds = time.Since(started).Seconds()
	}()

	ctx, cancel := context.WithTimeout(ctx, c.sourceBudget)
	defer cancel()

	if err := c.store.UpsertSource(ctx, ext.Source()); err != nil {
		log.Printf("crawl %s: upsert source: %v", ext.Name(), err)
	}

	links, err := c.discover(ctx, ext)
	if err != nil {
		result.Error = err.Error()
		c.touchSource(ext.Name(), false)
		return result
	}

	var mu sync.Mutex
	sem := make(chan struct{}, c.linkWorkers)
	var wg sync.WaitGroup

	for _, link := range links {
		wg.Add(1)
		go func(link sources.Link) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			saved, failed := c.safeProcessLink(ctx, ext, link)
			mu.Lock()
			result.CrawledCount++
			if saved {
				result.SavedCount++
			}
			if failed {
				result.FailedCount++
			}
			mu.Unlock()
		}(link)
	}
	wg.Wait()

	// Per-item failures do not fail the source; an unreachable listing does.
	result.Success = true
	c.touchSource(ext.Name(), true)

	log.Printf("crawl %s: %d links, %d saved, %d failed in %.1fs",
		ext.Name(), result.CrawledCount, result.SavedCount, result.FailedCount,
		time.Since(started).Seconds())
	return result
}

// discover fetches the listing pages and collects unique detail links.
// It fails only when every listing is unreachable.
func (c *Coordinator) discover(ctx context.Context, ext sources.Extractor) ([]sources.Link, error) {
	var links []sources.Link
	seen := make(map[string]struct{})
	var lastErr error
	fetched := 0

	for _, listingURL := range ext.ListingURLs() {
		doc, err := c.fetcher.Fetch(ctx, ext.Name(), listingURL)
		if err != nil {
			log.Printf("crawl %s: listing %s: %v", ext.Name(), listingURL, err)
			lastErr = err
			continue
		}
		fetched++
		for _, link := range ext.DiscoverLinks(doc) {
			if _, dup := seen[link.URL]; dup {
				continue
			}
			seen[link.URL] = struct{}{}
			links = append(links, link)
		}
	}

	if fetched == 0 {
		if lastErr == nil {
			lastErr = errors.New("no listing urls configured")
		}
		return nil, fmt.Errorf("all listings failed: %w", lastErr)
	}
	return links, nil
}

// safeProcessLink contains panics from extractor code at the link
// boundary; a panicking link counts as failed, not as a dead worker.
func (c *Coordinator) safeProcessLink(ctx context.Context, ext sources.Extractor, link sources.Link) (saved, failed bool) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("crawl %s: link %s: panic recovered: %v", ext.Name(), link.URL, r)
			saved, failed = false, true
		}
	}()
	return c.processLink(ctx, ext, link)
}

// processLink handles one discovered link. It reports (saved, failed):
// a skipped known URL is neither.
func (c *Coordinator) processLink(ctx context.Context, ext sources.Extractor, link sources.Link) (bool, bool) {
	if c.seen != nil {
		if hit, err := c.seen.Seen(ctx, link.URL); err != nil {
			log.Printf("crawl %s: seen filter: %v", ext.Name(), err)
		} else if hit {
			return false, false
		}
	}

	doc, err := c.fetcher.Fetch(ctx, ext.Name(), link.URL)
	if err != nil {
		log.Printf("crawl %s: fetch %s: %v", ext.Name(), link.URL, err)
		return false, true
	}

	ruleCand, err := ext.Extract(doc, link)
	if err != nil {
		log.Printf("crawl %s: extract %s: %v", ext.Name(), link.URL, err)
		return false, true
	}

	cands := []types.CandidateAnnouncement{*ruleCand}
	if c.extractor != nil && c.extractor.Enabled() {
		aiResult := c.extractor.ExtractStructured(ctx, ruleCand.Title, ruleCand.Content)
		if !aiResult.Degraded {
			aiResult.Candidate.SourceURL = ruleCand.SourceURL
			cands = append(cands, aiResult.Candidate)
		}
	}

	saved, err := c.persist(ctx, ext.Name(), cands)
	if err != nil {
		log.Printf("crawl %s: persist %s: %v", ext.Name(), link.URL, err)
		return false, true
	}

	if c.seen != nil {
		if err := c.seen.Mark(ctx, link.URL); err != nil {
			log.Printf("crawl %s: seen filter mark: %v", ext.Name(), err)
		}
	}
	return saved, false
}

// persist inserts a new announcement or folds the candidates into the
// stored one. The source URL is the idempotency key: a re-crawl of an
// unchanged page saves nothing.
func (c *Coordinator) persist(ctx context.Context, sourceName string, cands []types.CandidateAnnouncement) (bool, error) {
	if len(cands) == 0 {
		return false, nil
	}
	sourceURL := cands[0].SourceURL

	existing, err := c.store.GetBySourceURL(ctx, sourceURL)
	switch {
	case err == nil:
		changed := false
		for _, cand := range cands {
			if canonical.Merge(existing, cand) {
				changed = true
			}
		}
		if !changed {
			return false, nil
		}
		if err := c.store.Update(ctx, existing); err != nil {
			return false, fmt.Errorf("update %s: %w", existing.ID, err)
		}
		c.publish(updatedEvent(existing))
		c.archive(ctx, existing)
		return false, nil

	case errors.Is(err, store.ErrNotFound):
		ann := canonical.New(sourceName, cands...)
		if err := c.store.Insert(ctx, ann); err != nil {
			if errors.Is(err, store.ErrAlreadyExists) {
				// Raced with a concurrent worker; the record is stored.
				return false, nil
			}
			return false, fmt.Errorf("insert %s: %w", sourceURL, err)
		}
		c.publish(savedEvent(ann))
		c.archive(ctx, ann)
		return true, nil

	default:
		return false, fmt.Errorf("lookup %s: %w", sourceURL, err)
	}
}

// runDedup marks semantic duplicates across the recent window and
// returns how many pairs were resolved.
func (c *Coordinator) runDedup(ctx context.Context) int {
	since := time.Now().UTC().Add(-c.dedupWindow)
	window, err := c.store.RecentWindow(ctx, since, c.dedupLimit)
	if err != nil {
		log.Printf("dedup: load window: %v", err)
		return 0
	}

	pairs, err := c.detector.FindDuplicates(ctx, window)
	if err != nil {
		log.Printf("dedup: %v", err)
		return 0
	}

	resolved := 0
	for _, pair := range pairs {
		if err := c.store.MarkDuplicate(ctx, pair.DuplicateID, pair.RootID); err != nil {
			log.Printf("dedup: mark %s: %v", pair.DuplicateID, err)
			continue
		}
		resolved++
		c.publish(duplicateEvent(pair))
	}
	return resolved
}

func (c *Coordinator) touchSource(name string, success bool) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := c.store.TouchSource(ctx, name, success); err != nil {
		log.Printf("touch source %s: %v", name, err)
	}
}

func (c *Coordinator) publish(event AnnouncementEvent) {
	if c.publisher == nil {
		return
	}
	if err := c.publisher.Publish(event); err != nil {
		log.Printf("publish %s for %s: %v", event.Type, event.AnnouncementID, err)
	}
}

func (c *Coordinator) archive(ctx context.Context, ann *types.Announcement) {
	if c.archiver == nil {
		return
	}
	if err := c.archiver.Archive(ctx, ann); err != nil {
		log.Printf("archive %s: %v", ann.ID, err)
	}
}
