package types

import "time"

// BatchResult summarizes one source's crawl. Per-item failures are
// tallied in FailedCount; they never abort the batch, so Success stays
// true unless the whole source run failed.
type BatchResult struct {
	Success         bool      `json:"success"`
	Source          string    `json:"source"`
	CrawledCount    int       `json:"crawled_count"`
	SavedCount      int       `json:"saved_count"`
	FailedCount     int       `json:"failed_count"`
	DurationSeconds float64   `json:"duration_seconds"`
	Timestamp       time.Time `json:"timestamp"`
	Error           string    `json:"error,omitempty"`
}

// CycleSummary aggregates one full crawl cycle across all sources,
// including the duplicate-detection pass that runs after persistence.
type CycleSummary struct {
	Success          bool          `json:"success"`
	TotalSources     int           `json:"total_sources"`
	SuccessfulCrawls int           `json:"successful_crawls"`
	FailedCrawls     int           `json:"failed_crawls"`
	TotalSaved       int           `json:"total_saved"`
	DuplicatesFound  int           `json:"duplicates_found"`
	DurationSeconds  float64       `json:"duration_seconds"`
	StartedAt        time.Time     `json:"started_at"`
	FinishedAt       time.Time     `json:"finished_at"`
	Results          []BatchResult `json:"results"`
}
