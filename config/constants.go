package config

import "time"

// Fetcher Constants
const (
	// DefaultFetchTimeout is the hard per-request timeout
	DefaultFetchTimeout = 30 * time.Second

	// DefaultMaxRetries bounds retry attempts for retryable status codes
	DefaultMaxRetries = 3

	// DefaultBackoffBase is the first retry delay; it doubles per attempt
	DefaultBackoffBase = 1 * time.Second

	// DefaultPerHostDelay is the minimum gap between requests to one host
	DefaultPerHostDelay = 2 * time.Second
)

// Extraction Constants
const (
	// DefaultAITimeout bounds a single structured-extraction call
	DefaultAITimeout = 45 * time.Second

	// MaxCategories caps the category list on a canonical announcement
	MaxCategories = 5

	// MaxTags caps the tag list on a canonical announcement
	MaxTags = 10

	// MaxSummaryLength truncates generated fallback summaries
	MaxSummaryLength = 200
)

// Duplicate Detection Constants
const (
	// DefaultSimilarityThreshold flags a pair as duplicates
	DefaultSimilarityThreshold = 0.85

	// DefaultDedupWindow bounds how far back the pairwise scan looks.
	// Mirrors republish notices days after the original, so the window
	// spans several days.
	DefaultDedupWindow = 72 * time.Hour

	// DefaultDedupWindowLimit caps the number of records per scan;
	// the scan is O(n^2), so this is the scalability control
	DefaultDedupWindowLimit = 200
)

// Coordinator Constants
const (
	// DefaultSourceWorkers bounds concurrent source crawls
	DefaultSourceWorkers = 3

	// DefaultLinkWorkers bounds concurrent link processing within a source
	DefaultLinkWorkers = 5

	// DefaultSourceBudget is the wall-clock budget for one source's crawl
	DefaultSourceBudget = 5 * time.Minute
)
