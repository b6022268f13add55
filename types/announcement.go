package types

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// ExamDate is a single scheduled event attached to an announcement
// (preliminary exam, mains, interview, result publication, ...).
type ExamDate struct {
	Type  string     `json:"type"`
	Start *time.Time `json:"start"`
	End   *time.Time `json:"end,omitempty"`
	Note  string     `json:"note,omitempty"`
}

// Location describes where an exam or recruitment applies.
type Location struct {
	Country string `json:"country,omitempty"`
	State   string `json:"state,omitempty"`
	City    string `json:"city,omitempty"`
}

// Confidence holds per-field extraction confidence in [0,1] plus the
// weighted overall score. Fields are fixed and named so fusion stays
// type-safe instead of merging arbitrary maps.
type Confidence struct {
	Title       float64 `json:"title"`
	Dates       float64 `json:"dates"`
	Eligibility float64 `json:"eligibility"`
	Categories  float64 `json:"categories"`
	Overall     float64 `json:"overall"`
}

// Announcement is the canonical, deduplicated record for one exam or
// job notification. The source URL is the idempotency key: at most one
// announcement exists per source URL.
type Announcement struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	Summary    string `json:"summary,omitempty"`
	Content    string `json:"content,omitempty"`
	SourceName string `json:"source"`
	SourceURL  string `json:"source_url"`

	PublishDate         *time.Time `json:"publish_date,omitempty"`
	ExamDates           []ExamDate `json:"exam_dates,omitempty"`
	ApplicationDeadline *time.Time `json:"application_deadline,omitempty"`
	Eligibility         string     `json:"eligibility,omitempty"`
	Location            Location   `json:"location"`

	Categories    []string   `json:"categories,omitempty"`
	Tags          []string   `json:"tags,omitempty"`
	PriorityScore float64    `json:"priority_score"`
	Confidence    Confidence `json:"confidence"`

	Verified    bool   `json:"is_verified"`
	Duplicate   bool   `json:"is_duplicate"`
	DuplicateOf string `json:"duplicate_of,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Source is a registry entry for one external origin that is polled
// for announcements.
type Source struct {
	Name            string     `json:"name"`
	BaseURL         string     `json:"base_url"`
	Type            string     `json:"type"` // government, rss, website
	Region          string     `json:"region,omitempty"`
	Categories      []string   `json:"categories,omitempty"`
	UpdateFrequency string     `json:"update_frequency,omitempty"`
	LastCrawled     *time.Time `json:"last_crawled,omitempty"`
	SuccessRate     float64    `json:"success_rate"`
	TotalCrawls     int        `json:"total_crawls"`
}

// DuplicatePair links a duplicate announcement to its root, with the
// similarity score that triggered the flag. Root is always the
// earliest-created record in the cluster.
type DuplicatePair struct {
	RootID      string    `json:"root_id"`
	DuplicateID string    `json:"duplicate_id"`
	Similarity  float64   `json:"similarity"`
	ResolvedAt  time.Time `json:"resolved_at"`
}

// GenerateID creates a stable short ID from a source URL.
func GenerateID(url string) string {
	hash := sha256.Sum256([]byte(url))
	return hex.EncodeToString(hash[:])[:16]
}

// DedupText is the text the duplicate detector compares.
func (a *Announcement) DedupText() string {
	if a.Summary == "" {
		return a.Title
	}
	return a.Title + " " + a.Summary
}
