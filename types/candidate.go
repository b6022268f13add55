package types

import "time"

// Provenance identifies which extraction tier produced a value.
type Provenance string

const (
	ProvenanceRule Provenance = "rule"
	ProvenanceAI   Provenance = "ai"
)

// RawDocument is the result of one fetch. It lives only for the
// duration of the pipeline run and is never persisted.
type RawDocument struct {
	SourceName string
	URL        string
	FetchedAt  time.Time
	StatusCode int
	Body       []byte
}

// CandidateAnnouncement is one extractor's view of a document before
// fusion. Empty strings and nil pointers mean "not extracted"; the
// canonicalizer never lets them overwrite populated values.
type CandidateAnnouncement struct {
	Title      string
	Summary    string
	Content    string
	SourceURL  string

	PublishDate         *time.Time
	ExamDates           []ExamDate
	ApplicationDeadline *time.Time
	Eligibility         string
	Location            Location

	Categories    []string
	Tags          []string
	PriorityScore float64

	Confidence  Confidence
	Provenance  Provenance
	ExtractedAt time.Time
}
