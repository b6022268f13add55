package sources

import (
	"time"

	"noticewala/types"
)

// Link is one candidate announcement discovered on a listing page or
// feed. RSS links carry metadata the feed already provides.
type Link struct {
	URL       string
	Title     string
	Summary   string
	Published *time.Time
}

// Extractor is the per-source capability: discover candidate links on
// a listing document, then turn a detail document into a candidate
// announcement. One variant exists per source; shared heuristics live
// in the package helpers.
type Extractor interface {
	Name() string
	Source() types.Source
	ListingURLs() []string
	DiscoverLinks(doc *types.RawDocument) []Link
	Extract(doc *types.RawDocument, link Link) (*types.CandidateAnnouncement, error)
}

// Registry holds the configured extractors. It is constructed once at
// startup and passed to the coordinator; there is no package-level
// singleton.
type Registry struct {
	ordered []Extractor
	byName  map[string]Extractor
}

// NewRegistry builds a registry from the given extractors, preserving
// order for deterministic crawl cycles.
func NewRegistry(extractors ...Extractor) *Registry {
	r := &Registry{byName: make(map[string]Extractor, len(extractors))}
	for _, ex := range extractors {
		if ex == nil {
			continue
		}
		if _, dup := r.byName[ex.Name()]; dup {
			continue
		}
		r.ordered = append(r.ordered, ex)
		r.byName[ex.Name()] = ex
	}
	return r
}

// All returns the extractors in registration order.
func (r *Registry) All() []Extractor {
	out := make([]Extractor, len(r.ordered))
	copy(out, r.ordered)
	return out
}

// Get looks an extractor up by name.
func (r *Registry) Get(name string) (Extractor, bool) {
	ex, ok := r.byName[name]
	return ex, ok
}

// Len reports how many sources are registered.
func (r *Registry) Len() int { return len(r.ordered) }
