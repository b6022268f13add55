package sources

import (
	"bytes"
	"fmt"
	"net/url"
	"strings"
	"time"

	readability "github.com/go-shiori/go-readability"
	"github.com/mmcdole/gofeed"

	"noticewala/config"
	"noticewala/types"
)

// Confidence band for feed-derived candidates: titles and publish
// dates come straight from the feed, everything else is heuristic.
const (
	rssTitleConfidence       = 0.90
	rssDatesConfidence       = 0.60
	rssEligibilityConfidence = 0.50
	rssCategoriesConfidence  = 0.60
)

// RSSSource ingests announcements from an RSS/Atom feed. Item
// metadata comes from the feed; full text is recovered from the linked
// page with readability extraction.
type RSSSource struct {
	source  types.Source
	feedURL string
}

var _ Extractor = (*RSSSource)(nil)

// NewRSS builds a feed-backed source from a registry entry.
func NewRSS(cfg config.RSSSourceConfig) *RSSSource {
	return &RSSSource{
		source: types.Source{
			Name:            cfg.Name,
			BaseURL:         cfg.FeedURL,
			Type:            "rss",
			Region:          cfg.Region,
			Categories:      cfg.Categories,
			UpdateFrequency: "daily",
		},
		feedURL: cfg.FeedURL,
	}
}

func (r *RSSSource) Name() string          { return r.source.Name }
func (r *RSSSource) Source() types.Source  { return r.source }
func (r *RSSSource) ListingURLs() []string { return []string{r.feedURL} }

// DiscoverLinks parses the fetched feed document into candidate links.
func (r *RSSSource) DiscoverLinks(doc *types.RawDocument) []Link {
	feed, err := gofeed.NewParser().ParseString(string(doc.Body))
	if err != nil {
		return nil
	}

	seen := make(map[string]struct{})
	var links []Link
	for _, item := range feed.Items {
		if item.Link == "" || item.Title == "" {
			continue
		}
		if _, dup := seen[item.Link]; dup {
			continue
		}
		seen[item.Link] = struct{}{}

		published := item.PublishedParsed
		if published == nil {
			published = item.UpdatedParsed
		}

		summary := item.Description
		if summary == "" {
			summary = item.Content
		}

		links = append(links, Link{
			URL:       item.Link,
			Title:     strings.TrimSpace(item.Title),
			Summary:   strings.TrimSpace(summary),
			Published: published,
		})
	}
	return links
}

// Extract recovers the article body from the linked page and applies
// the shared heuristics for dates, categories, and priority.
func (r *RSSSource) Extract(doc *types.RawDocument, link Link) (*types.CandidateAnnouncement, error) {
	pageURL, err := url.Parse(doc.URL)
	if err != nil {
		return nil, fmt.Errorf("parse page url %s: %w", doc.URL, err)
	}

	text := link.Summary
	article, err := readability.FromReader(bytes.NewReader(doc.Body), pageURL)
	if err == nil && strings.TrimSpace(article.TextContent) != "" {
		text = strings.Join(strings.Fields(article.TextContent), " ")
	}
	if text == "" {
		return nil, fmt.Errorf("no content for %s", doc.URL)
	}

	summary := link.Summary
	if summary == "" {
		summary = Summarize(text, config.MaxSummaryLength)
	}

	publishDate := link.Published
	if publishDate == nil {
		publishDate = FirstDate(text)
	}

	categories := Categories(link.Title, text)
	examDates := make([]types.ExamDate, 0, 3)
	for _, match := range ExtractExamDates(text) {
		start, end := match.Start, match.End
		examDates = append(examDates, types.ExamDate{
			Type:  "examination",
			Start: &start,
			End:   &end,
			Note:  "Examination Date",
		})
	}

	cand := &types.CandidateAnnouncement{
		Title:               link.Title,
		Summary:             summary,
		Content:             text,
		SourceURL:           doc.URL,
		PublishDate:         publishDate,
		ExamDates:           examDates,
		ApplicationDeadline: ExtractDeadline(text),
		Eligibility:         ExtractEligibility(text),
		Categories:          categories,
		Tags:                GenerateTags(r.source.Name, link.Title, text),
		PriorityScore:       PriorityScore(link.Title, text, categories, nil),
		Provenance:          types.ProvenanceRule,
		ExtractedAt:         time.Now().UTC(),
	}

	cand.Confidence = types.Confidence{
		Title:       rssTitleConfidence,
		Dates:       rssDatesConfidence,
		Eligibility: rssEligibilityConfidence,
		Categories:  rssCategoriesConfidence,
	}
	cand.Confidence.Overall = 0.2*cand.Confidence.Title +
		0.3*cand.Confidence.Dates +
		0.2*cand.Confidence.Eligibility +
		0.3*cand.Confidence.Categories

	return cand, nil
}
