package sources

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"noticewala/config"
	"noticewala/types"
)

// linkSelectors are the anchor patterns that usually carry
// notifications on the government sites in scope.
var linkSelectors = []string{
	`a[href*="notification"]`,
	`a[href*="exam"]`,
	`a[href*="recruitment"]`,
	`a[href*="advertisement"]`,
	`a[href*="notice"]`,
	`a[href*=".pdf"]`,
}

// Confidence band assigned to rule-based extraction. The per-source
// heuristics are reliable for titles, weaker for dates and free text.
const (
	ruleTitleConfidence       = 0.95
	ruleDatesConfidence       = 0.80
	ruleEligibilityConfidence = 0.70
	ruleCategoriesConfidence  = 0.75
)

// HTMLSource is the shared rule-based extractor for HTML listing
// pages. Each concrete source configures it with its own URLs, keyword
// allowlist, category rules, and priority bonuses.
type HTMLSource struct {
	source          types.Source
	listingURLs     []string
	titleKeywords   []string
	categoryRules   []categoryRule
	defaultCategory string
	priorityBonuses map[string]float64
	defaultLocation types.Location
	sourceTag       string
}

var _ Extractor = (*HTMLSource)(nil)

func (h *HTMLSource) Name() string          { return h.source.Name }
func (h *HTMLSource) Source() types.Source  { return h.source }
func (h *HTMLSource) ListingURLs() []string { return append([]string(nil), h.listingURLs...) }

// DiscoverLinks scans anchors and table rows on a listing page,
// keeping links whose text passes the keyword allowlist.
func (h *HTMLSource) DiscoverLinks(doc *types.RawDocument) []Link {
	parsed, err := goquery.NewDocumentFromReader(bytes.NewReader(doc.Body))
	if err != nil {
		return nil
	}

	seen := make(map[string]struct{})
	var links []Link

	collect := func(sel *goquery.Selection) {
		title := strings.TrimSpace(sel.Text())
		href, ok := sel.Attr("href")
		if !ok || !RelevantTitle(title, h.titleKeywords) {
			return
		}
		full := AbsoluteURL(h.source.BaseURL, href)
		if _, dup := seen[full]; dup {
			return
		}
		seen[full] = struct{}{}
		links = append(links, Link{URL: full, Title: title})
	}

	for _, selector := range linkSelectors {
		parsed.Find(selector).Each(func(_ int, sel *goquery.Selection) {
			collect(sel)
		})
	}

	// Notification tables list one announcement per row.
	parsed.Find("table tr").Each(func(_ int, row *goquery.Selection) {
		row.Find("td a, th a").Each(func(_ int, sel *goquery.Selection) {
			collect(sel)
		})
	})

	return links
}

// Extract turns a fetched detail page into a rule-based candidate.
func (h *HTMLSource) Extract(doc *types.RawDocument, link Link) (*types.CandidateAnnouncement, error) {
	parsed, err := goquery.NewDocumentFromReader(bytes.NewReader(doc.Body))
	if err != nil {
		return nil, fmt.Errorf("parse document %s: %w", doc.URL, err)
	}

	text := strings.TrimSpace(parsed.Text())
	text = strings.Join(strings.Fields(text), " ")
	if text == "" {
		return nil, fmt.Errorf("empty document %s", doc.URL)
	}

	categories := h.classify(link.Title, text)
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
		Summary:             Summarize(text, config.MaxSummaryLength),
		Content:             text,
		SourceURL:           doc.URL,
		PublishDate:         FirstDate(text),
		ExamDates:           examDates,
		ApplicationDeadline: ExtractDeadline(text),
		Eligibility:         ExtractEligibility(text),
		Location:            h.defaultLocation,
		Categories:          categories,
		Tags:                GenerateTags(h.sourceTag, link.Title, text),
		PriorityScore:       PriorityScore(link.Title, text, categories, h.priorityBonuses),
		Provenance:          types.ProvenanceRule,
		ExtractedAt:         time.Now().UTC(),
	}

	cand.Confidence = types.Confidence{
		Title:       ruleTitleConfidence,
		Dates:       ruleDatesConfidence,
		Eligibility: ruleEligibilityConfidence,
		Categories:  ruleCategoriesConfidence,
	}
	cand.Confidence.Overall = 0.2*cand.Confidence.Title +
		0.3*cand.Confidence.Dates +
		0.2*cand.Confidence.Eligibility +
		0.3*cand.Confidence.Categories

	return cand, nil
}

// classify applies the source's own category rules first, falling back
// to the source default when nothing matches.
func (h *HTMLSource) classify(title, content string) []string {
	text := strings.ToLower(title + " " + content)
	var out []string
	for _, rule := range h.categoryRules {
		for _, keyword := range rule.keywords {
			if strings.Contains(text, keyword) {
				out = append(out, rule.category)
				break
			}
		}
		if len(out) >= config.MaxCategories {
			break
		}
	}
	if len(out) == 0 && h.defaultCategory != "" {
		out = []string{h.defaultCategory}
	}
	return out
}
