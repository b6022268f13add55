// Package canonical merges extractor outputs into canonical
// announcements under the monotonic-confidence policy: highest
// confidence wins field by field, ties favor the most recently
// computed value, and a missing value never erases a populated one.
package canonical

import (
	"time"

	"github.com/google/uuid"

	"noticewala/config"
	"noticewala/types"
)

// Overall-confidence weights over the fixed field set.
const (
	weightTitle       = 0.2
	weightDates       = 0.3
	weightEligibility = 0.2
	weightCategories  = 0.3
)

// New creates a canonical announcement from the candidates extracted
// for one document, applied in extraction order.
func New(sourceName string, cands ...types.CandidateAnnouncement) *types.Announcement {
	now := time.Now().UTC()
	ann := &types.Announcement{
		ID:         uuid.NewString(),
		SourceName: sourceName,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	for _, cand := range cands {
		if ann.SourceURL == "" {
			ann.SourceURL = cand.SourceURL
		}
		Merge(ann, cand)
	}
	return ann
}

// Merge folds one candidate into the announcement. It reports whether
// anything changed, so callers can skip no-op updates.
func Merge(ann *types.Announcement, cand types.CandidateAnnouncement) bool {
	changed := false

	// Title: textual anchor of the record.
	if cand.Title != "" && (ann.Title == "" || cand.Confidence.Title >= ann.Confidence.Title) {
		if ann.Title != cand.Title {
			changed = true
		}
		ann.Title = cand.Title
		ann.Confidence.Title = maxFloat(ann.Confidence.Title, cand.Confidence.Title)
	}

	// Summary: a longer summary replaces a shorter one, but only from
	// an extraction at least as confident. Summaries carry no score of
	// their own, so the title score stands in.
	if cand.Summary != "" && (ann.Summary == "" ||
		(len(cand.Summary) > len(ann.Summary) && cand.Confidence.Title >= ann.Confidence.Title)) {
		if ann.Summary != cand.Summary {
			changed = true
		}
		ann.Summary = cand.Summary
	}

	// Content is append-only: set once, never regressed.
	if ann.Content == "" && cand.Content != "" {
		ann.Content = cand.Content
		changed = true
	}

	// Date-bearing fields share the dates confidence. Only an actual
	// value change is reported, so re-accepting identical dates stays a
	// no-op.
	dateAccepted := false
	if cand.PublishDate != nil && (ann.PublishDate == nil || cand.Confidence.Dates >= ann.Confidence.Dates) {
		if !timePtrEqual(ann.PublishDate, cand.PublishDate) {
			changed = true
		}
		ann.PublishDate = cand.PublishDate
		dateAccepted = true
	}
	if cand.ApplicationDeadline != nil && (ann.ApplicationDeadline == nil || cand.Confidence.Dates >= ann.Confidence.Dates) {
		if !timePtrEqual(ann.ApplicationDeadline, cand.ApplicationDeadline) {
			changed = true
		}
		ann.ApplicationDeadline = cand.ApplicationDeadline
		dateAccepted = true
	}
	if len(cand.ExamDates) > 0 && (len(ann.ExamDates) == 0 || cand.Confidence.Dates >= ann.Confidence.Dates) {
		if !examDatesEqual(ann.ExamDates, cand.ExamDates) {
			changed = true
		}
		ann.ExamDates = append([]types.ExamDate(nil), cand.ExamDates...)
		dateAccepted = true
	}
	if dateAccepted {
		ann.Confidence.Dates = maxFloat(ann.Confidence.Dates, cand.Confidence.Dates)
	}

	if cand.Eligibility != "" && (ann.Eligibility == "" || cand.Confidence.Eligibility >= ann.Confidence.Eligibility) {
		if ann.Eligibility != cand.Eligibility {
			changed = true
		}
		ann.Eligibility = cand.Eligibility
		ann.Confidence.Eligibility = maxFloat(ann.Confidence.Eligibility, cand.Confidence.Eligibility)
	}

	if mergeLocation(&ann.Location, cand.Location) {
		changed = true
	}

	// List-valued fields merge by set union, then truncate to the cap.
	if len(cand.Categories) > 0 {
		merged := unionCapped(ann.Categories, cand.Categories, config.MaxCategories)
		if len(merged) != len(ann.Categories) {
			changed = true
		}
		ann.Categories = merged
		ann.Confidence.Categories = maxFloat(ann.Confidence.Categories, cand.Confidence.Categories)
	}
	if len(cand.Tags) > 0 {
		merged := unionCapped(ann.Tags, cand.Tags, config.MaxTags)
		if len(merged) != len(ann.Tags) {
			changed = true
		}
		ann.Tags = merged
	}

	if cand.PriorityScore > 0 && (ann.PriorityScore == 0 || cand.Confidence.Overall >= ann.Confidence.Overall) {
		score := clamp(cand.PriorityScore, 1, 10)
		if ann.PriorityScore != score {
			changed = true
		}
		ann.PriorityScore = score
	}

	// Rule-based candidates come from curated per-source heuristics
	// and mark the record verified.
	if cand.Provenance == types.ProvenanceRule && !ann.Verified {
		ann.Verified = true
		changed = true
	}

	// Overall confidence is the weighted mean of the per-field scores;
	// it never decreases across re-processing.
	overall := weightTitle*ann.Confidence.Title +
		weightDates*ann.Confidence.Dates +
		weightEligibility*ann.Confidence.Eligibility +
		weightCategories*ann.Confidence.Categories
	ann.Confidence.Overall = maxFloat(ann.Confidence.Overall, clamp(overall, 0, 1))

	if changed {
		ann.UpdatedAt = time.Now().UTC()
	}
	return changed
}

func mergeLocation(dst *types.Location, src types.Location) bool {
	changed := false
	if dst.Country == "" && src.Country != "" {
		dst.Country = src.Country
		changed = true
	}
	if dst.State == "" && src.State != "" {
		dst.State = src.State
		changed = true
	}
	if dst.City == "" && src.City != "" {
		dst.City = src.City
		changed = true
	}
	return changed
}

func unionCapped(existing, incoming []string, max int) []string {
	out := append([]string(nil), existing...)
	seen := make(map[string]struct{}, len(out))
	for _, v := range out {
		seen[v] = struct{}{}
	}
	for _, v := range incoming {
		if v == "" {
			continue
		}
		if _, dup := seen[v]; dup {
			continue
		}
		if len(out) >= max {
			break
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	if len(out) > max {
		out = out[:max]
	}
	return out
}

func timePtrEqual(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}

func examDatesEqual(a, b []types.ExamDate) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].Type != b[i].Type || a[i].Note != b[i].Note ||
			!timePtrEqual(a[i].Start, b[i].Start) || !timePtrEqual(a[i].End, b[i].End) {
			return false
		}
	}
	return true
}

func maxFloat(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
