package extraction

import (
	"time"

	"noticewala/config"
	"noticewala/sources"
	"noticewala/types"
)

// Fixed confidence band for the deterministic tier. These are reported
// as-is instead of a model-estimated score.
const (
	fallbackTitleConfidence       = 0.50
	fallbackDatesConfidence       = 0.30
	fallbackEligibilityConfidence = 0.40
	fallbackCategoriesConfidence  = 0.40
	fallbackOverallConfidence     = 0.35
)

// Fallback runs the rule-based tier over the same title+content the AI
// tier would have seen: regex date capture, keyword-anchored
// eligibility, the shared keyword-to-category table, and additive
// priority scoring.
func Fallback(title, content string) types.CandidateAnnouncement {
	categories := sources.Categories(title, content)

	var examDates []types.ExamDate
	for _, match := range sources.ExtractExamDates(content) {
		start, end := match.Start, match.End
		examDates = append(examDates, types.ExamDate{
			Type:  "examination",
			Start: &start,
			End:   &end,
			Note:  "Extracted using regex",
		})
	}

	tags := categories
	if len(tags) > config.MaxCategories {
		tags = tags[:config.MaxCategories]
	}

	return types.CandidateAnnouncement{
		Title:               title,
		Summary:             sources.Summarize(content, config.MaxSummaryLength),
		Eligibility:         sources.ExtractEligibility(content),
		ExamDates:           examDates,
		ApplicationDeadline: sources.ExtractDeadline(content),
		Location:            types.Location{Country: "India"},
		Categories:          categories,
		Tags:                tags,
		PriorityScore:       sources.PriorityScore(title, content, categories, nil),
		Confidence: types.Confidence{
			Title:       fallbackTitleConfidence,
			Dates:       fallbackDatesConfidence,
			Eligibility: fallbackEligibilityConfidence,
			Categories:  fallbackCategoriesConfidence,
			Overall:     fallbackOverallConfidence,
		},
		Provenance:  types.ProvenanceRule,
		ExtractedAt: time.Now().UTC(),
	}
}
