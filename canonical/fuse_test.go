package canonical

import (
	"testing"
	"time"

	"noticewala/types"
)

func ruleCandidate() types.CandidateAnnouncement {
	deadline := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	return types.CandidateAnnouncement{
		Title:               "IBPS PO Recruitment 2024",
		Summary:             "IBPS PO notification.",
		Content:             "Full notification text.",
		SourceURL:           "https://ibps.in/po-2024",
		ApplicationDeadline: &deadline,
		Eligibility:         "Graduate in any discipline",
		Location:            types.Location{Country: "India"},
		Categories:          []string{"banking"},
		Tags:                []string{"IBPS"},
		PriorityScore:       8,
		Confidence: types.Confidence{
			Title: 0.95, Dates: 0.80, Eligibility: 0.70, Categories: 0.75, Overall: 0.79,
		},
		Provenance:  types.ProvenanceRule,
		ExtractedAt: time.Now().UTC(),
	}
}

func aiCandidate() types.CandidateAnnouncement {
	deadline := time.Date(2024, 3, 16, 0, 0, 0, 0, time.UTC)
	return types.CandidateAnnouncement{
		Title:               "IBPS PO Recruitment 2024-25",
		Summary:             "IBPS invites applications for probationary officer posts across banks.",
		SourceURL:           "https://ibps.in/po-2024",
		ApplicationDeadline: &deadline,
		Eligibility:         "Graduate in any discipline, age 20 to 30",
		Location:            types.Location{Country: "India", State: "All States"},
		Categories:          []string{"banking", "po"},
		Tags:                []string{"IBPS", "PO"},
		PriorityScore:       9,
		Confidence: types.Confidence{
			Title: 0.95, Dates: 0.90, Eligibility: 0.85, Categories: 0.90, Overall: 0.90,
		},
		Provenance:  types.ProvenanceAI,
		ExtractedAt: time.Now().UTC(),
	}
}

func TestNewFromCandidates(t *testing.T) {
	ann := New("ibps", ruleCandidate(), aiCandidate())

	if ann.ID == "" {
		t.Fatal("expected generated ID")
	}
	if ann.SourceURL != "https://ibps.in/po-2024" {
		t.Errorf("source url = %q", ann.SourceURL)
	}
	if ann.SourceName != "ibps" {
		t.Errorf("source name = %q", ann.SourceName)
	}
	// Rule tier processed first marks the record verified.
	if !ann.Verified {
		t.Error("expected verified record")
	}
}

func TestMergeHigherConfidenceWins(t *testing.T) {
	ann := New("ibps", ruleCandidate())
	if Merge(ann, aiCandidate()) == false {
		t.Fatal("expected change")
	}

	// AI dates confidence 0.90 beats rule 0.80.
	if ann.ApplicationDeadline.Day() != 16 {
		t.Errorf("deadline = %v", ann.ApplicationDeadline)
	}
	// Equal title confidence: the newest value wins.
	if ann.Title != "IBPS PO Recruitment 2024-25" {
		t.Errorf("title = %q", ann.Title)
	}
	if ann.Eligibility != "Graduate in any discipline, age 20 to 30" {
		t.Errorf("eligibility = %q", ann.Eligibility)
	}
}

func TestMergeLowerConfidenceLoses(t *testing.T) {
	ann := New("ibps", aiCandidate())
	before := *ann

	weak := ruleCandidate()
	weak.Confidence = types.Confidence{Title: 0.5, Dates: 0.3, Eligibility: 0.4, Categories: 0.4, Overall: 0.35}
	Merge(ann, weak)

	if ann.Title != before.Title {
		t.Errorf("low-confidence title overwrote: %q", ann.Title)
	}
	if !ann.ApplicationDeadline.Equal(*before.ApplicationDeadline) {
		t.Errorf("low-confidence deadline overwrote: %v", ann.ApplicationDeadline)
	}
	if ann.Eligibility != before.Eligibility {
		t.Errorf("low-confidence eligibility overwrote: %q", ann.Eligibility)
	}
}

func TestMergeNeverErasesWithMissingValues(t *testing.T) {
	ann := New("ibps", ruleCandidate())

	empty := types.CandidateAnnouncement{
		SourceURL:  "https://ibps.in/po-2024",
		Confidence: types.Confidence{Title: 1, Dates: 1, Eligibility: 1, Categories: 1, Overall: 1},
	}
	Merge(ann, empty)

	if ann.Title == "" || ann.Eligibility == "" || ann.ApplicationDeadline == nil {
		t.Errorf("missing values erased populated fields: %+v", ann)
	}
	// Absent values must not raise the matching field confidences.
	if ann.Confidence.Dates != 0.80 {
		t.Errorf("dates confidence = %.2f, want 0.80", ann.Confidence.Dates)
	}
}

func TestMergeConfidenceMonotonic(t *testing.T) {
	ann := New("ibps", ruleCandidate())
	first := ann.Confidence

	weak := ruleCandidate()
	weak.Confidence = types.Confidence{Title: 0.5, Dates: 0.3, Eligibility: 0.4, Categories: 0.4, Overall: 0.35}
	Merge(ann, weak)

	if ann.Confidence.Title < first.Title || ann.Confidence.Dates < first.Dates ||
		ann.Confidence.Eligibility < first.Eligibility || ann.Confidence.Categories < first.Categories ||
		ann.Confidence.Overall < first.Overall {
		t.Errorf("confidence regressed: %+v -> %+v", first, ann.Confidence)
	}
}

func TestMergeListUnionCapped(t *testing.T) {
	ann := New("ibps", ruleCandidate())

	cand := aiCandidate()
	cand.Categories = []string{"banking", "po", "clerk", "so", "rrb", "extra"}
	cand.Tags = []string{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j", "k", "l"}
	Merge(ann, cand)

	if len(ann.Categories) != 5 {
		t.Errorf("categories = %v", ann.Categories)
	}
	if ann.Categories[0] != "banking" {
		t.Errorf("existing entries must keep their position: %v", ann.Categories)
	}
	if len(ann.Tags) != 10 {
		t.Errorf("tags = %v", ann.Tags)
	}
}

func TestMergeOverallWeights(t *testing.T) {
	ann := New("ibps", aiCandidate())

	want := 0.2*0.95 + 0.3*0.90 + 0.2*0.85 + 0.3*0.90
	if diff := ann.Confidence.Overall - want; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("overall = %.4f, want %.4f", ann.Confidence.Overall, want)
	}
}

func TestMergeNoChangeReportsFalse(t *testing.T) {
	ann := New("ibps", aiCandidate())

	weak := types.CandidateAnnouncement{SourceURL: "https://ibps.in/po-2024"}
	if Merge(ann, weak) {
		t.Error("empty candidate must not report a change")
	}
}

func TestMergeIdenticalRecrawlReportsFalse(t *testing.T) {
	cand := ruleCandidate()
	publish := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	start := time.Date(2024, 6, 10, 9, 0, 0, 0, time.UTC)
	end := start.Add(3 * time.Hour)
	cand.PublishDate = &publish
	cand.ExamDates = []types.ExamDate{{Type: "prelims", Start: &start, End: &end}}

	ann := New("ibps", cand)
	stamp := ann.UpdatedAt

	// Re-crawling an unchanged page re-extracts the same candidate;
	// folding it back in must be a no-op.
	if Merge(ann, cand) {
		t.Error("re-merging the identical candidate reported a change")
	}
	if !ann.UpdatedAt.Equal(stamp) {
		t.Errorf("no-op merge touched updated_at: %v -> %v", stamp, ann.UpdatedAt)
	}
}

func TestMergeSummaryConfidenceGated(t *testing.T) {
	ann := New("ibps", aiCandidate())
	before := ann.Summary

	weak := aiCandidate()
	weak.Summary = before + " Padded with extra words from a degraded fallback pass."
	weak.Confidence.Title = 0.4
	Merge(ann, weak)
	if ann.Summary != before {
		t.Errorf("low-confidence longer summary replaced: %q", ann.Summary)
	}

	strong := aiCandidate()
	strong.Summary = before + " Official corrigendum details appended."
	if !Merge(ann, strong) {
		t.Error("expected change from an equally confident longer summary")
	}
	if ann.Summary == before {
		t.Error("equally confident longer summary must replace")
	}
}
