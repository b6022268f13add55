package extraction

import (
	"context"
	"errors"
	"testing"
	"time"

	"noticewala/types"
)

type fakeClient struct {
	response string
	err      error
	calls    int
}

func (f *fakeClient) Complete(_ context.Context, _, _ string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.response, nil
}

const sampleContent = "IBPS invites applications for Probationary Officer posts. " +
	"Eligibility: Graduate in any discipline. Last date: 15/03/2024. Exam date: 10/06/2024."

func TestExtractStructuredDisabled(t *testing.T) {
	svc := NewServiceWithClient(nil, time.Second)
	if svc.Enabled() {
		t.Fatal("service without client must be disabled")
	}

	result := svc.ExtractStructured(context.Background(), "IBPS PO 2024", sampleContent)
	if !result.Degraded {
		t.Fatal("expected degraded result")
	}
	if result.Candidate.Provenance != types.ProvenanceRule {
		t.Errorf("provenance = %q", result.Candidate.Provenance)
	}
}

func TestExtractStructuredFallbackOnError(t *testing.T) {
	client := &fakeClient{err: errors.New("upstream timeout")}
	svc := NewServiceWithClient(client, time.Second)

	result := svc.ExtractStructured(context.Background(), "IBPS PO 2024", sampleContent)
	if !result.Degraded {
		t.Fatal("expected degraded result on client error")
	}
	if client.calls != 1 {
		t.Errorf("expected 1 call, got %d", client.calls)
	}

	// The deterministic tier reports its fixed confidence band.
	conf := result.Candidate.Confidence
	if conf.Overall != fallbackOverallConfidence {
		t.Errorf("overall = %.2f, want %.2f", conf.Overall, fallbackOverallConfidence)
	}
	if conf.Dates != fallbackDatesConfidence || conf.Eligibility != fallbackEligibilityConfidence {
		t.Errorf("unexpected fallback band: %+v", conf)
	}
}

func TestExtractStructuredFallbackOnMalformedJSON(t *testing.T) {
	client := &fakeClient{response: "this is not json {"}
	svc := NewServiceWithClient(client, time.Second)

	result := svc.ExtractStructured(context.Background(), "IBPS PO 2024", sampleContent)
	if !result.Degraded {
		t.Fatal("expected degraded result on malformed response")
	}
	if result.Candidate.Title != "IBPS PO 2024" {
		t.Errorf("fallback must keep the title, got %q", result.Candidate.Title)
	}
}

func TestExtractStructuredParsesResponse(t *testing.T) {
	client := &fakeClient{response: `{
		"summary": "IBPS recruits probationary officers across public sector banks for 2024.",
		"exam_dates": [{"type": "prelims", "start": "2024-06-10", "end": null, "note": null}],
		"application_deadline": "2024-03-15",
		"eligibility": "Graduate in any discipline",
		"location": {"country": "India", "state": "", "city": ""},
		"categories": ["banking", "po"],
		"tags": ["IBPS", "PO", "2024"],
		"priority_score": 8,
		"confidence": {"title": 0.9, "dates": 0.85, "eligibility": 0.8, "categories": 0.9, "overall": 0.86}
	}`}
	svc := NewServiceWithClient(client, time.Second)

	result := svc.ExtractStructured(context.Background(), "IBPS PO 2024", sampleContent)
	if result.Degraded {
		t.Fatal("expected AI-tier result")
	}

	cand := result.Candidate
	if cand.Provenance != types.ProvenanceAI {
		t.Errorf("provenance = %q", cand.Provenance)
	}
	if cand.ApplicationDeadline == nil || cand.ApplicationDeadline.Format("2006-01-02") != "2024-03-15" {
		t.Errorf("deadline = %v", cand.ApplicationDeadline)
	}
	if len(cand.ExamDates) != 1 || cand.ExamDates[0].Type != "prelims" {
		t.Errorf("exam dates = %+v", cand.ExamDates)
	}
	if cand.PriorityScore != 8 {
		t.Errorf("priority = %.1f", cand.PriorityScore)
	}
	if cand.Confidence.Overall != 0.86 {
		t.Errorf("overall = %.2f", cand.Confidence.Overall)
	}
}

func TestExtractStructuredStripsCodeFences(t *testing.T) {
	client := &fakeClient{response: "```json\n{\"summary\": \"Fenced reply.\", \"confidence\": {\"title\": 0.9}}\n```"}
	svc := NewServiceWithClient(client, time.Second)

	result := svc.ExtractStructured(context.Background(), "Fenced", "content")
	if result.Degraded {
		t.Fatal("fenced JSON must still parse")
	}
	if result.Candidate.Summary != "Fenced reply." {
		t.Errorf("summary = %q", result.Candidate.Summary)
	}
}

func TestValidateClampsOutOfRangeFields(t *testing.T) {
	wire := wireResult{
		Summary:       "Clamping test.",
		Categories:    []string{"a", "b", "c", "d", "e", "f", "g"},
		Tags:          []string{"1", "2", "3", "4", "5", "6", "7", "8", "9", "10", "11", "12"},
		PriorityScore: 15,
	}
	wire.Confidence.Title = 1.4
	wire.Confidence.Dates = -0.3

	cand := validate(wire, "Clamps")
	if len(cand.Categories) != 5 {
		t.Errorf("categories = %d, want 5", len(cand.Categories))
	}
	if len(cand.Tags) != 10 {
		t.Errorf("tags = %d, want 10", len(cand.Tags))
	}
	if cand.PriorityScore != 10 {
		t.Errorf("priority = %.1f, want 10", cand.PriorityScore)
	}
	if cand.Confidence.Title != 1 || cand.Confidence.Dates != 0 {
		t.Errorf("confidence not clamped: %+v", cand.Confidence)
	}
	if cand.Location.Country != "India" {
		t.Errorf("default country missing: %+v", cand.Location)
	}
}

func TestValidateDropsUnparseableDates(t *testing.T) {
	wire := wireResult{
		ExamDates: []wireExamDate{
			{Type: "mains", Start: "not-a-date"},
			{Type: "prelims", Start: "2024-06-10"},
		},
		ApplicationDeadline: "someday soon",
	}

	cand := validate(wire, "Dates")
	if len(cand.ExamDates) != 1 {
		t.Fatalf("expected 1 usable exam date, got %d", len(cand.ExamDates))
	}
	if cand.ExamDates[0].Type != "prelims" {
		t.Errorf("kept wrong entry: %+v", cand.ExamDates[0])
	}
	if cand.ApplicationDeadline != nil {
		t.Errorf("unparseable deadline must become nil, got %v", cand.ApplicationDeadline)
	}
}

func TestFallbackScenario(t *testing.T) {
	cand := Fallback("SSC CGL Recruitment 2024", sampleContent)

	if cand.ApplicationDeadline == nil || cand.ApplicationDeadline.Format("2006-01-02") != "2024-03-15" {
		t.Errorf("deadline = %v", cand.ApplicationDeadline)
	}
	if len(cand.ExamDates) != 1 {
		t.Errorf("exam dates = %+v", cand.ExamDates)
	}
	if cand.Eligibility == "" {
		t.Error("expected eligibility sentence")
	}
	if cand.Confidence.Overall != fallbackOverallConfidence {
		t.Errorf("overall = %.2f", cand.Confidence.Overall)
	}
	if cand.Provenance != types.ProvenanceRule {
		t.Errorf("provenance = %q", cand.Provenance)
	}
}
