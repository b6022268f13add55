package extraction

import (
	"time"

	"noticewala/config"
	"noticewala/sources"
	"noticewala/types"
)

// wireResult mirrors the JSON schema requested from the model.
type wireResult struct {
	Summary             string         `json:"summary"`
	ExamDates           []wireExamDate `json:"exam_dates"`
	ApplicationDeadline string         `json:"application_deadline"`
	Eligibility         string         `json:"eligibility"`
	Location            struct {
		Country string `json:"country"`
		State   string `json:"state"`
		City    string `json:"city"`
	} `json:"location"`
	Categories    []string `json:"categories"`
	Tags          []string `json:"tags"`
	PriorityScore float64  `json:"priority_score"`
	Confidence    struct {
		Title       float64 `json:"title"`
		Dates       float64 `json:"dates"`
		Eligibility float64 `json:"eligibility"`
		Categories  float64 `json:"categories"`
		Overall     float64 `json:"overall"`
	} `json:"confidence"`
}

type wireExamDate struct {
	Type  string `json:"type"`
	Start string `json:"start"`
	End   string `json:"end"`
	Note  string `json:"note"`
}

// validate clamps every field of a well-formed response into range:
// dates must parse, confidences land in [0,1], categories and tags are
// capped, priority score lands in [1,10]. Unusable entries are
// dropped rather than propagated.
func validate(wire wireResult, title string) types.CandidateAnnouncement {
	cand := types.CandidateAnnouncement{
		Title:       title,
		Summary:     wire.Summary,
		Eligibility: wire.Eligibility,
		Provenance:  types.ProvenanceAI,
		ExtractedAt: time.Now().UTC(),
	}

	for _, wd := range wire.ExamDates {
		start := parseWireDate(wd.Start)
		if start == nil {
			continue
		}
		entry := types.ExamDate{
			Type:  wd.Type,
			Start: start,
			End:   parseWireDate(wd.End),
			Note:  wd.Note,
		}
		if entry.Type == "" {
			entry.Type = "examination"
		}
		cand.ExamDates = append(cand.ExamDates, entry)
		if len(cand.ExamDates) >= 3 {
			break
		}
	}

	cand.ApplicationDeadline = parseWireDate(wire.ApplicationDeadline)

	cand.Location = types.Location{
		Country: wire.Location.Country,
		State:   wire.Location.State,
		City:    wire.Location.City,
	}
	if cand.Location.Country == "" {
		cand.Location.Country = "India"
	}

	cand.Categories = capList(wire.Categories, config.MaxCategories)
	cand.Tags = capList(wire.Tags, config.MaxTags)

	cand.PriorityScore = sources.Clamp(wire.PriorityScore, 1, 10)

	cand.Confidence = types.Confidence{
		Title:       sources.ClampConfidence(wire.Confidence.Title),
		Dates:       sources.ClampConfidence(wire.Confidence.Dates),
		Eligibility: sources.ClampConfidence(wire.Confidence.Eligibility),
		Categories:  sources.ClampConfidence(wire.Confidence.Categories),
		Overall:     sources.ClampConfidence(wire.Confidence.Overall),
	}
	if cand.Confidence.Overall == 0 {
		cand.Confidence.Overall = 0.2*cand.Confidence.Title +
			0.3*cand.Confidence.Dates +
			0.2*cand.Confidence.Eligibility +
			0.3*cand.Confidence.Categories
	}

	return cand
}

// parseWireDate accepts ISO dates first and falls back to the shared
// day-first parser. Unparseable input becomes nil, never an error.
func parseWireDate(s string) *time.Time {
	if s == "" || s == "null" {
		return nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return &t
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return &t
	}
	if t, err := sources.ParseDate(s); err == nil {
		return t
	}
	return nil
}

func capList(in []string, max int) []string {
	var out []string
	seen := make(map[string]struct{}, len(in))
	for _, v := range in {
		if v == "" {
			continue
		}
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
		if len(out) >= max {
			break
		}
	}
	return out
}
