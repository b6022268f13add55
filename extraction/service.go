package extraction

import (
	"context"
	"encoding/json"
	"log"
	"strings"
	"time"

	"noticewala/config"
	"noticewala/types"
)

const systemPrompt = "You are a precise data extractor for exam and recruitment notifications. " +
	"Extract structured information from the provided content and return ONLY valid JSON."

const extractionPrompt = `Extract structured information from the following exam announcement
and return it as a JSON object with exactly this shape:

{
  "summary": "25-40 word summary",
  "exam_dates": [
    {"type": "prelims|mains|interview|examination", "start": "ISO date", "end": "ISO date or null", "note": "string or null"}
  ],
  "application_deadline": "ISO date or null",
  "eligibility": "eligibility criteria or null",
  "location": {"country": "...", "state": "...", "city": "..."},
  "categories": ["exam categories"],
  "tags": ["relevant tags"],
  "priority_score": 1-10,
  "confidence": {"title": 0-1, "dates": 0-1, "eligibility": 0-1, "categories": 0-1, "overall": 0-1}
}

Rules:
1. Only extract information explicitly present in the content; use null otherwise.
2. Dates in ISO format (YYYY-MM-DD).
3. At most 5 categories and 10 tags.
4. Be conservative with confidence scores.
`

// Result is what ExtractStructured always returns: a fully populated
// candidate, plus a marker for whether the deterministic fallback tier
// produced it. Expected unavailability is not an error.
type Result struct {
	Candidate types.CandidateAnnouncement
	Degraded  bool
}

// Service performs AI-assisted structured extraction with a
// deterministic fallback. Availability is decided once at
// construction; there is no runtime probing.
type Service struct {
	client  Client
	enabled bool
	timeout time.Duration
}

// NewService wires the service from settings. With no API key the
// service stays in permanent fallback mode.
func NewService(s config.Settings) *Service {
	svc := &Service{timeout: s.AITimeout}
	if s.AIAPIKey != "" {
		svc.client = NewChatClient(s.AIEndpoint, s.AIModel, s.AIAPIKey, s.AITimeout)
		svc.enabled = true
	}
	return svc
}

// NewServiceWithClient builds a service around a preconfigured client.
// A nil client yields a fallback-only service.
func NewServiceWithClient(client Client, timeout time.Duration) *Service {
	return &Service{client: client, enabled: client != nil, timeout: timeout}
}

// Enabled reports whether the AI tier is configured.
func (s *Service) Enabled() bool { return s.enabled }

// ExtractStructured extracts announcement fields from title+content.
// It never returns an error: when the service is disabled, the call
// times out, or the response does not conform, it degrades to the
// rule-based tier with the fixed low-confidence band.
func (s *Service) ExtractStructured(ctx context.Context, title, content string) Result {
	if !s.enabled {
		return Result{Candidate: Fallback(title, content), Degraded: true}
	}

	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	raw, err := s.client.Complete(callCtx, systemPrompt, buildPrompt(title, content))
	if err != nil {
		log.Printf("extraction: AI call failed for %q: %v (falling back)", title, err)
		return Result{Candidate: Fallback(title, content), Degraded: true}
	}

	var wire wireResult
	if err := json.Unmarshal([]byte(stripCodeFence(raw)), &wire); err != nil {
		log.Printf("extraction: malformed AI response for %q: %v (falling back)", title, err)
		return Result{Candidate: Fallback(title, content), Degraded: true}
	}

	cand := validate(wire, title)
	return Result{Candidate: cand}
}

func buildPrompt(title, content string) string {
	var b strings.Builder
	b.WriteString(extractionPrompt)
	b.WriteString("\nTitle: ")
	b.WriteString(title)
	b.WriteString("\nContent: ")
	b.WriteString(content)
	return b.String()
}

// stripCodeFence tolerates models that wrap JSON in markdown fences
// despite the response-format request.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
