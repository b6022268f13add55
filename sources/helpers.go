package sources

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/araddon/dateparse"

	"noticewala/config"
)

// datePatterns is tried in order; the first match wins. Government
// sites in scope write dates day-first.
var datePatterns = []*regexp.Regexp{
	regexp.MustCompile(`\d{1,2}[-/]\d{1,2}[-/]\d{4}`),
	regexp.MustCompile(`(?i)\d{1,2}\s+(?:January|February|March|April|May|June|July|August|September|October|November|December)\s+\d{4}`),
	regexp.MustCompile(`(?i)\d{1,2}\s+(?:Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec)\s+\d{4}`),
	regexp.MustCompile(`\d{4}[-/]\d{1,2}[-/]\d{1,2}`),
}

// deadlinePatterns anchor the application deadline to its label.
var deadlinePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)last date[:\s]+(\d{1,2}[-/]\d{1,2}[-/]\d{4})`),
	regexp.MustCompile(`(?i)closing date[:\s]+(\d{1,2}[-/]\d{1,2}[-/]\d{4})`),
	regexp.MustCompile(`(?i)application deadline[:\s]+(\d{1,2}[-/]\d{1,2}[-/]\d{4})`),
	regexp.MustCompile(`(?i)deadline[:\s]+(\d{1,2}[-/]\d{1,2}[-/]\d{4})`),
	regexp.MustCompile(`(?i)apply (?:before|by)[:\s]+(\d{1,2}[-/]\d{1,2}[-/]\d{4})`),
}

var examDatePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)exam date[:\s]+(\d{1,2}[-/]\d{1,2}[-/]\d{4})`),
	regexp.MustCompile(`(?i)examination[:\s]+(\d{1,2}[-/]\d{1,2}[-/]\d{4})`),
	regexp.MustCompile(`(?i)conducted on[:\s]+(\d{1,2}[-/]\d{1,2}[-/]\d{4})`),
	regexp.MustCompile(`(?i)online exam[:\s]+(\d{1,2}[-/]\d{1,2}[-/]\d{4})`),
}

var eligibilityKeywords = []string{
	"eligibility", "qualification", "educational qualification",
	"age limit", "age criteria",
}

var recruitmentKeywords = []string{"recruitment", "vacancy", "post"}

// categoryRule maps a canonical category to the keywords that imply it.
// Kept as an ordered slice so classification is deterministic.
type categoryRule struct {
	category string
	keywords []string
}

var categoryRules = []categoryRule{
	{"upsc", []string{"upsc", "union public service commission", "civil services"}},
	{"ssc", []string{"ssc", "staff selection commission", "cgl", "chsl"}},
	{"banking", []string{"banking", "ibps", "sbi", "po", "clerk"}},
	{"engineering", []string{"engineering", "gate", "jee"}},
	{"medical", []string{"neet", "medical"}},
	{"railway", []string{"railway", "rrb", "ntpc", "group d"}},
	{"defense", []string{"army", "navy", "air force", "defense", "military"}},
	{"teaching", []string{"teaching", "teacher", "tet", "ctet"}},
	{"police", []string{"police", "constable", "inspector"}},
}

// ParseDate resolves a date string day-first via dateparse.
func ParseDate(s string) (*time.Time, error) {
	t, err := dateparse.ParseAny(strings.TrimSpace(s), dateparse.PreferMonthFirst(false))
	if err != nil {
		return nil, fmt.Errorf("parse date %q: %w", s, err)
	}
	return &t, nil
}

// FirstDate returns the first parseable date in the text, trying the
// ordered pattern list.
func FirstDate(text string) *time.Time {
	for _, pattern := range datePatterns {
		for _, match := range pattern.FindAllString(text, 5) {
			if t, err := ParseDate(match); err == nil {
				return t
			}
		}
	}
	return nil
}

// ExtractDeadline finds the application deadline using label-anchored
// patterns ("last date", "closing date", ...).
func ExtractDeadline(text string) *time.Time {
	for _, pattern := range deadlinePatterns {
		if m := pattern.FindStringSubmatch(text); len(m) > 1 {
			if t, err := ParseDate(m[1]); err == nil {
				return t
			}
		}
	}
	return nil
}

// ExtractExamDates collects labeled exam dates. Each entry gets a
// three-hour default window, matching how the sources schedule
// sittings.
func ExtractExamDates(text string) []examDateMatch {
	var out []examDateMatch
	seen := make(map[string]struct{})
	for _, pattern := range examDatePatterns {
		for _, m := range pattern.FindAllStringSubmatch(text, 3) {
			if len(m) < 2 {
				continue
			}
			start, err := ParseDate(m[1])
			if err != nil {
				continue
			}
			key := start.Format("2006-01-02")
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			end := start.Add(3 * time.Hour)
			out = append(out, examDateMatch{Start: *start, End: end})
			if len(out) >= 3 {
				return out
			}
		}
	}
	return out
}

// examDateMatch is the raw date pair before it becomes a types.ExamDate.
type examDateMatch struct {
	Start time.Time
	End   time.Time
}

// ExtractEligibility returns the first sentence containing an
// eligibility keyword.
func ExtractEligibility(text string) string {
	for _, sentence := range strings.Split(text, ".") {
		lower := strings.ToLower(sentence)
		for _, keyword := range eligibilityKeywords {
			if strings.Contains(lower, keyword) {
				return strings.TrimSpace(sentence)
			}
		}
	}
	return ""
}

// Categories classifies text against the shared keyword table, capped
// at the canonical maximum.
func Categories(title, content string) []string {
	text := strings.ToLower(title + " " + content)
	var out []string
	for _, rule := range categoryRules {
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
	return out
}

// GenerateTags derives tags from the title: the source tag, mentioned
// years, and matched categories, capped at the canonical maximum.
func GenerateTags(sourceTag, title, content string) []string {
	tags := []string{sourceTag}
	year := time.Now().Year()
	for _, y := range []int{year - 1, year, year + 1} {
		ys := fmt.Sprintf("%d", y)
		if strings.Contains(title, ys) {
			tags = append(tags, ys)
		}
	}
	for _, cat := range Categories(title, content) {
		tags = append(tags, strings.ToUpper(cat))
		if len(tags) >= config.MaxTags {
			break
		}
	}
	if len(tags) > config.MaxTags {
		tags = tags[:config.MaxTags]
	}
	return tags
}

// PriorityScore computes the additive score: base 5.0, per-category
// bonuses from the source's table, a recency bonus when the current or
// next year is mentioned, and a bonus for active-recruitment wording.
// The result is clamped to [1,10].
func PriorityScore(title, content string, categories []string, bonuses map[string]float64) float64 {
	score := 5.0

	for _, cat := range categories {
		score += bonuses[cat]
	}

	year := time.Now().Year()
	if strings.Contains(title, fmt.Sprintf("%d", year)) || strings.Contains(title, fmt.Sprintf("%d", year+1)) {
		score += 1.0
	}

	lower := strings.ToLower(content)
	for _, keyword := range recruitmentKeywords {
		if strings.Contains(lower, keyword) {
			score += 1.5
			break
		}
	}

	return Clamp(score, 1, 10)
}

// Clamp bounds v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// ClampConfidence bounds a confidence value to [0,1].
func ClampConfidence(v float64) float64 { return Clamp(v, 0, 1) }

// Summarize produces a short summary: the first sentence when it fits,
// otherwise a truncation.
func Summarize(content string, maxLength int) string {
	content = strings.TrimSpace(content)
	if idx := strings.Index(content, "."); idx > 0 && idx+1 <= maxLength {
		return content[:idx+1]
	}
	if len(content) > maxLength {
		return strings.TrimSpace(content[:maxLength]) + "..."
	}
	return content
}

// RelevantTitle applies the keyword allowlist used to classify listing
// links as announcements. Very short link texts are never relevant.
func RelevantTitle(title string, keywords []string) bool {
	if len(title) < 10 {
		return false
	}
	lower := strings.ToLower(title)
	for _, keyword := range keywords {
		if strings.Contains(lower, keyword) {
			return true
		}
	}
	return false
}

// AbsoluteURL resolves href against the source base URL.
func AbsoluteURL(base, href string) string {
	baseURL, err := url.Parse(base)
	if err != nil {
		return href
	}
	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return href
	}
	return baseURL.ResolveReference(ref).String()
}
