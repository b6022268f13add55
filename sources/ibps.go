package sources

import "noticewala/types"

// NewIBPS builds the extractor for the Institute of Banking Personnel
// Selection. PO and Clerk recruitments are the highest-traffic
// announcements in the catalog, hence the large bonuses.
func NewIBPS() *HTMLSource {
	return &HTMLSource{
		source: types.Source{
			Name:            "IBPS Official",
			BaseURL:         "https://www.ibps.in",
			Type:            "government",
			Region:          "india",
			Categories:      []string{"banking_exams", "government_exams"},
			UpdateFrequency: "daily",
		},
		listingURLs: []string{
			"https://www.ibps.in/career/",
			"https://www.ibps.in/current-openings/",
			"https://www.ibps.in/notifications/",
			"https://www.ibps.in/upcoming-exams/",
		},
		titleKeywords: []string{
			"ibps", "po", "clerk", "so", "rrb", "probationary officer",
			"office assistant", "specialist officer", "regional rural bank",
			"banking", "notification", "examination", "recruitment",
			"advertisement", "notice", "exam",
		},
		categoryRules: []categoryRule{
			{"po", []string{"po", "probationary officer"}},
			{"clerk", []string{"clerk", "office assistant"}},
			{"so", []string{"specialist officer"}},
			{"rrb", []string{"rrb", "regional rural bank"}},
			{"mains", []string{"mains"}},
			{"prelims", []string{"prelims", "preliminary"}},
			{"interview", []string{"interview"}},
		},
		defaultCategory: "banking_exams",
		priorityBonuses: map[string]float64{
			"po":    3.0,
			"clerk": 2.5,
			"so":    2.0,
			"rrb":   1.5,
		},
		defaultLocation: types.Location{Country: "India", State: "All States", City: "Multiple Centers"},
		sourceTag:       "IBPS",
	}
}
