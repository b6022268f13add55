package sources

import "noticewala/types"

// NewSSC builds the extractor for the Staff Selection Commission.
func NewSSC() *HTMLSource {
	return &HTMLSource{
		source: types.Source{
			Name:            "SSC Official",
			BaseURL:         "https://ssc.nic.in",
			Type:            "government",
			Region:          "india",
			Categories:      []string{"ssc_exams", "government_exams"},
			UpdateFrequency: "daily",
		},
		listingURLs: []string{
			"https://ssc.nic.in/notice-board",
			"https://ssc.nic.in/careers",
			"https://ssc.nic.in/current-openings",
			"https://ssc.nic.in/recruitment",
			"https://ssc.nic.in/examination",
		},
		titleKeywords: []string{
			"ssc", "cgl", "chsl", "je", "mts", "gd", "constable",
			"combined graduate", "combined higher secondary",
			"junior engineer", "multi tasking", "general duty",
			"tier", "notification", "examination", "recruitment",
			"advertisement", "notice", "exam",
		},
		categoryRules: []categoryRule{
			{"cgl", []string{"cgl", "combined graduate level"}},
			{"chsl", []string{"chsl", "combined higher secondary"}},
			{"je", []string{"junior engineer"}},
			{"mts", []string{"mts", "multi tasking staff"}},
			{"gd", []string{"general duty"}},
			{"constable", []string{"constable"}},
			{"tier1", []string{"tier 1", "tier1"}},
			{"tier2", []string{"tier 2", "tier2"}},
		},
		defaultCategory: "ssc_exams",
		priorityBonuses: map[string]float64{
			"cgl":  2.5,
			"chsl": 2.0,
			"je":   1.5,
			"mts":  1.0,
		},
		defaultLocation: types.Location{Country: "India", State: "All States", City: "Multiple Centers"},
		sourceTag:       "SSC",
	}
}
