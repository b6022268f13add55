package sources

import "noticewala/types"

// NewUPSC builds the extractor for the Union Public Service
// Commission. Civil services is the most competitive category in the
// catalog and carries the largest single bonus.
func NewUPSC() *HTMLSource {
	return &HTMLSource{
		source: types.Source{
			Name:            "UPSC Official",
			BaseURL:         "https://upsc.gov.in",
			Type:            "government",
			Region:          "india",
			Categories:      []string{"civil_services", "government_exams"},
			UpdateFrequency: "daily",
		},
		listingURLs: []string{
			"https://upsc.gov.in/whats-new",
			"https://upsc.gov.in/examinations/active-examinations",
			"https://upsc.gov.in/recruitment",
		},
		titleKeywords: []string{
			"upsc", "civil services", "ias", "ips", "ifs", "cds", "nda",
			"engineering services", "combined defence",
			"notification", "examination", "recruitment",
			"advertisement", "notice", "exam",
		},
		categoryRules: []categoryRule{
			{"civil_services", []string{"civil services", "ias", "ips", "ifs"}},
			{"cds", []string{"cds", "combined defence"}},
			{"nda", []string{"nda", "national defence academy"}},
			{"engineering_services", []string{"engineering services", "ese"}},
			{"mains", []string{"mains"}},
			{"prelims", []string{"prelims", "preliminary"}},
			{"interview", []string{"interview", "personality test"}},
		},
		defaultCategory: "civil_services",
		priorityBonuses: map[string]float64{
			"civil_services":       3.0,
			"cds":                  2.0,
			"nda":                  2.0,
			"engineering_services": 1.5,
		},
		defaultLocation: types.Location{Country: "India", State: "All States", City: "Multiple Centers"},
		sourceTag:       "UPSC",
	}
}
