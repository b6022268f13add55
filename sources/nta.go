package sources

import "noticewala/types"

// NewNTA builds the extractor for the National Testing Agency, which
// runs the large entrance exams (JEE, NEET, CUET, UGC NET).
func NewNTA() *HTMLSource {
	return &HTMLSource{
		source: types.Source{
			Name:            "NTA Official",
			BaseURL:         "https://www.nta.ac.in",
			Type:            "government",
			Region:          "india",
			Categories:      []string{"engineering_exams", "medical_exams", "government_exams"},
			UpdateFrequency: "daily",
		},
		listingURLs: []string{
			"https://www.nta.ac.in/jeemain",
			"https://www.nta.ac.in/neet",
			"https://www.nta.ac.in/cuet",
			"https://www.nta.ac.in/ugcnet",
			"https://www.nta.ac.in/gate",
		},
		titleKeywords: []string{
			"jee", "neet", "cuet", "ugc net", "gate", "jee main", "jee advanced",
			"national testing agency", "nta", "engineering", "medical", "entrance",
			"notification", "examination", "admission", "bulletin", "information",
		},
		categoryRules: []categoryRule{
			{"jee_main", []string{"jee main"}},
			{"jee_advanced", []string{"jee advanced"}},
			{"neet", []string{"neet"}},
			{"cuet", []string{"cuet"}},
			{"ugc_net", []string{"ugc net", "ugcnet"}},
			{"gate", []string{"gate"}},
			{"engineering_exams", []string{"engineering"}},
			{"medical_exams", []string{"medical"}},
		},
		defaultCategory: "entrance_exams",
		priorityBonuses: map[string]float64{
			"jee_main":     3.5,
			"neet":         3.5,
			"jee_advanced": 3.0,
			"cuet":         2.5,
			"ugc_net":      2.0,
			"gate":         2.0,
		},
		defaultLocation: types.Location{Country: "India", State: "All States", City: "Multiple Centers"},
		sourceTag:       "NTA",
	}
}
