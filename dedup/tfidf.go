package dedup

import (
	"context"
	"math"
	"strings"
	"unicode"
)

// TFIDFEmbeddings is the offline vectorizer used when no embedding API
// is configured. Vectors are TF-IDF weighted bags of words over the
// batch vocabulary, so they are only comparable within one EmbedTexts
// call. The detector embeds each dedup window as a single batch, which
// is exactly that shape.
type TFIDFEmbeddings struct{}

func (TFIDFEmbeddings) ModelName() string { return "tfidf-local" }

func (TFIDFEmbeddings) EmbedTexts(_ context.Context, texts []string) ([][]float32, error) {
	docs := make([][]string, len(texts))
	df := make(map[string]int)
	for i, text := range texts {
		docs[i] = tokenize(text)
		seen := make(map[string]struct{}, len(docs[i]))
		for _, tok := range docs[i] {
			if _, ok := seen[tok]; !ok {
				seen[tok] = struct{}{}
				df[tok]++
			}
		}
	}

	// Stable vocabulary order: first appearance across the batch.
	index := make(map[string]int, len(df))
	for _, doc := range docs {
		for _, tok := range doc {
			if _, ok := index[tok]; !ok {
				index[tok] = len(index)
			}
		}
	}

	n := float64(len(texts))
	out := make([][]float32, len(texts))
	for i, doc := range docs {
		vec := make([]float32, len(index))
		if len(doc) == 0 {
			out[i] = vec
			continue
		}
		tf := make(map[string]int, len(doc))
		for _, tok := range doc {
			tf[tok]++
		}
		for tok, count := range tf {
			idf := math.Log(1+n/float64(df[tok])) + 1
			vec[index[tok]] = float32(float64(count) / float64(len(doc)) * idf)
		}
		out[i] = vec
	}
	return out, nil
}

func tokenize(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// CosineSimilarity over float32 vectors. Zero vectors and mismatched
// lengths score 0.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
