package dedup

import (
	"context"
	"testing"
)

func embedPair(t *testing.T, a, b string) ([]float32, []float32) {
	t.Helper()
	vecs, err := TFIDFEmbeddings{}.EmbedTexts(context.Background(), []string{a, b})
	if err != nil {
		t.Fatalf("EmbedTexts: %v", err)
	}
	return vecs[0], vecs[1]
}

func TestTFIDFIdenticalTexts(t *testing.T) {
	a, b := embedPair(t, "ssc cgl recruitment 2024", "ssc cgl recruitment 2024")
	if sim := CosineSimilarity(a, b); sim < 0.999 {
		t.Errorf("identical texts similarity = %.4f", sim)
	}
}

func TestTFIDFDisjointTexts(t *testing.T) {
	a, b := embedPair(t, "ssc cgl recruitment", "railway timetable changes")
	if sim := CosineSimilarity(a, b); sim > 0.01 {
		t.Errorf("disjoint texts similarity = %.4f", sim)
	}
}

func TestCosineSimilaritySymmetry(t *testing.T) {
	a, b := embedPair(t, "ibps po recruitment notification 2024",
		"ibps po recruitment 2024 notification for probationary officers")
	if CosineSimilarity(a, b) != CosineSimilarity(b, a) {
		t.Error("similarity must be symmetric")
	}
}

func TestCosineSimilarityEdgeCases(t *testing.T) {
	if sim := CosineSimilarity(nil, nil); sim != 0 {
		t.Errorf("empty vectors = %.2f", sim)
	}
	if sim := CosineSimilarity([]float32{1, 0}, []float32{1}); sim != 0 {
		t.Errorf("mismatched lengths = %.2f", sim)
	}
	if sim := CosineSimilarity([]float32{0, 0}, []float32{1, 1}); sim != 0 {
		t.Errorf("zero vector = %.2f", sim)
	}
}

func TestTFIDFEmptyText(t *testing.T) {
	vecs, err := TFIDFEmbeddings{}.EmbedTexts(context.Background(), []string{"", "words here"})
	if err != nil {
		t.Fatalf("EmbedTexts: %v", err)
	}
	if sim := CosineSimilarity(vecs[0], vecs[1]); sim != 0 {
		t.Errorf("empty text similarity = %.2f", sim)
	}
}
