package dedup

import (
	"context"
	"testing"
	"time"

	"noticewala/config"
	"noticewala/types"
)

// bagOfWords embeds each text as a binary term vector over the batch
// vocabulary, so heavily overlapping texts score high without any
// tf-idf discounting.
type bagOfWords struct{}

func (bagOfWords) ModelName() string { return "bag-of-words-test" }

func (bagOfWords) EmbedTexts(_ context.Context, texts []string) ([][]float32, error) {
	index := make(map[string]int)
	docs := make([][]string, len(texts))
	for i, text := range texts {
		docs[i] = tokenize(text)
		for _, tok := range docs[i] {
			if _, ok := index[tok]; !ok {
				index[tok] = len(index)
			}
		}
	}

	out := make([][]float32, len(texts))
	for i, doc := range docs {
		vec := make([]float32, len(index))
		for _, tok := range doc {
			vec[index[tok]] = 1
		}
		out[i] = vec
	}
	return out, nil
}

func announcement(id, title, summary string, created time.Time) *types.Announcement {
	return &types.Announcement{
		ID:        id,
		Title:     title,
		Summary:   summary,
		CreatedAt: created,
		UpdatedAt: created,
	}
}

func testDetector() *Detector {
	return NewDetector(config.Settings{SimilarityThreshold: 0.85}, bagOfWords{})
}

func TestFindDuplicatesNearIdenticalPair(t *testing.T) {
	base := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	a := announcement("a", "IBPS PO Recruitment 2024 Notification",
		"IBPS invites applications for probationary officer posts", base)
	b := announcement("b", "IBPS PO Recruitment 2024 Notification released",
		"IBPS invites applications for probationary officer posts", base.Add(time.Hour))

	pairs, err := testDetector().FindDuplicates(context.Background(), []*types.Announcement{a, b})
	if err != nil {
		t.Fatalf("FindDuplicates: %v", err)
	}
	if len(pairs) != 1 {
		t.Fatalf("expected 1 pair, got %d", len(pairs))
	}

	pair := pairs[0]
	if pair.RootID != "a" || pair.DuplicateID != "b" {
		t.Errorf("pair = %+v, want root a, duplicate b", pair)
	}
	if pair.Similarity < 0.85 {
		t.Errorf("similarity = %.3f", pair.Similarity)
	}

	if a.Duplicate {
		t.Error("root must not be marked duplicate")
	}
	if !b.Duplicate || b.DuplicateOf != "a" {
		t.Errorf("duplicate mark missing: %+v", b)
	}
}

func TestFindDuplicatesDistinctTexts(t *testing.T) {
	base := time.Now().UTC()
	a := announcement("a", "UPSC Civil Services Examination 2024", "Preliminary examination schedule announced", base)
	b := announcement("b", "Railway RRB NTPC Vacancy", "Applications invited for non technical posts", base.Add(time.Minute))

	pairs, err := testDetector().FindDuplicates(context.Background(), []*types.Announcement{a, b})
	if err != nil {
		t.Fatalf("FindDuplicates: %v", err)
	}
	if len(pairs) != 0 {
		t.Errorf("expected no pairs, got %+v", pairs)
	}
}

func TestFindDuplicatesOrderIndependent(t *testing.T) {
	base := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	build := func() []*types.Announcement {
		a := announcement("a", "SSC CGL Notification 2024", "Combined graduate level examination notice", base)
		b := announcement("b", "SSC CGL Notification 2024 out", "Combined graduate level examination notice", base.Add(time.Hour))
		return []*types.Announcement{a, b}
	}

	forward := build()
	pairsForward, err := testDetector().FindDuplicates(context.Background(), forward)
	if err != nil {
		t.Fatalf("FindDuplicates: %v", err)
	}

	reversed := build()
	reversed[0], reversed[1] = reversed[1], reversed[0]
	pairsReversed, err := testDetector().FindDuplicates(context.Background(), reversed)
	if err != nil {
		t.Fatalf("FindDuplicates: %v", err)
	}

	if len(pairsForward) != 1 || len(pairsReversed) != 1 {
		t.Fatalf("expected 1 pair each, got %d and %d", len(pairsForward), len(pairsReversed))
	}
	if pairsForward[0].RootID != pairsReversed[0].RootID ||
		pairsForward[0].DuplicateID != pairsReversed[0].DuplicateID {
		t.Errorf("input order changed the resolution: %+v vs %+v", pairsForward[0], pairsReversed[0])
	}
	// The earliest created record is always the root.
	if pairsForward[0].RootID != "a" {
		t.Errorf("root = %s, want a", pairsForward[0].RootID)
	}
}

func TestFindDuplicatesPreMarkedNeverRoot(t *testing.T) {
	base := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	first := announcement("a", "NTA JEE Main Session Schedule", "Joint entrance examination session dates announced", base)
	first.Duplicate = true
	first.DuplicateOf = "earlier-root"
	second := announcement("b", "NTA JEE Main Session Schedule update", "Joint entrance examination session dates announced", base.Add(time.Hour))

	pairs, err := testDetector().FindDuplicates(context.Background(), []*types.Announcement{first, second})
	if err != nil {
		t.Fatalf("FindDuplicates: %v", err)
	}

	// The only earlier record is itself a duplicate, so nothing can
	// resolve against it.
	if len(pairs) != 0 {
		t.Errorf("pre-marked duplicate acted as root: %+v", pairs)
	}
	if first.DuplicateOf != "earlier-root" {
		t.Errorf("existing mark rewritten: %+v", first)
	}
}

func TestFindDuplicatesIdempotent(t *testing.T) {
	base := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	a := announcement("a", "GATE 2025 Registration Notice", "Graduate aptitude test registration window open", base)
	b := announcement("b", "GATE 2025 Registration Notice published", "Graduate aptitude test registration window open", base.Add(time.Hour))
	window := []*types.Announcement{a, b}

	det := testDetector()
	ctx := context.Background()

	if pairs, err := det.FindDuplicates(ctx, window); err != nil || len(pairs) != 1 {
		t.Fatalf("first pass: pairs=%d err=%v", len(pairs), err)
	}
	// Second pass over the already-marked window resolves nothing new.
	pairs, err := det.FindDuplicates(ctx, window)
	if err != nil {
		t.Fatalf("second pass: %v", err)
	}
	if len(pairs) != 0 {
		t.Errorf("second pass re-resolved pairs: %+v", pairs)
	}
}

func TestFindDuplicatesTinyWindow(t *testing.T) {
	a := announcement("a", "Single record", "only one", time.Now().UTC())
	pairs, err := testDetector().FindDuplicates(context.Background(), []*types.Announcement{a})
	if err != nil || pairs != nil {
		t.Errorf("single-record window: pairs=%v err=%v", pairs, err)
	}
}
