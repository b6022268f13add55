package dedup

import (
	"context"
	"fmt"
	"log"
	"sort"
	"time"

	"noticewala/config"
	"noticewala/types"
)

// Detector marks semantic duplicates inside a window of recent
// announcements. The earliest-created record in a similarity cluster
// is the root; every later match points at it.
type Detector struct {
	provider  EmbeddingsProvider
	threshold float64
}

// NewDetector builds a detector from settings. A nil provider selects
// the local TF-IDF vectorizer, so detection always runs.
func NewDetector(s config.Settings, provider EmbeddingsProvider) *Detector {
	if provider == nil {
		provider = TFIDFEmbeddings{}
	}
	threshold := s.SimilarityThreshold
	if threshold == 0 {
		threshold = config.DefaultSimilarityThreshold
	}
	return &Detector{provider: provider, threshold: threshold}
}

// Threshold reports the active similarity cutoff.
func (d *Detector) Threshold() float64 { return d.threshold }

// FindDuplicates scans the window and returns the resolved pairs. The
// window is sorted by creation time (ties broken by ID) before
// comparison, so the result is deterministic for a given input set
// regardless of its order. Records already marked duplicate keep
// their mark and are never chosen as roots. Matched announcements are
// updated in place; callers persist the marks.
func (d *Detector) FindDuplicates(ctx context.Context, window []*types.Announcement) ([]types.DuplicatePair, error) {
	if len(window) < 2 {
		return nil, nil
	}

	ordered := make([]*types.Announcement, len(window))
	copy(ordered, window)
	sort.SliceStable(ordered, func(i, j int) bool {
		if !ordered[i].CreatedAt.Equal(ordered[j].CreatedAt) {
			return ordered[i].CreatedAt.Before(ordered[j].CreatedAt)
		}
		return ordered[i].ID < ordered[j].ID
	})

	texts := make([]string, len(ordered))
	for i, ann := range ordered {
		texts[i] = ann.DedupText()
	}

	vectors, err := d.provider.EmbedTexts(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("embed dedup window: %w", err)
	}
	if len(vectors) != len(ordered) {
		return nil, fmt.Errorf("embedding count mismatch: got %d for %d texts", len(vectors), len(ordered))
	}

	var pairs []types.DuplicatePair
	now := time.Now().UTC()

	for j, ann := range ordered {
		if ann.Duplicate {
			continue
		}

		bestSim := 0.0
		var root *types.Announcement
		for i := 0; i < j; i++ {
			if ordered[i].Duplicate {
				continue
			}
			sim := CosineSimilarity(vectors[i], vectors[j])
			if sim < d.threshold {
				continue
			}
			if sim > bestSim {
				bestSim = sim
				root = ordered[i]
			}
		}
		if root == nil {
			continue
		}

		ann.Duplicate = true
		ann.DuplicateOf = root.ID
		ann.UpdatedAt = now
		pairs = append(pairs, types.DuplicatePair{
			RootID:      root.ID,
			DuplicateID: ann.ID,
			Similarity:  bestSim,
			ResolvedAt:  now,
		})
		log.Printf("dedup: %s duplicates %s (%.2f%% similarity)", ann.ID, root.ID, bestSim*100)
	}

	return pairs, nil
}
