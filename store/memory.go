package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"noticewala/types"
)

// Memory is a mutex-guarded in-process Store. It backs tests and runs
// without a configured database.
type Memory struct {
	mu      sync.RWMutex
	byID    map[string]*types.Announcement
	byURL   map[string]string // source URL -> announcement ID
	sources map[string]*types.Source
}

var _ Store = (*Memory)(nil)

func NewMemory() *Memory {
	return &Memory{
		byID:    make(map[string]*types.Announcement),
		byURL:   make(map[string]string),
		sources: make(map[string]*types.Source),
	}
}

func (m *Memory) UpsertSource(_ context.Context, src types.Source) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if existing, ok := m.sources[src.Name]; ok {
		existing.BaseURL = src.BaseURL
		existing.Type = src.Type
		existing.Region = src.Region
		existing.Categories = append([]string(nil), src.Categories...)
		existing.UpdateFrequency = src.UpdateFrequency
		return nil
	}
	cp := src
	cp.Categories = append([]string(nil), src.Categories...)
	m.sources[src.Name] = &cp
	return nil
}

func (m *Memory) TouchSource(_ context.Context, name string, success bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	src, ok := m.sources[name]
	if !ok {
		return ErrNotFound
	}
	now := time.Now().UTC()
	src.LastCrawled = &now
	total := float64(src.TotalCrawls)
	hit := 0.0
	if success {
		hit = 1.0
	}
	src.SuccessRate = (src.SuccessRate*total + hit) / (total + 1)
	src.TotalCrawls++
	return nil
}

func (m *Memory) Sources(_ context.Context) ([]types.Source, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]types.Source, 0, len(m.sources))
	for _, src := range m.sources {
		out = append(out, *src)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *Memory) GetBySourceURL(_ context.Context, url string) (*types.Announcement, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	id, ok := m.byURL[url]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *m.byID[id]
	return &cp, nil
}

func (m *Memory) Insert(_ context.Context, ann *types.Announcement) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.byURL[ann.SourceURL]; ok {
		return ErrAlreadyExists
	}
	cp := *ann
	m.byID[cp.ID] = &cp
	m.byURL[cp.SourceURL] = cp.ID
	return nil
}

func (m *Memory) Update(_ context.Context, ann *types.Announcement) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.byID[ann.ID]
	if !ok {
		return ErrNotFound
	}
	cp := *ann
	cp.CreatedAt = existing.CreatedAt
	m.byID[ann.ID] = &cp
	m.byURL[cp.SourceURL] = cp.ID
	return nil
}

func (m *Memory) RecentWindow(_ context.Context, since time.Time, limit int) ([]*types.Announcement, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []*types.Announcement
	for _, ann := range m.byID {
		if ann.CreatedAt.Before(since) {
			continue
		}
		cp := *ann
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *Memory) MarkDuplicate(_ context.Context, id, rootID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	ann, ok := m.byID[id]
	if !ok {
		return ErrNotFound
	}
	ann.Duplicate = true
	ann.DuplicateOf = rootID
	ann.UpdatedAt = time.Now().UTC()
	return nil
}

func (m *Memory) Count(_ context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.byID), nil
}

func (m *Memory) Close() error { return nil }
