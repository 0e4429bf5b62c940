package queue

import (
	"context"
	"errors"
	"slices"
	"sync"
	"time"
)

// MemoryStorage is an in-memory implementation of the Storage interface.
// Suitable for development and testing.
type MemoryStorage struct {
	batches map[string]*Batch
	mu      sync.RWMutex
}

// NewMemoryStorage creates a new in-memory batch storage.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{batches: make(map[string]*Batch)}
}

func (s *MemoryStorage) Create(ctx context.Context, b *Batch) error {
	if b.ID == "" {
		return errors.New("batch ID is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.batches[b.ID]; exists {
		return errors.New("batch already exists: " + b.ID)
	}
	if b.CreatedAt.IsZero() {
		b.CreatedAt = time.Now().UTC()
	}
	s.batches[b.ID] = cloneBatch(b)
	return nil
}

func (s *MemoryStorage) Get(ctx context.Context, id string) (*Batch, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	b, ok := s.batches[id]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneBatch(b), nil
}

func (s *MemoryStorage) Update(ctx context.Context, b *Batch) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.batches[b.ID]; !ok {
		return ErrNotFound
	}
	s.batches[b.ID] = cloneBatch(b)
	return nil
}

func (s *MemoryStorage) ListDue(ctx context.Context, now time.Time, limit int) ([]Batch, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var due []Batch
	for _, b := range s.batches {
		if b.Due(now) {
			due = append(due, *cloneBatch(b))
		}
	}
	slices.SortStableFunc(due, func(a, b Batch) int {
		return a.ScheduledFor.Compare(b.ScheduledFor)
	})
	if limit > 0 && len(due) > limit {
		due = due[:limit]
	}
	return due, nil
}

func cloneBatch(b *Batch) *Batch {
	cp := *b
	cp.Recipients = slices.Clone(b.Recipients)
	if b.Context != nil {
		cp.Context = make(map[string]any, len(b.Context))
		for k, v := range b.Context {
			cp.Context[k] = v
		}
	}
	return &cp
}
