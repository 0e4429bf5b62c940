package notification

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
	byID   map[string]*Notification
	byUser map[string][]string // userID -> record IDs, insertion order
	mu     sync.RWMutex
}

// NewMemoryStorage creates a new in-memory notification storage.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		byID:   make(map[string]*Notification),
		byUser: make(map[string][]string),
	}
}

func (s *MemoryStorage) Create(ctx context.Context, n *Notification) error {
	if n.ID == "" {
		return errors.New("notification ID is required")
	}
	if n.UserID == "" {
		return errors.New("user ID is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byID[n.ID]; exists {
		return errors.New("notification already exists: " + n.ID)
	}

	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now().UTC()
	}

	// Store a copy to prevent external mutation of stored data.
	cp := cloneRecord(n)
	s.byID[n.ID] = cp
	s.byUser[n.UserID] = append(s.byUser[n.UserID], n.ID)
	return nil
}

func (s *MemoryStorage) Get(ctx context.Context, id string) (*Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n, ok := s.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneRecord(n), nil
}

func (s *MemoryStorage) Update(ctx context.Context, n *Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byID[n.ID]; !ok {
		return ErrNotFound
	}
	s.byID[n.ID] = cloneRecord(n)
	return nil
}

func (s *MemoryStorage) ListByUser(ctx context.Context, userID string, opts ListOptions) ([]Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var filtered []Notification
	for _, id := range s.byUser[userID] {
		n := s.byID[id]
		if opts.OnlyUnread && !n.Unread() {
			continue
		}
		filtered = append(filtered, *cloneRecord(n))
	}

	// Newest first.
	slices.SortStableFunc(filtered, func(a, b Notification) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})

	start := opts.Offset
	if start > len(filtered) {
		return []Notification{}, nil
	}
	end := start + opts.Limit
	if opts.Limit == 0 || end > len(filtered) {
		end = len(filtered)
	}
	return filtered[start:end], nil
}

func (s *MemoryStorage) ListDue(ctx context.Context, now time.Time) ([]Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var due []Notification
	for _, n := range s.byID {
		if n.Due(now) {
			due = append(due, *cloneRecord(n))
		}
	}
	slices.SortStableFunc(due, func(a, b Notification) int {
		return a.ScheduledFor.Compare(b.ScheduledFor)
	})
	return due, nil
}

func (s *MemoryStorage) CountUnread(ctx context.Context, userID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, id := range s.byUser[userID] {
		if s.byID[id].Unread() {
			count++
		}
	}
	return count, nil
}

func cloneRecord(n *Notification) *Notification {
	cp := *n
	if n.DeliveryDetails != nil {
		cp.DeliveryDetails = make(map[string]any, len(n.DeliveryDetails))
		for k, v := range n.DeliveryDetails {
			cp.DeliveryDetails[k] = v
		}
	}
	if n.Metadata != nil {
		cp.Metadata = make(map[string]any, len(n.Metadata))
		for k, v := range n.Metadata {
			cp.Metadata[k] = v
		}
	}
	return &cp
}
