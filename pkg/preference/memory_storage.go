package preference

import (
	"context"
	"sync"
	"time"

	"github.com/claimdesk/notifier/pkg/notification"
)

// MemoryStorage is an in-memory implementation of the Storage interface.
// Suitable for development and testing.
type MemoryStorage struct {
	prefs map[string]*Preference
	mu    sync.Mutex
}

// NewMemoryStorage creates a new in-memory preference storage.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{prefs: make(map[string]*Preference)}
}

func (s *MemoryStorage) GetOrCreate(ctx context.Context, userID string) (*Preference, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p, ok := s.prefs[userID]; ok {
		return clonePreference(p), nil
	}
	p := NewPreference(userID)
	s.prefs[userID] = p
	return clonePreference(p), nil
}

func (s *MemoryStorage) Update(ctx context.Context, p *Preference) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.prefs[p.UserID]; !ok {
		return ErrNotFound
	}
	cp := clonePreference(p)
	cp.UpdatedAt = time.Now().UTC()
	s.prefs[p.UserID] = cp
	return nil
}

func clonePreference(p *Preference) *Preference {
	cp := *p
	if p.EventOverrides != nil {
		cp.EventOverrides = make(map[string]map[notification.Channel]bool, len(p.EventOverrides))
		for event, channels := range p.EventOverrides {
			m := make(map[notification.Channel]bool, len(channels))
			for ch, allowed := range channels {
				m[ch] = allowed
			}
			cp.EventOverrides[event] = m
		}
	}
	return &cp
}
