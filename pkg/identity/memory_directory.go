package identity

import (
	"context"
	"sync"
)

// MemoryDirectory is an in-memory Directory for tests and development.
type MemoryDirectory struct {
	users map[string]User
	mu    sync.RWMutex
}

// NewMemoryDirectory creates a directory pre-populated with the given users.
func NewMemoryDirectory(users ...User) *MemoryDirectory {
	d := &MemoryDirectory{users: make(map[string]User, len(users))}
	for _, u := range users {
		d.users[u.ID] = u
	}
	return d
}

// Add inserts or replaces a user.
func (d *MemoryDirectory) Add(u User) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.users[u.ID] = u
}

func (d *MemoryDirectory) GetUser(ctx context.Context, userID string) (*User, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	u, ok := d.users[userID]
	if !ok {
		return nil, ErrUserNotFound
	}
	return &u, nil
}
