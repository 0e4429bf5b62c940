package preference

import "context"

// Storage handles preference persistence.
type Storage interface {
	// GetOrCreate returns the user's preference record, atomically
	// inserting the defaults when none exists yet. Concurrent first
	// resolutions for the same user must not produce duplicates.
	GetOrCreate(ctx context.Context, userID string) (*Preference, error)

	// Update persists changes to an existing preference record.
	Update(ctx context.Context, p *Preference) error
}
