package queue

import (
	"context"
	"time"
)

// Storage handles batch persistence.
type Storage interface {
	// Create stores a new batch.
	Create(ctx context.Context, b *Batch) error

	// Get retrieves a batch by ID.
	Get(ctx context.Context, id string) (*Batch, error)

	// Update persists lifecycle mutations of an existing batch.
	Update(ctx context.Context, b *Batch) error

	// ListDue returns up to limit pending batches whose scheduled time
	// has passed, oldest first.
	ListDue(ctx context.Context, now time.Time, limit int) ([]Batch, error)
}
