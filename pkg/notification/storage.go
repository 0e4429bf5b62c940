package notification

import (
	"context"
	"time"
)

// Storage handles notification record persistence and retrieval.
type Storage interface {
	// Create stores a new notification record.
	Create(ctx context.Context, n *Notification) error

	// Get retrieves a single record by ID.
	Get(ctx context.Context, id string) (*Notification, error)

	// Update persists lifecycle mutations of an existing record.
	Update(ctx context.Context, n *Notification) error

	// ListByUser returns a user's records, newest first.
	ListByUser(ctx context.Context, userID string, opts ListOptions) ([]Notification, error)

	// ListDue returns pending records whose scheduled time has passed.
	ListDue(ctx context.Context, now time.Time) ([]Notification, error)

	// CountUnread returns the unread count for a user.
	CountUnread(ctx context.Context, userID string) (int, error)
}

// ListOptions provides filtering and pagination for listing notifications.
type ListOptions struct {
	Limit      int  // Maximum number of records to return (0 = no limit)
	Offset     int  // Number of records to skip for pagination
	OnlyUnread bool // When true, only return unread records
}
