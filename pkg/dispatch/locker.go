package dispatch

import (
	"context"
	"time"
)

// Locker claims short-lived exclusive leases so that only one processor
// instance dispatches a given record or batch when several run against
// the same database.
type Locker interface {
	// Acquire attempts to take the lease. It returns false when another
	// holder already owns it.
	Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error)

	// Release gives the lease back. Releasing a lease held by someone
	// else is a no-op.
	Release(ctx context.Context, key string) error
}
