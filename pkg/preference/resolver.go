package preference

import (
	"context"
	"time"

	"github.com/claimdesk/notifier/pkg/notification"
)

// Resolver computes which channels a notification may use for a given
// user and event.
type Resolver struct {
	storage Storage
	now     func() time.Time
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithClock overrides the resolver's time source. Used by tests.
func WithClock(now func() time.Time) ResolverOption {
	return func(r *Resolver) {
		if now != nil {
			r.now = now
		}
	}
}

// NewResolver creates a Resolver on top of a preference storage.
func NewResolver(storage Storage, opts ...ResolverOption) *Resolver {
	r := &Resolver{
		storage: storage,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve returns the user's enabled channel set for an event, creating
// the default preference record on first use. The event override map
// filters the base set; channels without an override entry stay allowed.
func (r *Resolver) Resolve(ctx context.Context, userID, eventType string) ([]notification.Channel, *Preference, error) {
	pref, err := r.storage.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, nil, err
	}

	var enabled []notification.Channel
	for _, ch := range pref.EnabledChannels() {
		if pref.Allows(ch, eventType) {
			enabled = append(enabled, ch)
		}
	}
	return enabled, pref, nil
}

// ShouldSend reports whether a single channel is permitted right now:
// the channel must be allowed for the event and the user must not be in
// quiet hours.
func (r *Resolver) ShouldSend(pref *Preference, ch notification.Channel, eventType string) bool {
	if InQuietHours(pref, r.now()) {
		return false
	}
	return pref.Allows(ch, eventType)
}
