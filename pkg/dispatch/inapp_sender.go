package dispatch

import (
	"context"
	"time"

	"github.com/claimdesk/notifier/pkg/identity"
	"github.com/claimdesk/notifier/pkg/notification"
	"github.com/claimdesk/notifier/pkg/preference"
)

// InAppSender performs no external call: the stored record itself is the
// in-app notification, so it is delivered the moment it exists.
type InAppSender struct{}

// NewInAppSender creates the in-app channel sender.
func NewInAppSender() *InAppSender {
	return &InAppSender{}
}

func (s *InAppSender) Send(ctx context.Context, n *notification.Notification, user *identity.User, pref *preference.Preference) notification.DeliveryResult {
	return notification.DeliveryResult{
		Success: true,
		Status:  notification.StatusDelivered,
		Details: map[string]any{
			"type":    "in_app",
			"sent_at": time.Now().UTC().Format(time.RFC3339),
		},
	}
}
