package dispatch

import (
	"context"
	"time"

	"github.com/claimdesk/notifier/pkg/identity"
	"github.com/claimdesk/notifier/pkg/notification"
	"github.com/claimdesk/notifier/pkg/preference"
)

// PushSender delivers notifications to a registered device token. The
// provider acknowledges each send, so a positive ack means delivered.
type PushSender struct {
	client PushClient
}

// NewPushSender creates the push channel sender. client may be nil,
// which makes the channel unavailable.
func NewPushSender(client PushClient) *PushSender {
	return &PushSender{client: client}
}

func (s *PushSender) Send(ctx context.Context, n *notification.Notification, user *identity.User, pref *preference.Preference) notification.DeliveryResult {
	if s.client == nil {
		return notification.Failure("push provider not configured")
	}
	if pref == nil || pref.PushToken == "" {
		return notification.Failure("no push token for user")
	}

	data := map[string]string{
		"notification_id": n.ID,
	}
	if n.EventType != "" {
		data["event_type"] = n.EventType
	}
	if n.RelatedEntityID != "" {
		data["related_entity_id"] = n.RelatedEntityID
	}

	ack, err := s.client.Send(ctx, pref.PushToken, n.Title, n.Message, data)
	if err != nil {
		return notification.Failure(err.Error())
	}
	if !ack.Success {
		reason := ack.Error
		if reason == "" {
			reason = "push provider rejected the message"
		}
		return notification.Failure(reason)
	}

	return notification.DeliveryResult{
		Success: true,
		Status:  notification.StatusDelivered,
		Details: map[string]any{
			"message_id": ack.MessageID,
			"sent_at":    time.Now().UTC().Format(time.RFC3339),
		},
	}
}
