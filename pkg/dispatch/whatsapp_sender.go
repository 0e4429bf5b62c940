package dispatch

import (
	"context"
	"time"

	"github.com/claimdesk/notifier/pkg/identity"
	"github.com/claimdesk/notifier/pkg/notification"
	"github.com/claimdesk/notifier/pkg/preference"
)

// WhatsAppSender delivers notifications as WhatsApp text messages.
// The destination number resolves with precedence: the user's profile
// number first, then the preference override.
type WhatsAppSender struct {
	client WhatsAppClient
}

// NewWhatsAppSender creates the WhatsApp channel sender. client may be
// nil, which makes the channel unavailable.
func NewWhatsAppSender(client WhatsAppClient) *WhatsAppSender {
	return &WhatsAppSender{client: client}
}

func (s *WhatsAppSender) Send(ctx context.Context, n *notification.Notification, user *identity.User, pref *preference.Preference) notification.DeliveryResult {
	if s.client == nil {
		return notification.Failure("whatsapp service not configured")
	}

	number := user.WhatsAppNumber
	if number == "" && pref != nil {
		number = pref.WhatsAppNumber
	}
	if number == "" {
		return notification.Failure("no whatsapp number for user")
	}

	ack, err := s.client.SendMessage(ctx, number, "*"+n.Title+"*\n\n"+n.Message)
	if err != nil {
		return notification.Failure(err.Error())
	}
	if !ack.Success {
		reason := ack.Error
		if reason == "" {
			reason = "whatsapp provider rejected the message"
		}
		return notification.Failure(reason)
	}

	return notification.DeliveryResult{
		Success: true,
		Status:  notification.StatusSent,
		Details: map[string]any{
			"recipient":  number,
			"message_id": ack.MessageID,
			"sent_at":    time.Now().UTC().Format(time.RFC3339),
		},
	}
}
