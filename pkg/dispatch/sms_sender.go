package dispatch

import (
	"context"
	"time"

	"github.com/claimdesk/notifier/pkg/identity"
	"github.com/claimdesk/notifier/pkg/notification"
	"github.com/claimdesk/notifier/pkg/preference"
)

// smsBodyLimit is the number of message runes kept before truncation.
const smsBodyLimit = 100

// SMSSender delivers notifications as short text messages. The provider
// models no delivery receipt, so a successful send stops at status sent.
type SMSSender struct {
	client SMSClient
}

// NewSMSSender creates the SMS channel sender. client may be nil, which
// makes the channel unavailable.
func NewSMSSender(client SMSClient) *SMSSender {
	return &SMSSender{client: client}
}

func (s *SMSSender) Send(ctx context.Context, n *notification.Notification, user *identity.User, pref *preference.Preference) notification.DeliveryResult {
	if s.client == nil {
		return notification.Failure("sms provider not configured")
	}
	if user.Phone == "" {
		return notification.Failure("no phone number for user")
	}

	sid, err := s.client.CreateMessage(ctx, smsContent(n, user.Language), s.client.From(), user.Phone)
	if err != nil {
		return notification.Failure(err.Error())
	}

	return notification.DeliveryResult{
		Success: true,
		Status:  notification.StatusSent,
		Details: map[string]any{
			"recipient":   user.Phone,
			"message_sid": sid,
			"sent_at":     time.Now().UTC().Format(time.RFC3339),
		},
	}
}

// smsContent builds the short message body: title, truncated message and
// an optional related-entity reference.
func smsContent(n *notification.Notification, language string) string {
	body := n.Message
	if runes := []rune(body); len(runes) > smsBodyLimit {
		body = string(runes[:smsBodyLimit]) + "..."
	}
	content := n.Title + "\n\n" + body
	if n.RelatedEntityID != "" {
		label := "رقم المرجع"
		if language == "en" {
			label = "Ref"
		}
		content += "\n\n" + label + ": " + n.RelatedEntityID
	}
	return content
}
