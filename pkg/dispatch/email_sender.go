package dispatch

import (
	"context"
	"time"

	"github.com/claimdesk/notifier/pkg/email"
	"github.com/claimdesk/notifier/pkg/identity"
	"github.com/claimdesk/notifier/pkg/notification"
	"github.com/claimdesk/notifier/pkg/preference"
)

// EmailSender delivers notifications as templated HTML emails. Email has
// fire-and-forget semantics: transport acceptance is treated as delivery,
// there is no confirmation loop.
type EmailSender struct {
	transport  email.Sender
	summarizer identity.EntitySummarizer // optional
}

// NewEmailSender creates the email channel sender. summarizer may be nil.
func NewEmailSender(transport email.Sender, summarizer identity.EntitySummarizer) *EmailSender {
	return &EmailSender{transport: transport, summarizer: summarizer}
}

func (s *EmailSender) Send(ctx context.Context, n *notification.Notification, user *identity.User, pref *preference.Preference) notification.DeliveryResult {
	if s.transport == nil {
		return notification.Failure("email transport not configured")
	}
	if user.Email == "" {
		return notification.Failure("no email address for user")
	}

	var summary string
	if s.summarizer != nil && n.RelatedEntityID != "" {
		summary = s.summarizer.RenderEntitySummary(ctx, n.RelatedEntityID)
	}

	body, err := email.RenderNotificationHTML(email.RenderParams{
		Title:         n.Title,
		Message:       n.Message,
		Priority:      string(n.Priority),
		Language:      user.Language,
		EntitySummary: summary,
	})
	if err != nil {
		return notification.Failure(err.Error())
	}

	if err := s.transport.SendEmail(ctx, email.SendEmailParams{
		SendTo:   user.Email,
		Subject:  n.Title,
		BodyHTML: body,
		Tag:      n.EventType,
	}); err != nil {
		return notification.Failure(err.Error())
	}

	return notification.DeliveryResult{
		Success: true,
		Status:  notification.StatusDelivered,
		Details: map[string]any{
			"recipient": user.Email,
			"sent_at":   time.Now().UTC().Format(time.RFC3339),
		},
	}
}
