package dispatch

import (
	"context"

	"github.com/claimdesk/notifier/pkg/identity"
	"github.com/claimdesk/notifier/pkg/notification"
	"github.com/claimdesk/notifier/pkg/preference"
	"github.com/claimdesk/notifier/pkg/push"
	"github.com/claimdesk/notifier/pkg/whatsapp"
)

// Sender delivers one notification record to its channel and reports the
// uniform DeliveryResult. Implementations must not mutate the record;
// lifecycle transitions are applied by the Dispatcher based on the result.
type Sender interface {
	Send(ctx context.Context, n *notification.Notification, user *identity.User, pref *preference.Preference) notification.DeliveryResult
}

// Registry maps each channel to its sender implementation. Channels
// without an entry are unavailable and fail at dispatch time.
type Registry map[notification.Channel]Sender

// SMSClient is the consumed SMS provider contract.
type SMSClient interface {
	CreateMessage(ctx context.Context, body, from, to string) (sid string, err error)
	From() string
}

// PushClient is the consumed push provider contract.
type PushClient interface {
	Send(ctx context.Context, token, title, body string, data map[string]string) (push.Response, error)
}

// WhatsAppClient is the consumed WhatsApp provider contract.
type WhatsAppClient interface {
	SendMessage(ctx context.Context, to, text string) (whatsapp.Response, error)
}
