package dispatch

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/claimdesk/notifier/pkg/identity"
	"github.com/claimdesk/notifier/pkg/notification"
	"github.com/claimdesk/notifier/pkg/preference"
)

// Dispatcher routes a notification record to its channel sender, applies
// the resulting lifecycle transition and persists the outcome. Sender
// errors and panics never escape: they become a failed record, so one
// recipient's channel failure cannot abort a larger fan-out.
type Dispatcher struct {
	senders Registry
	records notification.Storage
	prefs   preference.Storage
	logger  *slog.Logger
}

// DispatcherOption configures a Dispatcher.
type DispatcherOption func(*Dispatcher)

// WithDispatcherLogger sets the logger for the Dispatcher.
func WithDispatcherLogger(logger *slog.Logger) DispatcherOption {
	return func(d *Dispatcher) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// NewDispatcher creates a channel dispatcher over a sender registry.
func NewDispatcher(senders Registry, records notification.Storage, prefs preference.Storage, opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{
		senders: senders,
		records: records,
		prefs:   prefs,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Deliver sends one record through its channel and persists the outcome.
// The returned result mirrors what was stored on the record.
func (d *Dispatcher) Deliver(ctx context.Context, n *notification.Notification, user *identity.User) notification.DeliveryResult {
	sender, ok := d.senders[n.Channel]
	if !ok {
		result := notification.Failure(fmt.Sprintf("unknown notification channel: %s", n.Channel))
		d.persist(ctx, n, result)
		return result
	}

	// The preference record carries channel destinations (push token,
	// whatsapp override); its absence must not fail delivery.
	pref, err := d.prefs.GetOrCreate(ctx, n.UserID)
	if err != nil {
		d.logger.LogAttrs(ctx, slog.LevelWarn, "failed to load preference for delivery",
			slog.String("notification_id", n.ID),
			slog.String("user_id", n.UserID),
			slog.String("error", err.Error()),
		)
		pref = nil
	}

	result := d.send(ctx, sender, n, user, pref)
	d.persist(ctx, n, result)

	if result.Success {
		d.logger.LogAttrs(ctx, slog.LevelInfo, "notification delivered",
			slog.String("notification_id", n.ID),
			slog.String("channel", string(n.Channel)),
			slog.String("status", string(n.Status)),
		)
	} else {
		d.logger.LogAttrs(ctx, slog.LevelError, "notification delivery failed",
			slog.String("notification_id", n.ID),
			slog.String("channel", string(n.Channel)),
			slog.String("reason", result.Error),
		)
	}
	return result
}

// send invokes the sender with panic isolation.
func (d *Dispatcher) send(ctx context.Context, sender Sender, n *notification.Notification, user *identity.User, pref *preference.Preference) (result notification.DeliveryResult) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.LogAttrs(ctx, slog.LevelError, "sender panicked",
				slog.String("notification_id", n.ID),
				slog.String("channel", string(n.Channel)),
				slog.Any("panic", r),
			)
			result = notification.Failure(fmt.Sprintf("sender panic: %v", r))
		}
	}()
	return sender.Send(ctx, n, user, pref)
}

// persist applies the result's lifecycle transition and stores the record.
// The sender's details map is kept verbatim.
func (d *Dispatcher) persist(ctx context.Context, n *notification.Notification, result notification.DeliveryResult) {
	switch result.Status {
	case notification.StatusDelivered:
		n.MarkDelivered()
	case notification.StatusSent:
		n.MarkSent()
	default:
		reason := result.Error
		if reason == "" {
			reason = "delivery failed"
		}
		n.MarkFailed(reason)
	}
	if result.Details != nil {
		n.DeliveryDetails = result.Details
	}

	if err := d.records.Update(ctx, n); err != nil {
		// The outbound send already happened; losing the status update is
		// logged rather than propagated so fan-outs keep going.
		d.logger.LogAttrs(ctx, slog.LevelError, "failed to persist delivery outcome",
			slog.String("notification_id", n.ID),
			slog.String("error", err.Error()),
		)
	}
}
