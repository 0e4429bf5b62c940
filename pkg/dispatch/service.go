package dispatch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/claimdesk/notifier/pkg/identity"
	"github.com/claimdesk/notifier/pkg/notification"
	"github.com/claimdesk/notifier/pkg/preference"
	"github.com/claimdesk/notifier/pkg/queue"
)

// SendRequest is the ephemeral input of one send_notification call.
type SendRequest struct {
	UserID          string
	Title           string
	Message         string
	Channels        []notification.Channel // empty = resolve from preferences
	Priority        notification.Priority  // empty = normal
	EventType       string
	RelatedEntityID string
	ScheduledFor    time.Time // zero = dispatch immediately
	Metadata        map[string]any
}

// Result aggregates the per-channel outcomes of one send call. Overall
// success reflects only that the user existed and the request was valid;
// individual channel failures do not flip it.
type Result struct {
	PerChannel map[notification.Channel]notification.DeliveryResult
}

// Service is the request-time API of the dispatch engine: validates
// requests, resolves channels, creates lifecycle records and dispatches
// or defers them.
type Service struct {
	directory  identity.Directory
	resolver   *preference.Resolver
	records    notification.Storage
	batches    queue.Storage
	dispatcher *Dispatcher
	logger     *slog.Logger
	now        func() time.Time
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithServiceLogger sets the logger for the Service.
func WithServiceLogger(logger *slog.Logger) ServiceOption {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithServiceClock overrides the service time source. Used by tests.
func WithServiceClock(now func() time.Time) ServiceOption {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// NewService wires the request-time API together.
func NewService(
	directory identity.Directory,
	resolver *preference.Resolver,
	records notification.Storage,
	batches queue.Storage,
	dispatcher *Dispatcher,
	opts ...ServiceOption,
) *Service {
	s := &Service{
		directory:  directory,
		resolver:   resolver,
		records:    records,
		batches:    batches,
		dispatcher: dispatcher,
		logger:     slog.Default(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Send validates the request, resolves permitted channels, creates one
// pending record per accepted channel and dispatches records that are
// already due. Channels suppressed by preferences or quiet hours are
// silently skipped: no record is created for them.
func (s *Service) Send(ctx context.Context, req SendRequest) (*Result, error) {
	user, err := s.directory.GetUser(ctx, req.UserID)
	if err != nil {
		return nil, fmt.Errorf("resolve user %q: %w", req.UserID, err)
	}
	if req.Title == "" {
		return nil, ErrEmptyTitle
	}
	priority, err := notification.ParsePriority(string(req.Priority))
	if err != nil {
		return nil, err
	}

	candidates := req.Channels
	var pref *preference.Preference
	if len(candidates) == 0 {
		candidates, pref, err = s.resolver.Resolve(ctx, req.UserID, req.EventType)
		if err != nil {
			return nil, fmt.Errorf("resolve channels: %w", err)
		}
	} else {
		for _, ch := range candidates {
			if _, err := notification.ParseChannel(string(ch)); err != nil {
				return nil, fmt.Errorf("%w: %q", err, ch)
			}
		}
		if _, pref, err = s.resolver.Resolve(ctx, req.UserID, req.EventType); err != nil {
			return nil, fmt.Errorf("resolve preferences: %w", err)
		}
	}

	now := s.now()
	scheduledFor := req.ScheduledFor
	if scheduledFor.IsZero() {
		scheduledFor = now
	}

	results := make(map[notification.Channel]notification.DeliveryResult)
	for _, ch := range candidates {
		if !s.resolver.ShouldSend(pref, ch, req.EventType) {
			continue
		}

		n := &notification.Notification{
			ID:              uuid.New().String(),
			UserID:          req.UserID,
			Title:           req.Title,
			Message:         req.Message,
			Channel:         ch,
			Priority:        priority,
			EventType:       req.EventType,
			RelatedEntityID: req.RelatedEntityID,
			Status:          notification.StatusPending,
			ScheduledFor:    scheduledFor,
			Metadata:        req.Metadata,
			CreatedAt:       now.UTC(),
		}
		if err := s.records.Create(ctx, n); err != nil {
			s.logger.LogAttrs(ctx, slog.LevelError, "failed to create notification record",
				slog.String("user_id", req.UserID),
				slog.String("channel", string(ch)),
				slog.String("error", err.Error()),
			)
			results[ch] = notification.Failure(err.Error())
			continue
		}

		if !scheduledFor.After(now) {
			results[ch] = s.dispatcher.Deliver(ctx, n, user)
		} else {
			results[ch] = notification.DeliveryResult{
				Success: true,
				Status:  notification.StatusPending,
			}
		}
	}

	return &Result{PerChannel: results}, nil
}

// NotifyEvent sends a templated event notification to a set of users,
// localized per user. Event data fills the {placeholders} of the
// built-in template table.
func (s *Service) NotifyEvent(ctx context.Context, eventType string, userIDs []string, relatedEntityID string, data map[string]any, priority notification.Priority) []error {
	var errs []error
	for _, userID := range userIDs {
		lang := "ar"
		if user, err := s.directory.GetUser(ctx, userID); err == nil && user.Language != "" {
			lang = user.Language
		}
		tpl := TemplateFor(eventType, lang)

		if _, err := s.Send(ctx, SendRequest{
			UserID:          userID,
			Title:           tpl.Title,
			Message:         FormatTemplate(tpl.Message, data),
			Priority:        priority,
			EventType:       eventType,
			RelatedEntityID: relatedEntityID,
			Metadata:        data,
		}); err != nil {
			errs = append(errs, fmt.Errorf("notify user %q: %w", userID, err))
		}
	}
	return errs
}

// ListUserNotifications returns a user's records, newest first.
func (s *Service) ListUserNotifications(ctx context.Context, userID string, limit, offset int, unreadOnly bool) ([]notification.Notification, error) {
	return s.records.ListByUser(ctx, userID, notification.ListOptions{
		Limit:      limit,
		Offset:     offset,
		OnlyUnread: unreadOnly,
	})
}

// MarkAsRead marks one record read on behalf of its owner. Returns false
// without error when the record does not exist, belongs to another user,
// or was already read.
func (s *Service) MarkAsRead(ctx context.Context, notificationID, userID string) (bool, error) {
	n, err := s.records.Get(ctx, notificationID)
	if err != nil {
		if errors.Is(err, notification.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	if n.UserID != userID {
		return false, nil
	}
	if !n.MarkRead() {
		return false, nil
	}
	if err := s.records.Update(ctx, n); err != nil {
		return false, err
	}
	return true, nil
}

// UnreadCount returns the user's unread notification count.
func (s *Service) UnreadCount(ctx context.Context, userID string) (int, error) {
	return s.records.CountUnread(ctx, userID)
}

// SubmitBatch enqueues a bulk fan-out unit for the background processor
// and returns its ID.
func (s *Service) SubmitBatch(ctx context.Context, channel notification.Channel, eventType string, recipients []queue.Recipient, batchContext map[string]any, scheduledFor time.Time) (string, error) {
	if _, err := notification.ParseChannel(string(channel)); err != nil {
		return "", err
	}
	if len(recipients) == 0 {
		return "", ErrNoRecipients
	}
	if scheduledFor.IsZero() {
		scheduledFor = s.now()
	}

	b := &queue.Batch{
		ID:           uuid.New().String(),
		Channel:      channel,
		EventType:    eventType,
		Recipients:   recipients,
		Context:      batchContext,
		Status:       queue.BatchPending,
		ScheduledFor: scheduledFor,
		CreatedAt:    s.now().UTC(),
	}
	if err := s.batches.Create(ctx, b); err != nil {
		return "", fmt.Errorf("create batch: %w", err)
	}

	s.logger.LogAttrs(ctx, slog.LevelInfo, "batch submitted",
		slog.String("batch_id", b.ID),
		slog.String("channel", string(channel)),
		slog.Int("recipients", len(recipients)),
	)
	return b.ID, nil
}
