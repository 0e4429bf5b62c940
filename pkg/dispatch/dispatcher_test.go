package dispatch_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/claimdesk/notifier/pkg/dispatch"
	"github.com/claimdesk/notifier/pkg/identity"
	"github.com/claimdesk/notifier/pkg/notification"
	"github.com/claimdesk/notifier/pkg/preference"
)

// stubSender returns a canned result, or panics when told to.
type stubSender struct {
	result    notification.DeliveryResult
	panicWith any
	calls     int
}

func (s *stubSender) Send(ctx context.Context, n *notification.Notification, user *identity.User, pref *preference.Preference) notification.DeliveryResult {
	s.calls++
	if s.panicWith != nil {
		panic(s.panicWith)
	}
	return s.result
}

func storedRecord(t *testing.T, store notification.Storage, id string) *notification.Notification {
	t.Helper()
	n, err := store.Get(context.Background(), id)
	require.NoError(t, err)
	return n
}

func pendingRecord(id string, ch notification.Channel) *notification.Notification {
	return &notification.Notification{
		ID:           id,
		UserID:       "u1",
		Title:        "t",
		Channel:      ch,
		Priority:     notification.PriorityNormal,
		Status:       notification.StatusPending,
		ScheduledFor: time.Now().UTC(),
		CreatedAt:    time.Now().UTC(),
	}
}

func TestDispatcher_Deliver(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	user := &identity.User{ID: "u1", Email: "u1@example.com", Active: true}

	t.Run("delivered result transitions the record", func(t *testing.T) {
		t.Parallel()
		records := notification.NewMemoryStorage()
		sender := &stubSender{result: notification.DeliveryResult{
			Success: true,
			Status:  notification.StatusDelivered,
			Details: map[string]any{"recipient": "u1@example.com", "provider_ref": "abc"},
		}}
		d := dispatch.NewDispatcher(
			dispatch.Registry{notification.ChannelEmail: sender},
			records, preference.NewMemoryStorage())

		n := pendingRecord("n1", notification.ChannelEmail)
		require.NoError(t, records.Create(ctx, n))

		res := d.Deliver(ctx, n, user)
		assert.True(t, res.Success)

		stored := storedRecord(t, records, "n1")
		assert.Equal(t, notification.StatusDelivered, stored.Status)
		assert.NotNil(t, stored.SentAt)
		assert.NotNil(t, stored.DeliveredAt)
		// The sender's details land on the record unmodified.
		assert.Equal(t, "abc", stored.DeliveryDetails["provider_ref"])
		assert.Equal(t, "u1@example.com", stored.DeliveryDetails["recipient"])
	})

	t.Run("sent result stops at sent", func(t *testing.T) {
		t.Parallel()
		records := notification.NewMemoryStorage()
		sender := &stubSender{result: notification.DeliveryResult{
			Success: true,
			Status:  notification.StatusSent,
		}}
		d := dispatch.NewDispatcher(
			dispatch.Registry{notification.ChannelSMS: sender},
			records, preference.NewMemoryStorage())

		n := pendingRecord("n1", notification.ChannelSMS)
		require.NoError(t, records.Create(ctx, n))
		d.Deliver(ctx, n, user)

		stored := storedRecord(t, records, "n1")
		assert.Equal(t, notification.StatusSent, stored.Status)
		assert.Nil(t, stored.DeliveredAt)
	})

	t.Run("failure result marks the record failed", func(t *testing.T) {
		t.Parallel()
		records := notification.NewMemoryStorage()
		sender := &stubSender{result: notification.Failure("provider down")}
		d := dispatch.NewDispatcher(
			dispatch.Registry{notification.ChannelEmail: sender},
			records, preference.NewMemoryStorage())

		n := pendingRecord("n1", notification.ChannelEmail)
		require.NoError(t, records.Create(ctx, n))

		res := d.Deliver(ctx, n, user)
		assert.False(t, res.Success)

		stored := storedRecord(t, records, "n1")
		assert.Equal(t, notification.StatusFailed, stored.Status)
		assert.Equal(t, "provider down", stored.FailureReason)
	})

	t.Run("unknown channel fails without a sender", func(t *testing.T) {
		t.Parallel()
		records := notification.NewMemoryStorage()
		d := dispatch.NewDispatcher(dispatch.Registry{}, records, preference.NewMemoryStorage())

		n := pendingRecord("n1", notification.ChannelPush)
		require.NoError(t, records.Create(ctx, n))

		res := d.Deliver(ctx, n, user)
		assert.False(t, res.Success)
		assert.Equal(t, notification.StatusFailed, storedRecord(t, records, "n1").Status)
	})

	t.Run("sender panic becomes a failed record", func(t *testing.T) {
		t.Parallel()
		records := notification.NewMemoryStorage()
		sender := &stubSender{panicWith: "smtp client exploded"}
		d := dispatch.NewDispatcher(
			dispatch.Registry{notification.ChannelEmail: sender},
			records, preference.NewMemoryStorage())

		n := pendingRecord("n1", notification.ChannelEmail)
		require.NoError(t, records.Create(ctx, n))

		res := d.Deliver(ctx, n, user)
		assert.False(t, res.Success)
		assert.Contains(t, res.Error, "smtp client exploded")
		assert.Equal(t, notification.StatusFailed, storedRecord(t, records, "n1").Status)
	})
}
