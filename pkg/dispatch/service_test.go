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
	"github.com/claimdesk/notifier/pkg/queue"
)

type serviceFixture struct {
	service   *dispatch.Service
	records   *notification.MemoryStorage
	prefs     *preference.MemoryStorage
	batches   *queue.MemoryStorage
	directory *identity.MemoryDirectory
	senders   dispatch.Registry
}

// newServiceFixture wires a service over in-memory storage with stub
// senders that report success for every channel.
func newServiceFixture(t *testing.T, clock func() time.Time) *serviceFixture {
	t.Helper()

	f := &serviceFixture{
		records:   notification.NewMemoryStorage(),
		prefs:     preference.NewMemoryStorage(),
		batches:   queue.NewMemoryStorage(),
		directory: identity.NewMemoryDirectory(identity.User{ID: "u1", Email: "u1@example.com", Active: true}),
		senders:   dispatch.Registry{},
	}
	for _, ch := range notification.AllChannels() {
		f.senders[ch] = &stubSender{result: notification.DeliveryResult{
			Success: true,
			Status:  notification.StatusDelivered,
		}}
	}

	dispatcher := dispatch.NewDispatcher(f.senders, f.records, f.prefs)

	resolverOpts := []preference.ResolverOption{}
	serviceOpts := []dispatch.ServiceOption{}
	if clock != nil {
		resolverOpts = append(resolverOpts, preference.WithClock(clock))
		serviceOpts = append(serviceOpts, dispatch.WithServiceClock(clock))
	}
	resolver := preference.NewResolver(f.prefs, resolverOpts...)
	f.service = dispatch.NewService(f.directory, resolver, f.records, f.batches, dispatcher, serviceOpts...)
	return f
}

func TestService_Send(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("unknown user fails fast", func(t *testing.T) {
		t.Parallel()
		f := newServiceFixture(t, nil)
		_, err := f.service.Send(ctx, dispatch.SendRequest{UserID: "ghost", Title: "t"})
		assert.ErrorIs(t, err, identity.ErrUserNotFound)

		list, lerr := f.records.ListByUser(ctx, "ghost", notification.ListOptions{})
		require.NoError(t, lerr)
		assert.Empty(t, list)
	})

	t.Run("empty title rejected", func(t *testing.T) {
		t.Parallel()
		f := newServiceFixture(t, nil)
		_, err := f.service.Send(ctx, dispatch.SendRequest{UserID: "u1"})
		assert.ErrorIs(t, err, dispatch.ErrEmptyTitle)
	})

	t.Run("invalid priority rejected", func(t *testing.T) {
		t.Parallel()
		f := newServiceFixture(t, nil)
		_, err := f.service.Send(ctx, dispatch.SendRequest{UserID: "u1", Title: "t", Priority: "extreme"})
		assert.ErrorIs(t, err, notification.ErrInvalidPriority)
	})

	t.Run("invalid explicit channel rejected", func(t *testing.T) {
		t.Parallel()
		f := newServiceFixture(t, nil)
		_, err := f.service.Send(ctx, dispatch.SendRequest{
			UserID:   "u1",
			Title:    "t",
			Channels: []notification.Channel{"pigeon"},
		})
		assert.ErrorIs(t, err, notification.ErrInvalidChannel)
	})

	t.Run("default preferences pick email and in_app only", func(t *testing.T) {
		t.Parallel()
		f := newServiceFixture(t, nil)

		res, err := f.service.Send(ctx, dispatch.SendRequest{
			UserID:    "u1",
			Title:     "Claim update",
			Message:   "Your claim moved forward.",
			EventType: "claim_status_changed",
		})
		require.NoError(t, err)

		assert.Len(t, res.PerChannel, 2)
		assert.Contains(t, res.PerChannel, notification.ChannelEmail)
		assert.Contains(t, res.PerChannel, notification.ChannelInApp)
		assert.NotContains(t, res.PerChannel, notification.ChannelSMS)

		// One record per accepted channel, none for suppressed channels.
		list, err := f.records.ListByUser(ctx, "u1", notification.ListOptions{})
		require.NoError(t, err)
		assert.Len(t, list, 2)
		for _, n := range list {
			assert.Equal(t, notification.StatusDelivered, n.Status)
		}
	})

	t.Run("quiet hours suppress all channels and leave no records", func(t *testing.T) {
		t.Parallel()
		lateNight := func() time.Time { return time.Date(2026, 3, 1, 23, 30, 0, 0, time.UTC) }
		f := newServiceFixture(t, lateNight)

		pref, err := f.prefs.GetOrCreate(ctx, "u1")
		require.NoError(t, err)
		pref.QuietHoursEnabled = true
		pref.QuietHoursStart = "22:00"
		pref.QuietHoursEnd = "06:00"
		require.NoError(t, f.prefs.Update(ctx, pref))

		res, err := f.service.Send(ctx, dispatch.SendRequest{UserID: "u1", Title: "t"})
		require.NoError(t, err)
		assert.Empty(t, res.PerChannel)

		list, err := f.records.ListByUser(ctx, "u1", notification.ListOptions{})
		require.NoError(t, err)
		assert.Empty(t, list)
	})

	t.Run("future schedule creates pending record without dispatch", func(t *testing.T) {
		t.Parallel()
		now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
		f := newServiceFixture(t, func() time.Time { return now })

		res, err := f.service.Send(ctx, dispatch.SendRequest{
			UserID:       "u1",
			Title:        "Reminder",
			Channels:     []notification.Channel{notification.ChannelInApp},
			ScheduledFor: now.Add(time.Hour),
		})
		require.NoError(t, err)

		require.Contains(t, res.PerChannel, notification.ChannelInApp)
		assert.Equal(t, notification.StatusPending, res.PerChannel[notification.ChannelInApp].Status)

		sender := f.senders[notification.ChannelInApp].(*stubSender)
		assert.Zero(t, sender.calls)

		list, err := f.records.ListByUser(ctx, "u1", notification.ListOptions{})
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, notification.StatusPending, list[0].Status)
		assert.Equal(t, now.Add(time.Hour), list[0].ScheduledFor)
	})

	t.Run("explicit channels still honor preferences", func(t *testing.T) {
		t.Parallel()
		f := newServiceFixture(t, nil)

		// SMS is off by default; an explicit request does not override it.
		res, err := f.service.Send(ctx, dispatch.SendRequest{
			UserID:   "u1",
			Title:    "t",
			Channels: []notification.Channel{notification.ChannelSMS, notification.ChannelEmail},
		})
		require.NoError(t, err)
		assert.NotContains(t, res.PerChannel, notification.ChannelSMS)
		assert.Contains(t, res.PerChannel, notification.ChannelEmail)
	})

	t.Run("one channel failure does not affect the others", func(t *testing.T) {
		t.Parallel()
		f := newServiceFixture(t, nil)
		f.senders[notification.ChannelEmail] = &stubSender{result: notification.Failure("smtp down")}

		res, err := f.service.Send(ctx, dispatch.SendRequest{UserID: "u1", Title: "t"})
		require.NoError(t, err)

		assert.False(t, res.PerChannel[notification.ChannelEmail].Success)
		assert.True(t, res.PerChannel[notification.ChannelInApp].Success)
	})
}

func TestService_MarkAsRead(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newServiceFixture(t, nil)

	res, err := f.service.Send(ctx, dispatch.SendRequest{
		UserID:   "u1",
		Title:    "t",
		Channels: []notification.Channel{notification.ChannelInApp},
	})
	require.NoError(t, err)
	require.Len(t, res.PerChannel, 1)

	list, err := f.records.ListByUser(ctx, "u1", notification.ListOptions{})
	require.NoError(t, err)
	require.Len(t, list, 1)
	id := list[0].ID

	t.Run("owner can mark read once", func(t *testing.T) {
		ok, err := f.service.MarkAsRead(ctx, id, "u1")
		require.NoError(t, err)
		assert.True(t, ok)

		// Second attempt is a no-op.
		ok, err = f.service.MarkAsRead(ctx, id, "u1")
		require.NoError(t, err)
		assert.False(t, ok)

		stored, err := f.records.Get(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, notification.StatusRead, stored.Status)
		assert.NotNil(t, stored.ReadAt)
	})

	t.Run("other users cannot mark it", func(t *testing.T) {
		ok, err := f.service.MarkAsRead(ctx, id, "u2")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("missing record reports false without error", func(t *testing.T) {
		ok, err := f.service.MarkAsRead(ctx, "missing", "u1")
		require.NoError(t, err)
		assert.False(t, ok)
	})
}

func TestService_UnreadCount(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newServiceFixture(t, nil)

	for range 3 {
		_, err := f.service.Send(ctx, dispatch.SendRequest{
			UserID:   "u1",
			Title:    "t",
			Channels: []notification.Channel{notification.ChannelInApp},
		})
		require.NoError(t, err)
	}

	count, err := f.service.UnreadCount(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	list, err := f.records.ListByUser(ctx, "u1", notification.ListOptions{Limit: 1})
	require.NoError(t, err)
	ok, err := f.service.MarkAsRead(ctx, list[0].ID, "u1")
	require.NoError(t, err)
	require.True(t, ok)

	count, err = f.service.UnreadCount(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestService_SubmitBatch(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newServiceFixture(t, nil)

	t.Run("invalid channel", func(t *testing.T) {
		t.Parallel()
		_, err := f.service.SubmitBatch(ctx, "pigeon", "claim_created", []queue.Recipient{{UserID: "u1"}}, nil, time.Time{})
		assert.ErrorIs(t, err, notification.ErrInvalidChannel)
	})

	t.Run("no recipients", func(t *testing.T) {
		t.Parallel()
		_, err := f.service.SubmitBatch(ctx, notification.ChannelInApp, "claim_created", nil, nil, time.Time{})
		assert.ErrorIs(t, err, dispatch.ErrNoRecipients)
	})

	t.Run("creates a pending batch", func(t *testing.T) {
		t.Parallel()
		id, err := f.service.SubmitBatch(ctx, notification.ChannelInApp, "claim_created",
			[]queue.Recipient{{UserID: "u1", Title: "hello"}},
			map[string]any{"claim_id": "c-9"}, time.Time{})
		require.NoError(t, err)

		b, err := f.batches.Get(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, queue.BatchPending, b.Status)
		assert.Equal(t, "claim_created", b.EventType)
		assert.Len(t, b.Recipients, 1)
	})
}

func TestService_NotifyEvent(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newServiceFixture(t, nil)
	f.directory.Add(identity.User{ID: "u2", Email: "u2@example.com", Language: "en", Active: true})

	errs := f.service.NotifyEvent(ctx, "claim_created", []string{"u1", "u2"}, "claim-7",
		map[string]any{"claim_id": "claim-7", "client_name": "Acme", "claim_amount": 1200, "currency": "SAR"},
		notification.PriorityHigh)
	assert.Empty(t, errs)

	// Arabic template for u1 (default language), English for u2.
	listAr, err := f.records.ListByUser(ctx, "u1", notification.ListOptions{})
	require.NoError(t, err)
	require.NotEmpty(t, listAr)
	assert.Equal(t, "مطالبة جديدة", listAr[0].Title)
	assert.Equal(t, notification.PriorityHigh, listAr[0].Priority)
	assert.Equal(t, "claim-7", listAr[0].RelatedEntityID)

	listEn, err := f.records.ListByUser(ctx, "u2", notification.ListOptions{})
	require.NoError(t, err)
	require.NotEmpty(t, listEn)
	assert.Equal(t, "New Claim", listEn[0].Title)
	assert.Contains(t, listEn[0].Message, "claim-7")
	assert.Contains(t, listEn[0].Message, "Acme")
	assert.NotContains(t, listEn[0].Message, "{claim_id}")
}
