package dispatch_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/claimdesk/notifier/pkg/dispatch"
	"github.com/claimdesk/notifier/pkg/notification"
	"github.com/claimdesk/notifier/pkg/queue"
)

// denyAllLocker refuses every claim, simulating another instance holding
// the lease.
type denyAllLocker struct{}

func (denyAllLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	return false, nil
}

func (denyAllLocker) Release(ctx context.Context, key string) error { return nil }

// memoryLocker grants each key once.
type memoryLocker struct {
	mu   sync.Mutex
	held map[string]bool
}

func (l *memoryLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.held == nil {
		l.held = make(map[string]bool)
	}
	if l.held[key] {
		return false, nil
	}
	l.held[key] = true
	return true, nil
}

func (l *memoryLocker) Release(ctx context.Context, key string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.held, key)
	return nil
}

func newProcessorFixture(t *testing.T, f *serviceFixture, opts ...dispatch.ProcessorOption) *dispatch.Processor {
	t.Helper()
	dispatcher := dispatch.NewDispatcher(f.senders, f.records, f.prefs)
	bulk := dispatch.NewBulkProcessor(f.service, f.batches, nil)
	opts = append([]dispatch.ProcessorOption{dispatch.WithPollInterval(10 * time.Millisecond)}, opts...)
	return dispatch.NewProcessor(f.directory, f.records, f.batches, dispatcher, bulk, opts...)
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not reached in time")
}

func TestProcessor_DispatchesDueNotifications(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newServiceFixture(t, nil)

	n := pendingRecord("n1", notification.ChannelInApp)
	n.ScheduledFor = time.Now().UTC().Add(-time.Minute)
	require.NoError(t, f.records.Create(ctx, n))

	proc := newProcessorFixture(t, f)
	require.NoError(t, proc.Start(ctx))
	defer func() { _ = proc.Stop(time.Second) }()

	waitFor(t, func() bool {
		got, err := f.records.Get(ctx, "n1")
		return err == nil && got.Status == notification.StatusDelivered
	})
}

func TestProcessor_MarksUnknownUserFailed(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newServiceFixture(t, nil)

	n := pendingRecord("n1", notification.ChannelInApp)
	n.UserID = "ghost"
	n.ScheduledFor = time.Now().UTC().Add(-time.Minute)
	require.NoError(t, f.records.Create(ctx, n))

	proc := newProcessorFixture(t, f)
	require.NoError(t, proc.Start(ctx))
	defer func() { _ = proc.Stop(time.Second) }()

	waitFor(t, func() bool {
		got, err := f.records.Get(ctx, "n1")
		return err == nil && got.Status == notification.StatusFailed
	})
}

func TestProcessor_ProcessesDueBatches(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newServiceFixture(t, nil)

	b := pendingBatch(queue.Recipient{UserID: "u1", Title: "hello"})
	b.ScheduledFor = time.Now().UTC().Add(-time.Minute)
	require.NoError(t, f.batches.Create(ctx, b))

	proc := newProcessorFixture(t, f, dispatch.WithLocker(&memoryLocker{}))
	require.NoError(t, proc.Start(ctx))
	defer func() { _ = proc.Stop(time.Second) }()

	waitFor(t, func() bool {
		got, err := f.batches.Get(ctx, "b1")
		return err == nil && got.Status == queue.BatchCompleted
	})

	got, err := f.batches.Get(ctx, "b1")
	require.NoError(t, err)
	assert.Equal(t, 1, got.SuccessCount)
	assert.Equal(t, 0, got.FailureCount)
}

func TestProcessor_SkipsWorkHeldByAnotherInstance(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newServiceFixture(t, nil)

	n := pendingRecord("n1", notification.ChannelInApp)
	n.ScheduledFor = time.Now().UTC().Add(-time.Minute)
	require.NoError(t, f.records.Create(ctx, n))

	proc := newProcessorFixture(t, f, dispatch.WithLocker(denyAllLocker{}))
	require.NoError(t, proc.Start(ctx))

	// Give a few poll cycles a chance; the record must stay untouched.
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, proc.Stop(time.Second))

	got, err := f.records.Get(ctx, "n1")
	require.NoError(t, err)
	assert.Equal(t, notification.StatusPending, got.Status)
}

func TestProcessor_StartStop(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newServiceFixture(t, nil)
	proc := newProcessorFixture(t, f)

	assert.ErrorIs(t, proc.Stop(time.Second), dispatch.ErrNotStarted)

	require.NoError(t, proc.Start(ctx))
	assert.ErrorIs(t, proc.Start(ctx), dispatch.ErrAlreadyStarted)

	require.NoError(t, proc.Stop(time.Second))
	assert.ErrorIs(t, proc.Stop(time.Second), dispatch.ErrNotStarted)
}
