package dispatch

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/claimdesk/notifier/pkg/identity"
	"github.com/claimdesk/notifier/pkg/notification"
	"github.com/claimdesk/notifier/pkg/queue"
)

const (
	defaultPollInterval  = 30 * time.Second
	defaultErrorBackoff  = 60 * time.Second
	defaultBatchLimit    = 10
	defaultLeaseDuration = 2 * time.Minute
)

// Processor is the background delivery loop: it wakes periodically,
// dispatches scheduled notifications that became due and fans out due
// batches. When a Locker is configured, each unit of work is claimed
// before processing so concurrent instances do not double-dispatch.
type Processor struct {
	directory  identity.Directory
	records    notification.Storage
	batches    queue.Storage
	dispatcher *Dispatcher
	bulk       *BulkProcessor
	locker     Locker
	logger     *slog.Logger
	now        func() time.Time

	pollInterval time.Duration
	errorBackoff time.Duration
	batchLimit   int

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// ProcessorOption configures a Processor.
type ProcessorOption func(*Processor)

// WithLocker enables multi-instance claim leases.
func WithLocker(locker Locker) ProcessorOption {
	return func(p *Processor) { p.locker = locker }
}

// WithProcessorLogger sets the logger for the Processor.
func WithProcessorLogger(logger *slog.Logger) ProcessorOption {
	return func(p *Processor) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithPollInterval overrides the 30s poll cadence. Used by tests.
func WithPollInterval(d time.Duration) ProcessorOption {
	return func(p *Processor) {
		if d > 0 {
			p.pollInterval = d
		}
	}
}

// WithErrorBackoff overrides the 60s post-error pause. Used by tests.
func WithErrorBackoff(d time.Duration) ProcessorOption {
	return func(p *Processor) {
		if d > 0 {
			p.errorBackoff = d
		}
	}
}

// WithBatchLimit overrides how many due batches one cycle picks up.
func WithBatchLimit(limit int) ProcessorOption {
	return func(p *Processor) {
		if limit > 0 {
			p.batchLimit = limit
		}
	}
}

// WithProcessorClock overrides the processor time source. Used by tests.
func WithProcessorClock(now func() time.Time) ProcessorOption {
	return func(p *Processor) {
		if now != nil {
			p.now = now
		}
	}
}

// NewProcessor assembles the background loop.
func NewProcessor(
	directory identity.Directory,
	records notification.Storage,
	batches queue.Storage,
	dispatcher *Dispatcher,
	bulk *BulkProcessor,
	opts ...ProcessorOption,
) *Processor {
	p := &Processor{
		directory:    directory,
		records:      records,
		batches:      batches,
		dispatcher:   dispatcher,
		bulk:         bulk,
		logger:       slog.Default(),
		now:          time.Now,
		pollInterval: defaultPollInterval,
		errorBackoff: defaultErrorBackoff,
		batchLimit:   defaultBatchLimit,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Start launches the polling loop. It returns ErrAlreadyStarted when the
// loop is already running.
func (p *Processor) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cancel != nil {
		return ErrAlreadyStarted
	}

	loopCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.done = make(chan struct{})

	go p.run(loopCtx)

	p.logger.LogAttrs(ctx, slog.LevelInfo, "notification processor started",
		slog.Duration("poll_interval", p.pollInterval),
	)
	return nil
}

// Stop signals the loop to exit and waits for the in-flight cycle to
// finish, up to the given timeout.
func (p *Processor) Stop(timeout time.Duration) error {
	p.mu.Lock()
	cancel, done := p.cancel, p.done
	p.cancel = nil
	p.mu.Unlock()

	if cancel == nil {
		return ErrNotStarted
	}
	cancel()

	select {
	case <-done:
		return nil
	case <-time.After(timeout):
		return ErrStopTimeout
	}
}

func (p *Processor) run(ctx context.Context) {
	defer close(p.done)

	// First cycle runs immediately so a restart does not delay overdue
	// work by a full poll interval.
	wait := time.Duration(0)
	for {
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			p.logger.LogAttrs(context.Background(), slog.LevelInfo, "notification processor stopped")
			return
		case <-timer.C:
		}

		if err := p.cycle(ctx); err != nil {
			p.logger.LogAttrs(ctx, slog.LevelError, "processor cycle failed",
				slog.String("error", err.Error()),
			)
			wait = p.errorBackoff
		} else {
			wait = p.pollInterval
		}
	}
}

// cycle performs one wake-up: due scheduled notifications first, then due
// batches. Per-item failures are absorbed; only storage scan errors bubble
// up and trigger the error backoff.
func (p *Processor) cycle(ctx context.Context) error {
	if err := p.processDueNotifications(ctx); err != nil {
		return err
	}
	return p.processDueBatches(ctx)
}

func (p *Processor) processDueNotifications(ctx context.Context) error {
	due, err := p.records.ListDue(ctx, p.now())
	if err != nil {
		return err
	}

	for i := range due {
		if ctx.Err() != nil {
			return nil
		}
		n := &due[i]
		if !p.claim(ctx, "notification:"+n.ID) {
			continue
		}
		p.dispatchOne(ctx, n)
		p.release(ctx, "notification:"+n.ID)
	}
	return nil
}

// dispatchOne delivers a single due record. Directory misses mark the
// record failed rather than aborting the cycle.
func (p *Processor) dispatchOne(ctx context.Context, n *notification.Notification) {
	user, err := p.directory.GetUser(ctx, n.UserID)
	if err != nil {
		p.logger.LogAttrs(ctx, slog.LevelWarn, "due notification has unknown user",
			slog.String("notification_id", n.ID),
			slog.String("user_id", n.UserID),
		)
		n.MarkFailed("user not found")
		if uerr := p.records.Update(ctx, n); uerr != nil {
			p.logger.LogAttrs(ctx, slog.LevelError, "failed to persist notification failure",
				slog.String("notification_id", n.ID),
				slog.String("error", uerr.Error()),
			)
		}
		return
	}
	p.dispatcher.Deliver(ctx, n, user)
}

func (p *Processor) processDueBatches(ctx context.Context) error {
	due, err := p.batches.ListDue(ctx, p.now(), p.batchLimit)
	if err != nil {
		return err
	}

	for i := range due {
		if ctx.Err() != nil {
			return nil
		}
		b := &due[i]
		if !p.claim(ctx, "batch:"+b.ID) {
			continue
		}
		if err := p.bulk.Process(ctx, b); err != nil {
			p.logger.LogAttrs(ctx, slog.LevelError, "batch processing failed",
				slog.String("batch_id", b.ID),
				slog.String("error", err.Error()),
			)
		}
		p.release(ctx, "batch:"+b.ID)
	}
	return nil
}

// claim takes the work lease when a locker is configured. Lease errors
// fall back to processing locally: duplicate delivery is preferred over
// dropped delivery.
func (p *Processor) claim(ctx context.Context, key string) bool {
	if p.locker == nil {
		return true
	}
	ok, err := p.locker.Acquire(ctx, key, defaultLeaseDuration)
	if err != nil {
		p.logger.LogAttrs(ctx, slog.LevelWarn, "lease acquire failed",
			slog.String("key", key),
			slog.String("error", err.Error()),
		)
		return true
	}
	return ok
}

func (p *Processor) release(ctx context.Context, key string) {
	if p.locker == nil {
		return
	}
	if err := p.locker.Release(ctx, key); err != nil {
		p.logger.LogAttrs(ctx, slog.LevelWarn, "lease release failed",
			slog.String("key", key),
			slog.String("error", err.Error()),
		)
	}
}
