package dispatch

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/claimdesk/notifier/pkg/notification"
	"github.com/claimdesk/notifier/pkg/queue"
)

// BulkProcessor expands a queued batch into individual sends through the
// request-time Service and records per-recipient tallies on the batch.
type BulkProcessor struct {
	service *Service
	batches queue.Storage
	logger  *slog.Logger
}

// NewBulkProcessor creates a batch fan-out processor.
func NewBulkProcessor(service *Service, batches queue.Storage, logger *slog.Logger) *BulkProcessor {
	if logger == nil {
		logger = slog.Default()
	}
	return &BulkProcessor{service: service, batches: batches, logger: logger}
}

// Process fans one batch out to its recipients. Each recipient contributes
// exactly one tally: success when the send was accepted and no channel
// reported a failure, failure otherwise. A panic mid-batch marks the whole
// batch failed instead of leaving it stuck in processing.
func (p *BulkProcessor) Process(ctx context.Context, b *queue.Batch) (err error) {
	if !b.MarkProcessing() {
		return fmt.Errorf("batch %s is not pending", b.ID)
	}
	if err := p.batches.Update(ctx, b); err != nil {
		return fmt.Errorf("mark batch processing: %w", err)
	}

	defer func() {
		if r := recover(); r != nil {
			p.logger.LogAttrs(ctx, slog.LevelError, "batch processing panicked",
				slog.String("batch_id", b.ID),
				slog.Any("panic", r),
			)
			b.MarkFailed(fmt.Sprintf("panic: %v", r))
			if uerr := p.batches.Update(ctx, b); uerr != nil {
				p.logger.LogAttrs(ctx, slog.LevelError, "failed to persist batch failure",
					slog.String("batch_id", b.ID),
					slog.String("error", uerr.Error()),
				)
			}
			err = fmt.Errorf("batch %s panicked: %v", b.ID, r)
		}
	}()

	var successes, failures int
	for _, r := range b.Recipients {
		if p.sendToRecipient(ctx, b, r) {
			successes++
		} else {
			failures++
		}
	}

	b.MarkCompleted(successes, failures)
	if err := p.batches.Update(ctx, b); err != nil {
		return fmt.Errorf("mark batch completed: %w", err)
	}

	p.logger.LogAttrs(ctx, slog.LevelInfo, "batch processed",
		slog.String("batch_id", b.ID),
		slog.Int("successes", successes),
		slog.Int("failures", failures),
	)
	return nil
}

func (p *BulkProcessor) sendToRecipient(ctx context.Context, b *queue.Batch, r queue.Recipient) bool {
	title, message := r.Title, r.Message
	if title == "" {
		title, _ = b.Context["title"].(string)
	}
	if message == "" {
		message, _ = b.Context["message"].(string)
	}

	res, err := p.service.Send(ctx, SendRequest{
		UserID:    r.UserID,
		Title:     title,
		Message:   message,
		Channels:  []notification.Channel{b.Channel},
		Priority:  r.Priority,
		EventType: b.EventType,
		Metadata:  b.Context,
	})
	if err != nil {
		p.logger.LogAttrs(ctx, slog.LevelWarn, "batch recipient send failed",
			slog.String("batch_id", b.ID),
			slog.String("user_id", r.UserID),
			slog.String("error", err.Error()),
		)
		return false
	}
	for _, cr := range res.PerChannel {
		if !cr.Success {
			return false
		}
	}
	return true
}
