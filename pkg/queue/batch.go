package queue

import (
	"time"

	"github.com/claimdesk/notifier/pkg/notification"
)

// BatchStatus represents the lifecycle state of a fan-out batch.
type BatchStatus string

const (
	BatchPending    BatchStatus = "pending"
	BatchProcessing BatchStatus = "processing"
	BatchCompleted  BatchStatus = "completed"
	BatchFailed     BatchStatus = "failed"
)

// Recipient is one target of a batch, with optional per-recipient
// overrides merged over the batch defaults.
type Recipient struct {
	UserID   string                `json:"user_id"`
	Title    string                `json:"title,omitempty"`
	Message  string                `json:"message,omitempty"`
	Priority notification.Priority `json:"priority,omitempty"`
}

// Batch is a bulk fan-out unit: one channel, one event type, many
// recipients sharing a context map. Terminal at completed or failed.
type Batch struct {
	ID            string               `json:"id"`
	Channel       notification.Channel `json:"channel"`
	EventType     string               `json:"event_type,omitempty"`
	Recipients    []Recipient          `json:"recipients"`
	Context       map[string]any       `json:"context,omitempty"`
	Status        BatchStatus          `json:"status"`
	SuccessCount  int                  `json:"success_count"`
	FailureCount  int                  `json:"failure_count"`
	FailureReason string               `json:"failure_reason,omitempty"`
	ScheduledFor  time.Time            `json:"scheduled_for"`
	ProcessedAt   *time.Time           `json:"processed_at,omitempty"`
	CreatedAt     time.Time            `json:"created_at"`
}

// Due reports whether the batch is waiting and its scheduled time has passed.
func (b *Batch) Due(now time.Time) bool {
	return b.Status == BatchPending && !b.ScheduledFor.After(now)
}

// MarkProcessing transitions pending -> processing.
func (b *Batch) MarkProcessing() bool {
	if b.Status != BatchPending {
		return false
	}
	b.Status = BatchProcessing
	return true
}

// MarkCompleted finalizes the batch with its tallies.
func (b *Batch) MarkCompleted(successes, failures int) bool {
	if b.Status != BatchProcessing {
		return false
	}
	now := time.Now().UTC()
	b.Status = BatchCompleted
	b.SuccessCount = successes
	b.FailureCount = failures
	b.ProcessedAt = &now
	return true
}

// MarkFailed records a batch-level failure. Completed batches stay completed.
func (b *Batch) MarkFailed(reason string) bool {
	if b.Status == BatchCompleted || b.Status == BatchFailed {
		return false
	}
	now := time.Now().UTC()
	b.Status = BatchFailed
	b.FailureReason = reason
	b.ProcessedAt = &now
	return true
}
