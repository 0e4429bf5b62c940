package notification

import (
	"time"
)

// Channel represents a distinct delivery medium.
type Channel string

const (
	ChannelEmail    Channel = "email"
	ChannelSMS      Channel = "sms"
	ChannelPush     Channel = "push"
	ChannelWhatsApp Channel = "whatsapp"
	ChannelInApp    Channel = "in_app"
)

// AllChannels lists every supported channel in a stable order.
func AllChannels() []Channel {
	return []Channel{ChannelEmail, ChannelSMS, ChannelPush, ChannelWhatsApp, ChannelInApp}
}

// ParseChannel validates a raw channel string.
func ParseChannel(s string) (Channel, error) {
	switch Channel(s) {
	case ChannelEmail, ChannelSMS, ChannelPush, ChannelWhatsApp, ChannelInApp:
		return Channel(s), nil
	}
	return "", ErrInvalidChannel
}

// Priority represents the notification priority level.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityNormal Priority = "normal"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// ParsePriority validates a raw priority string. An empty string
// resolves to PriorityNormal.
func ParsePriority(s string) (Priority, error) {
	if s == "" {
		return PriorityNormal, nil
	}
	switch Priority(s) {
	case PriorityLow, PriorityNormal, PriorityHigh, PriorityUrgent:
		return Priority(s), nil
	}
	return "", ErrInvalidPriority
}

// Status represents the lifecycle state of a notification record.
// Transitions are monotonic: pending -> {sent -> delivered -> read} | failed.
type Status string

const (
	StatusPending   Status = "pending"
	StatusSent      Status = "sent"
	StatusDelivered Status = "delivered"
	StatusRead      Status = "read"
	StatusFailed    Status = "failed"
)

// DeliveryResult is the uniform outcome structure returned by a channel sender.
type DeliveryResult struct {
	Success bool           `json:"success"`
	Status  Status         `json:"status,omitempty"`
	Details map[string]any `json:"details,omitempty"`
	Error   string         `json:"error,omitempty"`
}

// Failure builds a failed DeliveryResult from an error message.
func Failure(reason string) DeliveryResult {
	return DeliveryResult{Success: false, Status: StatusFailed, Error: reason}
}

// Notification is the persisted unit of one delivery attempt on one channel
// for one user. Created by the dispatch service; mutated only by the channel
// dispatcher and the explicit mark-as-read operation; never hard-deleted.
type Notification struct {
	ID              string         `json:"id"`
	UserID          string         `json:"user_id"`
	Title           string         `json:"title"`
	Message         string         `json:"message"`
	Channel         Channel        `json:"channel"`
	Priority        Priority       `json:"priority"`
	EventType       string         `json:"event_type,omitempty"`
	RelatedEntityID string         `json:"related_entity_id,omitempty"`
	Status          Status         `json:"status"`
	ScheduledFor    time.Time      `json:"scheduled_for"`
	SentAt          *time.Time     `json:"sent_at,omitempty"`
	DeliveredAt     *time.Time     `json:"delivered_at,omitempty"`
	ReadAt          *time.Time     `json:"read_at,omitempty"`
	FailureReason   string         `json:"failure_reason,omitempty"`
	DeliveryDetails map[string]any `json:"delivery_details,omitempty"`
	Metadata        map[string]any `json:"metadata,omitempty"`
	CreatedAt       time.Time      `json:"created_at"`
}

// Due reports whether the record is waiting and its scheduled time has passed.
func (n *Notification) Due(now time.Time) bool {
	return n.Status == StatusPending && !n.ScheduledFor.After(now)
}

// Unread reports whether the record still counts towards the unread total.
// Failed deliveries are excluded: there is nothing for the user to read.
func (n *Notification) Unread() bool {
	return n.ReadAt == nil && n.Status != StatusFailed
}

// MarkSent transitions pending -> sent. Returns false if the record
// already moved past pending.
func (n *Notification) MarkSent() bool {
	if n.Status != StatusPending {
		return false
	}
	now := time.Now().UTC()
	n.Status = StatusSent
	n.SentAt = &now
	return true
}

// MarkDelivered transitions sent -> delivered. A pending record passes
// through sent implicitly so channels with fire-and-forget semantics
// (email, in-app) can jump straight to delivered.
func (n *Notification) MarkDelivered() bool {
	if n.Status != StatusPending && n.Status != StatusSent {
		return false
	}
	now := time.Now().UTC()
	if n.SentAt == nil {
		n.SentAt = &now
	}
	n.Status = StatusDelivered
	n.DeliveredAt = &now
	return true
}

// MarkRead records the explicit mark-as-read action. Idempotent: a second
// call returns false and leaves ReadAt unchanged. Failed records cannot
// become read.
func (n *Notification) MarkRead() bool {
	if n.ReadAt != nil || n.Status == StatusFailed {
		return false
	}
	now := time.Now().UTC()
	n.Status = StatusRead
	n.ReadAt = &now
	return true
}

// MarkFailed records a terminal delivery failure. Delivered and read
// records stay as they are.
func (n *Notification) MarkFailed(reason string) bool {
	switch n.Status {
	case StatusDelivered, StatusRead, StatusFailed:
		return false
	}
	n.Status = StatusFailed
	n.FailureReason = reason
	return true
}
