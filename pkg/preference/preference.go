package preference

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/claimdesk/notifier/pkg/notification"
)

// Preference holds one user's channel enablement, quiet-hours window and
// per-event overrides. One record per user, lazily created on first
// resolution.
type Preference struct {
	UserID string `json:"user_id"`

	EmailEnabled    bool `json:"email_enabled"`
	SMSEnabled      bool `json:"sms_enabled"`
	PushEnabled     bool `json:"push_enabled"`
	WhatsAppEnabled bool `json:"whatsapp_enabled"`
	InAppEnabled    bool `json:"in_app_enabled"`

	// Quiet hours bounds are "HH:MM" local wall-clock strings. A window
	// with start > end spans midnight.
	QuietHoursEnabled bool   `json:"quiet_hours_enabled"`
	QuietHoursStart   string `json:"quiet_hours_start,omitempty"`
	QuietHoursEnd     string `json:"quiet_hours_end,omitempty"`

	PushToken      string `json:"push_token,omitempty"`
	WhatsAppNumber string `json:"whatsapp_number,omitempty"`

	// EventOverrides maps an event type to per-channel allow flags.
	// A channel absent from an event's map defaults to allowed.
	EventOverrides map[string]map[notification.Channel]bool `json:"event_overrides,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewPreference returns the default preference record for a user:
// email and in-app on, the paid channels off, no quiet hours.
func NewPreference(userID string) *Preference {
	now := time.Now().UTC()
	return &Preference{
		UserID:       userID,
		EmailEnabled: true,
		InAppEnabled: true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// EnabledChannels computes the base channel set from the boolean flags,
// in the stable channel order.
func (p *Preference) EnabledChannels() []notification.Channel {
	var out []notification.Channel
	for _, ch := range notification.AllChannels() {
		if p.ChannelEnabled(ch) {
			out = append(out, ch)
		}
	}
	return out
}

// ChannelEnabled reports the raw enable flag for a channel.
func (p *Preference) ChannelEnabled(ch notification.Channel) bool {
	switch ch {
	case notification.ChannelEmail:
		return p.EmailEnabled
	case notification.ChannelSMS:
		return p.SMSEnabled
	case notification.ChannelPush:
		return p.PushEnabled
	case notification.ChannelWhatsApp:
		return p.WhatsAppEnabled
	case notification.ChannelInApp:
		return p.InAppEnabled
	}
	return false
}

// Allows applies the event override map on top of the enable flag.
// Absent override entries default to allowed.
func (p *Preference) Allows(ch notification.Channel, eventType string) bool {
	if !p.ChannelEnabled(ch) {
		return false
	}
	if eventType == "" {
		return true
	}
	overrides, ok := p.EventOverrides[eventType]
	if !ok {
		return true
	}
	allowed, ok := overrides[ch]
	if !ok {
		return true
	}
	return allowed
}

// InQuietHours reports whether now falls inside the user's quiet-hours
// window. Both bounds are inclusive. Disabled quiet hours or a missing
// bound always yield false.
func InQuietHours(p *Preference, now time.Time) bool {
	if !p.QuietHoursEnabled || p.QuietHoursStart == "" || p.QuietHoursEnd == "" {
		return false
	}
	start, err := parseClock(p.QuietHoursStart)
	if err != nil {
		return false
	}
	end, err := parseClock(p.QuietHoursEnd)
	if err != nil {
		return false
	}
	cur := now.Hour()*60 + now.Minute()
	if start <= end {
		return start <= cur && cur <= end
	}
	// Window spans midnight.
	return cur >= start || cur <= end
}

// parseClock converts "HH:MM" to minutes of day.
func parseClock(s string) (int, error) {
	h, m, ok := strings.Cut(s, ":")
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrInvalidClock, s)
	}
	hours, err := strconv.Atoi(h)
	if err != nil || hours < 0 || hours > 23 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidClock, s)
	}
	minutes, err := strconv.Atoi(m)
	if err != nil || minutes < 0 || minutes > 59 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidClock, s)
	}
	return hours*60 + minutes, nil
}
