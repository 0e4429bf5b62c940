package preference_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/claimdesk/notifier/pkg/notification"
	"github.com/claimdesk/notifier/pkg/preference"
)

func TestNewPreferenceDefaults(t *testing.T) {
	t.Parallel()

	p := preference.NewPreference("u1")
	assert.Equal(t, "u1", p.UserID)
	assert.True(t, p.EmailEnabled)
	assert.True(t, p.InAppEnabled)
	assert.False(t, p.SMSEnabled)
	assert.False(t, p.PushEnabled)
	assert.False(t, p.WhatsAppEnabled)
	assert.False(t, p.QuietHoursEnabled)

	assert.Equal(t,
		[]notification.Channel{notification.ChannelEmail, notification.ChannelInApp},
		p.EnabledChannels())
}

func TestAllows(t *testing.T) {
	t.Parallel()

	p := preference.NewPreference("u1")
	p.SMSEnabled = true
	p.EventOverrides = map[string]map[notification.Channel]bool{
		"claim_created": {
			notification.ChannelEmail: false,
		},
	}

	t.Run("disabled channel always refused", func(t *testing.T) {
		t.Parallel()
		assert.False(t, p.Allows(notification.ChannelPush, "claim_created"))
	})

	t.Run("override disables an enabled channel for one event", func(t *testing.T) {
		t.Parallel()
		assert.False(t, p.Allows(notification.ChannelEmail, "claim_created"))
		assert.True(t, p.Allows(notification.ChannelEmail, "claim_sent"))
		assert.True(t, p.Allows(notification.ChannelEmail, ""))
	})

	t.Run("channel absent from override map stays allowed", func(t *testing.T) {
		t.Parallel()
		assert.True(t, p.Allows(notification.ChannelSMS, "claim_created"))
	})
}

func TestInQuietHours(t *testing.T) {
	t.Parallel()

	at := func(hour, minute int) time.Time {
		return time.Date(2026, 3, 1, hour, minute, 0, 0, time.UTC)
	}

	tests := []struct {
		name    string
		enabled bool
		start   string
		end     string
		now     time.Time
		want    bool
	}{
		{"disabled window never matches", false, "22:00", "06:00", at(23, 0), false},
		{"same-day window inside", true, "09:00", "17:00", at(12, 0), true},
		{"same-day window outside", true, "09:00", "17:00", at(18, 0), false},
		{"same-day start bound inclusive", true, "09:00", "17:00", at(9, 0), true},
		{"same-day end bound inclusive", true, "09:00", "17:00", at(17, 0), true},
		{"midnight span before midnight", true, "22:00", "06:00", at(23, 30), true},
		{"midnight span after midnight", true, "22:00", "06:00", at(5, 59), true},
		{"midnight span start bound inclusive", true, "22:00", "06:00", at(22, 0), true},
		{"midnight span end bound inclusive", true, "22:00", "06:00", at(6, 0), true},
		{"midnight span daytime gap", true, "22:00", "06:00", at(12, 0), false},
		{"midnight span just before start", true, "22:00", "06:00", at(21, 59), false},
		{"midnight span just after end", true, "22:00", "06:00", at(6, 1), false},
		{"missing start bound", true, "", "06:00", at(3, 0), false},
		{"malformed bound fails open", true, "25:99", "06:00", at(3, 0), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			p := preference.NewPreference("u1")
			p.QuietHoursEnabled = tt.enabled
			p.QuietHoursStart = tt.start
			p.QuietHoursEnd = tt.end
			assert.Equal(t, tt.want, preference.InQuietHours(p, tt.now))
		})
	}
}
