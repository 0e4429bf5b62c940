package logger

import "log/slog"

// Group creates a slog group attribute from the provided attributes.
func Group(name string, attrs ...slog.Attr) slog.Attr {
	return slog.Attr{Key: name, Value: slog.GroupValue(attrs...)}
}

// Error creates an attribute for a single error under the key "error".
// If err is nil, it returns an empty Attr.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any("error", err)
}

// UserID records the user identifier under the key "user_id".
func UserID(id string) slog.Attr {
	return slog.String("user_id", id)
}

// NotificationID records the notification identifier under the key
// "notification_id".
func NotificationID(id string) slog.Attr {
	return slog.String("notification_id", id)
}

// BatchID records the batch identifier under the key "batch_id".
func BatchID(id string) slog.Attr {
	return slog.String("batch_id", id)
}

// Channel records the delivery channel under the key "channel".
func Channel(ch string) slog.Attr {
	return slog.String("channel", ch)
}

// EventType records the business event type under the key "event_type".
func EventType(eventType string) slog.Attr {
	return slog.String("event_type", eventType)
}

// Component records the component name under the key "component".
func Component(name string) slog.Attr {
	return slog.String("component", name)
}
