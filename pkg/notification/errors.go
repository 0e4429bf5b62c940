package notification

import "errors"

var (
	// ErrNotFound is returned when a notification record does not exist.
	ErrNotFound = errors.New("notification: not found")
	// ErrInvalidChannel is returned for an unknown delivery channel.
	ErrInvalidChannel = errors.New("notification: invalid channel")
	// ErrInvalidPriority is returned for an unknown priority level.
	ErrInvalidPriority = errors.New("notification: invalid priority")
)
