package preference

import "errors"

var (
	// ErrNotFound is returned when a preference record does not exist.
	ErrNotFound = errors.New("preference: not found")
	// ErrInvalidClock is returned for a quiet-hours bound that is not "HH:MM".
	ErrInvalidClock = errors.New("preference: invalid clock value")
)
