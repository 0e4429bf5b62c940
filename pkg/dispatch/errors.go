package dispatch

import "errors"

var (
	// ErrEmptyTitle is returned for a request without a title.
	ErrEmptyTitle = errors.New("dispatch: title is required")
	// ErrNoRecipients is returned for a batch without recipients.
	ErrNoRecipients = errors.New("dispatch: batch has no recipients")
	// ErrAlreadyStarted is returned when starting a running processor.
	ErrAlreadyStarted = errors.New("dispatch: processor already started")
	// ErrNotStarted is returned when stopping a processor that never ran.
	ErrNotStarted = errors.New("dispatch: processor not started")
	// ErrStopTimeout is returned when the processor does not drain in time.
	ErrStopTimeout = errors.New("dispatch: processor stop timed out")
)
