package queue

import "errors"

// ErrNotFound is returned when a batch does not exist.
var ErrNotFound = errors.New("queue: batch not found")
