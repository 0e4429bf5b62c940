package identity

import "errors"

// ErrUserNotFound is returned by a Directory when no user matches the ID.
var ErrUserNotFound = errors.New("identity: user not found")
