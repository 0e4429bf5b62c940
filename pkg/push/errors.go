package push

import "errors"

var (
	ErrInvalidConfig = errors.New("push: invalid config")
	ErrSendFailed    = errors.New("push: send failed")
)
