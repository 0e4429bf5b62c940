package sms

import "errors"

var (
	ErrInvalidConfig = errors.New("sms: invalid config")
	ErrSendFailed    = errors.New("sms: send failed")
)
