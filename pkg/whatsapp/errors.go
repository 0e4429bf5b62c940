package whatsapp

import "errors"

var (
	ErrInvalidConfig = errors.New("whatsapp: invalid config")
	ErrSendFailed    = errors.New("whatsapp: send failed")
)
