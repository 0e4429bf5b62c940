package sms

import "time"

// Config holds SMS gateway configuration. All fields are optional as a
// group: an unconfigured gateway disables the SMS channel rather than
// failing startup.
type Config struct {
	APIURL     string        `env:"SMS_API_URL"`
	AccountSID string        `env:"SMS_ACCOUNT_SID"`
	AuthToken  string        `env:"SMS_AUTH_TOKEN"`
	FromNumber string        `env:"SMS_FROM_NUMBER"`
	Timeout    time.Duration `env:"SMS_HTTP_TIMEOUT" envDefault:"10s"`
}

// Configured reports whether the gateway client can be constructed.
func (c Config) Configured() bool {
	return c.APIURL != "" && c.AccountSID != "" && c.AuthToken != ""
}
