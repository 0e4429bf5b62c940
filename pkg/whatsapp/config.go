package whatsapp

import "time"

// Config holds WhatsApp Business API configuration. An unconfigured
// client makes the whatsapp channel unavailable rather than failing
// startup.
type Config struct {
	AccessToken   string        `env:"WHATSAPP_ACCESS_TOKEN"`
	PhoneNumberID string        `env:"WHATSAPP_PHONE_NUMBER_ID"`
	BaseURL       string        `env:"WHATSAPP_API_BASE_URL" envDefault:"https://graph.facebook.com/v17.0"`
	Timeout       time.Duration `env:"WHATSAPP_HTTP_TIMEOUT" envDefault:"10s"`
}

// Configured reports whether the client can be constructed.
func (c Config) Configured() bool {
	return c.AccessToken != "" && c.PhoneNumberID != ""
}
