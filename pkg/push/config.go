package push

import "time"

// Config holds push provider configuration. An unconfigured provider
// disables the push channel rather than failing startup.
type Config struct {
	ServerKey string        `env:"PUSH_SERVER_KEY"`
	APIURL    string        `env:"PUSH_API_URL" envDefault:"https://fcm.googleapis.com/fcm/send"`
	Timeout   time.Duration `env:"PUSH_HTTP_TIMEOUT" envDefault:"10s"`
}

// Configured reports whether the provider client can be constructed.
func (c Config) Configured() bool {
	return c.ServerKey != ""
}
