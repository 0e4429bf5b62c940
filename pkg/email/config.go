package email

// Config holds email transport configuration.
// The Postmark tokens are optional to support development environments
// where outbound email is replaced by the dev sender. SenderEmail
// establishes the sender identity of every notification email.
type Config struct {
	PostmarkServerToken  string `env:"POSTMARK_SERVER_TOKEN"`
	PostmarkAccountToken string `env:"POSTMARK_ACCOUNT_TOKEN"`
	SenderEmail          string `env:"SENDER_EMAIL" envDefault:"notifications@localhost"`
	ReplyToEmail         string `env:"REPLY_TO_EMAIL"`
}

// Configured reports whether the Postmark transport can be constructed.
func (c Config) Configured() bool {
	return c.PostmarkServerToken != "" && c.PostmarkAccountToken != ""
}
