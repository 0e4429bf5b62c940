package email

import (
	"context"
	"log/slog"
)

// DevSender implements Sender for local development: it logs the email
// instead of sending it through a provider. Notification delivery
// semantics stay intact (the channel reports success) without any
// external dependency.
type DevSender struct {
	logger *slog.Logger
}

// NewDevSender creates a development email sender that logs outbound mail.
func NewDevSender(logger *slog.Logger) *DevSender {
	if logger == nil {
		logger = slog.Default()
	}
	return &DevSender{logger: logger}
}

func (d *DevSender) SendEmail(ctx context.Context, params SendEmailParams) error {
	if err := params.Validate(); err != nil {
		return err
	}
	d.logger.LogAttrs(ctx, slog.LevelInfo, "dev email sender: email not sent",
		slog.String("send_to", params.SendTo),
		slog.String("subject", params.Subject),
		slog.String("tag", params.Tag),
		slog.Int("body_bytes", len(params.BodyHTML)),
	)
	return nil
}
