// Package email sends transactional mail (welcome, password reset) through
// Mailgun. Delivery is best-effort: callers never block on it and failures
// are logged, not surfaced.
package email

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/mailgun/mailgun-go/v4"

	"github.com/kindredhq/kindred/internal/config"
	"github.com/kindredhq/kindred/pkg/logger"
)

// SendOptions describes a single outbound message.
type SendOptions struct {
	To      string
	ToName  string
	Subject string
	Text    string
	HTML    string
}

// MailgunSender sends mail via the Mailgun API. A nil MailgunSender means
// mail is not configured; the service treats that as a silent no-op.
type MailgunSender struct {
	cfg    *config.EmailConfig
	log    *slog.Logger
	client *mailgun.MailgunImpl
}

// NewMailgunSender creates a Mailgun sender, or nil when credentials are
// absent.
func NewMailgunSender(cfg *config.Config, log *slog.Logger) *MailgunSender {
	emailCfg := &cfg.Email
	if !emailCfg.IsConfigured() {
		return nil
	}

	return &MailgunSender{
		cfg:    emailCfg,
		log:    log.With(logger.Scope("email.mailgun")),
		client: mailgun.NewMailgun(emailCfg.MailgunDomain, emailCfg.MailgunAPIKey),
	}
}

// Send delivers a single message via Mailgun.
func (s *MailgunSender) Send(ctx context.Context, opts SendOptions) error {
	if !s.cfg.Enabled {
		s.log.Warn("email sending is disabled (EMAIL_ENABLED=false)",
			slog.String("subject", opts.Subject))
		return nil
	}

	to := opts.To
	if opts.ToName != "" {
		to = fmt.Sprintf("%s <%s>", opts.ToName, opts.To)
	}
	from := fmt.Sprintf("%s <%s>", s.cfg.FromName, s.cfg.FromEmail)

	message := s.client.NewMessage(from, opts.Subject, opts.Text, to)
	if opts.HTML != "" {
		message.SetHtml(opts.HTML)
	}

	sendCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, messageID, err := s.client.Send(sendCtx, message)
	if err != nil {
		s.log.Error("failed to send email",
			slog.String("to", opts.To),
			slog.String("subject", opts.Subject),
			logger.Error(err),
		)
		return err
	}

	s.log.Info("email sent",
		slog.String("to", opts.To),
		slog.String("message_id", messageID),
	)
	return nil
}
