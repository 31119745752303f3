package email

import (
	"context"
	"log/slog"
	"time"

	"github.com/kindredhq/kindred/pkg/logger"
)

// sendTimeout bounds the detached delivery goroutines.
const sendTimeout = 45 * time.Second

// Service renders and dispatches transactional mail. All sends are
// fire-and-forget; the request path never waits on Mailgun.
type Service struct {
	sender    *MailgunSender
	templates *TemplateService
	log       *slog.Logger
}

// NewService creates a new email service. A nil sender disables delivery.
func NewService(sender *MailgunSender, templates *TemplateService, log *slog.Logger) *Service {
	return &Service{
		sender:    sender,
		templates: templates,
		log:       log.With(logger.Scope("email.svc")),
	}
}

// SendWelcome delivers the signup welcome mail in the background.
func (s *Service) SendWelcome(_ context.Context, to, name string) {
	if s.sender == nil {
		s.log.Debug("mail not configured, skipping welcome mail", slog.String("to", to))
		return
	}

	rendered, err := s.templates.Render("welcome", TemplateContext{
		"name":      name,
		"plainText": "Hello " + name + ", welcome to Kindred. Your account is ready.",
	}, "base")
	if err != nil {
		s.log.Error("failed to render welcome mail", logger.Error(err))
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
		defer cancel()

		_ = s.sender.Send(ctx, SendOptions{
			To:      to,
			ToName:  name,
			Subject: "Welcome to Kindred",
			Text:    rendered.Text,
			HTML:    rendered.HTML,
		})
	}()
}

// SendPasswordReset delivers the forgot-password OTP mail in the background.
func (s *Service) SendPasswordReset(_ context.Context, to, name, otp string, expiresIn time.Duration) {
	if s.sender == nil {
		s.log.Debug("mail not configured, skipping password reset mail", slog.String("to", to))
		return
	}

	rendered, err := s.templates.Render("password-reset", TemplateContext{
		"name":      name,
		"otp":       otp,
		"expiresIn": expiresIn.String(),
		"plainText": "Your password reset OTP is " + otp + ". It expires in " + expiresIn.String() + ".",
	}, "base")
	if err != nil {
		s.log.Error("failed to render password reset mail", logger.Error(err))
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
		defer cancel()

		_ = s.sender.Send(ctx, SendOptions{
			To:      to,
			ToName:  name,
			Subject: "Kindred | Password Reset",
			Text:    rendered.Text,
			HTML:    rendered.HTML,
		})
	}()
}
