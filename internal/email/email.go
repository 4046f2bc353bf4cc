package email

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mailgun/mailgun-go/v5"
	log "github.com/sirupsen/logrus"

	"fittrack/fitness-app/internal/config"
)

const sendTimeout = 10 * time.Second

var ErrDisabled = errors.New("email service is not configured")

// Sender delivers the account mails of the auth flow.
type Sender interface {
	IsEnabled() bool
	SendVerification(ctx context.Context, to, link string) error
	SendPasswordReset(ctx context.Context, to, link string) error
}

// Service sends mail through Mailgun.
type Service struct {
	client      mailgun.Mailgun
	domain      string
	senderEmail string
	senderName  string
	enabled     bool
}

func NewService(cfg config.MailConfig) *Service {
	enabled := cfg.Domain != "" && cfg.APIKey != ""

	var client mailgun.Mailgun
	if enabled {
		client = mailgun.NewMailgun(cfg.APIKey)
	}

	return &Service{
		client:      client,
		domain:      cfg.Domain,
		senderEmail: cfg.SenderEmail,
		senderName:  cfg.SenderName,
		enabled:     enabled,
	}
}

func (s *Service) IsEnabled() bool {
	return s.enabled
}

func (s *Service) SendVerification(ctx context.Context, to, link string) error {
	subject := "Confirm your FitTrack account"
	text := fmt.Sprintf("Welcome to FitTrack!\n\nConfirm your email address by opening this link:\n%s\n", link)
	html := fmt.Sprintf(`<p>Welcome to FitTrack!</p><p><a href="%s">Confirm your email address</a></p>`, link)
	return s.send(ctx, to, subject, text, html)
}

func (s *Service) SendPasswordReset(ctx context.Context, to, link string) error {
	subject := "Reset your FitTrack password"
	text := fmt.Sprintf("Someone asked to reset the password of this account.\n\nOpen this link to choose a new one:\n%s\n\nIgnore this mail if it was not you.\n", link)
	html := fmt.Sprintf(`<p>Someone asked to reset the password of this account.</p><p><a href="%s">Choose a new password</a></p><p>Ignore this mail if it was not you.</p>`, link)
	return s.send(ctx, to, subject, text, html)
}

func (s *Service) send(ctx context.Context, to, subject, text, html string) error {
	if !s.enabled {
		return ErrDisabled
	}

	message := mailgun.NewMessage(
		s.domain,
		fmt.Sprintf("%s <%s>", s.senderName, s.senderEmail),
		subject,
		text,
		to,
	)
	message.SetHTML(html)

	ctx, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()

	resp, err := s.client.Send(ctx, message)
	if err != nil {
		return fmt.Errorf("failed to send %q to %s: %w", subject, to, err)
	}

	log.Debugf("email %q sent to %s (response: %v)", subject, to, resp)
	return nil
}
