package services

import (
	"fmt"
	"html"
	"log/slog"
	"strings"

	"gopkg.in/gomail.v2"

	"tasktracker/internal/config"
)

// EmailService sends plain notification mail. Every message carries a
// text/plain body with an HTML alternative.
type EmailService interface {
	Send(to, subject, body string) error
}

type mailDialer interface {
	DialAndSend(m ...*gomail.Message) error
}

type emailService struct {
	dialer mailDialer
	from   string
	logger *slog.Logger
}

func NewEmailService(cfg config.EmailConfig, logger *slog.Logger) EmailService {
	dialer := gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword)
	return &emailService{
		dialer: dialer,
		from:   cfg.FromEmail,
		logger: logger,
	}
}

func (s *emailService) Send(to, subject, body string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)
	m.AddAlternative("text/html", htmlBody(subject, body))

	if err := s.dialer.DialAndSend(m); err != nil {
		s.logger.Warn("[email][send][err]", "to", to, "error", err)
		return fmt.Errorf("failed to send email to %s: %w", to, err)
	}
	s.logger.Debug("[email][send] ok", "to", to, "subject", subject)
	return nil
}

func htmlBody(subject, body string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "<h3>%s</h3>\n", html.EscapeString(subject))
	for _, line := range strings.Split(body, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		fmt.Fprintf(&b, "<p>%s</p>\n", html.EscapeString(line))
	}
	return b.String()
}
