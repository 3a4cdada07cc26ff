package email

import (
	"context"
	"crypto/tls"
	"fmt"

	mail "github.com/go-mail/mail/v2"
	"github.com/rs/zerolog"
)

// Sender delivers a single HTML email
type Sender interface {
	Send(ctx context.Context, to, subject, htmlBody string) error
}

// SMTPConfig holds configuration for SMTP server
type SMTPConfig struct {
	Host          string
	Port          int
	Username      string
	Password      string
	FromName      string
	FromEmail     string
	SkipTLSVerify bool
}

// SMTPSender implements Sender over SMTP with STARTTLS
type SMTPSender struct {
	config SMTPConfig
	dialer *mail.Dialer
	logger zerolog.Logger
}

// NewSMTPSender creates a new SMTPSender
func NewSMTPSender(config SMTPConfig, logger zerolog.Logger) *SMTPSender {
	if config.Port == 0 {
		config.Port = 587
	}

	s := &SMTPSender{
		config: config,
		logger: logger.With().Str("component", "smtp").Logger(),
	}

	if s.Configured() {
		d := mail.NewDialer(config.Host, config.Port, config.Username, config.Password)
		d.StartTLSPolicy = mail.MandatoryStartTLS
		d.TLSConfig = &tls.Config{
			ServerName:         config.Host,
			InsecureSkipVerify: config.SkipTLSVerify,
		}
		s.dialer = d
	}
	return s
}

// Configured reports whether SMTP host and credentials are present
func (s *SMTPSender) Configured() bool {
	return s.config.Host != "" && s.config.Username != "" && s.config.Password != ""
}

// Send delivers the message. Without SMTP credentials the message is only logged (development mode).
func (s *SMTPSender) Send(ctx context.Context, to, subject, htmlBody string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if !s.Configured() {
		s.logger.Warn().
			Str("to", to).
			Str("subject", subject).
			Msg("SMTP credentials not configured - email not sent")
		return nil
	}

	from := s.config.FromEmail
	if from == "" {
		from = s.config.Username
	}

	m := mail.NewMessage()
	m.SetAddressHeader("From", from, s.config.FromName)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", htmlBody)

	if err := s.dialer.DialAndSend(m); err != nil {
		s.logger.Error().Err(err).Str("to", to).Str("subject", subject).Msg("Failed to send email")
		return fmt.Errorf("failed to send email: %w", err)
	}

	s.logger.Info().Str("to", to).Str("subject", subject).Msg("Email sent")
	return nil
}
