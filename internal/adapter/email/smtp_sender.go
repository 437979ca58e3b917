package email

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"strings"

	"github.com/Abdurahmanit/GroupProject/village-market/internal/config"
	"github.com/Abdurahmanit/GroupProject/village-market/internal/platform/logger"
	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
)

// Sender delivers a single message.
type Sender interface {
	Send(ctx context.Context, to []string, subject, bodyHTML, bodyText string) error
}

type smtpSender struct {
	cfg config.SMTPConfig
	log *logger.Logger
	d   *gomail.Dialer
}

func NewSMTPSender(cfg config.SMTPConfig, log *logger.Logger) (Sender, error) {
	if !cfg.Enabled() {
		return nil, errors.New("SMTP host, port and sender email must be configured")
	}

	dialer := gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
	tlsConfig := &tls.Config{ServerName: cfg.Host, MinVersion: tls.VersionTLS12}
	switch strings.ToLower(cfg.Encryption) {
	case "ssl":
		dialer.SSL = true
		dialer.TLSConfig = tlsConfig
	case "tls", "starttls":
		dialer.TLSConfig = tlsConfig
	}

	return &smtpSender{cfg: cfg, log: log.Named("SMTPSender"), d: dialer}, nil
}

func (s *smtpSender) Send(ctx context.Context, to []string, subject, bodyHTML, bodyText string) error {
	if len(to) == 0 {
		return errors.New("no recipients provided for email")
	}

	m := gomail.NewMessage()
	m.SetAddressHeader("From", s.cfg.SenderEmail, s.cfg.SenderName)
	m.SetHeader("To", to...)
	m.SetHeader("Subject", subject)
	switch {
	case bodyHTML != "":
		m.SetBody("text/html", bodyHTML)
		if bodyText != "" {
			m.AddAlternative("text/plain", bodyText)
		}
	case bodyText != "":
		m.SetBody("text/plain", bodyText)
	default:
		return errors.New("email body (HTML or text) must be provided")
	}

	done := make(chan error, 1)
	go func() {
		done <- s.d.DialAndSend(m)
	}()

	select {
	case <-ctx.Done():
		s.log.Warn("Email sending cancelled or timed out", zap.Strings("to", to), zap.String("subject", subject), zap.Error(ctx.Err()))
		return fmt.Errorf("email sending cancelled or timed out: %w", ctx.Err())
	case err := <-done:
		if err != nil {
			s.log.Error("Failed to send email", zap.Strings("to", to), zap.String("subject", subject), zap.Error(err))
			return fmt.Errorf("failed to send email: %w", err)
		}
	}

	s.log.Info("Email sent", zap.Strings("to", to), zap.String("subject", subject))
	return nil
}

// logSender only records messages. It is used when SMTP is not configured.
type logSender struct {
	log *logger.Logger
}

func NewLogSender(log *logger.Logger) Sender {
	return &logSender{log: log.Named("LogSender")}
}

func (s *logSender) Send(ctx context.Context, to []string, subject, bodyHTML, bodyText string) error {
	s.log.Info("Mail delivery disabled, message not sent", zap.Strings("to", to), zap.String("subject", subject))
	return nil
}
