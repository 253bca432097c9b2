// Package mailer delivers transactional email over SMTP. A log-only
// implementation backs local development where no SMTP account exists.
package mailer

import (
	"context"
	"fmt"

	goerrors "github.com/goliatone/go-errors"
	"github.com/kavyakala/kavyakala/auth"
	gomail "github.com/wneessen/go-mail"
)

// SMTPConfig carries the transport settings for outbound mail.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	FromName string
}

// SMTPMailer sends mail through an authenticated SMTP relay. Port 465
// switches the client to implicit TLS, matching providers like Gmail.
type SMTPMailer struct {
	cfg    SMTPConfig
	logger auth.Logger
}

var _ auth.Mailer = (*SMTPMailer)(nil)

func NewSMTPMailer(cfg SMTPConfig, logger auth.Logger) (*SMTPMailer, error) {
	if cfg.Host == "" {
		return nil, goerrors.New("smtp host is required", goerrors.CategoryValidation)
	}
	if cfg.From == "" {
		cfg.From = cfg.Username
	}
	if cfg.Port == 0 {
		cfg.Port = 465
	}

	return &SMTPMailer{cfg: cfg, logger: logger}, nil
}

func (m *SMTPMailer) Send(ctx context.Context, email auth.Email) error {
	msg := gomail.NewMsg()

	if err := msg.FromFormat(m.cfg.FromName, m.cfg.From); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryValidation, "invalid sender address")
	}

	if err := msg.To(email.To); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryValidation, "invalid recipient address")
	}

	msg.Subject(email.Subject)
	msg.SetBodyString(gomail.TypeTextPlain, email.Text)
	if email.HTML != "" {
		msg.AddAlternativeString(gomail.TypeTextHTML, email.HTML)
	}

	opts := []gomail.Option{
		gomail.WithPort(m.cfg.Port),
		gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
		gomail.WithUsername(m.cfg.Username),
		gomail.WithPassword(m.cfg.Password),
	}

	if m.cfg.Port == 465 {
		opts = append(opts, gomail.WithSSL())
	}

	client, err := gomail.NewClient(m.cfg.Host, opts...)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryOperation, "failed to create smtp client")
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryOperation, "failed to send email").
			WithTextCode(auth.TextCodeMailDispatch)
	}

	m.logger.Debug("Mail dispatched", "to", email.To, "subject", email.Subject)

	return nil
}

// LogMailer writes outbound messages to the log instead of sending them.
type LogMailer struct {
	logger auth.Logger
}

var _ auth.Mailer = (*LogMailer)(nil)

func NewLogMailer(logger auth.Logger) *LogMailer {
	return &LogMailer{logger: logger}
}

func (m *LogMailer) Send(_ context.Context, email auth.Email) error {
	m.logger.Info(fmt.Sprintf(
		"=== outbound email ===\nTo: %s\nSubject: %s\n\n%s\n======================",
		email.To, email.Subject, email.Text,
	))
	return nil
}
