package mailer

import (
	"fmt"
	"log/slog"

	"github.com/wneessen/go-mail"

	"reviewhub/internal/config"
)

// Mailer dispatches a confirmation code to an email address. Delivery is
// fire-and-forget from the caller's point of view: an error fails the
// triggering request, nothing is retried.
type Mailer interface {
	SendConfirmationCode(email, code string) error
}

const codeSubject = "Confirmation code"

// SMTPMailer sends the code over SMTP.
type SMTPMailer struct {
	client *mail.Client
	from   string
}

func NewSMTP(cfg *config.Config) (*SMTPMailer, error) {
	opts := []mail.Option{
		mail.WithPort(cfg.SMTPPort),
		mail.WithTLSPolicy(mail.TLSOpportunistic),
	}
	if cfg.SMTPUsername != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(cfg.SMTPUsername),
			mail.WithPassword(cfg.SMTPPassword),
		)
	}
	client, err := mail.NewClient(cfg.SMTPHost, opts...)
	if err != nil {
		return nil, fmt.Errorf("create smtp client: %w", err)
	}
	return &SMTPMailer{client: client, from: cfg.MailFrom}, nil
}

func (m *SMTPMailer) SendConfirmationCode(email, code string) error {
	msg := mail.NewMsg()
	if err := msg.From(m.from); err != nil {
		return fmt.Errorf("set sender: %w", err)
	}
	if err := msg.To(email); err != nil {
		return fmt.Errorf("set recipient: %w", err)
	}
	msg.Subject(codeSubject)
	msg.SetBodyString(mail.TypeTextPlain, fmt.Sprintf("Confirmation code: %s", code))

	if err := m.client.DialAndSend(msg); err != nil {
		return fmt.Errorf("send confirmation code: %w", err)
	}
	return nil
}

// LogMailer writes the code to the log instead of sending it. Used in
// development when no SMTP host is configured.
type LogMailer struct {
	Logger *slog.Logger
}

func (m *LogMailer) SendConfirmationCode(email, code string) error {
	m.Logger.Info("confirmation code issued", "email", email, "code", code)
	return nil
}
