package notify

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/wneessen/go-mail"

	"daily-close/internal/config"
)

const smtpTimeout = 30 * time.Second

// Mailer sends notifications over SMTP with mandatory STARTTLS.
type Mailer struct {
	host     string
	port     int
	user     string
	password string
	to       string
}

func NewMailer(smtp config.SMTPConfig, to string) *Mailer {
	return &Mailer{
		host:     smtp.Host,
		port:     smtp.Port,
		user:     smtp.User,
		password: smtp.Password,
		to:       to,
	}
}

// Enabled reports whether credentials are configured.
func (m *Mailer) Enabled() bool {
	return m.user != "" && m.password != ""
}

// Send is a logged no-op when credentials are missing.
func (m *Mailer) Send(ctx context.Context, subject, body string) error {
	if !m.Enabled() {
		slog.Warn("smtp not configured; skipping email", "subject", subject)
		return nil
	}

	msg, err := m.message(subject, body)
	if err != nil {
		return err
	}

	client, err := mail.NewClient(m.host,
		mail.WithPort(m.port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(m.user),
		mail.WithPassword(m.password),
		mail.WithTLSPolicy(mail.TLSMandatory),
		mail.WithTimeout(smtpTimeout),
	)
	if err != nil {
		return fmt.Errorf("create smtp client: %w", err)
	}
	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("send email: %w", err)
	}
	slog.Info("email sent", "subject", subject, "to", m.to)
	return nil
}

func (m *Mailer) message(subject, body string) (*mail.Msg, error) {
	msg := mail.NewMsg()
	if err := msg.From(m.user); err != nil {
		return nil, fmt.Errorf("set sender: %w", err)
	}
	if err := msg.To(m.to); err != nil {
		return nil, fmt.Errorf("set recipient: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextPlain, body)
	return msg, nil
}
