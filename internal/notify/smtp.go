package notify

import (
	"context"
	"errors"
	"fmt"

	"github.com/wneessen/go-mail"
)

// MailerConfig carries the SMTP transport settings for email notifications.
type MailerConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// Mailer delivers notifications as plain-text email over SMTP.
type Mailer struct {
	cfg MailerConfig
}

func NewMailer(cfg MailerConfig) (*Mailer, error) {
	if cfg.Host == "" {
		return nil, errors.New("mailer: SMTP host is required")
	}
	if cfg.From == "" {
		return nil, errors.New("mailer: sender address is required")
	}
	if cfg.Port == 0 {
		cfg.Port = mail.DefaultPort
	}
	return &Mailer{cfg: cfg}, nil
}

func (m *Mailer) Notify(ctx context.Context, subject, body, recipient string) error {
	msg := mail.NewMsg()
	if err := msg.From(m.cfg.From); err != nil {
		return fmt.Errorf("%w: invalid sender %q: %v", ErrNotification, m.cfg.From, err)
	}
	if err := msg.To(recipient); err != nil {
		return fmt.Errorf("%w: invalid recipient %q: %v", ErrNotification, recipient, err)
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextPlain, body)

	opts := []mail.Option{
		mail.WithPort(m.cfg.Port),
		mail.WithTLSPolicy(mail.TLSOpportunistic),
	}
	if m.cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(m.cfg.Username),
			mail.WithPassword(m.cfg.Password),
		)
	}

	client, err := mail.NewClient(m.cfg.Host, opts...)
	if err != nil {
		return fmt.Errorf("%w: smtp client: %v", ErrNotification, err)
	}
	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("%w: send to %s via %s: %v", ErrNotification, recipient, m.cfg.Host, err)
	}
	return nil
}
