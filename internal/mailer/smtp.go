package mailer

import (
	"context"
	"fmt"

	"github.com/wneessen/go-mail"
)

// Sender delivers one HTML email. The worker depends on this interface so
// tests can record sends instead of talking to a relay.
type Sender interface {
	Send(ctx context.Context, to, subject, htmlBody string) error
}

// SMTPConfig holds the outbound mail relay settings.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// SMTPSender sends mail through an SMTP relay with STARTTLS and plain auth.
type SMTPSender struct {
	client *mail.Client
	from   string
}

// NewSMTPSender builds a sender from relay settings.
func NewSMTPSender(cfg SMTPConfig) (*SMTPSender, error) {
	client, err := mail.NewClient(cfg.Host,
		mail.WithPort(cfg.Port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(cfg.Username),
		mail.WithPassword(cfg.Password),
		mail.WithTLSPortPolicy(mail.TLSMandatory),
	)
	if err != nil {
		return nil, fmt.Errorf("create SMTP client: %w", err)
	}
	return &SMTPSender{client: client, from: cfg.From}, nil
}

// Send delivers one message and waits for the relay to accept it.
func (s *SMTPSender) Send(ctx context.Context, to, subject, htmlBody string) error {
	msg := mail.NewMsg()
	if err := msg.From(s.from); err != nil {
		return fmt.Errorf("set sender: %w", err)
	}
	if err := msg.To(to); err != nil {
		return fmt.Errorf("set recipient: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextHTML, htmlBody)

	if err := s.client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("send mail to %s: %w", to, err)
	}
	return nil
}
